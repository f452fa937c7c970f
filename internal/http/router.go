package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"priestbook/backend/internal/authctx"
	"priestbook/backend/internal/config"
	"priestbook/backend/internal/domain/booking"
	"priestbook/backend/internal/domain/notifications"
	"priestbook/backend/internal/domain/payments"
	"priestbook/backend/internal/domain/priests"
	"priestbook/backend/internal/domain/profile"
	"priestbook/backend/internal/domain/reviews"
	"priestbook/backend/internal/domain/stats"
	"priestbook/backend/internal/geo"
	"priestbook/backend/internal/middleware"
	"priestbook/backend/internal/models"

	"firebase.google.com/go/v4/auth"
	"github.com/go-chi/chi/v5"
)

type RouterDeps struct {
	Cfg              config.Config
	AuthClient       *auth.Client
	ProfileSvc       *profile.Service
	PriestsSvc       *priests.Service
	BookingSvc       *booking.Service
	ReviewsSvc       *reviews.Service
	PaymentsSvc      *payments.Service
	NotificationsSvc *notifications.Service
	StatsSvc         *stats.Service
	UploadsHandler   http.HandlerFunc
}

func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.CORS(d.Cfg.AllowedOrigins))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		WriteJSON(w, 200, map[string]any{"ok": true, "ts": time.Now().UTC().Format(time.RFC3339)})
	})

	// ===== Stripe webhook (signature-verified, no auth) =====
	if d.PaymentsSvc != nil {
		r.Post("/v1/stripe/webhook", d.PaymentsSvc.Webhook)
	}

	// ===== Public auth routes =====
	r.Post("/v1/auth/register", func(w http.ResponseWriter, r *http.Request) {
		var in profile.RegisterInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			Fail(w, 400, "invalid json")
			return
		}
		in.Trim()

		out, err := d.ProfileSvc.Register(r.Context(), in)
		if err != nil {
			status, msg := mapProfileError(err)
			Fail(w, status, msg)
			return
		}
		WriteJSON(w, 201, out)
	})

	r.Post("/v1/auth/password-reset", func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Email string `json:"email"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			Fail(w, 400, "invalid json")
			return
		}

		link, err := d.ProfileSvc.PasswordResetLink(r.Context(), strings.TrimSpace(in.Email))
		if err != nil {
			status, msg := mapProfileError(err)
			Fail(w, status, msg)
			return
		}
		WriteJSON(w, 200, map[string]any{"resetLink": link})
	})

	// ===== Public priest directory =====
	r.Get("/v1/priests", func(w http.ResponseWriter, r *http.Request) {
		service := strings.TrimSpace(r.URL.Query().Get("service"))
		limit := queryInt(r, "limit")

		if service != "" {
			out, err := d.PriestsSvc.ByService(r.Context(), service, limit)
			if err != nil {
				status, msg := mapPriestsError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, map[string]any{"priests": out})
			return
		}

		out, next, err := d.PriestsSvc.List(r.Context(), limit, queryCursor(r))
		if err != nil {
			status, msg := mapPriestsError(err)
			Fail(w, status, msg)
			return
		}
		WriteJSON(w, 200, listPage("priests", out, next))
	})

	r.Get("/v1/priests/search", func(w http.ResponseWriter, r *http.Request) {
		lat, errLat := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
		lng, errLng := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
		if errLat != nil || errLng != nil {
			Fail(w, 400, "lat and lng are required")
			return
		}
		radiusKm := 10.0
		if s := r.URL.Query().Get("radiusKm"); s != "" {
			if v, err := strconv.ParseFloat(s, 64); err == nil {
				radiusKm = v
			}
		}

		out, err := d.PriestsSvc.SearchByLocation(r.Context(), geo.LatLng{Latitude: lat, Longitude: lng}, radiusKm, queryInt(r, "limit"))
		if err != nil {
			status, msg := mapPriestsError(err)
			Fail(w, status, msg)
			return
		}
		WriteJSON(w, 200, map[string]any{"results": out})
	})

	r.Get("/v1/priests/{priestId}", func(w http.ResponseWriter, r *http.Request) {
		out, err := d.PriestsSvc.Get(r.Context(), chi.URLParam(r, "priestId"))
		if err != nil {
			status, msg := mapPriestsError(err)
			Fail(w, status, msg)
			return
		}
		WriteJSON(w, 200, out)
	})

	r.Get("/v1/priests/{priestId}/reviews", func(w http.ResponseWriter, r *http.Request) {
		in := reviews.ListInput{Limit: queryInt(r, "limit"), Cursor: queryCursor(r)}
		out, next, err := d.ReviewsSvc.ListForPriest(r.Context(), chi.URLParam(r, "priestId"), in)
		if err != nil {
			status, msg := mapReviewsError(err)
			Fail(w, status, msg)
			return
		}
		WriteJSON(w, 200, listPage("reviews", out, next))
	})

	// Protected routes
	r.Group(func(pr chi.Router) {
		pr.Use(middleware.WithAuth(d.AuthClient))

		// ===== Own profile =====
		pr.Get("/v1/me", func(w http.ResponseWriter, r *http.Request) {
			uid, _ := authctx.UID(r.Context())
			out, err := d.ProfileSvc.Get(r.Context(), uid)
			if err != nil {
				status, msg := mapProfileError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, out)
		})

		pr.Put("/v1/me", func(w http.ResponseWriter, r *http.Request) {
			uid, _ := authctx.UID(r.Context())

			var in profile.UpdateInput
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				Fail(w, 400, "invalid json")
				return
			}

			out, err := d.ProfileSvc.Update(r.Context(), uid, uid, in)
			if err != nil {
				status, msg := mapProfileError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, out)
		})

		pr.Get("/v1/profiles/{uid}", func(w http.ResponseWriter, r *http.Request) {
			out, err := d.ProfileSvc.Get(r.Context(), chi.URLParam(r, "uid"))
			if err != nil {
				status, msg := mapProfileError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, out)
		})

		pr.Put("/v1/me/availability", func(w http.ResponseWriter, r *http.Request) {
			uid, _ := authctx.UID(r.Context())

			var in profile.UpdateAvailabilityInput
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				Fail(w, 400, "invalid json")
				return
			}

			if err := d.ProfileSvc.UpdateAvailability(r.Context(), uid, uid, in); err != nil {
				status, msg := mapProfileError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, map[string]any{"ok": true})
		})

		pr.Get("/v1/me/stats", func(w http.ResponseWriter, r *http.Request) {
			if !authctx.IsPriest(r.Context()) {
				Fail(w, 403, "priest account required")
				return
			}
			uid, _ := authctx.UID(r.Context())
			out, err := d.StatsSvc.PriestStats(r.Context(), uid)
			if err != nil {
				status, msg := mapStatsError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, out)
		})

		// ===== Uploads =====
		if d.UploadsHandler != nil {
			pr.Post("/v1/uploads/signed-url", d.UploadsHandler)
		}

		// ===== Bookings =====
		pr.Post("/v1/bookings/assign", func(w http.ResponseWriter, r *http.Request) {
			uid, _ := authctx.UID(r.Context())

			var in booking.AssignInput
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				Fail(w, 400, "invalid json")
				return
			}
			if in.IdempotencyKey == "" {
				in.IdempotencyKey = strings.TrimSpace(r.Header.Get("Idempotency-Key"))
			}

			out, err := d.BookingSvc.Assign(r.Context(), uid, in)
			if err != nil {
				status, msg := mapBookingError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 201, out)
		})

		pr.Post("/v1/bookings", func(w http.ResponseWriter, r *http.Request) {
			uid, _ := authctx.UID(r.Context())

			var in struct {
				PriestID string `json:"priestId"`
				booking.CreateInput
			}
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				Fail(w, 400, "invalid json")
				return
			}
			if in.IdempotencyKey == "" {
				in.IdempotencyKey = strings.TrimSpace(r.Header.Get("Idempotency-Key"))
			}

			out, err := d.BookingSvc.Create(r.Context(), uid, strings.TrimSpace(in.PriestID), in.CreateInput)
			if err != nil {
				status, msg := mapBookingError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 201, out)
		})

		pr.Get("/v1/bookings", func(w http.ResponseWriter, r *http.Request) {
			uid, _ := authctx.UID(r.Context())

			in := booking.ListInput{
				Status: models.BookingStatus(strings.TrimSpace(r.URL.Query().Get("status"))),
				Limit:  queryInt(r, "limit"),
				Cursor: queryCursor(r),
			}

			var (
				out  []models.Booking
				next time.Time
				err  error
			)
			if r.URL.Query().Get("role") == "priest" {
				out, next, err = d.BookingSvc.ListForPriest(r.Context(), uid, in)
			} else {
				out, next, err = d.BookingSvc.ListForUser(r.Context(), uid, in)
			}
			if err != nil {
				status, msg := mapBookingError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, listPage("bookings", out, next))
		})

		pr.Get("/v1/bookings/{bookingId}", func(w http.ResponseWriter, r *http.Request) {
			uid, _ := authctx.UID(r.Context())
			out, err := d.BookingSvc.Get(r.Context(), uid, chi.URLParam(r, "bookingId"))
			if err != nil {
				status, msg := mapBookingError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, out)
		})

		pr.Post("/v1/bookings/{bookingId}/status", func(w http.ResponseWriter, r *http.Request) {
			uid, _ := authctx.UID(r.Context())

			var in struct {
				Status models.BookingStatus `json:"status"`
			}
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				Fail(w, 400, "invalid json")
				return
			}

			out, err := d.BookingSvc.UpdateStatus(r.Context(), uid, chi.URLParam(r, "bookingId"), in.Status)
			if err != nil {
				status, msg := mapBookingError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, out)
		})

		// ===== Payments =====
		if d.PaymentsSvc != nil {
			pr.Post("/v1/bookings/{bookingId}/checkout", func(w http.ResponseWriter, r *http.Request) {
				uid, _ := authctx.UID(r.Context())
				out, err := d.PaymentsSvc.CreateCheckout(r.Context(), uid, chi.URLParam(r, "bookingId"))
				if err != nil {
					status, msg := mapPaymentsError(err)
					Fail(w, status, msg)
					return
				}
				WriteJSON(w, 200, out)
			})

			pr.Post("/v1/bookings/{bookingId}/refund", func(w http.ResponseWriter, r *http.Request) {
				uid, _ := authctx.UID(r.Context())
				if err := d.PaymentsSvc.Refund(r.Context(), uid, chi.URLParam(r, "bookingId")); err != nil {
					status, msg := mapPaymentsError(err)
					Fail(w, status, msg)
					return
				}
				WriteJSON(w, 200, map[string]any{"ok": true})
			})
		}

		// ===== Reviews =====
		pr.Post("/v1/reviews", func(w http.ResponseWriter, r *http.Request) {
			uid, _ := authctx.UID(r.Context())

			var in reviews.CreateInput
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				Fail(w, 400, "invalid json")
				return
			}

			out, err := d.ReviewsSvc.Create(r.Context(), uid, in)
			if err != nil {
				status, msg := mapReviewsError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 201, out)
		})

		pr.Get("/v1/reviews", func(w http.ResponseWriter, r *http.Request) {
			uid, _ := authctx.UID(r.Context())
			in := reviews.ListInput{Limit: queryInt(r, "limit"), Cursor: queryCursor(r)}
			out, next, err := d.ReviewsSvc.ListForUser(r.Context(), uid, in)
			if err != nil {
				status, msg := mapReviewsError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, listPage("reviews", out, next))
		})

		pr.Put("/v1/reviews/{reviewId}", func(w http.ResponseWriter, r *http.Request) {
			uid, _ := authctx.UID(r.Context())

			var in reviews.UpdateInput
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				Fail(w, 400, "invalid json")
				return
			}

			out, err := d.ReviewsSvc.Update(r.Context(), uid, chi.URLParam(r, "reviewId"), in)
			if err != nil {
				status, msg := mapReviewsError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, out)
		})

		pr.Delete("/v1/reviews/{reviewId}", func(w http.ResponseWriter, r *http.Request) {
			uid, _ := authctx.UID(r.Context())
			if err := d.ReviewsSvc.Delete(r.Context(), uid, chi.URLParam(r, "reviewId")); err != nil {
				status, msg := mapReviewsError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, map[string]any{"ok": true})
		})

		// ===== Notifications =====
		pr.Get("/v1/notifications", func(w http.ResponseWriter, r *http.Request) {
			uid, _ := authctx.UID(r.Context())
			unreadOnly := r.URL.Query().Get("unreadOnly") == "true"

			out, err := d.NotificationsSvc.List(r.Context(), uid, unreadOnly, queryInt(r, "limit"))
			if err != nil {
				status, msg := mapNotificationsError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, out)
		})

		pr.Post("/v1/notifications/markRead", func(w http.ResponseWriter, r *http.Request) {
			uid, _ := authctx.UID(r.Context())

			var in notifications.MarkReadInput
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				Fail(w, 400, "invalid json")
				return
			}

			count, err := d.NotificationsSvc.MarkRead(r.Context(), uid, in)
			if err != nil {
				status, msg := mapNotificationsError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, map[string]any{"updated": count})
		})

		pr.Delete("/v1/notifications/{notificationId}", func(w http.ResponseWriter, r *http.Request) {
			uid, _ := authctx.UID(r.Context())
			if err := d.NotificationsSvc.Delete(r.Context(), uid, chi.URLParam(r, "notificationId")); err != nil {
				status, msg := mapNotificationsError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, map[string]any{"ok": true})
		})

		// ===== Admin =====
		pr.Post("/v1/admin/users/{uid}/deactivate", func(w http.ResponseWriter, r *http.Request) {
			if !authctx.IsAdmin(r.Context()) {
				Fail(w, 403, "admin only")
				return
			}
			callerUID, _ := authctx.UID(r.Context())
			if err := d.ProfileSvc.Deactivate(r.Context(), callerUID, chi.URLParam(r, "uid")); err != nil {
				status, msg := mapProfileError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, map[string]any{"ok": true})
		})

		pr.Post("/v1/admin/users/{uid}/reactivate", func(w http.ResponseWriter, r *http.Request) {
			if !authctx.IsAdmin(r.Context()) {
				Fail(w, 403, "admin only")
				return
			}
			if err := d.ProfileSvc.Reactivate(r.Context(), chi.URLParam(r, "uid")); err != nil {
				status, msg := mapProfileError(err)
				Fail(w, status, msg)
				return
			}
			WriteJSON(w, 200, map[string]any{"ok": true})
		})
	})

	return r
}

// ---- query helpers ----

func queryInt(r *http.Request, name string) int {
	if s := r.URL.Query().Get(name); s != "" {
		if v, err := strconv.Atoi(s); err == nil {
			return v
		}
	}
	return 0
}

func queryCursor(r *http.Request) time.Time {
	if s := r.URL.Query().Get("cursor"); s != "" {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func listPage(key string, items any, next time.Time) map[string]any {
	out := map[string]any{key: items}
	if !next.IsZero() {
		out["nextCursor"] = next.Format(time.RFC3339)
	}
	return out
}

// ---- error mappers ----

func mapProfileError(err error) (int, string) {
	if err == nil {
		return 500, "unknown error"
	}
	switch {
	case errors.Is(err, profile.ErrCannotDeactivateSelf):
		return 409, err.Error()
	case profile.IsErrForbidden(err):
		return 403, err.Error()
	case profile.IsErrNotFound(err):
		return 404, err.Error()
	case profile.IsErrValidation(err):
		return 400, err.Error()
	case profile.IsErrAuth(err):
		// Identity-provider rejections (duplicate email, unknown
		// account, disabled user) are caller mistakes, not ours.
		return 400, err.Error()
	default:
		return 500, err.Error()
	}
}

func mapPriestsError(err error) (int, string) {
	if err == nil {
		return 500, "unknown error"
	}
	switch {
	case priests.IsErrNotFound(err):
		return 404, err.Error()
	case priests.IsErrBadRequest(err):
		return 400, err.Error()
	default:
		return 500, err.Error()
	}
}

func mapBookingError(err error) (int, string) {
	if err == nil {
		return 500, "unknown error"
	}
	switch {
	case booking.IsErrNoPriestAvailable(err):
		return 409, err.Error()
	case booking.IsErrInvalidTransition(err):
		return 409, err.Error()
	case booking.IsErrSlotTaken(err):
		return 409, err.Error()
	case booking.IsErrForbidden(err):
		return 403, err.Error()
	case booking.IsErrNotFound(err):
		return 404, err.Error()
	case booking.IsErrBadRequest(err):
		return 400, err.Error()
	default:
		return 500, err.Error()
	}
}

func mapReviewsError(err error) (int, string) {
	if err == nil {
		return 500, "unknown error"
	}
	switch {
	case reviews.IsErrDuplicateReview(err):
		return 409, err.Error()
	case errors.Is(err, reviews.ErrNotReviewable):
		return 409, err.Error()
	case errors.Is(err, reviews.ErrForbidden):
		return 403, err.Error()
	case reviews.IsErrNotFound(err):
		return 404, err.Error()
	case errors.Is(err, reviews.ErrBadRequest):
		return 400, err.Error()
	default:
		return 500, err.Error()
	}
}

func mapPaymentsError(err error) (int, string) {
	if err == nil {
		return 500, "unknown error"
	}
	switch {
	case payments.IsErrNotPayable(err), payments.IsErrNotRefundable(err):
		return 409, err.Error()
	case errors.Is(err, payments.ErrForbidden):
		return 403, err.Error()
	case payments.IsErrNotFound(err):
		return 404, err.Error()
	case errors.Is(err, payments.ErrNotConfigured):
		return 501, err.Error()
	case errors.Is(err, payments.ErrBadRequest):
		return 400, err.Error()
	default:
		return 500, err.Error()
	}
}

func mapNotificationsError(err error) (int, string) {
	if err == nil {
		return 500, "unknown error"
	}
	switch {
	case errors.Is(err, notifications.ErrForbidden):
		return 403, err.Error()
	case notifications.IsErrNotFound(err):
		return 404, err.Error()
	case errors.Is(err, notifications.ErrBadRequest):
		return 400, err.Error()
	default:
		return 500, err.Error()
	}
}

func mapStatsError(err error) (int, string) {
	if err == nil {
		return 500, "unknown error"
	}
	switch {
	case errors.Is(err, stats.ErrNotFound):
		return 404, err.Error()
	case errors.Is(err, stats.ErrBadRequest):
		return 400, err.Error()
	default:
		return 500, err.Error()
	}
}
