package payments

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"

	"priestbook/backend/internal/models"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/webhook"
)

// Webhook processes Stripe events and moves booking payment state along.
// Failures after signature verification are logged but acknowledged, so
// Stripe does not retry events we cannot act on.
func (s *Service) Webhook(w http.ResponseWriter, r *http.Request) {
	if s.cfg.StripeWebhookSecret == "" {
		http.Error(w, "stripe webhook not configured", http.StatusNotImplemented)
		return
	}

	const maxBodyBytes = int64(65536)
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	event, err := webhook.ConstructEvent(body, r.Header.Get("Stripe-Signature"), s.cfg.StripeWebhookSecret)
	if err != nil {
		http.Error(w, "signature verification failed", http.StatusBadRequest)
		return
	}

	ctx := r.Context()

	switch event.Type {
	case "checkout.session.completed", "checkout.session.async_payment_succeeded":
		if err := s.handleSession(ctx, event, models.PaymentCompleted); err != nil {
			log.Printf("webhook %s: %v", event.Type, err)
		}
	case "checkout.session.expired", "checkout.session.async_payment_failed":
		if err := s.handleSession(ctx, event, models.PaymentFailed); err != nil {
			log.Printf("webhook %s: %v", event.Type, err)
		}
	case "charge.refunded":
		if err := s.handleRefunded(ctx, event); err != nil {
			log.Printf("webhook %s: %v", event.Type, err)
		}
	default:
		log.Printf("webhook: ignoring event type %s", event.Type)
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"received":true}`))
}

func (s *Service) handleSession(ctx context.Context, event stripe.Event, to models.PaymentStatus) error {
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return err
	}
	bookingID := sess.Metadata["bookingId"]
	if bookingID == "" {
		log.Printf("webhook: session %s has no bookingId metadata", sess.ID)
		return nil
	}

	var intentID string
	if sess.PaymentIntent != nil {
		intentID = sess.PaymentIntent.ID
	}
	return s.bookings.SetPayment(ctx, bookingID, to, intentID)
}

func (s *Service) handleRefunded(ctx context.Context, event stripe.Event) error {
	var ch stripe.Charge
	if err := json.Unmarshal(event.Data.Raw, &ch); err != nil {
		return err
	}
	bookingID := ch.Metadata["bookingId"]
	if bookingID == "" {
		return nil
	}
	return s.bookings.SetPayment(ctx, bookingID, models.PaymentRefunded, "")
}
