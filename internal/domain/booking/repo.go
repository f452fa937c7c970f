package booking

import (
	"context"
	"fmt"
	"time"

	"priestbook/backend/internal/models"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
)

// activeStatuses are the statuses that hold a priest's time. Cancelled
// bookings release the slot.
var activeStatuses = []string{
	string(models.BookingPending),
	string(models.BookingConfirmed),
	string(models.BookingInProgress),
	string(models.BookingCompleted),
}

type Repo struct {
	fs *firestore.Client
}

func NewRepo(fs *firestore.Client) *Repo {
	return &Repo{fs: fs}
}

func (r *Repo) bookings() *firestore.CollectionRef {
	return r.fs.Collection("bookings")
}

// CreateIfFree persists b unless a non-cancelled booking for the same
// priest overlaps the requested window. The conflict re-check and the
// write run in one transaction, so two concurrent requests for the same
// slot cannot both commit. If the document already exists (idempotency-key
// replay) the existing booking id is returned, nothing is written, and
// created is false so callers skip side effects.
func (r *Repo) CreateIfFree(ctx context.Context, b models.Booking) (string, bool, error) {
	ref := r.bookings().Doc(b.ID)

	created := false
	err := r.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		created = false // the transaction may retry
		if snap, err := tx.Get(ref); err == nil && snap.Exists() {
			return nil // replay of the same idempotency key
		}

		q := r.bookings().
			Where("priestId", "==", b.PriestID).
			Where("serviceDate", "==", b.ServiceDate).
			Where("status", "in", activeStatuses)
		iter := tx.Documents(q)
		defer iter.Stop()

		for {
			doc, err := iter.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				return fmt.Errorf("failed to check conflicts: %w", err)
			}
			var existing models.Booking
			if err := doc.DataTo(&existing); err != nil {
				continue
			}
			if models.Overlaps(existing.StartTime, existing.EndTime, b.StartTime, b.EndTime) {
				return fmt.Errorf("%w: priest %s at %s-%s", ErrSlotTaken, b.PriestID, b.StartTime, b.EndTime)
			}
		}

		created = true
		return tx.Set(ref, b)
	})
	if err != nil {
		return "", false, err
	}
	return b.ID, created, nil
}

func (r *Repo) Get(ctx context.Context, id string) (*models.Booking, error) {
	doc, err := r.bookings().Doc(id).Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: booking %s", ErrNotFound, id)
	}

	var b models.Booking
	if err := doc.DataTo(&b); err != nil {
		return nil, fmt.Errorf("failed to decode booking: %w", err)
	}
	b.ID = doc.Ref.ID
	return &b, nil
}

// ActiveForPriestOnDate returns the priest's non-cancelled bookings for
// one calendar day; the availability selector checks these for overlap.
func (r *Repo) ActiveForPriestOnDate(ctx context.Context, priestID string, date time.Time) ([]models.Booking, error) {
	q := r.bookings().
		Where("priestId", "==", priestID).
		Where("serviceDate", "==", date).
		Where("status", "in", activeStatuses)
	return r.collect(ctx, q)
}

func (r *Repo) ListForUser(ctx context.Context, uid string, in ListInput) ([]models.Booking, time.Time, error) {
	return r.list(ctx, "userId", uid, in)
}

func (r *Repo) ListForPriest(ctx context.Context, uid string, in ListInput) ([]models.Booking, time.Time, error) {
	return r.list(ctx, "priestId", uid, in)
}

func (r *Repo) list(ctx context.Context, field, uid string, in ListInput) ([]models.Booking, time.Time, error) {
	limit := in.Limit
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	q := r.bookings().Query.Where(field, "==", uid)
	if in.Status != "" {
		q = q.Where("status", "==", string(in.Status))
	}
	q = q.OrderBy("serviceDate", firestore.Desc)
	if !in.Cursor.IsZero() {
		q = q.StartAfter(in.Cursor)
	}
	q = q.Limit(limit)

	out, err := r.collect(ctx, q)
	if err != nil {
		return nil, time.Time{}, err
	}

	var next time.Time
	if len(out) == limit {
		next = out[len(out)-1].ServiceDate
	}
	return out, next, nil
}

// UpdateStatus applies a status change atomically, re-validating the
// transition against the stored state inside the transaction.
func (r *Repo) UpdateStatus(ctx context.Context, id string, to models.BookingStatus) (*models.Booking, error) {
	ref := r.bookings().Doc(id)

	err := r.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return fmt.Errorf("%w: booking %s", ErrNotFound, id)
		}
		var b models.Booking
		if err := snap.DataTo(&b); err != nil {
			return fmt.Errorf("failed to decode booking: %w", err)
		}
		if !CanTransition(b.Status, to) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, b.Status, to)
		}
		return tx.Update(ref, []firestore.Update{
			{Path: "status", Value: string(to)},
			{Path: "updatedAt", Value: time.Now().UTC()},
		})
	})
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

// SetPayment records the payment state and, when present, the Stripe
// payment intent backing it.
func (r *Repo) SetPayment(ctx context.Context, id string, status models.PaymentStatus, intentID string) error {
	updates := []firestore.Update{
		{Path: "paymentStatus", Value: string(status)},
		{Path: "updatedAt", Value: time.Now().UTC()},
	}
	if intentID != "" {
		updates = append(updates, firestore.Update{Path: "paymentIntentId", Value: intentID})
	}
	if _, err := r.bookings().Doc(id).Update(ctx, updates); err != nil {
		return fmt.Errorf("failed to update payment status: %w", err)
	}
	return nil
}

func (r *Repo) collect(ctx context.Context, q firestore.Query) ([]models.Booking, error) {
	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []models.Booking
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate bookings: %w", err)
		}
		var b models.Booking
		if err := doc.DataTo(&b); err != nil {
			continue
		}
		b.ID = doc.Ref.ID
		out = append(out, b)
	}

	if out == nil {
		out = []models.Booking{}
	}
	return out, nil
}
