package reviews

import (
	"context"
	"fmt"
	"time"

	"priestbook/backend/internal/models"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
)

type Repo struct {
	fs *firestore.Client
}

func NewRepo(fs *firestore.Client) *Repo {
	return &Repo{fs: fs}
}

func (r *Repo) reviews() *firestore.CollectionRef {
	return r.fs.Collection("reviews")
}

func (r *Repo) bookings() *firestore.CollectionRef {
	return r.fs.Collection("bookings")
}

func (r *Repo) users() *firestore.CollectionRef {
	return r.fs.Collection("users")
}

// Create writes the review and recomputes the priest's rating summary in
// one transaction. The booking is re-read inside the transaction so two
// concurrent submissions for the same booking cannot both commit: the
// second one sees reviewId already set and fails with ErrDuplicateReview.
func (r *Repo) Create(ctx context.Context, userID string, in CreateInput) (*models.Review, error) {
	ref := r.reviews().NewDoc()
	now := time.Now().UTC()
	rv := models.Review{
		BookingID: in.BookingID,
		UserID:    userID,
		Rating:    in.Rating,
		Comment:   in.Comment,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := r.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		bref := r.bookings().Doc(in.BookingID)
		snap, err := tx.Get(bref)
		if err != nil {
			return fmt.Errorf("%w: booking %s", ErrNotFound, in.BookingID)
		}
		var b models.Booking
		if err := snap.DataTo(&b); err != nil {
			return fmt.Errorf("failed to decode booking: %w", err)
		}
		if b.UserID != userID {
			return fmt.Errorf("%w: booking belongs to another user", ErrForbidden)
		}
		if b.Status != models.BookingCompleted {
			return fmt.Errorf("%w: booking is %s", ErrNotReviewable, b.Status)
		}
		if b.ReviewID != "" {
			return fmt.Errorf("%w: booking %s", ErrDuplicateReview, in.BookingID)
		}
		rv.PriestID = b.PriestID

		ratings, err := r.priestRatings(tx, b.PriestID, "")
		if err != nil {
			return err
		}
		ratings = append(ratings, rv.Rating)

		if err := tx.Set(ref, rv); err != nil {
			return err
		}
		if err := tx.Update(bref, []firestore.Update{
			{Path: "reviewId", Value: ref.ID},
			{Path: "updatedAt", Value: now},
		}); err != nil {
			return err
		}
		return r.writeSummary(tx, b.PriestID, ratings, now)
	})
	if err != nil {
		return nil, err
	}

	rv.ID = ref.ID
	return &rv, nil
}

// Update changes the rating or comment and recomputes the priest's
// summary with the old rating replaced.
func (r *Repo) Update(ctx context.Context, userID, id string, in UpdateInput) (*models.Review, error) {
	ref := r.reviews().Doc(id)
	now := time.Now().UTC()

	var out models.Review
	err := r.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return fmt.Errorf("%w: review %s", ErrNotFound, id)
		}
		var rv models.Review
		if err := snap.DataTo(&rv); err != nil {
			return fmt.Errorf("failed to decode review: %w", err)
		}
		if rv.UserID != userID {
			return fmt.Errorf("%w: review belongs to another user", ErrForbidden)
		}

		if in.Rating != nil {
			rv.Rating = *in.Rating
		}
		if in.Comment != nil {
			rv.Comment = *in.Comment
		}
		rv.UpdatedAt = now

		ratings, err := r.priestRatings(tx, rv.PriestID, id)
		if err != nil {
			return err
		}
		ratings = append(ratings, rv.Rating)

		if err := tx.Set(ref, rv); err != nil {
			return err
		}
		if err := r.writeSummary(tx, rv.PriestID, ratings, now); err != nil {
			return err
		}

		out = rv
		out.ID = id
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes the review, clears the booking's reviewId so the booking
// becomes reviewable again, and recomputes the priest's summary without
// the deleted rating.
func (r *Repo) Delete(ctx context.Context, userID, id string) error {
	ref := r.reviews().Doc(id)
	now := time.Now().UTC()

	return r.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return fmt.Errorf("%w: review %s", ErrNotFound, id)
		}
		var rv models.Review
		if err := snap.DataTo(&rv); err != nil {
			return fmt.Errorf("failed to decode review: %w", err)
		}
		if rv.UserID != userID {
			return fmt.Errorf("%w: review belongs to another user", ErrForbidden)
		}

		ratings, err := r.priestRatings(tx, rv.PriestID, id)
		if err != nil {
			return err
		}

		if err := tx.Delete(ref); err != nil {
			return err
		}
		if err := tx.Update(r.bookings().Doc(rv.BookingID), []firestore.Update{
			{Path: "reviewId", Value: firestore.Delete},
			{Path: "updatedAt", Value: now},
		}); err != nil {
			return err
		}
		return r.writeSummary(tx, rv.PriestID, ratings, now)
	})
}

func (r *Repo) Get(ctx context.Context, id string) (*models.Review, error) {
	doc, err := r.reviews().Doc(id).Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: review %s", ErrNotFound, id)
	}

	var rv models.Review
	if err := doc.DataTo(&rv); err != nil {
		return nil, fmt.Errorf("failed to decode review: %w", err)
	}
	rv.ID = doc.Ref.ID
	return &rv, nil
}

func (r *Repo) ListForPriest(ctx context.Context, priestID string, in ListInput) ([]models.Review, time.Time, error) {
	return r.list(ctx, "priestId", priestID, in)
}

func (r *Repo) ListForUser(ctx context.Context, uid string, in ListInput) ([]models.Review, time.Time, error) {
	return r.list(ctx, "userId", uid, in)
}

func (r *Repo) list(ctx context.Context, field, uid string, in ListInput) ([]models.Review, time.Time, error) {
	limit := in.Limit
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	q := r.reviews().Query.Where(field, "==", uid).OrderBy("createdAt", firestore.Desc)
	if !in.Cursor.IsZero() {
		q = q.StartAfter(in.Cursor)
	}
	q = q.Limit(limit)

	iter := q.Documents(ctx)
	defer iter.Stop()

	out := []models.Review{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, time.Time{}, fmt.Errorf("failed to iterate reviews: %w", err)
		}
		var rv models.Review
		if err := doc.DataTo(&rv); err != nil {
			continue
		}
		rv.ID = doc.Ref.ID
		out = append(out, rv)
	}

	var next time.Time
	if len(out) == limit {
		next = out[len(out)-1].CreatedAt
	}
	return out, next, nil
}

// priestRatings collects the priest's current ratings inside the
// transaction, skipping excludeID so callers can replace or drop one.
func (r *Repo) priestRatings(tx *firestore.Transaction, priestID, excludeID string) ([]int, error) {
	iter := tx.Documents(r.reviews().Where("priestId", "==", priestID))
	defer iter.Stop()

	var ratings []int
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate reviews: %w", err)
		}
		if doc.Ref.ID == excludeID {
			continue
		}
		var rv models.Review
		if err := doc.DataTo(&rv); err != nil {
			continue
		}
		ratings = append(ratings, rv.Rating)
	}
	return ratings, nil
}

func (r *Repo) writeSummary(tx *firestore.Transaction, priestID string, ratings []int, now time.Time) error {
	return tx.Update(r.users().Doc(priestID), []firestore.Update{
		{Path: "rating", Value: Mean(ratings)},
		{Path: "reviewCount", Value: len(ratings)},
		{Path: "updatedAt", Value: now},
	})
}
