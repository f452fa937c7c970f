package reviews

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"priestbook/backend/internal/models"
)

// fakeStore mirrors the Firestore repo's semantics in memory, including
// the rating summary kept on the priest document.
type fakeStore struct {
	bookings map[string]*models.Booking
	reviews  map[string]*models.Review
	rating   map[string]float64
	count    map[string]int
	nextID   int
}

func newFakeStore(bookings ...*models.Booking) *fakeStore {
	s := &fakeStore{
		bookings: map[string]*models.Booking{},
		reviews:  map[string]*models.Review{},
		rating:   map[string]float64{},
		count:    map[string]int{},
	}
	for _, b := range bookings {
		s.bookings[b.ID] = b
	}
	return s
}

func (s *fakeStore) Create(_ context.Context, userID string, in CreateInput) (*models.Review, error) {
	b, ok := s.bookings[in.BookingID]
	if !ok {
		return nil, fmt.Errorf("%w: booking %s", ErrNotFound, in.BookingID)
	}
	if b.UserID != userID {
		return nil, fmt.Errorf("%w: booking belongs to another user", ErrForbidden)
	}
	if b.Status != models.BookingCompleted {
		return nil, fmt.Errorf("%w: booking is %s", ErrNotReviewable, b.Status)
	}
	if b.ReviewID != "" {
		return nil, fmt.Errorf("%w: booking %s", ErrDuplicateReview, in.BookingID)
	}

	s.nextID++
	rv := &models.Review{
		ID:        fmt.Sprintf("rv-%d", s.nextID),
		BookingID: in.BookingID,
		UserID:    userID,
		PriestID:  b.PriestID,
		Rating:    in.Rating,
		Comment:   in.Comment,
	}
	s.reviews[rv.ID] = rv
	b.ReviewID = rv.ID
	s.recompute(b.PriestID)
	return rv, nil
}

func (s *fakeStore) Update(_ context.Context, userID, id string, in UpdateInput) (*models.Review, error) {
	rv, ok := s.reviews[id]
	if !ok {
		return nil, fmt.Errorf("%w: review %s", ErrNotFound, id)
	}
	if rv.UserID != userID {
		return nil, fmt.Errorf("%w: review belongs to another user", ErrForbidden)
	}
	if in.Rating != nil {
		rv.Rating = *in.Rating
	}
	if in.Comment != nil {
		rv.Comment = *in.Comment
	}
	s.recompute(rv.PriestID)
	return rv, nil
}

func (s *fakeStore) Delete(_ context.Context, userID, id string) error {
	rv, ok := s.reviews[id]
	if !ok {
		return fmt.Errorf("%w: review %s", ErrNotFound, id)
	}
	if rv.UserID != userID {
		return fmt.Errorf("%w: review belongs to another user", ErrForbidden)
	}
	delete(s.reviews, id)
	if b, ok := s.bookings[rv.BookingID]; ok {
		b.ReviewID = ""
	}
	s.recompute(rv.PriestID)
	return nil
}

func (s *fakeStore) Get(_ context.Context, id string) (*models.Review, error) {
	rv, ok := s.reviews[id]
	if !ok {
		return nil, fmt.Errorf("%w: review %s", ErrNotFound, id)
	}
	return rv, nil
}

func (s *fakeStore) ListForPriest(_ context.Context, priestID string, _ ListInput) ([]models.Review, time.Time, error) {
	var out []models.Review
	for _, rv := range s.reviews {
		if rv.PriestID == priestID {
			out = append(out, *rv)
		}
	}
	return out, time.Time{}, nil
}

func (s *fakeStore) ListForUser(_ context.Context, uid string, _ ListInput) ([]models.Review, time.Time, error) {
	var out []models.Review
	for _, rv := range s.reviews {
		if rv.UserID == uid {
			out = append(out, *rv)
		}
	}
	return out, time.Time{}, nil
}

func (s *fakeStore) recompute(priestID string) {
	var ratings []int
	for _, rv := range s.reviews {
		if rv.PriestID == priestID {
			ratings = append(ratings, rv.Rating)
		}
	}
	s.rating[priestID] = Mean(ratings)
	s.count[priestID] = len(ratings)
}

func completedBooking(id, userID, priestID string) *models.Booking {
	return &models.Booking{
		ID:       id,
		UserID:   userID,
		PriestID: priestID,
		Status:   models.BookingCompleted,
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestCreateUpdatesRatingSummary(t *testing.T) {
	store := newFakeStore(
		completedBooking("b1", "u1", "p1"),
		completedBooking("b2", "u2", "p1"),
		completedBooking("b3", "u3", "p1"),
	)
	svc := NewService(store)

	for i, in := range []CreateInput{
		{BookingID: "b1", Rating: 5},
		{BookingID: "b2", Rating: 4},
		{BookingID: "b3", Rating: 3},
	} {
		uid := fmt.Sprintf("u%d", i+1)
		if _, err := svc.Create(context.Background(), uid, in); err != nil {
			t.Fatalf("create %s: %v", in.BookingID, err)
		}
	}

	if got := store.rating["p1"]; !almostEqual(got, 4.0) {
		t.Errorf("rating = %v, want 4.0", got)
	}
	if got := store.count["p1"]; got != 3 {
		t.Errorf("reviewCount = %d, want 3", got)
	}
}

func TestDeleteRecomputesRatingSummary(t *testing.T) {
	store := newFakeStore(
		completedBooking("b1", "u1", "p1"),
		completedBooking("b2", "u2", "p1"),
		completedBooking("b3", "u3", "p1"),
	)
	svc := NewService(store)

	var last *models.Review
	for i, rating := range []int{5, 4, 3} {
		uid := fmt.Sprintf("u%d", i+1)
		rv, err := svc.Create(context.Background(), uid, CreateInput{BookingID: fmt.Sprintf("b%d", i+1), Rating: rating})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		last = rv
	}

	if err := svc.Delete(context.Background(), "u3", last.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got := store.rating["p1"]; !almostEqual(got, 4.5) {
		t.Errorf("rating after delete = %v, want 4.5", got)
	}
	if got := store.count["p1"]; got != 2 {
		t.Errorf("reviewCount after delete = %d, want 2", got)
	}
	if store.bookings["b3"].ReviewID != "" {
		t.Error("deleting the review must clear the booking's reviewId")
	}
}

func TestZeroReviewsMeansZeroRating(t *testing.T) {
	store := newFakeStore(completedBooking("b1", "u1", "p1"))
	svc := NewService(store)

	rv, err := svc.Create(context.Background(), "u1", CreateInput{BookingID: "b1", Rating: 5})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Delete(context.Background(), "u1", rv.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if got := store.rating["p1"]; got != 0 {
		t.Errorf("rating = %v, want 0", got)
	}
	if got := store.count["p1"]; got != 0 {
		t.Errorf("reviewCount = %d, want 0", got)
	}
}

func TestCreateRejectsDuplicate(t *testing.T) {
	store := newFakeStore(completedBooking("b1", "u1", "p1"))
	svc := NewService(store)

	if _, err := svc.Create(context.Background(), "u1", CreateInput{BookingID: "b1", Rating: 5}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := svc.Create(context.Background(), "u1", CreateInput{BookingID: "b1", Rating: 4})
	if !errors.Is(err, ErrDuplicateReview) {
		t.Fatalf("expected ErrDuplicateReview, got %v", err)
	}
	if got := store.count["p1"]; got != 1 {
		t.Errorf("reviewCount = %d, want 1", got)
	}
}

func TestCreateRequiresCompletedBooking(t *testing.T) {
	b := completedBooking("b1", "u1", "p1")
	b.Status = models.BookingConfirmed
	svc := NewService(newFakeStore(b))

	_, err := svc.Create(context.Background(), "u1", CreateInput{BookingID: "b1", Rating: 5})
	if !errors.Is(err, ErrNotReviewable) {
		t.Fatalf("expected ErrNotReviewable, got %v", err)
	}
}

func TestCreateRequiresBookingOwner(t *testing.T) {
	svc := NewService(newFakeStore(completedBooking("b1", "u1", "p1")))

	_, err := svc.Create(context.Background(), "someone-else", CreateInput{BookingID: "b1", Rating: 5})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(newFakeStore())

	cases := []struct {
		name string
		in   CreateInput
	}{
		{"missing booking", CreateInput{Rating: 5}},
		{"rating too low", CreateInput{BookingID: "b1", Rating: 0}},
		{"rating too high", CreateInput{BookingID: "b1", Rating: 6}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := svc.Create(context.Background(), "u1", c.in); !errors.Is(err, ErrBadRequest) {
				t.Fatalf("expected ErrBadRequest, got %v", err)
			}
		})
	}
}

func TestUpdateReplacesRating(t *testing.T) {
	store := newFakeStore(
		completedBooking("b1", "u1", "p1"),
		completedBooking("b2", "u2", "p1"),
	)
	svc := NewService(store)

	rv, err := svc.Create(context.Background(), "u1", CreateInput{BookingID: "b1", Rating: 2})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(context.Background(), "u2", CreateInput{BookingID: "b2", Rating: 4}); err != nil {
		t.Fatalf("create: %v", err)
	}

	five := 5
	if _, err := svc.Update(context.Background(), "u1", rv.ID, UpdateInput{Rating: &five}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := store.rating["p1"]; !almostEqual(got, 4.5) {
		t.Errorf("rating = %v, want 4.5", got)
	}

	// Empty patch is rejected.
	if _, err := svc.Update(context.Background(), "u1", rv.ID, UpdateInput{}); !errors.Is(err, ErrBadRequest) {
		t.Fatalf("expected ErrBadRequest for empty patch, got %v", err)
	}
}

func TestMean(t *testing.T) {
	cases := []struct {
		ratings []int
		want    float64
	}{
		{nil, 0},
		{[]int{5}, 5},
		{[]int{5, 4, 3}, 4},
		{[]int{5, 4}, 4.5},
	}
	for _, c := range cases {
		if got := Mean(c.ratings); !almostEqual(got, c.want) {
			t.Errorf("Mean(%v) = %v, want %v", c.ratings, got, c.want)
		}
	}
}
