package booking

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"priestbook/backend/internal/domain/priests"
	"priestbook/backend/internal/geo"
	"priestbook/backend/internal/models"
)

func slot(start, end string) models.TimeSlot {
	return models.TimeSlot{Start: start, End: end}
}

// fakeFinder places priests at fixed distances north of the center.
type fakeFinder struct {
	priests []models.PriestProfile
}

func (f *fakeFinder) SearchByLocation(_ context.Context, center geo.LatLng, radiusKm float64, limit int) ([]priests.Candidate, error) {
	out := priests.Nearby(f.priests, center, radiusKm)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeFinder) Get(_ context.Context, uid string) (*models.PriestProfile, error) {
	for i := range f.priests {
		if f.priests[i].UID == uid {
			return &f.priests[i], nil
		}
	}
	return nil, fmt.Errorf("%w: priest %s", ErrNotFound, uid)
}

// fakeStore is an in-memory Store with the same conflict semantics as the
// Firestore repo.
type fakeStore struct {
	bookings map[string]models.Booking
}

func newFakeStore() *fakeStore {
	return &fakeStore{bookings: map[string]models.Booking{}}
}

// fakeNotifier counts lifecycle events.
type fakeNotifier struct {
	created       int
	statusChanged int
}

func (n *fakeNotifier) BookingCreated(_ context.Context, _ models.Booking)       { n.created++ }
func (n *fakeNotifier) BookingStatusChanged(_ context.Context, _ models.Booking) { n.statusChanged++ }

func (s *fakeStore) CreateIfFree(_ context.Context, b models.Booking) (string, bool, error) {
	if _, ok := s.bookings[b.ID]; ok {
		return b.ID, false, nil
	}
	for _, existing := range s.bookings {
		if existing.PriestID != b.PriestID || existing.Status == models.BookingCancelled {
			continue
		}
		if !existing.ServiceDate.Equal(b.ServiceDate) {
			continue
		}
		if models.Overlaps(existing.StartTime, existing.EndTime, b.StartTime, b.EndTime) {
			return "", false, fmt.Errorf("%w: priest %s", ErrSlotTaken, b.PriestID)
		}
	}
	s.bookings[b.ID] = b
	return b.ID, true, nil
}

func (s *fakeStore) Get(_ context.Context, id string) (*models.Booking, error) {
	b, ok := s.bookings[id]
	if !ok {
		return nil, fmt.Errorf("%w: booking %s", ErrNotFound, id)
	}
	return &b, nil
}

func (s *fakeStore) ActiveForPriestOnDate(_ context.Context, priestID string, date time.Time) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range s.bookings {
		if b.PriestID == priestID && b.ServiceDate.Equal(date) && b.Status != models.BookingCancelled {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *fakeStore) ListForUser(_ context.Context, uid string, _ ListInput) ([]models.Booking, time.Time, error) {
	var out []models.Booking
	for _, b := range s.bookings {
		if b.UserID == uid {
			out = append(out, b)
		}
	}
	return out, time.Time{}, nil
}

func (s *fakeStore) ListForPriest(_ context.Context, uid string, _ ListInput) ([]models.Booking, time.Time, error) {
	var out []models.Booking
	for _, b := range s.bookings {
		if b.PriestID == uid {
			out = append(out, b)
		}
	}
	return out, time.Time{}, nil
}

func (s *fakeStore) UpdateStatus(_ context.Context, id string, to models.BookingStatus) (*models.Booking, error) {
	b, ok := s.bookings[id]
	if !ok {
		return nil, fmt.Errorf("%w: booking %s", ErrNotFound, id)
	}
	if !CanTransition(b.Status, to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, b.Status, to)
	}
	b.Status = to
	s.bookings[id] = b
	return &b, nil
}

// priestKmAway builds a priest km kilometers north of (0,0), available
// 09:00-17:00 every day.
func priestKmAway(uid string, km float64) models.PriestProfile {
	av := models.WeeklyAvailability{}
	for d := 0; d < 7; d++ {
		av[models.DayKey(d)] = []models.TimeSlot{slot("09:00", "17:00")}
	}
	return models.PriestProfile{
		UserProfile: models.UserProfile{
			UID:      uid,
			Kind:     models.KindPriest,
			Location: &models.Location{Latitude: km / 111.2, Longitude: 0},
		},
		Availability: av,
	}
}

func assignInput() AssignInput {
	return AssignInput{
		CreateInput: CreateInput{
			ServiceName: "Griha Pravesh Puja",
			ServiceDate: "2026-09-14",
			StartTime:   "14:00",
			EndTime:     "15:00",
			Location:    models.BookingLocation{Address: "12 Temple Road"},
			TotalAmount: 150,
		},
		Latitude:  0,
		Longitude: 0,
	}
}

func TestAssignBindsNearestAvailablePriest(t *testing.T) {
	store := newFakeStore()
	finder := &fakeFinder{priests: []models.PriestProfile{
		priestKmAway("far", 8),
		priestKmAway("near", 4),
	}}
	svc := NewService(store, finder)

	got, err := svc.Assign(context.Background(), "client-1", assignInput())
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if got.PriestID != "near" {
		t.Fatalf("expected nearest priest, got %s", got.PriestID)
	}

	b, err := store.Get(context.Background(), got.BookingID)
	if err != nil {
		t.Fatalf("created booking not found: %v", err)
	}
	if b.Status != models.BookingPending {
		t.Errorf("status = %s, want pending", b.Status)
	}
	if b.PaymentStatus != models.PaymentPending {
		t.Errorf("paymentStatus = %s, want pending", b.PaymentStatus)
	}
	if b.PriestID != got.PriestID {
		t.Errorf("booking priest %s does not match assignment %s", b.PriestID, got.PriestID)
	}
	if len(store.bookings) != 1 {
		t.Errorf("expected exactly one booking, got %d", len(store.bookings))
	}
}

func TestAssignWidensRadiusTo50km(t *testing.T) {
	store := newFakeStore()
	finder := &fakeFinder{priests: []models.PriestProfile{
		priestKmAway("p40", 40),
		priestKmAway("p20", 20),
	}}
	svc := NewService(store, finder)

	got, err := svc.Assign(context.Background(), "client-1", assignInput())
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if got.PriestID != "p20" {
		t.Fatalf("expected the nearer wide-radius priest, got %s", got.PriestID)
	}
}

func TestAssignNoPriestInRange(t *testing.T) {
	store := newFakeStore()
	finder := &fakeFinder{priests: []models.PriestProfile{priestKmAway("p99", 99)}}
	svc := NewService(store, finder)

	_, err := svc.Assign(context.Background(), "client-1", assignInput())
	if !errors.Is(err, ErrNoPriestAvailable) {
		t.Fatalf("expected ErrNoPriestAvailable, got %v", err)
	}
	if len(store.bookings) != 0 {
		t.Errorf("no booking must be created on failure, got %d", len(store.bookings))
	}
}

func TestAssignSkipsPriestWithEmptyDay(t *testing.T) {
	closed := priestKmAway("closed", 2)
	// 2026-09-14 is a Monday.
	closed.Availability["monday"] = []models.TimeSlot{}
	open := priestKmAway("open", 6)

	store := newFakeStore()
	svc := NewService(store, &fakeFinder{priests: []models.PriestProfile{closed, open}})

	got, err := svc.Assign(context.Background(), "client-1", assignInput())
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if got.PriestID != "open" {
		t.Fatalf("expected the priest with declared hours, got %s", got.PriestID)
	}
}

func TestAssignSkipsPriestWithConflictingBooking(t *testing.T) {
	store := newFakeStore()
	finder := &fakeFinder{priests: []models.PriestProfile{
		priestKmAway("busy", 2),
		priestKmAway("free", 6),
	}}
	svc := NewService(store, finder)

	// First booking takes the busy priest's 14:00-15:00.
	first, err := svc.Assign(context.Background(), "client-1", assignInput())
	if err != nil {
		t.Fatalf("first assign: %v", err)
	}
	if first.PriestID != "busy" {
		t.Fatalf("setup: expected busy priest first, got %s", first.PriestID)
	}

	// Overlapping request must fall through to the farther priest.
	in := assignInput()
	in.StartTime, in.EndTime = "14:30", "15:30"
	second, err := svc.Assign(context.Background(), "client-2", in)
	if err != nil {
		t.Fatalf("second assign: %v", err)
	}
	if second.PriestID != "free" {
		t.Fatalf("expected conflict-free priest, got %s", second.PriestID)
	}
}

func TestAssignNoneAvailableAtWindow(t *testing.T) {
	store := newFakeStore()
	finder := &fakeFinder{priests: []models.PriestProfile{priestKmAway("p", 2)}}
	svc := NewService(store, finder)

	in := assignInput()
	in.StartTime, in.EndTime = "18:00", "19:00" // outside 09:00-17:00
	_, err := svc.Assign(context.Background(), "client-1", in)
	if !errors.Is(err, ErrNoPriestAvailable) {
		t.Fatalf("expected ErrNoPriestAvailable, got %v", err)
	}
	if len(store.bookings) != 0 {
		t.Errorf("no booking must be created on failure, got %d", len(store.bookings))
	}
}

func TestAssignIdempotencyKeyReplay(t *testing.T) {
	store := newFakeStore()
	finder := &fakeFinder{priests: []models.PriestProfile{priestKmAway("p", 2)}}
	notifier := &fakeNotifier{}
	svc := NewService(store, finder)
	svc.SetNotifier(notifier)

	in := assignInput()
	in.IdempotencyKey = "req-42"

	first, err := svc.Assign(context.Background(), "client-1", in)
	if err != nil {
		t.Fatalf("first assign: %v", err)
	}
	second, err := svc.Assign(context.Background(), "client-1", in)
	if err != nil {
		t.Fatalf("replay assign: %v", err)
	}
	if first.BookingID != second.BookingID {
		t.Fatalf("replay created a new booking: %s vs %s", first.BookingID, second.BookingID)
	}
	if len(store.bookings) != 1 {
		t.Errorf("expected one booking after replay, got %d", len(store.bookings))
	}
	if notifier.created != 1 {
		t.Errorf("expected one created notification after replay, got %d", notifier.created)
	}
}

func TestAssignValidation(t *testing.T) {
	svc := NewService(newFakeStore(), &fakeFinder{})

	cases := []struct {
		name   string
		mutate func(*AssignInput)
	}{
		{"missing service", func(in *AssignInput) { in.ServiceName = "" }},
		{"bad start time", func(in *AssignInput) { in.StartTime = "2pm" }},
		{"end before start", func(in *AssignInput) { in.StartTime, in.EndTime = "15:00", "14:00" }},
		{"bad date", func(in *AssignInput) { in.ServiceDate = "next tuesday" }},
		{"negative amount", func(in *AssignInput) { in.TotalAmount = -1 }},
		{"bad coordinates", func(in *AssignInput) { in.Latitude = 91 }},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			in := assignInput()
			c.mutate(&in)
			if _, err := svc.Assign(context.Background(), "client-1", in); !errors.Is(err, ErrBadRequest) {
				t.Fatalf("expected ErrBadRequest, got %v", err)
			}
		})
	}
}

func TestCreateRejectsWindowOutsideDeclaredHours(t *testing.T) {
	store := newFakeStore()
	finder := &fakeFinder{priests: []models.PriestProfile{priestKmAway("p", 2)}}
	svc := NewService(store, finder)

	in := assignInput().CreateInput
	in.StartTime, in.EndTime = "07:00", "08:00"
	_, err := svc.Create(context.Background(), "client-1", "p", in)
	if !errors.Is(err, ErrNoPriestAvailable) {
		t.Fatalf("expected ErrNoPriestAvailable, got %v", err)
	}
}

func TestUpdateStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to models.BookingStatus
		legal    bool
	}{
		{models.BookingPending, models.BookingConfirmed, true},
		{models.BookingPending, models.BookingCancelled, true},
		{models.BookingPending, models.BookingCompleted, false},
		{models.BookingConfirmed, models.BookingInProgress, true},
		{models.BookingConfirmed, models.BookingCompleted, false},
		{models.BookingInProgress, models.BookingCompleted, true},
		{models.BookingCompleted, models.BookingCancelled, false},
		{models.BookingCancelled, models.BookingConfirmed, false},
	}
	for _, c := range cases {
		if got := CanTransition(c.from, c.to); got != c.legal {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", c.from, c.to, got, c.legal)
		}
	}
}

func TestUpdateStatusAuthorization(t *testing.T) {
	store := newFakeStore()
	finder := &fakeFinder{priests: []models.PriestProfile{priestKmAway("priest-1", 2)}}
	svc := NewService(store, finder)

	got, err := svc.Assign(context.Background(), "client-1", assignInput())
	if err != nil {
		t.Fatalf("assign: %v", err)
	}

	// Only the priest may confirm.
	if _, err := svc.UpdateStatus(context.Background(), "client-1", got.BookingID, models.BookingConfirmed); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for client confirm, got %v", err)
	}
	if _, err := svc.UpdateStatus(context.Background(), "priest-1", got.BookingID, models.BookingConfirmed); err != nil {
		t.Fatalf("priest confirm: %v", err)
	}

	// The client may cancel.
	if _, err := svc.UpdateStatus(context.Background(), "client-1", got.BookingID, models.BookingCancelled); err != nil {
		t.Fatalf("client cancel: %v", err)
	}

	// Terminal state rejects further changes.
	if _, err := svc.UpdateStatus(context.Background(), "priest-1", got.BookingID, models.BookingInProgress); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition from cancelled, got %v", err)
	}
}

func TestCancelledBookingReleasesSlot(t *testing.T) {
	store := newFakeStore()
	finder := &fakeFinder{priests: []models.PriestProfile{priestKmAway("p", 2)}}
	svc := NewService(store, finder)

	first, err := svc.Assign(context.Background(), "client-1", assignInput())
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, err := svc.UpdateStatus(context.Background(), "client-1", first.BookingID, models.BookingCancelled); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	second, err := svc.Assign(context.Background(), "client-2", assignInput())
	if err != nil {
		t.Fatalf("rebooking a cancelled slot: %v", err)
	}
	if second.BookingID == first.BookingID {
		t.Fatal("expected a new booking document")
	}
}

func TestOverlapPredicate(t *testing.T) {
	cases := []struct {
		aStart, aEnd, bStart, bEnd string
		want                       bool
	}{
		{"14:00", "15:00", "14:30", "15:30", true},
		{"14:00", "15:00", "15:00", "16:00", false}, // half-open: touching edges do not overlap
		{"14:00", "15:00", "13:00", "14:00", false},
		{"14:00", "15:00", "13:00", "16:00", true},
		{"14:00", "15:00", "14:15", "14:45", true},
	}
	for _, c := range cases {
		if got := models.Overlaps(c.aStart, c.aEnd, c.bStart, c.bEnd); got != c.want {
			t.Errorf("Overlaps(%s-%s, %s-%s) = %v, want %v", c.aStart, c.aEnd, c.bStart, c.bEnd, got, c.want)
		}
	}
}
