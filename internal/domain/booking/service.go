package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"priestbook/backend/internal/domain/priests"
	"priestbook/backend/internal/geo"
	"priestbook/backend/internal/models"
	"priestbook/backend/internal/utils"

	"github.com/google/uuid"
)

// Finder locates nearby priests for the assignment orchestrator.
type Finder interface {
	SearchByLocation(ctx context.Context, center geo.LatLng, radiusKm float64, limit int) ([]priests.Candidate, error)
	Get(ctx context.Context, uid string) (*models.PriestProfile, error)
}

// Store persists bookings. CreateIfFree must reject overlapping
// non-cancelled bookings for the same priest atomically, and report
// whether it actually wrote (false on an idempotency-key replay).
type Store interface {
	CreateIfFree(ctx context.Context, b models.Booking) (string, bool, error)
	Get(ctx context.Context, id string) (*models.Booking, error)
	ActiveForPriestOnDate(ctx context.Context, priestID string, date time.Time) ([]models.Booking, error)
	ListForUser(ctx context.Context, uid string, in ListInput) ([]models.Booking, time.Time, error)
	ListForPriest(ctx context.Context, uid string, in ListInput) ([]models.Booking, time.Time, error)
	UpdateStatus(ctx context.Context, id string, to models.BookingStatus) (*models.Booking, error)
}

// Notifier is told about booking lifecycle events. Optional.
type Notifier interface {
	BookingCreated(ctx context.Context, b models.Booking)
	BookingStatusChanged(ctx context.Context, b models.Booking)
}

type Service struct {
	store    Store
	finder   Finder
	notifier Notifier
}

func NewService(store Store, finder Finder) *Service {
	return &Service{store: store, finder: finder}
}

// SetNotifier wires the optional notification fan-out.
func (s *Service) SetNotifier(n Notifier) {
	s.notifier = n
}

// Assign finds the nearest available priest and creates a pending booking
// bound to them. The search starts at 10 km and widens to 50 km when the
// first pass finds nobody. A candidate qualifies when the requested window
// lies inside their declared weekly hours and no non-cancelled booking of
// theirs overlaps it. On failure no booking is created.
func (s *Service) Assign(ctx context.Context, userID string, in AssignInput) (*Assignment, error) {
	in.Trim()
	date, err := s.validateCreate(in.CreateInput)
	if err != nil {
		return nil, err
	}
	if !geo.Valid(in.Latitude, in.Longitude) {
		return nil, fmt.Errorf("%w: coordinates out of range", ErrBadRequest)
	}
	center := geo.LatLng{Latitude: in.Latitude, Longitude: in.Longitude}

	candidates, err := s.finder.SearchByLocation(ctx, center, initialRadiusKm, candidateLimit)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		candidates, err = s.finder.SearchByLocation(ctx, center, widenedRadiusKm, candidateLimit)
		if err != nil {
			return nil, err
		}
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: nobody within %.0f km", ErrNoPriestAvailable, widenedRadiusKm)
	}

	for _, c := range candidates {
		ok, err := s.available(ctx, c.Priest, date, in.StartTime, in.EndTime)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		b := s.build(userID, c.Priest.UID, in.CreateInput, date)
		id, created, err := s.store.CreateIfFree(ctx, b)
		if errors.Is(err, ErrSlotTaken) {
			// Lost a race for this priest; try the next candidate.
			continue
		}
		if err != nil {
			return nil, err
		}

		if !created {
			// Idempotency-key replay: return the stored assignment
			// without re-notifying the priest.
			existing, err := s.store.Get(ctx, id)
			if err != nil {
				return nil, err
			}
			return &Assignment{BookingID: id, PriestID: existing.PriestID}, nil
		}

		b.ID = id
		s.notifyCreated(ctx, b)
		return &Assignment{BookingID: id, PriestID: c.Priest.UID}, nil
	}

	return nil, fmt.Errorf("%w: no candidate free at %s-%s", ErrNoPriestAvailable, in.StartTime, in.EndTime)
}

// Create books a specific priest directly, with the same availability and
// conflict guarantees as Assign.
func (s *Service) Create(ctx context.Context, userID, priestID string, in CreateInput) (*models.Booking, error) {
	in.Trim()
	date, err := s.validateCreate(in)
	if err != nil {
		return nil, err
	}
	if priestID == "" {
		return nil, fmt.Errorf("%w: priestId is required", ErrBadRequest)
	}

	priest, err := s.finder.Get(ctx, priestID)
	if err != nil {
		return nil, err
	}
	if !coversWindow(priest.Availability, date, in.StartTime, in.EndTime) {
		return nil, fmt.Errorf("%w: %s is outside the priest's hours", ErrNoPriestAvailable, in.StartTime)
	}

	b := s.build(userID, priestID, in, date)
	id, created, err := s.store.CreateIfFree(ctx, b)
	if err != nil {
		return nil, err
	}

	stored, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if created {
		s.notifyCreated(ctx, *stored)
	}
	return stored, nil
}

// Get returns a booking visible to its client or priest.
func (s *Service) Get(ctx context.Context, callerUID, id string) (*models.Booking, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: booking id is required", ErrBadRequest)
	}
	b, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.UserID != callerUID && b.PriestID != callerUID {
		return nil, fmt.Errorf("%w: booking %s", ErrForbidden, id)
	}
	return b, nil
}

func (s *Service) ListForUser(ctx context.Context, uid string, in ListInput) ([]models.Booking, time.Time, error) {
	if err := validateList(in); err != nil {
		return nil, time.Time{}, err
	}
	return s.store.ListForUser(ctx, uid, in)
}

func (s *Service) ListForPriest(ctx context.Context, uid string, in ListInput) ([]models.Booking, time.Time, error) {
	if err := validateList(in); err != nil {
		return nil, time.Time{}, err
	}
	return s.store.ListForPriest(ctx, uid, in)
}

// UpdateStatus moves a booking along its lifecycle. The priest drives
// confirmation and progress; cancellation is open to either party.
func (s *Service) UpdateStatus(ctx context.Context, callerUID, id string, to models.BookingStatus) (*models.Booking, error) {
	if !ValidStatus(to) || to == models.BookingPending {
		return nil, fmt.Errorf("%w: %q", ErrBadRequest, to)
	}

	b, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	switch {
	case to == models.BookingCancelled:
		if callerUID != b.UserID && callerUID != b.PriestID {
			return nil, fmt.Errorf("%w: booking %s", ErrForbidden, id)
		}
	default:
		if callerUID != b.PriestID {
			return nil, fmt.Errorf("%w: only the priest can set %s", ErrForbidden, to)
		}
	}

	updated, err := s.store.UpdateStatus(ctx, id, to)
	if err != nil {
		return nil, err
	}
	if s.notifier != nil {
		s.notifier.BookingStatusChanged(ctx, *updated)
	}
	return updated, nil
}

// available runs the availability selector for one candidate.
func (s *Service) available(ctx context.Context, p models.PriestProfile, date time.Time, start, end string) (bool, error) {
	if !coversWindow(p.Availability, date, start, end) {
		return false, nil
	}
	existing, err := s.store.ActiveForPriestOnDate(ctx, p.UID, date)
	if err != nil {
		return false, err
	}
	return !conflicts(existing, date, start, end), nil
}

func (s *Service) build(userID, priestID string, in CreateInput, date time.Time) models.Booking {
	now := time.Now().UTC()
	return models.Booking{
		ID:                  bookingID(in.IdempotencyKey),
		UserID:              userID,
		PriestID:            priestID,
		ServiceName:         in.ServiceName,
		ServiceDate:         date,
		StartTime:           in.StartTime,
		EndTime:             in.EndTime,
		Location:            in.Location,
		SpecialRequirements: in.SpecialRequirements,
		TotalAmount:         in.TotalAmount,
		Status:              models.BookingPending,
		PaymentStatus:       models.PaymentPending,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

func (s *Service) validateCreate(in CreateInput) (time.Time, error) {
	if in.ServiceName == "" {
		return time.Time{}, fmt.Errorf("%w: serviceName is required", ErrBadRequest)
	}
	if !models.ValidHHMM(in.StartTime) || !models.ValidHHMM(in.EndTime) {
		return time.Time{}, fmt.Errorf("%w: startTime and endTime must be HH:MM", ErrBadRequest)
	}
	if models.MinutesOf(in.StartTime) >= models.MinutesOf(in.EndTime) {
		return time.Time{}, fmt.Errorf("%w: endTime must be after startTime", ErrBadRequest)
	}
	if in.TotalAmount < 0 {
		return time.Time{}, fmt.Errorf("%w: totalAmount cannot be negative", ErrBadRequest)
	}
	parsed, err := utils.ParseDate(in.ServiceDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: serviceDate must be an ISO date", ErrBadRequest)
	}
	// Normalized to midnight UTC so date-equality queries work.
	y, m, d := parsed.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}

func validateList(in ListInput) error {
	if in.Status != "" && !ValidStatus(in.Status) {
		return fmt.Errorf("%w: unknown status %q", ErrBadRequest, in.Status)
	}
	return nil
}

// bookingID derives the document id. With an idempotency key the id is
// deterministic, so a retried request lands on the same document.
func bookingID(idempotencyKey string) string {
	if idempotencyKey != "" {
		return uuid.NewSHA1(uuid.NameSpaceURL, []byte("priestbook/bookings/"+idempotencyKey)).String()
	}
	return uuid.NewString()
}

func (s *Service) notifyCreated(ctx context.Context, b models.Booking) {
	if s.notifier != nil {
		s.notifier.BookingCreated(ctx, b)
	}
}
