package booking

import (
	"strings"
	"time"

	"priestbook/backend/internal/models"
)

// Search radii for the widening proximity retry.
const (
	initialRadiusKm = 10.0
	widenedRadiusKm = 50.0
)

// candidateLimit caps how many nearby priests the selector walks.
const candidateLimit = 25

// CreateInput carries the request details common to direct creation and
// automatic assignment.
type CreateInput struct {
	ServiceName         string                 `json:"serviceName"`
	ServiceDate         string                 `json:"serviceDate"` // "2006-01-02"
	StartTime           string                 `json:"startTime"`   // "HH:MM"
	EndTime             string                 `json:"endTime"`     // "HH:MM"
	Location            models.BookingLocation `json:"location"`
	SpecialRequirements string                 `json:"specialRequirements,omitempty"`
	TotalAmount         float64                `json:"totalAmount"`

	// IdempotencyKey makes retried requests return the already-created
	// booking instead of a duplicate. Optional.
	IdempotencyKey string `json:"idempotencyKey,omitempty"`
}

func (in *CreateInput) Trim() {
	in.ServiceName = strings.TrimSpace(in.ServiceName)
	in.ServiceDate = strings.TrimSpace(in.ServiceDate)
	in.StartTime = strings.TrimSpace(in.StartTime)
	in.EndTime = strings.TrimSpace(in.EndTime)
	in.SpecialRequirements = strings.TrimSpace(in.SpecialRequirements)
	in.IdempotencyKey = strings.TrimSpace(in.IdempotencyKey)
}

// AssignInput is CreateInput plus the client's coordinate for the
// proximity search.
type AssignInput struct {
	CreateInput
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Assignment is the result of a successful automatic assignment.
type Assignment struct {
	BookingID string `json:"bookingId"`
	PriestID  string `json:"priestId"`
}

// ListInput filters and pages booking lists.
type ListInput struct {
	Status models.BookingStatus
	Limit  int
	Cursor time.Time // serviceDate of the last item of the previous page
}

// legalTransitions is the booking state machine. completed and cancelled
// are terminal.
var legalTransitions = map[models.BookingStatus][]models.BookingStatus{
	models.BookingPending:    {models.BookingConfirmed, models.BookingCancelled},
	models.BookingConfirmed:  {models.BookingInProgress, models.BookingCancelled},
	models.BookingInProgress: {models.BookingCompleted, models.BookingCancelled},
}

// CanTransition reports whether from -> to is a legal status change.
func CanTransition(from, to models.BookingStatus) bool {
	for _, next := range legalTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidStatus reports whether s is a known booking status.
func ValidStatus(s models.BookingStatus) bool {
	switch s {
	case models.BookingPending, models.BookingConfirmed, models.BookingInProgress,
		models.BookingCompleted, models.BookingCancelled:
		return true
	}
	return false
}
