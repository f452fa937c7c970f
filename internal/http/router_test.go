package http

import (
	"errors"
	"fmt"
	"testing"

	"priestbook/backend/internal/domain/booking"
	"priestbook/backend/internal/domain/profile"
)

func TestMapProfileError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", fmt.Errorf("%w: email is required", profile.ErrValidation), 400},
		{"auth rejected", fmt.Errorf("%w: email already exists", profile.ErrAuth), 400},
		{"not found", fmt.Errorf("%w: user u1", profile.ErrNotFound), 404},
		{"forbidden", fmt.Errorf("%w: not the owner", profile.ErrForbidden), 403},
		{"deactivate self", profile.ErrCannotDeactivateSelf, 409},
		{"unknown", errors.New("firestore unavailable"), 500},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, msg := mapProfileError(tc.err)
			if status != tc.want {
				t.Errorf("mapProfileError(%v) = %d, want %d", tc.err, status, tc.want)
			}
			if msg == "" {
				t.Errorf("mapProfileError(%v) returned an empty message", tc.err)
			}
		})
	}
}

func TestMapBookingError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"bad request", fmt.Errorf("%w: startTime", booking.ErrBadRequest), 400},
		{"forbidden", fmt.Errorf("%w: not a party", booking.ErrForbidden), 403},
		{"not found", fmt.Errorf("%w: booking b1", booking.ErrNotFound), 404},
		{"slot taken", fmt.Errorf("%w: priest p1", booking.ErrSlotTaken), 409},
		{"no priest", fmt.Errorf("%w: nobody within 50 km", booking.ErrNoPriestAvailable), 409},
		{"bad transition", fmt.Errorf("%w: completed -> pending", booking.ErrInvalidTransition), 409},
		{"unknown", errors.New("firestore unavailable"), 500},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, _ := mapBookingError(tc.err)
			if status != tc.want {
				t.Errorf("mapBookingError(%v) = %d, want %d", tc.err, status, tc.want)
			}
		})
	}
}
