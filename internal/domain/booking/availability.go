package booking

import (
	"time"

	"priestbook/backend/internal/models"
)

// coversWindow reports whether the priest's declared weekly availability
// for the requested date contains one slot fully covering [start, end).
func coversWindow(av models.WeeklyAvailability, date time.Time, start, end string) bool {
	slots := av[models.DayKey(int(date.Weekday()))]
	for _, slot := range slots {
		if slot.Covers(start, end) {
			return true
		}
	}
	return false
}

// conflicts reports whether any non-cancelled booking in existing overlaps
// [start, end) on the same calendar day. Two windows [a,b) and [c,d)
// overlap iff a < d and c < b.
func conflicts(existing []models.Booking, date time.Time, start, end string) bool {
	for _, b := range existing {
		if b.Status == models.BookingCancelled {
			continue
		}
		if !sameDay(b.ServiceDate, date) {
			continue
		}
		if models.Overlaps(b.StartTime, b.EndTime, start, end) {
			return true
		}
	}
	return false
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
