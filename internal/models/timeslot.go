package models

import (
	"fmt"
	"regexp"
)

var hhmmRe = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// ValidHHMM reports whether t is a zero-padded 24-hour "HH:MM" string.
func ValidHHMM(t string) bool {
	return hhmmRe.MatchString(t)
}

// MinutesOf converts "HH:MM" to minutes from midnight. Returns 0 for
// malformed input; validate with ValidHHMM first.
func MinutesOf(hhmm string) int {
	var h, m int
	if _, err := fmt.Sscanf(hhmm, "%d:%d", &h, &m); err != nil {
		return 0
	}
	return h*60 + m
}

// Overlaps reports whether half-open windows [aStart,aEnd) and
// [bStart,bEnd) intersect.
func Overlaps(aStart, aEnd, bStart, bEnd string) bool {
	return MinutesOf(aStart) < MinutesOf(bEnd) && MinutesOf(bStart) < MinutesOf(aEnd)
}

// Covers reports whether the slot fully contains [start,end).
func (s TimeSlot) Covers(start, end string) bool {
	return MinutesOf(s.Start) <= MinutesOf(start) && MinutesOf(s.End) >= MinutesOf(end)
}

// Validate checks format and ordering of a slot.
func (s TimeSlot) Validate() error {
	if !ValidHHMM(s.Start) || !ValidHHMM(s.End) {
		return fmt.Errorf("time slot must use 24-hour HH:MM format")
	}
	if MinutesOf(s.Start) >= MinutesOf(s.End) {
		return fmt.Errorf("time slot start %s must be before end %s", s.Start, s.End)
	}
	return nil
}

// DayKey returns the availability map key for a weekday (0=Sunday).
func DayKey(weekday int) string {
	days := [7]string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}
	if weekday < 0 || weekday > 6 {
		return ""
	}
	return days[weekday]
}
