package stats

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"priestbook/backend/internal/models"
)

var (
	ErrBadRequest = errors.New("invalid stats request")
	ErrNotFound   = errors.New("not found")
)

type Service struct {
	client *firestore.Client
}

func NewService(client *firestore.Client) *Service {
	return &Service{client: client}
}

// PriestStats aggregates a priest's bookings, earnings and rating into
// the dashboard summary. It scans the priest's bookings once.
func (s *Service) PriestStats(ctx context.Context, priestID string) (*PriestStats, error) {
	if priestID == "" {
		return nil, fmt.Errorf("%w: priest id is required", ErrBadRequest)
	}

	userDoc, err := s.client.Collection("users").Doc(priestID).Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: priest %s", ErrNotFound, priestID)
	}
	userData := userDoc.Data()

	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	iter := s.client.Collection("bookings").
		Where("priestId", "==", priestID).
		Documents(ctx)
	defer iter.Stop()

	var out PriestStats
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get bookings: %w", err)
		}

		var b models.Booking
		if err := doc.DataTo(&b); err != nil {
			continue
		}

		out.Bookings.Total++
		switch b.Status {
		case models.BookingPending:
			out.Bookings.Pending++
		case models.BookingConfirmed:
			out.Bookings.Confirmed++
		case models.BookingInProgress:
			out.Bookings.InProgress++
		case models.BookingCompleted:
			out.Bookings.Completed++
		case models.BookingCancelled:
			out.Bookings.Cancelled++
		}

		if !b.ServiceDate.Before(monthStart) && b.ServiceDate.Before(monthStart.AddDate(0, 1, 0)) {
			out.Bookings.ThisMonth++
		}
		if !b.ServiceDate.Before(today) && b.Status != models.BookingCancelled && b.Status != models.BookingCompleted {
			out.Bookings.Upcoming++
		}

		if b.PaymentStatus == models.PaymentCompleted {
			out.Earnings.Total += b.TotalAmount
			if !b.ServiceDate.Before(monthStart) && b.ServiceDate.Before(monthStart.AddDate(0, 1, 0)) {
				out.Earnings.ThisMonth += b.TotalAmount
			}
		}
	}

	if r, ok := userData["rating"].(float64); ok {
		out.Rating.Average = r
	}
	if c, ok := userData["reviewCount"].(int64); ok {
		out.Rating.Count = int(c)
	}

	return &out, nil
}
