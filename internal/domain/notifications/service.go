package notifications

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"priestbook/backend/internal/models"
)

type Service struct {
	client *firestore.Client
}

func NewService(client *firestore.Client) *Service {
	return &Service{client: client}
}

func (s *Service) col() *firestore.CollectionRef {
	return s.client.Collection("notifications")
}

// List returns a user's notifications, newest first, plus their unread
// count.
func (s *Service) List(ctx context.Context, uid string, unreadOnly bool, limit int) (*ListResult, error) {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return nil, fmt.Errorf("%w: uid is required", ErrBadRequest)
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	query := s.col().Query.Where("uid", "==", uid)
	if unreadOnly {
		query = query.Where("read", "==", false)
	}
	query = query.OrderBy("createdAt", firestore.Desc).Limit(limit)

	iter := query.Documents(ctx)
	defer iter.Stop()

	out := []models.Notification{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get notifications: %w", err)
		}
		var n models.Notification
		if err := doc.DataTo(&n); err != nil {
			continue
		}
		n.ID = doc.Ref.ID
		out = append(out, n)
	}

	unread, err := s.unreadCount(ctx, uid)
	if err != nil {
		return nil, err
	}

	return &ListResult{Notifications: out, UnreadCount: unread}, nil
}

// MarkRead marks one notification, or all unread ones, as read. Returns
// the number updated.
func (s *Service) MarkRead(ctx context.Context, uid string, in MarkReadInput) (int, error) {
	uid = strings.TrimSpace(uid)
	in.Trim()
	if uid == "" {
		return 0, fmt.Errorf("%w: uid is required", ErrBadRequest)
	}

	if in.MarkAll {
		return s.markAllRead(ctx, uid)
	}
	if in.NotificationID == "" {
		return 0, fmt.Errorf("%w: notificationId or markAll is required", ErrBadRequest)
	}

	ref := s.col().Doc(in.NotificationID)
	doc, err := ref.Get(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrNotFound, in.NotificationID)
	}
	var n models.Notification
	if err := doc.DataTo(&n); err != nil {
		return 0, fmt.Errorf("failed to decode notification: %w", err)
	}
	if n.UID != uid {
		return 0, fmt.Errorf("%w: notification belongs to another user", ErrForbidden)
	}

	if _, err := ref.Update(ctx, []firestore.Update{{Path: "read", Value: true}}); err != nil {
		return 0, fmt.Errorf("failed to mark read: %w", err)
	}
	return 1, nil
}

func (s *Service) markAllRead(ctx context.Context, uid string) (int, error) {
	iter := s.col().Query.
		Where("uid", "==", uid).
		Where("read", "==", false).
		Documents(ctx)
	defer iter.Stop()

	bw := s.client.BulkWriter(ctx)
	count := 0
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("failed to get notifications: %w", err)
		}
		if _, err := bw.Update(doc.Ref, []firestore.Update{{Path: "read", Value: true}}); err != nil {
			return 0, fmt.Errorf("failed to mark read: %w", err)
		}
		count++
	}
	bw.End()
	return count, nil
}

// Delete removes one of the user's notifications.
func (s *Service) Delete(ctx context.Context, uid, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: notification id is required", ErrBadRequest)
	}

	ref := s.col().Doc(id)
	doc, err := ref.Get(ctx)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	var n models.Notification
	if err := doc.DataTo(&n); err != nil {
		return fmt.Errorf("failed to decode notification: %w", err)
	}
	if n.UID != uid {
		return fmt.Errorf("%w: notification belongs to another user", ErrForbidden)
	}

	if _, err := ref.Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	return nil
}

func (s *Service) unreadCount(ctx context.Context, uid string) (int64, error) {
	iter := s.col().Query.
		Where("uid", "==", uid).
		Where("read", "==", false).
		Documents(ctx)
	defer iter.Stop()

	var count int64
	for {
		_, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("failed to count unread: %w", err)
		}
		count++
	}
	return count, nil
}

// ---- event hooks ----
//
// Best-effort fan-out from the booking and review services. A lost
// notification never fails the operation that triggered it.

func (s *Service) BookingCreated(ctx context.Context, b models.Booking) {
	s.write(ctx, models.Notification{
		UID:       b.PriestID,
		Type:      TypeBookingCreated,
		Title:     "New booking request",
		Body:      fmt.Sprintf("%s on %s at %s", b.ServiceName, b.ServiceDate.Format("2006-01-02"), b.StartTime),
		BookingID: b.ID,
	})
}

func (s *Service) BookingStatusChanged(ctx context.Context, b models.Booking) {
	s.write(ctx, models.Notification{
		UID:       b.UserID,
		Type:      TypeBookingStatus,
		Title:     fmt.Sprintf("Booking %s", b.Status),
		Body:      fmt.Sprintf("%s on %s is now %s", b.ServiceName, b.ServiceDate.Format("2006-01-02"), b.Status),
		BookingID: b.ID,
	})
}

func (s *Service) ReviewReceived(ctx context.Context, rv models.Review) {
	s.write(ctx, models.Notification{
		UID:       rv.PriestID,
		Type:      TypeReviewReceived,
		Title:     "New review",
		Body:      fmt.Sprintf("You received a %d-star review", rv.Rating),
		BookingID: rv.BookingID,
	})
}

func (s *Service) write(ctx context.Context, n models.Notification) {
	n.CreatedAt = time.Now().UTC()
	if _, _, err := s.col().Add(ctx, n); err != nil {
		log.Printf("notifications: failed to write %s for %s: %v", n.Type, n.UID, err)
	}
}
