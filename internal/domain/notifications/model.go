package notifications

import (
	"strings"

	"priestbook/backend/internal/models"
)

// Notification types written by the event hooks.
const (
	TypeBookingCreated = "booking_created"
	TypeBookingStatus  = "booking_status"
	TypeReviewReceived = "review_received"
)

// MarkReadInput marks one notification read, or all of them.
type MarkReadInput struct {
	NotificationID string `json:"notificationId,omitempty"`
	MarkAll        bool   `json:"markAll,omitempty"`
}

func (in *MarkReadInput) Trim() {
	in.NotificationID = strings.TrimSpace(in.NotificationID)
}

// ListResult is the notifications feed for one user.
type ListResult struct {
	Notifications []models.Notification `json:"notifications"`
	UnreadCount   int64                 `json:"unreadCount"`
}
