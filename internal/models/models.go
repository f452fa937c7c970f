package models

import "time"

// ProfileKind discriminates the two profile variants stored in "users".
type ProfileKind string

const (
	KindClient ProfileKind = "client"
	KindPriest ProfileKind = "priest"
)

// Location is a geographic coordinate in degrees.
type Location struct {
	Latitude  float64 `json:"latitude" firestore:"latitude"`
	Longitude float64 `json:"longitude" firestore:"longitude"`
}

// UserProfile is the base profile shared by clients and priests.
type UserProfile struct {
	UID             string      `json:"uid" firestore:"uid"`
	Kind            ProfileKind `json:"kind" firestore:"kind"`
	Email           string      `json:"email" firestore:"email"`
	DisplayName     string      `json:"displayName" firestore:"displayName"`
	PhoneNumber     string      `json:"phoneNumber,omitempty" firestore:"phoneNumber,omitempty"`
	Address         string      `json:"address,omitempty" firestore:"address,omitempty"`
	City            string      `json:"city,omitempty" firestore:"city,omitempty"`
	State           string      `json:"state,omitempty" firestore:"state,omitempty"`
	ZipCode         string      `json:"zipCode,omitempty" firestore:"zipCode,omitempty"`
	ProfileImageURL string      `json:"profileImageUrl,omitempty" firestore:"profileImageUrl,omitempty"`
	Location        *Location   `json:"location,omitempty" firestore:"location,omitempty"`
	CreatedAt       time.Time   `json:"createdAt" firestore:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt" firestore:"updatedAt"`
}

// TimeSlot is one interval of daily availability, "HH:MM" 24-hour wall clock.
// Start must be strictly before End.
type TimeSlot struct {
	Start string `json:"start" firestore:"start"`
	End   string `json:"end" firestore:"end"`
}

// WeeklyAvailability maps day of week (0=Sunday .. 6=Saturday, as strings,
// Firestore map keys) to the priest's declared slots for that day.
type WeeklyAvailability map[string][]TimeSlot

// PriestProfile is the priest variant. Rating and ReviewCount are derived
// from the reviews collection and only written by the rating aggregation.
type PriestProfile struct {
	UserProfile

	Biography       string             `json:"biography,omitempty" firestore:"biography,omitempty"`
	Services        []string           `json:"services,omitempty" firestore:"services,omitempty"`
	Languages       []string           `json:"languages,omitempty" firestore:"languages,omitempty"`
	Experience      int                `json:"experience" firestore:"experience"`
	Rating          float64            `json:"rating" firestore:"rating"`
	ReviewCount     int                `json:"reviewCount" firestore:"reviewCount"`
	Availability    WeeklyAvailability `json:"availability,omitempty" firestore:"availability,omitempty"`
	BaseRate        float64            `json:"baseRate" firestore:"baseRate"`
	AdditionalRates map[string]float64 `json:"additionalRates,omitempty" firestore:"additionalRates,omitempty"`
	Verified        bool               `json:"verified" firestore:"verified"`
	Specializations []string           `json:"specializations,omitempty" firestore:"specializations,omitempty"`
	GalleryImages   []string           `json:"galleryImages,omitempty" firestore:"galleryImages,omitempty"`
	SearchTokens    []string           `json:"-" firestore:"searchTokens,omitempty"`
}

// BookingStatus is the booking lifecycle state.
// pending -> confirmed -> in_progress -> completed; cancelled from any
// non-terminal state. completed and cancelled are terminal.
type BookingStatus string

const (
	BookingPending    BookingStatus = "pending"
	BookingConfirmed  BookingStatus = "confirmed"
	BookingInProgress BookingStatus = "in_progress"
	BookingCompleted  BookingStatus = "completed"
	BookingCancelled  BookingStatus = "cancelled"
)

// PaymentStatus tracks the payment side of a booking.
type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "pending"
	PaymentProcessing PaymentStatus = "processing"
	PaymentCompleted  PaymentStatus = "completed"
	PaymentFailed     PaymentStatus = "failed"
	PaymentRefunded   PaymentStatus = "refunded"
)

// BookingLocation is where the service takes place.
type BookingLocation struct {
	Address   string   `json:"address" firestore:"address"`
	City      string   `json:"city,omitempty" firestore:"city,omitempty"`
	State     string   `json:"state,omitempty" firestore:"state,omitempty"`
	ZipCode   string   `json:"zipCode,omitempty" firestore:"zipCode,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty" firestore:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty" firestore:"longitude,omitempty"`
}

// Booking links a client to a priest for one service engagement.
type Booking struct {
	ID                  string          `json:"id" firestore:"-"`
	UserID              string          `json:"userId" firestore:"userId"`
	PriestID            string          `json:"priestId" firestore:"priestId"`
	ServiceName         string          `json:"serviceName" firestore:"serviceName"`
	ServiceDate         time.Time       `json:"serviceDate" firestore:"serviceDate"`
	StartTime           string          `json:"startTime" firestore:"startTime"` // "HH:MM"
	EndTime             string          `json:"endTime" firestore:"endTime"`     // "HH:MM"
	Location            BookingLocation `json:"location" firestore:"location"`
	SpecialRequirements string          `json:"specialRequirements,omitempty" firestore:"specialRequirements,omitempty"`
	TotalAmount         float64         `json:"totalAmount" firestore:"totalAmount"`
	Status              BookingStatus   `json:"status" firestore:"status"`
	PaymentStatus       PaymentStatus   `json:"paymentStatus" firestore:"paymentStatus"`
	PaymentIntentID     string          `json:"-" firestore:"paymentIntentId,omitempty"`
	ReviewID            string          `json:"reviewId,omitempty" firestore:"reviewId,omitempty"`
	CreatedAt           time.Time       `json:"createdAt" firestore:"createdAt"`
	UpdatedAt           time.Time       `json:"updatedAt" firestore:"updatedAt"`
}

// Review ties one booking, one client and one priest. At most one review
// may reference a booking.
type Review struct {
	ID        string    `json:"id" firestore:"-"`
	BookingID string    `json:"bookingId" firestore:"bookingId"`
	UserID    string    `json:"userId" firestore:"userId"`
	PriestID  string    `json:"priestId" firestore:"priestId"`
	Rating    int       `json:"rating" firestore:"rating"` // 1..5
	Comment   string    `json:"comment,omitempty" firestore:"comment,omitempty"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" firestore:"updatedAt"`
}

// Notification is an in-app notification document.
type Notification struct {
	ID        string    `json:"id" firestore:"-"`
	UID       string    `json:"uid" firestore:"uid"`
	Type      string    `json:"type" firestore:"type"`
	Title     string    `json:"title" firestore:"title"`
	Body      string    `json:"body,omitempty" firestore:"body,omitempty"`
	BookingID string    `json:"bookingId,omitempty" firestore:"bookingId,omitempty"`
	Read      bool      `json:"read" firestore:"read"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
}
