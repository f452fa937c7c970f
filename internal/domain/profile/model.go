package profile

import (
	"strings"

	"priestbook/backend/internal/models"
)

// RegisterInput creates a Firebase Auth user plus a profile document.
type RegisterInput struct {
	Email       string             `json:"email"`
	Password    string             `json:"password"`
	DisplayName string             `json:"displayName"`
	Kind        models.ProfileKind `json:"kind"`
}

func (in *RegisterInput) Trim() {
	in.Email = strings.TrimSpace(in.Email)
	in.DisplayName = strings.TrimSpace(in.DisplayName)
}

// UpdateInput carries partial profile updates. Nil fields are left alone.
// Derived fields (rating, reviewCount) and identity fields (uid, email,
// kind) are not updatable here.
type UpdateInput struct {
	DisplayName     *string          `json:"displayName,omitempty"`
	PhoneNumber     *string          `json:"phoneNumber,omitempty"`
	Address         *string          `json:"address,omitempty"`
	City            *string          `json:"city,omitempty"`
	State           *string          `json:"state,omitempty"`
	ZipCode         *string          `json:"zipCode,omitempty"`
	ProfileImageURL *string          `json:"profileImageUrl,omitempty"`
	Location        *models.Location `json:"location,omitempty"`

	// Priest-only fields, ignored for clients.
	Biography       *string            `json:"biography,omitempty"`
	Services        []string           `json:"services,omitempty"`
	Languages       []string           `json:"languages,omitempty"`
	Experience      *int               `json:"experience,omitempty"`
	BaseRate        *float64           `json:"baseRate,omitempty"`
	AdditionalRates map[string]float64 `json:"additionalRates,omitempty"`
	Specializations []string           `json:"specializations,omitempty"`
	GalleryImages   []string           `json:"galleryImages,omitempty"`
}

func (in *UpdateInput) Trim() {
	trim := func(p *string) {
		if p != nil {
			*p = strings.TrimSpace(*p)
		}
	}
	trim(in.DisplayName)
	trim(in.PhoneNumber)
	trim(in.Address)
	trim(in.City)
	trim(in.State)
	trim(in.ZipCode)
	trim(in.ProfileImageURL)
	trim(in.Biography)
}

func emptyWeek() models.WeeklyAvailability {
	week := make(models.WeeklyAvailability, 7)
	for d := 0; d < 7; d++ {
		week[models.DayKey(d)] = []models.TimeSlot{}
	}
	return week
}

// UpdateAvailabilityInput replaces one weekday's slot list.
type UpdateAvailabilityInput struct {
	DayOfWeek int               `json:"dayOfWeek"` // 0=Sunday .. 6=Saturday
	Slots     []models.TimeSlot `json:"slots"`
}
