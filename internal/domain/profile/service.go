package profile

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"sort"
	"time"

	"priestbook/backend/internal/geo"
	"priestbook/backend/internal/models"
	"priestbook/backend/internal/utils"

	"firebase.google.com/go/v4/auth"
)

type Service struct {
	repo       *Repo
	authClient *auth.Client
}

func NewService(repo *Repo, authClient *auth.Client) *Service {
	return &Service{repo: repo, authClient: authClient}
}

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Register creates the Firebase Auth user and the profile document.
// Validation failures surface before any remote call.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.PriestProfile, error) {
	in.Trim()
	if err := validateRegister(in); err != nil {
		return nil, err
	}

	user, err := s.authClient.CreateUser(ctx, (&auth.UserToCreate{}).
		Email(in.Email).
		Password(in.Password).
		DisplayName(in.DisplayName))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuth, err)
	}

	now := time.Now().UTC()
	base := models.UserProfile{
		UID:         user.UID,
		Kind:        in.Kind,
		Email:       in.Email,
		DisplayName: in.DisplayName,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if in.Kind == models.KindPriest {
		p := models.PriestProfile{
			UserProfile:  base,
			Availability: emptyWeek(),
		}
		if err := s.repo.CreatePriest(ctx, p); err != nil {
			return nil, err
		}
		// Claim lets the API authorize priest-only routes without a read.
		if err := s.authClient.SetCustomUserClaims(ctx, user.UID, map[string]interface{}{"priest": true}); err != nil {
			log.Printf("profile: failed to set priest claim for %s: %v", user.UID, err)
		}
		return &p, nil
	}

	if err := s.repo.CreateClient(ctx, base); err != nil {
		return nil, err
	}
	return &models.PriestProfile{UserProfile: base}, nil
}

// Get returns a profile by uid.
func (s *Service) Get(ctx context.Context, uid string) (*models.PriestProfile, error) {
	if uid == "" {
		return nil, fmt.Errorf("%w: uid is required", ErrValidation)
	}
	return s.repo.Get(ctx, uid)
}

// Update applies a partial update. Only the owner may update; priest-only
// fields are rejected for client profiles.
func (s *Service) Update(ctx context.Context, callerUID, uid string, in UpdateInput) (*models.PriestProfile, error) {
	if uid == "" {
		return nil, fmt.Errorf("%w: uid is required", ErrValidation)
	}
	if callerUID != uid {
		return nil, fmt.Errorf("%w: profiles can only be updated by their owner", ErrForbidden)
	}
	in.Trim()

	current, err := s.repo.Get(ctx, uid)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if in.DisplayName != nil {
		if *in.DisplayName == "" {
			return nil, fmt.Errorf("%w: displayName cannot be empty", ErrValidation)
		}
		fields["displayName"] = utils.TrimMax(*in.DisplayName, 120)
	}
	if in.PhoneNumber != nil {
		fields["phoneNumber"] = *in.PhoneNumber
	}
	if in.Address != nil {
		fields["address"] = *in.Address
	}
	if in.City != nil {
		fields["city"] = *in.City
	}
	if in.State != nil {
		fields["state"] = *in.State
	}
	if in.ZipCode != nil {
		fields["zipCode"] = *in.ZipCode
	}
	if in.ProfileImageURL != nil {
		fields["profileImageUrl"] = *in.ProfileImageURL
	}
	if in.Location != nil {
		if !geo.Valid(in.Location.Latitude, in.Location.Longitude) {
			return nil, fmt.Errorf("%w: location out of range", ErrValidation)
		}
		fields["location"] = in.Location
	}

	if hasPriestFields(in) {
		if current.Kind != models.KindPriest {
			return nil, fmt.Errorf("%w: priest fields on a client profile", ErrValidation)
		}
		applyPriestFields(fields, in)
	}

	if len(fields) == 0 {
		return current, nil
	}

	if err := s.repo.Patch(ctx, uid, fields); err != nil {
		return nil, err
	}

	if in.DisplayName != nil {
		if _, err := s.authClient.UpdateUser(ctx, uid, (&auth.UserToUpdate{}).DisplayName(*in.DisplayName)); err != nil {
			log.Printf("profile: failed to sync display name for %s: %v", uid, err)
		}
	}

	return s.repo.Get(ctx, uid)
}

// UpdateAvailability replaces one weekday's declared slots. Slots must be
// well-formed (HH:MM, start < end) and non-overlapping within the day.
func (s *Service) UpdateAvailability(ctx context.Context, callerUID, uid string, in UpdateAvailabilityInput) error {
	if callerUID != uid {
		return fmt.Errorf("%w: availability can only be updated by its owner", ErrForbidden)
	}
	day := models.DayKey(in.DayOfWeek)
	if day == "" {
		return fmt.Errorf("%w: dayOfWeek must be 0-6 (0=Sunday)", ErrValidation)
	}
	if err := ValidateSlots(in.Slots); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	if _, err := s.repo.GetPriest(ctx, uid); err != nil {
		return err
	}
	return s.repo.SetAvailabilityDay(ctx, uid, day, in.Slots)
}

// PasswordResetLink asks the identity provider for a reset link.
func (s *Service) PasswordResetLink(ctx context.Context, email string) (string, error) {
	if !emailRe.MatchString(email) {
		return "", fmt.Errorf("%w: malformed email", ErrValidation)
	}
	link, err := s.authClient.PasswordResetLink(ctx, email)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuth, err)
	}
	return link, nil
}

// Deactivate disables a user in the identity provider (admin only; the
// router enforces the admin claim).
func (s *Service) Deactivate(ctx context.Context, callerUID, targetUID string) error {
	if targetUID == "" {
		return fmt.Errorf("%w: uid is required", ErrValidation)
	}
	if callerUID == targetUID {
		return ErrCannotDeactivateSelf
	}
	if _, err := s.authClient.UpdateUser(ctx, targetUID, (&auth.UserToUpdate{}).Disabled(true)); err != nil {
		return fmt.Errorf("%w: %v", ErrAuth, err)
	}
	return s.repo.Patch(ctx, targetUID, map[string]interface{}{
		"isActive":      false,
		"deactivatedBy": callerUID,
	})
}

func (s *Service) Reactivate(ctx context.Context, targetUID string) error {
	if targetUID == "" {
		return fmt.Errorf("%w: uid is required", ErrValidation)
	}
	if _, err := s.authClient.UpdateUser(ctx, targetUID, (&auth.UserToUpdate{}).Disabled(false)); err != nil {
		return fmt.Errorf("%w: %v", ErrAuth, err)
	}
	return s.repo.Patch(ctx, targetUID, map[string]interface{}{"isActive": true})
}

// ValidateSlots checks each slot and rejects overlapping pairs within the
// same day.
func ValidateSlots(slots []models.TimeSlot) error {
	for _, sl := range slots {
		if err := sl.Validate(); err != nil {
			return err
		}
	}
	sorted := make([]models.TimeSlot, len(slots))
	copy(sorted, slots)
	sort.Slice(sorted, func(i, j int) bool {
		return models.MinutesOf(sorted[i].Start) < models.MinutesOf(sorted[j].Start)
	})
	for i := 1; i < len(sorted); i++ {
		if models.MinutesOf(sorted[i].Start) < models.MinutesOf(sorted[i-1].End) {
			return fmt.Errorf("slots %s-%s and %s-%s overlap",
				sorted[i-1].Start, sorted[i-1].End, sorted[i].Start, sorted[i].End)
		}
	}
	return nil
}

func validateRegister(in RegisterInput) error {
	if !emailRe.MatchString(in.Email) {
		return fmt.Errorf("%w: malformed email", ErrValidation)
	}
	if len(in.Password) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters", ErrValidation)
	}
	if in.DisplayName == "" {
		return fmt.Errorf("%w: displayName is required", ErrValidation)
	}
	if in.Kind != models.KindClient && in.Kind != models.KindPriest {
		return fmt.Errorf("%w: kind must be %q or %q", ErrValidation, models.KindClient, models.KindPriest)
	}
	return nil
}

func hasPriestFields(in UpdateInput) bool {
	return in.Biography != nil || in.Services != nil || in.Languages != nil ||
		in.Experience != nil || in.BaseRate != nil || in.AdditionalRates != nil ||
		in.Specializations != nil || in.GalleryImages != nil
}

func applyPriestFields(fields map[string]interface{}, in UpdateInput) {
	if in.Biography != nil {
		fields["biography"] = utils.TrimMax(*in.Biography, 4000)
	}
	if in.Services != nil {
		fields["services"] = in.Services
		fields["searchTokens"] = utils.SearchTokens(in.Services...)
	}
	if in.Languages != nil {
		fields["languages"] = in.Languages
	}
	if in.Experience != nil {
		fields["experience"] = *in.Experience
	}
	if in.BaseRate != nil {
		fields["baseRate"] = *in.BaseRate
	}
	if in.AdditionalRates != nil {
		rates := make(map[string]float64, len(in.AdditionalRates))
		for name, rate := range in.AdditionalRates {
			rates[utils.ServiceKey(name)] = rate
		}
		fields["additionalRates"] = rates
	}
	if in.Specializations != nil {
		fields["specializations"] = in.Specializations
	}
	if in.GalleryImages != nil {
		fields["galleryImages"] = in.GalleryImages
	}
}
