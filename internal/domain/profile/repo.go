package profile

import (
	"context"
	"fmt"
	"time"

	"priestbook/backend/internal/models"

	"cloud.google.com/go/firestore"
)

// Repo stores profiles in the "users" collection, keyed by auth uid.
type Repo struct {
	fs *firestore.Client
}

func NewRepo(fs *firestore.Client) *Repo {
	return &Repo{fs: fs}
}

func (r *Repo) users() *firestore.CollectionRef {
	return r.fs.Collection("users")
}

// Get returns the profile for uid. Priest documents decode into the full
// PriestProfile; for clients the priest-only fields stay zero.
func (r *Repo) Get(ctx context.Context, uid string) (*models.PriestProfile, error) {
	doc, err := r.users().Doc(uid).Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: profile %s", ErrNotFound, uid)
	}

	var p models.PriestProfile
	if err := doc.DataTo(&p); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	p.UID = doc.Ref.ID
	return &p, nil
}

// GetPriest returns the profile only when it is a priest profile.
func (r *Repo) GetPriest(ctx context.Context, uid string) (*models.PriestProfile, error) {
	p, err := r.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	if p.Kind != models.KindPriest {
		return nil, fmt.Errorf("%w: %s is not a priest", ErrNotFound, uid)
	}
	return p, nil
}

func (r *Repo) CreateClient(ctx context.Context, p models.UserProfile) error {
	if _, err := r.users().Doc(p.UID).Set(ctx, p); err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

func (r *Repo) CreatePriest(ctx context.Context, p models.PriestProfile) error {
	if _, err := r.users().Doc(p.UID).Set(ctx, p); err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

// Patch merges the given fields into the profile document and bumps
// updatedAt.
func (r *Repo) Patch(ctx context.Context, uid string, fields map[string]interface{}) error {
	fields["updatedAt"] = time.Now().UTC()
	if _, err := r.users().Doc(uid).Set(ctx, fields, firestore.MergeAll); err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return nil
}

// SetAvailabilityDay replaces one weekday's slot list.
func (r *Repo) SetAvailabilityDay(ctx context.Context, uid, day string, slots []models.TimeSlot) error {
	_, err := r.users().Doc(uid).Update(ctx, []firestore.Update{
		{Path: "availability." + day, Value: slots},
		{Path: "updatedAt", Value: time.Now().UTC()},
	})
	if err != nil {
		return fmt.Errorf("failed to update availability: %w", err)
	}
	return nil
}
