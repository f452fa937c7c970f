package priests

import (
	"context"
	"fmt"
	"time"

	"priestbook/backend/internal/geo"
	"priestbook/backend/internal/models"
)

type Service struct {
	repo *Repo
}

func NewService(repo *Repo) *Service {
	return &Service{repo: repo}
}

// List pages through the priest directory newest-first.
func (s *Service) List(ctx context.Context, limit int, cursor time.Time) ([]models.PriestProfile, time.Time, error) {
	return s.repo.List(ctx, limit, cursor)
}

// Get returns one priest profile.
func (s *Service) Get(ctx context.Context, uid string) (*models.PriestProfile, error) {
	if uid == "" {
		return nil, fmt.Errorf("%w: uid is required", ErrBadRequest)
	}
	return s.repo.Get(ctx, uid)
}

// ByService returns priests offering the given service.
func (s *Service) ByService(ctx context.Context, service string, limit int) ([]models.PriestProfile, error) {
	if service == "" {
		return nil, fmt.Errorf("%w: service is required", ErrBadRequest)
	}
	return s.repo.ByService(ctx, service, limit)
}

// SearchByLocation returns priests within radiusKm of center, nearest
// first, capped at limit.
func (s *Service) SearchByLocation(ctx context.Context, center geo.LatLng, radiusKm float64, limit int) ([]Candidate, error) {
	if !geo.Valid(center.Latitude, center.Longitude) {
		return nil, fmt.Errorf("%w: coordinates out of range", ErrBadRequest)
	}
	if radiusKm <= 0 {
		return nil, fmt.Errorf("%w: radius must be positive", ErrBadRequest)
	}

	all, err := s.repo.All(ctx)
	if err != nil {
		return nil, err
	}

	near := Nearby(all, center, radiusKm)
	if limit > 0 && len(near) > limit {
		near = near[:limit]
	}
	return near, nil
}
