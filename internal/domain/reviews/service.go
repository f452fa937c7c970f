package reviews

import (
	"context"
	"fmt"
	"strings"
	"time"

	"priestbook/backend/internal/models"
)

// Store persists reviews and keeps each priest's rating summary in step
// with them.
type Store interface {
	Create(ctx context.Context, userID string, in CreateInput) (*models.Review, error)
	Update(ctx context.Context, userID, id string, in UpdateInput) (*models.Review, error)
	Delete(ctx context.Context, userID, id string) error
	Get(ctx context.Context, id string) (*models.Review, error)
	ListForPriest(ctx context.Context, priestID string, in ListInput) ([]models.Review, time.Time, error)
	ListForUser(ctx context.Context, uid string, in ListInput) ([]models.Review, time.Time, error)
}

// Notifier is told about new reviews so the priest can be notified
// in-app. Optional.
type Notifier interface {
	ReviewReceived(ctx context.Context, rv models.Review)
}

type Service struct {
	store    Store
	notifier Notifier
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) SetNotifier(n Notifier) {
	s.notifier = n
}

func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (*models.Review, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	rv, err := s.store.Create(ctx, userID, in)
	if err != nil {
		return nil, err
	}
	if s.notifier != nil {
		s.notifier.ReviewReceived(ctx, *rv)
	}
	return rv, nil
}

func (s *Service) Update(ctx context.Context, userID, id string, in UpdateInput) (*models.Review, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: review id is required", ErrBadRequest)
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return s.store.Update(ctx, userID, id, in)
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: review id is required", ErrBadRequest)
	}
	return s.store.Delete(ctx, userID, id)
}

func (s *Service) Get(ctx context.Context, id string) (*models.Review, error) {
	return s.store.Get(ctx, id)
}

// ListForPriest is public: anyone browsing a priest's profile can read
// their reviews.
func (s *Service) ListForPriest(ctx context.Context, priestID string, in ListInput) ([]models.Review, time.Time, error) {
	if strings.TrimSpace(priestID) == "" {
		return nil, time.Time{}, fmt.Errorf("%w: priest id is required", ErrBadRequest)
	}
	return s.store.ListForPriest(ctx, priestID, in)
}

func (s *Service) ListForUser(ctx context.Context, uid string, in ListInput) ([]models.Review, time.Time, error) {
	return s.store.ListForUser(ctx, uid, in)
}
