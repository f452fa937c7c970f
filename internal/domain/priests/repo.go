package priests

import (
	"context"
	"fmt"
	"time"

	"priestbook/backend/internal/models"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
)

// Repo reads priest documents from the shared "users" collection.
type Repo struct {
	fs *firestore.Client
}

func NewRepo(fs *firestore.Client) *Repo {
	return &Repo{fs: fs}
}

func (r *Repo) priestQuery() firestore.Query {
	return r.fs.Collection("users").Query.Where("kind", "==", string(models.KindPriest))
}

// Get fetches one priest by uid.
func (r *Repo) Get(ctx context.Context, uid string) (*models.PriestProfile, error) {
	doc, err := r.fs.Collection("users").Doc(uid).Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: priest %s", ErrNotFound, uid)
	}

	var p models.PriestProfile
	if err := doc.DataTo(&p); err != nil {
		return nil, fmt.Errorf("failed to decode priest: %w", err)
	}
	p.UID = doc.Ref.ID
	if p.Kind != models.KindPriest {
		return nil, fmt.Errorf("%w: %s is not a priest", ErrNotFound, uid)
	}
	return &p, nil
}

// List pages through priests newest-first. cursor is the createdAt of the
// last item of the previous page (zero time for the first page).
func (r *Repo) List(ctx context.Context, limit int, cursor time.Time) ([]models.PriestProfile, time.Time, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	q := r.priestQuery().OrderBy("createdAt", firestore.Desc)
	if !cursor.IsZero() {
		q = q.StartAfter(cursor)
	}
	q = q.Limit(limit)

	out, err := collect(ctx, q)
	if err != nil {
		return nil, time.Time{}, err
	}

	var next time.Time
	if len(out) == limit {
		next = out[len(out)-1].CreatedAt
	}
	return out, next, nil
}

// ByService returns priests offering the given service.
func (r *Repo) ByService(ctx context.Context, service string, limit int) ([]models.PriestProfile, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	q := r.priestQuery().
		Where("services", "array-contains", service).
		Limit(limit)
	return collect(ctx, q)
}

// All fetches every priest for the proximity scan. The directory is small
// enough that the linear scan is acceptable; the cap is a safety bound.
func (r *Repo) All(ctx context.Context) ([]models.PriestProfile, error) {
	return collect(ctx, r.priestQuery().Limit(1000))
}

func collect(ctx context.Context, q firestore.Query) ([]models.PriestProfile, error) {
	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []models.PriestProfile
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate priests: %w", err)
		}

		var p models.PriestProfile
		if err := doc.DataTo(&p); err != nil {
			continue
		}
		p.UID = doc.Ref.ID
		out = append(out, p)
	}

	if out == nil {
		out = []models.PriestProfile{}
	}
	return out, nil
}
