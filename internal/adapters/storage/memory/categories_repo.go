package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"dairy-herd-service/internal/domain/categories"
)

type categoryRepo struct {
	mu   sync.RWMutex
	byID map[string]categories.Category
}

func NewCategoryRepo() categories.Repository {
	return &categoryRepo{
		byID: make(map[string]categories.Category),
	}
}

func (r *categoryRepo) Create(ctx context.Context, c categories.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(c.ID) == "" {
		return errors.New("category id required")
	}
	if _, exists := r.byID[c.ID]; exists {
		return errors.New("category already exists")
	}
	r.byID[c.ID] = c
	return nil
}

func (r *categoryRepo) GetByID(ctx context.Context, farmID, id string) (categories.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byID[id]
	if !ok || c.FarmID != farmID {
		return categories.Category{}, ErrNotFound
	}
	return c, nil
}

func (r *categoryRepo) ListByFarm(ctx context.Context, farmID string) ([]categories.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]categories.Category, 0)
	for _, c := range r.byID {
		if c.FarmID == farmID {
			out = append(out, c)
		}
	}

	// El clasificador depende de este orden (primera que matchea gana).
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out, nil
}

func (r *categoryRepo) Update(ctx context.Context, c categories.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, exists := r.byID[c.ID]
	if !exists || cur.FarmID != c.FarmID {
		return ErrNotFound
	}
	r.byID[c.ID] = c
	return nil
}

func (r *categoryRepo) Delete(ctx context.Context, farmID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, exists := r.byID[id]
	if !exists || cur.FarmID != farmID {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}
