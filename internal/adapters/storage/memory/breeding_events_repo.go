package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"dairy-herd-service/internal/domain/breeding"
)

type breedingEventRepo struct {
	mu   sync.RWMutex
	byID map[string]breeding.BreedingEvent
}

func NewBreedingEventRepo() breeding.EventRepository {
	return &breedingEventRepo{
		byID: make(map[string]breeding.BreedingEvent),
	}
}

func (r *breedingEventRepo) Create(ctx context.Context, e breeding.BreedingEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(e.ID) == "" {
		return errors.New("event id required")
	}
	if _, exists := r.byID[e.ID]; exists {
		return errors.New("event already exists")
	}
	r.byID[e.ID] = e
	return nil
}

func (r *breedingEventRepo) GetByID(ctx context.Context, farmID, id string) (breeding.BreedingEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.byID[id]
	if !ok || e.FarmID != farmID {
		return breeding.BreedingEvent{}, ErrNotFound
	}
	return e, nil
}

func (r *breedingEventRepo) ListByAnimal(ctx context.Context, farmID, animalID string, filter breeding.ListFilter) ([]breeding.BreedingEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]breeding.BreedingEvent, 0)
	for _, e := range r.byID {
		if e.FarmID != farmID || e.AnimalID != animalID {
			continue
		}
		if !matchesFilter(e, filter) {
			continue
		}
		out = append(out, e)
	}

	// Más reciente primero; desempate por recorded_at.
	sort.Slice(out, func(i, j int) bool {
		if !out[i].EventDate.Equal(out[j].EventDate) {
			return out[i].EventDate.After(out[j].EventDate)
		}
		return out[i].RecordedAt.After(out[j].RecordedAt)
	})

	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *breedingEventRepo) LatestByType(ctx context.Context, farmID, animalID string, t breeding.EventType) (breeding.BreedingEvent, error) {
	events, err := r.ListByAnimal(ctx, farmID, animalID, breeding.ListFilter{Types: []breeding.EventType{t}})
	if err != nil {
		return breeding.BreedingEvent{}, err
	}
	if len(events) == 0 {
		return breeding.BreedingEvent{}, ErrNotFound
	}
	return events[0], nil
}

func matchesFilter(e breeding.BreedingEvent, filter breeding.ListFilter) bool {
	if len(filter.Types) > 0 {
		found := false
		for _, t := range filter.Types {
			if e.Type == t {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.From != nil && e.EventDate.Before(*filter.From) {
		return false
	}
	if filter.To != nil && e.EventDate.After(*filter.To) {
		return false
	}
	return true
}
