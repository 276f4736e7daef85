package memory

import (
	"context"
	"sync"

	"dairy-herd-service/internal/domain/settings"
)

type settingsRepo struct {
	mu     sync.RWMutex
	byFarm map[string]settings.BreedingSettings
}

func NewSettingsRepo() settings.Repository {
	return &settingsRepo{
		byFarm: make(map[string]settings.BreedingSettings),
	}
}

func (r *settingsRepo) GetByFarm(ctx context.Context, farmID string) (settings.BreedingSettings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.byFarm[farmID]
	if !ok {
		return settings.BreedingSettings{}, ErrNotFound
	}
	return s, nil
}

func (r *settingsRepo) Upsert(ctx context.Context, s settings.BreedingSettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byFarm[s.FarmID] = s
	return nil
}
