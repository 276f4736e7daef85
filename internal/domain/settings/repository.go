package settings

import "context"

type Repository interface {
	// GetByFarm devuelve ErrNotFound (del adapter) si la granja nunca guardó settings.
	GetByFarm(ctx context.Context, farmID string) (BreedingSettings, error)
	Upsert(ctx context.Context, s BreedingSettings) error
}
