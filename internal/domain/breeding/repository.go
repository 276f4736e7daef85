package breeding

import (
	"context"
	"time"
)

type EventRepository interface {
	Create(ctx context.Context, e BreedingEvent) error
	GetByID(ctx context.Context, farmID, id string) (BreedingEvent, error)
	ListByAnimal(ctx context.Context, farmID, animalID string, filter ListFilter) ([]BreedingEvent, error)

	// LatestByType devuelve el evento más reciente de ese tipo para el animal,
	// o ErrNotFound del adapter si no hay ninguno.
	LatestByType(ctx context.Context, farmID, animalID string, t EventType) (BreedingEvent, error)
}

type ListFilter struct {
	Types []EventType
	From  *time.Time
	To    *time.Time
	Limit int
}
