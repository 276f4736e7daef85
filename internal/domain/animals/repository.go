package animals

import "context"

type Repository interface {
	Create(ctx context.Context, a Animal) error
	GetByID(ctx context.Context, farmID, id string) (Animal, error)
	ListByFarm(ctx context.Context, farmID string) ([]Animal, error)
	Update(ctx context.Context, a Animal) error

	// UpdateWithStatus aplica el update solo si production_status sigue siendo
	// expectedStatus (compare-and-swap). Si otro request ya movió el estado,
	// devuelve ErrStaleStatus del adapter.
	UpdateWithStatus(ctx context.Context, a Animal, expectedStatus ProductionStatus) error
}
