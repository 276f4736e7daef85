package categories

import "context"

type Repository interface {
	Create(ctx context.Context, c Category) error
	GetByID(ctx context.Context, farmID, id string) (Category, error)

	// ListByFarm devuelve las categorías ordenadas por sort_order asc.
	ListByFarm(ctx context.Context, farmID string) ([]Category, error)

	Update(ctx context.Context, c Category) error
	Delete(ctx context.Context, farmID, id string) error
}
