package members

import "context"

type Repository interface {
	Create(ctx context.Context, m Membership) error
	Update(ctx context.Context, m Membership) error
	GetByID(ctx context.Context, id string) (Membership, error)
	ListByFarm(ctx context.Context, farmID string) ([]Membership, error)
	ListByMember(ctx context.Context, memberUserID string) ([]Membership, error)
	GetActiveMembership(ctx context.Context, farmID, memberUserID string) (Membership, error)
}
