package members

import "time"

// Scope de permisos de un miembro del equipo dentro de la granja.
type Scope string

const (
	ScopeAnimalsRead    Scope = "animals:read"
	ScopeAnimalsWrite   Scope = "animals:write"
	ScopeBreedingRead   Scope = "breeding:read"
	ScopeBreedingRecord Scope = "breeding:record"
	ScopeCategoriesEdit Scope = "categories:edit"
	ScopeSettingsEdit   Scope = "settings:edit"
)

type Status string

const (
	StatusInvited Status = "invited"
	StatusActive  Status = "active"
	StatusRevoked Status = "revoked"
)

// Membership vincula a un usuario con una granja y sus scopes.
// El owner de la granja no necesita membership: bypass por rol en claims.
type Membership struct {
	ID string

	FarmID string

	InviterUserID string // quien invita (owner)
	MemberUserID  string // invitado

	Scopes []Scope
	Status Status

	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}
