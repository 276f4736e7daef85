package auth

// Role del usuario dentro de la granja del token.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleMember Role = "member"
)

// Claims representa la información extraída del token.
// FarmID es el tenant: todos los handlers scopean por este valor.
type Claims struct {
	UserID string
	Email  string
	FarmID string
	Role   Role
}
