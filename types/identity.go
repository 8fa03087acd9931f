package types

// Role indicates the authorization level of a caller.
type Role string

const (
	// RoleAdmin sees and mutates every todo.
	RoleAdmin Role = "admin"
	// RoleGeneral is limited to the todos it owns.
	RoleGeneral Role = "general"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleGeneral
}

// Identity is the caller reconstructed from a verified ID token on every
// request. It is never persisted.
type Identity struct {
	// ID is the subject claim of the token.
	ID string `json:"id"`

	// Name is the user's name attribute, which doubles as the todo owner.
	Name string `json:"name"`

	// Role comes from the custom:role attribute.
	Role Role `json:"role"`
}
