package domain

type Role string

const (
	RoleHosteller Role = "hosteller"
	RoleOwner     Role = "owner"
	RoleAgent     Role = "agent"
	RoleAdmin     Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleHosteller, RoleOwner, RoleAgent, RoleAdmin:
		return true
	}
	return false
}

// Actor is the authenticated caller. It is passed explicitly to every
// service operation instead of being looked up at each call site.
type Actor struct {
	UserID string
	Role   Role
}

// SystemActor is used by background jobs acting with admin authority.
var SystemActor = Actor{UserID: "system", Role: RoleAdmin}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// Is reports whether the actor holds one of roles.
func (a Actor) Is(roles ...Role) bool {
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}

// Require returns ErrUnauthenticated for an empty actor and ErrForbidden
// when the actor holds none of roles.
func (a Actor) Require(roles ...Role) error {
	if a.UserID == "" || !a.Role.Valid() {
		return ErrUnauthenticated
	}
	if !a.Is(roles...) {
		return ErrForbidden
	}
	return nil
}
