package users

import "time"

type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleCliente Role = "CLIENTE"
)

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Roles        []Role    `json:"roles"`
	Active       bool      `json:"activo"`
	CreatedAt    time.Time `json:"fechaCreacion"`
}

func (u User) HasRole(r Role) bool {
	for _, have := range u.Roles {
		if have == r {
			return true
		}
	}
	return false
}

func (u User) IsAdmin() bool { return u.HasRole(RoleAdmin) }

// Actor is the authenticated caller handed to the services, so business rules
// can be checked without reaching into any request-scoped security context.
type Actor struct {
	UserID   string
	Username string
	Roles    []Role
}

func (a Actor) HasRole(r Role) bool {
	for _, have := range a.Roles {
		if have == r {
			return true
		}
	}
	return false
}

func (a Actor) IsAdmin() bool   { return a.HasRole(RoleAdmin) }
func (a Actor) IsCliente() bool { return a.HasRole(RoleCliente) }

func (u User) Actor() Actor {
	return Actor{UserID: u.ID, Username: u.Username, Roles: u.Roles}
}
