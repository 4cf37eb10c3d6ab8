package domain

import "slices"

// Role is a permission tag carried by a User and by the request Actor.
type Role string

const (
	RoleUser    Role = "USER"
	RoleManager Role = "MANAGER"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleManager
}

// User is an account that can author, be assigned to, or observe tasks.
type User struct {
	ID       string `json:"id" bson:"_id"`
	Username string `json:"username" bson:"username"`
	Email    string `json:"email,omitempty" bson:"email,omitempty"`
	// Password holds the bcrypt digest once the user has been saved.
	Password string `json:"-" bson:"password"`
	Roles    []Role `json:"roles" bson:"roles"`
}

// HasRole reports whether the user carries role.
func (u *User) HasRole(role Role) bool {
	return slices.Contains(u.Roles, role)
}

// Actor returns the request-scoped projection of u.
func (u *User) Actor() *Actor {
	return &Actor{ID: u.ID, Username: u.Username, Roles: slices.Clone(u.Roles)}
}
