package domain

// Actor is the authenticated identity attached to an inbound request.
// It is never persisted.
type Actor struct {
	ID       string
	Username string
	Roles    []Role
}

// HasAnyRole reports whether the actor carries at least one of roles.
func (a *Actor) HasAnyRole(roles ...Role) bool {
	if a == nil {
		return false
	}
	for _, have := range a.Roles {
		for _, want := range roles {
			if have == want {
				return true
			}
		}
	}
	return false
}
