package shared

import "strconv"

// Role identifies the kind of caller behind an actor id
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleStaff    Role = "staff"
	RoleCustomer Role = "cust"
	RoleSystem   Role = "system"
)

// Actor is the identity attributed to every audit and transaction log write.
// Ledger operations never pick an actor on their own; callers resolve one at the boundary.
type Actor struct {
	ID   int64
	Role Role
}

// SystemActor returns the actor used when no caller identity was resolved
func SystemActor(id int64) Actor {
	return Actor{ID: id, Role: RoleSystem}
}

// Valid reports whether the actor can be attributed to a write
func (a Actor) Valid() bool {
	return a.ID > 0 && a.Role != ""
}

func (a Actor) String() string {
	return string(a.Role) + ":" + strconv.FormatInt(a.ID, 10)
}
