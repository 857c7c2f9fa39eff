package models

// Role is the closed set of roles a user can hold.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleEmployee
}

// Capability checks. Handlers gate on these instead of comparing role strings.

func (r Role) CanManageCatalog() bool {
	return r == RoleAdmin
}

func (r Role) CanManageMembers() bool {
	return r == RoleAdmin
}

func (r Role) CanViewReports() bool {
	return r == RoleAdmin
}

func (r Role) CanViewStock() bool {
	return r == RoleAdmin || r == RoleEmployee
}
