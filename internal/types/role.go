package types

// Role is the actor role resolved by the identity service.
// Mutating operations require one of the roles below; void additionally
// requires an elevated role.
type Role string

const (
	RoleOwner   Role = "owner"
	RoleAdmin   Role = "admin"
	RoleSeller  Role = "seller"
	RoleCashier Role = "cashier"
)

// CanMutate reports whether the role may perform state-changing operations
func (r Role) CanMutate() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleSeller, RoleCashier:
		return true
	}
	return false
}

// IsElevated reports whether the role may perform administrative
// transitions such as voiding a document
func (r Role) IsElevated() bool {
	return r == RoleOwner || r == RoleAdmin
}

func (r Role) Validate() bool {
	return r.CanMutate()
}
