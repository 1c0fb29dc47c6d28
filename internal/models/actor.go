package models

type ActorRole string

const (
	RoleCustomer ActorRole = "customer"
	RoleStaff    ActorRole = "staff"
	RoleOwner    ActorRole = "owner"
)

func ParseActorRole(s string) (ActorRole, bool) {
	switch r := ActorRole(s); r {
	case RoleCustomer, RoleStaff, RoleOwner:
		return r, true
	}
	return "", false
}

// IsRestaurantSide is true for staff and owners, who run the reservation book.
func (r ActorRole) IsRestaurantSide() bool {
	return r == RoleStaff || r == RoleOwner
}

// Actor is the authenticated caller of a core operation.
type Actor struct {
	UserID int64
	Role   ActorRole
}
