package session

import (
	"fmt"

	"github.com/google/uuid"
)

// User is the authenticated account as reported by the backend.
type User struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name"`
	Role  Role      `json:"role"`
}

// Role is the closed set of account roles the backend issues.
type Role string

const (
	RoleUser      Role = "user"
	RoleMember    Role = "member"
	RoleLibrarian Role = "librarian"
	RoleAdmin     Role = "admin"
)

// ParseRole validates a role string against the closed enum.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser, RoleMember, RoleLibrarian, RoleAdmin:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Capability names an action a role may perform. Capabilities gate which
// commands are offered to the user; the backend remains the authority and
// will reject anything a stale or tampered client sends anyway.
type Capability string

const (
	CapBrowseCatalog      Capability = "catalog.browse"
	CapManageCatalog      Capability = "catalog.manage"
	CapBorrowSelf         Capability = "borrowing.self"
	CapBorrowForOthers    Capability = "borrowing.others"
	CapViewAllBorrowings  Capability = "borrowing.view_all"
	CapUpdateBorrowing    Capability = "borrowing.update"
	CapMarkOverdue        Capability = "borrowing.sweep"
	CapDeleteBorrowing    Capability = "borrowing.delete"
	CapViewBorrowingStats Capability = "borrowing.stats"
)

// CapabilitySet holds the capabilities granted to one role. Resolve it once
// when entering a view, not per rendered element.
type CapabilitySet map[Capability]struct{}

// Has reports whether the set grants cap.
func (s CapabilitySet) Has(cap Capability) bool {
	_, ok := s[cap]
	return ok
}

var roleGrants = map[Role][]Capability{
	RoleUser:   {CapBrowseCatalog, CapBorrowSelf},
	RoleMember: {CapBrowseCatalog, CapBorrowSelf},
	RoleLibrarian: {
		CapBrowseCatalog, CapManageCatalog,
		CapBorrowSelf, CapBorrowForOthers,
		CapViewAllBorrowings, CapUpdateBorrowing,
		CapMarkOverdue, CapViewBorrowingStats,
	},
	RoleAdmin: {
		CapBrowseCatalog, CapManageCatalog,
		CapBorrowSelf, CapBorrowForOthers,
		CapViewAllBorrowings, CapUpdateBorrowing,
		CapMarkOverdue, CapViewBorrowingStats,
		CapDeleteBorrowing,
	},
}

// Capabilities returns the capability set for a role. Unknown roles get an
// empty set.
func Capabilities(role Role) CapabilitySet {
	set := make(CapabilitySet)
	for _, cap := range roleGrants[role] {
		set[cap] = struct{}{}
	}
	return set
}
