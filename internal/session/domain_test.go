package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	for _, valid := range []string{"user", "member", "librarian", "admin"} {
		role, err := ParseRole(valid)
		require.NoError(t, err)
		assert.Equal(t, Role(valid), role)
	}

	_, err := ParseRole("superuser")
	require.Error(t, err)
	_, err = ParseRole("Admin")
	require.Error(t, err, "roles are case sensitive")
}

func TestCapabilities_Matrix(t *testing.T) {
	cases := []struct {
		role Role
		cap  Capability
		want bool
	}{
		{RoleUser, CapBrowseCatalog, true},
		{RoleUser, CapBorrowSelf, true},
		{RoleUser, CapManageCatalog, false},
		{RoleUser, CapDeleteBorrowing, false},
		{RoleMember, CapBorrowSelf, true},
		{RoleMember, CapMarkOverdue, false},
		{RoleLibrarian, CapManageCatalog, true},
		{RoleLibrarian, CapBorrowForOthers, true},
		{RoleLibrarian, CapMarkOverdue, true},
		{RoleLibrarian, CapDeleteBorrowing, false},
		{RoleAdmin, CapManageCatalog, true},
		{RoleAdmin, CapDeleteBorrowing, true},
	}

	for _, tc := range cases {
		assert.Equalf(t, tc.want, Capabilities(tc.role).Has(tc.cap),
			"role=%s cap=%s", tc.role, tc.cap)
	}
}

func TestCapabilities_UnknownRoleGetsNothing(t *testing.T) {
	set := Capabilities(Role("intruder"))
	assert.Empty(t, set)
	assert.False(t, set.Has(CapBrowseCatalog))
}

func TestCapabilities_NilSetGrantsNothing(t *testing.T) {
	var set CapabilitySet
	assert.False(t, set.Has(CapBrowseCatalog))
}
