package enums

import "slices"

// UserRole gates access to the back office.
type UserRole string

const (
	UserRoleCustomer UserRole = "customer"
	UserRoleAdmin    UserRole = "admin"
)

var userRoles = []UserRole{UserRoleCustomer, UserRoleAdmin}

func (r UserRole) String() string { return string(r) }

func (r UserRole) IsValid() bool { return slices.Contains(userRoles, r) }

func ParseUserRole(value string) (UserRole, error) {
	return parseMember("user role", value, userRoles)
}
