package access

import "strings"

// Role is a named permission level. Roles are totally ordered by Rank.
type Role string

const (
	RoleViewer     Role = "viewer"
	RoleUploader   Role = "uploader"
	RoleEditor     Role = "editor"
	RoleLiteAdmin  Role = "lite_admin"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// RoleNone is the zero value: a user without a role row.
const RoleNone Role = ""

var ranks = map[Role]int{
	RoleViewer:     0,
	RoleUploader:   1,
	RoleEditor:     2,
	RoleLiteAdmin:  3,
	RoleAdmin:      4,
	RoleSuperAdmin: 5,
}

// Roles lists every known role from lowest to highest rank.
var Roles = []Role{
	RoleViewer,
	RoleUploader,
	RoleEditor,
	RoleLiteAdmin,
	RoleAdmin,
	RoleSuperAdmin,
}

// Rank returns the position of the role in the hierarchy.
// Unknown and missing roles rank 0.
func Rank(r Role) int {
	return ranks[r]
}

// ParseRole normalizes s and reports whether it names a known role.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	_, ok := ranks[r]

	return r, ok
}

// HasPermission reports whether userRole ranks at least as high as required.
func HasPermission(userRole, required Role) bool {
	return Rank(userRole) >= Rank(required)
}

// HasExactRole is used where "at least" is not enough: the caller must hold
// exactly the required role.
func HasExactRole(userRole, required Role) bool {
	if _, ok := ranks[userRole]; !ok {
		return false
	}

	return userRole == required
}

// Label is the human form used in listings, e.g. "LITE ADMIN".
func (r Role) Label() string {
	if r == RoleNone {
		return "NO ROLE"
	}

	return strings.ToUpper(strings.ReplaceAll(string(r), "_", " "))
}
