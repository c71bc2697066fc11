package access

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthenticated = errors.New("access: not signed in")
	ErrForbidden       = errors.New("access: insufficient role")
)

// Action names something a user can attempt.
type Action string

const (
	ActionViewInvoices   Action = "invoices.view"
	ActionCreateInvoice  Action = "invoices.create"
	ActionEditInvoice    Action = "invoices.edit"
	ActionTransition     Action = "invoices.transition"
	ActionDeleteInvoice  Action = "invoices.delete"
	ActionViewAdminPanel Action = "admin.view"
	ActionSendReports    Action = "reports.send"
	ActionManageUsers    Action = "users.manage"
)

type rule struct {
	role  Role
	exact bool
}

// Delete is admin-or-above everywhere; user administration needs exactly super_admin.
var policy = map[Action]rule{
	ActionViewInvoices:   {role: RoleViewer},
	ActionCreateInvoice:  {role: RoleUploader},
	ActionEditInvoice:    {role: RoleEditor},
	ActionTransition:     {role: RoleEditor},
	ActionDeleteInvoice:  {role: RoleAdmin},
	ActionViewAdminPanel: {role: RoleAdmin},
	ActionSendReports:    {role: RoleAdmin},
	ActionManageUsers:    {role: RoleSuperAdmin, exact: true},
}

// Can reports whether role may perform action. Unknown actions are denied.
func Can(role Role, action Action) bool {
	r, ok := policy[action]
	if !ok {
		return false
	}

	if r.exact {
		return HasExactRole(role, r.role)
	}

	return HasPermission(role, r.role)
}

// Authorize checks the session against the policy for action.
func Authorize(s Session, action Action) error {
	if !s.Authenticated() {
		return ErrUnauthenticated
	}

	if !Can(s.Role, action) {
		return fmt.Errorf("%w: %s requires %s", ErrForbidden, action, policy[action].role)
	}

	return nil
}

// Permissions lists the actions available to role, in a stable order.
func Permissions(role Role) []Action {
	ordered := []Action{
		ActionViewInvoices,
		ActionCreateInvoice,
		ActionEditInvoice,
		ActionTransition,
		ActionDeleteInvoice,
		ActionViewAdminPanel,
		ActionSendReports,
		ActionManageUsers,
	}

	var out []Action

	for _, a := range ordered {
		if Can(role, a) {
			out = append(out, a)
		}
	}

	return out
}
