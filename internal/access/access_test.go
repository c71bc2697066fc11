package access_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/invoicetracker/internal/access"
)

func TestRank(t *testing.T) {
	tests := []struct {
		role access.Role
		want int
	}{
		{access.RoleViewer, 0},
		{access.RoleUploader, 1},
		{access.RoleEditor, 2},
		{access.RoleLiteAdmin, 3},
		{access.RoleAdmin, 4},
		{access.RoleSuperAdmin, 5},
		{access.RoleNone, 0},
		{access.Role("owner"), 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			assert.Equal(t, tt.want, access.Rank(tt.role))
		})
	}
}

func TestHasPermission_MatchesRankOrder(t *testing.T) {
	all := append([]access.Role{access.RoleNone, "unknown"}, access.Roles...)

	for _, user := range all {
		for _, required := range access.Roles {
			want := access.Rank(user) >= access.Rank(required)
			assert.Equal(t, want, access.HasPermission(user, required), "%q vs %q", user, required)
		}
	}

	assert.True(t, access.HasPermission(access.RoleEditor, access.RoleUploader))
	assert.False(t, access.HasPermission(access.RoleViewer, access.RoleEditor))
}

func TestHasExactRole(t *testing.T) {
	assert.True(t, access.HasExactRole(access.RoleSuperAdmin, access.RoleSuperAdmin))
	assert.False(t, access.HasExactRole(access.RoleAdmin, access.RoleSuperAdmin))
	assert.False(t, access.HasExactRole(access.Role("bogus"), access.Role("bogus")))
}

func TestParseRole(t *testing.T) {
	r, ok := access.ParseRole("  Lite_Admin ")
	require.True(t, ok)
	assert.Equal(t, access.RoleLiteAdmin, r)

	_, ok = access.ParseRole("root")
	assert.False(t, ok)
}

func TestAuthorize(t *testing.T) {
	type testCase struct {
		name    string
		session access.Session
		action  access.Action
		wantErr error
	}

	signedIn := func(r access.Role) access.Session {
		return access.Session{UserID: uuid.New(), Role: r}
	}

	tests := []testCase{
		{name: "Anonymous", session: access.Session{}, action: access.ActionViewInvoices, wantErr: access.ErrUnauthenticated},
		{name: "NoRoleCanView", session: signedIn(access.RoleNone), action: access.ActionViewInvoices},
		{name: "NoRoleCannotUpload", session: signedIn(access.RoleNone), action: access.ActionCreateInvoice, wantErr: access.ErrForbidden},
		{name: "UploaderCreates", session: signedIn(access.RoleUploader), action: access.ActionCreateInvoice},
		{name: "UploaderCannotEdit", session: signedIn(access.RoleUploader), action: access.ActionEditInvoice, wantErr: access.ErrForbidden},
		{name: "EditorCannotDelete", session: signedIn(access.RoleEditor), action: access.ActionDeleteInvoice, wantErr: access.ErrForbidden},
		{name: "AdminDeletes", session: signedIn(access.RoleAdmin), action: access.ActionDeleteInvoice},
		{name: "AdminViewsPanel", session: signedIn(access.RoleAdmin), action: access.ActionViewAdminPanel},
		{name: "AdminCannotManageUsers", session: signedIn(access.RoleAdmin), action: access.ActionManageUsers, wantErr: access.ErrForbidden},
		{name: "SuperAdminManagesUsers", session: signedIn(access.RoleSuperAdmin), action: access.ActionManageUsers},
		{name: "UnknownAction", session: signedIn(access.RoleSuperAdmin), action: access.Action("x"), wantErr: access.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := access.Authorize(tt.session, tt.action)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestPermissions(t *testing.T) {
	assert.Equal(t, []access.Action{access.ActionViewInvoices}, access.Permissions(access.RoleViewer))
	assert.Len(t, access.Permissions(access.RoleSuperAdmin), 8)
	assert.NotContains(t, access.Permissions(access.RoleAdmin), access.ActionManageUsers)
}

func TestSessionContext(t *testing.T) {
	_, ok := access.SessionFromContext(context.Background())
	assert.False(t, ok)

	s := access.Session{UserID: uuid.New(), Email: "a@b.c", Role: access.RoleEditor}
	got, ok := access.SessionFromContext(access.ContextWithSession(context.Background(), s))
	require.True(t, ok)
	assert.Equal(t, s, got)
}
