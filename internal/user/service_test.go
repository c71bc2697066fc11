package user_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/invoicetracker/internal/access"
	"github.com/MrJamesThe3rd/invoicetracker/internal/user"
)

const defaultPassword = "Welcome@123"

func session(role access.Role) access.Session {
	return access.Session{UserID: uuid.New(), Role: role}
}

func TestService_List(t *testing.T) {
	users := []*user.User{
		{FirstName: "Ana", LastName: "Silva", Email: "ana@example.com", Designation: "Analyst", Role: access.RoleEditor},
		{FirstName: "Bo", LastName: "Chen", Email: "bo@example.com", Department: "Supply Chain", Role: access.RoleViewer},
	}

	type testCase struct {
		name      string
		role      access.Role
		search    string
		setupMock func(m *user.MockRepository)
		want      int
		wantErr   error
	}

	tests := []testCase{
		{
			name: "AdminSeesAll",
			role: access.RoleAdmin,
			setupMock: func(m *user.MockRepository) {
				m.EXPECT().ListUsers(gomock.Any()).Return(users, nil)
			},
			want: 2,
		},
		{
			name:   "SearchByDepartment",
			role:   access.RoleSuperAdmin,
			search: "supply",
			setupMock: func(m *user.MockRepository) {
				m.EXPECT().ListUsers(gomock.Any()).Return(users, nil)
			},
			want: 1,
		},
		{
			name:   "SearchByRole",
			role:   access.RoleAdmin,
			search: "EDITOR",
			setupMock: func(m *user.MockRepository) {
				m.EXPECT().ListUsers(gomock.Any()).Return(users, nil)
			},
			want: 1,
		},
		{
			name:    "LiteAdminForbidden",
			role:    access.RoleLiteAdmin,
			wantErr: access.ErrForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := user.NewMockRepository(ctrl)

			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := user.NewService(repo, defaultPassword)
			got, err := svc.List(context.Background(), session(tt.role), tt.search)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestService_SuperAdminOnly(t *testing.T) {
	id := uuid.New()

	ops := map[string]func(svc *user.Service, sess access.Session) error{
		"SetRole": func(svc *user.Service, sess access.Session) error {
			return svc.SetRole(context.Background(), sess, id, access.RoleEditor)
		},
		"ResetPassword": func(svc *user.Service, sess access.Session) error {
			return svc.ResetPassword(context.Background(), sess, id)
		},
		"Delete": func(svc *user.Service, sess access.Session) error {
			return svc.Delete(context.Background(), sess, id)
		},
		"UpdateDepartment": func(svc *user.Service, sess access.Session) error {
			_, err := svc.UpdateDepartment(context.Background(), sess, id, "Ops")
			return err
		},
		"Create": func(svc *user.Service, sess access.Session) error {
			_, err := svc.Create(context.Background(), sess, user.CreateParams{})
			return err
		},
	}

	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			svc := user.NewService(user.NewMockRepository(ctrl), defaultPassword)

			// admin outranks most roles but is not super_admin.
			assert.ErrorIs(t, op(svc, session(access.RoleAdmin)), access.ErrForbidden)
		})
	}
}

func TestService_Create_DefaultPasswordForcesChange(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := user.NewMockRepository(ctrl)

	repo.EXPECT().
		CreateUser(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, u *user.User) error {
			u.ID = uuid.New()
			return nil
		})

	svc := user.NewService(repo, defaultPassword)
	got, err := svc.Create(context.Background(), session(access.RoleSuperAdmin), user.CreateParams{
		Profile: user.Profile{Email: "Dana@Example.com", FirstName: "Dana", LastName: "Reyes"},
		Role:    access.RoleUploader,
	})

	require.NoError(t, err)
	assert.Equal(t, "dana@example.com", got.Email)
	assert.Equal(t, access.RoleUploader, got.Role)
	assert.True(t, got.ForcePasswordChange)
	assert.True(t, user.CheckPassword(got.PasswordHash, defaultPassword))
}

func TestService_Create_Validation(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := user.NewService(user.NewMockRepository(ctrl), defaultPassword)
	sess := session(access.RoleSuperAdmin)

	_, err := svc.Create(context.Background(), sess, user.CreateParams{
		Profile: user.Profile{Email: "not-an-email", FirstName: "A", LastName: "B"},
	})
	assert.ErrorIs(t, err, user.ErrInvalidInput)

	_, err = svc.Create(context.Background(), sess, user.CreateParams{
		Profile: user.Profile{Email: "a@example.com", FirstName: "A", LastName: "B"},
		Role:    access.Role("owner"),
	})
	assert.ErrorIs(t, err, user.ErrInvalidInput)
}

func TestService_SetRole(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := user.NewMockRepository(ctrl)

	id := uuid.New()
	repo.EXPECT().SetRole(gomock.Any(), id, access.RoleLiteAdmin).Return(nil)
	repo.EXPECT().SetRole(gomock.Any(), id, access.RoleNone).Return(nil)

	svc := user.NewService(repo, defaultPassword)
	sess := session(access.RoleSuperAdmin)

	require.NoError(t, svc.SetRole(context.Background(), sess, id, access.Role(" Lite_Admin ")))
	require.NoError(t, svc.SetRole(context.Background(), sess, id, access.RoleNone))
	assert.ErrorIs(t, svc.SetRole(context.Background(), sess, id, access.Role("root")), user.ErrInvalidInput)
}

func TestService_ResetPassword(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := user.NewMockRepository(ctrl)

	id := uuid.New()
	repo.EXPECT().
		UpdatePassword(gomock.Any(), id, gomock.Any(), true).
		DoAndReturn(func(_ context.Context, _ uuid.UUID, hash string, _ bool) error {
			assert.True(t, user.CheckPassword(hash, defaultPassword))
			return nil
		})

	svc := user.NewService(repo, defaultPassword)
	assert.NoError(t, svc.ResetPassword(context.Background(), session(access.RoleSuperAdmin), id))
}

func TestService_Delete_Self(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := user.NewService(user.NewMockRepository(ctrl), defaultPassword)

	sess := session(access.RoleSuperAdmin)
	assert.ErrorIs(t, svc.Delete(context.Background(), sess, sess.UserID), user.ErrInvalidInput)
}

func TestService_Get_Self(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := user.NewMockRepository(ctrl)

	sess := session(access.RoleViewer)
	repo.EXPECT().GetUser(gomock.Any(), sess.UserID).Return(&user.User{ID: sess.UserID}, nil)

	svc := user.NewService(repo, defaultPassword)

	got, err := svc.Get(context.Background(), sess, sess.UserID)
	require.NoError(t, err)
	assert.Equal(t, sess.UserID, got.ID)

	_, err = svc.Get(context.Background(), sess, uuid.New())
	assert.ErrorIs(t, err, access.ErrForbidden)
}

func TestService_Bootstrap(t *testing.T) {
	profile := user.Profile{Email: "Root@Example.com", FirstName: "Root", LastName: "Admin"}

	t.Run("PromotesExisting", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := user.NewMockRepository(ctrl)

		id := uuid.New()
		repo.EXPECT().GetUserByEmail(gomock.Any(), "root@example.com").
			Return(&user.User{ID: id, Email: "root@example.com", Role: access.RoleViewer}, nil)
		repo.EXPECT().SetRole(gomock.Any(), id, access.RoleSuperAdmin).Return(nil)

		got, err := user.NewService(repo, defaultPassword).Bootstrap(context.Background(), profile, "")
		require.NoError(t, err)
		assert.Equal(t, access.RoleSuperAdmin, got.Role)
	})

	t.Run("CreatesMissingWithDefaultPassword", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := user.NewMockRepository(ctrl)

		repo.EXPECT().GetUserByEmail(gomock.Any(), "root@example.com").Return(nil, user.ErrNotFound)
		repo.EXPECT().CreateUser(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, u *user.User) error {
			assert.Equal(t, access.RoleSuperAdmin, u.Role)
			assert.True(t, u.ForcePasswordChange)
			assert.True(t, user.CheckPassword(u.PasswordHash, defaultPassword))
			return nil
		})

		got, err := user.NewService(repo, defaultPassword).Bootstrap(context.Background(), profile, "")
		require.NoError(t, err)
		assert.Equal(t, "root@example.com", got.Email)
	})

	t.Run("InvalidProfile", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := user.NewMockRepository(ctrl)

		_, err := user.NewService(repo, defaultPassword).Bootstrap(context.Background(), user.Profile{Email: "nope"}, "x")
		assert.ErrorIs(t, err, user.ErrInvalidInput)
	})
}
