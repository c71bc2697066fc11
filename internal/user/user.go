package user

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/invoicetracker/internal/access"
)

var (
	ErrNotFound     = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
	ErrInvalidInput = errors.New("invalid user")
)

// User is a profile joined with its role row. Role is RoleNone when the
// user has no role row.
type User struct {
	ID                  uuid.UUID
	Email               string
	FirstName           string
	LastName            string
	Department          string
	Designation         string
	Role                access.Role
	PasswordHash        string
	ForcePasswordChange bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Matches reports whether term appears, case-insensitively, in the user's
// name, email, designation, department or role.
func (u *User) Matches(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}

	for _, field := range []string{u.FirstName, u.LastName, u.Email, u.Designation, u.Department, string(u.Role)} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}

	return false
}

// Session builds the access session for this user.
func (u *User) Session() access.Session {
	return access.Session{UserID: u.ID, Email: u.Email, Role: u.Role}
}

// RoleTemplate is a named preset the admin panel offers when assigning roles.
type RoleTemplate struct {
	Name        string
	Role        access.Role
	Description string
}

var RoleTemplates = []RoleTemplate{
	{Name: "Finance Team Member", Role: access.RoleEditor, Description: "Can view, upload, and edit invoices"},
	{Name: "Data Entry Staff", Role: access.RoleUploader, Description: "Can view and upload new invoices"},
	{Name: "Viewer Only", Role: access.RoleViewer, Description: "Can only view invoices, no editing"},
	{Name: "Department Admin", Role: access.RoleAdmin, Description: "Full access including user management"},
}
