package view

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/invoicetracker/internal/auth"
	"github.com/MrJamesThe3rd/invoicetracker/internal/user"
)

type signInState int

const (
	signInStateCredentials signInState = iota
	signInStateWorking
	signInStateChangePassword
)

// SignInModel asks for credentials and, when the account was reset by an
// administrator, for a new password before emitting SignedInMsg.
type SignInModel struct {
	CommonModel
	authService *auth.Service

	state signInState
	form  *huh.Form
	err   error

	email    string
	password string

	next    string
	confirm string

	pending *user.User
}

func NewSignInModel(authSvc *auth.Service) SignInModel {
	m := SignInModel{authService: authSvc}
	m.form = m.buildCredentialsForm()

	return m
}

func (m SignInModel) Title() string { return "Sign In" }

func (m SignInModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m SignInModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case signInResultMsg:
		if msg.err != nil {
			m.err = msg.err
			m.state = signInStateCredentials
			m.password = ""
			m.form = m.buildCredentialsForm()

			return m, m.form.Init()
		}

		if msg.result.ForcePasswordChange {
			m.err = nil
			m.pending = msg.result.User
			m.state = signInStateChangePassword
			m.form = m.buildChangePasswordForm()

			return m, m.form.Init()
		}

		return m, signedIn(msg.result.User)

	case passwordChangedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.state = signInStateChangePassword
			m.next, m.confirm = "", ""
			m.form = m.buildChangePasswordForm()

			return m, m.form.Init()
		}

		return m, signedIn(m.pending)
	}

	if m.state == signInStateWorking {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	switch m.state {
	case signInStateCredentials:
		m.email, m.password = m.form.GetString("email"), m.form.GetString("password")
		m.state = signInStateWorking
		return m, m.signInCmd()
	case signInStateChangePassword:
		m.next, m.confirm = m.form.GetString("next"), m.form.GetString("confirm")
		m.state = signInStateWorking
		return m, m.changePasswordCmd()
	}

	return m, nil
}

func (m SignInModel) View() string {
	title := lipgloss.NewStyle().Bold(true).Render("Invoice Tracker")

	body := m.form.View()
	if m.state == signInStateWorking {
		body = "Signing in..."
	}

	if m.state == signInStateChangePassword {
		body = "Your password was reset. Choose a new one.\n\n" + body
	}

	if m.err != nil {
		body += "\n" + errorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	}

	return lipgloss.NewStyle().Padding(2).Render(title + "\n\n" + body)
}

func (m *SignInModel) buildCredentialsForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("email").
				Title("Email").
				Value(&m.email).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("email is required")
					}
					return nil
				}),
			huh.NewInput().
				Key("password").
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&m.password),
		),
	).WithWidth(45).WithShowHelp(false)
}

func (m *SignInModel) buildChangePasswordForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("next").
				Title("New Password").
				EchoMode(huh.EchoModePassword).
				Value(&m.next),
			huh.NewInput().
				Key("confirm").
				Title("Confirm Password").
				EchoMode(huh.EchoModePassword).
				Value(&m.confirm),
		),
	).WithWidth(45).WithShowHelp(false)
}

func signedIn(u *user.User) tea.Cmd {
	return func() tea.Msg {
		name := u.FullName()
		if name == "" {
			name = u.Email
		}

		return SignedInMsg{Session: u.Session(), Name: name, Label: u.Role.Label()}
	}
}

// Messages

type signInResultMsg struct {
	result *auth.SignInResult
	err    error
}

type passwordChangedMsg struct {
	err error
}

func (m SignInModel) signInCmd() tea.Cmd {
	email, password := strings.TrimSpace(m.email), m.password

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		res, err := m.authService.SignIn(ctx, email, password)
		return signInResultMsg{result: res, err: err}
	}
}

func (m SignInModel) changePasswordCmd() tea.Cmd {
	sess := m.pending.Session()
	current, next, confirm := m.password, m.next, m.confirm

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		return passwordChangedMsg{err: m.authService.ChangePassword(ctx, sess, current, next, confirm)}
	}
}
