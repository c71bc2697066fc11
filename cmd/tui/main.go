package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/invoicetracker/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/invoicetracker/internal/access"
	"github.com/MrJamesThe3rd/invoicetracker/internal/auth"
	"github.com/MrJamesThe3rd/invoicetracker/internal/config"
	"github.com/MrJamesThe3rd/invoicetracker/internal/database"
	"github.com/MrJamesThe3rd/invoicetracker/internal/export"
	"github.com/MrJamesThe3rd/invoicetracker/internal/importer"
	"github.com/MrJamesThe3rd/invoicetracker/internal/invoice"
	invoiceStore "github.com/MrJamesThe3rd/invoicetracker/internal/invoice/store"
	"github.com/MrJamesThe3rd/invoicetracker/internal/supplier"
	supplierStore "github.com/MrJamesThe3rd/invoicetracker/internal/supplier/store"
	userStore "github.com/MrJamesThe3rd/invoicetracker/internal/user/store"
)

type model struct {
	authService     *auth.Service
	invoiceService  *invoice.Service
	supplierService *supplier.Service
	importService   *importer.Service
	exportService   *export.Service

	sess  access.Session
	name  string
	label string

	currentView View

	signInView   view.SignInModel
	invoicesView view.InvoicesModel
	importView   view.ImportModel
	exportView   view.ExportModel
}

type View int

const (
	ViewSignIn   View = 0
	ViewMenu     View = 1
	ViewInvoices View = 2
	ViewImport   View = 3
	ViewExport   View = 4
)

func initialModel() model {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(context.Background(), cfg)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	tokens, err := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		slog.Error("failed to configure tokens", "error", err)
		os.Exit(1)
	}

	attachments, err := invoice.ParseAttachmentOrigin(cfg.Attachments.BaseURL)
	if err != nil {
		slog.Error("failed to configure attachments", "error", err)
		os.Exit(1)
	}

	authSvc := auth.NewService(userStore.New(db), tokens)
	invSvc := invoice.NewService(invoiceStore.New(db), invoice.WithAttachmentOrigin(attachments))

	return model{
		authService:     authSvc,
		invoiceService:  invSvc,
		supplierService: supplier.NewService(supplierStore.New(db)),
		importService:   importer.NewService(),
		exportService:   export.NewService(invSvc, attachments, cfg.Attachments.Token),
		currentView:     ViewSignIn,
		signInView:      view.NewSignInModel(authSvc),
	}
}

func (m model) Init() tea.Cmd {
	return m.signInView.Init()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewInvoices
				m.invoicesView = view.NewInvoicesModel(m.invoiceService, m.sess, false)

				return m, m.invoicesView.Init()
			case "2":
				m.currentView = ViewInvoices
				m.invoicesView = view.NewInvoicesModel(m.invoiceService, m.sess, true)

				return m, m.invoicesView.Init()
			case "3":
				if !m.sess.Can(access.ActionCreateInvoice) {
					return m, nil
				}

				m.currentView = ViewImport
				m.importView = view.NewImportModel(m.invoiceService, m.importService, m.supplierService, m.sess)

				return m, m.importView.Init()
			case "4":
				m.currentView = ViewExport
				m.exportView = view.NewExportModel(m.invoiceService, m.exportService, m.sess)

				return m, m.exportView.Init()
			case "s":
				m.sess = access.Session{}
				m.currentView = ViewSignIn
				m.signInView = view.NewSignInModel(m.authService)

				return m, m.signInView.Init()
			}
		}
	case view.SignedInMsg:
		m.sess = msg.Session
		m.name = msg.Name
		m.label = msg.Label
		m.currentView = ViewMenu

		slog.Info("signed in", "user_id", msg.Session.UserID, "role", msg.Session.Role)

		return m, nil
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewSignIn:
		var newModel tea.Model
		newModel, cmd = m.signInView.Update(msg)
		m.signInView = newModel.(view.SignInModel)
	case ViewInvoices:
		var newModel tea.Model
		newModel, cmd = m.invoicesView.Update(msg)
		m.invoicesView = newModel.(view.InvoicesModel)
	case ViewImport:
		var newModel tea.Model
		newModel, cmd = m.importView.Update(msg)
		m.importView = newModel.(view.ImportModel)
	case ViewExport:
		var newModel tea.Model
		newModel, cmd = m.exportView.Update(msg)
		m.exportView = newModel.(view.ExportModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewSignIn:
		return m.signInView.View()
	case ViewMenu:
		return m.menuView()
	case ViewInvoices:
		return m.invoicesView.View()
	case ViewImport:
		return m.importView.View()
	case ViewExport:
		return m.exportView.View()
	}

	return "Unknown View"
}

func (m model) menuView() string {
	importLine := "3. Import Invoices\n"
	if !m.sess.Can(access.ActionCreateInvoice) {
		importLine = lipgloss.NewStyle().Faint(true).Render("3. Import Invoices (uploader role required)") + "\n"
	}

	notice := ""
	if m.sess.Role == access.RoleNone {
		notice = "\nNo role assigned yet: read-only access until an administrator grants one.\n"
	}

	return lipgloss.NewStyle().Padding(2).Render(
		fmt.Sprintf("Invoice Tracker\n%s [%s]\n%s\n", m.name, m.label, notice) +
			"1. Invoices\n" +
			"2. Overdue Invoices\n" +
			importLine +
			"4. Export Report\n\n" +
			"s. Sign Out\n" +
			"q. Quit",
	)
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
