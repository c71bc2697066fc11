package main

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/invoicetracker/internal/access"
	"github.com/MrJamesThe3rd/invoicetracker/internal/config"
	"github.com/MrJamesThe3rd/invoicetracker/internal/database"
	"github.com/MrJamesThe3rd/invoicetracker/internal/user"
	userStore "github.com/MrJamesThe3rd/invoicetracker/internal/user/store"
)

// app holds what every subcommand needs once config and database are up.
type app struct {
	cfg   *config.Config
	db    *sql.DB
	users *user.Service
	store *userStore.Store
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "invoicectl",
		Short:         "Operator commands for the invoice tracker",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open(cmd.Context())
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			a.close()
		},
	}

	root.AddCommand(
		newMigrateCmd(a),
		newBootstrapCmd(a),
		newNotifyCmd(a),
		newReportCmd(a),
	)

	return root
}

func (a *app) open(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := database.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}

	a.cfg = cfg
	a.db = db
	a.store = userStore.New(db)
	a.users = user.NewService(a.store, cfg.Auth.DefaultPassword)

	return nil
}

func (a *app) close() {
	if a.db != nil {
		_ = a.db.Close()
	}
}

// sessionFor acts as the user with the given email, with that user's role.
func (a *app) sessionFor(ctx context.Context, email string) (access.Session, error) {
	if email == "" {
		return access.Session{}, fmt.Errorf("--as is required")
	}

	u, err := a.store.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return access.Session{}, fmt.Errorf("resolve %s: %w", email, err)
	}

	return u.Session(), nil
}
