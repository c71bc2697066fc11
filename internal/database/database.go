package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/MrJamesThe3rd/invoicetracker/internal/config"
)

// New opens the pgx-backed pool described by cfg.DB and waits for the
// server to answer a ping.
func New(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	db.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.DB.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.DB.PingTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging database %s:%d/%s: %w", cfg.DB.Host, cfg.DB.Port, cfg.DB.Name, err)
	}

	slog.Debug("database connected", "host", cfg.DB.Host, "name", cfg.DB.Name, "max_open_conns", cfg.DB.MaxOpenConns)

	return db, nil
}
