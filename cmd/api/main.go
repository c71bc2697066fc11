package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/MrJamesThe3rd/invoicetracker/internal/auth"
	"github.com/MrJamesThe3rd/invoicetracker/internal/config"
	"github.com/MrJamesThe3rd/invoicetracker/internal/database"
	"github.com/MrJamesThe3rd/invoicetracker/internal/export"
	"github.com/MrJamesThe3rd/invoicetracker/internal/extract"
	"github.com/MrJamesThe3rd/invoicetracker/internal/functions"
	apphttp "github.com/MrJamesThe3rd/invoicetracker/internal/http"
	authHandler "github.com/MrJamesThe3rd/invoicetracker/internal/http/auth"
	exportHandler "github.com/MrJamesThe3rd/invoicetracker/internal/http/export"
	extractHandler "github.com/MrJamesThe3rd/invoicetracker/internal/http/extract"
	importHandler "github.com/MrJamesThe3rd/invoicetracker/internal/http/importcsv"
	invoiceHandler "github.com/MrJamesThe3rd/invoicetracker/internal/http/invoice"
	"github.com/MrJamesThe3rd/invoicetracker/internal/http/middleware"
	reportHandler "github.com/MrJamesThe3rd/invoicetracker/internal/http/report"
	supplierHandler "github.com/MrJamesThe3rd/invoicetracker/internal/http/supplier"
	userHandler "github.com/MrJamesThe3rd/invoicetracker/internal/http/user"
	"github.com/MrJamesThe3rd/invoicetracker/internal/importer"
	"github.com/MrJamesThe3rd/invoicetracker/internal/invoice"
	invoiceStore "github.com/MrJamesThe3rd/invoicetracker/internal/invoice/store"
	"github.com/MrJamesThe3rd/invoicetracker/internal/notify"
	"github.com/MrJamesThe3rd/invoicetracker/internal/obs"
	"github.com/MrJamesThe3rd/invoicetracker/internal/supplier"
	supplierStore "github.com/MrJamesThe3rd/invoicetracker/internal/supplier/store"
	"github.com/MrJamesThe3rd/invoicetracker/internal/user"
	userStore "github.com/MrJamesThe3rd/invoicetracker/internal/user/store"
)

var version = "dev"

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx, cfg)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if _, err := database.Migrate(ctx, db); err != nil {
		slog.Error("failed to migrate database", "error", err)
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

	users := userStore.New(db)
	fn := functions.NewClient(cfg.Functions.BaseURL, cfg.Functions.APIKey, cfg.Functions.Timeout)

	var (
		authService     = auth.NewService(users, tokens)
		userService     = user.NewService(users, cfg.Auth.DefaultPassword)
		invoiceService  = invoice.NewService(invoiceStore.New(db), invoice.WithAttachmentOrigin(attachments))
		supplierService = supplier.NewService(supplierStore.New(db))
		notifyService   = notify.NewService(fn)
		importService   = importer.NewService()
		exportService   = export.NewService(invoiceService, attachments, cfg.Attachments.Token)
		extractor       = extract.NewExtractor(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.BaseURL)
	)

	if extractor == nil {
		slog.Info("image extraction disabled: OPENAI_API_KEY not set")
	}

	limiter := middleware.NewRateLimiter(cfg.Limits.SignInPerMinute, cfg.Limits.SignInBurst)

	handlers := apphttp.Handlers{
		Auth:      authHandler.NewHandler(authService, userService, limiter.Handler),
		Invoices:  invoiceHandler.NewHandler(invoiceService),
		Users:     userHandler.NewHandler(userService),
		Reports:   reportHandler.NewHandler(invoiceService, notifyService),
		Import:    importHandler.NewHandler(importService, invoiceService, supplierService, cfg.MaxUploadBytes()),
		Extract:   extractHandler.NewHandler(extractor, invoiceService, supplierService, cfg.MaxUploadBytes()),
		Export:    exportHandler.NewHandler(exportService),
		Suppliers: supplierHandler.NewHandler(supplierService),
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	metrics := obs.NewMetrics(reg)
	metrics.SetBuildInfo(version)

	router := apphttp.New(handlers, apphttp.Options{
		Authenticator:  authService,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Instrument:     metrics.Instrument,
		Metrics:        obs.Handler(reg),
		TrustProxy:     cfg.Server.TrustProxy,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown failed", "error", err)
		}
	}()

	slog.Info("starting server", "addr", srv.Addr, "version", version)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
