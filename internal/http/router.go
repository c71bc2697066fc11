package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/invoicetracker/internal/http/auth"
	"github.com/MrJamesThe3rd/invoicetracker/internal/http/export"
	"github.com/MrJamesThe3rd/invoicetracker/internal/http/extract"
	"github.com/MrJamesThe3rd/invoicetracker/internal/http/importcsv"
	"github.com/MrJamesThe3rd/invoicetracker/internal/http/invoice"
	authmw "github.com/MrJamesThe3rd/invoicetracker/internal/http/middleware"
	"github.com/MrJamesThe3rd/invoicetracker/internal/http/report"
	"github.com/MrJamesThe3rd/invoicetracker/internal/http/supplier"
	"github.com/MrJamesThe3rd/invoicetracker/internal/http/user"
)

type Handlers struct {
	Auth      *auth.Handler
	Invoices  *invoice.Handler
	Users     *user.Handler
	Reports   *report.Handler
	Import    *importcsv.Handler
	Extract   *extract.Handler
	Export    *export.Handler
	Suppliers *supplier.Handler
}

type Options struct {
	Authenticator  authmw.Authenticator
	AllowedOrigins []string
	// Instrument wraps every request; typically obs.Metrics.Instrument.
	Instrument func(http.Handler) http.Handler
	Metrics    http.Handler
	// TrustProxy rewrites RemoteAddr from X-Forwarded-For and X-Real-IP.
	// Only enable it when a reverse proxy sets those headers.
	TrustProxy bool
}

func New(h Handlers, opts Options) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)

	if opts.TrustProxy {
		router.Use(middleware.RealIP)
	}

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	if opts.Instrument != nil {
		router.Use(opts.Instrument)
	}

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	if opts.Metrics != nil {
		router.Handle("/metrics", opts.Metrics)
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(authmw.Authenticate(opts.Authenticator))

		r.Route("/auth", h.Auth.Routes)

		r.Group(func(r chi.Router) {
			r.Use(authmw.RequireSession)

			r.Route("/invoices", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				h.Invoices.Routes(r)
			})

			r.Route("/users", h.Users.Routes)
			r.Route("/reports", h.Reports.Routes)
			r.Route("/import", h.Import.Routes)
			r.Route("/extract", h.Extract.Routes)

			r.Route("/export", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				h.Export.Routes(r)
			})

			r.Route("/suppliers", h.Suppliers.Routes)
		})
	})

	return router
}
