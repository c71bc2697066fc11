package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/invoicetracker/internal/access"
	"github.com/MrJamesThe3rd/invoicetracker/internal/auth"
	authhttp "github.com/MrJamesThe3rd/invoicetracker/internal/http/auth"
	"github.com/MrJamesThe3rd/invoicetracker/internal/http/export"
	"github.com/MrJamesThe3rd/invoicetracker/internal/http/extract"
	"github.com/MrJamesThe3rd/invoicetracker/internal/http/importcsv"
	"github.com/MrJamesThe3rd/invoicetracker/internal/http/invoice"
	"github.com/MrJamesThe3rd/invoicetracker/internal/http/report"
	"github.com/MrJamesThe3rd/invoicetracker/internal/http/supplier"
	"github.com/MrJamesThe3rd/invoicetracker/internal/http/user"
)

type rejectAll struct{}

func (rejectAll) Authenticate(context.Context, string) (access.Session, error) {
	return access.Session{}, auth.ErrInvalidToken
}

func newTestRouter() http.Handler {
	return New(Handlers{
		Auth:      authhttp.NewHandler(nil, nil, nil),
		Invoices:  invoice.NewHandler(nil),
		Users:     user.NewHandler(nil),
		Reports:   report.NewHandler(nil, nil),
		Import:    importcsv.NewHandler(nil, nil, nil, 1<<20),
		Extract:   extract.NewHandler(nil, nil, nil, 1<<20),
		Export:    export.NewHandler(nil),
		Suppliers: supplier.NewHandler(nil),
	}, Options{
		Authenticator:  rejectAll{},
		AllowedOrigins: []string{"https://app.example"},
		Metrics: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte("# metrics"))
		}),
	})
}

func TestRouter(t *testing.T) {
	type testCase struct {
		name       string
		method     string
		target     string
		header     map[string]string
		wantStatus int
	}

	tests := []testCase{
		{name: "Health", method: http.MethodGet, target: "/healthz", wantStatus: http.StatusOK},
		{name: "Metrics", method: http.MethodGet, target: "/metrics", wantStatus: http.StatusOK},
		{name: "AnonymousInvoices", method: http.MethodGet, target: "/api/v1/invoices", wantStatus: http.StatusUnauthorized},
		{name: "AnonymousUsers", method: http.MethodGet, target: "/api/v1/users", wantStatus: http.StatusUnauthorized},
		{
			name:       "InvalidToken",
			method:     http.MethodGet,
			target:     "/api/v1/reports/csv",
			header:     map[string]string{"Authorization": "Bearer nope"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:   "Preflight",
			method: http.MethodOptions,
			target: "/api/v1/invoices",
			header: map[string]string{
				"Origin":                        "https://app.example",
				"Access-Control-Request-Method": "POST",
			},
			wantStatus: http.StatusOK,
		},
		{name: "Unknown", method: http.MethodGet, target: "/nope", wantStatus: http.StatusNotFound},
	}

	router := newTestRouter()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, nil)
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
