package report

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/invoicetracker/internal/access"
	"github.com/MrJamesThe3rd/invoicetracker/internal/functions"
	"github.com/MrJamesThe3rd/invoicetracker/internal/invoice"
	"github.com/MrJamesThe3rd/invoicetracker/internal/notify"
)

var testNow = time.Date(2024, 3, 31, 15, 0, 0, 0, time.UTC)

func newRouter(t *testing.T, role access.Role) (http.Handler, *invoice.MockRepository, *notify.MockInvoker) {
	t.Helper()

	ctrl := gomock.NewController(t)
	repo := invoice.NewMockRepository(ctrl)
	fn := notify.NewMockInvoker(ctrl)

	h := NewHandler(invoice.NewService(repo), notify.NewService(fn))
	h.now = func() time.Time { return testNow }

	sess := access.Session{UserID: uuid.New(), Role: role}

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(access.ContextWithSession(req.Context(), sess)))
		})
	})
	r.Route("/reports", h.Routes)

	return r, repo, fn
}

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, strings.NewReader(body)))

	return rec
}

func TestHandler_CSV(t *testing.T) {
	h, repo, _ := newRouter(t, access.RoleViewer)

	repo.EXPECT().ListInvoices(gomock.Any(), gomock.Any()).Return([]*invoice.Invoice{
		{InvoiceNumber: "INV-1", Supplier: "Acme", Amount: 1050, Status: invoice.StatusPending,
			ReceivedDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
	}, nil)

	rec := do(h, http.MethodGet, "/reports/csv", "")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, `attachment; filename="invoice-report-2024-03-31.csv"`, rec.Header().Get("Content-Disposition"))

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `"INV-1","Acme",10.50,2024-03-01,30,"Overdue","","",`, lines[1])
}

func TestHandler_HTML_Anonymous(t *testing.T) {
	repo := invoice.NewMockRepository(gomock.NewController(t))

	r := chi.NewRouter()
	r.Route("/reports", NewHandler(invoice.NewService(repo), nil).Routes)

	rec := do(r, http.MethodGet, "/reports/html", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandler_Send(t *testing.T) {
	type testCase struct {
		name       string
		role       access.Role
		body       string
		setupMock  func(m *notify.MockInvoker)
		wantStatus int
		wantBody   string
	}

	tests := []testCase{
		{
			name: "Sent",
			role: access.RoleAdmin,
			body: `{"period":"weekly","format":"excel"}`,
			setupMock: func(m *notify.MockInvoker) {
				m.EXPECT().
					Invoke(gomock.Any(), "generate-report", gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, _ string, _, resp any) error {
						out := resp.(*struct {
							EmailsSent int `json:"emails_sent"`
						})
						out.EmailsSent = 3

						return nil
					})
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"emails_sent":3}`,
		},
		{
			name:       "EditorForbidden",
			role:       access.RoleEditor,
			body:       `{"period":"weekly","format":"excel"}`,
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "BadPeriod",
			role:       access.RoleAdmin,
			body:       `{"period":"daily","format":"excel"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "RemoteFailure",
			role: access.RoleAdmin,
			body: `{"period":"monthly","format":"pdf"}`,
			setupMock: func(m *notify.MockInvoker) {
				m.EXPECT().
					Invoke(gomock.Any(), "generate-report", gomock.Any(), gomock.Any()).
					Return(&functions.RemoteError{Function: "generate-report", StatusCode: 500, Message: "smtp down"})
			},
			wantStatus: http.StatusBadGateway,
			wantBody:   `{"error":"smtp down"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _, fn := newRouter(t, tt.role)
			if tt.setupMock != nil {
				tt.setupMock(fn)
			}

			rec := do(h, http.MethodPost, "/reports/send", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())

			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}
