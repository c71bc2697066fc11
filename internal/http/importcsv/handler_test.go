package importcsv

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/invoicetracker/internal/access"
	"github.com/MrJamesThe3rd/invoicetracker/internal/importer"
	"github.com/MrJamesThe3rd/invoicetracker/internal/invoice"
	"github.com/MrJamesThe3rd/invoicetracker/internal/supplier"
)

const sampleCSV = "Invoice Number,Supplier,Amount,Received Date\n" +
	"INV-1,ACME LTD LISBON,10.00,2024-03-01\n" +
	"INV-2,Globex,5.50,2024-03-02\n"

func newRouter(t *testing.T, role access.Role) (http.Handler, *invoice.MockRepository, *supplier.MockRepository) {
	t.Helper()

	ctrl := gomock.NewController(t)
	invRepo := invoice.NewMockRepository(ctrl)
	supRepo := supplier.NewMockRepository(ctrl)

	h := NewHandler(importer.NewService(), invoice.NewService(invRepo), supplier.NewService(supRepo), 1<<20)

	sess := access.Session{UserID: uuid.New(), Role: role}

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(access.ContextWithSession(req.Context(), sess)))
		})
	})
	r.Route("/import", h.Routes)

	return r, invRepo, supRepo
}

func upload(t *testing.T, h http.Handler, content string, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fw, err := mw.CreateFormFile("file", "invoices.csv")
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)

	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}

	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/import/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

func TestHandler_Preview(t *testing.T) {
	h, _, sup := newRouter(t, access.RoleUploader)

	sup.EXPECT().FindMatch(gomock.Any(), "ACME LTD LISBON").Return("Acme Ltd", nil)
	sup.EXPECT().FindMatch(gomock.Any(), "Globex").Return("", nil)

	rec := upload(t, h, sampleCSV+"INV-3,Initech,abc,2024-03-03\n", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp previewResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	require.Len(t, resp.Invoices, 2)
	assert.Equal(t, "Acme Ltd", resp.Invoices[0].Supplier)
	assert.Equal(t, "2024-03-01", resp.Invoices[0].ReceivedDate)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, 4, resp.Errors[0].Row)
}

func TestHandler_Commit(t *testing.T) {
	h, inv, sup := newRouter(t, access.RoleUploader)

	sup.EXPECT().FindMatch(gomock.Any(), gomock.Any()).Return("", nil).Times(2)
	inv.EXPECT().
		CreateInvoices(gomock.Any(), gomock.Len(2)).
		DoAndReturn(func(_ context.Context, invs []*invoice.Invoice) error {
			for _, i := range invs {
				i.ID = uuid.New()
			}

			return nil
		})

	rec := upload(t, h, sampleCSV, map[string]string{"commit": "true"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"imported":2`)
}

func TestHandler_ViewerForbidden(t *testing.T) {
	h, _, _ := newRouter(t, access.RoleViewer)

	rec := upload(t, h, sampleCSV, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHandler_Import_TooLarge(t *testing.T) {
	h, _, _ := newRouter(t, access.RoleUploader)

	rec := upload(t, h, sampleCSV+strings.Repeat("INV-9,Acme,1.00,2024-03-01\n", 60000), nil)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code, rec.Body.String())
}
