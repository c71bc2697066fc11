package invoice_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/invoicetracker/internal/access"
	"github.com/MrJamesThe3rd/invoicetracker/internal/invoice"
)

func TestAttachmentOrigin_Allows(t *testing.T) {
	origin, err := invoice.ParseAttachmentOrigin("https://files.example.com/base")
	require.NoError(t, err)

	type testCase struct {
		raw  string
		want bool
	}

	tests := []testCase{
		{"https://files.example.com/inv/1.pdf", true},
		{"HTTPS://FILES.example.com/inv/1.pdf", true},
		{"http://files.example.com/inv/1.pdf", false},
		{"https://files.example.com:8443/inv/1.pdf", false},
		{"https://evil.example.com/inv/1.pdf", false},
		{"https://user:pw@files.example.com/inv/1.pdf", false},
		{"http://169.254.169.254/latest/meta-data", false},
		{"/relative.pdf", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, origin.Allows(tt.raw))
		})
	}

	assert.False(t, invoice.AttachmentOrigin{}.Allows("https://files.example.com/inv/1.pdf"))
}

func TestParseAttachmentOrigin_Invalid(t *testing.T) {
	for _, base := range []string{"files.example.com", "ftp://files.example.com", "https://"} {
		_, err := invoice.ParseAttachmentOrigin(base)
		assert.Error(t, err, base)
	}

	o, err := invoice.ParseAttachmentOrigin("  ")
	require.NoError(t, err)
	assert.True(t, o.IsZero())
}

func TestService_FileURLMustUseAttachmentOrigin(t *testing.T) {
	origin, err := invoice.ParseAttachmentOrigin("https://files.example.com")
	require.NoError(t, err)

	ctrl := gomock.NewController(t)
	repo := invoice.NewMockRepository(ctrl)
	svc := invoice.NewService(repo, invoice.WithAttachmentOrigin(origin))
	sess := session(access.RoleEditor)

	params := invoice.CreateParams{
		InvoiceNumber: "INV-1",
		Supplier:      "Acme",
		ReceivedDate:  time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		FileURL:       "http://127.0.0.1:9000/internal",
	}

	_, err = svc.Create(context.Background(), sess, params)
	assert.ErrorIs(t, err, invoice.ErrInvalidInput)

	_, err = svc.CreateBatch(context.Background(), sess, []invoice.CreateParams{params})
	assert.ErrorIs(t, err, invoice.ErrInvalidInput)

	_, err = svc.Update(context.Background(), sess, uuid.New(), invoice.UpdateParams{FileURL: new("https://evil.example.com/a.pdf")})
	assert.ErrorIs(t, err, invoice.ErrInvalidInput)

	params.FileURL = " https://files.example.com/inv/1.pdf "
	repo.EXPECT().CreateInvoice(gomock.Any(), gomock.Any()).Return(nil)

	got, err := svc.Create(context.Background(), sess, params)
	require.NoError(t, err)
	assert.Equal(t, "https://files.example.com/inv/1.pdf", got.FileURL)
}

func TestService_FileURLRejectedWithoutAttachmentOrigin(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := invoice.NewService(invoice.NewMockRepository(ctrl))

	_, err := svc.Create(context.Background(), session(access.RoleEditor), invoice.CreateParams{
		InvoiceNumber: "INV-1",
		Supplier:      "Acme",
		ReceivedDate:  time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		FileURL:       "https://files.example.com/inv/1.pdf",
	})
	assert.ErrorIs(t, err, invoice.ErrInvalidInput)
}
