package notify_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/invoicetracker/internal/access"
	"github.com/MrJamesThe3rd/invoicetracker/internal/functions"
	"github.com/MrJamesThe3rd/invoicetracker/internal/notify"
)

func session(role access.Role) access.Session {
	return access.Session{UserID: uuid.New(), Role: role}
}

// reply decodes a canned JSON reply into the caller's response value.
func reply(body string) func(context.Context, string, any, any) error {
	return func(_ context.Context, _ string, _, resp any) error {
		return json.Unmarshal([]byte(body), resp)
	}
}

func TestService_SendReport(t *testing.T) {
	ctrl := gomock.NewController(t)
	fn := notify.NewMockInvoker(ctrl)

	fn.EXPECT().
		Invoke(gomock.Any(), "generate-report", gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, name string, req, resp any) error {
			b, err := json.Marshal(req)
			require.NoError(t, err)
			assert.JSONEq(t, `{"type":"monthly","format":"pdf"}`, string(b))

			return reply(`{"emails_sent":7}`)(ctx, name, req, resp)
		})

	svc := notify.NewService(fn)

	sent, err := svc.SendReport(context.Background(), session(access.RoleAdmin), notify.PeriodMonthly, notify.FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, 7, sent)
}

func TestService_SendReport_Rejections(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := notify.NewService(notify.NewMockInvoker(ctrl))

	_, err := svc.SendReport(context.Background(), session(access.RoleLiteAdmin), notify.PeriodWeekly, notify.FormatExcel)
	assert.ErrorIs(t, err, access.ErrForbidden)

	_, err = svc.SendReport(context.Background(), session(access.RoleAdmin), notify.Period("daily"), notify.FormatExcel)
	assert.ErrorIs(t, err, notify.ErrInvalidInput)

	_, err = svc.SendReport(context.Background(), session(access.RoleAdmin), notify.PeriodWeekly, notify.Format("csv"))
	assert.ErrorIs(t, err, notify.ErrInvalidInput)
}

func TestService_SendOverdueNotices(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(m *notify.MockInvoker)
		want    string
		wantErr string
	}{
		{
			name: "BackendMessage",
			setup: func(m *notify.MockInvoker) {
				m.EXPECT().Invoke(gomock.Any(), "send-supply-chain-email", gomock.Any(), gomock.Any()).
					DoAndReturn(reply(`{"message":"3 notices sent"}`))
			},
			want: "3 notices sent",
		},
		{
			name: "DefaultMessage",
			setup: func(m *notify.MockInvoker) {
				m.EXPECT().Invoke(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(reply(`{}`))
			},
			want: "Overdue invoice notifications have been sent",
		},
		{
			name: "RemoteErrorVerbatim",
			setup: func(m *notify.MockInvoker) {
				m.EXPECT().Invoke(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(&functions.RemoteError{Message: "No overdue invoices"})
			},
			wantErr: "No overdue invoices",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			fn := notify.NewMockInvoker(ctrl)
			tt.setup(fn)

			got, err := notify.NewService(fn).SendOverdueNotices(context.Background(), session(access.RoleSuperAdmin))

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, err.Error())

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
