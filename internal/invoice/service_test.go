package invoice_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/invoicetracker/internal/access"
	"github.com/MrJamesThe3rd/invoicetracker/internal/invoice"
)

func session(role access.Role) access.Session {
	return access.Session{UserID: uuid.New(), Email: "user@example.com", Role: role}
}

func TestService_Create(t *testing.T) {
	received := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	type args struct {
		sess   access.Session
		params invoice.CreateParams
	}

	type testCase struct {
		name      string
		args      args
		setupMock func(m *invoice.MockRepository)
		wantErr   error
	}

	valid := invoice.CreateParams{
		InvoiceNumber: " INV-001 ",
		Supplier:      "Acme Ltd",
		Amount:        125050,
		ReceivedDate:  received,
		Department:    "Operations",
	}

	tests := []testCase{
		{
			name: "Success",
			args: args{sess: session(access.RoleUploader), params: valid},
			setupMock: func(m *invoice.MockRepository) {
				m.EXPECT().
					CreateInvoice(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, inv *invoice.Invoice) error {
						inv.ID = uuid.New()
						inv.CreatedAt = time.Now()
						return nil
					})
			},
		},
		{
			name:    "ViewerForbidden",
			args:    args{sess: session(access.RoleViewer), params: valid},
			wantErr: access.ErrForbidden,
		},
		{
			name:    "Unauthenticated",
			args:    args{params: valid},
			wantErr: access.ErrUnauthenticated,
		},
		{
			name: "MissingFields",
			args: args{
				sess:   session(access.RoleEditor),
				params: invoice.CreateParams{Amount: 100},
			},
			wantErr: invoice.ErrInvalidInput,
		},
		{
			name: "NegativeAmount",
			args: args{
				sess: session(access.RoleEditor),
				params: invoice.CreateParams{
					InvoiceNumber: "INV-2",
					Supplier:      "Acme",
					Amount:        -1,
					ReceivedDate:  received,
				},
			},
			wantErr: invoice.ErrInvalidInput,
		},
		{
			name: "RepoError",
			args: args{sess: session(access.RoleAdmin), params: valid},
			setupMock: func(m *invoice.MockRepository) {
				m.EXPECT().
					CreateInvoice(gomock.Any(), gomock.Any()).
					Return(errors.New("db error"))
			},
			wantErr: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := invoice.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := invoice.NewService(repo)
			got, err := svc.Create(context.Background(), tt.args.sess, tt.args.params)

			if tt.wantErr != nil {
				require.Error(t, err)

				if errors.Is(tt.wantErr, access.ErrForbidden) ||
					errors.Is(tt.wantErr, access.ErrUnauthenticated) ||
					errors.Is(tt.wantErr, invoice.ErrInvalidInput) {
					assert.ErrorIs(t, err, tt.wantErr)
				}

				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, got.ID)
			assert.Equal(t, "INV-001", got.InvoiceNumber)
			assert.Equal(t, invoice.StatusPending, got.Status)
			assert.Equal(t, tt.args.sess.UserID, got.UserID)
			assert.Nil(t, got.PaymentDate)
		})
	}
}

func TestService_CreateBatch(t *testing.T) {
	received := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	good := invoice.CreateParams{InvoiceNumber: "A", Supplier: "S", Amount: 1, ReceivedDate: received}

	t.Run("AllOrNothing", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := invoice.NewMockRepository(ctrl)

		svc := invoice.NewService(repo)
		_, err := svc.CreateBatch(context.Background(), session(access.RoleUploader), []invoice.CreateParams{
			good,
			{InvoiceNumber: "B"},
		})

		require.Error(t, err)
		assert.ErrorIs(t, err, invoice.ErrInvalidInput)
		assert.Contains(t, err.Error(), "row 2")
	})

	t.Run("Success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := invoice.NewMockRepository(ctrl)
		repo.EXPECT().
			CreateInvoices(gomock.Any(), gomock.Len(2)).
			Return(nil)

		svc := invoice.NewService(repo)
		got, err := svc.CreateBatch(context.Background(), session(access.RoleUploader), []invoice.CreateParams{good, good})

		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("Empty", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := invoice.NewService(invoice.NewMockRepository(ctrl))

		got, err := svc.CreateBatch(context.Background(), session(access.RoleUploader), nil)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestService_Update_DoesNotChangeStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := invoice.NewMockRepository(ctrl)

	id := uuid.New()
	stored := &invoice.Invoice{
		ID:            id,
		InvoiceNumber: "INV-1",
		Supplier:      "Acme",
		Amount:        500,
		ReceivedDate:  time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		Status:        invoice.StatusSentToFinance,
	}

	repo.EXPECT().GetInvoice(gomock.Any(), id).Return(stored, nil)
	repo.EXPECT().
		UpdateInvoice(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, inv *invoice.Invoice) error {
			assert.Equal(t, invoice.StatusSentToFinance, inv.Status)
			assert.Equal(t, "Acme Holdings", inv.Supplier)
			assert.Equal(t, "checked", inv.FinanceNotes)
			return nil
		})

	svc := invoice.NewService(repo)
	got, err := svc.Update(context.Background(), session(access.RoleEditor), id, invoice.UpdateParams{
		Supplier:     new("Acme Holdings"),
		FinanceNotes: new("checked"),
	})

	require.NoError(t, err)
	assert.Equal(t, invoice.StatusSentToFinance, got.Status)
}

func TestService_Update_RejectsBlankRequiredField(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := invoice.NewMockRepository(ctrl)

	id := uuid.New()
	repo.EXPECT().GetInvoice(gomock.Any(), id).Return(&invoice.Invoice{
		ID:            id,
		InvoiceNumber: "INV-1",
		Supplier:      "Acme",
		ReceivedDate:  time.Now(),
	}, nil)

	svc := invoice.NewService(repo)
	_, err := svc.Update(context.Background(), session(access.RoleEditor), id, invoice.UpdateParams{
		Supplier: new("   "),
	})

	assert.ErrorIs(t, err, invoice.ErrInvalidInput)
}

func TestService_Update_UploaderForbidden(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := invoice.NewService(invoice.NewMockRepository(ctrl))

	_, err := svc.Update(context.Background(), session(access.RoleUploader), uuid.New(), invoice.UpdateParams{})
	assert.ErrorIs(t, err, access.ErrForbidden)
}

func TestService_Transitions(t *testing.T) {
	paidOn := time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)

	type testCase struct {
		name    string
		role    access.Role
		from    invoice.Status
		act     func(svc *invoice.Service, sess access.Session, id uuid.UUID) (*invoice.Invoice, error)
		want    invoice.Status
		check   func(t *testing.T, inv *invoice.Invoice)
		wantErr error
	}

	tests := []testCase{
		{
			name: "AssignToSupplyChain",
			role: access.RoleEditor,
			from: invoice.StatusPending,
			act: func(svc *invoice.Service, sess access.Session, id uuid.UUID) (*invoice.Invoice, error) {
				return svc.AssignToSupplyChain(context.Background(), sess, id, "Dana", "check delivery")
			},
			want: invoice.StatusAssignedToSupplyChain,
			check: func(t *testing.T, inv *invoice.Invoice) {
				assert.Equal(t, "Dana", inv.AssignedTo)
				assert.Equal(t, "check delivery", inv.SupplyChainNotes)
			},
		},
		{
			name: "SendToFinance",
			role: access.RoleEditor,
			from: invoice.StatusAssignedToSupplyChain,
			act: func(svc *invoice.Service, sess access.Session, id uuid.UUID) (*invoice.Invoice, error) {
				return svc.SendToFinance(context.Background(), sess, id, "goods received")
			},
			want: invoice.StatusSentToFinance,
			check: func(t *testing.T, inv *invoice.Invoice) {
				assert.Equal(t, "goods received", inv.SupplyChainNotes)
			},
		},
		{
			name: "MarkPaid",
			role: access.RoleAdmin,
			from: invoice.StatusSentToFinance,
			act: func(svc *invoice.Service, sess access.Session, id uuid.UUID) (*invoice.Invoice, error) {
				return svc.MarkPaid(context.Background(), sess, id, paidOn, "wire 123")
			},
			want: invoice.StatusPaid,
			check: func(t *testing.T, inv *invoice.Invoice) {
				require.NotNil(t, inv.PaymentDate)
				assert.True(t, paidOn.Equal(*inv.PaymentDate))
				assert.Equal(t, "wire 123", inv.FinanceNotes)
			},
		},
		{
			name: "ReopenRejected",
			role: access.RoleEditor,
			from: invoice.StatusRejected,
			act: func(svc *invoice.Service, sess access.Session, id uuid.UUID) (*invoice.Invoice, error) {
				return svc.Reopen(context.Background(), sess, id)
			},
			want: invoice.StatusPending,
		},
		{
			name: "PaidIsTerminal",
			role: access.RoleSuperAdmin,
			from: invoice.StatusPaid,
			act: func(svc *invoice.Service, sess access.Session, id uuid.UUID) (*invoice.Invoice, error) {
				return svc.Reject(context.Background(), sess, id)
			},
			wantErr: invoice.ErrInvalidTransition,
		},
		{
			name: "PendingCannotBePaid",
			role: access.RoleAdmin,
			from: invoice.StatusPending,
			act: func(svc *invoice.Service, sess access.Session, id uuid.UUID) (*invoice.Invoice, error) {
				return svc.MarkPaid(context.Background(), sess, id, paidOn, "")
			},
			wantErr: invoice.ErrInvalidTransition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := invoice.NewMockRepository(ctrl)

			id := uuid.New()
			repo.EXPECT().GetInvoice(gomock.Any(), id).Return(&invoice.Invoice{
				ID:            id,
				InvoiceNumber: "INV-9",
				Supplier:      "Acme",
				ReceivedDate:  time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
				Status:        tt.from,
			}, nil)

			if tt.wantErr == nil {
				repo.EXPECT().TransitionInvoice(gomock.Any(), gomock.Any(), tt.from).Return(nil)
			}

			svc := invoice.NewService(repo)
			got, err := tt.act(svc, session(tt.role), id)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Status)

			if tt.check != nil {
				tt.check(t, got)
			}
		})
	}
}

func TestService_MarkPaid_LosesRaceToConcurrentTransition(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := invoice.NewMockRepository(ctrl)

	id := uuid.New()
	repo.EXPECT().GetInvoice(gomock.Any(), id).Return(&invoice.Invoice{
		ID:            id,
		InvoiceNumber: "INV-3",
		Supplier:      "Acme",
		ReceivedDate:  time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Status:        invoice.StatusSentToFinance,
	}, nil)
	repo.EXPECT().
		TransitionInvoice(gomock.Any(), gomock.Any(), invoice.StatusSentToFinance).
		Return(invoice.ErrInvalidTransition)

	svc := invoice.NewService(repo)
	_, err := svc.MarkPaid(context.Background(), session(access.RoleAdmin), id,
		time.Date(2024, 3, 30, 0, 0, 0, 0, time.UTC), "")

	assert.ErrorIs(t, err, invoice.ErrInvalidTransition)
}

func TestService_RequiredActionInputs(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := invoice.NewService(invoice.NewMockRepository(ctrl))
	sess := session(access.RoleAdmin)

	_, err := svc.MarkPaid(context.Background(), sess, uuid.New(), time.Time{}, "notes")
	assert.ErrorIs(t, err, invoice.ErrInvalidInput)

	_, err = svc.AssignToSupplyChain(context.Background(), sess, uuid.New(), "  ", "notes")
	assert.ErrorIs(t, err, invoice.ErrInvalidInput)
}

func TestService_Transition_UploaderForbidden(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := invoice.NewService(invoice.NewMockRepository(ctrl))

	_, err := svc.Approve(context.Background(), session(access.RoleUploader), uuid.New())
	assert.ErrorIs(t, err, access.ErrForbidden)
}

func TestService_Delete(t *testing.T) {
	tests := []struct {
		role    access.Role
		allowed bool
	}{
		{access.RoleEditor, false},
		{access.RoleLiteAdmin, false},
		{access.RoleAdmin, true},
		{access.RoleSuperAdmin, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := invoice.NewMockRepository(ctrl)

			id := uuid.New()
			if tt.allowed {
				repo.EXPECT().DeleteInvoice(gomock.Any(), id).Return(nil)
			}

			svc := invoice.NewService(repo)
			err := svc.Delete(context.Background(), session(tt.role), id)

			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, access.ErrForbidden)
			}
		})
	}
}

func TestService_ListOverdue(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := invoice.NewMockRepository(ctrl)

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	old := now.AddDate(0, 0, -25)

	repo.EXPECT().ListInvoices(gomock.Any(), invoice.ListFilter{}).Return([]*invoice.Invoice{
		{InvoiceNumber: "late", Status: invoice.StatusPending, ReceivedDate: old},
		{InvoiceNumber: "paid", Status: invoice.StatusPaid, ReceivedDate: old},
		{InvoiceNumber: "fresh", Status: invoice.StatusPending, ReceivedDate: now},
	}, nil)

	svc := invoice.NewService(repo)
	got, err := svc.ListOverdue(context.Background(), session(access.RoleViewer), now)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "late", got[0].InvoiceNumber)
}
