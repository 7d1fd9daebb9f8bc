package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	notifModel "reservation-backend/internal/domains/notification/model"
	"reservation-backend/internal/domains/payment/gateway"
	gwmock "reservation-backend/internal/domains/payment/gateway/mock"
	"reservation-backend/internal/domains/payment/model"
	reservationModel "reservation-backend/internal/domains/reservation/model"
	userModel "reservation-backend/internal/domains/user/model"
	"reservation-backend/pkg/database/dbtest"
)

type settleFixture struct {
	gw       *gwmock.PortOneMock
	payments *MockPaymentRepo
	rsv      *MockReservationRepo
	tx       *dbtest.TxManager
	identity *MockIdentity
	sink     *MockSink
	svc      SettlementService

	reservation *reservationModel.Reservation
	product     *reservationModel.Product
}

func newSettleFixture() *settleFixture {
	product := &reservationModel.Product{ID: uuid.New(), Title: "제주 요트 투어", Price: 50000, MaxParticipants: 4, IsActive: true}
	f := &settleFixture{
		gw:       gwmock.NewPortOneMock(),
		payments: new(MockPaymentRepo),
		rsv:      new(MockReservationRepo),
		tx:       &dbtest.TxManager{},
		identity: new(MockIdentity),
		sink:     new(MockSink),
		product:  product,
		reservation: &reservationModel.Reservation{
			ID:           uuid.New(),
			ProductID:    product.ID,
			UserID:       uuid.New(),
			Participants: 3,
			TotalAmount:  150000,
			Status:       reservationModel.StatusPending,
		},
	}
	f.svc = NewSettlementService(f.gw, f.payments, f.rsv, f.tx, f.identity, f.sink)
	return f
}

func (f *settleFixture) request(paymentID string, amount int64) model.SettlePaymentRequest {
	return model.SettlePaymentRequest{
		PaymentID:     paymentID,
		ReservationID: f.reservation.ID.String(),
		Order:         model.SettleOrder{Amount: amount, Name: f.product.Title},
	}
}

func (f *settleFixture) confirmed() *reservationModel.Reservation {
	r := *f.reservation
	r.Status = reservationModel.StatusConfirmed
	return &r
}

func (f *settleFixture) expectEnrichment() {
	f.rsv.On("FindProduct", mock.Anything, f.product.ID).Return(f.product, nil)
	f.identity.On("FindByID", mock.Anything, f.reservation.UserID).
		Return(&userModel.Profile{ID: f.reservation.UserID, FullName: "김철수", Email: "kim@example.com"}, nil)
}

func requireCode(t *testing.T, err error, code string) *model.PaymentError {
	t.Helper()
	var payErr *model.PaymentError
	require.ErrorAs(t, err, &payErr)
	assert.Equal(t, code, payErr.Code)
	return payErr
}

// =====================================================
// PAID
// =====================================================

func TestSettle_PaidConfirmsReservationAndRecordsPayment(t *testing.T) {
	f := newSettleFixture()
	paidAt := time.Date(2026, 10, 1, 9, 30, 0, 0, time.UTC)
	f.gw.Put(gateway.ProviderPayment{
		ID: "pay-A", Status: gateway.StatusPaid, TotalAmount: 150000,
		MethodType: "PaymentMethodCard", PaidAt: &paidAt,
	})

	f.payments.On("FindByTransactionIDWithTx", mock.Anything, mock.Anything, "pay-A").Return(nil, model.ErrPaymentNotFound)
	f.rsv.On("ConfirmWithTx", mock.Anything, mock.Anything, f.reservation.ID).Return(f.confirmed(), nil)
	f.payments.On("InsertWithTx", mock.Anything, mock.Anything, mock.MatchedBy(func(p *model.Payment) bool {
		return p.Amount == 150000 &&
			p.Status == model.StatusCompleted &&
			p.PaymentMethod == model.MethodCard &&
			p.TransactionID == "pay-A" &&
			p.ReservationID == f.reservation.ID &&
			p.PaidAt != nil && p.PaidAt.Equal(paidAt)
	})).Return(nil).Once()
	f.expectEnrichment()
	f.sink.On("NotifyPaymentCompleted", mock.Anything, mock.MatchedBy(func(e notifModel.ReservationEvent) bool {
		return e.CustomerName == "김철수" && e.ProductName == f.product.Title &&
			e.TotalAmount == 150000 && e.TransactionID == "pay-A"
	})).Return().Once()

	res, err := f.svc.Settle(context.Background(), f.request("pay-A", 150000))

	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.False(t, res.Replayed)
	require.NotNil(t, res.Reservation)
	assert.Equal(t, reservationModel.StatusConfirmed, res.Reservation.Status)
	require.NotNil(t, res.Reservation.User)
	assert.Equal(t, "kim@example.com", res.Reservation.User.Email)
	assert.Equal(t, int64(150000), res.Payment.Amount)
	assert.Equal(t, model.StatusCompleted, res.Payment.Status)
	assert.Equal(t, "예약이 확정되었습니다.", res.Message)
	assert.Equal(t, 1, f.tx.Commits)
	f.payments.AssertExpectations(t)
	f.sink.AssertExpectations(t)
}

func TestSettle_AmountMismatchWritesNothing(t *testing.T) {
	f := newSettleFixture()
	f.gw.Put(gateway.ProviderPayment{ID: "pay-B", Status: gateway.StatusPaid, TotalAmount: 120000})

	_, err := f.svc.Settle(context.Background(), f.request("pay-B", 150000))

	payErr := requireCode(t, err, model.ErrCodeAmountMismatch)
	assert.Equal(t, "결제 금액이 불일치합니다.", payErr.Message)
	assert.Equal(t, 0, f.tx.Begun)
	f.rsv.AssertNotCalled(t, "ConfirmWithTx", mock.Anything, mock.Anything, mock.Anything)
	f.payments.AssertNotCalled(t, "InsertWithTx", mock.Anything, mock.Anything, mock.Anything)
	f.sink.AssertNotCalled(t, "NotifyPaymentCompleted", mock.Anything, mock.Anything)
}

func TestSettle_IdentityFailureIsNotFatal(t *testing.T) {
	f := newSettleFixture()
	f.gw.Put(gateway.ProviderPayment{ID: "pay-A", Status: gateway.StatusPaid, TotalAmount: 150000})

	f.payments.On("FindByTransactionIDWithTx", mock.Anything, mock.Anything, "pay-A").Return(nil, model.ErrPaymentNotFound)
	f.rsv.On("ConfirmWithTx", mock.Anything, mock.Anything, f.reservation.ID).Return(f.confirmed(), nil)
	f.payments.On("InsertWithTx", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.rsv.On("FindProduct", mock.Anything, f.product.ID).Return(nil, reservationModel.ErrProductNotFound)
	f.identity.On("FindByID", mock.Anything, f.reservation.UserID).Return(nil, errors.New("identity provider down"))
	f.sink.On("NotifyPaymentCompleted", mock.Anything, mock.MatchedBy(func(e notifModel.ReservationEvent) bool {
		return e.CustomerName == reservationModel.DefaultCustomerName && e.ProductName == reservationModel.DefaultProductName
	})).Return()

	res, err := f.svc.Settle(context.Background(), f.request("pay-A", 150000))

	require.NoError(t, err)
	assert.Nil(t, res.Reservation.User)
	assert.Equal(t, model.MethodCard, res.Payment.PaymentMethod)
	require.NotNil(t, res.Payment.PaidAt)
	f.sink.AssertExpectations(t)
}

// =====================================================
// VIRTUAL ACCOUNT
// =====================================================

func TestSettle_VirtualAccountRecordsPendingPayment(t *testing.T) {
	f := newSettleFixture()
	f.gw.Put(gateway.ProviderPayment{
		ID: "pay-VA", Status: gateway.StatusVirtualAccountIssued, TotalAmount: 150000,
		MethodType: "PaymentMethodVirtualAccount",
	})

	f.payments.On("FindByTransactionIDWithTx", mock.Anything, mock.Anything, "pay-VA").Return(nil, model.ErrPaymentNotFound)
	f.payments.On("InsertWithTx", mock.Anything, mock.Anything, mock.MatchedBy(func(p *model.Payment) bool {
		return p.Status == model.StatusPending && p.PaymentMethod == model.MethodVirtualAccount &&
			p.Amount == 150000 && p.PaidAt == nil
	})).Return(nil).Once()

	res, err := f.svc.Settle(context.Background(), f.request("pay-VA", 150000))

	require.NoError(t, err)
	assert.Equal(t, model.SettleStatusVirtualAccountIssued, res.Status)
	assert.Nil(t, res.Reservation)
	assert.Equal(t, model.StatusPending, res.Payment.Status)
	f.rsv.AssertNotCalled(t, "ConfirmWithTx", mock.Anything, mock.Anything, mock.Anything)
	f.sink.AssertNotCalled(t, "NotifyPaymentCompleted", mock.Anything, mock.Anything)
}

func TestSettle_VirtualAccountReplayReturnsPriorRow(t *testing.T) {
	f := newSettleFixture()
	f.gw.Put(gateway.ProviderPayment{ID: "pay-VA", Status: gateway.StatusVirtualAccountIssued, TotalAmount: 150000})
	prior := &model.Payment{ID: uuid.New(), ReservationID: f.reservation.ID, TransactionID: "pay-VA", Status: model.StatusPending, Amount: 150000}
	f.payments.On("FindByTransactionIDWithTx", mock.Anything, mock.Anything, "pay-VA").Return(prior, nil)

	res, err := f.svc.Settle(context.Background(), f.request("pay-VA", 150000))

	require.NoError(t, err)
	assert.True(t, res.Replayed)
	assert.Equal(t, prior, res.Payment)
	f.payments.AssertNotCalled(t, "InsertWithTx", mock.Anything, mock.Anything, mock.Anything)
}

// =====================================================
// IDEMPOTENCY
// =====================================================

func TestSettle_PaidReplayReturnsPriorResultWithoutWrites(t *testing.T) {
	f := newSettleFixture()
	f.gw.Put(gateway.ProviderPayment{ID: "pay-A", Status: gateway.StatusPaid, TotalAmount: 150000})
	prior := &model.Payment{ID: uuid.New(), ReservationID: f.reservation.ID, TransactionID: "pay-A", Status: model.StatusCompleted, Amount: 150000}

	f.payments.On("FindByTransactionIDWithTx", mock.Anything, mock.Anything, "pay-A").Return(prior, nil)
	f.rsv.On("FindByIDWithTx", mock.Anything, mock.Anything, f.reservation.ID).Return(f.confirmed(), nil)
	f.expectEnrichment()

	res, err := f.svc.Settle(context.Background(), f.request("pay-A", 150000))

	require.NoError(t, err)
	assert.True(t, res.Replayed)
	assert.Equal(t, prior.ID, res.Payment.ID)
	assert.Equal(t, reservationModel.StatusConfirmed, res.Reservation.Status)
	f.rsv.AssertNotCalled(t, "ConfirmWithTx", mock.Anything, mock.Anything, mock.Anything)
	f.payments.AssertNotCalled(t, "InsertWithTx", mock.Anything, mock.Anything, mock.Anything)
	f.sink.AssertNotCalled(t, "NotifyPaymentCompleted", mock.Anything, mock.Anything)
}

func TestSettle_PaidUpgradesPendingVirtualAccountRow(t *testing.T) {
	f := newSettleFixture()
	paidAt := time.Date(2026, 10, 3, 12, 0, 0, 0, time.UTC)
	f.gw.Put(gateway.ProviderPayment{
		ID: "pay-VA", Status: gateway.StatusPaid, TotalAmount: 150000,
		MethodType: "PaymentMethodVirtualAccount", PaidAt: &paidAt,
	})
	pending := &model.Payment{ID: uuid.New(), ReservationID: f.reservation.ID, TransactionID: "pay-VA", Status: model.StatusPending, Amount: 150000}
	completed := *pending
	completed.Status = model.StatusCompleted
	completed.PaidAt = &paidAt

	f.payments.On("FindByTransactionIDWithTx", mock.Anything, mock.Anything, "pay-VA").Return(pending, nil)
	f.rsv.On("ConfirmWithTx", mock.Anything, mock.Anything, f.reservation.ID).Return(f.confirmed(), nil)
	f.payments.On("CompleteWithTx", mock.Anything, mock.Anything, pending.ID, model.MethodVirtualAccount, paidAt).Return(&completed, nil)
	f.expectEnrichment()
	f.sink.On("NotifyPaymentCompleted", mock.Anything, mock.Anything).Return().Once()

	res, err := f.svc.Settle(context.Background(), f.request("pay-VA", 150000))

	require.NoError(t, err)
	assert.False(t, res.Replayed)
	assert.Equal(t, model.StatusCompleted, res.Payment.Status)
	f.payments.AssertNotCalled(t, "InsertWithTx", mock.Anything, mock.Anything, mock.Anything)
	f.sink.AssertExpectations(t)
}

func TestSettle_ConcurrentInsertResolvesToWinner(t *testing.T) {
	f := newSettleFixture()
	f.gw.Put(gateway.ProviderPayment{ID: "pay-A", Status: gateway.StatusPaid, TotalAmount: 150000})
	winner := &model.Payment{ID: uuid.New(), ReservationID: f.reservation.ID, TransactionID: "pay-A", Status: model.StatusCompleted, Amount: 150000}

	f.payments.On("FindByTransactionIDWithTx", mock.Anything, mock.Anything, "pay-A").Return(nil, model.ErrPaymentNotFound).Once()
	f.rsv.On("ConfirmWithTx", mock.Anything, mock.Anything, f.reservation.ID).Return(f.confirmed(), nil).Once()
	f.payments.On("InsertWithTx", mock.Anything, mock.Anything, mock.Anything).Return(model.ErrDuplicateTransaction).Once()
	f.payments.On("FindByTransactionIDWithTx", mock.Anything, mock.Anything, "pay-A").Return(winner, nil).Once()
	f.rsv.On("FindByIDWithTx", mock.Anything, mock.Anything, f.reservation.ID).Return(f.confirmed(), nil)
	f.expectEnrichment()

	res, err := f.svc.Settle(context.Background(), f.request("pay-A", 150000))

	require.NoError(t, err)
	assert.True(t, res.Replayed)
	assert.Equal(t, winner.ID, res.Payment.ID)
	assert.Equal(t, 2, f.tx.Begun)
	assert.Equal(t, 1, f.tx.Rollbacks)
	assert.Equal(t, 1, f.tx.Commits)
	f.sink.AssertNotCalled(t, "NotifyPaymentCompleted", mock.Anything, mock.Anything)
}

func TestSettle_TransactionBoundToOtherReservation(t *testing.T) {
	f := newSettleFixture()
	f.gw.Put(gateway.ProviderPayment{ID: "pay-A", Status: gateway.StatusPaid, TotalAmount: 150000})
	other := &model.Payment{ID: uuid.New(), ReservationID: uuid.New(), TransactionID: "pay-A", Status: model.StatusCompleted}
	f.payments.On("FindByTransactionIDWithTx", mock.Anything, mock.Anything, "pay-A").Return(other, nil)

	_, err := f.svc.Settle(context.Background(), f.request("pay-A", 150000))

	requireCode(t, err, model.ErrCodeTransactionMismatch)
	assert.Equal(t, 1, f.tx.Rollbacks)
}

// =====================================================
// FAILURES
// =====================================================

func TestSettle_UnsupportedStatuses(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantMsg string
	}{
		{"cancelled", "CANCELLED", "처리할 수 없는 결제 상태입니다: CANCELLED"},
		{"failed", "FAILED", "처리할 수 없는 결제 상태입니다: FAILED"},
		{"ready", "READY", "처리할 수 없는 결제 상태입니다: READY"},
		{"unrecognized", "BRAND_NEW_STATUS", "처리할 수 없는 결제 상태입니다: BRAND_NEW_STATUS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSettleFixture()
			f.gw.Put(gateway.ProviderPayment{
				ID: "pay-X", Status: gateway.ParsePaymentStatus(tt.raw), RawStatus: tt.raw, TotalAmount: 150000,
			})

			_, err := f.svc.Settle(context.Background(), f.request("pay-X", 150000))

			payErr := requireCode(t, err, model.ErrCodeUnsupportedStatus)
			assert.Equal(t, tt.wantMsg, payErr.Message)
			assert.Equal(t, 0, f.tx.Begun)
		})
	}
}

func TestSettle_NotConfiguredFailsClosed(t *testing.T) {
	f := newSettleFixture()
	f.gw.SetConfigured(false)

	_, err := f.svc.Settle(context.Background(), f.request("pay-A", 150000))

	requireCode(t, err, model.ErrCodeConfiguration)
	assert.ErrorIs(t, err, gateway.ErrNotConfigured)
	assert.Equal(t, 0, f.tx.Begun)
}

func TestSettle_ProviderErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"unavailable", &gateway.ProviderError{Operation: "fetch", StatusCode: 502, Err: gateway.ErrUnavailable}, model.ErrCodeProviderUnavailable},
		{"transport", fmt.Errorf("%w: dial tcp: timeout", gateway.ErrUnavailable), model.ErrCodeProviderUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSettleFixture()
			f.gw.SetFetchError(tt.err)

			_, err := f.svc.Settle(context.Background(), f.request("pay-A", 150000))

			requireCode(t, err, tt.wantCode)
			assert.Equal(t, 0, f.tx.Begun)
		})
	}
}

func TestSettle_UnknownProviderPayment(t *testing.T) {
	f := newSettleFixture()

	_, err := f.svc.Settle(context.Background(), f.request("missing", 150000))

	requireCode(t, err, model.ErrCodeProviderPaymentNotFound)
}

func TestSettle_InsertFailureRollsBackConfirm(t *testing.T) {
	f := newSettleFixture()
	f.gw.Put(gateway.ProviderPayment{ID: "pay-A", Status: gateway.StatusPaid, TotalAmount: 150000})

	f.payments.On("FindByTransactionIDWithTx", mock.Anything, mock.Anything, "pay-A").Return(nil, model.ErrPaymentNotFound)
	f.rsv.On("ConfirmWithTx", mock.Anything, mock.Anything, f.reservation.ID).Return(f.confirmed(), nil)
	f.payments.On("InsertWithTx", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("disk full"))

	_, err := f.svc.Settle(context.Background(), f.request("pay-A", 150000))

	requireCode(t, err, model.ErrCodeStore)
	assert.Equal(t, 0, f.tx.Commits)
	assert.Equal(t, 1, f.tx.Rollbacks)
	f.sink.AssertNotCalled(t, "NotifyPaymentCompleted", mock.Anything, mock.Anything)
}

func TestSettle_ReservationErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"not found", reservationModel.ErrReservationNotFound, model.ErrCodeReservationNotFound},
		{"cancelled reservation", fmt.Errorf("%w: cancelled -> confirmed", reservationModel.ErrInvalidTransition), model.ErrCodeReservationNotConfirmable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSettleFixture()
			f.gw.Put(gateway.ProviderPayment{ID: "pay-A", Status: gateway.StatusPaid, TotalAmount: 150000})
			f.payments.On("FindByTransactionIDWithTx", mock.Anything, mock.Anything, "pay-A").Return(nil, model.ErrPaymentNotFound)
			f.rsv.On("ConfirmWithTx", mock.Anything, mock.Anything, f.reservation.ID).Return(nil, tt.err)

			_, err := f.svc.Settle(context.Background(), f.request("pay-A", 150000))

			requireCode(t, err, tt.wantCode)
			f.payments.AssertNotCalled(t, "InsertWithTx", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestSettle_MissingFields(t *testing.T) {
	f := newSettleFixture()

	cases := []model.SettlePaymentRequest{
		{ReservationID: f.reservation.ID.String(), Order: model.SettleOrder{Amount: 1000}},
		{PaymentID: "pay-A", Order: model.SettleOrder{Amount: 1000}},
		{PaymentID: "pay-A", ReservationID: f.reservation.ID.String()},
		{PaymentID: "pay-A", ReservationID: "not-a-uuid", Order: model.SettleOrder{Amount: 1000}},
	}
	for _, req := range cases {
		_, err := f.svc.Settle(context.Background(), req)
		requireCode(t, err, model.ErrCodeInvalidRequest)
	}
	assert.Empty(t, f.gw.Cancels())
	assert.Equal(t, 0, f.tx.Begun)
}

// =====================================================
// VIRTUAL ACCOUNT SYNC
// =====================================================

func TestSyncVirtualAccounts(t *testing.T) {
	f := newSettleFixture()
	paidRow := model.Payment{ID: uuid.New(), ReservationID: f.reservation.ID, TransactionID: "va-paid", Status: model.StatusPending, Amount: 150000}
	cancelledRow := model.Payment{ID: uuid.New(), ReservationID: uuid.New(), TransactionID: "va-cancelled", Status: model.StatusPending, Amount: 80000}
	waitingRow := model.Payment{ID: uuid.New(), ReservationID: uuid.New(), TransactionID: "va-waiting", Status: model.StatusPending, Amount: 50000}

	f.gw.Put(gateway.ProviderPayment{ID: "va-paid", Status: gateway.StatusPaid, TotalAmount: 150000, MethodType: "PaymentMethodVirtualAccount"})
	f.gw.Put(gateway.ProviderPayment{ID: "va-cancelled", Status: gateway.StatusCancelled, TotalAmount: 80000})
	f.gw.Put(gateway.ProviderPayment{ID: "va-waiting", Status: gateway.StatusVirtualAccountIssued, TotalAmount: 50000})

	f.payments.On("ListPendingVirtualAccounts", mock.Anything, time.Minute, 50).
		Return([]model.Payment{paidRow, cancelledRow, waitingRow}, nil)

	completed := paidRow
	completed.Status = model.StatusCompleted
	f.payments.On("FindByTransactionIDWithTx", mock.Anything, mock.Anything, "va-paid").Return(&paidRow, nil)
	f.rsv.On("ConfirmWithTx", mock.Anything, mock.Anything, f.reservation.ID).Return(f.confirmed(), nil)
	f.payments.On("CompleteWithTx", mock.Anything, mock.Anything, paidRow.ID, model.MethodVirtualAccount, mock.AnythingOfType("time.Time")).Return(&completed, nil)
	f.expectEnrichment()
	f.sink.On("NotifyPaymentCompleted", mock.Anything, mock.Anything).Return().Once()
	f.payments.On("MarkFailed", mock.Anything, cancelledRow.ID).Return(nil)

	summary, err := f.svc.SyncVirtualAccounts(context.Background(), 50)

	require.NoError(t, err)
	assert.Equal(t, &SyncSummary{Checked: 3, Settled: 1, Failed: 1, Skipped: 1}, summary)
	f.payments.AssertExpectations(t)
	f.sink.AssertExpectations(t)
}
