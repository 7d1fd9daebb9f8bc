package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"reservation-backend/internal/domains/notification/model"
	userModel "reservation-backend/internal/domains/user/model"
	"reservation-backend/internal/shared"
)

// ================================================
// ROSTER
// ================================================

func TestCachedRoster_CacheHit(t *testing.T) {
	cached := []uuid.UUID{uuid.New()}
	c := new(MockCache)
	dir := new(MockDirectory)

	c.On("Get", mock.Anything, rosterCacheKey, mock.Anything).
		Return(true, nil, func(dest interface{}) { *(dest.(*[]uuid.UUID)) = cached })

	ids, err := NewCachedRoster(dir, c, time.Minute).AdminIDs(context.Background())

	require.NoError(t, err)
	assert.Equal(t, cached, ids)
	dir.AssertNotCalled(t, "ListByRoles", mock.Anything, mock.Anything)
}

func TestCachedRoster_MissQueriesDirectoryAndCaches(t *testing.T) {
	adminID := uuid.New()
	c := new(MockCache)
	dir := new(MockDirectory)

	c.On("Get", mock.Anything, rosterCacheKey, mock.Anything).Return(false, nil, nil)
	dir.On("ListByRoles", mock.Anything, []string{shared.RoleAdmin}).
		Return([]userModel.Profile{{ID: adminID, Role: shared.RoleAdmin, IsActive: true}}, nil)
	c.On("Set", mock.Anything, rosterCacheKey, []uuid.UUID{adminID}, 5*time.Minute).Return(nil)

	ids, err := NewCachedRoster(dir, c, 5*time.Minute).AdminIDs(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{adminID}, ids)
	c.AssertExpectations(t)
}

func TestCachedRoster_EmptyRosterNotCached(t *testing.T) {
	c := new(MockCache)
	dir := new(MockDirectory)

	c.On("Get", mock.Anything, rosterCacheKey, mock.Anything).Return(false, errors.New("redis down"), nil)
	dir.On("ListByRoles", mock.Anything, mock.Anything).Return([]userModel.Profile{}, nil)

	ids, err := NewCachedRoster(dir, c, time.Minute).AdminIDs(context.Background())

	require.NoError(t, err)
	assert.Empty(t, ids)
	c.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// ================================================
// DELIVERY
// ================================================

func TestDeliver_PersistsAndPublishes(t *testing.T) {
	admins := []uuid.UUID{uuid.New(), uuid.New()}
	roster := new(MockRoster)
	repo := new(MockNotificationRepo)
	pub := new(MockPublisher)

	roster.On("AdminIDs", mock.Anything).Return(admins, nil)
	repo.On("BulkCreate", mock.Anything, mock.MatchedBy(func(ns []model.Notification) bool {
		return len(ns) == 2 && ns[0].Type == model.TypePaymentCompleted
	})).Return(2, nil)
	pub.On("Publish", mock.Anything, shared.EventReservationConfirmed, mock.Anything).Return(nil)

	n, err := NewDeliveryService(repo, roster, pub).
		Deliver(context.Background(), model.TypePaymentCompleted, model.ReservationEvent{ReservationID: uuid.New()})

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	pub.AssertExpectations(t)
}

func TestDeliver_RefundCancellationPublishesBothEvents(t *testing.T) {
	roster := new(MockRoster)
	repo := new(MockNotificationRepo)
	pub := new(MockPublisher)

	roster.On("AdminIDs", mock.Anything).Return([]uuid.UUID{uuid.New()}, nil)
	repo.On("BulkCreate", mock.Anything, mock.Anything).Return(1, nil)
	pub.On("Publish", mock.Anything, shared.EventReservationCancelled, mock.Anything).Return(nil)
	pub.On("Publish", mock.Anything, shared.EventPaymentRefunded, mock.Anything).Return(errors.New("broker down"))

	n, err := NewDeliveryService(repo, roster, pub).
		Deliver(context.Background(), model.TypeCancellation, model.ReservationEvent{RefundAmount: 300000})

	require.NoError(t, err, "broker failures are not delivery failures")
	assert.Equal(t, 1, n)
	pub.AssertExpectations(t)
}

func TestDeliver_NoAdmins(t *testing.T) {
	roster := new(MockRoster)
	repo := new(MockNotificationRepo)

	roster.On("AdminIDs", mock.Anything).Return([]uuid.UUID{}, nil)

	_, err := NewDeliveryService(repo, roster, new(MockPublisher)).
		Deliver(context.Background(), model.TypeNewReservation, model.ReservationEvent{})

	assert.ErrorIs(t, err, model.ErrNoAdmins)
	repo.AssertNotCalled(t, "BulkCreate", mock.Anything, mock.Anything)
}

func TestDeliver_StoreFailureIsReturned(t *testing.T) {
	roster := new(MockRoster)
	repo := new(MockNotificationRepo)
	pub := new(MockPublisher)

	roster.On("AdminIDs", mock.Anything).Return([]uuid.UUID{uuid.New()}, nil)
	repo.On("BulkCreate", mock.Anything, mock.Anything).Return(0, errors.New("db down"))

	_, err := NewDeliveryService(repo, roster, pub).
		Deliver(context.Background(), model.TypePaymentCompleted, model.ReservationEvent{})

	assert.Error(t, err)
	pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

// ================================================
// SINK
// ================================================

func TestQueueSink_EnqueuesWithTaskType(t *testing.T) {
	enq := new(MockEnqueuer)
	enq.On("Enqueue", mock.Anything, shared.TypeNotifyPaymentCompleted, mock.MatchedBy(func(e model.ReservationEvent) bool {
		return e.TransactionID == "pay-1" && !e.OccurredAt.IsZero()
	})).Return(nil)

	NewQueueSink(enq, time.Second).NotifyPaymentCompleted(context.Background(), model.ReservationEvent{TransactionID: "pay-1"})

	enq.AssertExpectations(t)
}

func TestQueueSink_FailureIsSwallowed(t *testing.T) {
	enq := new(MockEnqueuer)
	enq.On("Enqueue", mock.Anything, shared.TypeNotifyReservationCancelled, mock.Anything).Return(errors.New("redis down"))

	assert.NotPanics(t, func() {
		NewQueueSink(enq, time.Second).NotifyReservationCancelled(context.Background(), model.ReservationEvent{})
	})
}

func TestQueueSink_IgnoresCancelledRequestContext(t *testing.T) {
	enq := new(MockEnqueuer)
	enq.On("Enqueue", mock.MatchedBy(func(ctx context.Context) bool { return ctx.Err() == nil }),
		shared.TypeNotifyNewReservation, mock.Anything).Return(nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	NewQueueSink(enq, time.Second).NotifyNewReservation(ctx, model.ReservationEvent{})

	enq.AssertExpectations(t)
}
