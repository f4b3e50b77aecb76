package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationsFor_PaidEventOnceAndIdempotent(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()
	owner := uuid.New()

	cart, err := svc.CreateShare(ctx, &owner, "", threeItemSnapshot(), "", 7)
	require.NoError(t, err)

	payer := uuid.New()
	_, err = svc.CompletePayment(ctx, cart.ShareToken, payer, uuid.New())
	require.NoError(t, err)

	feed, err := svc.NotificationsFor(ctx, owner)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, NotificationPaid, feed[0].Category)
	assert.Equal(t, cart.ID, feed[0].CartID)
	require.NotNil(t, feed[0].PaidByID)
	assert.Equal(t, payer, *feed[0].PaidByID)

	// polling again without new state yields the same single event
	again, err := svc.NotificationsFor(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, feed, again)
}

func TestNotificationsFor_OldPaidEventsAgeOut(t *testing.T) {
	t.Parallel()

	svc, clk := newTestService(t)
	ctx := context.Background()
	owner := uuid.New()

	cart, err := svc.CreateShare(ctx, &owner, "", threeItemSnapshot(), "", 7)
	require.NoError(t, err)
	_, err = svc.CompletePayment(ctx, cart.ShareToken, uuid.New(), uuid.New())
	require.NoError(t, err)

	clk.Advance(25 * time.Hour)

	feed, err := svc.NotificationsFor(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, feed)
}

func TestNotificationsFor_ExpiredEvent(t *testing.T) {
	t.Parallel()

	svc, clk := newTestService(t)
	ctx := context.Background()
	owner := uuid.New()

	cart, err := svc.CreateShare(ctx, &owner, "", threeItemSnapshot(), "", 1)
	require.NoError(t, err)

	clk.Advance(26 * time.Hour)

	_, err = svc.Resolve(ctx, cart.ShareToken)
	require.ErrorIs(t, err, ErrExpired)

	feed, err := svc.NotificationsFor(ctx, owner)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, NotificationExpired, feed[0].Category)
	assert.Equal(t, cart.ID, feed[0].CartID)

	clk.Advance(25 * time.Hour)

	feed, err = svc.NotificationsFor(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, feed)
}

func TestNotificationsFor_HeavyAccess(t *testing.T) {
	t.Parallel()

	svc, clk := newTestService(t)
	ctx := context.Background()
	owner := uuid.New()

	cart, err := svc.CreateShare(ctx, &owner, "", threeItemSnapshot(), "", 7)
	require.NoError(t, err)

	// at the threshold: no event yet
	for i := 0; i < 5; i++ {
		_, err := svc.Resolve(ctx, cart.ShareToken)
		require.NoError(t, err)
	}
	feed, err := svc.NotificationsFor(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, feed)

	// one more read crosses it
	_, err = svc.Resolve(ctx, cart.ShareToken)
	require.NoError(t, err)

	feed, err = svc.NotificationsFor(ctx, owner)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, NotificationHeavyAccess, feed[0].Category)
	assert.Equal(t, int64(6), feed[0].AccessCount)

	// signal fades once the last access falls out of the window
	clk.Advance(2 * time.Hour)
	feed, err = svc.NotificationsFor(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, feed)
}

func TestNotificationsFor_SortedNewestFirst(t *testing.T) {
	t.Parallel()

	svc, clk := newTestService(t)
	ctx := context.Background()
	owner := uuid.New()

	first, err := svc.CreateShare(ctx, &owner, "", threeItemSnapshot(), "", 7)
	require.NoError(t, err)
	_, err = svc.CompletePayment(ctx, first.ShareToken, uuid.New(), uuid.New())
	require.NoError(t, err)

	clk.Advance(time.Hour)

	second, err := svc.CreateShare(ctx, &owner, "", threeItemSnapshot(), "", 7)
	require.NoError(t, err)
	_, err = svc.CompletePayment(ctx, second.ShareToken, uuid.New(), uuid.New())
	require.NoError(t, err)

	feed, err := svc.NotificationsFor(ctx, owner)
	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.Equal(t, second.ID, feed[0].CartID)
	assert.Equal(t, first.ID, feed[1].CartID)
	assert.True(t, feed[0].OccurredAt.After(feed[1].OccurredAt))
}

func TestNotificationsFor_OtherOwnersInvisible(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()
	owner := uuid.New()
	other := uuid.New()

	cart, err := svc.CreateShare(ctx, &owner, "", threeItemSnapshot(), "", 7)
	require.NoError(t, err)
	_, err = svc.CompletePayment(ctx, cart.ShareToken, uuid.New(), uuid.New())
	require.NoError(t, err)

	feed, err := svc.NotificationsFor(ctx, other)
	require.NoError(t, err)
	assert.Empty(t, feed)
}
