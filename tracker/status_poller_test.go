package tracker

import (
	"context"
	"testing"
	"time"

	core "github.com/DomeLiquid/ramptrack"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusPollerStopsWhenSettled(t *testing.T) {
	svc := &fakeService{getOrder: func(n int) (core.OrderState, error) {
		if n < 3 {
			return createdOrder(core.EVMChain(1), true), nil
		}
		return lockedOrder(core.EVMChain(1), time.Now()), nil
	}}
	tr, rec := newTracker(t, svc)

	tr.Start(context.Background(), createdOrder(core.EVMChain(1), true))
	require.Eventually(t, func() bool { return rec.loadingCleared() == 1 }, waitFor, pollInterval)

	time.Sleep(10 * fastTimings().StatusPollInterval)
	assert.Equal(t, 3, svc.orderFetches())
	assert.Equal(t, 1, rec.loadingCleared(), "loading is cleared exactly once")
	assert.Equal(t, 1, rec.loadingSet(MsgProcessing))

	refresh, _, _ := rec.counts()
	assert.Equal(t, 1, refresh)
	assert.Equal(t, core.OrderKindLocked, tr.State().Kind())
	assert.False(t, tr.Loading())
}

func TestStatusPollerStopsOnFetchError(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{
			name: "domain error",
			err:  core.NewRampError(core.RampErrorOrder, "OrderNotFound", ""),
		},
		{
			name: "transport error",
			err:  errors.New("connection refused"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{getOrder: func(int) (core.OrderState, error) { return nil, tt.err }}
			tr, rec := newTracker(t, svc)

			order := createdOrder(core.EVMChain(1), true)
			tr.Start(context.Background(), order)
			require.Eventually(t, func() bool { return rec.loadingCleared() == 1 }, waitFor, pollInterval)

			time.Sleep(10 * fastTimings().StatusPollInterval)
			assert.Equal(t, 1, svc.orderFetches())
			refresh, _, _ := rec.counts()
			assert.Equal(t, 1, refresh)
			assert.Equal(t, order, tr.State(), "snapshot is kept on failure")
		})
	}
}

func TestStatusPollerNotStartedForStableOrder(t *testing.T) {
	svc := &fakeService{}
	tr, rec := newTracker(t, svc)

	tr.Start(context.Background(), createdOrder(core.EVMChain(1), false))
	time.Sleep(10 * fastTimings().StatusPollInterval)

	assert.Equal(t, 0, svc.orderFetches())
	assert.Equal(t, 0, rec.loadingSet(MsgProcessing))
}

func TestStatusPollerStartsOnProcessingSnapshot(t *testing.T) {
	svc := &fakeService{getOrder: func(int) (core.OrderState, error) {
		return core.CancelledOrder{OrderId: testOrderId}, nil
	}}
	tr, rec := newTracker(t, svc)

	tr.Start(context.Background(), createdOrder(core.EVMChain(1), false))
	tr.Apply(createdOrder(core.EVMChain(1), true))

	require.Eventually(t, func() bool { return rec.loadingCleared() == 1 }, waitFor, pollInterval)
	assert.Equal(t, core.CancelledOrder{OrderId: testOrderId}, tr.State())
}
