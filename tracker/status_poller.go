package tracker

import (
	"context"

	core "github.com/DomeLiquid/ramptrack"
)

// startStatusPollerLocked polls the order while a blockchain operation is in
// flight for it. Only one poller runs per tracker.
func (t *Tracker) startStatusPollerLocked() {
	if t.statusCancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(t.ctx)
	t.statusCancel = cancel
	t.setLoadingLocked(true, MsgProcessing)

	t.goLocked(ctx, func(ctx context.Context) {
		defer cancel()
		t.pollStatus(ctx)
	})
}

func (t *Tracker) pollStatus(ctx context.Context) {
	ticker := t.clk.Ticker(t.timings.StatusPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		state, err := t.svc.GetOrder(ctx, t.orderId)
		if ctx.Err() != nil {
			return
		}
		if !t.handleStatus(state, err) {
			return
		}
	}
}

// handleStatus applies one poll result and reports whether to keep polling.
func (t *Tracker) handleStatus(state core.OrderState, err error) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return false
	}

	if err != nil {
		t.log.Warn().Err(err).Msg("status poll failed")
		t.statusCancel = nil
		t.listener.RefreshOrders()
		t.setLoadingLocked(false, "")
		return false
	}

	t.applyLocked(state)
	if core.IsProcessing(state) {
		return true
	}

	t.log.Debug().Str("state", state.Kind().String()).Msg("order settled")
	t.statusCancel = nil
	t.setLoadingLocked(false, "")
	t.listener.RefreshOrders()
	return false
}
