package tracker

import (
	"context"
	"time"

	core "github.com/DomeLiquid/ramptrack"
)

// restartCountdownLocked drops the countdown of the previous snapshot and
// starts a fresh one, with a fresh recheck budget, for a locked order.
func (t *Tracker) restartCountdownLocked() {
	if t.countdownCancel != nil {
		t.countdownCancel()
		t.countdownCancel = nil
	}

	locked, ok := t.state.(core.LockedOrder)
	if !ok {
		return
	}
	ctx, cancel := context.WithCancel(t.ctx)
	t.countdownCancel = cancel

	t.goLocked(ctx, func(ctx context.Context) {
		defer cancel()
		t.runCountdown(ctx, locked)
	})
}

func (t *Tracker) runCountdown(ctx context.Context, locked core.LockedOrder) {
	ticker := t.clk.Ticker(t.timings.CountdownTick)
	defer ticker.Stop()

	rechecks := 0
	for {
		remaining := locked.LockRemaining(t.clk.Now(), t.timings.LockDuration)
		expired := remaining <= 0

		t.mu.Lock()
		if ctx.Err() != nil {
			t.mu.Unlock()
			return
		}
		if expired {
			t.listener.RemainingTimeChanged(nil)
		} else {
			t.listener.RemainingTimeChanged(&remaining)
		}
		t.mu.Unlock()

		if expired && !locked.PaymentDone && rechecks < t.timings.LockRecheckMax {
			rechecks++
			t.log.Debug().Int("recheck", rechecks).Msg("lock expired, rechecking order")
			// the recheck runs inline so only one is ever pending
			if !t.recheckLock(ctx) {
				return
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (t *Tracker) recheckLock(ctx context.Context) bool {
	if !t.sleep(ctx, t.timings.LockRecheckDelay) {
		return false
	}
	t.refetchOrder(ctx)

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return false
	}
	t.listener.RefetchUser()
	return true
}

// RemainingLockTime is the lock time left on the displayed order, nil when
// it is not locked or the lock expired.
func (t *Tracker) RemainingLockTime() *time.Duration {
	t.mu.Lock()
	locked, ok := t.state.(core.LockedOrder)
	t.mu.Unlock()
	if !ok {
		return nil
	}
	remaining := locked.LockRemaining(t.clk.Now(), t.timings.LockDuration)
	if remaining <= 0 {
		return nil
	}
	return &remaining
}
