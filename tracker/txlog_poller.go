package tracker

import (
	"context"

	core "github.com/DomeLiquid/ramptrack"
)

// startTxLogPollerLocked follows the vault transaction of a chain-backed
// action. A new poll replaces the one in flight.
func (t *Tracker) startTxLogPollerLocked(userId uint64, token string) {
	if t.txLogCancel != nil {
		t.txLogCancel()
	}
	ctx, cancel := context.WithCancel(t.ctx)
	t.txLogCancel = cancel

	session := &core.UserSession{UserId: userId, Token: token}
	t.goLocked(ctx, func(ctx context.Context) {
		defer cancel()
		t.pollTxLog(ctx, session)
	})
}

func (t *Tracker) pollTxLog(ctx context.Context, session *core.UserSession) {
	attempts := 0
	for {
		if attempts >= t.timings.TxLogMaxAttempts {
			t.log.Warn().Int("attempts", attempts).Msg("transaction log still pending")
			t.finishTxLog(ctx, MsgNetworkBusy)
			return
		}
		attempts++

		txLog, err := t.svc.GetOrderTxLog(ctx, t.orderId, session)
		if ctx.Err() != nil {
			return
		}

		if err != nil {
			if _, ok := core.AsRampError(err); ok {
				t.log.Warn().Err(err).Msg("transaction log rejected")
				t.mu.Lock()
				t.listener.TxHashChanged("")
				t.mu.Unlock()
				t.finishTxLog(ctx, MsgTxFailed)
				return
			}
			t.log.Error().Err(err).Msg("poll transaction log")
			t.finishTxLog(ctx, MsgTxStatusUnknown)
			return
		}

		if txLog != nil && txLog.Status.Type.IsTerminal() {
			t.handleTerminalTxLog(ctx, session, txLog)
			return
		}

		if !t.sleep(ctx, t.timings.TxLogPollDelay) {
			return
		}
	}
}

func (t *Tracker) handleTerminalTxLog(ctx context.Context, session *core.UserSession, txLog *core.TransactionLog) {
	log := t.log.Info().Str("action", txLog.Action.String()).Str("status", txLog.Status.Type.String())

	switch txLog.Status.Type {
	case core.TransactionStatusConfirmed:
		log.Msg("transaction confirmed")
		var route string
		message := MsgTxSuccess
		switch txLog.Action.Type {
		case core.TransactionActionCommit:
			message, route = msgCommitted(t.orderId), RouteOnramperOrders(session.UserId)
		case core.TransactionActionRelease:
			message, route = MsgReleased, RouteCompleted
		case core.TransactionActionCancel:
			message, route = msgCancelled(t.orderId), RouteCancelled
		}

		t.mu.Lock()
		if t.closed {
			t.mu.Unlock()
			return
		}
		t.setLoadingLocked(true, message)
		if txLog.Status.Receipt != nil {
			t.listener.TxHashChanged(txLog.Status.Receipt.Hash().Hex())
		}
		t.mu.Unlock()

		if !t.sleep(ctx, t.timings.ConfirmSettleDelay) {
			return
		}
		t.settle(ctx, route)
		t.clearTxLogPoller(ctx)
	case core.TransactionStatusFailed:
		log.Str("reason", txLog.Status.Reason).Msg("transaction failed")
		t.finishTxLog(ctx, MsgTxFailed)
	case core.TransactionStatusBroadcastError:
		log.AnErr("broadcast", txLog.Status.Error).Msg("transaction not broadcast")
		t.finishTxLog(ctx, MsgTxBroadcastError)
	case core.TransactionStatusUnresolved:
		log.Str("raw_tx", txLog.Status.RawTxHash).Msg("transaction unresolved")
		t.finishTxLog(ctx, MsgTxUnresolved)
	}
}

// finishTxLog ends a poll that did not confirm: show message, clear loading
// and refetch the order once.
func (t *Tracker) finishTxLog(ctx context.Context, message string) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.failActionLocked(message)
	t.mu.Unlock()

	t.refetchOrder(ctx)
	t.clearTxLogPoller(ctx)
}

func (t *Tracker) clearTxLogPoller(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	// a newer poll may have taken over
	if ctx.Err() == nil {
		t.txLogCancel = nil
	}
}
