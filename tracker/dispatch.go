package tracker

import (
	"context"
	"fmt"

	core "github.com/DomeLiquid/ramptrack"
	"github.com/DomeLiquid/ramptrack/utils"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// ConfirmPriceFunc asks whether to go on with a lock whose live price moved
// past the drift threshold. Prices are fiat amounts.
type ConfirmPriceFunc func(live, estimated decimal.Decimal) bool

type actionContext struct {
	user    *core.User
	token   string
	orderId uint64
	chain   core.Blockchain
}

var ErrNotRunning = errors.New("tracker is not running")

// sessionLocked returns the acting user and token, or ErrNoSession. A user
// whose session has expired has no token either.
func (t *Tracker) sessionLocked() (*core.User, string, error) {
	if t.ctx == nil || t.closed {
		return nil, "", ErrNotRunning
	}
	if t.token == "" || t.user == nil {
		return nil, "", core.ErrNoSession
	}
	if t.user.Session != nil {
		if _, err := t.user.SessionToken(t.clk); err != nil {
			return nil, "", err
		}
	}
	return t.user, t.token, nil
}

// Lock commits the onramper to the displayed created order with provider.
func (t *Tracker) Lock(ctx context.Context, provider core.PaymentProvider, confirm ConfirmPriceFunc) error {
	t.mu.Lock()
	user, token, err := t.sessionLocked()
	if err != nil {
		t.mu.Unlock()
		return err
	}
	if !user.IsOnramper() {
		t.mu.Unlock()
		return errors.Wrapf(core.ErrUnauthorized, "lock order as %s", user.UserType)
	}
	created, ok := t.state.(core.CreatedOrder)
	if !ok {
		t.mu.Unlock()
		return errors.Wrapf(core.ErrInvalidOrderState, "lock %s order", kindOf(t.state))
	}
	estimated := t.price
	act := actionContext{user: user, token: token, orderId: created.Id, chain: created.Crypto.Blockchain}
	t.beginActionLocked(MsgFetchingPrice)
	t.mu.Unlock()

	requestId := utils.ActionRequestId("lock", act.orderId, user.Id)

	price, fee, err := t.svc.CalculateOrderPrice(ctx, created.Currency, created.Crypto)
	if err == nil && price == 0 && fee == 0 {
		err = core.ErrPriceUnavailable
	}
	if err != nil {
		t.failAction(MsgPriceUnavailable)
		return errors.Wrap(err, "calculate order price")
	}
	live, err := core.CalcTotalPrice(price, fee)
	if err != nil {
		t.failAction(MsgPriceUnavailable)
		return err
	}

	var estimate uint64
	if estimated != nil {
		estimate = *estimated
	}
	if core.PriceDriftExceeded(estimate, live, core.PRICE_DIFFERENCE_THRESHOLD) {
		if confirm == nil || !confirm(core.FiatAmount(live), core.FiatAmount(estimate)) {
			t.mu.Lock()
			t.setLoadingLocked(false, "")
			t.mu.Unlock()
			return core.ErrPriceRejected
		}
	}

	address, ok := user.AddressFor(act.chain)
	if !ok {
		t.failAction(MsgNoMatchingAddress)
		return core.ErrNoMatchingAddress
	}

	t.mu.Lock()
	t.setLoadingLocked(true, MsgLocking)
	t.mu.Unlock()

	t.log.Info().
		Str("request_id", requestId).
		Uint64("price", live).
		Str("provider", provider.Type.String()).
		Msg("locking order")
	err = t.svc.LockOrder(ctx, act.orderId, token, user.Id, provider, address)
	if err != nil {
		return t.actionFailed(err, fmt.Sprintf("Error while committing to order %d.", act.orderId))
	}

	t.afterAction(act, "", msgCommitted(act.orderId), RouteOnramperOrders(user.Id))
	return nil
}

// Cancel withdraws the displayed created order on behalf of its offramper.
func (t *Tracker) Cancel(ctx context.Context) error {
	t.mu.Lock()
	user, token, err := t.sessionLocked()
	if err != nil {
		t.mu.Unlock()
		return err
	}
	if !user.IsOfframper() {
		t.mu.Unlock()
		return errors.Wrapf(core.ErrUnauthorized, "cancel order as %s", user.UserType)
	}
	created, ok := t.state.(core.CreatedOrder)
	if !ok {
		t.mu.Unlock()
		return errors.Wrapf(core.ErrInvalidOrderState, "cancel %s order", kindOf(t.state))
	}
	if user.Id != created.OfframperUserId {
		t.mu.Unlock()
		return errors.Wrapf(core.ErrUnauthorized, "order %d belongs to user %d", created.Id, created.OfframperUserId)
	}
	act := actionContext{user: user, token: token, orderId: created.Id, chain: created.Crypto.Blockchain}
	t.beginActionLocked(msgRemoving(act.orderId))
	t.mu.Unlock()

	t.log.Info().Str("request_id", utils.ActionRequestId("cancel", act.orderId, user.Id)).Msg("cancelling order")
	txHash, err := t.svc.CancelOrder(ctx, act.orderId, token)
	if err != nil {
		return t.actionFailed(err, fmt.Sprintf("Error while removing order %d.", act.orderId))
	}

	t.afterAction(act, txHash, msgCancelled(act.orderId), "")
	return nil
}

// VerifyPayment hands the external payment id of a locked order to the
// order service for verification.
func (t *Tracker) VerifyPayment(ctx context.Context, externalTxId string) error {
	t.mu.Lock()
	user, token, err := t.sessionLocked()
	if err != nil {
		t.mu.Unlock()
		return err
	}
	if !user.IsOnramper() {
		t.mu.Unlock()
		return errors.Wrapf(core.ErrUnauthorized, "verify payment as %s", user.UserType)
	}
	locked, ok := t.state.(core.LockedOrder)
	if !ok {
		t.mu.Unlock()
		return errors.Wrapf(core.ErrInvalidOrderState, "verify payment of %s order", kindOf(t.state))
	}
	act := actionContext{user: user, token: token, orderId: locked.Base.Id, chain: locked.Base.Crypto.Blockchain}
	t.beginActionLocked(MsgPaymentReceived)
	t.mu.Unlock()

	t.log.Info().
		Str("request_id", utils.ActionRequestId("verify", act.orderId, user.Id)).
		Str("external_tx_id", externalTxId).
		Msg("verifying payment")
	txHash, err := t.svc.VerifyTransaction(ctx, act.orderId, &token, externalTxId)
	if err != nil {
		return t.actionFailed(err, fmt.Sprintf("Error verifying payment for order %d.", act.orderId))
	}

	t.afterAction(act, txHash, MsgReleased, RouteCompleted)
	return nil
}

// RevolutRedirect starts the Revolut payment of a locked order and returns
// the consent url the payer has to visit. The payment call is not awaited.
func (t *Tracker) RevolutRedirect() (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, token, err := t.sessionLocked()
	if err != nil {
		return "", err
	}
	locked, ok := t.state.(core.LockedOrder)
	if !ok {
		return "", errors.Wrapf(core.ErrInvalidOrderState, "revolut redirect of %s order", kindOf(t.state))
	}
	consentURL, ok := locked.ConsentURL()
	if !ok {
		t.log.Warn().Msg("consent url is not available")
		return "", core.ErrNoConsentURL
	}

	orderId := locked.Base.Id
	t.goLocked(t.ctx, func(ctx context.Context) {
		if _, err := t.svc.ExecuteRevolutPayment(ctx, orderId, token); err != nil && ctx.Err() == nil {
			t.log.Error().Err(err).Msg("execute revolut payment")
		}
	})
	return consentURL, nil
}

// CheckPayable reports whether the acting user can pay the displayed order
// and publishes the answer.
func (t *Tracker) CheckPayable(ctx context.Context) bool {
	payable := t.checkPayable(ctx)

	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.closed {
		t.listener.PayableChanged(payable)
	}
	return payable
}

func (t *Tracker) checkPayable(ctx context.Context) bool {
	t.mu.Lock()
	user, token, err := t.sessionLocked()
	locked, ok := t.state.(core.LockedOrder)
	t.mu.Unlock()
	if err != nil || !ok {
		return false
	}

	if err := t.svc.VerifyOrderIsPayable(ctx, locked.Base.Id, token); err != nil {
		t.log.Debug().Err(err).Msg("order is not payable")
		return false
	}
	return locked.Onramper.UserId == user.Id
}

// afterAction branches on the chain: chain-backed actions follow the
// transaction log, the rest settle after a short delay.
func (t *Tracker) afterAction(act actionContext, txHash string, message string, route string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}

	if act.chain.IsChainBacked() {
		if txHash != "" {
			t.listener.TxHashChanged(txHash)
		}
		t.startTxLogPollerLocked(act.user.Id, act.token)
		return
	}

	t.setLoadingLocked(true, message)
	t.goLocked(t.ctx, func(ctx context.Context) {
		if t.sleep(ctx, t.timings.OptimisticDelay) {
			t.settle(ctx, route)
		}
	})
}

// actionFailed reports a failed service call: domain errors with their own
// message, anything else with fallback.
func (t *Tracker) actionFailed(err error, fallback string) error {
	message := fallback
	if rampErr, ok := core.AsRampError(err); ok {
		message = core.RampErrorToString(rampErr)
	} else {
		t.log.Error().Err(err).Msg(fallback)
	}
	t.failAction(message)
	return err
}

func (t *Tracker) failAction(message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.closed {
		t.failActionLocked(message)
	}
}

func kindOf(state core.OrderState) string {
	if state == nil {
		return "unknown"
	}
	return state.Kind().String()
}
