package main

import (
	"context"
	"sync"
	"time"

	core "github.com/DomeLiquid/ramptrack"
	"github.com/DomeLiquid/ramptrack/tracker"
)

// logListener renders every tracker event as a log line and ends the run
// once the order settles.
type logListener struct {
	ctx     context.Context
	log     core.Log
	users   core.UserReader
	tracker *tracker.Tracker
	userId  uint64
	token   string

	chain    core.Blockchain
	done     chan struct{}
	doneOnce sync.Once
}

var _ tracker.Listener = (*logListener)(nil)

func newLogListener(ctx context.Context, log core.Log, users core.UserReader, userId uint64, token string) *logListener {
	return &logListener{
		ctx:    ctx,
		log:    log,
		users:  users,
		userId: userId,
		token:  token,
		done:   make(chan struct{}),
	}
}

func (l *logListener) settled(state core.OrderState) bool {
	switch state.(type) {
	case core.CompletedOrder, core.CancelledOrder:
		return true
	}
	return false
}

func (l *logListener) finish() {
	l.doneOnce.Do(func() { close(l.done) })
}

func (l *logListener) OrderChanged(state core.OrderState) {
	if chain, ok := core.OrderBlockchain(state); ok {
		l.chain = chain
	}
	event := l.log.Info().Str("state", state.Kind().String()).Bool("processing", core.IsProcessing(state))
	if base, ok := core.BaseOrder(state); ok {
		event = event.Uint64("amount", base.Crypto.Amount).Str("currency", base.Currency)
	}
	if locked, ok := state.(core.LockedOrder); ok {
		event = event.Str("total", core.FormatFiat(locked.TotalPrice(), locked.Base.Currency))
	}
	event.Msg("order changed")

	if l.settled(state) {
		l.finish()
	}
}

func (l *logListener) LoadingChanged(loading bool, message string) {
	l.log.Debug().Bool("loading", loading).Str("message", message).Msg("loading")
}

func (l *logListener) MessageChanged(message string) {
	if message != "" {
		l.log.Warn().Msg(message)
	}
}

func (l *logListener) TxHashChanged(txHash string) {
	if txHash == "" {
		return
	}
	event := l.log.Info().Str("tx_hash", txHash)
	if network, ok := core.LookupNetwork(l.chain.ChainId); ok && l.chain.IsChainBacked() {
		event = event.Str("network", network.Name)
	}
	if url, ok := core.ExplorerTxURL(l.chain, txHash); ok {
		event = event.Str("explorer", url)
	}
	event.Msg("transaction")
}

func (l *logListener) RemainingTimeChanged(remaining *time.Duration) {
	if remaining == nil {
		l.log.Debug().Msg("lock expired")
		return
	}
	l.log.Debug().Dur("remaining", remaining.Truncate(time.Second)).Msg("lock countdown")
}

func (l *logListener) PriceChanged(price *uint64) {
	if price == nil {
		l.log.Info().Msg("price unavailable")
		return
	}
	l.log.Info().Str("price", core.FiatAmount(*price).StringFixed(core.FIAT_DECIMALS)).Msg("price")
}

func (l *logListener) PayableChanged(payable bool) {
	l.log.Info().Bool("payable", payable).Msg("payable")
}

func (l *logListener) Navigate(route string) {
	l.log.Info().Str("route", route).Msg("navigate")
	l.finish()
}

func (l *logListener) RefreshOrders() {
	l.log.Debug().Msg("refresh orders")
}

func (l *logListener) RefetchUser() {
	if l.userId == 0 || l.token == "" || l.tracker == nil {
		return
	}
	// runs outside the tracker lock
	go func() {
		user, err := l.users.RefetchUser(l.ctx, l.userId, l.token)
		if err != nil {
			l.log.Warn().Err(err).Msg("refetch user")
			return
		}
		l.tracker.SetUser(withSession(user, l.token))
	}()
}

func (l *logListener) FetchBalances() {
	l.log.Debug().Msg("fetch balances")
}

// withSession keeps the session the user signed in with when the profile
// comes back without one.
func withSession(user *core.User, token string) *core.User {
	if user.Session == nil && token != "" {
		user.Session = &core.Session{Token: token}
	}
	return user
}
