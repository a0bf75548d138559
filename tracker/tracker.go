package tracker

import (
	"context"
	"sync"
	"time"

	core "github.com/DomeLiquid/ramptrack"
	"github.com/DomeLiquid/ramptrack/pricecache"
	"github.com/facebookgo/clock"
)

// Tracker mirrors one displayed order. It owns the snapshot and at most one
// status poller, one transaction log poller and one lock countdown.
type Tracker struct {
	clk      clock.Clock
	svc      core.OrderService
	listener Listener
	log      core.Log
	timings  Timings
	prices   *pricecache.Resolver

	orderId uint64

	mu      sync.Mutex
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
	closed  bool
	user    *core.User
	token   string
	state   core.OrderState
	price   *uint64
	loading bool

	statusCancel    context.CancelFunc
	txLogCancel     context.CancelFunc
	countdownCancel context.CancelFunc
}

type OptionFunc func(t *Tracker)

func WithLog(log core.Log) OptionFunc {
	return func(t *Tracker) {
		t.log = log
	}
}

func WithTimings(timings Timings) OptionFunc {
	return func(t *Tracker) {
		t.timings = timings
	}
}

func WithSession(user *core.User, token string) OptionFunc {
	return func(t *Tracker) {
		t.user = user
		t.token = token
	}
}

func WithPriceResolver(prices *pricecache.Resolver) OptionFunc {
	return func(t *Tracker) {
		t.prices = prices
	}
}

func New(clk clock.Clock, svc core.OrderService, listener Listener, orderId uint64, opts ...OptionFunc) *Tracker {
	t := &Tracker{
		clk:      clk,
		svc:      svc,
		listener: listener,
		log:      core.NopLog(),
		timings:  DefaultTimings(),
		orderId:  orderId,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.log = core.WithOrder(t.log, orderId)
	return t
}

// Start displays the initial snapshot and kicks off the one-shot price and
// payability lookups. Calling it again has no effect.
func (t *Tracker) Start(ctx context.Context, initial core.OrderState) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed || t.ctx != nil {
		return
	}
	t.ctx, t.cancel = context.WithCancel(ctx)
	t.applyLocked(initial)

	if t.prices != nil {
		t.goLocked(t.ctx, t.loadPrice)
	}
	if t.token != "" {
		if _, ok := initial.(core.LockedOrder); ok {
			t.goLocked(t.ctx, func(ctx context.Context) {
				t.CheckPayable(ctx)
			})
		}
	}
}

// Apply replaces the displayed snapshot. An equal snapshot is ignored.
func (t *Tracker) Apply(state core.OrderState) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed || t.ctx == nil {
		return
	}
	t.applyLocked(state)
}

// SetUser replaces the acting user, typically after a profile refetch. The
// token comes from the user's session; without a live session the tracker
// has no token and actions fail with core.ErrNoSession.
func (t *Tracker) SetUser(user *core.User) {
	token, err := user.SessionToken(t.clk)
	if err != nil {
		t.log.Warn().Err(err).Msg("user has no live session")
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.user = user
	t.token = token
}

func (t *Tracker) State() core.OrderState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func (t *Tracker) Price() *uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.price
}

func (t *Tracker) Loading() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.loading
}

// Close stops every loop and waits for them to return.
func (t *Tracker) Close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	if t.cancel != nil {
		t.cancel()
	}
	t.statusCancel = nil
	t.txLogCancel = nil
	t.countdownCancel = nil
	t.mu.Unlock()

	t.wg.Wait()
}

// Wait blocks until every running loop has returned on its own.
func (t *Tracker) Wait() {
	t.wg.Wait()
}

func (t *Tracker) applyLocked(state core.OrderState) {
	if state == nil || core.EqualOrderState(t.state, state) {
		return
	}
	t.state = state
	t.listener.OrderChanged(state)

	t.restartCountdownLocked()
	if core.IsProcessing(state) {
		t.startStatusPollerLocked()
	}
}

// goLocked runs fn on its own goroutine, tracked for Close.
func (t *Tracker) goLocked(ctx context.Context, fn func(ctx context.Context)) {
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		fn(ctx)
	}()
}

func (t *Tracker) setLoadingLocked(loading bool, message string) {
	t.loading = loading
	t.listener.LoadingChanged(loading, message)
}

// beginActionLocked resets the action feedback before a dispatch.
func (t *Tracker) beginActionLocked(message string) {
	t.setLoadingLocked(true, message)
	t.listener.TxHashChanged("")
	t.listener.MessageChanged("")
}

func (t *Tracker) failActionLocked(message string) {
	t.listener.MessageChanged(message)
	t.setLoadingLocked(false, "")
}

// sleep waits d on the tracker clock; false when ctx ended first.
func (t *Tracker) sleep(ctx context.Context, d time.Duration) bool {
	timer := t.clk.Timer(d)
	select {
	case <-ctx.Done():
		timer.Stop()
		return false
	case <-timer.C:
		return true
	}
}

// refetchOrder pulls the latest snapshot and displays it. A domain error
// asks the parent list to refresh instead.
func (t *Tracker) refetchOrder(ctx context.Context) {
	state, err := t.svc.GetOrder(ctx, t.orderId)
	if ctx.Err() != nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	if err != nil {
		if _, ok := core.AsRampError(err); ok {
			t.log.Warn().Err(err).Msg("refetch order")
			t.listener.RefreshOrders()
			return
		}
		t.log.Error().Err(err).Msg("refetch order")
		return
	}
	t.applyLocked(state)
}

// settle is the tail of every finished action: clear loading, refetch the
// user and the balances, navigate when a route is given, then refetch the
// order. A snapshot that is still processing sets loading again.
func (t *Tracker) settle(ctx context.Context, route string) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.listener.RefetchUser()
	t.listener.FetchBalances()
	t.setLoadingLocked(false, "")
	if route != "" {
		t.listener.Navigate(route)
	}
	t.mu.Unlock()

	t.refetchOrder(ctx)
}

func (t *Tracker) loadPrice(ctx context.Context) {
	t.mu.Lock()
	state := t.state
	t.mu.Unlock()

	price, err := t.prices.CurrentPrice(ctx, state)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		t.log.Warn().Err(err).Msg("load order price")
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.price = price
	t.listener.PriceChanged(price)
}
