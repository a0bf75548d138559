package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	core "github.com/DomeLiquid/ramptrack"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	Method string
	Args   []json.RawMessage
}

// gateway is a fake order service gateway answering canned replies per method.
type gateway struct {
	mu      sync.Mutex
	replies map[string]func(args []json.RawMessage) (int, any)
	calls   []call
}

func newGateway(t *testing.T) (*gateway, *Client) {
	g := &gateway{replies: map[string]func([]json.RawMessage) (int, any){}}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Post("/api/{method}", func(w http.ResponseWriter, r *http.Request) {
		method := chi.URLParam(r, "method")
		var args []json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&args); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]any{"error": map[string]any{"status": 400, "code": 10001, "description": "bad args"}})
			return
		}

		g.mu.Lock()
		g.calls = append(g.calls, call{Method: method, Args: args})
		reply, ok := g.replies[method]
		g.mu.Unlock()

		if !ok {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, map[string]any{"error": map[string]any{"status": 404, "code": 10404, "description": "unknown method " + method}})
			return
		}
		status, body := reply(args)
		render.Status(r, status)
		render.JSON(w, r, body)
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return g, NewClient(srv.URL)
}

func (g *gateway) set(method string, reply func([]json.RawMessage) (int, any)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.replies[method] = reply
}

func (g *gateway) ok(method string, value any) {
	g.set(method, func([]json.RawMessage) (int, any) {
		return http.StatusOK, map[string]any{"Ok": value}
	})
}

func (g *gateway) err(method string, rampErr string) {
	g.set(method, func([]json.RawMessage) (int, any) {
		return http.StatusOK, map[string]any{"Err": json.RawMessage(rampErr)}
	})
}

func (g *gateway) lastCall() call {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[len(g.calls)-1]
}

func TestGetOrder(t *testing.T) {
	g, client := newGateway(t)
	g.ok("get_order", json.RawMessage(`{"Cancelled":42}`))

	state, err := client.GetOrder(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, core.CancelledOrder{OrderId: 42}, state)

	c := g.lastCall()
	assert.Equal(t, "get_order", c.Method)
	require.Len(t, c.Args, 1)
	assert.JSONEq(t, `42`, string(c.Args[0]))
}

func TestGetOrderDomainError(t *testing.T) {
	g, client := newGateway(t)
	g.err("get_order", `{"OrderError":{"OrderNotFound":null}}`)

	_, err := client.GetOrder(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrOrderNotFound))

	rampErr, ok := core.AsRampError(err)
	require.True(t, ok)
	assert.Equal(t, "Order Not Found", rampErr.Error())
}

func TestGetOrderTxLog(t *testing.T) {
	g, client := newGateway(t)
	g.ok("get_order_tx_log", nil)

	log, err := client.GetOrderTxLog(context.Background(), 5, &core.UserSession{UserId: 3, Token: "tok"})
	require.NoError(t, err)
	assert.Nil(t, log)
	assert.JSONEq(t, `[3,"tok"]`, string(g.lastCall().Args[1]))

	g.ok("get_order_tx_log", json.RawMessage(`{"order_id":5,"action":{"Commit":null},"status":{"Pending":null}}`))
	log, err = client.GetOrderTxLog(context.Background(), 5, nil)
	require.NoError(t, err)
	require.NotNil(t, log)
	assert.Equal(t, core.TransactionActionCommit, log.Action.Type)
	assert.Equal(t, core.TransactionStatusPending, log.Status.Type)
	assert.JSONEq(t, `null`, string(g.lastCall().Args[1]))
}

func TestLockOrderArgs(t *testing.T) {
	g, client := newGateway(t)
	g.ok("lock_order", nil)

	err := client.LockOrder(context.Background(), 9, "tok", 3,
		core.PayPal("on@paypal"),
		core.TransactionAddress{AddressType: core.AddressTypeEVM, Address: "0xbb"})
	require.NoError(t, err)

	c := g.lastCall()
	require.Len(t, c.Args, 5)
	assert.JSONEq(t, `{"PayPal":{"id":"on@paypal"}}`, string(c.Args[3]))
	assert.JSONEq(t, `{"address_type":{"EVM":null},"address":"0xbb"}`, string(c.Args[4]))
}

func TestCancelAndVerify(t *testing.T) {
	g, client := newGateway(t)
	g.ok("cancel_order", "0xabc")
	g.ok("verify_transaction", nil)

	hash, err := client.CancelOrder(context.Background(), 9, "tok")
	require.NoError(t, err)
	assert.Equal(t, "0xabc", hash)

	token := "tok"
	hash, err = client.VerifyTransaction(context.Background(), 9, &token, "PAYID-1")
	require.NoError(t, err)
	assert.Empty(t, hash)
	assert.JSONEq(t, `"PAYID-1"`, string(g.lastCall().Args[2]))
}

func TestCalculateOrderPrice(t *testing.T) {
	g, client := newGateway(t)
	g.ok("calculate_order_price", []uint64{10000, 150})

	price, fee, err := client.CalculateOrderPrice(context.Background(), "EUR", core.Crypto{Amount: 1, Blockchain: core.EVMChain(1)})
	require.NoError(t, err)
	assert.Equal(t, uint64(10000), price)
	assert.Equal(t, uint64(150), fee)
}

func TestRefetchUser(t *testing.T) {
	g, client := newGateway(t)
	g.ok("refetch_user", json.RawMessage(`{"id":3,"user_type":{"Onramper":null},"score":1,"payment_providers":[],"addresses":[{"address_type":{"EVM":null},"address":"0xbb"}],"session":{"token":"tok","expires_at":1}}`))

	user, err := client.RefetchUser(context.Background(), 3, "tok")
	require.NoError(t, err)
	assert.True(t, user.IsOnramper())
	require.NotNil(t, user.Session)
	assert.Equal(t, "tok", user.Session.Token)
}

func TestAPIError(t *testing.T) {
	_, client := newGateway(t)

	err := client.VerifyOrderIsPayable(context.Background(), 1, "tok")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, 10404, apiErr.Code)
	assert.Contains(t, apiErr.Description, "verify_order_is_payable")

	_, isDomain := core.AsRampError(err)
	assert.False(t, isDomain)
}

func TestMalformedReply(t *testing.T) {
	g, client := newGateway(t)
	g.set("execute_revolut_payment", func([]json.RawMessage) (int, any) {
		return http.StatusOK, map[string]any{"Something": 1}
	})

	_, err := client.ExecuteRevolutPayment(context.Background(), 1, "tok")
	assert.Error(t, err)
}
