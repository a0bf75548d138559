package backend

import (
	"context"
	"encoding/json"
	"time"

	core "github.com/DomeLiquid/ramptrack"
	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

// Client talks to the JSON gateway in front of the order service. Each
// method is a POST to /api/<method> with the positional arguments as a JSON
// array; the reply is {"Ok": value} or {"Err": RampError}.
type Client struct {
	http *resty.Client
	log  core.Log
}

type OptionFunc func(c *Client)

func WithTimeout(timeout time.Duration) OptionFunc {
	return func(c *Client) {
		c.http.SetTimeout(timeout)
	}
}

func WithLog(log core.Log) OptionFunc {
	return func(c *Client) {
		c.log = log
	}
}

func NewClient(baseURL string, opts ...OptionFunc) *Client {
	c := &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetHeader("Content-Type", "application/json").
			SetRetryCount(0).
			SetTimeout(30 * time.Second),
		log: core.NopLog(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ core.OrderService = (*Client)(nil)

type envelope struct {
	Ok  json.RawMessage `json:"Ok"`
	Err json.RawMessage `json:"Err"`
}

func (c *Client) call(ctx context.Context, method string, out any, args ...any) error {
	if args == nil {
		args = []any{}
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(args).
		Post("/api/" + method)
	if err != nil {
		return errors.Wrapf(err, "call %s", method)
	}

	if resp.IsError() {
		apiErr := &APIError{
			StatusCode:  resp.StatusCode(),
			Description: resp.Status(),
			RawBody:     resp.String(),
		}
		var errResp ErrorResponse
		if json.Unmarshal(resp.Body(), &errResp) == nil && errResp.Error.Description != "" {
			apiErr.Code = errResp.Error.Code
			apiErr.Description = errResp.Error.Description
		}
		c.log.Debug().Str("method", method).Int("status", apiErr.StatusCode).Msg("gateway rejected call")
		return apiErr
	}

	var env envelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return errors.Wrapf(err, "decode %s reply", method)
	}
	if len(env.Err) > 0 && string(env.Err) != "null" {
		rampErr := &core.RampError{}
		if err := json.Unmarshal(env.Err, rampErr); err != nil {
			return errors.Wrapf(err, "decode %s error", method)
		}
		return rampErr
	}
	if env.Ok == nil {
		return errors.Errorf("%s reply carries neither Ok nor Err", method)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(env.Ok, out); err != nil {
		return errors.Wrapf(err, "decode %s result", method)
	}
	return nil
}

func (c *Client) GetOrder(ctx context.Context, orderId uint64) (core.OrderState, error) {
	var raw json.RawMessage
	if err := c.call(ctx, "get_order", &raw, orderId); err != nil {
		return nil, err
	}
	return core.UnmarshalOrderState(raw)
}

func (c *Client) GetOrderTxLog(ctx context.Context, orderId uint64, session *core.UserSession) (*core.TransactionLog, error) {
	var auth any
	if session != nil {
		auth = []any{session.UserId, session.Token}
	}
	var log *core.TransactionLog
	if err := c.call(ctx, "get_order_tx_log", &log, orderId, auth); err != nil {
		return nil, err
	}
	return log, nil
}

func (c *Client) LockOrder(ctx context.Context, orderId uint64, token string, userId uint64, provider core.PaymentProvider, address core.TransactionAddress) error {
	return c.call(ctx, "lock_order", nil, orderId, token, userId, provider, address)
}

func (c *Client) CancelOrder(ctx context.Context, orderId uint64, token string) (string, error) {
	var txHash *string
	if err := c.call(ctx, "cancel_order", &txHash, orderId, token); err != nil {
		return "", err
	}
	if txHash == nil {
		return "", nil
	}
	return *txHash, nil
}

func (c *Client) VerifyTransaction(ctx context.Context, orderId uint64, token *string, externalTxId string) (string, error) {
	var txHash *string
	if err := c.call(ctx, "verify_transaction", &txHash, orderId, token, externalTxId); err != nil {
		return "", err
	}
	if txHash == nil {
		return "", nil
	}
	return *txHash, nil
}

func (c *Client) VerifyOrderIsPayable(ctx context.Context, orderId uint64, token string) error {
	return c.call(ctx, "verify_order_is_payable", nil, orderId, token)
}

func (c *Client) ExecuteRevolutPayment(ctx context.Context, orderId uint64, token string) (string, error) {
	var paymentId string
	if err := c.call(ctx, "execute_revolut_payment", &paymentId, orderId, token); err != nil {
		return "", err
	}
	return paymentId, nil
}

func (c *Client) CalculateOrderPrice(ctx context.Context, currency string, crypto core.Crypto) (uint64, uint64, error) {
	var pair [2]uint64
	if err := c.call(ctx, "calculate_order_price", &pair, currency, crypto); err != nil {
		return 0, 0, err
	}
	return pair[0], pair[1], nil
}

func (c *Client) RefetchUser(ctx context.Context, userId uint64, token string) (*core.User, error) {
	var user core.User
	if err := c.call(ctx, "refetch_user", &user, userId, token); err != nil {
		return nil, err
	}
	return &user, nil
}
