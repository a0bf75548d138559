package core

import (
	"encoding/json"
	"reflect"
	"time"

	"github.com/pkg/errors"
)

type (
	// OrderState is one of CreatedOrder, LockedOrder, CompletedOrder or
	// CancelledOrder.
	OrderState interface {
		Kind() OrderKind
		isOrderState()
	}

	OrderKind string

	Crypto struct {
		Amount     uint64     `json:"amount"`
		Fee        uint64     `json:"fee"`
		Token      *string    `json:"token"`
		Blockchain Blockchain `json:"blockchain"`
	}

	Order struct {
		Id                 uint64             `json:"id"`
		CreatedAt          uint64             `json:"created_at"` // nanoseconds
		OfframperUserId    uint64             `json:"offramper_user_id"`
		Crypto             Crypto             `json:"crypto"`
		Currency           string             `json:"currency"`
		OfframperProviders ProviderSet        `json:"offramper_providers"`
		OfframperAddress   TransactionAddress `json:"offramper_address"`
		Processing         bool               `json:"processing"`
	}

	Onramper struct {
		Provider PaymentProvider    `json:"provider"`
		UserId   uint64             `json:"user_id"`
		Address  TransactionAddress `json:"address"`
	}

	RevolutConsent struct {
		Id  string `json:"id"`
		Url string `json:"url"`
	}

	CreatedOrder struct {
		Order
	}

	LockedOrder struct {
		Base           Order           `json:"base"`
		LockedAt       uint64          `json:"locked_at"` // nanoseconds
		PaymentDone    bool            `json:"payment_done"`
		OfframperFee   uint64          `json:"offramper_fee"`
		Uncommited     bool            `json:"uncommited"`
		Onramper       Onramper        `json:"onramper"`
		Price          uint64          `json:"price"`
		PaymentId      *string         `json:"payment_id"`
		RevolutConsent *RevolutConsent `json:"revolut_consent"`
	}

	CompletedOrder struct {
		OfframperFee uint64             `json:"offramper_fee"`
		Onramper     TransactionAddress `json:"onramper"`
		Offramper    TransactionAddress `json:"offramper"`
		Blockchain   Blockchain         `json:"blockchain"`
		Price        uint64             `json:"price"`
		CompletedAt  uint64             `json:"completed_at"`
	}

	CancelledOrder struct {
		OrderId uint64
	}
)

const (
	OrderKindCreated   OrderKind = "created"
	OrderKindLocked    OrderKind = "locked"
	OrderKindCompleted OrderKind = "completed"
	OrderKindCancelled OrderKind = "cancelled"
)

func (k OrderKind) String() string {
	return string(k)
}

func (CreatedOrder) Kind() OrderKind   { return OrderKindCreated }
func (LockedOrder) Kind() OrderKind    { return OrderKindLocked }
func (CompletedOrder) Kind() OrderKind { return OrderKindCompleted }
func (CancelledOrder) Kind() OrderKind { return OrderKindCancelled }

func (CreatedOrder) isOrderState()   {}
func (LockedOrder) isOrderState()    {}
func (CompletedOrder) isOrderState() {}
func (CancelledOrder) isOrderState() {}

// OrderId returns the id carried by the snapshot. Completed orders do not
// carry one.
func OrderId(state OrderState) (uint64, bool) {
	switch s := state.(type) {
	case CreatedOrder:
		return s.Id, true
	case LockedOrder:
		return s.Base.Id, true
	case CancelledOrder:
		return s.OrderId, true
	}
	return 0, false
}

// BaseOrder returns the order data of Created and Locked snapshots.
func BaseOrder(state OrderState) (*Order, bool) {
	switch s := state.(type) {
	case CreatedOrder:
		return &s.Order, true
	case LockedOrder:
		return &s.Base, true
	}
	return nil, false
}

func OrderBlockchain(state OrderState) (Blockchain, bool) {
	switch s := state.(type) {
	case CreatedOrder:
		return s.Crypto.Blockchain, true
	case LockedOrder:
		return s.Base.Crypto.Blockchain, true
	case CompletedOrder:
		return s.Blockchain, true
	}
	return Blockchain{}, false
}

// IsProcessing reports whether a blockchain operation is in flight for
// the active variant.
func IsProcessing(state OrderState) bool {
	switch s := state.(type) {
	case CreatedOrder:
		return s.Processing
	case LockedOrder:
		return s.Base.Processing
	}
	return false
}

func EqualOrderState(a, b OrderState) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return reflect.DeepEqual(a, b)
}

// LockRemaining is the lock time left at now; zero or negative once expired.
func (o LockedOrder) LockRemaining(now time.Time, lockDuration time.Duration) time.Duration {
	expiry := time.Unix(0, int64(o.LockedAt)).Add(lockDuration)
	return expiry.Sub(now)
}

// TotalPrice is what the onramper pays: locked price plus offramper fee.
func (o LockedOrder) TotalPrice() uint64 {
	return o.Price + o.OfframperFee
}

func (o LockedOrder) ConsentURL() (string, bool) {
	if o.RevolutConsent == nil || o.RevolutConsent.Url == "" {
		return "", false
	}
	return o.RevolutConsent.Url, true
}

func MarshalOrderState(state OrderState) ([]byte, error) {
	switch s := state.(type) {
	case CreatedOrder:
		return encodeVariant("Created", s.Order)
	case LockedOrder:
		return encodeVariant("Locked", s)
	case CompletedOrder:
		return encodeVariant("Completed", s)
	case CancelledOrder:
		return encodeVariant("Cancelled", s.OrderId)
	}
	return nil, errors.Errorf("unknown order state %T", state)
}

func UnmarshalOrderState(data []byte) (OrderState, error) {
	tag, payload, err := decodeVariant(data)
	if err != nil {
		return nil, errors.Wrap(err, "decode order state")
	}

	switch tag {
	case "Created":
		var o Order
		if err := json.Unmarshal(payload, &o); err != nil {
			return nil, errors.Wrap(err, "decode created order")
		}
		return CreatedOrder{Order: o}, nil
	case "Locked":
		var o LockedOrder
		if err := json.Unmarshal(payload, &o); err != nil {
			return nil, errors.Wrap(err, "decode locked order")
		}
		return o, nil
	case "Completed":
		var o CompletedOrder
		if err := json.Unmarshal(payload, &o); err != nil {
			return nil, errors.Wrap(err, "decode completed order")
		}
		return o, nil
	case "Cancelled":
		var id uint64
		if err := json.Unmarshal(payload, &id); err != nil {
			return nil, errors.Wrap(err, "decode cancelled order")
		}
		return CancelledOrder{OrderId: id}, nil
	}
	return nil, errors.Wrapf(ErrInvalidOrderState, "unknown variant %q", tag)
}
