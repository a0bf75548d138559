package tracker

import (
	"fmt"
	"time"

	core "github.com/DomeLiquid/ramptrack"
)

// Listener receives everything a view of the order would render. Calls are
// made one at a time with the tracker lock held, so implementations must
// not call back into the Tracker.
type Listener interface {
	OrderChanged(state core.OrderState)
	LoadingChanged(loading bool, message string)
	// MessageChanged with an empty message clears it.
	MessageChanged(message string)
	// TxHashChanged with an empty hash clears it.
	TxHashChanged(txHash string)
	// RemainingTimeChanged gets nil once the lock has expired.
	RemainingTimeChanged(remaining *time.Duration)
	PriceChanged(price *uint64)
	PayableChanged(payable bool)
	Navigate(route string)

	RefreshOrders()
	RefetchUser()
	FetchBalances()
}

const (
	RouteCompleted = "/view?status=Completed"
	RouteCancelled = "/view?status=Cancelled"
)

func RouteOnramperOrders(userId uint64) string {
	return fmt.Sprintf("/view?onramperId=%d", userId)
}

const (
	MsgProcessing        = "Processing"
	MsgFetchingPrice     = "Fetching order price"
	MsgLocking           = "Locking Order"
	MsgPaymentReceived   = "Payment received. Verifying"
	MsgReleased          = "Order Verified and Funds Released. Refetching data"
	MsgTxSuccess         = "Transaction is successful!"
	MsgNetworkBusy       = "Network seems to be very busy. Please check later or contact with the maintainer."
	MsgTxFailed          = "Transaction failed. Please contact to maintainer."
	MsgTxBroadcastError  = "Could not broadcast transaction. Please contact to maintainer."
	MsgTxUnresolved      = "Unresolved transaction. Please contact to maintainer."
	MsgTxStatusUnknown   = "Failed to retrieve transaction status. Please contact to maintainer."
	MsgPriceUnavailable  = "Could not set order price"
	MsgNoMatchingAddress = "No address matches for user"
)

func msgCommitted(orderId uint64) string {
	return fmt.Sprintf("Locked Order #%d, refetching data", orderId)
}

func msgCancelled(orderId uint64) string {
	return fmt.Sprintf("Cancelled Order #%d, refetching data", orderId)
}

func msgRemoving(orderId uint64) string {
	return fmt.Sprintf("Removing order %d", orderId)
}
