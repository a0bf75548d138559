package core

import "context"

type (
	OrderReader interface {
		GetOrder(ctx context.Context, orderId uint64) (OrderState, error)
	}

	// TransactionLogReader returns a nil log while no vault transaction
	// exists for the order yet.
	TransactionLogReader interface {
		GetOrderTxLog(ctx context.Context, orderId uint64, session *UserSession) (*TransactionLog, error)
	}

	OrderActor interface {
		LockOrder(ctx context.Context, orderId uint64, token string, userId uint64, provider PaymentProvider, address TransactionAddress) error
		CancelOrder(ctx context.Context, orderId uint64, token string) (string, error)
		VerifyTransaction(ctx context.Context, orderId uint64, token *string, externalTxId string) (string, error)
		VerifyOrderIsPayable(ctx context.Context, orderId uint64, token string) error
		ExecuteRevolutPayment(ctx context.Context, orderId uint64, token string) (string, error)
	}

	PriceQuoter interface {
		CalculateOrderPrice(ctx context.Context, currency string, crypto Crypto) (price uint64, fee uint64, err error)
	}

	UserReader interface {
		RefetchUser(ctx context.Context, userId uint64, token string) (*User, error)
	}

	// OrderService is the remote order service. Domain failures come back
	// as *RampError, everything else is a transport failure.
	OrderService interface {
		OrderReader
		TransactionLogReader
		OrderActor
		PriceQuoter
		UserReader
	}
)
