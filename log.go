package core

import "github.com/rs/zerolog"

type Log interface {
	Info() *zerolog.Event
	Debug() *zerolog.Event
	Warn() *zerolog.Event
	Error() *zerolog.Event
}

// NopLog discards everything. Used when no logger is wired in.
func NopLog() Log {
	l := zerolog.Nop()
	return &l
}

// WithOrder returns a child logger tagged with the order id, or log itself
// when it is not backed by a zerolog.Logger.
func WithOrder(log Log, orderId uint64) Log {
	zl, ok := log.(*zerolog.Logger)
	if !ok {
		return log
	}
	child := zl.With().Uint64("order_id", orderId).Logger()
	return &child
}
