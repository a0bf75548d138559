package tracker

import (
	"time"

	core "github.com/DomeLiquid/ramptrack"
)

// Timings holds every delay and limit the tracker loops run on.
type Timings struct {
	StatusPollInterval time.Duration
	TxLogPollDelay     time.Duration
	TxLogMaxAttempts   int
	ConfirmSettleDelay time.Duration
	OptimisticDelay    time.Duration
	CountdownTick      time.Duration
	LockDuration       time.Duration
	LockRecheckDelay   time.Duration
	LockRecheckMax     int
}

func DefaultTimings() Timings {
	return Timings{
		StatusPollInterval: core.STATUS_POLL_INTERVAL,
		TxLogPollDelay:     core.TX_LOG_POLL_DELAY,
		TxLogMaxAttempts:   core.TX_LOG_MAX_ATTEMPTS,
		ConfirmSettleDelay: core.CONFIRM_SETTLE_DELAY,
		OptimisticDelay:    core.OPTIMISTIC_DELAY,
		CountdownTick:      core.COUNTDOWN_TICK,
		LockDuration:       core.LOCK_DURATION,
		LockRecheckDelay:   core.LOCK_RECHECK_DELAY,
		LockRecheckMax:     core.LOCK_RECHECK_MAX,
	}
}
