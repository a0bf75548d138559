package core

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	LOCK_DURATION = 1800 * time.Second

	PRICE_CACHE_TTL = 30 * time.Minute

	STATUS_POLL_INTERVAL = 5 * time.Second
	TX_LOG_POLL_DELAY    = 4 * time.Second
	TX_LOG_MAX_ATTEMPTS  = 35
	CONFIRM_SETTLE_DELAY = 3500 * time.Millisecond
	OPTIMISTIC_DELAY     = 2500 * time.Millisecond

	COUNTDOWN_TICK     = time.Second
	LOCK_RECHECK_DELAY = 2500 * time.Millisecond
	LOCK_RECHECK_MAX   = 3

	// fiat prices travel as integer cents
	FIAT_DECIMALS = 2
)

var (
	PRICE_DIFFERENCE_THRESHOLD = decimal.NewFromFloat(0.025)
)
