package config

import (
	"time"

	"github.com/DomeLiquid/ramptrack/tracker"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

const envPrefix = "RAMP"

type AppConfig struct {
	BackendURL     string        `envconfig:"BACKEND_URL" default:"http://localhost:8080"`
	BackendTimeout time.Duration `envconfig:"BACKEND_TIMEOUT" default:"30s"`
	Workdir        string        `envconfig:"WORK_DIR"`
	DatabaseUri    string        `envconfig:"DATABASE_URI" default:"ramptrack.db"`
	LogLevel       string        `envconfig:"LOG_LEVEL" default:"4"`
	LogToFile      bool          `envconfig:"LOG_TO_FILE" default:"false"`

	PriceCacheTTL   time.Duration `envconfig:"PRICE_CACHE_TTL" default:"30m"`
	PrunePriceCache bool          `envconfig:"PRUNE_PRICE_CACHE" default:"true"`

	StatusPollInterval time.Duration `envconfig:"STATUS_POLL_INTERVAL" default:"5s"`
	TxLogPollDelay     time.Duration `envconfig:"TX_LOG_POLL_DELAY" default:"4s"`
	TxLogMaxAttempts   int           `envconfig:"TX_LOG_MAX_ATTEMPTS" default:"35"`
	ConfirmSettleDelay time.Duration `envconfig:"CONFIRM_SETTLE_DELAY" default:"3500ms"`
	OptimisticDelay    time.Duration `envconfig:"OPTIMISTIC_DELAY" default:"2500ms"`
	CountdownTick      time.Duration `envconfig:"COUNTDOWN_TICK" default:"1s"`
	LockDuration       time.Duration `envconfig:"LOCK_DURATION" default:"30m"`
	LockRecheckDelay   time.Duration `envconfig:"LOCK_RECHECK_DELAY" default:"2500ms"`
	LockRecheckMax     int           `envconfig:"LOCK_RECHECK_MAX" default:"3"`
}

// Load reads an optional .env file, then RAMP_* variables.
func Load() (*AppConfig, error) {
	// a missing .env is fine
	_ = godotenv.Load(".env")

	cfg := &AppConfig{}
	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, errors.Wrap(err, "process env")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *AppConfig) Validate() error {
	if c.BackendURL == "" {
		return errors.New("RAMP_BACKEND_URL is required")
	}
	if c.TxLogMaxAttempts <= 0 {
		return errors.Errorf("RAMP_TX_LOG_MAX_ATTEMPTS must be positive, got %d", c.TxLogMaxAttempts)
	}
	if c.LockRecheckMax < 0 {
		return errors.Errorf("RAMP_LOCK_RECHECK_MAX must not be negative, got %d", c.LockRecheckMax)
	}
	for name, d := range map[string]time.Duration{
		"RAMP_STATUS_POLL_INTERVAL": c.StatusPollInterval,
		"RAMP_COUNTDOWN_TICK":       c.CountdownTick,
		"RAMP_PRICE_CACHE_TTL":      c.PriceCacheTTL,
	} {
		if d <= 0 {
			return errors.Errorf("%s must be positive, got %s", name, d)
		}
	}
	return nil
}

func (c *AppConfig) Timings() tracker.Timings {
	return tracker.Timings{
		StatusPollInterval: c.StatusPollInterval,
		TxLogPollDelay:     c.TxLogPollDelay,
		TxLogMaxAttempts:   c.TxLogMaxAttempts,
		ConfirmSettleDelay: c.ConfirmSettleDelay,
		OptimisticDelay:    c.OptimisticDelay,
		CountdownTick:      c.CountdownTick,
		LockDuration:       c.LockDuration,
		LockRecheckDelay:   c.LockRecheckDelay,
		LockRecheckMax:     c.LockRecheckMax,
	}
}
