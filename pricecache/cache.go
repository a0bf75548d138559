package pricecache

import (
	"encoding/json"
	"fmt"
	"time"

	core "github.com/DomeLiquid/ramptrack"
	"github.com/DomeLiquid/ramptrack/store"
	"github.com/facebookgo/clock"
	"github.com/pkg/errors"
)

const KeyPrefix = "order_"

type (
	Entry struct {
		Price     uint64 `json:"price"`
		Timestamp int64  `json:"timestamp"` // unix millis
	}

	Cache struct {
		clk clock.Clock
		kv  store.KVStore
		ttl time.Duration
		log core.Log
	}

	OptionFunc func(c *Cache)
)

func WithTTL(ttl time.Duration) OptionFunc {
	return func(c *Cache) {
		c.ttl = ttl
	}
}

func WithLog(log core.Log) OptionFunc {
	return func(c *Cache) {
		c.log = log
	}
}

func New(clk clock.Clock, kv store.KVStore, opts ...OptionFunc) *Cache {
	c := &Cache{
		clk: clk,
		kv:  kv,
		ttl: core.PRICE_CACHE_TTL,
		log: core.NopLog(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func Key(orderId uint64) string {
	return fmt.Sprintf("%s%d_price", KeyPrefix, orderId)
}

// Expired reports whether the entry is at or past ttl old at now.
func (e Entry) Expired(now time.Time, ttl time.Duration) bool {
	return now.UnixMilli()-e.Timestamp >= ttl.Milliseconds()
}

// Get returns the cached price of an order. Absent, unreadable and expired
// entries are misses; expired entries are removed on the way.
func (c *Cache) Get(orderId uint64) (uint64, bool) {
	key := Key(orderId)
	data, err := c.kv.Read(key)
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("read cached price")
		return 0, false
	}
	if data == nil {
		return 0, false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("decode cached price")
		return 0, false
	}
	if entry.Expired(c.clk.Now(), c.ttl) {
		if err := c.kv.Delete(key); err != nil {
			c.log.Warn().Err(err).Str("key", key).Msg("drop expired price")
		}
		return 0, false
	}
	return entry.Price, true
}

func (c *Cache) Put(orderId uint64, price uint64) error {
	data, err := json.Marshal(Entry{Price: price, Timestamp: c.clk.Now().UnixMilli()})
	if err != nil {
		return errors.Wrap(err, "encode price entry")
	}
	if err := c.kv.Write(Key(orderId), data); err != nil {
		return errors.Wrapf(err, "cache price for order %d", orderId)
	}
	return nil
}

func (c *Cache) TTL() time.Duration {
	return c.ttl
}
