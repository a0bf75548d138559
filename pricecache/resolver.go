package pricecache

import (
	"context"

	core "github.com/DomeLiquid/ramptrack"
	"github.com/pkg/errors"
)

type Resolver struct {
	cache  *Cache
	quoter core.PriceQuoter
	log    core.Log
}

func NewResolver(cache *Cache, quoter core.PriceQuoter, log core.Log) *Resolver {
	if log == nil {
		log = core.NopLog()
	}
	return &Resolver{cache: cache, quoter: quoter, log: log}
}

// CurrentPrice is the fiat total for the displayed order in minor units.
// Locked orders use the locked price, created orders the cached or live
// quote. Other states, and quotes that come back empty, yield nil.
func (r *Resolver) CurrentPrice(ctx context.Context, state core.OrderState) (*uint64, error) {
	switch s := state.(type) {
	case core.LockedOrder:
		total, err := core.CalcTotalPrice(s.Price, s.OfframperFee)
		if err != nil {
			return nil, err
		}
		return &total, nil
	case core.CreatedOrder:
		if price, ok := r.cache.Get(s.Id); ok {
			return &price, nil
		}
		total, err := r.LivePrice(ctx, s.Currency, s.Crypto)
		if err != nil || total == nil {
			return nil, err
		}
		if err := r.cache.Put(s.Id, *total); err != nil {
			r.log.Warn().Err(err).Uint64("order_id", s.Id).Msg("cache order price")
		}
		return total, nil
	}
	return nil, nil
}

// LivePrice asks the order service for a fresh quote, bypassing the cache.
func (r *Resolver) LivePrice(ctx context.Context, currency string, crypto core.Crypto) (*uint64, error) {
	price, fee, err := r.quoter.CalculateOrderPrice(ctx, currency, crypto)
	if err != nil {
		return nil, errors.Wrap(err, "calculate order price")
	}
	if price == 0 && fee == 0 {
		return nil, nil
	}
	total, err := core.CalcTotalPrice(price, fee)
	if err != nil {
		return nil, err
	}
	return &total, nil
}
