package core

import (
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// FiatAmount converts integer minor units (cents) to a decimal amount.
func FiatAmount(minor uint64) decimal.Decimal {
	return decimal.NewFromUint64(minor).Shift(-FIAT_DECIMALS)
}

func FormatFiat(minor uint64, currency string) string {
	amount := FiatAmount(minor).StringFixed(FIAT_DECIMALS)
	if currency == "" {
		return amount
	}
	return amount + " " + currency
}

// CalcTotalPrice adds the offramper fee to the order price, both in minor units.
func CalcTotalPrice(price, fee uint64) (uint64, error) {
	total := price + fee
	if total < price {
		return 0, errors.Errorf("price overflow: %d + %d", price, fee)
	}
	return total, nil
}

// CalcPriceDrift is |live - estimated| / estimated.
func CalcPriceDrift(estimated, live uint64) (decimal.Decimal, error) {
	if estimated == 0 {
		return decimal.Zero, errors.New("estimated price is zero")
	}
	e := decimal.NewFromUint64(estimated)
	l := decimal.NewFromUint64(live)
	return l.Sub(e).Abs().Div(e), nil
}

// PriceDriftExceeded reports whether the live price moved past the threshold.
// A zero estimate always counts as exceeded.
func PriceDriftExceeded(estimated, live uint64, threshold decimal.Decimal) bool {
	drift, err := CalcPriceDrift(estimated, live)
	if err != nil {
		return true
	}
	return drift.GreaterThan(threshold)
}
