// Package pricing converts between unit, base, and quote amounts using a
// book's unit size and a fixed-point price scaled by 2^96, and formats
// prices and amounts as decimals for chart consumers.
//
// Conversions run on math/big: operands can each approach 128-bit
// magnitude, so intermediates need well over 192 bits before the final
// division.
package pricing

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// PricePrecision is the fixed-point scale of oracle prices (2^96).
var PricePrecision = new(big.Int).Lsh(big.NewInt(1), 96)

var pricePrecisionDec = decimal.NewFromBigInt(PricePrecision, 0)

// Oracle resolves a tick on the price grid to a 2^96-scaled price.
// The resolution itself happens upstream (a controller contract view).
type Oracle interface {
	TickToPrice(tick int32) *big.Int
}

// StaticOracle is a map-backed Oracle for replays and tests.
type StaticOracle map[int32]*big.Int

func (o StaticOracle) TickToPrice(tick int32) *big.Int {
	if p, ok := o[tick]; ok {
		return new(big.Int).Set(p)
	}
	return new(big.Int)
}

// UnitToBase converts a unit amount to base tokens at the given price.
// A zero price yields zero rather than a division fault.
func UnitToBase(unitSize, unitAmount, price *big.Int) *big.Int {
	if price.Sign() == 0 {
		return new(big.Int)
	}
	v := new(big.Int).Mul(unitAmount, unitSize)
	v.Mul(v, PricePrecision)
	return v.Quo(v, price)
}

// UnitToQuote converts a unit amount to quote tokens.
func UnitToQuote(unitSize, unitAmount *big.Int) *big.Int {
	return new(big.Int).Mul(unitAmount, unitSize)
}

// BaseToQuote converts a base amount to quote tokens at the given price.
func BaseToQuote(baseAmount, price *big.Int) *big.Int {
	v := new(big.Int).Mul(baseAmount, price)
	return v.Quo(v, PricePrecision)
}

// FormatPrice renders a 2^96-scaled price as a decimal quote-per-base
// price adjusted for token decimals.
func FormatPrice(price *big.Int, baseDecimals, quoteDecimals int32) decimal.Decimal {
	return decimal.NewFromBigInt(price, baseDecimals-quoteDecimals).
		Div(pricePrecisionDec)
}

// FormatInvertedPrice renders the reciprocal price (base per quote).
// Zero in, zero out.
func FormatInvertedPrice(price *big.Int, baseDecimals, quoteDecimals int32) decimal.Decimal {
	if price.Sign() == 0 {
		return decimal.Zero
	}
	return decimal.New(1, 0).Div(FormatPrice(price, baseDecimals, quoteDecimals))
}

// FormatUnits scales a raw token amount down by its decimals.
func FormatUnits(amount *big.Int, decimals int32) decimal.Decimal {
	return decimal.NewFromBigInt(amount, -decimals)
}
