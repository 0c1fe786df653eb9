package pricing

import (
	"math/big"
)

// GeometricOracle derives prices on the standard geometric tick grid:
// price(tick) = 1.0001^tick scaled by 2^96. Exact fixed-point exponentiation
// happens on-chain; this reproduces it with 256-bit float intermediates,
// which keeps every representable tick well inside one ulp of the grid.
// Results are memoized, since feeds revisit a narrow band of ticks.
type GeometricOracle struct {
	cache map[int32]*big.Int
}

// NewGeometricOracle creates an oracle on the 1.0001^tick grid.
func NewGeometricOracle() *GeometricOracle {
	return &GeometricOracle{cache: make(map[int32]*big.Int)}
}

const oraclePrec = 256

func (o *GeometricOracle) TickToPrice(tick int32) *big.Int {
	if p, ok := o.cache[tick]; ok {
		return new(big.Int).Set(p)
	}

	ratio := new(big.Float).SetPrec(oraclePrec).Quo(
		new(big.Float).SetPrec(oraclePrec).SetInt64(10001),
		new(big.Float).SetPrec(oraclePrec).SetInt64(10000),
	)

	n := int64(tick)
	inverted := n < 0
	if inverted {
		n = -n
	}

	acc := new(big.Float).SetPrec(oraclePrec).SetInt64(1)
	sq := new(big.Float).SetPrec(oraclePrec).Set(ratio)
	for ; n > 0; n >>= 1 {
		if n&1 == 1 {
			acc.Mul(acc, sq)
		}
		sq.Mul(sq, sq)
	}
	if inverted {
		acc.Quo(new(big.Float).SetPrec(oraclePrec).SetInt64(1), acc)
	}

	acc.Mul(acc, new(big.Float).SetPrec(oraclePrec).SetInt(PricePrecision))
	p, _ := acc.Int(nil)
	o.cache[tick] = p
	return new(big.Int).Set(p)
}
