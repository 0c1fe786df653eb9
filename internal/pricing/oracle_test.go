package pricing_test

import (
	"math/big"
	"testing"

	"github.com/openclob/book-indexer/internal/pricing"
)

func TestGeometricOracleTickZero(t *testing.T) {
	o := pricing.NewGeometricOracle()
	want := new(big.Int).Lsh(big.NewInt(1), 96)
	if got := o.TickToPrice(0); got.Cmp(want) != 0 {
		t.Errorf("TickToPrice(0) = %s, want 2^96", got)
	}
}

func TestGeometricOracleMonotonic(t *testing.T) {
	o := pricing.NewGeometricOracle()
	prev := o.TickToPrice(-100)
	for tick := int32(-99); tick <= 100; tick++ {
		p := o.TickToPrice(tick)
		if p.Cmp(prev) <= 0 {
			t.Fatalf("price not increasing at tick %d: %s <= %s", tick, p, prev)
		}
		prev = p
	}
}

func TestGeometricOracleRatio(t *testing.T) {
	o := pricing.NewGeometricOracle()
	p0 := o.TickToPrice(0)
	p1 := o.TickToPrice(1)

	// p1/p0 must be 1.0001: p1*10000 == p0*10001 up to rounding.
	lhs := new(big.Int).Mul(p1, big.NewInt(10000))
	rhs := new(big.Int).Mul(p0, big.NewInt(10001))
	diff := new(big.Int).Sub(lhs, rhs)
	if diff.CmpAbs(big.NewInt(100000)) > 0 {
		t.Errorf("tick 1 ratio off grid: diff %s", diff)
	}
}

func TestGeometricOracleMemoizedCopies(t *testing.T) {
	o := pricing.NewGeometricOracle()
	a := o.TickToPrice(10)
	a.SetInt64(0)
	b := o.TickToPrice(10)
	if b.Sign() == 0 {
		t.Error("cached price mutated by caller")
	}
}
