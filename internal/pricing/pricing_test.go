package pricing

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
)

func bi(v int64) *big.Int { return big.NewInt(v) }

func TestUnitToBase_AtParPrice(t *testing.T) {
	// price == 2^96 cancels the precision factor exactly.
	got := UnitToBase(bi(1000), bi(7), new(big.Int).Set(PricePrecision))
	if got.Cmp(bi(7000)) != 0 {
		t.Errorf("expected 7000, got %s", got)
	}
}

func TestUnitToBase_ZeroPrice(t *testing.T) {
	got := UnitToBase(bi(1000), bi(7), bi(0))
	if got.Sign() != 0 {
		t.Errorf("expected 0 for zero price, got %s", got)
	}
}

func TestUnitToBase_HalfPriceDoublesBase(t *testing.T) {
	half := new(big.Int).Rsh(PricePrecision, 1)
	got := UnitToBase(bi(1000), bi(7), half)
	if got.Cmp(bi(14000)) != 0 {
		t.Errorf("expected 14000, got %s", got)
	}
}

func TestUnitToBase_WideOperands(t *testing.T) {
	// Operands near 128-bit magnitude must not overflow intermediates.
	units := new(big.Int).Lsh(big.NewInt(1), 120)
	unitSize, _ := new(big.Int).SetString("1000000000000000000", 10) // 1e18
	price := new(big.Int).Lsh(big.NewInt(1), 97)                    // 2 * 2^96

	want := new(big.Int).Mul(units, unitSize)
	want.Rsh(want, 1)

	got := UnitToBase(unitSize, units, price)
	if got.Cmp(want) != 0 {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestUnitToQuote(t *testing.T) {
	got := UnitToQuote(bi(1000000), bi(25))
	if got.Cmp(bi(25000000)) != 0 {
		t.Errorf("expected 25000000, got %s", got)
	}
}

func TestBaseToQuote_RoundTripsWithUnitToBase(t *testing.T) {
	price := new(big.Int).Lsh(big.NewInt(3), 96) // 3 * 2^96
	base := bi(999)
	got := BaseToQuote(base, price)
	if got.Cmp(bi(2997)) != 0 {
		t.Errorf("expected 2997, got %s", got)
	}
}

func TestFormatPrice(t *testing.T) {
	// Par price with 18/6 decimal tokens → 1e12 quote per base.
	got := FormatPrice(new(big.Int).Set(PricePrecision), 18, 6)
	want := decimal.New(1, 12)
	if !got.Equal(want) {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestFormatInvertedPrice(t *testing.T) {
	price := new(big.Int).Lsh(big.NewInt(4), 96) // price 4.0 at equal decimals
	got := FormatInvertedPrice(price, 18, 18)
	want := decimal.NewFromFloat(0.25)
	if !got.Equal(want) {
		t.Errorf("expected %s, got %s", want, got)
	}

	if !FormatInvertedPrice(bi(0), 18, 18).IsZero() {
		t.Error("expected zero inverted price for zero price")
	}
}

func TestFormatUnits(t *testing.T) {
	amount, _ := new(big.Int).SetString("1500000000000000000", 10)
	got := FormatUnits(amount, 18)
	if !got.Equal(decimal.NewFromFloat(1.5)) {
		t.Errorf("expected 1.5, got %s", got)
	}
}

func TestStaticOracle(t *testing.T) {
	o := StaticOracle{0: new(big.Int).Set(PricePrecision)}
	if o.TickToPrice(0).Cmp(PricePrecision) != 0 {
		t.Error("expected configured price at tick 0")
	}
	if o.TickToPrice(99).Sign() != 0 {
		t.Error("expected zero price for unknown tick")
	}
}
