package pool_test

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/openclob/book-indexer/internal/feed"
	"github.com/openclob/book-indexer/internal/model"
	"github.com/openclob/book-indexer/internal/pool"
	"github.com/openclob/book-indexer/internal/pricing"
	"github.com/openclob/book-indexer/internal/store"
)

var poolKey = common.HexToHash("0x00000000000000000000000000000000000000000000000000000000000000aa")

const testTS = int64(1_700_000_000)

func bi(v int64) *big.Int { return big.NewInt(v) }

// price96 returns num/den scaled by 2^96.
func price96(num, den int64) *big.Int {
	v := new(big.Int).Lsh(big.NewInt(num), 96)
	return v.Quo(v, big.NewInt(den))
}

func wantBig(t *testing.T, label string, got *big.Int, want int64) {
	t.Helper()
	if got.Cmp(bi(want)) != 0 {
		t.Errorf("%s = %s, want %d", label, got, want)
	}
}

func TestRebalancerClaimAccumulatesVolume(t *testing.T) {
	// Book A priced at 1.0, book B at 2.0.
	oracle := pricing.StaticOracle{1: price96(1, 1), 2: price96(2, 1)}
	ms := store.NewMemoryStore()
	h := pool.NewHandler(ms, oracle, pool.StaticStrategy{TickA: 1, TickB: 2}, pool.StaticLiquidity{})
	ctx := context.Background()

	ev := &feed.RebalancerClaimEvent{
		Meta:           feed.Meta{Timestamp: testTS},
		PoolKey:        poolKey,
		ClaimedAmountA: bi(100),
		ClaimedAmountB: bi(200),
	}
	if err := h.HandleRebalancerClaim(ctx, ev); err != nil {
		t.Fatalf("claim: %v", err)
	}

	iv := model.AccumulationInterval
	id := model.PoolBucketID(poolKey.Hex(), iv.Label, iv.BucketStart(testTS))
	v, err := ms.GetPoolVolume(ctx, id)
	if err != nil {
		t.Fatalf("volume: %v", err)
	}
	// Book A trades currency B: its currency-A leg is 200 at price 1.0.
	wantBig(t, "bookA currencyA", v.BookACurrencyAVolume, 200)
	wantBig(t, "bookA currencyB", v.BookACurrencyBVolume, 200)
	// Book B trades currency A: its currency-B leg is 100 at price 2.0.
	wantBig(t, "bookB currencyA", v.BookBCurrencyAVolume, 100)
	wantBig(t, "bookB currencyB", v.BookBCurrencyBVolume, 200)
	wantBig(t, "total currencyA", v.CurrencyAVolume, 300)
	wantBig(t, "total currencyB", v.CurrencyBVolume, 400)

	// Same bucket accumulates.
	if err := h.HandleRebalancerClaim(ctx, ev); err != nil {
		t.Fatalf("second claim: %v", err)
	}
	v, _ = ms.GetPoolVolume(ctx, id)
	wantBig(t, "accumulated currencyA", v.CurrencyAVolume, 600)
	wantBig(t, "accumulated currencyB", v.CurrencyBVolume, 800)
}

func TestUpdatePositionSnapshotsAllIntervals(t *testing.T) {
	ms := store.NewMemoryStore()
	liq := pool.StaticLiquidity{
		Pool: pool.Liquidity{
			A: pool.LiquidityLeg{Reserve: bi(10), Cancelable: bi(20), Claimable: bi(30)},
			B: pool.LiquidityLeg{Reserve: bi(1), Cancelable: bi(2), Claimable: bi(3)},
		},
		Supply: bi(5000),
	}
	h := pool.NewHandler(ms, pricing.StaticOracle{}, pool.StaticStrategy{}, liq)
	ctx := context.Background()

	ev := &feed.UpdatePositionEvent{
		Meta:        feed.Meta{Timestamp: testTS},
		PoolKey:     poolKey,
		OraclePrice: bi(12345),
	}
	if err := h.HandleUpdatePosition(ctx, ev); err != nil {
		t.Fatalf("update: %v", err)
	}

	for _, iv := range model.ChartIntervals {
		id := model.PoolBucketID(poolKey.Hex(), iv.Label, iv.BucketStart(testTS))
		snap, err := ms.GetPoolSnapshot(ctx, id)
		if err != nil {
			t.Fatalf("snapshot %s: %v", iv.Label, err)
		}
		wantBig(t, iv.Label+" liquidityA", snap.LiquidityA, 60)
		wantBig(t, iv.Label+" liquidityB", snap.LiquidityB, 6)
		wantBig(t, iv.Label+" totalSupply", snap.TotalSupply, 5000)
		wantBig(t, iv.Label+" price", snap.Price, 12345)
	}
}

func TestUpdatePositionWithEmptyLiquidityView(t *testing.T) {
	// A zero-value view (nil leg fields, nil supply) is what the default
	// wiring provides; it must snapshot zeroes, not crash.
	ms := store.NewMemoryStore()
	h := pool.NewHandler(ms, pricing.StaticOracle{}, pool.StaticStrategy{}, pool.StaticLiquidity{})
	ctx := context.Background()

	err := h.HandleUpdatePosition(ctx, &feed.UpdatePositionEvent{
		Meta:        feed.Meta{Timestamp: testTS},
		PoolKey:     poolKey,
		OraclePrice: bi(1),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	iv := model.ChartIntervals[0]
	snap, err := ms.GetPoolSnapshot(ctx, model.PoolBucketID(poolKey.Hex(), iv.Label, iv.BucketStart(testTS)))
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	wantBig(t, "liquidityA", snap.LiquidityA, 0)
	wantBig(t, "liquidityB", snap.LiquidityB, 0)
	wantBig(t, "totalSupply", snap.TotalSupply, 0)
}

func TestUpdatePositionIsWriteOnce(t *testing.T) {
	ms := store.NewMemoryStore()
	liq := pool.StaticLiquidity{
		Pool: pool.Liquidity{
			A: pool.LiquidityLeg{Reserve: bi(1), Cancelable: bi(0), Claimable: bi(0)},
			B: pool.LiquidityLeg{Reserve: bi(1), Cancelable: bi(0), Claimable: bi(0)},
		},
		Supply: bi(1),
	}
	h := pool.NewHandler(ms, pricing.StaticOracle{}, pool.StaticStrategy{}, liq)
	ctx := context.Background()

	first := &feed.UpdatePositionEvent{
		Meta:        feed.Meta{Timestamp: testTS},
		PoolKey:     poolKey,
		OraclePrice: bi(100),
	}
	if err := h.HandleUpdatePosition(ctx, first); err != nil {
		t.Fatalf("first update: %v", err)
	}

	// Same buckets, different price: must not overwrite.
	second := &feed.UpdatePositionEvent{
		Meta:        feed.Meta{Timestamp: testTS + 1},
		PoolKey:     poolKey,
		OraclePrice: bi(999),
	}
	if err := h.HandleUpdatePosition(ctx, second); err != nil {
		t.Fatalf("second update: %v", err)
	}

	iv := model.ChartIntervals[0]
	id := model.PoolBucketID(poolKey.Hex(), iv.Label, iv.BucketStart(testTS))
	snap, err := ms.GetPoolSnapshot(ctx, id)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	wantBig(t, "price after second update", snap.Price, 100)
}
