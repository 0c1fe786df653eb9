package book_test

import (
	"context"
	"math/big"
	"testing"

	"github.com/openclob/book-indexer/internal/book"
	"github.com/openclob/book-indexer/internal/feed"
	"github.com/openclob/book-indexer/internal/model"
	"github.com/openclob/book-indexer/internal/pricing"
	"github.com/openclob/book-indexer/internal/store"
)

func claim(t *testing.T, h *book.Handler, id *big.Int, unit int64) {
	t.Helper()
	err := h.HandleClaim(context.Background(), &feed.ClaimEvent{
		Meta:    feed.Meta{Timestamp: testTS},
		OrderID: id,
		Unit:    bi(unit),
	})
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
}

func TestRebalancerMakeTracksSpread(t *testing.T) {
	oracle := pricing.StaticOracle{-10: price96(1, 1), 10: price96(1, 2)}
	h, ms := newEnv(t, oracle)
	ctx := context.Background()

	openBook(t, h, 1)
	makeOrder(t, h, 1, rebalancer, -10, 0, 10) // bid at 1.0
	makeOrder(t, h, 1, rebalancer, 10, 0, 10)  // ask at inverted 0.5 → 2.0

	sp, err := ms.GetLatestPoolSpread(ctx)
	if err != nil {
		t.Fatalf("spread: %v", err)
	}
	if sp.BidTick != -10 || sp.AskTick != 10 {
		t.Errorf("ticks = (%d, %d), want (-10, 10)", sp.BidTick, sp.AskTick)
	}
	wantDec(t, "BidPrice", sp.BidPrice, dec("1"))
	wantDec(t, "AskPrice", sp.AskPrice, dec("2"))
}

func TestNonRebalancerMakeLeavesSpreadAlone(t *testing.T) {
	oracle := pricing.StaticOracle{-10: price96(1, 1)}
	h, ms := newEnv(t, oracle)

	openBook(t, h, 1)
	makeOrder(t, h, 1, trader, -10, 0, 10)

	if _, err := ms.GetLatestPoolSpread(context.Background()); err != store.ErrNotFound {
		t.Errorf("spread should not exist, got err %v", err)
	}
}

func TestRebalancerClaimAccruesSpreadProfit(t *testing.T) {
	oracle := pricing.StaticOracle{-10: price96(1, 1), 10: price96(1, 2)}
	h, ms := newEnv(t, oracle)
	ctx := context.Background()

	openBook(t, h, 1)
	id := makeOrder(t, h, 1, rebalancer, -10, 0, 10)
	makeOrder(t, h, 1, rebalancer, 10, 0, 10)
	take(t, h, 1, -10, 4, testTS)
	claim(t, h, id, 4)

	iv := model.AccumulationInterval
	profit, err := ms.GetPoolSpreadProfit(ctx, model.PoolSpreadProfitID(iv.Label, iv.BucketStart(testTS)))
	if err != nil {
		t.Fatalf("profit: %v", err)
	}
	// spread = 2.0 - 1.0, half = 0.5; bid-side claim valued on the quote
	// leg: 4 units × 1e18 unit size → 4. profit = 0.5 × 4.
	wantDec(t, "profit", profit.AccumulatedProfitInUSD, dec("2"))
}

func TestNegativeSpreadClampsToZero(t *testing.T) {
	// Bid quoted above ask: crossed state, profit must clamp to zero.
	oracle := pricing.StaticOracle{-10: price96(2, 1), 10: price96(1, 1)}
	h, ms := newEnv(t, oracle)
	ctx := context.Background()

	openBook(t, h, 1)
	id := makeOrder(t, h, 1, rebalancer, -10, 0, 10) // bid 2.0
	makeOrder(t, h, 1, rebalancer, 10, 0, 10)        // ask 1.0
	take(t, h, 1, -10, 4, testTS)
	claim(t, h, id, 4)

	iv := model.AccumulationInterval
	profit, err := ms.GetPoolSpreadProfit(ctx, model.PoolSpreadProfitID(iv.Label, iv.BucketStart(testTS)))
	if err != nil {
		t.Fatalf("profit: %v", err)
	}
	wantDec(t, "clamped profit", profit.AccumulatedProfitInUSD, dec("0"))
}

func TestTraderClaimAccruesNothing(t *testing.T) {
	oracle := pricing.StaticOracle{-10: price96(1, 1)}
	h, ms := newEnv(t, oracle)
	ctx := context.Background()

	openBook(t, h, 1)
	id := makeOrder(t, h, 1, trader, -10, 0, 10)
	take(t, h, 1, -10, 4, testTS)
	claim(t, h, id, 4)

	iv := model.AccumulationInterval
	_, err := ms.GetPoolSpreadProfit(ctx, model.PoolSpreadProfitID(iv.Label, iv.BucketStart(testTS)))
	if err != store.ErrNotFound {
		t.Errorf("profit record should not exist, got err %v", err)
	}
}
