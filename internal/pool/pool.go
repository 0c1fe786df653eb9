// Package pool tracks the dual-book rebalancing vaults: traded volume per
// 5-minute bucket and periodic liquidity snapshots.
package pool

import (
	"context"
	"errors"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/openclob/book-indexer/internal/feed"
	"github.com/openclob/book-indexer/internal/metrics"
	"github.com/openclob/book-indexer/internal/model"
	"github.com/openclob/book-indexer/internal/pricing"
	"github.com/openclob/book-indexer/internal/store"
)

// LiquidityLeg is one currency's position inside a pool: idle reserve plus
// amounts resting on the book (cancelable) and matched but unclaimed
// (claimable).
type LiquidityLeg struct {
	Reserve    *big.Int
	Cancelable *big.Int
	Claimable  *big.Int
}

// Total is the leg's full committed amount. Nil fields count as zero, so a
// partially populated view cannot crash the snapshot path.
func (l LiquidityLeg) Total() *big.Int {
	v := new(big.Int)
	for _, a := range []*big.Int{l.Reserve, l.Cancelable, l.Claimable} {
		if a != nil {
			v.Add(v, a)
		}
	}
	return v
}

// Liquidity is a pool's position in both currencies.
type Liquidity struct {
	A LiquidityLeg
	B LiquidityLeg
}

// StrategyView reads the rebalancing strategy's current position for a pool.
// Backed by a contract view upstream; replays use a static implementation.
type StrategyView interface {
	Position(poolKey common.Hash) (tickA, tickB int32, err error)
}

// LiquidityView reads a pool's liquidity composition and LP token supply.
type LiquidityView interface {
	Liquidity(poolKey common.Hash) (Liquidity, error)
	TotalSupply(tokenID *big.Int) (*big.Int, error)
}

// Handler processes rebalancer and strategy events.
type Handler struct {
	store     store.Store
	oracle    pricing.Oracle
	strategy  StrategyView
	liquidity LiquidityView
}

// NewHandler wires the pool event handlers.
func NewHandler(st store.Store, oracle pricing.Oracle, strategy StrategyView, liquidity LiquidityView) *Handler {
	return &Handler{store: st, oracle: oracle, strategy: strategy, liquidity: liquidity}
}

// HandleRebalancerClaim folds one strategy claim into the pool's 5-minute
// volume bucket. The claimed amount of each currency is the traded volume
// of the opposite sub-book; its counterpart leg is derived through that
// book's current strategy price.
func (h *Handler) HandleRebalancerClaim(ctx context.Context, ev *feed.RebalancerClaimEvent) error {
	tickA, tickB, err := h.strategy.Position(ev.PoolKey)
	if err != nil {
		slog.Error("rebalancer claim: strategy position unavailable", "pool", ev.PoolKey.Hex(), "err", err)
		metrics.MissingEntity.WithLabelValues("strategy_position").Inc()
		return nil
	}
	bookAPrice := h.oracle.TickToPrice(tickA)
	bookBPrice := h.oracle.TickToPrice(tickB)

	bookACurrencyA := pricing.BaseToQuote(ev.ClaimedAmountB, bookAPrice)
	bookACurrencyB := ev.ClaimedAmountB
	bookBCurrencyA := ev.ClaimedAmountA
	bookBCurrencyB := pricing.BaseToQuote(ev.ClaimedAmountA, bookBPrice)
	totalCurrencyA := new(big.Int).Add(bookACurrencyA, bookBCurrencyA)
	totalCurrencyB := new(big.Int).Add(bookACurrencyB, bookBCurrencyB)

	iv := model.AccumulationInterval
	bucket := iv.BucketStart(ev.Timestamp)
	id := model.PoolBucketID(ev.PoolKey.Hex(), iv.Label, bucket)

	v, err := h.store.GetPoolVolume(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		v = &model.PoolVolume{
			ID:                   id,
			PoolKey:              ev.PoolKey.Hex(),
			IntervalType:         iv.Label,
			Timestamp:            bucket,
			CurrencyAVolume:      new(big.Int),
			CurrencyBVolume:      new(big.Int),
			BookACurrencyAVolume: new(big.Int),
			BookACurrencyBVolume: new(big.Int),
			BookBCurrencyAVolume: new(big.Int),
			BookBCurrencyBVolume: new(big.Int),
		}
	} else if err != nil {
		return err
	}

	v.CurrencyAVolume = new(big.Int).Add(v.CurrencyAVolume, totalCurrencyA)
	v.CurrencyBVolume = new(big.Int).Add(v.CurrencyBVolume, totalCurrencyB)
	v.BookACurrencyAVolume = new(big.Int).Add(v.BookACurrencyAVolume, bookACurrencyA)
	v.BookACurrencyBVolume = new(big.Int).Add(v.BookACurrencyBVolume, bookACurrencyB)
	v.BookBCurrencyAVolume = new(big.Int).Add(v.BookBCurrencyAVolume, bookBCurrencyA)
	v.BookBCurrencyBVolume = new(big.Int).Add(v.BookBCurrencyBVolume, bookBCurrencyB)

	return h.store.PutPoolVolume(ctx, v)
}

// HandleUpdatePosition captures a liquidity snapshot in every interval
// bucket the event falls into. Snapshots are write-once: the first position
// refresh in a bucket wins, later ones in the same bucket are ignored.
func (h *Handler) HandleUpdatePosition(ctx context.Context, ev *feed.UpdatePositionEvent) error {
	liq, err := h.liquidity.Liquidity(ev.PoolKey)
	if err != nil {
		slog.Error("update position: liquidity unavailable", "pool", ev.PoolKey.Hex(), "err", err)
		metrics.MissingEntity.WithLabelValues("pool_liquidity").Inc()
		return nil
	}
	totalSupply, err := h.liquidity.TotalSupply(new(big.Int).SetBytes(ev.PoolKey[:]))
	if err != nil {
		slog.Error("update position: total supply unavailable", "pool", ev.PoolKey.Hex(), "err", err)
		metrics.MissingEntity.WithLabelValues("pool_supply").Inc()
		return nil
	}

	totalA := liq.A.Total()
	totalB := liq.B.Total()

	for _, iv := range model.ChartIntervals {
		bucket := iv.BucketStart(ev.Timestamp)
		id := model.PoolBucketID(ev.PoolKey.Hex(), iv.Label, bucket)

		_, err := h.store.GetPoolSnapshot(ctx, id)
		if err == nil {
			continue
		}
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		snap := &model.PoolSnapshot{
			ID:           id,
			PoolKey:      ev.PoolKey.Hex(),
			IntervalType: iv.Label,
			Timestamp:    bucket,
			Price:        ev.OraclePrice,
			LiquidityA:   totalA,
			LiquidityB:   totalB,
			TotalSupply:  totalSupply,
		}
		if err := h.store.PutPoolSnapshot(ctx, snap); err != nil {
			return err
		}
	}
	return nil
}
