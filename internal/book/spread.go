package book

import (
	"context"
	"errors"
	"log/slog"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/openclob/book-indexer/internal/metrics"
	"github.com/openclob/book-indexer/internal/model"
	"github.com/openclob/book-indexer/internal/pricing"
	"github.com/openclob/book-indexer/internal/store"
)

var two = decimal.NewFromInt(2)

// accrueSpreadProfit estimates the rebalancing strategy's capture on one of
// its claims: half the currently quoted spread times the claimed amount,
// valued at the order's creation price. Bid-side claims are valued on the
// quote leg, ask-side claims on the base leg. Accrues into a fixed 5-minute
// bucket.
func (h *Handler) accrueSpreadProfit(ctx context.Context, b *model.Book, o *model.OpenOrder, unit *big.Int, ts int64) error {
	base, quote, err := h.loadPair(ctx, b)
	if errors.Is(err, store.ErrNotFound) {
		slog.Error("claim: token not found for spread profit", "book", b.ID)
		metrics.MissingEntity.WithLabelValues("token").Inc()
		return nil
	}
	if err != nil {
		return err
	}

	spread, err := h.store.GetLatestPoolSpread(ctx)
	if errors.Is(err, store.ErrNotFound) {
		spread = &model.LatestPoolSpread{ID: model.LatestID}
	} else if err != nil {
		return err
	}

	width := spread.AskPrice.Sub(spread.BidPrice)
	if width.IsNegative() {
		slog.Error("claim: negative pool spread", "bid", spread.BidPrice.String(), "ask", spread.AskPrice.String())
		metrics.Anomalies.WithLabelValues("negative_spread").Inc()
		width = decimal.Zero
	}
	halfSpread := width.Div(two)

	var claimedValue decimal.Decimal
	if o.Tick <= 0 {
		claimedQuote := pricing.UnitToQuote(b.UnitSize, unit)
		claimedValue = pricing.FormatUnits(claimedQuote, quote.Decimals)
	} else {
		claimedBase := pricing.UnitToBase(b.UnitSize, unit, o.Price)
		claimedValue = pricing.FormatUnits(claimedBase, base.Decimals)
	}

	iv := model.AccumulationInterval
	bucket := iv.BucketStart(ts)
	id := model.PoolSpreadProfitID(iv.Label, bucket)
	profit, err := h.store.GetPoolSpreadProfit(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		profit = &model.PoolSpreadProfit{
			ID:           id,
			IntervalType: iv.Label,
			Timestamp:    bucket,
		}
	} else if err != nil {
		return err
	}

	profit.AccumulatedProfitInUSD = profit.AccumulatedProfitInUSD.Add(halfSpread.Mul(claimedValue))
	return h.store.PutPoolSpreadProfit(ctx, profit)
}
