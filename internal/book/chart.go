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

// updateCharts folds one take into the OHLC bars of every interval, for the
// natural market (base/quote) and the inverted one (quote/base, reciprocal
// price, volume counted on the opposite leg). Liquidity at non-positive
// ticks rests on the bid book, positive ticks on the ask book; the inverted
// market swaps that attribution.
func (h *Handler) updateCharts(ctx context.Context, b *model.Book, tick int32, price, unitAmount *big.Int, ts int64) error {
	base, quote, err := h.loadPair(ctx, b)
	if errors.Is(err, store.ErrNotFound) {
		slog.Error("take: token not found for chart", "book", b.ID)
		metrics.MissingEntity.WithLabelValues("token").Inc()
		return nil
	}
	if err != nil {
		return err
	}

	naturalPrice := pricing.FormatPrice(price, base.Decimals, quote.Decimals)
	invertedPrice := pricing.FormatInvertedPrice(price, base.Decimals, quote.Decimals)

	baseTaken := pricing.UnitToBase(b.UnitSize, unitAmount, price)
	quoteTaken := pricing.UnitToQuote(b.UnitSize, unitAmount)
	baseVolume := pricing.FormatUnits(baseTaken, base.Decimals)
	quoteVolume := pricing.FormatUnits(quoteTaken, quote.Decimals)

	fromBidBook := tick <= 0

	for _, iv := range model.ChartIntervals {
		bucket := iv.BucketStart(ts)
		if err := h.updateChartLog(ctx, base, quote, iv.Label, bucket, naturalPrice, baseVolume, fromBidBook); err != nil {
			return err
		}
		if err := h.updateChartLog(ctx, quote, base, iv.Label, bucket, invertedPrice, quoteVolume, !fromBidBook); err != nil {
			return err
		}
	}
	return nil
}

// updateChartLog creates or extends one bar.
func (h *Handler) updateChartLog(ctx context.Context, base, quote *model.Token, intervalType string, bucket int64,
	price, volume decimal.Decimal, fromBidBook bool) error {

	id := model.ChartLogID(base, quote, intervalType, bucket)
	c, err := h.store.GetChartLog(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		c = &model.ChartLog{
			ID:           id,
			MarketCode:   model.MarketCode(base, quote),
			IntervalType: intervalType,
			Timestamp:    bucket,
			Open:         price,
			High:         price,
			Low:          price,
			Close:        price,
		}
	} else if err != nil {
		return err
	} else {
		if price.GreaterThan(c.High) {
			c.High = price
		}
		if price.LessThan(c.Low) {
			c.Low = price
		}
		c.Close = price
	}

	c.BaseVolume = c.BaseVolume.Add(volume)
	if fromBidBook {
		c.BidBookBaseVolume = c.BidBookBaseVolume.Add(volume)
	} else {
		c.AskBookBaseVolume = c.AskBookBaseVolume.Add(volume)
	}
	return h.store.PutChartLog(ctx, c)
}
