package book_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/openclob/book-indexer/internal/model"
	"github.com/openclob/book-indexer/internal/pricing"
	"github.com/openclob/book-indexer/internal/store"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func wantDec(t *testing.T, label string, got, want decimal.Decimal) {
	t.Helper()
	if !got.Equal(want) {
		t.Errorf("%s = %s, want %s", label, got, want)
	}
}

func getChart(t *testing.T, ms *store.MemoryStore, id string) *model.ChartLog {
	t.Helper()
	c, err := ms.GetChartLog(context.Background(), id)
	if err != nil {
		t.Fatalf("chart %s: %v", id, err)
	}
	return c
}

func TestChartNaturalAndInverted(t *testing.T) {
	oracle := pricing.StaticOracle{0: price96(1, 1), 5: price96(2, 1)}
	h, ms := newEnv(t, oracle)
	ctx := context.Background()

	openBook(t, h, 1)
	makeOrder(t, h, 1, trader, 0, 0, 5)
	makeOrder(t, h, 1, trader, 5, 0, 10)

	take(t, h, 1, 0, 5, testTS) // price 1.0, bid book liquidity
	take(t, h, 1, 5, 10, testTS) // price 2.0, ask book liquidity

	b, err := ms.GetBook(ctx, "1")
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	base, _ := ms.GetToken(ctx, b.Base)
	quote, _ := ms.GetToken(ctx, b.Quote)

	bucket := model.ChartIntervals[0].BucketStart(testTS)
	natural := getChart(t, ms, model.ChartLogID(base, quote, "1m", bucket))
	wantDec(t, "natural.Open", natural.Open, dec("1"))
	wantDec(t, "natural.High", natural.High, dec("2"))
	wantDec(t, "natural.Low", natural.Low, dec("1"))
	wantDec(t, "natural.Close", natural.Close, dec("2"))
	// base taken: 5e18 at price 1, then 10e18*1/2 = 5e18 at price 2.
	wantDec(t, "natural.BaseVolume", natural.BaseVolume, dec("10"))
	wantDec(t, "natural.BidBookBaseVolume", natural.BidBookBaseVolume, dec("5"))
	wantDec(t, "natural.AskBookBaseVolume", natural.AskBookBaseVolume, dec("5"))

	inverted := getChart(t, ms, model.ChartLogID(quote, base, "1m", bucket))
	wantDec(t, "inverted.Open", inverted.Open, dec("1"))
	wantDec(t, "inverted.High", inverted.High, dec("1"))
	wantDec(t, "inverted.Low", inverted.Low, dec("0.5"))
	wantDec(t, "inverted.Close", inverted.Close, dec("0.5"))
	// quote taken: 5e18 then 10e18; sides swap relative to the natural bar.
	wantDec(t, "inverted.BaseVolume", inverted.BaseVolume, dec("15"))
	wantDec(t, "inverted.BidBookBaseVolume", inverted.BidBookBaseVolume, dec("10"))
	wantDec(t, "inverted.AskBookBaseVolume", inverted.AskBookBaseVolume, dec("5"))
}

func TestChartBucketing(t *testing.T) {
	oracle := pricing.StaticOracle{0: price96(1, 1)}
	h, ms := newEnv(t, oracle)
	ctx := context.Background()

	openBook(t, h, 1)
	makeOrder(t, h, 1, trader, 0, 0, 10)

	take(t, h, 1, 0, 3, testTS)
	take(t, h, 1, 0, 4, testTS+60) // next minute, same 5m window

	b, _ := ms.GetBook(ctx, "1")
	base, _ := ms.GetToken(ctx, b.Base)
	quote, _ := ms.GetToken(ctx, b.Quote)

	m1 := model.ChartIntervals[0]
	first := getChart(t, ms, model.ChartLogID(base, quote, "1m", m1.BucketStart(testTS)))
	second := getChart(t, ms, model.ChartLogID(base, quote, "1m", m1.BucketStart(testTS+60)))
	wantDec(t, "first minute volume", first.BaseVolume, dec("3"))
	wantDec(t, "second minute volume", second.BaseVolume, dec("4"))

	m5 := model.AccumulationInterval
	combined := getChart(t, ms, model.ChartLogID(base, quote, "5m", m5.BucketStart(testTS)))
	wantDec(t, "5m combined volume", combined.BaseVolume, dec("7"))

	// One bar exists per interval for the first take's buckets.
	for _, iv := range model.ChartIntervals {
		if _, err := ms.GetChartLog(ctx, model.ChartLogID(base, quote, iv.Label, iv.BucketStart(testTS))); err != nil {
			t.Errorf("missing %s bar: %v", iv.Label, err)
		}
	}
}
