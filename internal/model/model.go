// Package model defines the entities reconstructed from the exchange event
// feed. Raw on-chain amounts use math/big — never float64 or int64 for
// token quantities. Human-readable chart values use shopspring/decimal.
package model

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// Token is ERC20-style metadata for one side of a book, created the first
// time an address is seen in an Open event.
type Token struct {
	ID       string `json:"id"` // lowercase hex address
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Decimals int32  `json:"decimals"`
}

// Book is one order book: a base/quote pair with a fixed unit size and
// price grid. Created on Open and never deleted; only the latest-trade
// cache mutates afterwards.
type Book struct {
	ID              string         `json:"id"` // numeric book id, decimal string
	Base            string         `json:"base"`
	Quote           string         `json:"quote"`
	UnitSize        *big.Int       `json:"unit_size"`
	MakerPolicy     int32          `json:"maker_policy"`
	TakerPolicy     int32          `json:"taker_policy"`
	Hooks           common.Address `json:"hooks"`
	LatestTick      int32          `json:"latest_tick"`
	LatestPrice     *big.Int       `json:"latest_price"`
	LatestTimestamp int64          `json:"latest_timestamp"`
}

// Depth is the aggregate resting quantity at one (book, tick) price level.
// Deleted when the unit amount returns to exactly zero.
type Depth struct {
	ID          string   `json:"id"` // bookID-tick
	Book        string   `json:"book"`
	Tick        int32    `json:"tick"`
	Price       *big.Int `json:"price"`
	UnitAmount  *big.Int `json:"unit_amount"`
	BaseAmount  *big.Int `json:"base_amount"`
	QuoteAmount *big.Int `json:"quote_amount"`
}

// OrderIndex is the FIFO cursor for one (book, tick): the sequence index of
// the oldest order not yet fully matched. It may outlive the Depth record,
// since later orders can reopen the level at a higher index.
type OrderIndex struct {
	ID                    string   `json:"id"` // bookID-tick
	Book                  string   `json:"book"`
	Tick                  int32    `json:"tick"`
	Price                 *big.Int `json:"price"`
	LatestTakenOrderIndex *big.Int `json:"latest_taken_order_index"`
}

// OpenOrder tracks one resting order's lifecycle. Invariants:
// filled + open == committed (UnitAmount), claimable == filled - claimed.
// Deleted once open and claimable both reach zero.
type OpenOrder struct {
	ID         string         `json:"id"` // encoded order id, decimal string
	Book       string         `json:"book"`
	Tick       int32          `json:"tick"`
	OrderIndex *big.Int       `json:"order_index"`
	Price      *big.Int       `json:"price"` // price at creation, 2^96 scale
	Owner      common.Address `json:"owner"`
	TxHash     string         `json:"tx_hash"`
	CreatedAt  int64          `json:"created_at"`

	UnitAmount  *big.Int `json:"unit_amount"` // committed
	BaseAmount  *big.Int `json:"base_amount"`
	QuoteAmount *big.Int `json:"quote_amount"`

	UnitFilledAmount  *big.Int `json:"unit_filled_amount"`
	BaseFilledAmount  *big.Int `json:"base_filled_amount"`
	QuoteFilledAmount *big.Int `json:"quote_filled_amount"`

	UnitClaimedAmount  *big.Int `json:"unit_claimed_amount"`
	BaseClaimedAmount  *big.Int `json:"base_claimed_amount"`
	QuoteClaimedAmount *big.Int `json:"quote_claimed_amount"`

	UnitClaimableAmount  *big.Int `json:"unit_claimable_amount"`
	BaseClaimableAmount  *big.Int `json:"base_claimable_amount"`
	QuoteClaimableAmount *big.Int `json:"quote_claimable_amount"`

	UnitOpenAmount  *big.Int `json:"unit_open_amount"`
	BaseOpenAmount  *big.Int `json:"base_open_amount"`
	QuoteOpenAmount *big.Int `json:"quote_open_amount"`
}

// PendingUnitAmount is the quantity still tied up in the order: resting
// liquidity plus matched-but-unclaimed proceeds. The order record is
// removed when this reaches zero.
func (o *OpenOrder) PendingUnitAmount() *big.Int {
	return new(big.Int).Add(o.UnitOpenAmount, o.UnitClaimableAmount)
}

// ChartLog is one OHLC bar for one market at one interval. The side volumes
// split traded base volume by which side of book supplied the liquidity.
type ChartLog struct {
	ID                string          `json:"id"` // marketCode-interval-bucket
	MarketCode        string          `json:"market_code"`
	IntervalType      string          `json:"interval_type"`
	Timestamp         int64           `json:"timestamp"` // bucket start
	Open              decimal.Decimal `json:"open"`
	High              decimal.Decimal `json:"high"`
	Low               decimal.Decimal `json:"low"`
	Close             decimal.Decimal `json:"close"`
	BaseVolume        decimal.Decimal `json:"base_volume"`
	BidBookBaseVolume decimal.Decimal `json:"bid_book_base_volume"`
	AskBookBaseVolume decimal.Decimal `json:"ask_book_base_volume"`
}

// PoolVolume accumulates traded volume for a dual-book pool in one
// 5-minute bucket, attributed per sub-book and per currency leg.
type PoolVolume struct {
	ID                   string   `json:"id"` // poolKey-interval-bucket
	PoolKey              string   `json:"pool_key"`
	IntervalType         string   `json:"interval_type"`
	Timestamp            int64    `json:"timestamp"`
	CurrencyAVolume      *big.Int `json:"currency_a_volume"`
	CurrencyBVolume      *big.Int `json:"currency_b_volume"`
	BookACurrencyAVolume *big.Int `json:"book_a_currency_a_volume"`
	BookACurrencyBVolume *big.Int `json:"book_a_currency_b_volume"`
	BookBCurrencyAVolume *big.Int `json:"book_b_currency_a_volume"`
	BookBCurrencyBVolume *big.Int `json:"book_b_currency_b_volume"`
}

// PoolSnapshot is a write-once per-bucket capture of pool liquidity
// composition and the strategy oracle price.
type PoolSnapshot struct {
	ID           string   `json:"id"` // poolKey-interval-bucket
	PoolKey      string   `json:"pool_key"`
	IntervalType string   `json:"interval_type"`
	Timestamp    int64    `json:"timestamp"`
	Price        *big.Int `json:"price"`
	LiquidityA   *big.Int `json:"liquidity_a"`
	LiquidityB   *big.Int `json:"liquidity_b"`
	TotalSupply  *big.Int `json:"total_supply"`
}

// LatestPoolSpread is a singleton holding the rebalancer's current best bid
// and ask as last placed. Sides update independently, last write wins.
type LatestPoolSpread struct {
	ID       string          `json:"id"` // always "latest"
	BidTick  int32           `json:"bid_tick"`
	AskTick  int32           `json:"ask_tick"`
	BidPrice decimal.Decimal `json:"bid_price"`
	AskPrice decimal.Decimal `json:"ask_price"`
}

// PoolSpreadProfit accumulates the rebalancing strategy's estimated
// half-spread capture per fixed 5-minute bucket.
type PoolSpreadProfit struct {
	ID                     string          `json:"id"` // interval-bucket
	IntervalType           string          `json:"interval_type"`
	Timestamp              int64           `json:"timestamp"`
	AccumulatedProfitInUSD decimal.Decimal `json:"accumulated_profit_in_usd"`
}

// LatestBlock caches the most recently processed block.
type LatestBlock struct {
	ID          string `json:"id"` // always "latest"
	BlockNumber uint64 `json:"block_number"`
	Timestamp   int64  `json:"timestamp"`
}
