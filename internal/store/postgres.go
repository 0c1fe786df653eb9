package store

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/openclob/book-indexer/internal/model"
)

// PostgresStore implements Store using PostgreSQL as the source of truth.
// Raw token amounts are stored as NUMERIC(78,0) (enough for uint256) and
// round-trip through strings; chart decimals use plain NUMERIC.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates all entity tables if they do not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS tokens (
			id TEXT PRIMARY KEY,
			symbol TEXT NOT NULL,
			name TEXT NOT NULL,
			decimals INT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS books (
			id TEXT PRIMARY KEY,
			base TEXT NOT NULL,
			quote TEXT NOT NULL,
			unit_size NUMERIC(78,0) NOT NULL,
			maker_policy INT NOT NULL,
			taker_policy INT NOT NULL,
			hooks TEXT NOT NULL,
			latest_tick INT NOT NULL,
			latest_price NUMERIC(78,0) NOT NULL,
			latest_timestamp BIGINT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS depths (
			id TEXT PRIMARY KEY,
			book TEXT NOT NULL,
			tick INT NOT NULL,
			price NUMERIC(78,0) NOT NULL,
			unit_amount NUMERIC(78,0) NOT NULL,
			base_amount NUMERIC(78,0) NOT NULL,
			quote_amount NUMERIC(78,0) NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS order_indexes (
			id TEXT PRIMARY KEY,
			book TEXT NOT NULL,
			tick INT NOT NULL,
			price NUMERIC(78,0) NOT NULL,
			latest_taken_order_index NUMERIC(78,0) NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS open_orders (
			id TEXT PRIMARY KEY,
			book TEXT NOT NULL,
			tick INT NOT NULL,
			order_index NUMERIC(78,0) NOT NULL,
			price NUMERIC(78,0) NOT NULL,
			owner TEXT NOT NULL,
			tx_hash TEXT NOT NULL,
			created_at BIGINT NOT NULL,
			unit_amount NUMERIC(78,0) NOT NULL,
			base_amount NUMERIC(78,0) NOT NULL,
			quote_amount NUMERIC(78,0) NOT NULL,
			unit_filled_amount NUMERIC(78,0) NOT NULL,
			base_filled_amount NUMERIC(78,0) NOT NULL,
			quote_filled_amount NUMERIC(78,0) NOT NULL,
			unit_claimed_amount NUMERIC(78,0) NOT NULL,
			base_claimed_amount NUMERIC(78,0) NOT NULL,
			quote_claimed_amount NUMERIC(78,0) NOT NULL,
			unit_claimable_amount NUMERIC(78,0) NOT NULL,
			base_claimable_amount NUMERIC(78,0) NOT NULL,
			quote_claimable_amount NUMERIC(78,0) NOT NULL,
			unit_open_amount NUMERIC(78,0) NOT NULL,
			base_open_amount NUMERIC(78,0) NOT NULL,
			quote_open_amount NUMERIC(78,0) NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS chart_logs (
			id TEXT PRIMARY KEY,
			market_code TEXT NOT NULL,
			interval_type TEXT NOT NULL,
			ts BIGINT NOT NULL,
			open NUMERIC NOT NULL,
			high NUMERIC NOT NULL,
			low NUMERIC NOT NULL,
			close NUMERIC NOT NULL,
			base_volume NUMERIC NOT NULL,
			bid_book_base_volume NUMERIC NOT NULL,
			ask_book_base_volume NUMERIC NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS pool_volumes (
			id TEXT PRIMARY KEY,
			pool_key TEXT NOT NULL,
			interval_type TEXT NOT NULL,
			ts BIGINT NOT NULL,
			currency_a_volume NUMERIC(78,0) NOT NULL,
			currency_b_volume NUMERIC(78,0) NOT NULL,
			book_a_currency_a_volume NUMERIC(78,0) NOT NULL,
			book_a_currency_b_volume NUMERIC(78,0) NOT NULL,
			book_b_currency_a_volume NUMERIC(78,0) NOT NULL,
			book_b_currency_b_volume NUMERIC(78,0) NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS pool_snapshots (
			id TEXT PRIMARY KEY,
			pool_key TEXT NOT NULL,
			interval_type TEXT NOT NULL,
			ts BIGINT NOT NULL,
			price NUMERIC(78,0) NOT NULL,
			liquidity_a NUMERIC(78,0) NOT NULL,
			liquidity_b NUMERIC(78,0) NOT NULL,
			total_supply NUMERIC(78,0) NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS latest_pool_spread (
			id TEXT PRIMARY KEY,
			bid_tick INT NOT NULL,
			ask_tick INT NOT NULL,
			bid_price NUMERIC NOT NULL,
			ask_price NUMERIC NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS pool_spread_profits (
			id TEXT PRIMARY KEY,
			interval_type TEXT NOT NULL,
			ts BIGINT NOT NULL,
			accumulated_profit_in_usd NUMERIC NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS latest_block (
			id TEXT PRIMARY KEY,
			block_number BIGINT NOT NULL,
			ts BIGINT NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// bigStr renders a big.Int for a NUMERIC column; nil stores as zero.
func bigStr(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func parseBig(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return new(big.Int)
	}
	return v
}

func parseDec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (s *PostgresStore) GetToken(ctx context.Context, id string) (*model.Token, error) {
	var t model.Token
	err := s.pool.QueryRow(ctx,
		`SELECT id, symbol, name, decimals FROM tokens WHERE id = $1`, id).
		Scan(&t.ID, &t.Symbol, &t.Name, &t.Decimals)
	if err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

func (s *PostgresStore) PutToken(ctx context.Context, t *model.Token) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO tokens (id, symbol, name, decimals) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE SET symbol = $2, name = $3, decimals = $4`,
		t.ID, t.Symbol, t.Name, t.Decimals)
	return err
}

func (s *PostgresStore) GetBook(ctx context.Context, id string) (*model.Book, error) {
	var b model.Book
	var unitSize, latestPrice, hooks string
	err := s.pool.QueryRow(ctx,
		`SELECT id, base, quote, unit_size::TEXT, maker_policy, taker_policy,
		        hooks, latest_tick, latest_price::TEXT, latest_timestamp
		 FROM books WHERE id = $1`, id).
		Scan(&b.ID, &b.Base, &b.Quote, &unitSize, &b.MakerPolicy, &b.TakerPolicy,
			&hooks, &b.LatestTick, &latestPrice, &b.LatestTimestamp)
	if err != nil {
		return nil, notFound(err)
	}
	b.UnitSize = parseBig(unitSize)
	b.LatestPrice = parseBig(latestPrice)
	b.Hooks = common.HexToAddress(hooks)
	return &b, nil
}

func (s *PostgresStore) PutBook(ctx context.Context, b *model.Book) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO books (id, base, quote, unit_size, maker_policy, taker_policy,
		                    hooks, latest_tick, latest_price, latest_timestamp)
		 VALUES ($1, $2, $3, $4::NUMERIC, $5, $6, $7, $8, $9::NUMERIC, $10)
		 ON CONFLICT (id) DO UPDATE SET
		   latest_tick = $8, latest_price = $9::NUMERIC, latest_timestamp = $10`,
		b.ID, b.Base, b.Quote, bigStr(b.UnitSize), b.MakerPolicy, b.TakerPolicy,
		b.Hooks.Hex(), b.LatestTick, bigStr(b.LatestPrice), b.LatestTimestamp)
	return err
}

func (s *PostgresStore) GetDepth(ctx context.Context, id string) (*model.Depth, error) {
	var d model.Depth
	var price, unitAmt, baseAmt, quoteAmt string
	err := s.pool.QueryRow(ctx,
		`SELECT id, book, tick, price::TEXT, unit_amount::TEXT, base_amount::TEXT, quote_amount::TEXT
		 FROM depths WHERE id = $1`, id).
		Scan(&d.ID, &d.Book, &d.Tick, &price, &unitAmt, &baseAmt, &quoteAmt)
	if err != nil {
		return nil, notFound(err)
	}
	d.Price = parseBig(price)
	d.UnitAmount = parseBig(unitAmt)
	d.BaseAmount = parseBig(baseAmt)
	d.QuoteAmount = parseBig(quoteAmt)
	return &d, nil
}

func (s *PostgresStore) PutDepth(ctx context.Context, d *model.Depth) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO depths (id, book, tick, price, unit_amount, base_amount, quote_amount)
		 VALUES ($1, $2, $3, $4::NUMERIC, $5::NUMERIC, $6::NUMERIC, $7::NUMERIC)
		 ON CONFLICT (id) DO UPDATE SET
		   price = $4::NUMERIC, unit_amount = $5::NUMERIC,
		   base_amount = $6::NUMERIC, quote_amount = $7::NUMERIC`,
		d.ID, d.Book, d.Tick, bigStr(d.Price),
		bigStr(d.UnitAmount), bigStr(d.BaseAmount), bigStr(d.QuoteAmount))
	return err
}

func (s *PostgresStore) DeleteDepth(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM depths WHERE id = $1`, id)
	return err
}

func (s *PostgresStore) GetOrderIndex(ctx context.Context, id string) (*model.OrderIndex, error) {
	var oi model.OrderIndex
	var price, latest string
	err := s.pool.QueryRow(ctx,
		`SELECT id, book, tick, price::TEXT, latest_taken_order_index::TEXT
		 FROM order_indexes WHERE id = $1`, id).
		Scan(&oi.ID, &oi.Book, &oi.Tick, &price, &latest)
	if err != nil {
		return nil, notFound(err)
	}
	oi.Price = parseBig(price)
	oi.LatestTakenOrderIndex = parseBig(latest)
	return &oi, nil
}

func (s *PostgresStore) PutOrderIndex(ctx context.Context, oi *model.OrderIndex) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO order_indexes (id, book, tick, price, latest_taken_order_index)
		 VALUES ($1, $2, $3, $4::NUMERIC, $5::NUMERIC)
		 ON CONFLICT (id) DO UPDATE SET
		   price = $4::NUMERIC, latest_taken_order_index = $5::NUMERIC`,
		oi.ID, oi.Book, oi.Tick, bigStr(oi.Price), bigStr(oi.LatestTakenOrderIndex))
	return err
}

func (s *PostgresStore) GetOpenOrder(ctx context.Context, id string) (*model.OpenOrder, error) {
	var o model.OpenOrder
	var owner string
	var n [17]string // numeric columns in select order
	err := s.pool.QueryRow(ctx,
		`SELECT id, book, tick, order_index::TEXT, price::TEXT, owner, tx_hash, created_at,
		        unit_amount::TEXT, base_amount::TEXT, quote_amount::TEXT,
		        unit_filled_amount::TEXT, base_filled_amount::TEXT, quote_filled_amount::TEXT,
		        unit_claimed_amount::TEXT, base_claimed_amount::TEXT, quote_claimed_amount::TEXT,
		        unit_claimable_amount::TEXT, base_claimable_amount::TEXT, quote_claimable_amount::TEXT,
		        unit_open_amount::TEXT, base_open_amount::TEXT, quote_open_amount::TEXT
		 FROM open_orders WHERE id = $1`, id).
		Scan(&o.ID, &o.Book, &o.Tick, &n[0], &n[1], &owner, &o.TxHash, &o.CreatedAt,
			&n[2], &n[3], &n[4],
			&n[5], &n[6], &n[7],
			&n[8], &n[9], &n[10],
			&n[11], &n[12], &n[13],
			&n[14], &n[15], &n[16])
	if err != nil {
		return nil, notFound(err)
	}
	o.Owner = common.HexToAddress(owner)
	o.OrderIndex = parseBig(n[0])
	o.Price = parseBig(n[1])
	o.UnitAmount, o.BaseAmount, o.QuoteAmount = parseBig(n[2]), parseBig(n[3]), parseBig(n[4])
	o.UnitFilledAmount, o.BaseFilledAmount, o.QuoteFilledAmount = parseBig(n[5]), parseBig(n[6]), parseBig(n[7])
	o.UnitClaimedAmount, o.BaseClaimedAmount, o.QuoteClaimedAmount = parseBig(n[8]), parseBig(n[9]), parseBig(n[10])
	o.UnitClaimableAmount, o.BaseClaimableAmount, o.QuoteClaimableAmount = parseBig(n[11]), parseBig(n[12]), parseBig(n[13])
	o.UnitOpenAmount, o.BaseOpenAmount, o.QuoteOpenAmount = parseBig(n[14]), parseBig(n[15]), parseBig(n[16])
	return &o, nil
}

func (s *PostgresStore) PutOpenOrder(ctx context.Context, o *model.OpenOrder) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO open_orders (
		   id, book, tick, order_index, price, owner, tx_hash, created_at,
		   unit_amount, base_amount, quote_amount,
		   unit_filled_amount, base_filled_amount, quote_filled_amount,
		   unit_claimed_amount, base_claimed_amount, quote_claimed_amount,
		   unit_claimable_amount, base_claimable_amount, quote_claimable_amount,
		   unit_open_amount, base_open_amount, quote_open_amount)
		 VALUES ($1, $2, $3, $4::NUMERIC, $5::NUMERIC, $6, $7, $8,
		         $9::NUMERIC, $10::NUMERIC, $11::NUMERIC,
		         $12::NUMERIC, $13::NUMERIC, $14::NUMERIC,
		         $15::NUMERIC, $16::NUMERIC, $17::NUMERIC,
		         $18::NUMERIC, $19::NUMERIC, $20::NUMERIC,
		         $21::NUMERIC, $22::NUMERIC, $23::NUMERIC)
		 ON CONFLICT (id) DO UPDATE SET
		   owner = $6,
		   unit_amount = $9::NUMERIC, base_amount = $10::NUMERIC, quote_amount = $11::NUMERIC,
		   unit_filled_amount = $12::NUMERIC, base_filled_amount = $13::NUMERIC, quote_filled_amount = $14::NUMERIC,
		   unit_claimed_amount = $15::NUMERIC, base_claimed_amount = $16::NUMERIC, quote_claimed_amount = $17::NUMERIC,
		   unit_claimable_amount = $18::NUMERIC, base_claimable_amount = $19::NUMERIC, quote_claimable_amount = $20::NUMERIC,
		   unit_open_amount = $21::NUMERIC, base_open_amount = $22::NUMERIC, quote_open_amount = $23::NUMERIC`,
		o.ID, o.Book, o.Tick, bigStr(o.OrderIndex), bigStr(o.Price),
		o.Owner.Hex(), o.TxHash, o.CreatedAt,
		bigStr(o.UnitAmount), bigStr(o.BaseAmount), bigStr(o.QuoteAmount),
		bigStr(o.UnitFilledAmount), bigStr(o.BaseFilledAmount), bigStr(o.QuoteFilledAmount),
		bigStr(o.UnitClaimedAmount), bigStr(o.BaseClaimedAmount), bigStr(o.QuoteClaimedAmount),
		bigStr(o.UnitClaimableAmount), bigStr(o.BaseClaimableAmount), bigStr(o.QuoteClaimableAmount),
		bigStr(o.UnitOpenAmount), bigStr(o.BaseOpenAmount), bigStr(o.QuoteOpenAmount))
	return err
}

func (s *PostgresStore) DeleteOpenOrder(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM open_orders WHERE id = $1`, id)
	return err
}

func (s *PostgresStore) GetChartLog(ctx context.Context, id string) (*model.ChartLog, error) {
	var c model.ChartLog
	var open, high, low, cls, vol, bidVol, askVol string
	err := s.pool.QueryRow(ctx,
		`SELECT id, market_code, interval_type, ts,
		        open::TEXT, high::TEXT, low::TEXT, close::TEXT,
		        base_volume::TEXT, bid_book_base_volume::TEXT, ask_book_base_volume::TEXT
		 FROM chart_logs WHERE id = $1`, id).
		Scan(&c.ID, &c.MarketCode, &c.IntervalType, &c.Timestamp,
			&open, &high, &low, &cls, &vol, &bidVol, &askVol)
	if err != nil {
		return nil, notFound(err)
	}
	c.Open, c.High, c.Low, c.Close = parseDec(open), parseDec(high), parseDec(low), parseDec(cls)
	c.BaseVolume, c.BidBookBaseVolume, c.AskBookBaseVolume = parseDec(vol), parseDec(bidVol), parseDec(askVol)
	return &c, nil
}

func (s *PostgresStore) PutChartLog(ctx context.Context, c *model.ChartLog) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO chart_logs (id, market_code, interval_type, ts,
		                         open, high, low, close,
		                         base_volume, bid_book_base_volume, ask_book_base_volume)
		 VALUES ($1, $2, $3, $4, $5::NUMERIC, $6::NUMERIC, $7::NUMERIC, $8::NUMERIC,
		         $9::NUMERIC, $10::NUMERIC, $11::NUMERIC)
		 ON CONFLICT (id) DO UPDATE SET
		   open = $5::NUMERIC, high = $6::NUMERIC, low = $7::NUMERIC, close = $8::NUMERIC,
		   base_volume = $9::NUMERIC, bid_book_base_volume = $10::NUMERIC,
		   ask_book_base_volume = $11::NUMERIC`,
		c.ID, c.MarketCode, c.IntervalType, c.Timestamp,
		c.Open.String(), c.High.String(), c.Low.String(), c.Close.String(),
		c.BaseVolume.String(), c.BidBookBaseVolume.String(), c.AskBookBaseVolume.String())
	return err
}

func (s *PostgresStore) GetPoolVolume(ctx context.Context, id string) (*model.PoolVolume, error) {
	var v model.PoolVolume
	var n [6]string
	err := s.pool.QueryRow(ctx,
		`SELECT id, pool_key, interval_type, ts,
		        currency_a_volume::TEXT, currency_b_volume::TEXT,
		        book_a_currency_a_volume::TEXT, book_a_currency_b_volume::TEXT,
		        book_b_currency_a_volume::TEXT, book_b_currency_b_volume::TEXT
		 FROM pool_volumes WHERE id = $1`, id).
		Scan(&v.ID, &v.PoolKey, &v.IntervalType, &v.Timestamp,
			&n[0], &n[1], &n[2], &n[3], &n[4], &n[5])
	if err != nil {
		return nil, notFound(err)
	}
	v.CurrencyAVolume, v.CurrencyBVolume = parseBig(n[0]), parseBig(n[1])
	v.BookACurrencyAVolume, v.BookACurrencyBVolume = parseBig(n[2]), parseBig(n[3])
	v.BookBCurrencyAVolume, v.BookBCurrencyBVolume = parseBig(n[4]), parseBig(n[5])
	return &v, nil
}

func (s *PostgresStore) PutPoolVolume(ctx context.Context, v *model.PoolVolume) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO pool_volumes (id, pool_key, interval_type, ts,
		                           currency_a_volume, currency_b_volume,
		                           book_a_currency_a_volume, book_a_currency_b_volume,
		                           book_b_currency_a_volume, book_b_currency_b_volume)
		 VALUES ($1, $2, $3, $4, $5::NUMERIC, $6::NUMERIC,
		         $7::NUMERIC, $8::NUMERIC, $9::NUMERIC, $10::NUMERIC)
		 ON CONFLICT (id) DO UPDATE SET
		   currency_a_volume = $5::NUMERIC, currency_b_volume = $6::NUMERIC,
		   book_a_currency_a_volume = $7::NUMERIC, book_a_currency_b_volume = $8::NUMERIC,
		   book_b_currency_a_volume = $9::NUMERIC, book_b_currency_b_volume = $10::NUMERIC`,
		v.ID, v.PoolKey, v.IntervalType, v.Timestamp,
		bigStr(v.CurrencyAVolume), bigStr(v.CurrencyBVolume),
		bigStr(v.BookACurrencyAVolume), bigStr(v.BookACurrencyBVolume),
		bigStr(v.BookBCurrencyAVolume), bigStr(v.BookBCurrencyBVolume))
	return err
}

func (s *PostgresStore) GetPoolSnapshot(ctx context.Context, id string) (*model.PoolSnapshot, error) {
	var snap model.PoolSnapshot
	var price, liqA, liqB, supply string
	err := s.pool.QueryRow(ctx,
		`SELECT id, pool_key, interval_type, ts,
		        price::TEXT, liquidity_a::TEXT, liquidity_b::TEXT, total_supply::TEXT
		 FROM pool_snapshots WHERE id = $1`, id).
		Scan(&snap.ID, &snap.PoolKey, &snap.IntervalType, &snap.Timestamp,
			&price, &liqA, &liqB, &supply)
	if err != nil {
		return nil, notFound(err)
	}
	snap.Price = parseBig(price)
	snap.LiquidityA = parseBig(liqA)
	snap.LiquidityB = parseBig(liqB)
	snap.TotalSupply = parseBig(supply)
	return &snap, nil
}

func (s *PostgresStore) PutPoolSnapshot(ctx context.Context, snap *model.PoolSnapshot) error {
	// Snapshots are write-once; a conflicting insert leaves the first
	// capture in place.
	_, err := s.pool.Exec(ctx,
		`INSERT INTO pool_snapshots (id, pool_key, interval_type, ts,
		                             price, liquidity_a, liquidity_b, total_supply)
		 VALUES ($1, $2, $3, $4, $5::NUMERIC, $6::NUMERIC, $7::NUMERIC, $8::NUMERIC)
		 ON CONFLICT (id) DO NOTHING`,
		snap.ID, snap.PoolKey, snap.IntervalType, snap.Timestamp,
		bigStr(snap.Price), bigStr(snap.LiquidityA), bigStr(snap.LiquidityB), bigStr(snap.TotalSupply))
	return err
}

func (s *PostgresStore) GetLatestPoolSpread(ctx context.Context) (*model.LatestPoolSpread, error) {
	var sp model.LatestPoolSpread
	var bid, ask string
	err := s.pool.QueryRow(ctx,
		`SELECT id, bid_tick, ask_tick, bid_price::TEXT, ask_price::TEXT
		 FROM latest_pool_spread WHERE id = $1`, model.LatestID).
		Scan(&sp.ID, &sp.BidTick, &sp.AskTick, &bid, &ask)
	if err != nil {
		return nil, notFound(err)
	}
	sp.BidPrice = parseDec(bid)
	sp.AskPrice = parseDec(ask)
	return &sp, nil
}

func (s *PostgresStore) PutLatestPoolSpread(ctx context.Context, sp *model.LatestPoolSpread) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO latest_pool_spread (id, bid_tick, ask_tick, bid_price, ask_price)
		 VALUES ($1, $2, $3, $4::NUMERIC, $5::NUMERIC)
		 ON CONFLICT (id) DO UPDATE SET
		   bid_tick = $2, ask_tick = $3, bid_price = $4::NUMERIC, ask_price = $5::NUMERIC`,
		model.LatestID, sp.BidTick, sp.AskTick, sp.BidPrice.String(), sp.AskPrice.String())
	return err
}

func (s *PostgresStore) GetPoolSpreadProfit(ctx context.Context, id string) (*model.PoolSpreadProfit, error) {
	var p model.PoolSpreadProfit
	var profit string
	err := s.pool.QueryRow(ctx,
		`SELECT id, interval_type, ts, accumulated_profit_in_usd::TEXT
		 FROM pool_spread_profits WHERE id = $1`, id).
		Scan(&p.ID, &p.IntervalType, &p.Timestamp, &profit)
	if err != nil {
		return nil, notFound(err)
	}
	p.AccumulatedProfitInUSD = parseDec(profit)
	return &p, nil
}

func (s *PostgresStore) PutPoolSpreadProfit(ctx context.Context, p *model.PoolSpreadProfit) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO pool_spread_profits (id, interval_type, ts, accumulated_profit_in_usd)
		 VALUES ($1, $2, $3, $4::NUMERIC)
		 ON CONFLICT (id) DO UPDATE SET accumulated_profit_in_usd = $4::NUMERIC`,
		p.ID, p.IntervalType, p.Timestamp, p.AccumulatedProfitInUSD.String())
	return err
}

func (s *PostgresStore) GetLatestBlock(ctx context.Context) (*model.LatestBlock, error) {
	var b model.LatestBlock
	err := s.pool.QueryRow(ctx,
		`SELECT id, block_number, ts FROM latest_block WHERE id = $1`, model.LatestID).
		Scan(&b.ID, &b.BlockNumber, &b.Timestamp)
	if err != nil {
		return nil, notFound(err)
	}
	return &b, nil
}

func (s *PostgresStore) PutLatestBlock(ctx context.Context, b *model.LatestBlock) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO latest_block (id, block_number, ts) VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO UPDATE SET block_number = $2, ts = $3`,
		model.LatestID, b.BlockNumber, b.Timestamp)
	return err
}
