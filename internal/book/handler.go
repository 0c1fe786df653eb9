// Package book reconstructs order-book state from the exchange event feed:
// the per-level depth ledger, per-order fill and claim bookkeeping, the
// FIFO fill allocator, and the OHLC chart aggregation driven by takes.
//
// Faults never abort the run. A missing referenced entity logs and skips
// the rest of that event; an amount going negative logs the anomaly and
// keeps the value. Only store I/O failures propagate to the caller.
package book

import (
	"context"
	"errors"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/openclob/book-indexer/internal/chain"
	"github.com/openclob/book-indexer/internal/feed"
	"github.com/openclob/book-indexer/internal/metrics"
	"github.com/openclob/book-indexer/internal/model"
	"github.com/openclob/book-indexer/internal/orderid"
	"github.com/openclob/book-indexer/internal/pricing"
	"github.com/openclob/book-indexer/internal/store"
)

// Handler processes book-manager events. One instance handles the whole
// feed; processing is single-threaded and event-at-a-time.
type Handler struct {
	store      store.Store
	oracle     pricing.Oracle
	tokens     chain.TokenSource
	rebalancer common.Address
}

// NewHandler wires the book event handlers.
func NewHandler(st store.Store, oracle pricing.Oracle, tokens chain.TokenSource, rebalancer common.Address) *Handler {
	return &Handler{store: st, oracle: oracle, tokens: tokens, rebalancer: rebalancer}
}

// ensureToken loads a token record, creating it from the metadata source on
// first sight.
func (h *Handler) ensureToken(ctx context.Context, addr common.Address) (*model.Token, error) {
	t, err := h.store.GetToken(ctx, model.AddressID(addr))
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	created := h.tokens.TokenMetadata(addr)
	if err := h.store.PutToken(ctx, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// loadPair fetches the base and quote token records of a book.
func (h *Handler) loadPair(ctx context.Context, b *model.Book) (base, quote *model.Token, err error) {
	base, err = h.store.GetToken(ctx, b.Base)
	if err != nil {
		return nil, nil, err
	}
	quote, err = h.store.GetToken(ctx, b.Quote)
	if err != nil {
		return nil, nil, err
	}
	return base, quote, nil
}

// HandleOpen creates the book and its token records.
func (h *Handler) HandleOpen(ctx context.Context, ev *feed.OpenEvent) error {
	base, err := h.ensureToken(ctx, ev.Base)
	if err != nil {
		return err
	}
	quote, err := h.ensureToken(ctx, ev.Quote)
	if err != nil {
		return err
	}

	b := &model.Book{
		ID:          ev.BookID.String(),
		Base:        base.ID,
		Quote:       quote.ID,
		UnitSize:    ev.UnitSize,
		MakerPolicy: ev.MakerPolicy,
		TakerPolicy: ev.TakerPolicy,
		Hooks:       ev.Hooks,
		LatestPrice: new(big.Int),
	}
	return h.store.PutBook(ctx, b)
}

// HandleMake records a new resting order: the OpenOrder entity, the level's
// Depth aggregate, and (for rebalancer orders) the latest pool spread.
func (h *Handler) HandleMake(ctx context.Context, ev *feed.MakeEvent) error {
	b, err := h.store.GetBook(ctx, ev.BookID.String())
	if errors.Is(err, store.ErrNotFound) {
		slog.Error("make: book not found", "book", ev.BookID.String())
		metrics.MissingEntity.WithLabelValues("book").Inc()
		return nil
	}
	if err != nil {
		return err
	}

	price := h.oracle.TickToPrice(ev.Tick)
	baseAmount := pricing.UnitToBase(b.UnitSize, ev.Unit, price)
	quoteAmount := pricing.UnitToQuote(b.UnitSize, ev.Unit)
	id := orderid.Encode(ev.BookID, ev.Tick, ev.OrderIndex)

	o := &model.OpenOrder{
		ID:         id.String(),
		Book:       b.ID,
		Tick:       ev.Tick,
		OrderIndex: ev.OrderIndex,
		Price:      price,
		Owner:      ev.User,
		TxHash:     ev.TxHash.Hex(),
		CreatedAt:  ev.Timestamp,

		UnitAmount:  ev.Unit,
		BaseAmount:  baseAmount,
		QuoteAmount: quoteAmount,

		UnitFilledAmount:  new(big.Int),
		BaseFilledAmount:  new(big.Int),
		QuoteFilledAmount: new(big.Int),

		UnitClaimedAmount:  new(big.Int),
		BaseClaimedAmount:  new(big.Int),
		QuoteClaimedAmount: new(big.Int),

		UnitClaimableAmount:  new(big.Int),
		BaseClaimableAmount:  new(big.Int),
		QuoteClaimableAmount: new(big.Int),

		UnitOpenAmount:  ev.Unit,
		BaseOpenAmount:  baseAmount,
		QuoteOpenAmount: quoteAmount,
	}
	if err := h.store.PutOpenOrder(ctx, o); err != nil {
		return err
	}

	depthID := model.DepthID(b.ID, ev.Tick)
	depth, err := h.store.GetDepth(ctx, depthID)
	if errors.Is(err, store.ErrNotFound) {
		depth = &model.Depth{
			ID:          depthID,
			Book:        b.ID,
			Tick:        ev.Tick,
			Price:       price,
			UnitAmount:  new(big.Int),
			BaseAmount:  new(big.Int),
			QuoteAmount: new(big.Int),
		}
	} else if err != nil {
		return err
	}

	cursor, err := h.store.GetOrderIndex(ctx, depthID)
	if errors.Is(err, store.ErrNotFound) {
		cursor = &model.OrderIndex{
			ID:                    depthID,
			Book:                  b.ID,
			Tick:                  ev.Tick,
			Price:                 price,
			LatestTakenOrderIndex: new(big.Int),
		}
	} else if err != nil {
		return err
	}

	newUnitAmount := new(big.Int).Add(depth.UnitAmount, ev.Unit)
	depth.UnitAmount = newUnitAmount
	depth.BaseAmount = pricing.UnitToBase(b.UnitSize, newUnitAmount, price)
	depth.QuoteAmount = pricing.UnitToQuote(b.UnitSize, newUnitAmount)

	if ev.User == h.rebalancer {
		if err := h.recordPoolSpread(ctx, b, ev.Tick, price); err != nil {
			return err
		}
	}

	if err := h.store.PutDepth(ctx, depth); err != nil {
		return err
	}
	return h.store.PutOrderIndex(ctx, cursor)
}

// recordPoolSpread tracks the rebalancer's latest quoted bid or ask.
// Non-positive ticks quote the bid side, positive ticks the ask side;
// sides update independently and the last write wins.
func (h *Handler) recordPoolSpread(ctx context.Context, b *model.Book, tick int32, price *big.Int) error {
	base, quote, err := h.loadPair(ctx, b)
	if errors.Is(err, store.ErrNotFound) {
		slog.Error("make: token not found for spread", "book", b.ID)
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

	if tick <= 0 {
		spread.BidTick = tick
		spread.BidPrice = pricing.FormatPrice(price, base.Decimals, quote.Decimals)
	} else {
		spread.AskTick = tick
		spread.AskPrice = pricing.FormatInvertedPrice(price, base.Decimals, quote.Decimals)
	}
	return h.store.PutLatestPoolSpread(ctx, spread)
}

// HandleTake applies a match: the book's latest-trade cache, the depth
// ledger, FIFO fill allocation across resting orders, and the chart bars.
func (h *Handler) HandleTake(ctx context.Context, ev *feed.TakeEvent) error {
	if ev.Unit.Sign() == 0 {
		return nil
	}

	b, err := h.store.GetBook(ctx, ev.BookID.String())
	if errors.Is(err, store.ErrNotFound) {
		slog.Error("take: book not found", "book", ev.BookID.String())
		metrics.MissingEntity.WithLabelValues("book").Inc()
		return nil
	}
	if err != nil {
		return err
	}

	price := h.oracle.TickToPrice(ev.Tick)
	b.LatestTick = ev.Tick
	b.LatestPrice = price
	b.LatestTimestamp = ev.Timestamp
	if err := h.store.PutBook(ctx, b); err != nil {
		return err
	}

	depthID := model.DepthID(b.ID, ev.Tick)
	depth, derr := h.store.GetDepth(ctx, depthID)
	cursor, cerr := h.store.GetOrderIndex(ctx, depthID)
	if errors.Is(derr, store.ErrNotFound) || errors.Is(cerr, store.ErrNotFound) {
		slog.Error("take: depth or cursor not found", "id", depthID)
		metrics.MissingEntity.WithLabelValues("depth").Inc()
		return nil
	}
	if derr != nil {
		return derr
	}
	if cerr != nil {
		return cerr
	}

	newUnitAmount := new(big.Int).Sub(depth.UnitAmount, ev.Unit)
	depth.UnitAmount = newUnitAmount
	depth.BaseAmount = pricing.UnitToBase(b.UnitSize, newUnitAmount, price)
	depth.QuoteAmount = pricing.UnitToQuote(b.UnitSize, newUnitAmount)
	if newUnitAmount.Sign() < 0 {
		slog.Error("take: negative depth unit amount", "id", depthID, "unit", newUnitAmount.String())
		metrics.Anomalies.WithLabelValues("negative_depth").Inc()
	}

	if err := h.allocateFill(ctx, b, ev.BookID, ev.Tick, cursor, ev.Unit); err != nil {
		return err
	}

	if err := h.updateCharts(ctx, b, ev.Tick, price, ev.Unit, ev.Timestamp); err != nil {
		return err
	}

	if depth.UnitAmount.Sign() == 0 {
		return h.store.DeleteDepth(ctx, depthID)
	}
	return h.store.PutDepth(ctx, depth)
}

// allocateFill distributes a matched quantity across resting orders in
// strict price-time priority, starting at the FIFO cursor. Vacated slots
// (orders already fully resolved and removed) advance the cursor without
// consuming anything. A partially filled order stays at the head; the
// cursor only moves past orders filled to completion.
//
// Termination relies on the caller-side invariant that the taken quantity
// never exceeds the level's true resting liquidity.
func (h *Handler) allocateFill(ctx context.Context, b *model.Book, bookID *big.Int, tick int32, cursor *model.OrderIndex, taken *big.Int) error {
	currentIndex := new(big.Int).Set(cursor.LatestTakenOrderIndex)
	remaining := new(big.Int).Set(taken)
	one := big.NewInt(1)

	for remaining.Sign() > 0 {
		id := orderid.Encode(bookID, tick, currentIndex)
		o, err := h.store.GetOpenOrder(ctx, id.String())
		if errors.Is(err, store.ErrNotFound) {
			currentIndex.Add(currentIndex, one)
			continue
		}
		if err != nil {
			return err
		}

		orderRemaining := new(big.Int).Sub(o.UnitAmount, o.UnitFilledAmount)
		fill := remaining
		if orderRemaining.Cmp(remaining) < 0 {
			fill = orderRemaining
		}
		remaining = new(big.Int).Sub(remaining, fill)

		// Projections come from the order's own creation price, not the
		// settlement price of this take.
		newFilled := new(big.Int).Add(o.UnitFilledAmount, fill)
		o.UnitFilledAmount = newFilled
		o.BaseFilledAmount = pricing.UnitToBase(b.UnitSize, newFilled, o.Price)
		o.QuoteFilledAmount = pricing.UnitToQuote(b.UnitSize, newFilled)

		newClaimable := new(big.Int).Add(o.UnitClaimableAmount, fill)
		o.UnitClaimableAmount = newClaimable
		o.BaseClaimableAmount = pricing.UnitToBase(b.UnitSize, newClaimable, o.Price)
		o.QuoteClaimableAmount = pricing.UnitToQuote(b.UnitSize, newClaimable)

		newOpen := new(big.Int).Sub(o.UnitOpenAmount, fill)
		o.UnitOpenAmount = newOpen
		o.BaseOpenAmount = pricing.UnitToBase(b.UnitSize, newOpen, o.Price)
		o.QuoteOpenAmount = pricing.UnitToQuote(b.UnitSize, newOpen)
		if newOpen.Sign() < 0 {
			slog.Error("take: negative open unit amount", "order", o.ID, "unit", newOpen.String())
			metrics.Anomalies.WithLabelValues("negative_open").Inc()
		}

		if err := h.store.PutOpenOrder(ctx, o); err != nil {
			return err
		}

		if o.UnitAmount.Cmp(o.UnitFilledAmount) == 0 {
			currentIndex.Add(currentIndex, one)
		}
	}

	cursor.LatestTakenOrderIndex = currentIndex
	return h.store.PutOrderIndex(ctx, cursor)
}

// HandleCancel removes quantity from a resting order and its price level.
func (h *Handler) HandleCancel(ctx context.Context, ev *feed.CancelEvent) error {
	if ev.Unit.Sign() == 0 {
		return nil
	}

	bookID := orderid.DecodeBookID(ev.OrderID).String()
	b, berr := h.store.GetBook(ctx, bookID)
	o, oerr := h.store.GetOpenOrder(ctx, ev.OrderID.String())
	if errors.Is(berr, store.ErrNotFound) || errors.Is(oerr, store.ErrNotFound) {
		slog.Error("cancel: book or order not found", "book", bookID, "order", ev.OrderID.String())
		metrics.MissingEntity.WithLabelValues("order").Inc()
		return nil
	}
	if berr != nil {
		return berr
	}
	if oerr != nil {
		return oerr
	}

	newUnitAmount := new(big.Int).Sub(o.UnitAmount, ev.Unit)
	o.UnitAmount = newUnitAmount
	o.BaseAmount = pricing.UnitToBase(b.UnitSize, newUnitAmount, o.Price)
	o.QuoteAmount = pricing.UnitToQuote(b.UnitSize, newUnitAmount)
	if newUnitAmount.Sign() < 0 {
		slog.Error("cancel: negative unit amount", "order", o.ID, "unit", newUnitAmount.String())
		metrics.Anomalies.WithLabelValues("negative_committed").Inc()
	}

	newOpenAmount := new(big.Int).Sub(o.UnitOpenAmount, ev.Unit)
	o.UnitOpenAmount = newOpenAmount
	o.BaseOpenAmount = pricing.UnitToBase(b.UnitSize, newOpenAmount, o.Price)
	o.QuoteOpenAmount = pricing.UnitToQuote(b.UnitSize, newOpenAmount)
	if newOpenAmount.Sign() < 0 {
		slog.Error("cancel: negative open unit amount", "order", o.ID, "unit", newOpenAmount.String())
		metrics.Anomalies.WithLabelValues("negative_open").Inc()
	}

	depthID := model.DepthID(b.ID, o.Tick)
	depth, err := h.store.GetDepth(ctx, depthID)
	if errors.Is(err, store.ErrNotFound) {
		slog.Error("cancel: depth not found", "id", depthID)
		metrics.MissingEntity.WithLabelValues("depth").Inc()
		return nil
	}
	if err != nil {
		return err
	}

	newDepthAmount := new(big.Int).Sub(depth.UnitAmount, ev.Unit)
	depth.UnitAmount = newDepthAmount
	depth.BaseAmount = pricing.UnitToBase(b.UnitSize, newDepthAmount, o.Price)
	depth.QuoteAmount = pricing.UnitToQuote(b.UnitSize, newDepthAmount)
	if newDepthAmount.Sign() < 0 {
		slog.Error("cancel: negative depth unit amount", "id", depthID, "unit", newDepthAmount.String())
		metrics.Anomalies.WithLabelValues("negative_depth").Inc()
	}

	if o.PendingUnitAmount().Sign() == 0 {
		if err := h.store.DeleteOpenOrder(ctx, o.ID); err != nil {
			return err
		}
	} else if err := h.store.PutOpenOrder(ctx, o); err != nil {
		return err
	}

	if newDepthAmount.Sign() == 0 {
		return h.store.DeleteDepth(ctx, depthID)
	}
	return h.store.PutDepth(ctx, depth)
}

// HandleClaim moves matched quantity from claimable to claimed and, for the
// rebalancer's own orders, accrues spread-capture profit.
func (h *Handler) HandleClaim(ctx context.Context, ev *feed.ClaimEvent) error {
	if ev.Unit.Sign() == 0 {
		return nil
	}

	bookID := orderid.DecodeBookID(ev.OrderID).String()
	b, berr := h.store.GetBook(ctx, bookID)
	o, oerr := h.store.GetOpenOrder(ctx, ev.OrderID.String())
	if errors.Is(berr, store.ErrNotFound) || errors.Is(oerr, store.ErrNotFound) {
		slog.Error("claim: book or order not found", "book", bookID, "order", ev.OrderID.String())
		metrics.MissingEntity.WithLabelValues("order").Inc()
		return nil
	}
	if berr != nil {
		return berr
	}
	if oerr != nil {
		return oerr
	}

	newClaimed := new(big.Int).Add(o.UnitClaimedAmount, ev.Unit)
	o.UnitClaimedAmount = newClaimed
	o.BaseClaimedAmount = pricing.UnitToBase(b.UnitSize, newClaimed, o.Price)
	o.QuoteClaimedAmount = pricing.UnitToQuote(b.UnitSize, newClaimed)

	newClaimable := new(big.Int).Sub(o.UnitClaimableAmount, ev.Unit)
	o.UnitClaimableAmount = newClaimable
	o.BaseClaimableAmount = pricing.UnitToBase(b.UnitSize, newClaimable, o.Price)
	o.QuoteClaimableAmount = pricing.UnitToQuote(b.UnitSize, newClaimable)
	if newClaimable.Sign() < 0 {
		slog.Error("claim: negative claimable unit amount", "order", o.ID, "unit", newClaimable.String())
		metrics.Anomalies.WithLabelValues("negative_claimable").Inc()
	}

	if o.Owner == h.rebalancer {
		if err := h.accrueSpreadProfit(ctx, b, o, ev.Unit, ev.Timestamp); err != nil {
			return err
		}
	}

	if o.PendingUnitAmount().Sign() == 0 {
		return h.store.DeleteOpenOrder(ctx, o.ID)
	}
	return h.store.PutOpenOrder(ctx, o)
}

// HandleTransfer rewrites an order's owner. Mints and burns are handled by
// the make, cancel, and claim paths and are skipped here.
func (h *Handler) HandleTransfer(ctx context.Context, ev *feed.TransferEvent) error {
	zero := common.Address{}
	if ev.From == zero || ev.To == zero {
		return nil
	}

	o, err := h.store.GetOpenOrder(ctx, ev.TokenID.String())
	if errors.Is(err, store.ErrNotFound) {
		slog.Error("transfer: order not found", "order", ev.TokenID.String())
		metrics.MissingEntity.WithLabelValues("order").Inc()
		return nil
	}
	if err != nil {
		return err
	}

	o.Owner = ev.To
	return h.store.PutOpenOrder(ctx, o)
}
