// Package engine drives the indexer: it pulls events off a feed source and
// dispatches them to the book and pool handlers, strictly one at a time in
// feed order. There is no concurrency in the processing path; determinism
// of the reconstructed state depends on it.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/openclob/book-indexer/internal/book"
	"github.com/openclob/book-indexer/internal/feed"
	"github.com/openclob/book-indexer/internal/metrics"
	"github.com/openclob/book-indexer/internal/model"
	"github.com/openclob/book-indexer/internal/pool"
	"github.com/openclob/book-indexer/internal/store"
)

// Engine routes feed events to their handlers.
type Engine struct {
	books *book.Handler
	pools *pool.Handler
	store store.Store
}

// New wires the dispatcher.
func New(books *book.Handler, pools *pool.Handler, st store.Store) *Engine {
	return &Engine{books: books, pools: pools, store: st}
}

// Process applies one event. Store I/O failures are the only errors that
// come back; stream-level faults are logged and absorbed by the handlers.
func (e *Engine) Process(ctx context.Context, ev feed.Event) error {
	start := time.Now()
	defer metrics.ObserveEvent(ev.Type(), start)

	switch ev := ev.(type) {
	case *feed.BlockEvent:
		metrics.BlocksProcessed.Set(float64(ev.Number))
		return e.store.PutLatestBlock(ctx, &model.LatestBlock{
			ID:          model.LatestID,
			BlockNumber: ev.Number,
			Timestamp:   ev.Timestamp,
		})
	case *feed.OpenEvent:
		return e.books.HandleOpen(ctx, ev)
	case *feed.MakeEvent:
		return e.books.HandleMake(ctx, ev)
	case *feed.TakeEvent:
		return e.books.HandleTake(ctx, ev)
	case *feed.CancelEvent:
		return e.books.HandleCancel(ctx, ev)
	case *feed.ClaimEvent:
		return e.books.HandleClaim(ctx, ev)
	case *feed.TransferEvent:
		return e.books.HandleTransfer(ctx, ev)
	case *feed.RebalancerClaimEvent:
		return e.pools.HandleRebalancerClaim(ctx, ev)
	case *feed.UpdatePositionEvent:
		return e.pools.HandleUpdatePosition(ctx, ev)
	default:
		slog.Warn("unhandled event type", "type", ev.Type())
		return nil
	}
}

// Run consumes the source until it is exhausted or the context ends.
// A store failure stops the run: continuing past a dropped write would
// leave the reconstructed state silently wrong.
func (e *Engine) Run(ctx context.Context, src feed.Source) error {
	for {
		ev, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			slog.Info("feed exhausted")
			return nil
		}
		if err != nil {
			return fmt.Errorf("engine: next event: %w", err)
		}
		if err := e.Process(ctx, ev); err != nil {
			metrics.StoreErrors.Inc()
			return fmt.Errorf("engine: process %s event: %w", ev.Type(), err)
		}
	}
}
