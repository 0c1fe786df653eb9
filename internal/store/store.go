// Package store defines the entity persistence interface for the indexer.
// Implementations include PostgreSQL (source of truth), Redis (read-through
// cache), and in-memory (for testing and replays).
package store

import (
	"context"
	"errors"

	"github.com/openclob/book-indexer/internal/model"
)

// ErrNotFound is returned by every Get when no record exists. Handlers
// translate it into the event-scoped "log and skip" fault path.
var ErrNotFound = errors.New("store: entity not found")

// Store is the persistence interface. All reads must observe earlier writes
// within the same event: the engine is single-threaded and read-your-writes
// is assumed.
type Store interface {
	// --- Tokens and books ---

	GetToken(ctx context.Context, id string) (*model.Token, error)
	PutToken(ctx context.Context, t *model.Token) error

	GetBook(ctx context.Context, id string) (*model.Book, error)
	PutBook(ctx context.Context, b *model.Book) error

	// --- Price levels ---

	GetDepth(ctx context.Context, id string) (*model.Depth, error)
	PutDepth(ctx context.Context, d *model.Depth) error
	DeleteDepth(ctx context.Context, id string) error

	GetOrderIndex(ctx context.Context, id string) (*model.OrderIndex, error)
	PutOrderIndex(ctx context.Context, oi *model.OrderIndex) error

	// --- Orders ---

	GetOpenOrder(ctx context.Context, id string) (*model.OpenOrder, error)
	PutOpenOrder(ctx context.Context, o *model.OpenOrder) error
	DeleteOpenOrder(ctx context.Context, id string) error

	// --- Chart and pool aggregates ---

	GetChartLog(ctx context.Context, id string) (*model.ChartLog, error)
	PutChartLog(ctx context.Context, c *model.ChartLog) error

	GetPoolVolume(ctx context.Context, id string) (*model.PoolVolume, error)
	PutPoolVolume(ctx context.Context, v *model.PoolVolume) error

	GetPoolSnapshot(ctx context.Context, id string) (*model.PoolSnapshot, error)
	PutPoolSnapshot(ctx context.Context, s *model.PoolSnapshot) error

	GetLatestPoolSpread(ctx context.Context) (*model.LatestPoolSpread, error)
	PutLatestPoolSpread(ctx context.Context, s *model.LatestPoolSpread) error

	GetPoolSpreadProfit(ctx context.Context, id string) (*model.PoolSpreadProfit, error)
	PutPoolSpreadProfit(ctx context.Context, p *model.PoolSpreadProfit) error

	// --- Progress ---

	GetLatestBlock(ctx context.Context) (*model.LatestBlock, error)
	PutLatestBlock(ctx context.Context, b *model.LatestBlock) error
}
