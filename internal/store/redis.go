package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/openclob/book-indexer/internal/model"
)

// CachedStore wraps a primary Store (PostgreSQL) with a Redis read-through
// cache for the entities the event handlers hit on nearly every event:
// books, tokens, depths, cursors, open orders, and the spread singleton.
// Writes go to the primary store and refresh or drop the cached copy.
// Chart and pool aggregates pass through uncached (each bucket is touched
// by a burst of writes, rarely re-read across events).
type CachedStore struct {
	primary Store
	rdb     *redis.Client
	ttl     time.Duration
}

// NewCachedStore creates a cached wrapper around a primary store.
func NewCachedStore(primary Store, rdb *redis.Client, ttl time.Duration) *CachedStore {
	return &CachedStore{primary: primary, rdb: rdb, ttl: ttl}
}

func cacheKey(kind, id string) string { return "idx:" + kind + ":" + id }

func getCached[T any](ctx context.Context, s *CachedStore, kind, id string,
	load func(context.Context, string) (*T, error)) (*T, error) {

	data, err := s.rdb.Get(ctx, cacheKey(kind, id)).Bytes()
	if err == nil {
		var v T
		if json.Unmarshal(data, &v) == nil {
			return &v, nil
		}
	}

	v, err := load(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache(ctx, kind, id, v)
	return v, nil
}

func (s *CachedStore) cache(ctx context.Context, kind, id string, v any) {
	if data, err := json.Marshal(v); err == nil {
		s.rdb.Set(ctx, cacheKey(kind, id), data, s.ttl)
	}
}

func (s *CachedStore) drop(ctx context.Context, kind, id string) {
	s.rdb.Del(ctx, cacheKey(kind, id))
}

// --- Cached entities ---

func (s *CachedStore) GetToken(ctx context.Context, id string) (*model.Token, error) {
	return getCached(ctx, s, "token", id, s.primary.GetToken)
}

func (s *CachedStore) PutToken(ctx context.Context, t *model.Token) error {
	if err := s.primary.PutToken(ctx, t); err != nil {
		return err
	}
	s.cache(ctx, "token", t.ID, t)
	return nil
}

func (s *CachedStore) GetBook(ctx context.Context, id string) (*model.Book, error) {
	return getCached(ctx, s, "book", id, s.primary.GetBook)
}

func (s *CachedStore) PutBook(ctx context.Context, b *model.Book) error {
	if err := s.primary.PutBook(ctx, b); err != nil {
		return err
	}
	s.cache(ctx, "book", b.ID, b)
	return nil
}

func (s *CachedStore) GetDepth(ctx context.Context, id string) (*model.Depth, error) {
	return getCached(ctx, s, "depth", id, s.primary.GetDepth)
}

func (s *CachedStore) PutDepth(ctx context.Context, d *model.Depth) error {
	if err := s.primary.PutDepth(ctx, d); err != nil {
		return err
	}
	s.cache(ctx, "depth", d.ID, d)
	return nil
}

func (s *CachedStore) DeleteDepth(ctx context.Context, id string) error {
	if err := s.primary.DeleteDepth(ctx, id); err != nil {
		return err
	}
	s.drop(ctx, "depth", id)
	return nil
}

func (s *CachedStore) GetOrderIndex(ctx context.Context, id string) (*model.OrderIndex, error) {
	return getCached(ctx, s, "orderindex", id, s.primary.GetOrderIndex)
}

func (s *CachedStore) PutOrderIndex(ctx context.Context, oi *model.OrderIndex) error {
	if err := s.primary.PutOrderIndex(ctx, oi); err != nil {
		return err
	}
	s.cache(ctx, "orderindex", oi.ID, oi)
	return nil
}

func (s *CachedStore) GetOpenOrder(ctx context.Context, id string) (*model.OpenOrder, error) {
	return getCached(ctx, s, "order", id, s.primary.GetOpenOrder)
}

func (s *CachedStore) PutOpenOrder(ctx context.Context, o *model.OpenOrder) error {
	if err := s.primary.PutOpenOrder(ctx, o); err != nil {
		return err
	}
	s.cache(ctx, "order", o.ID, o)
	return nil
}

func (s *CachedStore) DeleteOpenOrder(ctx context.Context, id string) error {
	if err := s.primary.DeleteOpenOrder(ctx, id); err != nil {
		return err
	}
	s.drop(ctx, "order", id)
	return nil
}

func (s *CachedStore) GetLatestPoolSpread(ctx context.Context) (*model.LatestPoolSpread, error) {
	return getCached(ctx, s, "spread", model.LatestID,
		func(ctx context.Context, _ string) (*model.LatestPoolSpread, error) {
			return s.primary.GetLatestPoolSpread(ctx)
		})
}

func (s *CachedStore) PutLatestPoolSpread(ctx context.Context, sp *model.LatestPoolSpread) error {
	if err := s.primary.PutLatestPoolSpread(ctx, sp); err != nil {
		return err
	}
	s.cache(ctx, "spread", model.LatestID, sp)
	return nil
}

// --- Passthrough (not cached) ---

func (s *CachedStore) GetChartLog(ctx context.Context, id string) (*model.ChartLog, error) {
	return s.primary.GetChartLog(ctx, id)
}

func (s *CachedStore) PutChartLog(ctx context.Context, c *model.ChartLog) error {
	return s.primary.PutChartLog(ctx, c)
}

func (s *CachedStore) GetPoolVolume(ctx context.Context, id string) (*model.PoolVolume, error) {
	return s.primary.GetPoolVolume(ctx, id)
}

func (s *CachedStore) PutPoolVolume(ctx context.Context, v *model.PoolVolume) error {
	return s.primary.PutPoolVolume(ctx, v)
}

func (s *CachedStore) GetPoolSnapshot(ctx context.Context, id string) (*model.PoolSnapshot, error) {
	return s.primary.GetPoolSnapshot(ctx, id)
}

func (s *CachedStore) PutPoolSnapshot(ctx context.Context, snap *model.PoolSnapshot) error {
	return s.primary.PutPoolSnapshot(ctx, snap)
}

func (s *CachedStore) GetPoolSpreadProfit(ctx context.Context, id string) (*model.PoolSpreadProfit, error) {
	return s.primary.GetPoolSpreadProfit(ctx, id)
}

func (s *CachedStore) PutPoolSpreadProfit(ctx context.Context, p *model.PoolSpreadProfit) error {
	return s.primary.PutPoolSpreadProfit(ctx, p)
}

func (s *CachedStore) GetLatestBlock(ctx context.Context) (*model.LatestBlock, error) {
	return s.primary.GetLatestBlock(ctx)
}

func (s *CachedStore) PutLatestBlock(ctx context.Context, b *model.LatestBlock) error {
	return s.primary.PutLatestBlock(ctx, b)
}
