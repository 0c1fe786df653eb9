package store

import (
	"context"
	"sync"

	"github.com/openclob/book-indexer/internal/model"
)

// MemoryStore implements Store with in-memory maps. Used for testing,
// replays, and development. Not suitable for production (no persistence).
//
// Structs are copied shallowly on the way in and out. Handlers never mutate
// a loaded big.Int in place (they assign fresh values), so the stored copy
// stays isolated.
type MemoryStore struct {
	mu            sync.RWMutex
	tokens        map[string]*model.Token
	books         map[string]*model.Book
	depths        map[string]*model.Depth
	orderIndexes  map[string]*model.OrderIndex
	openOrders    map[string]*model.OpenOrder
	chartLogs     map[string]*model.ChartLog
	poolVolumes   map[string]*model.PoolVolume
	poolSnapshots map[string]*model.PoolSnapshot
	spreadProfits map[string]*model.PoolSpreadProfit
	poolSpread    *model.LatestPoolSpread
	latestBlock   *model.LatestBlock
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tokens:        make(map[string]*model.Token),
		books:         make(map[string]*model.Book),
		depths:        make(map[string]*model.Depth),
		orderIndexes:  make(map[string]*model.OrderIndex),
		openOrders:    make(map[string]*model.OpenOrder),
		chartLogs:     make(map[string]*model.ChartLog),
		poolVolumes:   make(map[string]*model.PoolVolume),
		poolSnapshots: make(map[string]*model.PoolSnapshot),
		spreadProfits: make(map[string]*model.PoolSpreadProfit),
	}
}

func (s *MemoryStore) GetToken(_ context.Context, id string) (*model.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tokens[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *MemoryStore) PutToken(_ context.Context, t *model.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *t
	s.tokens[t.ID] = &cp
	return nil
}

func (s *MemoryStore) GetBook(_ context.Context, id string) (*model.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.books[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (s *MemoryStore) PutBook(_ context.Context, b *model.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *b
	s.books[b.ID] = &cp
	return nil
}

func (s *MemoryStore) GetDepth(_ context.Context, id string) (*model.Depth, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.depths[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (s *MemoryStore) PutDepth(_ context.Context, d *model.Depth) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *d
	s.depths[d.ID] = &cp
	return nil
}

func (s *MemoryStore) DeleteDepth(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.depths, id)
	return nil
}

func (s *MemoryStore) GetOrderIndex(_ context.Context, id string) (*model.OrderIndex, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	oi, ok := s.orderIndexes[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *oi
	return &cp, nil
}

func (s *MemoryStore) PutOrderIndex(_ context.Context, oi *model.OrderIndex) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *oi
	s.orderIndexes[oi.ID] = &cp
	return nil
}

func (s *MemoryStore) GetOpenOrder(_ context.Context, id string) (*model.OpenOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.openOrders[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (s *MemoryStore) PutOpenOrder(_ context.Context, o *model.OpenOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *o
	s.openOrders[o.ID] = &cp
	return nil
}

func (s *MemoryStore) DeleteOpenOrder(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.openOrders, id)
	return nil
}

func (s *MemoryStore) GetChartLog(_ context.Context, id string) (*model.ChartLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.chartLogs[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *MemoryStore) PutChartLog(_ context.Context, c *model.ChartLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *c
	s.chartLogs[c.ID] = &cp
	return nil
}

func (s *MemoryStore) GetPoolVolume(_ context.Context, id string) (*model.PoolVolume, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.poolVolumes[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (s *MemoryStore) PutPoolVolume(_ context.Context, v *model.PoolVolume) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *v
	s.poolVolumes[v.ID] = &cp
	return nil
}

func (s *MemoryStore) GetPoolSnapshot(_ context.Context, id string) (*model.PoolSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.poolSnapshots[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *snap
	return &cp, nil
}

func (s *MemoryStore) PutPoolSnapshot(_ context.Context, snap *model.PoolSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *snap
	s.poolSnapshots[snap.ID] = &cp
	return nil
}

func (s *MemoryStore) GetLatestPoolSpread(_ context.Context) (*model.LatestPoolSpread, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.poolSpread == nil {
		return nil, ErrNotFound
	}
	cp := *s.poolSpread
	return &cp, nil
}

func (s *MemoryStore) PutLatestPoolSpread(_ context.Context, spread *model.LatestPoolSpread) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *spread
	s.poolSpread = &cp
	return nil
}

func (s *MemoryStore) GetPoolSpreadProfit(_ context.Context, id string) (*model.PoolSpreadProfit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.spreadProfits[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *MemoryStore) PutPoolSpreadProfit(_ context.Context, p *model.PoolSpreadProfit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.spreadProfits[p.ID] = &cp
	return nil
}

func (s *MemoryStore) GetLatestBlock(_ context.Context) (*model.LatestBlock, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latestBlock == nil {
		return nil, ErrNotFound
	}
	cp := *s.latestBlock
	return &cp, nil
}

func (s *MemoryStore) PutLatestBlock(_ context.Context, b *model.LatestBlock) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *b
	s.latestBlock = &cp
	return nil
}
