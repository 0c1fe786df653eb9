package engine_test

import (
	"context"
	"io"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/openclob/book-indexer/internal/book"
	"github.com/openclob/book-indexer/internal/chain"
	"github.com/openclob/book-indexer/internal/engine"
	"github.com/openclob/book-indexer/internal/feed"
	"github.com/openclob/book-indexer/internal/pool"
	"github.com/openclob/book-indexer/internal/pricing"
	"github.com/openclob/book-indexer/internal/store"
)

func newEngine(ms *store.MemoryStore) *engine.Engine {
	oracle := pricing.StaticOracle{0: new(big.Int).Lsh(big.NewInt(1), 96)}
	rebalancer := common.HexToAddress("0x30b4e9215322B5d0c290249126bCf96C2Ca8e948")
	books := book.NewHandler(ms, oracle, chain.FallbackTokenSource{}, rebalancer)
	pools := pool.NewHandler(ms, oracle, pool.StaticStrategy{}, pool.StaticLiquidity{})
	return engine.New(books, pools, ms)
}

func TestBlockEventUpdatesLatestBlock(t *testing.T) {
	ms := store.NewMemoryStore()
	eng := newEngine(ms)
	ctx := context.Background()

	err := eng.Process(ctx, &feed.BlockEvent{Number: 777, Timestamp: 1_700_000_000})
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	blk, err := ms.GetLatestBlock(ctx)
	if err != nil {
		t.Fatalf("latest block: %v", err)
	}
	if blk.BlockNumber != 777 || blk.Timestamp != 1_700_000_000 {
		t.Errorf("latest block = %+v", blk)
	}
}

func TestRunReplaysLifecycle(t *testing.T) {
	// A minimal end-to-end replay: open, make, take, claim.
	lines := strings.Join([]string{
		`{"type":"block","data":{"number":1,"timestamp":1700000000}}`,
		`{"type":"open","data":{"book_id":1,"base":"0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa","quote":"0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb","unit_size":1000000000000000000,"timestamp":1700000000}}`,
		`{"type":"make","data":{"book_id":1,"user":"0x1111111111111111111111111111111111111111","tick":0,"order_index":0,"unit":10,"timestamp":1700000000}}`,
		`{"type":"take","data":{"book_id":1,"tick":0,"unit":10,"timestamp":1700000001}}`,
	}, "\n") + "\n"

	ms := store.NewMemoryStore()
	eng := newEngine(ms)
	src := feed.NewReplayer(io.NopCloser(strings.NewReader(lines)))
	defer src.Close()

	if err := eng.Run(context.Background(), src); err != nil {
		t.Fatalf("run: %v", err)
	}

	b, err := ms.GetBook(context.Background(), "1")
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	if b.LatestTimestamp != 1700000001 {
		t.Errorf("LatestTimestamp = %d, want 1700000001", b.LatestTimestamp)
	}
	// The level was fully consumed.
	if _, err := ms.GetDepth(context.Background(), "1-0"); err != store.ErrNotFound {
		t.Errorf("depth err = %v, want ErrNotFound", err)
	}
}
