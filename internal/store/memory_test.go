package store_test

import (
	"context"
	"math/big"
	"testing"

	"github.com/openclob/book-indexer/internal/model"
	"github.com/openclob/book-indexer/internal/store"
)

func TestMemoryStoreRoundtrip(t *testing.T) {
	ms := store.NewMemoryStore()
	ctx := context.Background()

	d := &model.Depth{
		ID:          "1-0",
		Book:        "1",
		Tick:        0,
		Price:       big.NewInt(100),
		UnitAmount:  big.NewInt(5),
		BaseAmount:  big.NewInt(500),
		QuoteAmount: big.NewInt(5),
	}
	if err := ms.PutDepth(ctx, d); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := ms.GetDepth(ctx, "1-0")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.UnitAmount.Cmp(big.NewInt(5)) != 0 {
		t.Errorf("UnitAmount = %s, want 5", got.UnitAmount)
	}

	// Mutating the returned struct must not leak into the store.
	got.Tick = 99
	again, _ := ms.GetDepth(ctx, "1-0")
	if again.Tick != 0 {
		t.Errorf("stored Tick = %d, want 0", again.Tick)
	}
}

func TestMemoryStoreNotFound(t *testing.T) {
	ms := store.NewMemoryStore()
	ctx := context.Background()

	if _, err := ms.GetBook(ctx, "nope"); err != store.ErrNotFound {
		t.Errorf("GetBook err = %v, want ErrNotFound", err)
	}
	if _, err := ms.GetLatestPoolSpread(ctx); err != store.ErrNotFound {
		t.Errorf("GetLatestPoolSpread err = %v, want ErrNotFound", err)
	}
	if _, err := ms.GetLatestBlock(ctx); err != store.ErrNotFound {
		t.Errorf("GetLatestBlock err = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	ms := store.NewMemoryStore()
	ctx := context.Background()

	o := &model.OpenOrder{ID: "42", UnitAmount: big.NewInt(1)}
	if err := ms.PutOpenOrder(ctx, o); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := ms.DeleteOpenOrder(ctx, "42"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := ms.GetOpenOrder(ctx, "42"); err != store.ErrNotFound {
		t.Errorf("err = %v, want ErrNotFound", err)
	}

	// Deleting something absent is not an error.
	if err := ms.DeleteDepth(ctx, "nope"); err != nil {
		t.Errorf("delete absent: %v", err)
	}
}
