package guestcart

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestStore(t *testing.T) (*Store, *MemoryStorage) {
	t.Helper()
	storage := NewMemoryStorage()
	store, err := NewStore(StoreParams{Storage: storage, KeyName: "test_guest_cart"})
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store, storage
}

func TestAddItemKeepsProductsUnique(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := store.AddItem(ctx, "tok", "sku-1", 1); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	if _, err := store.AddItem(ctx, "tok", "sku-2", 2); err != nil {
		t.Fatalf("add: %v", err)
	}

	cart := store.GetCart(ctx, "tok")
	if len(cart.Items) != 2 {
		t.Fatalf("expected 2 unique lines, got %d", len(cart.Items))
	}
	seen := map[string]bool{}
	for _, item := range cart.Items {
		if seen[item.ProductID] {
			t.Fatalf("duplicate line for %s", item.ProductID)
		}
		seen[item.ProductID] = true
	}
}

func TestAddItemAccumulatesQuantity(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if _, err := store.AddItem(ctx, "tok", "sku-1", 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := store.AddItem(ctx, "tok", "sku-1", 3); err != nil {
		t.Fatalf("add: %v", err)
	}

	if got := store.ItemQuantity(ctx, "tok", "sku-1"); got != 5 {
		t.Fatalf("expected quantity 5, got %d", got)
	}
}

func TestAddItemPreservesAddedAt(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	cart, err := store.AddItem(ctx, "tok", "sku-1", 1)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	first := cart.Items[0].AddedAt

	time.Sleep(2 * time.Millisecond)
	cart, err = store.AddItem(ctx, "tok", "sku-1", 4)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !cart.Items[0].AddedAt.Equal(first) {
		t.Fatalf("AddedAt rewritten on accumulation: %v vs %v", cart.Items[0].AddedAt, first)
	}
}

func TestAddItemDefaultsQuantityToOne(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if _, err := store.AddItem(ctx, "tok", "sku-1", 0); err != nil {
		t.Fatalf("add: %v", err)
	}
	if got := store.ItemQuantity(ctx, "tok", "sku-1"); got != 1 {
		t.Fatalf("expected default quantity 1, got %d", got)
	}
}

func TestUpdateItemIsAbsolute(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if _, err := store.AddItem(ctx, "tok", "sku-1", 3); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := store.UpdateItem(ctx, "tok", "sku-1", 7); err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := store.ItemQuantity(ctx, "tok", "sku-1"); got != 7 {
		t.Fatalf("expected absolute quantity 7, got %d", got)
	}
}

func TestUpdateItemMissingProductIsNoOp(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if _, err := store.AddItem(ctx, "tok", "sku-1", 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	cart, err := store.UpdateItem(ctx, "tok", "sku-ghost", 9)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(cart.Items) != 1 || cart.Items[0].ProductID != "sku-1" {
		t.Fatalf("no-op update changed the cart: %+v", cart.Items)
	}
	if store.HasProduct(ctx, "tok", "sku-ghost") {
		t.Fatal("update must not create new lines")
	}
}

func TestUpdateItemZeroRemovesLine(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if _, err := store.AddItem(ctx, "tok", "sku-1", 3); err != nil {
		t.Fatalf("add: %v", err)
	}
	cart, err := store.UpdateItem(ctx, "tok", "sku-1", 0)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(cart.Items) != 0 {
		t.Fatalf("expected zero-quantity line removed, got %+v", cart.Items)
	}
}

func TestRemoveItemIsIdempotent(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if _, err := store.AddItem(ctx, "tok", "sku-1", 2); err != nil {
		t.Fatalf("add: %v", err)
	}

	if _, err := store.RemoveItem(ctx, "tok", "sku-ghost"); err != nil {
		t.Fatalf("remove absent: %v", err)
	}
	if _, err := store.RemoveItem(ctx, "tok", "sku-1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := store.RemoveItem(ctx, "tok", "sku-1"); err != nil {
		t.Fatalf("second remove: %v", err)
	}

	if got := store.CartCount(ctx, "tok"); got != 0 {
		t.Fatalf("expected empty cart, count %d", got)
	}
}

func TestCartCountMatchesQuantitySum(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	quantities := map[string]int{"sku-1": 2, "sku-2": 5, "sku-3": 1}
	want := 0
	for id, qty := range quantities {
		if _, err := store.AddItem(ctx, "tok", id, qty); err != nil {
			t.Fatalf("add %s: %v", id, err)
		}
		want += qty
	}

	if got := store.CartCount(ctx, "tok"); got != want {
		t.Fatalf("expected count %d, got %d", want, got)
	}

	cart := store.GetCart(ctx, "tok")
	sum := 0
	for _, item := range cart.Items {
		sum += item.Quantity
	}
	if sum != want {
		t.Fatalf("item quantity sum %d does not match %d", sum, want)
	}
}

func TestClearCartDeletesDocument(t *testing.T) {
	store, storage := newTestStore(t)
	ctx := context.Background()

	if _, err := store.AddItem(ctx, "tok", "sku-1", 4); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := store.ClearCart(ctx, "tok"); err != nil {
		t.Fatalf("clear: %v", err)
	}

	cart := store.GetCart(ctx, "tok")
	if len(cart.Items) != 0 {
		t.Fatalf("expected empty cart after clear, got %+v", cart.Items)
	}
	if _, err := storage.Get(ctx, "test_guest_cart:tok"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected document deleted, got %v", err)
	}
}

func TestSyncWithUserCartReturnsDelta(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if _, err := store.AddItem(ctx, "tok", "sku-a", 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := store.AddItem(ctx, "tok", "sku-b", 2); err != nil {
		t.Fatalf("add: %v", err)
	}

	delta := store.SyncWithUserCart(ctx, "tok", []string{"sku-a"})
	if len(delta) != 1 || delta[0].ProductID != "sku-b" || delta[0].Quantity != 2 {
		t.Fatalf("unexpected delta %+v", delta)
	}

	// read-only: the guest cart is untouched
	if got := store.CartCount(ctx, "tok"); got != 3 {
		t.Fatalf("sync mutated the guest cart, count %d", got)
	}
}

func TestSyncWithUserCartFullOverlap(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if _, err := store.AddItem(ctx, "tok", "sku-a", 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := store.AddItem(ctx, "tok", "sku-b", 2); err != nil {
		t.Fatalf("add: %v", err)
	}

	delta := store.SyncWithUserCart(ctx, "tok", []string{"sku-b", "sku-a", "sku-c"})
	if len(delta) != 0 {
		t.Fatalf("expected empty delta on full overlap, got %+v", delta)
	}
}

func TestGuestCheckoutScenario(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	before := time.Now()
	cart := store.GetCart(ctx, "tok")
	if len(cart.Items) != 0 {
		t.Fatalf("fresh cart should be empty, got %+v", cart.Items)
	}
	if cart.UpdatedAt.Before(before.Add(-time.Second)) {
		t.Fatalf("fresh cart UpdatedAt not stamped: %v", cart.UpdatedAt)
	}

	if _, err := store.AddItem(ctx, "tok", "sku-1", 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if got := store.CartCount(ctx, "tok"); got != 1 {
		t.Fatalf("expected count 1, got %d", got)
	}

	if _, err := store.AddItem(ctx, "tok", "sku-1", 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	if got := store.ItemQuantity(ctx, "tok", "sku-1"); got != 3 {
		t.Fatalf("expected quantity 3, got %d", got)
	}

	if _, err := store.AddItem(ctx, "tok", "sku-2", 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if got := store.CartCount(ctx, "tok"); got != 4 {
		t.Fatalf("expected count 4, got %d", got)
	}

	delta := store.SyncWithUserCart(ctx, "tok", []string{"sku-1"})
	if len(delta) != 1 || delta[0].ProductID != "sku-2" || delta[0].Quantity != 1 {
		t.Fatalf("unexpected login delta %+v", delta)
	}

	if err := store.ClearCart(ctx, "tok"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if got := store.GetCart(ctx, "tok"); len(got.Items) != 0 {
		t.Fatalf("expected empty cart after merge, got %+v", got.Items)
	}
}

func TestGetCartRecoversFromCorruptDocument(t *testing.T) {
	store, storage := newTestStore(t)
	ctx := context.Background()

	if err := storage.Set(ctx, "test_guest_cart:tok", "{not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	cart := store.GetCart(ctx, "tok")
	if len(cart.Items) != 0 {
		t.Fatalf("corrupt document should read as empty, got %+v", cart.Items)
	}

	// a later write replaces the corrupt value
	if _, err := store.AddItem(ctx, "tok", "sku-1", 1); err != nil {
		t.Fatalf("add after corruption: %v", err)
	}
	if got := store.ItemQuantity(ctx, "tok", "sku-1"); got != 1 {
		t.Fatalf("expected recovered cart, quantity %d", got)
	}
}

func TestNilBackendFailsOpen(t *testing.T) {
	store, err := NewStore(StoreParams{Storage: nil, KeyName: "test_guest_cart"})
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()

	cart := store.GetCart(ctx, "tok")
	if len(cart.Items) != 0 {
		t.Fatalf("expected empty cart without backend, got %+v", cart.Items)
	}
	if _, err := store.AddItem(ctx, "tok", "sku-1", 2); err != nil {
		t.Fatalf("add should be skipped silently: %v", err)
	}
	if got := store.CartCount(ctx, "tok"); got != 0 {
		t.Fatalf("writes must be skipped without backend, count %d", got)
	}
	if err := store.ClearCart(ctx, "tok"); err != nil {
		t.Fatalf("clear should no-op: %v", err)
	}
}

func TestCartsAreIsolatedPerToken(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if _, err := store.AddItem(ctx, "tok-a", "sku-1", 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := store.AddItem(ctx, "tok-b", "sku-9", 1); err != nil {
		t.Fatalf("add: %v", err)
	}

	if store.HasProduct(ctx, "tok-a", "sku-9") {
		t.Fatal("token a sees token b's items")
	}
	if got := store.CartCount(ctx, "tok-b"); got != 1 {
		t.Fatalf("expected isolated count 1, got %d", got)
	}
}
