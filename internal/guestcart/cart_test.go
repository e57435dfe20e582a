package guestcart

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDiffPreservesGuestOrder(t *testing.T) {
	now := time.Now()
	guest := []Item{
		{ProductID: "sku-3", Quantity: 1, AddedAt: now},
		{ProductID: "sku-1", Quantity: 2, AddedAt: now},
		{ProductID: "sku-2", Quantity: 4, AddedAt: now},
	}

	delta := Diff(guest, []string{"sku-1"})
	if len(delta) != 2 {
		t.Fatalf("expected 2 items, got %d", len(delta))
	}
	if delta[0].ProductID != "sku-3" || delta[1].ProductID != "sku-2" {
		t.Fatalf("guest order not preserved: %+v", delta)
	}
}

func TestDiffEmptyInputs(t *testing.T) {
	if delta := Diff(nil, []string{"sku-1"}); len(delta) != 0 {
		t.Fatalf("empty guest cart should yield empty delta, got %+v", delta)
	}

	guest := []Item{{ProductID: "sku-1", Quantity: 1}}
	delta := Diff(guest, nil)
	if len(delta) != 1 || delta[0].ProductID != "sku-1" {
		t.Fatalf("empty user cart should return every guest item, got %+v", delta)
	}
}

func TestDiffDropsOverlapWhole(t *testing.T) {
	guest := []Item{{ProductID: "sku-1", Quantity: 3}}
	if delta := Diff(guest, []string{"sku-1"}); len(delta) != 0 {
		t.Fatalf("overlapping item must be dropped entirely, got %+v", delta)
	}
}

func TestCartJSONFieldNames(t *testing.T) {
	cart := Cart{
		Items: []Item{{
			ProductID: "sku-1",
			Quantity:  2,
			AddedAt:   time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		}},
		UpdatedAt: time.Date(2025, 6, 1, 10, 5, 0, 0, time.UTC),
	}

	raw, err := json.Marshal(cart)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := doc["items"]; !ok {
		t.Fatal("missing items field")
	}
	if _, ok := doc["updatedAt"]; !ok {
		t.Fatal("missing updatedAt field")
	}

	items := doc["items"].([]any)
	entry := items[0].(map[string]any)
	for _, field := range []string{"productId", "quantity", "addedAt"} {
		if _, ok := entry[field]; !ok {
			t.Fatalf("missing item field %q", field)
		}
	}
}

func TestCartCountAndFind(t *testing.T) {
	cart := Cart{Items: []Item{
		{ProductID: "sku-1", Quantity: 2},
		{ProductID: "sku-2", Quantity: 3},
	}}

	if got := cart.Count(); got != 5 {
		t.Fatalf("expected count 5, got %d", got)
	}
	if item, ok := cart.Find("sku-2"); !ok || item.Quantity != 3 {
		t.Fatalf("find sku-2 failed: %+v %v", item, ok)
	}
	if _, ok := cart.Find("sku-9"); ok {
		t.Fatal("expected absent product")
	}
}
