package guestcart

import (
	"time"
)

// Item is one product line in an anonymous cart. AddedAt is set on first
// insertion and never rewritten by later quantity changes.
type Item struct {
	ProductID string    `json:"productId"`
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"addedAt"`
}

// Cart is the single JSON document persisted per guest token. Items are
// ordered and unique by ProductID.
type Cart struct {
	Items     []Item    `json:"items"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Count returns the sum of all item quantities.
func (c Cart) Count() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

// Find returns the item for the product and whether it exists.
func (c Cart) Find(productID string) (Item, bool) {
	for _, item := range c.Items {
		if item.ProductID == productID {
			return item, true
		}
	}
	return Item{}, false
}

// Diff returns the guest items whose product does not appear in the user's
// server-side cart, preserving guest order. Items present in both carts are
// dropped whole; quantities are never merged.
func Diff(guestItems []Item, userProductIDs []string) []Item {
	if len(guestItems) == 0 {
		return []Item{}
	}

	present := make(map[string]struct{}, len(userProductIDs))
	for _, id := range userProductIDs {
		present[id] = struct{}{}
	}

	delta := make([]Item, 0, len(guestItems))
	for _, item := range guestItems {
		if _, ok := present[item.ProductID]; ok {
			continue
		}
		delta = append(delta, item)
	}
	return delta
}
