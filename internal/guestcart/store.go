package guestcart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/neonshoplabs/neonshop-backend/pkg/logger"
)

// Store maintains one persisted Cart document per guest token. Reads fail
// open: absent keys, unparsable documents, and missing backends all degrade
// to an empty cart rather than an error.
type Store struct {
	storage Storage
	keyName string
	logg    *logger.Logger
	now     func() time.Time
}

// StoreParams configures a Store.
type StoreParams struct {
	// Storage may be nil; the Store then behaves as if every cart is empty
	// and skips writes.
	Storage Storage
	// KeyName is the logical document key prefix, e.g. "neonshop_guest_cart".
	KeyName string
	Logger  *logger.Logger
}

// NewStore builds a guest cart store.
func NewStore(params StoreParams) (*Store, error) {
	if strings.TrimSpace(params.KeyName) == "" {
		return nil, fmt.Errorf("key name is required")
	}
	return &Store{
		storage: params.Storage,
		keyName: params.KeyName,
		logg:    params.Logger,
		now:     time.Now,
	}, nil
}

func (s *Store) docKey(token string) string {
	return s.keyName + ":" + token
}

// GetCart returns the cart for the guest token. A fresh empty cart is
// returned when no document exists, the backend is unavailable, or the
// stored value fails to parse.
func (s *Store) GetCart(ctx context.Context, token string) Cart {
	empty := Cart{Items: []Item{}, UpdatedAt: s.now()}
	if s.storage == nil || strings.TrimSpace(token) == "" {
		return empty
	}

	raw, err := s.storage.Get(ctx, s.docKey(token))
	if err != nil {
		if !errors.Is(err, ErrNotFound) && s.logg != nil {
			s.logg.Warn(ctx, fmt.Sprintf("guest cart read failed, serving empty cart: %v", err))
		}
		return empty
	}

	var cart Cart
	if err := json.Unmarshal([]byte(raw), &cart); err != nil {
		if s.logg != nil {
			s.logg.Warn(ctx, fmt.Sprintf("guest cart document unparsable, serving empty cart: %v", err))
		}
		return empty
	}
	if cart.Items == nil {
		cart.Items = []Item{}
	}
	return cart
}

// SaveCart stamps UpdatedAt and persists the document in a single write.
// Writes are skipped when no backend is configured.
func (s *Store) SaveCart(ctx context.Context, token string, cart Cart) error {
	if s.storage == nil {
		return nil
	}
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("guest token is required")
	}

	cart.UpdatedAt = s.now()
	if cart.Items == nil {
		cart.Items = []Item{}
	}
	raw, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("encoding guest cart: %w", err)
	}
	if err := s.storage.Set(ctx, s.docKey(token), string(raw)); err != nil {
		return fmt.Errorf("persisting guest cart: %w", err)
	}
	return nil
}

// AddItem accumulates quantity on an existing line or appends a new one with
// AddedAt set now. A non-positive quantity defaults to 1.
func (s *Store) AddItem(ctx context.Context, token, productID string, quantity int) (Cart, error) {
	if strings.TrimSpace(productID) == "" {
		return s.GetCart(ctx, token), fmt.Errorf("product id is required")
	}
	if quantity <= 0 {
		quantity = 1
	}

	cart := s.GetCart(ctx, token)
	found := false
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			cart.Items[i].Quantity += quantity
			found = true
			break
		}
	}
	if !found {
		cart.Items = append(cart.Items, Item{
			ProductID: productID,
			Quantity:  quantity,
			AddedAt:   s.now(),
		})
	}

	if err := s.SaveCart(ctx, token, cart); err != nil {
		return cart, err
	}
	return s.GetCart(ctx, token), nil
}

// UpdateItem sets the line's quantity to the absolute value. A quantity of
// zero or less removes the line; a missing product is a silent no-op.
func (s *Store) UpdateItem(ctx context.Context, token, productID string, quantity int) (Cart, error) {
	cart := s.GetCart(ctx, token)

	idx := -1
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return cart, nil
	}

	if quantity <= 0 {
		cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
	} else {
		cart.Items[idx].Quantity = quantity
	}

	if err := s.SaveCart(ctx, token, cart); err != nil {
		return cart, err
	}
	return s.GetCart(ctx, token), nil
}

// RemoveItem deletes the line if present. Removing an absent product is a
// no-op.
func (s *Store) RemoveItem(ctx context.Context, token, productID string) (Cart, error) {
	cart := s.GetCart(ctx, token)

	idx := -1
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return cart, nil
	}

	cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
	if err := s.SaveCart(ctx, token, cart); err != nil {
		return cart, err
	}
	return s.GetCart(ctx, token), nil
}

// ClearCart deletes the persisted document entirely.
func (s *Store) ClearCart(ctx context.Context, token string) error {
	if s.storage == nil || strings.TrimSpace(token) == "" {
		return nil
	}
	if err := s.storage.Del(ctx, s.docKey(token)); err != nil {
		return fmt.Errorf("clearing guest cart: %w", err)
	}
	return nil
}

// CartCount returns the sum of all quantities, zero for absent carts.
func (s *Store) CartCount(ctx context.Context, token string) int {
	return s.GetCart(ctx, token).Count()
}

// HasProduct reports whether the cart holds a line for the product.
func (s *Store) HasProduct(ctx context.Context, token, productID string) bool {
	_, ok := s.GetCart(ctx, token).Find(productID)
	return ok
}

// ItemQuantity returns the line quantity, zero when absent.
func (s *Store) ItemQuantity(ctx context.Context, token, productID string) int {
	item, ok := s.GetCart(ctx, token).Find(productID)
	if !ok {
		return 0
	}
	return item.Quantity
}

// SyncWithUserCart computes the items missing from the user's server-side
// cart without mutating storage. The caller pushes the delta and then calls
// ClearCart once the push succeeds.
func (s *Store) SyncWithUserCart(ctx context.Context, token string, userProductIDs []string) []Item {
	return Diff(s.GetCart(ctx, token).Items, userProductIDs)
}
