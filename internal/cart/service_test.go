package cart

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/neonshoplabs/neonshop-backend/internal/guestcart"
	"github.com/neonshoplabs/neonshop-backend/pkg/db/models"
	"github.com/neonshoplabs/neonshop-backend/pkg/enums"
	pkgerrors "github.com/neonshoplabs/neonshop-backend/pkg/errors"
)

type stubCartRepo struct {
	record *models.CartRecord
}

func newStubCartRepo(userID uuid.UUID) *stubCartRepo {
	return &stubCartRepo{
		record: &models.CartRecord{
			ID:     uuid.New(),
			UserID: userID,
			Items:  []models.CartItem{},
		},
	}
}

func (s *stubCartRepo) GetOrCreateByUser(ctx context.Context, userID uuid.UUID) (*models.CartRecord, error) {
	return s.record, nil
}

func (s *stubCartRepo) UpsertItem(ctx context.Context, cartID, productID uuid.UUID, quantity, unitPriceCents int, addedAt time.Time) error {
	for i := range s.record.Items {
		if s.record.Items[i].ProductID == productID {
			s.record.Items[i].Quantity += quantity
			s.record.Items[i].UnitPriceCents = unitPriceCents
			return nil
		}
	}
	s.record.Items = append(s.record.Items, models.CartItem{
		ID:             uuid.New(),
		CartID:         cartID,
		ProductID:      productID,
		Quantity:       quantity,
		UnitPriceCents: unitPriceCents,
		AddedAt:        addedAt,
	})
	return nil
}

func (s *stubCartRepo) SetItemQuantity(ctx context.Context, cartID, productID uuid.UUID, quantity int) error {
	for i := range s.record.Items {
		if s.record.Items[i].ProductID == productID {
			s.record.Items[i].Quantity = quantity
		}
	}
	return nil
}

func (s *stubCartRepo) RemoveItem(ctx context.Context, cartID, productID uuid.UUID) error {
	items := s.record.Items[:0]
	for _, item := range s.record.Items {
		if item.ProductID != productID {
			items = append(items, item)
		}
	}
	s.record.Items = items
	return nil
}

func (s *stubCartRepo) ClearItems(ctx context.Context, cartID uuid.UUID) error {
	s.record.Items = []models.CartItem{}
	return nil
}

func (s *stubCartRepo) Touch(ctx context.Context, cartID uuid.UUID) error {
	s.record.UpdatedAt = time.Now().UTC()
	return nil
}

type stubProducts struct {
	products map[uuid.UUID]*models.Product
}

func newStubProducts() *stubProducts {
	return &stubProducts{products: map[uuid.UUID]*models.Product{}}
}

func (s *stubProducts) add(priceCents int, status enums.ProductStatus) uuid.UUID {
	id := uuid.New()
	s.products[id] = &models.Product{
		ID:         id,
		Name:       "Product " + id.String()[:8],
		PriceCents: priceCents,
		Status:     status,
	}
	return id
}

func (s *stubProducts) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if p, ok := s.products[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubProducts) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	out := []models.Product{}
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func newTestCartService(t *testing.T, userID uuid.UUID) (Service, *stubCartRepo, *stubProducts) {
	t.Helper()
	repo := newStubCartRepo(userID)
	productRepo := newStubProducts()
	svc, err := NewService(ServiceParams{Repo: repo, Products: productRepo})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, repo, productRepo
}

func TestAddItemSnapshotsPriceAndAccumulates(t *testing.T) {
	userID := uuid.New()
	svc, _, productRepo := newTestCartService(t, userID)
	productID := productRepo.add(1500, enums.ProductStatusActive)

	ctx := context.Background()
	if _, err := svc.AddItem(ctx, userID, productID, 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	dto, err := svc.AddItem(ctx, userID, productID, 3)
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	if len(dto.Items) != 1 {
		t.Fatalf("expected single line, got %d", len(dto.Items))
	}
	if dto.Items[0].Quantity != 5 {
		t.Fatalf("expected accumulated quantity 5, got %d", dto.Items[0].Quantity)
	}
	if dto.Items[0].UnitPriceCents != 1500 {
		t.Fatalf("expected snapshot price 1500, got %d", dto.Items[0].UnitPriceCents)
	}
	if dto.SubtotalCents != 7500 || dto.Subtotal != "75.00" {
		t.Fatalf("unexpected subtotal %d / %q", dto.SubtotalCents, dto.Subtotal)
	}
}

func TestAddItemRejectsInactiveProduct(t *testing.T) {
	userID := uuid.New()
	svc, _, productRepo := newTestCartService(t, userID)
	productID := productRepo.add(1000, enums.ProductStatusArchived)

	_, err := svc.AddItem(context.Background(), userID, productID, 1)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for archived product, got %v", err)
	}
}

func TestUpdateItemZeroRemovesLine(t *testing.T) {
	userID := uuid.New()
	svc, _, productRepo := newTestCartService(t, userID)
	productID := productRepo.add(500, enums.ProductStatusActive)

	ctx := context.Background()
	if _, err := svc.AddItem(ctx, userID, productID, 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	dto, err := svc.UpdateItem(ctx, userID, productID, 0)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(dto.Items) != 0 {
		t.Fatalf("expected empty cart, got %+v", dto.Items)
	}
}

func TestUpdateItemMissingProductIsNoOp(t *testing.T) {
	userID := uuid.New()
	svc, _, productRepo := newTestCartService(t, userID)
	productID := productRepo.add(500, enums.ProductStatusActive)

	ctx := context.Background()
	if _, err := svc.AddItem(ctx, userID, productID, 2); err != nil {
		t.Fatalf("add: %v", err)
	}

	dto, err := svc.UpdateItem(ctx, userID, uuid.New(), 9)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(dto.Items) != 1 || dto.Items[0].Quantity != 2 {
		t.Fatalf("no-op update changed the cart: %+v", dto.Items)
	}
}

func TestMergeGuestItemsInsertsOnlyMissingLines(t *testing.T) {
	userID := uuid.New()
	svc, _, productRepo := newTestCartService(t, userID)
	existingID := productRepo.add(1000, enums.ProductStatusActive)
	newID := productRepo.add(2000, enums.ProductStatusActive)

	ctx := context.Background()
	if _, err := svc.AddItem(ctx, userID, existingID, 1); err != nil {
		t.Fatalf("seed cart: %v", err)
	}

	addedAt := time.Now().Add(-time.Hour).UTC()
	merged, err := svc.MergeGuestItems(ctx, userID, []guestcart.Item{
		{ProductID: existingID.String(), Quantity: 3, AddedAt: addedAt},
		{ProductID: newID.String(), Quantity: 2, AddedAt: addedAt},
		{ProductID: "not-a-uuid", Quantity: 1},
		{ProductID: uuid.NewString(), Quantity: 1},
	})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if merged != 1 {
		t.Fatalf("expected 1 merged line, got %d", merged)
	}

	dto, err := svc.GetCart(ctx, userID)
	if err != nil {
		t.Fatalf("get cart: %v", err)
	}
	if len(dto.Items) != 2 {
		t.Fatalf("expected 2 lines after merge, got %d", len(dto.Items))
	}
	for _, item := range dto.Items {
		if item.ProductID == existingID && item.Quantity != 1 {
			t.Fatalf("merge must not sum quantities for overlapping lines, got %d", item.Quantity)
		}
		if item.ProductID == newID {
			if item.Quantity != 2 {
				t.Fatalf("expected guest quantity 2, got %d", item.Quantity)
			}
			if !item.AddedAt.Equal(addedAt) {
				t.Fatalf("expected guest AddedAt preserved, got %v", item.AddedAt)
			}
		}
	}
}

func TestMergeGuestItemsEmptyDelta(t *testing.T) {
	userID := uuid.New()
	svc, _, _ := newTestCartService(t, userID)

	merged, err := svc.MergeGuestItems(context.Background(), userID, nil)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if merged != 0 {
		t.Fatalf("expected no merges, got %d", merged)
	}
}
