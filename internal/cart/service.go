package cart

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/neonshoplabs/neonshop-backend/internal/guestcart"
	"github.com/neonshoplabs/neonshop-backend/pkg/db/models"
	"github.com/neonshoplabs/neonshop-backend/pkg/enums"
	pkgerrors "github.com/neonshoplabs/neonshop-backend/pkg/errors"
)

type productLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
}

// Service exposes the authenticated server-side cart.
type Service interface {
	GetCart(ctx context.Context, userID uuid.UUID) (CartDTO, error)
	AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (CartDTO, error)
	UpdateItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (CartDTO, error)
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) (CartDTO, error)
	Clear(ctx context.Context, userID uuid.UUID) error
	ProductIDs(ctx context.Context, userID uuid.UUID) ([]string, error)
	MergeGuestItems(ctx context.Context, userID uuid.UUID, guestItems []guestcart.Item) (int, error)
}

// ServiceParams groups dependencies for the cart service.
type ServiceParams struct {
	Repo     CartRepository
	Products productLoader
}

type service struct {
	repo     CartRepository
	products productLoader
}

// NewService builds a cart service backed by the provided stack.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart repo is required")
	}
	if params.Products == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product loader is required")
	}
	return &service{repo: params.Repo, products: params.Products}, nil
}

func (s *service) GetCart(ctx context.Context, userID uuid.UUID) (CartDTO, error) {
	record, err := s.loadCart(ctx, userID)
	if err != nil {
		return CartDTO{}, err
	}
	names, err := s.productNames(ctx, record)
	if err != nil {
		return CartDTO{}, err
	}
	return toCartDTO(record, names), nil
}

func (s *service) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (CartDTO, error) {
	if productID == uuid.Nil {
		return CartDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if quantity <= 0 {
		quantity = 1
	}

	product, err := s.loadActiveProduct(ctx, productID)
	if err != nil {
		return CartDTO{}, err
	}

	record, err := s.loadCart(ctx, userID)
	if err != nil {
		return CartDTO{}, err
	}
	if err := s.repo.UpsertItem(ctx, record.ID, productID, quantity, product.PriceCents, time.Now().UTC()); err != nil {
		return CartDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add cart item")
	}
	if err := s.repo.Touch(ctx, record.ID); err != nil {
		return CartDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "touch cart")
	}
	return s.GetCart(ctx, userID)
}

// UpdateItem sets the absolute quantity; zero or less removes the line. A
// missing product line is a silent no-op.
func (s *service) UpdateItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (CartDTO, error) {
	if productID == uuid.Nil {
		return CartDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	record, err := s.loadCart(ctx, userID)
	if err != nil {
		return CartDTO{}, err
	}

	present := false
	for _, item := range record.Items {
		if item.ProductID == productID {
			present = true
			break
		}
	}
	if !present {
		names, err := s.productNames(ctx, record)
		if err != nil {
			return CartDTO{}, err
		}
		return toCartDTO(record, names), nil
	}

	if quantity <= 0 {
		if err := s.repo.RemoveItem(ctx, record.ID, productID); err != nil {
			return CartDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart item")
		}
	} else {
		if err := s.repo.SetItemQuantity(ctx, record.ID, productID, quantity); err != nil {
			return CartDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart item")
		}
	}
	if err := s.repo.Touch(ctx, record.ID); err != nil {
		return CartDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "touch cart")
	}
	return s.GetCart(ctx, userID)
}

func (s *service) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (CartDTO, error) {
	record, err := s.loadCart(ctx, userID)
	if err != nil {
		return CartDTO{}, err
	}
	if err := s.repo.RemoveItem(ctx, record.ID, productID); err != nil {
		return CartDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart item")
	}
	if err := s.repo.Touch(ctx, record.ID); err != nil {
		return CartDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "touch cart")
	}
	return s.GetCart(ctx, userID)
}

func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	record, err := s.loadCart(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.repo.ClearItems(ctx, record.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

// ProductIDs returns the cart's product IDs as strings for the guest cart
// reconciler.
func (s *service) ProductIDs(ctx context.Context, userID uuid.UUID) ([]string, error) {
	record, err := s.loadCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(record.Items))
	for _, item := range record.Items {
		ids = append(ids, item.ProductID.String())
	}
	return ids, nil
}

// MergeGuestItems pushes the guest cart delta into the server-side cart.
// Only products missing from the cart are inserted; quantities are taken from
// the guest lines and AddedAt is preserved. Unknown or inactive products are
// skipped. Returns the number of lines inserted.
func (s *service) MergeGuestItems(ctx context.Context, userID uuid.UUID, guestItems []guestcart.Item) (int, error) {
	if len(guestItems) == 0 {
		return 0, nil
	}

	record, err := s.loadCart(ctx, userID)
	if err != nil {
		return 0, err
	}

	existing := make(map[uuid.UUID]struct{}, len(record.Items))
	for _, item := range record.Items {
		existing[item.ProductID] = struct{}{}
	}

	merged := 0
	for _, guestItem := range guestItems {
		productID, err := uuid.Parse(guestItem.ProductID)
		if err != nil {
			continue
		}
		if _, ok := existing[productID]; ok {
			continue
		}

		product, err := s.loadActiveProduct(ctx, productID)
		if err != nil {
			if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNotFound {
				continue
			}
			return merged, err
		}

		quantity := guestItem.Quantity
		if quantity <= 0 {
			quantity = 1
		}
		addedAt := guestItem.AddedAt
		if addedAt.IsZero() {
			addedAt = time.Now().UTC()
		}
		if err := s.repo.UpsertItem(ctx, record.ID, productID, quantity, product.PriceCents, addedAt); err != nil {
			return merged, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "merge guest item")
		}
		existing[productID] = struct{}{}
		merged++
	}

	if merged > 0 {
		if err := s.repo.Touch(ctx, record.ID); err != nil {
			return merged, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "touch cart")
		}
	}
	return merged, nil
}

func (s *service) loadCart(ctx context.Context, userID uuid.UUID) (*models.CartRecord, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	record, err := s.repo.GetOrCreateByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return record, nil
}

func (s *service) loadActiveProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product.Status != enums.ProductStatusActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return product, nil
}

func (s *service) productNames(ctx context.Context, record *models.CartRecord) (map[uuid.UUID]string, error) {
	ids := make([]uuid.UUID, 0, len(record.Items))
	for _, item := range record.Items {
		ids = append(ids, item.ProductID)
	}
	loaded, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart products")
	}
	names := make(map[uuid.UUID]string, len(loaded))
	for i := range loaded {
		names[loaded[i].ID] = loaded[i].Name
	}
	return names, nil
}
