package products

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/neonshoplabs/neonshop-backend/pkg/db"
	"github.com/neonshoplabs/neonshop-backend/pkg/db/models"
	"github.com/neonshoplabs/neonshop-backend/pkg/enums"
	pkgerrors "github.com/neonshoplabs/neonshop-backend/pkg/errors"
)

// Service exposes catalog reads for the storefront and CRUD for admins.
type Service interface {
	Browse(ctx context.Context, filter ListFilter) (ProductPageDTO, error)
	GetBySlug(ctx context.Context, slug string) (ProductDTO, error)
	GetByID(ctx context.Context, id uuid.UUID) (ProductDTO, error)
	AdminList(ctx context.Context, filter ListFilter) (ProductPageDTO, error)
	Create(ctx context.Context, input CreateProductInput) (ProductDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (ProductDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ServiceParams groups dependencies for the product service.
type ServiceParams struct {
	Repo ProductRepository
}

type service struct {
	repo ProductRepository
}

// NewService builds a product service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product repo is required")
	}
	return &service{repo: params.Repo}, nil
}

// Browse serves the public catalog: only active products are visible.
func (s *service) Browse(ctx context.Context, filter ListFilter) (ProductPageDTO, error) {
	active := enums.ProductStatusActive
	filter.Status = &active
	page, err := s.repo.List(ctx, filter)
	if err != nil {
		return ProductPageDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "browse catalog")
	}
	return page, nil
}

func (s *service) GetBySlug(ctx context.Context, slug string) (ProductDTO, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return ProductDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "product slug is required")
	}
	record, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ProductDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
		}
		return ProductDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if record.Status != enums.ProductStatusActive {
		return ProductDTO{}, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return ToDTO(record), nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (ProductDTO, error) {
	if id == uuid.Nil {
		return ProductDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ProductDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
		}
		return ProductDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return ToDTO(record), nil
}

// AdminList serves the back-office table without the active-only restriction.
func (s *service) AdminList(ctx context.Context, filter ListFilter) (ProductPageDTO, error) {
	page, err := s.repo.List(ctx, filter)
	if err != nil {
		return ProductPageDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return page, nil
}

func (s *service) Create(ctx context.Context, input CreateProductInput) (ProductDTO, error) {
	sku := strings.TrimSpace(input.SKU)
	name := strings.TrimSpace(input.Name)
	slug := strings.ToLower(strings.TrimSpace(input.Slug))

	switch {
	case sku == "":
		return ProductDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "product sku is required")
	case name == "":
		return ProductDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	case slug == "":
		return ProductDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "product slug is required")
	case input.CategoryID == uuid.Nil:
		return ProductDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "category id is required")
	case input.PriceCents < 0:
		return ProductDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	case input.Stock < 0:
		return ProductDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}

	currency := input.Currency
	if currency == "" {
		currency = enums.CurrencyUSD
	}
	if !currency.IsValid() {
		return ProductDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid currency")
	}
	status := input.Status
	if status == "" {
		status = enums.ProductStatusDraft
	}
	if !status.IsValid() {
		return ProductDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid product status")
	}

	record, err := s.repo.Create(ctx, &models.Product{
		SKU:                 sku,
		Name:                name,
		Slug:                slug,
		Description:         input.Description,
		CategoryID:          input.CategoryID,
		PriceCents:          input.PriceCents,
		CompareAtPriceCents: input.CompareAtPriceCents,
		Currency:            currency,
		Stock:               input.Stock,
		Status:              status,
		Tags:                input.Tags,
		ImageURL:            input.ImageURL,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return ProductDTO{}, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "product sku or slug already exists")
		}
		return ProductDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return ToDTO(record), nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (ProductDTO, error) {
	if id == uuid.Nil {
		return ProductDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ProductDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
		}
		return ProductDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return ProductDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "product name cannot be empty")
		}
		record.Name = name
	}
	if input.Slug != nil {
		slug := strings.ToLower(strings.TrimSpace(*input.Slug))
		if slug == "" {
			return ProductDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "product slug cannot be empty")
		}
		record.Slug = slug
	}
	if input.Description != nil {
		record.Description = input.Description
	}
	if input.CategoryID != nil {
		if *input.CategoryID == uuid.Nil {
			return ProductDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "category id cannot be empty")
		}
		record.CategoryID = *input.CategoryID
	}
	if input.PriceCents != nil {
		if *input.PriceCents < 0 {
			return ProductDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
		}
		record.PriceCents = *input.PriceCents
	}
	if input.CompareAtPriceCents != nil {
		record.CompareAtPriceCents = input.CompareAtPriceCents
	}
	if input.Currency != nil {
		if !input.Currency.IsValid() {
			return ProductDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid currency")
		}
		record.Currency = *input.Currency
	}
	if input.Stock != nil {
		if *input.Stock < 0 {
			return ProductDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
		}
		record.Stock = *input.Stock
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return ProductDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid product status")
		}
		record.Status = *input.Status
	}
	if input.Tags != nil {
		record.Tags = input.Tags
	}
	if input.ImageURL != nil {
		record.ImageURL = input.ImageURL
	}

	updated, err := s.repo.Update(ctx, record)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return ProductDTO{}, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "product sku or slug already exists")
		}
		return ProductDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return ToDTO(updated), nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	return nil
}
