package categories

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/neonshoplabs/neonshop-backend/pkg/db"
	"github.com/neonshoplabs/neonshop-backend/pkg/db/models"
	pkgerrors "github.com/neonshoplabs/neonshop-backend/pkg/errors"
)

// Service exposes category reads for the storefront and CRUD for admins.
type Service interface {
	List(ctx context.Context) ([]CategoryDTO, error)
	GetBySlug(ctx context.Context, slug string) (CategoryDTO, error)
	Create(ctx context.Context, input CreateCategoryInput) (CategoryDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateCategoryInput) (CategoryDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ServiceParams groups dependencies for the category service.
type ServiceParams struct {
	Repo CategoryRepository
}

type service struct {
	repo CategoryRepository
}

// NewService builds a category service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category repo is required")
	}
	return &service{repo: params.Repo}, nil
}

func (s *service) List(ctx context.Context) ([]CategoryDTO, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	out := make([]CategoryDTO, 0, len(records))
	for i := range records {
		out = append(out, ToDTO(&records[i]))
	}
	return out, nil
}

func (s *service) GetBySlug(ctx context.Context, slug string) (CategoryDTO, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return CategoryDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "category slug is required")
	}
	record, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return CategoryDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "category not found")
		}
		return CategoryDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}
	return ToDTO(record), nil
}

func (s *service) Create(ctx context.Context, input CreateCategoryInput) (CategoryDTO, error) {
	name := strings.TrimSpace(input.Name)
	slug := normalizeSlug(input.Slug)
	if name == "" {
		return CategoryDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "category name is required")
	}
	if slug == "" {
		return CategoryDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "category slug is required")
	}

	record, err := s.repo.Create(ctx, &models.Category{
		Name:        name,
		Slug:        slug,
		Description: input.Description,
		Position:    input.Position,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return CategoryDTO{}, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "category slug already exists")
		}
		return CategoryDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create category")
	}
	return ToDTO(record), nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateCategoryInput) (CategoryDTO, error) {
	if id == uuid.Nil {
		return CategoryDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "category id is required")
	}
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return CategoryDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "category not found")
		}
		return CategoryDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return CategoryDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "category name cannot be empty")
		}
		record.Name = name
	}
	if input.Slug != nil {
		slug := normalizeSlug(*input.Slug)
		if slug == "" {
			return CategoryDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "category slug cannot be empty")
		}
		record.Slug = slug
	}
	if input.Description != nil {
		record.Description = input.Description
	}
	if input.Position != nil {
		record.Position = *input.Position
	}

	updated, err := s.repo.Update(ctx, record)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return CategoryDTO{}, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "category slug already exists")
		}
		return CategoryDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update category")
	}
	return ToDTO(updated), nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "category id is required")
	}
	count, err := s.repo.CountProducts(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count category products")
	}
	if count > 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "category still has products")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete category")
	}
	return nil
}

func normalizeSlug(slug string) string {
	return strings.ToLower(strings.TrimSpace(slug))
}
