package categories

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/neonshoplabs/neonshop-backend/pkg/db/models"
	pkgerrors "github.com/neonshoplabs/neonshop-backend/pkg/errors"
)

type stubCategoryRepo struct {
	categories map[uuid.UUID]*models.Category
	bySlug     map[string]*models.Category
	createErr  error
	productN   int64
	deleted    []uuid.UUID
}

func newStubCategoryRepo() *stubCategoryRepo {
	return &stubCategoryRepo{
		categories: map[uuid.UUID]*models.Category{},
		bySlug:     map[string]*models.Category{},
	}
}

func (s *stubCategoryRepo) List(ctx context.Context) ([]models.Category, error) {
	out := make([]models.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, *c)
	}
	return out, nil
}

func (s *stubCategoryRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	if c, ok := s.categories[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCategoryRepo) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	if c, ok := s.bySlug[slug]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCategoryRepo) Create(ctx context.Context, category *models.Category) (*models.Category, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	category.ID = uuid.New()
	s.categories[category.ID] = category
	s.bySlug[category.Slug] = category
	return category, nil
}

func (s *stubCategoryRepo) Update(ctx context.Context, category *models.Category) (*models.Category, error) {
	s.categories[category.ID] = category
	s.bySlug[category.Slug] = category
	return category, nil
}

func (s *stubCategoryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	s.deleted = append(s.deleted, id)
	delete(s.categories, id)
	return nil
}

func (s *stubCategoryRepo) CountProducts(ctx context.Context, id uuid.UUID) (int64, error) {
	return s.productN, nil
}

func newTestService(t *testing.T, repo CategoryRepository) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{Repo: repo})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestCreateNormalizesSlug(t *testing.T) {
	repo := newStubCategoryRepo()
	svc := newTestService(t, repo)

	dto, err := svc.Create(context.Background(), CreateCategoryInput{
		Name: "Neon Lamps",
		Slug: "  Neon-Lamps  ",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if dto.Slug != "neon-lamps" {
		t.Fatalf("expected normalized slug, got %q", dto.Slug)
	}
}

func TestCreateValidatesInput(t *testing.T) {
	svc := newTestService(t, newStubCategoryRepo())

	_, err := svc.Create(context.Background(), CreateCategoryInput{Slug: "x"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGetBySlugNotFound(t *testing.T) {
	svc := newTestService(t, newStubCategoryRepo())

	_, err := svc.GetBySlug(context.Background(), "missing")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateAppliesPartialFields(t *testing.T) {
	repo := newStubCategoryRepo()
	svc := newTestService(t, repo)

	created, err := svc.Create(context.Background(), CreateCategoryInput{Name: "Lamps", Slug: "lamps", Position: 1})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	name := "Desk Lamps"
	updated, err := svc.Update(context.Background(), created.ID, UpdateCategoryInput{Name: &name})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Desk Lamps" {
		t.Fatalf("name not updated: %q", updated.Name)
	}
	if updated.Slug != "lamps" || updated.Position != 1 {
		t.Fatalf("untouched fields changed: %+v", updated)
	}
}

func TestDeleteBlockedWhileProductsRemain(t *testing.T) {
	repo := newStubCategoryRepo()
	repo.productN = 3
	svc := newTestService(t, repo)

	err := svc.Delete(context.Background(), uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
	if len(repo.deleted) != 0 {
		t.Fatal("delete must not run while products reference the category")
	}
}

func TestDeleteRemovesEmptyCategory(t *testing.T) {
	repo := newStubCategoryRepo()
	svc := newTestService(t, repo)

	id := uuid.New()
	repo.categories[id] = &models.Category{ID: id, Name: "Old", Slug: "old"}

	if err := svc.Delete(context.Background(), id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(repo.deleted) != 1 || repo.deleted[0] != id {
		t.Fatalf("unexpected delete calls: %v", repo.deleted)
	}
}
