package categories

import (
	"time"

	"github.com/google/uuid"

	"github.com/neonshoplabs/neonshop-backend/pkg/db/models"
)

// CategoryDTO is the public projection of a catalog category.
type CategoryDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description *string   `json:"description,omitempty"`
	Position    int       `json:"position"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ToDTO converts the model into its public projection.
func ToDTO(category *models.Category) CategoryDTO {
	return CategoryDTO{
		ID:          category.ID,
		Name:        category.Name,
		Slug:        category.Slug,
		Description: category.Description,
		Position:    category.Position,
		CreatedAt:   category.CreatedAt,
		UpdatedAt:   category.UpdatedAt,
	}
}

// CreateCategoryInput captures the admin payload for a new category.
type CreateCategoryInput struct {
	Name        string
	Slug        string
	Description *string
	Position    int
}

// UpdateCategoryInput carries partial updates; nil fields are left untouched.
type UpdateCategoryInput struct {
	Name        *string
	Slug        *string
	Description *string
	Position    *int
}
