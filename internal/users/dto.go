package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/neonshoplabs/neonshop-backend/pkg/db/models"
	"github.com/neonshoplabs/neonshop-backend/pkg/enums"
)

// CreateUserDTO captures the fields required to insert a new user.
type CreateUserDTO struct {
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Phone        *string
	Role         enums.UserRole
}

// ToModel converts the DTO into a persistable user model.
func (d CreateUserDTO) ToModel() *models.User {
	role := d.Role
	if role == "" {
		role = enums.UserRoleCustomer
	}
	return &models.User{
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		FirstName:    d.FirstName,
		LastName:     d.LastName,
		Phone:        d.Phone,
		Role:         role,
		IsActive:     true,
	}
}

// UserDTO is the public projection of a user.
type UserDTO struct {
	ID              uuid.UUID      `json:"id"`
	Email           string         `json:"email"`
	FirstName       string         `json:"first_name"`
	LastName        string         `json:"last_name"`
	Phone           *string        `json:"phone,omitempty"`
	Role            enums.UserRole `json:"role"`
	IsActive        bool           `json:"is_active"`
	EmailVerifiedAt *time.Time     `json:"email_verified_at,omitempty"`
	LastLoginAt     *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
}

// ToDTO converts a user model to its public projection.
func ToDTO(user *models.User) UserDTO {
	return UserDTO{
		ID:              user.ID,
		Email:           user.Email,
		FirstName:       user.FirstName,
		LastName:        user.LastName,
		Phone:           user.Phone,
		Role:            user.Role,
		IsActive:        user.IsActive,
		EmailVerifiedAt: user.EmailVerifiedAt,
		LastLoginAt:     user.LastLoginAt,
		CreatedAt:       user.CreatedAt,
	}
}

// CustomerPageDTO is a cursor-paginated slice of customers for the admin
// back-office.
type CustomerPageDTO struct {
	Customers  []UserDTO `json:"customers"`
	NextCursor string    `json:"next_cursor,omitempty"`
	Total      int64     `json:"total"`
}
