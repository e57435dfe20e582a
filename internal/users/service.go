package users

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/neonshoplabs/neonshop-backend/pkg/errors"
)

// Service exposes the admin-facing customer operations.
type Service interface {
	ListCustomers(ctx context.Context, search, cursor string, limit int) (CustomerPageDTO, error)
	GetCustomer(ctx context.Context, id uuid.UUID) (UserDTO, error)
	SetCustomerActive(ctx context.Context, id uuid.UUID, active bool) (UserDTO, error)
}

// ServiceParams groups dependencies for the users service.
type ServiceParams struct {
	Repo *Repository
}

type service struct {
	repo *Repository
}

// NewService builds a users service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "users repo is required")
	}
	return &service{repo: params.Repo}, nil
}

func (s *service) ListCustomers(ctx context.Context, search, cursor string, limit int) (CustomerPageDTO, error) {
	page, err := s.repo.ListCustomers(ctx, search, cursor, limit)
	if err != nil {
		return CustomerPageDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list customers")
	}
	return page, nil
}

func (s *service) GetCustomer(ctx context.Context, id uuid.UUID) (UserDTO, error) {
	if id == uuid.Nil {
		return UserDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return UserDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "customer not found")
		}
		return UserDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
	}
	return ToDTO(user), nil
}

func (s *service) SetCustomerActive(ctx context.Context, id uuid.UUID, active bool) (UserDTO, error) {
	current, err := s.GetCustomer(ctx, id)
	if err != nil {
		return UserDTO{}, err
	}
	if current.IsActive == active {
		return current, nil
	}
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return UserDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update customer status")
	}
	current.IsActive = active
	return current, nil
}
