package support

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/neonshoplabs/neonshop-backend/pkg/db/models"
	"github.com/neonshoplabs/neonshop-backend/pkg/enums"
	pkgerrors "github.com/neonshoplabs/neonshop-backend/pkg/errors"
)

// Service exposes contact-form intake and the admin triage inbox.
type Service interface {
	CreateMessage(ctx context.Context, input CreateMessageInput) (MessageDTO, error)
	AdminList(ctx context.Context, filter ListFilter) (MessagePageDTO, error)
	AdminGet(ctx context.Context, id uuid.UUID) (MessageDTO, error)
	AdminUpdateStatus(ctx context.Context, id uuid.UUID, next enums.SupportStatus) (MessageDTO, error)
}

// ServiceParams groups dependencies for the support service.
type ServiceParams struct {
	Repo SupportRepository
}

type service struct {
	repo SupportRepository
	now  func() time.Time
}

// NewService builds a support service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "support repo is required")
	}
	return &service{
		repo: params.Repo,
		now:  func() time.Time { return time.Now().UTC() },
	}, nil
}

// CreateMessage records a storefront contact submission as an open ticket.
func (s *service) CreateMessage(ctx context.Context, input CreateMessageInput) (MessageDTO, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	name := strings.TrimSpace(input.Name)
	subject := strings.TrimSpace(input.Subject)
	body := strings.TrimSpace(input.Body)

	switch {
	case email == "" || !strings.Contains(email, "@"):
		return MessageDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "a valid email is required")
	case name == "":
		return MessageDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	case subject == "":
		return MessageDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "subject is required")
	case body == "":
		return MessageDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "message body is required")
	}

	message := &models.SupportMessage{
		UserID:  input.UserID,
		Email:   email,
		Name:    name,
		Subject: subject,
		Body:    body,
		Status:  enums.SupportStatusOpen,
	}
	if err := s.repo.Create(ctx, message); err != nil {
		return MessageDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create support message")
	}
	return ToDTO(message), nil
}

// AdminList returns the triage inbox.
func (s *service) AdminList(ctx context.Context, filter ListFilter) (MessagePageDTO, error) {
	if filter.Status != nil && !filter.Status.IsValid() {
		return MessagePageDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid support status filter")
	}
	entries, nextCursor, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return MessagePageDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list support messages")
	}
	page := MessagePageDTO{
		Messages:   make([]MessageDTO, 0, len(entries)),
		NextCursor: nextCursor,
		Total:      total,
	}
	for i := range entries {
		page.Messages = append(page.Messages, ToDTO(&entries[i]))
	}
	return page, nil
}

// AdminGet returns a single message by ID.
func (s *service) AdminGet(ctx context.Context, id uuid.UUID) (MessageDTO, error) {
	message, err := s.load(ctx, id)
	if err != nil {
		return MessageDTO{}, err
	}
	return ToDTO(message), nil
}

// AdminUpdateStatus advances a message along the triage flow.
func (s *service) AdminUpdateStatus(ctx context.Context, id uuid.UUID, next enums.SupportStatus) (MessageDTO, error) {
	if !next.IsValid() {
		return MessageDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid support status")
	}
	message, err := s.load(ctx, id)
	if err != nil {
		return MessageDTO{}, err
	}
	if !message.Status.CanTransitionTo(next) {
		return MessageDTO{}, pkgerrors.New(
			pkgerrors.CodeStateConflict,
			fmt.Sprintf("support message cannot move from %s to %s", message.Status, next),
		)
	}

	var resolvedAt *time.Time
	if next == enums.SupportStatusResolved {
		now := s.now()
		resolvedAt = &now
	}
	if err := s.repo.UpdateStatus(ctx, message.ID, next, resolvedAt); err != nil {
		return MessageDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update support status")
	}

	message.Status = next
	if resolvedAt != nil {
		message.ResolvedAt = resolvedAt
	}
	return ToDTO(message), nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.SupportMessage, error) {
	message, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "support message not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load support message")
	}
	return message, nil
}
