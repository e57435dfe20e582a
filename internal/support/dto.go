package support

import (
	"time"

	"github.com/google/uuid"

	"github.com/neonshoplabs/neonshop-backend/pkg/db/models"
	"github.com/neonshoplabs/neonshop-backend/pkg/enums"
)

// CreateMessageInput is the storefront contact-form payload. UserID is set
// from the session when the sender is signed in.
type CreateMessageInput struct {
	UserID  *uuid.UUID
	Email   string
	Name    string
	Subject string
	Body    string
}

// MessageDTO is the API projection of a support message.
type MessageDTO struct {
	ID         uuid.UUID           `json:"id"`
	UserID     *uuid.UUID          `json:"user_id,omitempty"`
	Email      string              `json:"email"`
	Name       string              `json:"name"`
	Subject    string              `json:"subject"`
	Body       string              `json:"body"`
	Status     enums.SupportStatus `json:"status"`
	ResolvedAt *time.Time          `json:"resolved_at,omitempty"`
	CreatedAt  time.Time           `json:"created_at"`
}

// MessagePageDTO is a cursor-paginated support inbox view.
type MessagePageDTO struct {
	Messages   []MessageDTO `json:"messages"`
	NextCursor string       `json:"next_cursor,omitempty"`
	Total      int64        `json:"total"`
}

// ListFilter narrows admin inbox listings.
type ListFilter struct {
	Status *enums.SupportStatus
	Cursor string
	Limit  int
}

// ToDTO converts a support message model into its API projection.
func ToDTO(message *models.SupportMessage) MessageDTO {
	return MessageDTO{
		ID:         message.ID,
		UserID:     message.UserID,
		Email:      message.Email,
		Name:       message.Name,
		Subject:    message.Subject,
		Body:       message.Body,
		Status:     message.Status,
		ResolvedAt: message.ResolvedAt,
		CreatedAt:  message.CreatedAt,
	}
}
