package support

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/neonshoplabs/neonshop-backend/pkg/db/models"
	"github.com/neonshoplabs/neonshop-backend/pkg/enums"
	"github.com/neonshoplabs/neonshop-backend/pkg/pagination"
)

// SupportRepository defines the persistence surface required by the service.
type SupportRepository interface {
	Create(ctx context.Context, message *models.SupportMessage) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.SupportMessage, error)
	List(ctx context.Context, filter ListFilter) ([]models.SupportMessage, string, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.SupportStatus, resolvedAt *time.Time) error
}

// Repository encapsulates support-message persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a support repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new contact message.
func (r *Repository) Create(ctx context.Context, message *models.SupportMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}

// FindByID loads one message.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.SupportMessage, error) {
	var message models.SupportMessage
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&message).Error; err != nil {
		return nil, err
	}
	return &message, nil
}

// List returns the support inbox, newest first, optionally filtered by status.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]models.SupportMessage, string, int64, error) {
	normalizedLimit := pagination.NormalizeLimit(filter.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(filter.Limit)
	decodedCursor, err := pagination.ParseCursor(strings.TrimSpace(filter.Cursor))
	if err != nil {
		return nil, "", 0, err
	}

	query := r.db.WithContext(ctx).Model(&models.SupportMessage{})
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, "", 0, err
	}

	if decodedCursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			decodedCursor.CreatedAt, decodedCursor.CreatedAt, decodedCursor.ID,
		)
	}

	var entries []models.SupportMessage
	if err := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(limitWithBuffer).
		Find(&entries).Error; err != nil {
		return nil, "", 0, err
	}

	nextCursor := ""
	if len(entries) > normalizedLimit {
		entries = entries[:normalizedLimit]
		last := entries[len(entries)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}

	return entries, nextCursor, total, nil
}

// UpdateStatus persists a triage state change.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.SupportStatus, resolvedAt *time.Time) error {
	updates := map[string]any{"status": status}
	if resolvedAt != nil {
		updates["resolved_at"] = *resolvedAt
	}
	result := r.db.WithContext(ctx).
		Model(&models.SupportMessage{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
