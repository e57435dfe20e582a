package orders

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

// OrdersRepository defines the persistence surface required by the service.
type OrdersRepository interface {
	Create(ctx context.Context, tx *gorm.DB, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByIDForUser(ctx context.Context, userID, id uuid.UUID) (*models.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID, cursor string, limit int) ([]models.Order, string, int64, error)
	List(ctx context.Context, filter ListFilter) ([]models.Order, string, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus, confirmedAt, canceledAt *time.Time) error
}

// Repository encapsulates order persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an order repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts the order and its line items inside the given transaction.
func (r *Repository) Create(ctx context.Context, tx *gorm.DB, order *models.Order) error {
	return tx.WithContext(ctx).Create(order).Error
}

// FindByID loads an order with its line items.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByIDForUser loads an order only if it belongs to the given user.
func (r *Repository) FindByIDForUser(ctx context.Context, userID, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ? AND user_id = ?", id, userID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListByUser returns the user's order history, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID, cursor string, limit int) ([]models.Order, string, int64, error) {
	return r.list(ctx, ListFilter{Cursor: cursor, Limit: limit}, &userID)
}

// List returns orders across all users, optionally filtered by status.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]models.Order, string, int64, error) {
	return r.list(ctx, filter, nil)
}

func (r *Repository) list(ctx context.Context, filter ListFilter, userID *uuid.UUID) ([]models.Order, string, int64, error) {
	normalizedLimit := pagination.NormalizeLimit(filter.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(filter.Limit)
	decodedCursor, err := pagination.ParseCursor(strings.TrimSpace(filter.Cursor))
	if err != nil {
		return nil, "", 0, err
	}

	query := r.db.WithContext(ctx).Model(&models.Order{})
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}
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

	var entries []models.Order
	if err := query.
		Preload("Items").
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

// UpdateStatus persists a status change and its lifecycle timestamps.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus, confirmedAt, canceledAt *time.Time) error {
	updates := map[string]any{"status": status}
	if confirmedAt != nil {
		updates["confirmed_at"] = *confirmedAt
	}
	if canceledAt != nil {
		updates["canceled_at"] = *canceledAt
	}
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
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
