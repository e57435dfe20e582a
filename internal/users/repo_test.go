package users

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/neonshoplabs/neonshop-backend/pkg/db/models"
	"github.com/neonshoplabs/neonshop-backend/pkg/enums"
)

func setupUsersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  phone TEXT,
  role TEXT NOT NULL DEFAULT 'customer',
  is_active INTEGER NOT NULL DEFAULT 1,
  email_verified_at DATETIME,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	require.NoError(t, db.Exec("DELETE FROM users").Error)

	return db
}

func seedCustomer(t *testing.T, db *gorm.DB, email string, createdAt time.Time) *models.User {
	t.Helper()
	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: "hash",
		FirstName:    "Test",
		LastName:     "Customer",
		Role:         enums.UserRoleCustomer,
		IsActive:     true,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestListCustomersExcludesAdminsAndOrdersNewestFirst(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	base := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	oldest := seedCustomer(t, db, "a@example.com", base)
	middle := seedCustomer(t, db, "b@example.com", base.Add(time.Hour))
	newest := seedCustomer(t, db, "c@example.com", base.Add(2*time.Hour))

	admin := &models.User{
		ID:           uuid.New(),
		Email:        "root@example.com",
		PasswordHash: "hash",
		FirstName:    "Root",
		LastName:     "Admin",
		Role:         enums.UserRoleAdmin,
		IsActive:     true,
		CreatedAt:    base.Add(3 * time.Hour),
		UpdatedAt:    base.Add(3 * time.Hour),
	}
	require.NoError(t, db.Create(admin).Error)

	page, err := repo.ListCustomers(ctx, "", "", 10)
	require.NoError(t, err)

	require.Len(t, page.Customers, 3)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, newest.ID, page.Customers[0].ID)
	assert.Equal(t, middle.ID, page.Customers[1].ID)
	assert.Equal(t, oldest.ID, page.Customers[2].ID)
	assert.Empty(t, page.NextCursor)
}

func TestListCustomersPaginatesWithCursor(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	base := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		seedCustomer(t, db, fmt.Sprintf("cust%d@example.com", i), base.Add(time.Duration(i)*time.Minute))
	}

	first, err := repo.ListCustomers(ctx, "", "", 2)
	require.NoError(t, err)
	require.Len(t, first.Customers, 2)
	require.NotEmpty(t, first.NextCursor)
	assert.Equal(t, int64(5), first.Total)

	second, err := repo.ListCustomers(ctx, "", first.NextCursor, 2)
	require.NoError(t, err)
	require.Len(t, second.Customers, 2)

	seen := map[uuid.UUID]bool{}
	for _, c := range append(first.Customers, second.Customers...) {
		assert.False(t, seen[c.ID], "customer %s returned twice", c.ID)
		seen[c.ID] = true
	}
}

func TestListCustomersSearchMatchesEmailAndName(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	base := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	match := seedCustomer(t, db, "neon.shopper@example.com", base)
	seedCustomer(t, db, "other@example.com", base.Add(time.Minute))

	page, err := repo.ListCustomers(ctx, "NEON", "", 10)
	require.NoError(t, err)
	require.Len(t, page.Customers, 1)
	assert.Equal(t, match.ID, page.Customers[0].ID)
}

func TestSetActiveTogglesFlag(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	user := seedCustomer(t, db, "toggle@example.com", time.Now().UTC())

	require.NoError(t, repo.SetActive(ctx, user.ID, false))
	found, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, found.IsActive)

	require.NoError(t, repo.SetActive(ctx, user.ID, true))
	found, err = repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, found.IsActive)
}

func TestMarkEmailVerifiedStampsOnce(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	user := seedCustomer(t, db, "verify@example.com", time.Now().UTC())

	firstStamp := time.Date(2025, 8, 2, 9, 0, 0, 0, time.UTC)
	require.NoError(t, repo.MarkEmailVerified(ctx, user.ID, firstStamp))

	found, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, found.EmailVerifiedAt)
	assert.True(t, found.EmailVerifiedAt.Equal(firstStamp))

	require.NoError(t, repo.MarkEmailVerified(ctx, user.ID, firstStamp.Add(time.Hour)))
	found, err = repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, found.EmailVerifiedAt.Equal(firstStamp))
}
