package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/invoicing/backend/internal/domain/catalog"
	"github.com/invoicing/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupProductTestDB creates an in-memory SQLite database for testing
func setupProductTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.Exec(`
		CREATE TABLE products (
			id TEXT PRIMARY KEY,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			version INTEGER NOT NULL DEFAULT 1,
			organization_id TEXT NOT NULL,
			created_by TEXT,
			name TEXT NOT NULL,
			description TEXT,
			unit_price NUMERIC NOT NULL DEFAULT 0,
			unit TEXT,
			tax_rate NUMERIC NOT NULL DEFAULT 0,
			sku TEXT,
			is_active INTEGER NOT NULL DEFAULT 1
		)
	`).Error
	require.NoError(t, err)

	return db
}

func newTestProduct(t *testing.T, orgID uuid.UUID, name string, price string) *catalog.Product {
	p, err := catalog.NewProduct(orgID, name, decimal.RequireFromString(price))
	require.NoError(t, err)
	return p
}

func TestGormProductRepository_SaveAndFind(t *testing.T) {
	db := setupProductTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()
	orgID := uuid.New()

	product := newTestProduct(t, orgID, "Consulting Hour", "150.00")
	product.Unit = "hour"
	product.SKU = "CONS-01"
	require.NoError(t, repo.Save(ctx, product))

	retrieved, err := repo.FindByIDForOrg(ctx, orgID, product.ID)
	require.NoError(t, err)
	assert.Equal(t, product.ID, retrieved.ID)
	assert.Equal(t, orgID, retrieved.OrganizationID)
	assert.Equal(t, "Consulting Hour", retrieved.Name)
	assert.Equal(t, "hour", retrieved.Unit)
	assert.Equal(t, "CONS-01", retrieved.SKU)
	assert.True(t, retrieved.UnitPrice.Equal(decimal.RequireFromString("150.00")))
	assert.True(t, retrieved.IsActive)
}

func TestGormProductRepository_FindByIDForOrg_WrongOrg(t *testing.T) {
	db := setupProductTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()

	product := newTestProduct(t, uuid.New(), "Consulting Hour", "150.00")
	require.NoError(t, repo.Save(ctx, product))

	_, err := repo.FindByIDForOrg(ctx, uuid.New(), product.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormProductRepository_FindAllForOrg(t *testing.T) {
	db := setupProductTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()
	orgID := uuid.New()
	otherOrgID := uuid.New()

	require.NoError(t, repo.Save(ctx, newTestProduct(t, orgID, "Product A", "10.00")))
	require.NoError(t, repo.Save(ctx, newTestProduct(t, orgID, "Product B", "20.00")))
	require.NoError(t, repo.Save(ctx, newTestProduct(t, otherOrgID, "Other Org Product", "30.00")))

	products, err := repo.FindAllForOrg(ctx, orgID, shared.Filter{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, products, 2)
	for _, p := range products {
		assert.Equal(t, orgID, p.OrganizationID)
	}

	// pagination caps the page
	page, err := repo.FindAllForOrg(ctx, orgID, shared.Filter{Page: 1, PageSize: 1})
	require.NoError(t, err)
	assert.Len(t, page, 1)
}

func TestGormProductRepository_CountForOrg_IsActiveFilter(t *testing.T) {
	db := setupProductTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()
	orgID := uuid.New()

	active := newTestProduct(t, orgID, "Active", "10.00")
	require.NoError(t, repo.Save(ctx, active))

	archived := newTestProduct(t, orgID, "Archived", "10.00")
	archived.Archive()
	require.NoError(t, repo.Save(ctx, archived))

	count, err := repo.CountForOrg(ctx, orgID, shared.Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	count, err = repo.CountForOrg(ctx, orgID, shared.Filter{
		Filters: map[string]interface{}{"is_active": true},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestGormProductRepository_DeleteForOrg(t *testing.T) {
	db := setupProductTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()
	orgID := uuid.New()

	product := newTestProduct(t, orgID, "Disposable", "5.00")
	require.NoError(t, repo.Save(ctx, product))

	// wrong org must not reach the row
	err := repo.DeleteForOrg(ctx, uuid.New(), product.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	require.NoError(t, repo.DeleteForOrg(ctx, orgID, product.ID))

	_, err = repo.FindByIDForOrg(ctx, orgID, product.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	// deleting again reports not found
	err = repo.DeleteForOrg(ctx, orgID, product.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
