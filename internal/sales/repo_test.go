package sales

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/retailpulse/retailpulse-backend/pkg/db/models"
)

func newRepoTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:salesrepo_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Product{},
		&models.SalesTransaction{},
		&models.SalesDetail{},
	))
	return db
}

func TestReplaceDetailsSwapsLines(t *testing.T) {
	t.Parallel()

	db := newRepoTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	txn := &models.SalesTransaction{
		BusinessEntityID: 1,
		TaxPolicyID:      1,
		Subtotal:         decimal.RequireFromString("10.00"),
		TaxAmount:        decimal.RequireFromString("0.90"),
		Total:            decimal.RequireFromString("10.90"),
		Details: []models.SalesDetail{
			{ProductID: 1, Quantity: 2, UnitPrice: decimal.RequireFromString("5.00")},
		},
	}
	require.NoError(t, repo.Create(ctx, txn))

	replacement := []models.SalesDetail{
		{ProductID: 2, Quantity: 1, UnitPrice: decimal.RequireFromString("3.00")},
		{ProductID: 3, Quantity: 4, UnitPrice: decimal.RequireFromString("1.25")},
	}
	require.NoError(t, repo.ReplaceDetails(ctx, txn.ID, replacement))

	loaded, err := repo.FindByID(ctx, txn.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.Len(t, loaded.Details, 2)
	assert.Equal(t, int64(2), loaded.Details[0].ProductID)
	assert.Equal(t, int64(3), loaded.Details[1].ProductID)
	assert.Equal(t, 4, loaded.Details[1].Quantity)
}

func TestListDetailRecordsJoinsProducts(t *testing.T) {
	t.Parallel()

	db := newRepoTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	product := &models.Product{SKU: "RP9", Description: "carton of widgets", IsActive: true}
	require.NoError(t, db.Create(product).Error)

	txn := &models.SalesTransaction{
		BusinessEntityID: 1,
		TaxPolicyID:      1,
		Subtotal:         decimal.RequireFromString("6.00"),
		TaxAmount:        decimal.RequireFromString("0.54"),
		Total:            decimal.RequireFromString("6.54"),
		Details: []models.SalesDetail{
			{ProductID: product.ID, Quantity: 3, UnitPrice: decimal.RequireFromString("2.00")},
		},
	}
	require.NoError(t, repo.Create(ctx, txn))

	records, err := repo.ListDetailRecords(ctx, txn.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "RP9", records[0].ProductSKU)
	assert.Equal(t, "carton of widgets", records[0].ProductDescription)
	assert.Equal(t, 3, records[0].Detail.Quantity)
}

func TestFindByIDMissingReturnsNil(t *testing.T) {
	t.Parallel()

	db := newRepoTestDB(t)
	repo := NewRepository(db)

	loaded, err := repo.FindByID(context.Background(), 404)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}
