package services

import (
	"testing"
	"time"

	"invoicing-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestNextSaleNumber(t *testing.T) {
	t.Run("starts at one without prior sales", func(t *testing.T) {
		db := setupTestDB(t)

		number, err := NextSaleNumber(db)
		require.NoError(t, err)
		assert.Equal(t, "SALE-0001", number)

		number, err = NextSaleNumber(db)
		require.NoError(t, err)
		assert.Equal(t, "SALE-0002", number)
	})

	t.Run("continues from the latest existing sale", func(t *testing.T) {
		db := setupTestDB(t)
		user := createUser(t, db, "seq@example.com")
		client := createClient(t, db, user.ID, "Acme")
		sale := models.Sale{UserID: user.ID, ClientID: client.ID, SaleNumber: "SALE-0042", Date: date(t, "2026-01-10")}
		require.NoError(t, db.Create(&sale).Error)

		number, err := NextSaleNumber(db)
		require.NoError(t, err)
		assert.Equal(t, "SALE-0043", number)

		number, err = NextSaleNumber(db)
		require.NoError(t, err)
		assert.Equal(t, "SALE-0044", number)
	})

	t.Run("rolled back reservation is reused", func(t *testing.T) {
		db := setupTestDB(t)

		err := db.Transaction(func(tx *gorm.DB) error {
			number, err := NextSaleNumber(tx)
			require.NoError(t, err)
			assert.Equal(t, "SALE-0001", number)
			return assert.AnError
		})
		require.ErrorIs(t, err, assert.AnError)

		number, err := NextSaleNumber(db)
		require.NoError(t, err)
		assert.Equal(t, "SALE-0001", number)
	})
}

func TestNextInvoiceNumber(t *testing.T) {
	db := setupTestDB(t)
	autumn := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

	number, err := NextInvoiceNumber(db, autumn)
	require.NoError(t, err)
	assert.Equal(t, "INV-20260001", number)

	number, err = NextInvoiceNumber(db, autumn)
	require.NoError(t, err)
	assert.Equal(t, "INV-20260002", number)

	t.Run("restarts in a new year", func(t *testing.T) {
		number, err := NextInvoiceNumber(db, autumn.AddDate(1, 0, 0))
		require.NoError(t, err)
		assert.Equal(t, "INV-20270001", number)
	})

	t.Run("seeds from existing invoices of the year", func(t *testing.T) {
		db := setupTestDB(t)
		user := createUser(t, db, "inv@example.com")
		client := createClient(t, db, user.ID, "Acme")
		for _, n := range []string{"INV-20250099", "INV-20260007"} {
			inv := models.Invoice{
				UserID: user.ID, ClientID: client.ID, InvoiceNumber: n,
				Date: date(t, "2026-01-01"), DueDate: date(t, "2026-02-01"),
				Status: models.InvoicePending,
			}
			require.NoError(t, db.Create(&inv).Error)
		}

		number, err := NextInvoiceNumber(db, autumn)
		require.NoError(t, err)
		assert.Equal(t, "INV-20260008", number)
	})
}

func TestFormatNumbers(t *testing.T) {
	assert.Equal(t, "SALE-0007", FormatSaleNumber(7))
	assert.Equal(t, "SALE-12345", FormatSaleNumber(12345))
	assert.Equal(t, "INV-20260012", FormatInvoiceNumber(2026, 12))
}
