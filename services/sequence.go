package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"invoicing-backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	salePrefix    = "SALE-"
	invoicePrefix = "INV-"

	saleSequence = "sale"
)

func invoiceSequence(year int) string {
	return fmt.Sprintf("invoice:%d", year)
}

func FormatSaleNumber(n int64) string {
	return fmt.Sprintf("%s%04d", salePrefix, n)
}

func FormatInvoiceNumber(year int, n int64) string {
	return fmt.Sprintf("%s%d%04d", invoicePrefix, year, n)
}

// NextSaleNumber reserves the next sale number inside tx.
// Sale numbers form one series shared by all users.
func NextSaleNumber(tx *gorm.DB) (string, error) {
	n, err := nextValue(tx, saleSequence, func(tx *gorm.DB) (int64, error) {
		return latestSuffix(tx, &models.Sale{}, "sale_number", salePrefix)
	})
	if err != nil {
		return "", err
	}
	return FormatSaleNumber(n), nil
}

// NextInvoiceNumber reserves the next invoice number of now's year inside tx.
// Each calendar year starts again at 0001.
func NextInvoiceNumber(tx *gorm.DB, now time.Time) (string, error) {
	year := now.Year()
	prefix := fmt.Sprintf("%s%d", invoicePrefix, year)
	n, err := nextValue(tx, invoiceSequence(year), func(tx *gorm.DB) (int64, error) {
		return latestSuffix(tx, &models.Invoice{}, "invoice_number", prefix)
	})
	if err != nil {
		return "", err
	}
	return FormatInvoiceNumber(year, n), nil
}

// nextValue increments the named counter and returns the new value.
// A missing counter is created from seed, the highest number already in use.
func nextValue(tx *gorm.DB, name string, seed func(*gorm.DB) (int64, error)) (int64, error) {
	for attempt := 0; attempt < 2; attempt++ {
		res := tx.Model(&models.DocumentSequence{}).
			Where("name = ?", name).
			Update("last_value", gorm.Expr("last_value + 1"))
		if res.Error != nil {
			return 0, fmt.Errorf("increment sequence %s: %w", name, res.Error)
		}

		if res.RowsAffected > 0 {
			var seq models.DocumentSequence
			if err := tx.Where("name = ?", name).First(&seq).Error; err != nil {
				return 0, fmt.Errorf("read sequence %s: %w", name, err)
			}
			return seq.LastValue, nil
		}

		start, err := seed(tx)
		if err != nil {
			return 0, fmt.Errorf("seed sequence %s: %w", name, err)
		}
		seq := models.DocumentSequence{Name: name, LastValue: start}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seq).Error; err != nil {
			return 0, fmt.Errorf("create sequence %s: %w", name, err)
		}
	}
	return 0, fmt.Errorf("sequence %s could not be initialised", name)
}

// latestSuffix parses the numeric tail of the most recent document number
func latestSuffix(tx *gorm.DB, model interface{}, column, prefix string) (int64, error) {
	var numbers []string
	err := tx.Model(model).
		Where(column+" LIKE ?", prefix+"%").
		Order("id DESC").
		Limit(1).
		Pluck(column, &numbers).Error
	if err != nil {
		return 0, err
	}
	if len(numbers) == 0 {
		return 0, nil
	}

	n, err := strconv.ParseInt(strings.TrimPrefix(numbers[0], prefix), 10, 64)
	if err != nil {
		return 0, nil
	}
	return n, nil
}
