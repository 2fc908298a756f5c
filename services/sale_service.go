package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"invoicing-backend/models"
	"invoicing-backend/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SaleItemInput is one requested line; a nil ID creates a new line
type SaleItemInput struct {
	ID        *uint
	ArticleID uint
	Quantity  int
	Price     decimal.Decimal
	Total     decimal.Decimal
}

type SaleInput struct {
	ClientID uint
	Date     time.Time
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
	Notes    string
	Items    []SaleItemInput
}

// SaleService writes a sale and its items as one unit
type SaleService struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewSaleService(db *gorm.DB, logger *zap.Logger) *SaleService {
	return &SaleService{db: db, logger: logger.Named("sales")}
}

func (s *SaleService) List(ctx context.Context, q *ListQuery, page, perPage int) (*Page[models.Sale], error) {
	q.OrderBy("date DESC, id DESC")
	return Paginate[models.Sale](s.db.WithContext(ctx), q, page, perPage, "Client", "Items.Article")
}

func (s *SaleService) Get(ctx context.Context, userID, id uint) (*models.Sale, error) {
	return loadSale(s.db.WithContext(ctx), userID, id)
}

func (s *SaleService) Create(ctx context.Context, userID uint, in SaleInput) (*models.Sale, error) {
	var saleID uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkReferences(tx, userID, in, nil); err != nil {
			return err
		}

		number, err := NextSaleNumber(tx)
		if err != nil {
			return err
		}

		sale := models.Sale{
			UserID:     userID,
			ClientID:   in.ClientID,
			SaleNumber: number,
			Date:       in.Date,
			Subtotal:   in.Subtotal,
			Discount:   in.Discount,
			Total:      in.Total,
			Notes:      in.Notes,
		}
		if err := tx.Omit("Client", "Items").Create(&sale).Error; err != nil {
			return err
		}

		for _, item := range in.Items {
			if err := createItem(tx, sale.ID, item); err != nil {
				return err
			}
		}
		saleID = sale.ID
		return nil
	})
	if err != nil {
		return nil, s.wrap("create", err)
	}

	s.warnOnSubtotalMismatch(saleID, in)
	return s.Get(ctx, userID, saleID)
}

// Update replaces the header and reconciles items by id: lines missing from
// in.Items are deleted, lines with an id are updated, lines without are created.
func (s *SaleService) Update(ctx context.Context, userID, id uint, in SaleInput) (*models.Sale, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sale models.Sale
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&sale).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		var existing []uint
		if err := tx.Model(&models.SaleItem{}).Where("sale_id = ?", sale.ID).Pluck("id", &existing).Error; err != nil {
			return err
		}
		if err := checkReferences(tx, userID, in, existing); err != nil {
			return err
		}

		err := tx.Model(&sale).Updates(map[string]interface{}{
			"client_id": in.ClientID,
			"date":      in.Date,
			"subtotal":  in.Subtotal,
			"discount":  in.Discount,
			"total":     in.Total,
			"notes":     in.Notes,
		}).Error
		if err != nil {
			return err
		}

		keep := make(map[uint]bool, len(in.Items))
		for _, item := range in.Items {
			if item.ID != nil {
				keep[*item.ID] = true
			}
		}
		var stale []uint
		for _, itemID := range existing {
			if !keep[itemID] {
				stale = append(stale, itemID)
			}
		}
		if len(stale) > 0 {
			if err := tx.Where("sale_id = ? AND id IN ?", sale.ID, stale).Delete(&models.SaleItem{}).Error; err != nil {
				return err
			}
		}

		for _, item := range in.Items {
			if item.ID == nil {
				if err := createItem(tx, sale.ID, item); err != nil {
					return err
				}
				continue
			}
			err := tx.Model(&models.SaleItem{}).
				Where("id = ? AND sale_id = ?", *item.ID, sale.ID).
				Updates(map[string]interface{}{
					"article_id": item.ArticleID,
					"quantity":   item.Quantity,
					"price":      item.Price,
					"total":      item.Total,
				}).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, s.wrap("update", err)
	}

	s.warnOnSubtotalMismatch(id, in)
	return s.Get(ctx, userID, id)
}

// Delete removes a sale and its items unless an invoice references it
func (s *SaleService) Delete(ctx context.Context, userID, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sale models.Sale
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&sale).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		var invoices int64
		if err := tx.Model(&models.Invoice{}).Where("sale_id = ?", sale.ID).Count(&invoices).Error; err != nil {
			return err
		}
		if invoices > 0 {
			return &ConflictError{Message: "Cannot delete sale with related invoice"}
		}

		if err := tx.Where("sale_id = ?", sale.ID).Delete(&models.SaleItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&sale).Error
	})
	if err != nil {
		return s.wrap("delete", err)
	}
	return nil
}

// wrap passes domain errors through and marks everything else as a
// failed transaction
func (s *SaleService) wrap(op string, err error) error {
	var conflict *ConflictError
	var invalid *ValidationError
	if errors.Is(err, ErrNotFound) || errors.As(err, &conflict) || errors.As(err, &invalid) {
		return err
	}
	s.logger.Error("sale transaction failed", zap.String("op", op), zap.Error(err))
	return &TransactionError{Op: op, Err: err}
}

// warnOnSubtotalMismatch logs totals the client computed inconsistently.
// The submitted amounts are stored as sent.
func (s *SaleService) warnOnSubtotalMismatch(saleID uint, in SaleInput) {
	sum := decimal.Zero
	for _, item := range in.Items {
		sum = sum.Add(item.Total)
	}
	if !sum.Equal(in.Subtotal) {
		s.logger.Warn("sale subtotal differs from item totals",
			zap.Uint("sale_id", saleID),
			zap.String("subtotal", in.Subtotal.StringFixed(2)),
			zap.String("items_total", sum.StringFixed(2)),
		)
	}
}

func loadSale(db *gorm.DB, userID, id uint) (*models.Sale, error) {
	var sale models.Sale
	err := db.Preload("Client").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Items.Article").
		Where("id = ? AND user_id = ?", id, userID).
		First(&sale).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &sale, nil
}

func createItem(tx *gorm.DB, saleID uint, in SaleItemInput) error {
	item := models.SaleItem{
		SaleID:    saleID,
		ArticleID: in.ArticleID,
		Quantity:  in.Quantity,
		Price:     in.Price,
		Total:     in.Total,
	}
	return tx.Omit("Article").Create(&item).Error
}

// checkReferences verifies that the client, every article and every item id
// belong to the caller. existing holds the item ids of the sale being updated.
func checkReferences(tx *gorm.DB, userID uint, in SaleInput, existing []uint) error {
	fields := utils.FieldErrors{}

	var clients int64
	if err := tx.Model(&models.Client{}).Where("id = ? AND user_id = ?", in.ClientID, userID).Count(&clients).Error; err != nil {
		return err
	}
	if clients == 0 {
		fields.Add("client_id", "The selected client id is invalid.")
	}

	articleIDs := make([]uint, 0, len(in.Items))
	for _, item := range in.Items {
		articleIDs = append(articleIDs, item.ArticleID)
	}
	var owned []uint
	if len(articleIDs) > 0 {
		if err := tx.Model(&models.Article{}).Where("id IN ? AND user_id = ?", articleIDs, userID).Pluck("id", &owned).Error; err != nil {
			return err
		}
	}
	ownedSet := make(map[uint]bool, len(owned))
	for _, id := range owned {
		ownedSet[id] = true
	}
	existingSet := make(map[uint]bool, len(existing))
	for _, id := range existing {
		existingSet[id] = true
	}

	for i, item := range in.Items {
		prefix := "items." + strconv.Itoa(i)
		if !ownedSet[item.ArticleID] {
			fields.Add(prefix+".article_id", fmt.Sprintf("The selected %s.article_id is invalid.", prefix))
		}
		if item.ID != nil && !existingSet[*item.ID] {
			fields.Add(prefix+".id", fmt.Sprintf("The selected %s.id is invalid.", prefix))
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
