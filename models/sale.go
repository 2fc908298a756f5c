package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Sale struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	UserID     uint            `gorm:"index;not null" json:"user_id"`
	ClientID   uint            `gorm:"index;not null" json:"client_id"`
	SaleNumber string          `gorm:"size:30;uniqueIndex;not null" json:"sale_number"`
	Date       time.Time       `gorm:"type:date;not null" json:"date"`
	Subtotal   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	Discount   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"discount"`
	Total      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
	Notes      string          `gorm:"type:text" json:"notes"`

	Client *Client    `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Items  []SaleItem `gorm:"foreignKey:SaleID" json:"items,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SaleItem is one line of a Sale and lives and dies with it
type SaleItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	SaleID    uint            `gorm:"index;not null" json:"sale_id"`
	ArticleID uint            `gorm:"index;not null" json:"article_id"`
	Quantity  int             `gorm:"not null;default:1" json:"quantity"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Total     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`

	Article *Article `gorm:"foreignKey:ArticleID" json:"article,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
