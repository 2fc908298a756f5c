package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	ArticleActive   = "active"
	ArticleInactive = "inactive"
)

type Article struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	UserID      uint            `gorm:"index;not null" json:"user_id"`
	Name        string          `gorm:"size:255;not null" json:"name"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Status      string          `gorm:"size:20;not null;default:'active'" json:"status"`
	Description string          `gorm:"type:text" json:"description"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
