package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	InvoicePaid    = "paid"
	InvoicePending = "pending"
	InvoiceOverdue = "overdue"
)

type Invoice struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	UserID        uint            `gorm:"index;not null" json:"user_id"`
	ClientID      uint            `gorm:"index;not null" json:"client_id"`
	SaleID        *uint           `gorm:"index" json:"sale_id"`
	InvoiceNumber string          `gorm:"size:30;uniqueIndex;not null" json:"invoice_number"`
	Date          time.Time       `gorm:"type:date;not null" json:"date"`
	DueDate       time.Time       `gorm:"type:date;not null" json:"due_date"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Status        string          `gorm:"size:20;not null;default:'pending'" json:"status"`
	Notes         string          `gorm:"type:text" json:"notes"`

	Client *Client `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Sale   *Sale   `gorm:"foreignKey:SaleID" json:"sale,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
