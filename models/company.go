package models

import "time"

// Company is the tenant's business profile, at most one per user
type Company struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	UserID      uint   `gorm:"uniqueIndex;not null" json:"user_id"`
	Name        string `gorm:"size:255;not null" json:"name"`
	EIK         string `gorm:"column:eik;size:20;not null" json:"eik"`
	VATNumber   string `gorm:"column:vat_number;size:20" json:"vat_number"`
	Address     string `gorm:"size:255;not null" json:"address"`
	Phone       string `gorm:"size:20" json:"phone"`
	Email       string `gorm:"size:255" json:"email"`
	BankName    string `gorm:"size:255" json:"bank_name"`
	BankAccount string `gorm:"size:50" json:"bank_account"`
	MOL         string `gorm:"column:mol;size:255" json:"mol"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
