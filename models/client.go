package models

import "time"

type Client struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	UserID    uint   `gorm:"index;not null" json:"user_id"`
	Name      string `gorm:"size:255;not null" json:"name"`
	Number    string `gorm:"size:20" json:"number"`
	VATNumber string `gorm:"column:vat_number;size:20" json:"vat_number"`
	AccPerson string `gorm:"size:255" json:"acc_person"`
	Address   string `gorm:"size:255" json:"address"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
