package models

import "time"

// DocumentSequence stores the last number handed out for a document series
type DocumentSequence struct {
	Name      string `gorm:"primaryKey;size:50"`
	LastValue int64  `gorm:"not null;default:0"`
	UpdatedAt time.Time
}
