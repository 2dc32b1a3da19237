package entities

import "time"

// StorageItem is one key of a visitor's hosted local storage. The plan history
// lives under a single key as one serialized value.
type StorageItem struct {
	Owner     string `gorm:"primaryKey;size:64"`
	Key       string `gorm:"primaryKey;size:128"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

func (StorageItem) TableName() string { return "storage_items" }
