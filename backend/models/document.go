package models

import "gorm.io/gorm"

// Document is a per-user named document. Names are unique per owner, not globally.
type Document struct {
	gorm.Model
	UserID   uint   `gorm:"uniqueIndex:idx_owner_name;not null"`
	Name     string `gorm:"uniqueIndex:idx_owner_name;not null"`
	Content  string
	Favorite bool `gorm:"default:false"`
}
