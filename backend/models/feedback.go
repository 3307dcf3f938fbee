package models

import "gorm.io/gorm"

// Feedback entries are append-only; deletion happens only through the admin surface.
type Feedback struct {
	gorm.Model
	Name    string
	Email   string
	Message string `gorm:"not null"`
	Rating  *float64
}

type ContactMessage struct {
	gorm.Model
	Name    string
	Email   string
	Subject string
	Message string `gorm:"not null"`
}
