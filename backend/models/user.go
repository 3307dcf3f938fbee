package models

import (
	"time"

	"gorm.io/gorm"
)

// ValidReferrals is the fixed set of enrollment-source codes accepted at registration.
var ValidReferrals = map[string]bool{
	"DOC1": true, "DOC2": true, "DOC3": true, "DOC4": true, "DOC5": true,
	"DOC6": true, "DOC7": true, "DOC8": true, "DOC9": true, "DOC10": true,
}

// ReferralCodes lists the codes in dashboard display order.
var ReferralCodes = []string{
	"DOC1", "DOC2", "DOC3", "DOC4", "DOC5",
	"DOC6", "DOC7", "DOC8", "DOC9", "DOC10",
}

type User struct {
	gorm.Model
	Username     string `gorm:"unique;not null"` // stored lowercase
	Email        string `gorm:"unique;not null"` // stored lowercase
	FirstName    string
	LastName     string
	PasswordHash string `gorm:"not null"`
	DOB          string
	Gender       string
	ReferredBy   string // one of ReferralCodes, or empty
	Plan         string `gorm:"default:Starter"`
	Role         string `gorm:"default:user"` // user, student, employee
	Premium      bool   `gorm:"default:false"`
	ProfileImage string
}

// FullName is used wherever a display name is resolved from an identity.
func (u *User) FullName() string {
	name := u.FirstName
	if u.LastName != "" {
		if name != "" {
			name += " "
		}
		name += u.LastName
	}
	if name == "" {
		return u.Username
	}
	return name
}

// UserActivity accumulates usage minutes per user per calendar day (UTC).
type UserActivity struct {
	gorm.Model
	UserID       uint   `gorm:"uniqueIndex:idx_user_day"`
	Date         string `gorm:"uniqueIndex:idx_user_day"` // YYYY-MM-DD
	TotalMinutes float64
	FirstSeen    time.Time
	LastSeen     time.Time
}
