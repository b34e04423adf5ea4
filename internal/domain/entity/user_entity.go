package entity

import (
	"time"
)

// User is the aggregate root for the user domain.
// Passwords are stored as bcrypt hashes in Password field.
// ReferrerID links to the user whose referral code was presented at
// registration; it is set once at creation and cleared by the storage
// layer if the referrer is deleted.
type User struct {
	ID         int64
	Email      string
	Password   string
	ReferrerID *int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
