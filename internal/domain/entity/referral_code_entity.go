package entity

import (
	"time"
)

// ReferralCode is the single active code owned by a user. At most one row
// exists per user; renewal overwrites Code in place.
type ReferralCode struct {
	ID        int64
	UserID    int64
	Code      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
