package repository

import (
	"context"

	"github.com/astimch/go-referrals/internal/domain/entity"
)

// ReferralCodeRepository defines database operations over per-user referral
// codes. The storage layer enforces the at-most-one-row-per-user invariant
// with a unique constraint on user_id. Lookups return (nil, nil) when no
// row matches.
type ReferralCodeRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.ReferralCode, error)
	GetByUserID(ctx context.Context, userID int64) (*entity.ReferralCode, error)
	Create(ctx context.Context, userID int64, code string) (*entity.ReferralCode, error)
	Update(ctx context.Context, id int64, code string) (*entity.ReferralCode, error)
	Delete(ctx context.Context, id int64) error
}
