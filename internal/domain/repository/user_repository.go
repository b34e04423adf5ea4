package repository

import (
	"context"

	"github.com/astimch/go-referrals/internal/domain/entity"
)

// UserRepository defines the interface for user-related database operations.
// Lookups return (nil, nil) when no row matches.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetAllByReferrerID(ctx context.Context, referrerID int64) ([]*entity.User, error)
	Delete(ctx context.Context, id int64) error
}
