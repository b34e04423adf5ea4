package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/astimch/go-referrals/internal/domain/entity"
	"github.com/astimch/go-referrals/internal/domain/repository"
)

type ReferralCodeRepository struct {
	pool *pgxpool.Pool
}

func NewReferralCodeRepository(pool *pgxpool.Pool) *ReferralCodeRepository {
	return &ReferralCodeRepository{pool: pool}
}

func (r *ReferralCodeRepository) GetByID(ctx context.Context, id int64) (*entity.ReferralCode, error) {
	return r.getOne(ctx, `
		SELECT id, user_id, code, created_at, updated_at
		FROM referral_codes
		WHERE id = $1
	`, id)
}

func (r *ReferralCodeRepository) GetByUserID(ctx context.Context, userID int64) (*entity.ReferralCode, error) {
	return r.getOne(ctx, `
		SELECT id, user_id, code, created_at, updated_at
		FROM referral_codes
		WHERE user_id = $1
	`, userID)
}

func (r *ReferralCodeRepository) getOne(ctx context.Context, query string, arg any) (*entity.ReferralCode, error) {
	rc := &entity.ReferralCode{}
	row := r.pool.QueryRow(ctx, query, arg)
	if err := row.Scan(&rc.ID, &rc.UserID, &rc.Code, &rc.CreatedAt, &rc.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return rc, nil
}

func (r *ReferralCodeRepository) Create(ctx context.Context, userID int64, code string) (*entity.ReferralCode, error) {
	rc := &entity.ReferralCode{UserID: userID, Code: code}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO referral_codes (user_id, code)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at
	`, userID, code)
	if err := row.Scan(&rc.ID, &rc.CreatedAt, &rc.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrUniqueViolation
		}
		return nil, err
	}
	return rc, nil
}

func (r *ReferralCodeRepository) Update(ctx context.Context, id int64, code string) (*entity.ReferralCode, error) {
	rc := &entity.ReferralCode{ID: id, Code: code}
	row := r.pool.QueryRow(ctx, `
		UPDATE referral_codes
		SET code = $1, updated_at = now()
		WHERE id = $2
		RETURNING user_id, created_at, updated_at
	`, code, id)
	if err := row.Scan(&rc.UserID, &rc.CreatedAt, &rc.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return rc, nil
}

func (r *ReferralCodeRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM referral_codes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.ReferralCodeRepository = (*ReferralCodeRepository)(nil)
