package application

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/astimch/go-referrals/internal/domain/entity"
	repo "github.com/astimch/go-referrals/internal/domain/repository"
	"github.com/astimch/go-referrals/pkg/helpers"
)

var (
	ErrReferralCodeNotFound        = errors.New("referral code not found")
	ErrReferralCodeForUserNotFound = errors.New("referral code for user not found")
	ErrReferralCodeExpired         = errors.New("referral code expired")
)

// ReferralService manages the referral-code lifecycle: issuance, lookup,
// renewal, deletion, and referrer resolution from a presented code.
type ReferralService struct {
	Codes    repo.ReferralCodeRepository
	Users    repo.UserRepository
	Codec    *helpers.TokenCodec
	Redis    *redis.Client
	CacheTTL time.Duration
	Logger   *logrus.Logger
}

func NewReferralService(codes repo.ReferralCodeRepository, users repo.UserRepository, codec *helpers.TokenCodec, rdb *redis.Client, cacheTTL time.Duration, logger *logrus.Logger) *ReferralService {
	return &ReferralService{Codes: codes, Users: users, Codec: codec, Redis: rdb, CacheTTL: cacheTTL, Logger: logger}
}

func keyCodeByID(id int64) string { return "refcode:id:" + strconv.FormatInt(id, 10) }
func keyCodeByUserID(id int64) string { return "refcode:user:" + strconv.FormatInt(id, 10) }

// GenerateCode issues a signed code for userID that expires after lifetime
// minutes. Pure; does not touch storage.
func (s *ReferralService) GenerateCode(userID int64, lifetime int) (string, error) {
	return s.Codec.Encode(userID, time.Duration(lifetime)*time.Minute)
}

// Renew replaces the user's referral code, issuing a fresh one valid for
// lifetime minutes. The write is an update-first upsert keyed by user id:
// an existing row keeps its id and gets the new code, otherwise a row is
// inserted. The unique constraint on user_id backstops a concurrent
// insert; the losing writer's violation surfaces as a plain error.
func (s *ReferralService) Renew(ctx context.Context, user *entity.User, lifetime int) (*entity.ReferralCode, error) {
	code, err := s.GenerateCode(user.ID, lifetime)
	if err != nil {
		return nil, err
	}
	existing, err := s.Codes.GetByUserID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	var record *entity.ReferralCode
	if existing != nil {
		record, err = s.Codes.Update(ctx, existing.ID, code)
	} else {
		record, err = s.Codes.Create(ctx, user.ID, code)
	}
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, record.ID, record.UserID)
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"user_id": user.ID, "lifetime_min": lifetime}).Info("referral code renewed")
	}
	return record, nil
}

// ResolveReferrer validates a presented code and returns the issuing
// user's id. Validation is two-phase: the stateless signature/expiry check
// first, then a byte-for-byte match against the user's currently stored
// code. A code that decodes fine can still be stale if the user renewed
// since issuance, so the storage match is mandatory.
func (s *ReferralService) ResolveReferrer(ctx context.Context, code string) (int64, error) {
	if code == "" {
		return 0, ErrReferralCodeNotFound
	}
	userID, err := s.Codec.Decode(code)
	if err != nil {
		if errors.Is(err, helpers.ErrTokenExpired) {
			return 0, ErrReferralCodeExpired
		}
		return 0, ErrReferralCodeNotFound
	}
	current, err := s.Codes.GetByUserID(ctx, userID)
	if err != nil {
		return 0, err
	}
	if current == nil || current.Code != code {
		return 0, ErrReferralCodeNotFound
	}
	return userID, nil
}

// GetByID returns the referral code with the given record id.
func (s *ReferralService) GetByID(ctx context.Context, id int64) (*entity.ReferralCode, error) {
	if rc, ok := s.cached(ctx, keyCodeByID(id)); ok {
		return rc, nil
	}
	rc, err := s.Codes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rc == nil {
		return nil, ErrReferralCodeNotFound
	}
	s.cache(ctx, keyCodeByID(id), rc)
	return rc, nil
}

// GetByUserID returns the referral code owned by userID.
func (s *ReferralService) GetByUserID(ctx context.Context, userID int64) (*entity.ReferralCode, error) {
	if rc, ok := s.cached(ctx, keyCodeByUserID(userID)); ok {
		return rc, nil
	}
	rc, err := s.Codes.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if rc == nil {
		return nil, ErrReferralCodeNotFound
	}
	s.cache(ctx, keyCodeByUserID(userID), rc)
	return rc, nil
}

// GetByUserEmail resolves email to a user and returns that user's code.
// An unknown email reads the same as a missing code.
func (s *ReferralService) GetByUserEmail(ctx context.Context, email string) (*entity.ReferralCode, error) {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrReferralCodeNotFound
	}
	return s.GetByUserID(ctx, u.ID)
}

// DeleteByID removes the referral code with the given record id.
func (s *ReferralService) DeleteByID(ctx context.Context, id int64) error {
	rc, err := s.Codes.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if rc == nil {
		return ErrReferralCodeNotFound
	}
	if err := s.Codes.Delete(ctx, rc.ID); err != nil {
		return err
	}
	s.invalidate(ctx, rc.ID, rc.UserID)
	return nil
}

// DeleteByUserID removes the referral code owned by userID.
func (s *ReferralService) DeleteByUserID(ctx context.Context, userID int64) error {
	rc, err := s.Codes.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if rc == nil {
		return ErrReferralCodeForUserNotFound
	}
	if err := s.Codes.Delete(ctx, rc.ID); err != nil {
		return err
	}
	s.invalidate(ctx, rc.ID, rc.UserID)
	return nil
}

// cached reads a record from the redis cache. Cache errors degrade to a
// miss.
func (s *ReferralService) cached(ctx context.Context, key string) (*entity.ReferralCode, bool) {
	if s.Redis == nil || s.CacheTTL <= 0 {
		return nil, false
	}
	rc := &entity.ReferralCode{}
	ok, err := helpers.RedisGetJSON(ctx, s.Redis, key, rc)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("key", key).Warn("cache read failed")
		}
		return nil, false
	}
	return rc, ok
}

func (s *ReferralService) cache(ctx context.Context, key string, rc *entity.ReferralCode) {
	if s.Redis == nil || s.CacheTTL <= 0 {
		return
	}
	if err := helpers.RedisSetJSON(ctx, s.Redis, key, rc, s.CacheTTL); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("key", key).Warn("cache write failed")
	}
}

func (s *ReferralService) invalidate(ctx context.Context, id, userID int64) {
	if s.Redis == nil || s.CacheTTL <= 0 {
		return
	}
	if err := helpers.RedisDel(ctx, s.Redis, keyCodeByID(id), keyCodeByUserID(userID)); err != nil && s.Logger != nil {
		s.Logger.WithError(err).Warn("cache invalidation failed")
	}
}
