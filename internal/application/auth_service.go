package application

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/astimch/go-referrals/internal/domain/entity"
	repo "github.com/astimch/go-referrals/internal/domain/repository"
	"github.com/astimch/go-referrals/pkg/helpers"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("authorization error")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
)

// AuthService covers registration, credential verification and
// session-token issuance/resolution.
type AuthService struct {
	Users      repo.UserRepository
	Codec      *helpers.TokenCodec
	SessionTTL time.Duration
	Logger     *logrus.Logger
}

func NewAuthService(users repo.UserRepository, codec *helpers.TokenCodec, sessionTTL time.Duration, logger *logrus.Logger) *AuthService {
	return &AuthService{Users: users, Codec: codec, SessionTTL: sessionTTL, Logger: logger}
}

// Register creates a user with a hashed password. The referrer link, if
// supplied, is attached as-is; referential integrity is the storage
// layer's job.
func (s *AuthService) Register(ctx context.Context, email, password string, referrerID *int64) error {
	existing, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrUserAlreadyExists
	}
	hash, err := helpers.HashPassword(password)
	if err != nil {
		return err
	}
	u := &entity.User{Email: email, Password: hash, ReferrerID: referrerID}
	if err := s.Users.Create(ctx, u); err != nil {
		// Backstop for a concurrent registration with the same email.
		if errors.Is(err, repo.ErrUniqueViolation) {
			return ErrUserAlreadyExists
		}
		return err
	}
	if s.Logger != nil {
		s.Logger.WithField("user_id", u.ID).Info("user registered")
	}
	return nil
}

// Authenticate verifies email/password and returns the matching user.
// Unknown email and bad password are indistinguishable to the caller.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*entity.User, error) {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil || !helpers.CheckPassword(password, u.Password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// IssueSessionToken encodes the user id with the configured session TTL.
func (s *AuthService) IssueSessionToken(u *entity.User) (string, error) {
	return s.Codec.Encode(u.ID, s.SessionTTL)
}

// CurrentUser resolves a session token to its user. Every failure mode —
// malformed token, expired token, token for a since-deleted user —
// collapses into ErrUnauthorized.
func (s *AuthService) CurrentUser(ctx context.Context, token string) (*entity.User, error) {
	userID, err := s.Codec.Decode(token)
	if err != nil {
		return nil, ErrUnauthorized
	}
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUnauthorized
	}
	return u, nil
}

// GetUserByEmail returns the user registered under email.
func (s *AuthService) GetUserByEmail(ctx context.Context, email string) (*entity.User, error) {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// Referrals lists the users that registered under referrerID's code.
func (s *AuthService) Referrals(ctx context.Context, referrerID int64) ([]*entity.User, error) {
	return s.Users.GetAllByReferrerID(ctx, referrerID)
}

// ReferralUser is the public projection of a user inside profile payloads.
type ReferralUser struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// Profile is the current-user payload with the nested referrer and the
// list of referrals.
type Profile struct {
	ID        int64          `json:"id"`
	Email     string         `json:"email"`
	Referrer  *ReferralUser  `json:"referrer"`
	Referrals []ReferralUser `json:"referrals"`
}

// UserProfile assembles the profile for u, loading its referrer and
// referrals.
func (s *AuthService) UserProfile(ctx context.Context, u *entity.User) (*Profile, error) {
	p := &Profile{ID: u.ID, Email: u.Email, Referrals: []ReferralUser{}}
	if u.ReferrerID != nil {
		ref, err := s.Users.GetByID(ctx, *u.ReferrerID)
		if err != nil {
			return nil, err
		}
		if ref != nil {
			p.Referrer = &ReferralUser{ID: ref.ID, Email: ref.Email}
		}
	}
	referrals, err := s.Users.GetAllByReferrerID(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	for _, r := range referrals {
		p.Referrals = append(p.Referrals, ReferralUser{ID: r.ID, Email: r.Email})
	}
	return p, nil
}
