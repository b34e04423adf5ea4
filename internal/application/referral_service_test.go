package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/astimch/go-referrals/internal/domain/entity"
	"github.com/astimch/go-referrals/pkg/helpers"
)

func newReferralService(t *testing.T) (*ReferralService, *fakeUserRepo, *fakeCodeRepo) {
	t.Helper()
	codec, err := helpers.NewTokenCodec("test-secret", "HS256")
	require.NoError(t, err)
	codes := newFakeCodeRepo()
	users := newFakeUserRepo(codes)
	return NewReferralService(codes, users, codec, nil, 0, nil), users, codes
}

func seedUser(t *testing.T, users *fakeUserRepo, email string) *entity.User {
	t.Helper()
	u := &entity.User{Email: email, Password: "irrelevant"}
	require.NoError(t, users.Create(context.Background(), u))
	return u
}

func TestReferralService_RenewAndResolve(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, users, _ := newReferralService(t)
	u := seedUser(t, users, "alice@example.com")

	rc, err := svc.Renew(ctx, u, 60)
	require.NoError(t, err)
	require.Equal(t, u.ID, rc.UserID)
	require.NotEmpty(t, rc.Code)

	referrerID, err := svc.ResolveReferrer(ctx, rc.Code)
	require.NoError(t, err)
	require.Equal(t, u.ID, referrerID)
}

func TestReferralService_RenewKeepsSingleRow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, users, codes := newReferralService(t)
	u := seedUser(t, users, "alice@example.com")

	first, err := svc.Renew(ctx, u, 60)
	require.NoError(t, err)
	second, err := svc.Renew(ctx, u, 60)
	require.NoError(t, err)

	// Renewal replaces the code in place: same row id, one row total.
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, 1, codes.count())
}

func TestReferralService_RenewedCodeInvalidatesOldOne(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, users, _ := newReferralService(t)
	u := seedUser(t, users, "alice@example.com")

	first, err := svc.Renew(ctx, u, 60)
	require.NoError(t, err)

	// Signed at a different second so the two codes differ.
	time.Sleep(1100 * time.Millisecond)
	second, err := svc.Renew(ctx, u, 60)
	require.NoError(t, err)
	require.NotEqual(t, first.Code, second.Code)

	// The old code still carries a valid signature, but no longer matches
	// the stored row.
	_, err = svc.ResolveReferrer(ctx, first.Code)
	require.ErrorIs(t, err, ErrReferralCodeNotFound)

	referrerID, err := svc.ResolveReferrer(ctx, second.Code)
	require.NoError(t, err)
	require.Equal(t, u.ID, referrerID)
}

func TestReferralService_ResolveExpiredCode(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, users, _ := newReferralService(t)
	u := seedUser(t, users, "alice@example.com")

	// Zero lifetime means the code expires at issuance.
	rc, err := svc.Renew(ctx, u, 0)
	require.NoError(t, err)

	time.Sleep(1100 * time.Millisecond)

	_, err = svc.ResolveReferrer(ctx, rc.Code)
	require.ErrorIs(t, err, ErrReferralCodeExpired)
}

func TestReferralService_ResolveRejectsUnknownCodes(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, users, _ := newReferralService(t)
	u := seedUser(t, users, "alice@example.com")

	_, err := svc.ResolveReferrer(ctx, "")
	require.ErrorIs(t, err, ErrReferralCodeNotFound)

	_, err = svc.ResolveReferrer(ctx, "not-a-code")
	require.ErrorIs(t, err, ErrReferralCodeNotFound)

	// Well-formed and well-signed, but never stored.
	code, err := svc.GenerateCode(u.ID, 60)
	require.NoError(t, err)
	_, err = svc.ResolveReferrer(ctx, code)
	require.ErrorIs(t, err, ErrReferralCodeNotFound)
}

func TestReferralService_Lookups(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, users, _ := newReferralService(t)
	u := seedUser(t, users, "alice@example.com")

	rc, err := svc.Renew(ctx, u, 60)
	require.NoError(t, err)

	byID, err := svc.GetByID(ctx, rc.ID)
	require.NoError(t, err)
	require.Equal(t, rc.Code, byID.Code)

	byUser, err := svc.GetByUserID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, rc.Code, byUser.Code)

	byEmail, err := svc.GetByUserEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, rc.Code, byEmail.Code)

	_, err = svc.GetByID(ctx, rc.ID+1000)
	require.ErrorIs(t, err, ErrReferralCodeNotFound)

	_, err = svc.GetByUserID(ctx, u.ID+1000)
	require.ErrorIs(t, err, ErrReferralCodeNotFound)

	_, err = svc.GetByUserEmail(ctx, "nobody@example.com")
	require.ErrorIs(t, err, ErrReferralCodeNotFound)
}

func TestReferralService_Delete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, users, _ := newReferralService(t)
	u := seedUser(t, users, "alice@example.com")

	rc, err := svc.Renew(ctx, u, 60)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteByID(ctx, rc.ID))
	_, err = svc.GetByID(ctx, rc.ID)
	require.ErrorIs(t, err, ErrReferralCodeNotFound)

	require.ErrorIs(t, svc.DeleteByID(ctx, rc.ID), ErrReferralCodeNotFound)
	require.ErrorIs(t, svc.DeleteByUserID(ctx, u.ID), ErrReferralCodeForUserNotFound)

	_, err = svc.Renew(ctx, u, 60)
	require.NoError(t, err)
	require.NoError(t, svc.DeleteByUserID(ctx, u.ID))
	_, err = svc.GetByUserID(ctx, u.ID)
	require.ErrorIs(t, err, ErrReferralCodeNotFound)
}

func TestReferralService_CodeRemovedWithUser(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, users, codes := newReferralService(t)
	u := seedUser(t, users, "alice@example.com")

	_, err := svc.Renew(ctx, u, 60)
	require.NoError(t, err)
	require.Equal(t, 1, codes.count())

	require.NoError(t, users.Delete(ctx, u.ID))
	require.Equal(t, 0, codes.count())

	_, err = svc.GetByUserID(ctx, u.ID)
	require.ErrorIs(t, err, ErrReferralCodeNotFound)
}
