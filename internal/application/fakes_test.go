package application

import (
	"context"
	"sync"

	"github.com/astimch/go-referrals/internal/domain/entity"
	"github.com/astimch/go-referrals/internal/domain/repository"
)

// In-memory repositories mirroring the storage contract: lookups return
// (nil, nil) when absent, inserts honor the unique constraints, user
// deletion cascades into referral codes and clears referrer links.

type fakeCodeRepo struct {
	mu     sync.Mutex
	nextID int64
	codes  map[int64]*entity.ReferralCode
}

func newFakeCodeRepo() *fakeCodeRepo {
	return &fakeCodeRepo{codes: map[int64]*entity.ReferralCode{}}
}

func (r *fakeCodeRepo) GetByID(_ context.Context, id int64) (*entity.ReferralCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rc, ok := r.codes[id]
	if !ok {
		return nil, nil
	}
	cp := *rc
	return &cp, nil
}

func (r *fakeCodeRepo) GetByUserID(_ context.Context, userID int64) (*entity.ReferralCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rc := range r.codes {
		if rc.UserID == userID {
			cp := *rc
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeCodeRepo) Create(_ context.Context, userID int64, code string) (*entity.ReferralCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rc := range r.codes {
		if rc.UserID == userID {
			return nil, repository.ErrUniqueViolation
		}
	}
	r.nextID++
	rc := &entity.ReferralCode{ID: r.nextID, UserID: userID, Code: code}
	r.codes[rc.ID] = rc
	cp := *rc
	return &cp, nil
}

func (r *fakeCodeRepo) Update(_ context.Context, id int64, code string) (*entity.ReferralCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rc, ok := r.codes[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	rc.Code = code
	cp := *rc
	return &cp, nil
}

func (r *fakeCodeRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.codes[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.codes, id)
	return nil
}

func (r *fakeCodeRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.codes)
}

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*entity.User
	codes  *fakeCodeRepo // for cascade-on-delete emulation
}

func newFakeUserRepo(codes *fakeCodeRepo) *fakeUserRepo {
	return &fakeUserRepo{users: map[int64]*entity.User{}, codes: codes}
}

func (r *fakeUserRepo) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return repository.ErrUniqueViolation
		}
	}
	r.nextID++
	u.ID = r.nextID
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int64) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetAllByReferrerID(_ context.Context, referrerID int64) ([]*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.User, 0)
	for id := int64(1); id <= r.nextID; id++ {
		u, ok := r.users[id]
		if !ok || u.ReferrerID == nil || *u.ReferrerID != referrerID {
			continue
		}
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	if _, ok := r.users[id]; !ok {
		r.mu.Unlock()
		return repository.ErrNotFound
	}
	delete(r.users, id)
	// ON DELETE SET NULL on referrer_id
	for _, u := range r.users {
		if u.ReferrerID != nil && *u.ReferrerID == id {
			u.ReferrerID = nil
		}
	}
	r.mu.Unlock()

	// ON DELETE CASCADE on referral_codes.user_id
	if r.codes != nil {
		if rc, _ := r.codes.GetByUserID(context.Background(), id); rc != nil {
			_ = r.codes.Delete(context.Background(), rc.ID)
		}
	}
	return nil
}

var (
	_ repository.UserRepository         = (*fakeUserRepo)(nil)
	_ repository.ReferralCodeRepository = (*fakeCodeRepo)(nil)
)
