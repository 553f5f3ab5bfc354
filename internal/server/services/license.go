package services

import (
	"context"
	"math"

	"github.com/dmitrijs2005/cyclelogin/internal/common"
	"github.com/dmitrijs2005/cyclelogin/internal/license"
	"github.com/dmitrijs2005/cyclelogin/internal/server/auth"
	"github.com/dmitrijs2005/cyclelogin/internal/server/models"
)

// LicenseChange is a combined license edit. The steps run in order: set
// (when SetExpiry is true), remove RemoveDays, add AddDays. Zero or
// negative day counts skip their step.
type LicenseChange struct {
	SetExpiry  bool
	ExpiresAt  *int64
	RemoveDays float64
	AddDays    float64
}

// LicenseService edits license expiry on user records. Every value it
// writes is normalized: an expiry at or before now is stored as nil.
type LicenseService struct {
	st *Store
}

func NewLicenseService(st *Store) *LicenseService {
	return &LicenseService{st: st}
}

// Set overwrites the expiry. It reports false when the user does not exist.
func (s *LicenseService) Set(ctx context.Context, p auth.Privilege, userID string, expiresAt *int64) (bool, error) {
	return s.update(ctx, p, userID, func(exp *int64, now int64) *int64 {
		return license.Normalize(expiresAt, now)
	})
}

// RemoveDays shortens the license. A user without a license is left alone
// and still reports true.
func (s *LicenseService) RemoveDays(ctx context.Context, p auth.Privilege, userID string, days float64) (bool, error) {
	if err := validDays(days); err != nil {
		return false, err
	}
	return s.update(ctx, p, userID, func(exp *int64, now int64) *int64 {
		return license.Subtract(exp, days, now)
	})
}

// AddDaysFromNowOrExtend extends an active license from its expiry and
// starts a lapsed or missing one from now.
func (s *LicenseService) AddDaysFromNowOrExtend(ctx context.Context, p auth.Privilege, userID string, days float64) (bool, error) {
	if err := validDays(days); err != nil {
		return false, err
	}
	return s.update(ctx, p, userID, func(exp *int64, now int64) *int64 {
		return license.TopUp(exp, days, now)
	})
}

// BulkAddDays extends every currently active license by days and returns
// how many users changed. Users without an active license are skipped;
// this differs from AddDaysFromNowOrExtend on purpose.
func (s *LicenseService) BulkAddDays(ctx context.Context, p auth.Privilege, days float64) (int, error) {
	if err := s.st.require(p); err != nil {
		return 0, err
	}
	if err := validDays(days); err != nil {
		return 0, err
	}

	s.st.usersMu.Lock()
	defer s.st.usersMu.Unlock()

	users, err := s.st.repo.GetUsers(ctx)
	if err != nil {
		return 0, backendErr("get users", err)
	}

	now := s.st.nowMs()
	count := 0
	for i := range users {
		if license.Active(users[i].LicenseExpiresAt, now) {
			users[i].LicenseExpiresAt = license.Extend(users[i].LicenseExpiresAt, days)
			count++
		}
	}
	if count == 0 {
		return 0, nil
	}

	if err := s.st.repo.PutUsers(ctx, users); err != nil {
		return 0, backendErr("put users", err)
	}
	s.st.log.Info(ctx, "bulk license extension", "days", days, "users", count)
	return count, nil
}

// Apply runs a LicenseChange as one write and returns the updated user.
func (s *LicenseService) Apply(ctx context.Context, p auth.Privilege, userID string, ch LicenseChange) (*models.User, error) {
	for _, d := range []float64{ch.RemoveDays, ch.AddDays} {
		if math.IsNaN(d) || math.IsInf(d, 0) {
			return nil, validDays(d)
		}
	}

	var updated *models.User
	ok, err := s.updateUser(ctx, p, userID, func(u *models.User, now int64) {
		exp := u.LicenseExpiresAt
		if ch.SetExpiry {
			exp = ch.ExpiresAt
		}
		if ch.RemoveDays > 0 {
			exp = license.Subtract(exp, ch.RemoveDays, now)
		}
		if ch.AddDays > 0 {
			exp = license.TopUp(exp, ch.AddDays, now)
		}
		u.LicenseExpiresAt = license.Normalize(exp, now)
		c := u.Clone()
		updated = &c
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, common.ErrorNotFound
	}
	return updated, nil
}

// StatusOf reports the license state of u at the current time. A nil user
// has an expired license.
func (s *LicenseService) StatusOf(u *models.User) license.Status {
	return license.StatusAt(expiryOf(u), s.st.nowMs())
}

func (s *LicenseService) IsExpired(u *models.User) bool {
	return license.IsExpired(expiryOf(u), s.st.nowMs())
}

func (s *LicenseService) RemainingMs(u *models.User) int64 {
	return license.RemainingMs(expiryOf(u), s.st.nowMs())
}

func expiryOf(u *models.User) *int64 {
	if u == nil {
		return nil
	}
	return u.LicenseExpiresAt
}

func (s *LicenseService) update(ctx context.Context, p auth.Privilege, userID string, fn func(exp *int64, now int64) *int64) (bool, error) {
	return s.updateUser(ctx, p, userID, func(u *models.User, now int64) {
		u.LicenseExpiresAt = fn(u.LicenseExpiresAt, now)
	})
}

func (s *LicenseService) updateUser(ctx context.Context, p auth.Privilege, userID string, fn func(u *models.User, now int64)) (bool, error) {
	if err := s.st.require(p); err != nil {
		return false, err
	}

	s.st.usersMu.Lock()
	defer s.st.usersMu.Unlock()

	users, err := s.st.repo.GetUsers(ctx)
	if err != nil {
		return false, backendErr("get users", err)
	}

	idx := -1
	for i := range users {
		if users[i].ID == userID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, nil
	}

	fn(&users[idx], s.st.nowMs())

	if err := s.st.repo.PutUsers(ctx, users); err != nil {
		return false, backendErr("put users", err)
	}
	s.st.log.Info(ctx, "license updated", "id", userID)
	return true, nil
}
