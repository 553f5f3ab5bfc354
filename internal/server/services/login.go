package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/cyclelogin/internal/common"
	"github.com/dmitrijs2005/cyclelogin/internal/license"
	"github.com/dmitrijs2005/cyclelogin/internal/server/auth"
	"github.com/dmitrijs2005/cyclelogin/internal/server/models"
)

// LoginOutcome is what a login attempt reports back.
type LoginOutcome struct {
	auth.LoginResult

	// Cycle is the cycle the attempt was checked against.
	Cycle int

	// License is set for accepted, non-privileged logins.
	License *license.Status
}

// LicenseExpiresAt returns the accepted user's expiry, if any.
func (o LoginOutcome) LicenseExpiresAt() *int64 {
	if o.User == nil {
		return nil
	}
	return o.User.LicenseExpiresAt
}

// LoginService validates login attempts against the directory.
type LoginService struct {
	st       *Store
	users    *UserService
	counter  *CounterService
	licenses *LicenseService
	override string
}

// NewLoginService builds the service. overridePIN is the privileged code
// accepted for any username; an empty value disables it.
func NewLoginService(st *Store, overridePIN string) *LoginService {
	return &LoginService{
		st:       st,
		users:    NewUserService(st),
		counter:  NewCounterService(st),
		licenses: NewLicenseService(st),
		override: overridePIN,
	}
}

// Validate checks pin for username in cycle c. A zero cycle means the
// current cycle, read without incrementing the counter.
func (s *LoginService) Validate(ctx context.Context, username, pin string, c int) (LoginOutcome, error) {
	if c == 0 && !(s.override != "" && pin == s.override) {
		_, cur, err := s.counter.CurrentCycle(ctx)
		if err != nil {
			return LoginOutcome{}, err
		}
		c = cur
	}

	res, err := auth.ValidateLogin(username, pin, c, s.override, func(name string) (*models.User, error) {
		return s.users.FindByUsername(ctx, name)
	})
	if err != nil {
		if errors.Is(err, common.ErrorBackend) {
			return LoginOutcome{}, err
		}
		return LoginOutcome{}, backendErr("lookup user", err)
	}

	out := LoginOutcome{LoginResult: res, Cycle: c}
	switch {
	case res.Accepted && res.Privileged:
		s.st.log.Info(ctx, "privileged login")
	case res.Accepted:
		st := s.licenses.StatusOf(res.User)
		out.License = &st
		s.st.log.Info(ctx, "login accepted", "username", res.User.Username, "cycle", c, "licenseExpired", st.Expired)
	default:
		s.st.log.Info(ctx, "login rejected", "username", username, "cycle", c, "reason", res.Reason.String())
	}
	return out, nil
}
