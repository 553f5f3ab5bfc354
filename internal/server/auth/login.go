package auth

import (
	"errors"

	"github.com/dmitrijs2005/cyclelogin/internal/common"
	"github.com/dmitrijs2005/cyclelogin/internal/cycle"
	"github.com/dmitrijs2005/cyclelogin/internal/server/models"
)

// RejectReason says why a login attempt failed.
type RejectReason int

const (
	ReasonNone RejectReason = iota
	ReasonUnknownUsername
	ReasonInvalidCycle
	// ReasonWrongCycleCode: the PIN is one of the user's codes, just not
	// the one for the current cycle.
	ReasonWrongCycleCode
	ReasonWrongPIN
)

func (r RejectReason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonUnknownUsername:
		return "unknown_username"
	case ReasonInvalidCycle:
		return "invalid_cycle"
	case ReasonWrongCycleCode:
		return "wrong_cycle_code"
	case ReasonWrongPIN:
		return "wrong_pin"
	default:
		return "unknown"
	}
}

// Message is the text shown to the person logging in.
func (r RejectReason) Message() string {
	switch r {
	case ReasonUnknownUsername:
		return "Unknown username"
	case ReasonInvalidCycle:
		return "Invalid cycle"
	case ReasonWrongCycleCode:
		return "Incorrect — that code is not for the current cycle."
	case ReasonWrongPIN:
		return "Incorrect PIN."
	default:
		return ""
	}
}

// LoginResult is the outcome of ValidateLogin. User is set for accepted
// non-privileged logins and carries the license expiry.
type LoginResult struct {
	Accepted   bool
	Privileged bool
	Reason     RejectReason
	User       *models.User
}

// UserLookup finds a user by username. It returns common.ErrorNotFound when
// there is no such user.
type UserLookup func(username string) (*models.User, error)

// ValidateLogin decides a login attempt. The checks run in a fixed order:
// override PIN, username, cycle range, exact code, code in another position.
// The override PIN skips the lookup entirely. Lookup failures other than
// common.ErrorNotFound are returned as errors.
func ValidateLogin(username, pin string, c int, overridePIN string, lookup UserLookup) (LoginResult, error) {
	if overridePIN != "" && pin == overridePIN {
		return LoginResult{Accepted: true, Privileged: true}, nil
	}

	user, err := lookup(username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return LoginResult{Reason: ReasonUnknownUsername}, nil
		}
		return LoginResult{}, err
	}
	if user == nil {
		return LoginResult{Reason: ReasonUnknownUsername}, nil
	}

	if !cycle.Valid(c) {
		return LoginResult{Reason: ReasonInvalidCycle}, nil
	}

	if code := user.CodeFor(c); code != "" && pin == code {
		return LoginResult{Accepted: true, User: user}, nil
	}

	if user.HasCode(pin) {
		return LoginResult{Reason: ReasonWrongCycleCode}, nil
	}
	return LoginResult{Reason: ReasonWrongPIN}, nil
}
