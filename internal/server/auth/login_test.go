package auth

import (
	"errors"
	"testing"

	"github.com/dmitrijs2005/cyclelogin/internal/common"
	"github.com/dmitrijs2005/cyclelogin/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const override = "9659829"

func lookupOf(users ...models.User) UserLookup {
	return func(username string) (*models.User, error) {
		for i := range users {
			if users[i].Matches(username) {
				u := users[i]
				return &u, nil
			}
		}
		return nil, common.ErrorNotFound
	}
}

func alice() models.User {
	exp := int64(1_800_000_000_000)
	return models.User{
		ID:               "u-1",
		Username:         "Alice",
		CycleCodes:       []string{"1111111", "2222222", "3333333", "4444444", "5555555"},
		LicenseExpiresAt: &exp,
	}
}

func TestValidateLogin(t *testing.T) {
	lookup := lookupOf(alice())

	tests := []struct {
		name       string
		username   string
		pin        string
		cycle      int
		accepted   bool
		privileged bool
		reason     RejectReason
	}{
		{name: "exact code", username: "alice", pin: "3333333", cycle: 3, accepted: true},
		{name: "case and space insensitive", username: "  ALICE ", pin: "1111111", cycle: 1, accepted: true},
		{name: "code of another cycle", username: "alice", pin: "2222222", cycle: 3, reason: ReasonWrongCycleCode},
		{name: "foreign pin", username: "alice", pin: "7777777", cycle: 3, reason: ReasonWrongPIN},
		{name: "unknown user", username: "bob", pin: "1111111", cycle: 1, reason: ReasonUnknownUsername},
		{name: "cycle zero", username: "alice", pin: "1111111", cycle: 0, reason: ReasonInvalidCycle},
		{name: "cycle six", username: "alice", pin: "5555555", cycle: 6, reason: ReasonInvalidCycle},
		{name: "override with unknown user", username: "nobody", pin: override, cycle: 99, accepted: true, privileged: true},
		{name: "override with empty username", username: "", pin: override, cycle: 1, accepted: true, privileged: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ValidateLogin(tt.username, tt.pin, tt.cycle, override, lookup)
			require.NoError(t, err)
			assert.Equal(t, tt.accepted, res.Accepted)
			assert.Equal(t, tt.privileged, res.Privileged)
			assert.Equal(t, tt.reason, res.Reason)
		})
	}
}

func TestValidateLogin_AcceptedCarriesLicense(t *testing.T) {
	res, err := ValidateLogin("alice", "4444444", 4, override, lookupOf(alice()))
	require.NoError(t, err)
	require.NotNil(t, res.User)
	require.NotNil(t, res.User.LicenseExpiresAt)
	assert.Equal(t, int64(1_800_000_000_000), *res.User.LicenseExpiresAt)
}

func TestValidateLogin_OverrideSkipsLookup(t *testing.T) {
	called := false
	lookup := func(string) (*models.User, error) {
		called = true
		return nil, errors.New("store down")
	}

	res, err := ValidateLogin("x", override, 1, override, lookup)
	require.NoError(t, err)
	assert.True(t, res.Privileged)
	assert.False(t, called)
}

func TestValidateLogin_OverrideDisabled(t *testing.T) {
	res, err := ValidateLogin("alice", "", 1, "", lookupOf(alice()))
	require.NoError(t, err)
	assert.False(t, res.Accepted)
	assert.Equal(t, ReasonWrongPIN, res.Reason)
}

func TestValidateLogin_LookupFailurePropagates(t *testing.T) {
	boom := errors.New("store down")
	_, err := ValidateLogin("alice", "1111111", 1, override, func(string) (*models.User, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestRejectReason_Messages(t *testing.T) {
	assert.Equal(t, "Unknown username", ReasonUnknownUsername.Message())
	assert.Equal(t, "Invalid cycle", ReasonInvalidCycle.Message())
	assert.Equal(t, "Incorrect — that code is not for the current cycle.", ReasonWrongCycleCode.Message())
	assert.Equal(t, "Incorrect PIN.", ReasonWrongPIN.Message())
	assert.Empty(t, ReasonNone.Message())
	assert.Equal(t, "wrong_cycle_code", ReasonWrongCycleCode.String())
}
