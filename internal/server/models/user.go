// Package models holds the records persisted by the record store and
// returned by the server APIs. JSON names are the camelCase wire format;
// SQL backends map them to snake_case columns.
package models

import "strings"

// User is a registered account.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`

	// CycleCodes holds one 7-digit PIN per cycle; index i belongs to cycle i+1.
	CycleCodes []string `json:"cycleCodes"`

	// CreatedAt is epoch milliseconds.
	CreatedAt int64 `json:"createdAt"`

	// LicenseExpiresAt is epoch milliseconds, nil when no license is held.
	LicenseExpiresAt *int64 `json:"licenseExpiresAt"`
}

// NormalizeUsername is the key used for uniqueness and lookups.
func NormalizeUsername(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Matches reports whether the user answers to username, ignoring case and
// surrounding whitespace.
func (u *User) Matches(username string) bool {
	return NormalizeUsername(u.Username) == NormalizeUsername(username)
}

// CodeFor returns the code for cycle c, or "" when c is out of range or the
// stored record is short.
func (u *User) CodeFor(c int) string {
	if c < 1 || c > len(u.CycleCodes) {
		return ""
	}
	return u.CycleCodes[c-1]
}

// HasCode reports whether pin is one of the user's codes in any position.
func (u *User) HasCode(pin string) bool {
	for _, c := range u.CycleCodes {
		if c == pin {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers can mutate it without touching
// shared state.
func (u User) Clone() User {
	out := u
	if u.CycleCodes != nil {
		out.CycleCodes = append([]string(nil), u.CycleCodes...)
	}
	if u.LicenseExpiresAt != nil {
		v := *u.LicenseExpiresAt
		out.LicenseExpiresAt = &v
	}
	return out
}

// CloneUsers deep-copies a user list.
func CloneUsers(in []User) []User {
	out := make([]User, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}
