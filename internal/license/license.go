// Package license implements license-expiry arithmetic on epoch
// millisecond timestamps. A nil expiry means the user holds no license.
//
// Nothing here reads the clock; every function takes "now" explicitly.
package license

import (
	"math"
	"strconv"
)

const (
	MinuteMs int64 = 60_000
	HourMs   int64 = 3_600_000
	DayMs    int64 = 86_400_000
)

// Status is the license state reported to a user after a successful login.
type Status struct {
	Expired     bool   `json:"expired"`
	RemainingMs int64  `json:"remainingMs"`
	Remaining   string `json:"remaining"`
}

// StatusAt summarises expiresAt as seen at now.
func StatusAt(expiresAt *int64, now int64) Status {
	ms := RemainingMs(expiresAt, now)
	return Status{
		Expired:     IsExpired(expiresAt, now),
		RemainingMs: ms,
		Remaining:   Format(ms),
	}
}

// IsExpired reports whether the license is unusable at now. A license is
// valid strictly before its expiry instant.
func IsExpired(expiresAt *int64, now int64) bool {
	return expiresAt == nil || now >= *expiresAt
}

// Active is the negation of IsExpired.
func Active(expiresAt *int64, now int64) bool {
	return !IsExpired(expiresAt, now)
}

// RemainingMs returns the milliseconds left, never negative.
func RemainingMs(expiresAt *int64, now int64) int64 {
	if expiresAt == nil {
		return 0
	}
	return max(0, *expiresAt-now)
}

// DaysToMs converts a possibly fractional number of days to milliseconds.
func DaysToMs(days float64) int64 {
	return int64(math.Round(days * float64(DayMs)))
}

// Normalize maps an already expired value to nil. It is applied to values
// the license manager writes.
func Normalize(expiresAt *int64, now int64) *int64 {
	if expiresAt == nil || *expiresAt <= now {
		return nil
	}
	v := *expiresAt
	return &v
}

// Subtract removes days from the expiry. No license stays no license; a
// result at or before now becomes nil.
func Subtract(expiresAt *int64, days float64, now int64) *int64 {
	if expiresAt == nil {
		return nil
	}
	v := *expiresAt - DaysToMs(days)
	return Normalize(&v, now)
}

// Extend adds days to the current expiry without looking at the clock.
// It is what bulk extension applies to already active licenses.
func Extend(expiresAt *int64, days float64) *int64 {
	if expiresAt == nil {
		return nil
	}
	v := *expiresAt + DaysToMs(days)
	return &v
}

// TopUp extends an active license from its expiry, or starts a fresh one
// from now when there is none or it has lapsed.
func TopUp(expiresAt *int64, days float64, now int64) *int64 {
	base := now
	if Active(expiresAt, now) {
		base = *expiresAt
	}
	v := base + DaysToMs(days)
	return Normalize(&v, now)
}

// Format renders a remaining duration for display:
//
//	Format(0)                     // "Expired"
//	Format(2*DayMs + 3*HourMs)    // "2 days, 3 hrs"
//	Format(HourMs + 5*MinuteMs)   // "1 hr, 5 min"
//	Format(MinuteMs)              // "1 min"
//
// The minute component of the hour tier is always written "min".
func Format(ms int64) string {
	if ms <= 0 {
		return "Expired"
	}
	d := ms / DayMs
	h := (ms % DayMs) / HourMs
	m := (ms % HourMs) / MinuteMs

	if d > 0 {
		s := unit(d, "day")
		if h > 0 {
			s += ", " + unit(h, "hr")
		}
		return s
	}
	if h > 0 {
		s := unit(h, "hr")
		if m > 0 {
			s += ", " + strconv.FormatInt(m, 10) + " min"
		}
		return s
	}
	return unit(m, "min")
}

func unit(n int64, name string) string {
	s := strconv.FormatInt(n, 10) + " " + name
	if n != 1 {
		s += "s"
	}
	return s
}
