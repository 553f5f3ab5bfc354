package models

// VisitTypeApp marks a visit to the application behind the login page.
// Only such visits (or ones carrying a session start) can have their
// duration amended.
const VisitTypeApp = "app"

// VisitTypeLogin marks a visit to the login page.
const VisitTypeLogin = "login"

// AnonymousVisitor groups visits recorded without a username.
const AnonymousVisitor = "(login page)"

// Visit is one telemetry entry.
type Visit struct {
	Username     *string `json:"username"`
	Type         string  `json:"type,omitempty"`
	Referrer     string  `json:"referrer,omitempty"`
	Cycle        int     `json:"cycle,omitempty"`
	Timestamp    int64   `json:"timestamp"`
	DurationMs   *int64  `json:"durationMs,omitempty"`
	SessionStart *int64  `json:"sessionStart,omitempty"`
}

// IsSession reports whether the visit opened an app session.
func (v *Visit) IsSession() bool {
	return v.Type == VisitTypeApp || v.SessionStart != nil
}

// Owner returns the grouping key: the username, or AnonymousVisitor when it
// is missing or empty.
func (v *Visit) Owner() string {
	if v.Username == nil || *v.Username == "" {
		return AnonymousVisitor
	}
	return *v.Username
}

func (v Visit) Clone() Visit {
	out := v
	out.Username = clonePtr(v.Username)
	out.DurationMs = clonePtr(v.DurationMs)
	out.SessionStart = clonePtr(v.SessionStart)
	return out
}

func CloneVisits(in []Visit) []Visit {
	out := make([]Visit, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
