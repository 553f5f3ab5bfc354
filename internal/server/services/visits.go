package services

import (
	"context"
	"math"

	"github.com/dmitrijs2005/cyclelogin/internal/server/auth"
	"github.com/dmitrijs2005/cyclelogin/internal/server/models"
	"github.com/dmitrijs2005/cyclelogin/internal/server/repositories/records"
)

// VisitService is the append-only visit log.
type VisitService struct {
	st *Store
}

func NewVisitService(st *Store) *VisitService {
	return &VisitService{st: st}
}

// Record appends v. A zero timestamp becomes now, and an app visit without
// a session start gets its own timestamp as session start.
func (s *VisitService) Record(ctx context.Context, v models.Visit) (models.Visit, error) {
	v = v.Clone()
	if v.Timestamp == 0 {
		v.Timestamp = s.st.nowMs()
	}
	if v.Type == models.VisitTypeApp && v.SessionStart == nil {
		ts := v.Timestamp
		v.SessionStart = &ts
	}

	s.st.visitsMu.Lock()
	defer s.st.visitsMu.Unlock()

	if a, ok := s.st.repo.(records.VisitAppender); ok {
		if err := a.AppendVisit(ctx, v); err != nil {
			return models.Visit{}, backendErr("append visit", err)
		}
		return v, nil
	}

	visits, err := s.st.repo.GetVisits(ctx)
	if err != nil {
		return models.Visit{}, backendErr("get visits", err)
	}
	if err := s.st.repo.PutVisits(ctx, append(visits, v)); err != nil {
		return models.Visit{}, backendErr("put visits", err)
	}
	return v, nil
}

// AmendLastDuration sets the duration of username's latest session visit.
// It reports whether a visit was amended.
func (s *VisitService) AmendLastDuration(ctx context.Context, username string, durationMs float64) (bool, error) {
	s.st.visitsMu.Lock()
	defer s.st.visitsMu.Unlock()

	visits, err := s.st.repo.GetVisits(ctx)
	if err != nil {
		return false, backendErr("get visits", err)
	}

	idx := latestSession(visits, username)
	if idx < 0 {
		return false, nil
	}

	d := int64(math.Round(durationMs))
	visits[idx].DurationMs = &d

	if err := s.st.repo.PutVisits(ctx, visits); err != nil {
		return false, backendErr("put visits", err)
	}
	return true, nil
}

func (s *VisitService) List(ctx context.Context, p auth.Privilege) ([]models.Visit, error) {
	if err := s.st.require(p); err != nil {
		return nil, err
	}
	visits, err := s.st.repo.GetVisits(ctx)
	if err != nil {
		return nil, backendErr("get visits", err)
	}
	return visits, nil
}

// GroupByUser returns the log grouped by owner.
func (s *VisitService) GroupByUser(ctx context.Context, p auth.Privilege) (map[string][]models.Visit, error) {
	visits, err := s.List(ctx, p)
	if err != nil {
		return nil, err
	}
	return GroupByUser(visits), nil
}

// GroupByUser groups visits by username, putting anonymous ones under
// models.AnonymousVisitor. Each group keeps the original order.
func GroupByUser(visits []models.Visit) map[string][]models.Visit {
	out := make(map[string][]models.Visit)
	for _, v := range visits {
		k := v.Owner()
		out[k] = append(out[k], v)
	}
	return out
}

// latestSession returns the index of the session visit with the greatest
// timestamp for username, the first one on ties, or -1.
func latestSession(visits []models.Visit, username string) int {
	idx := -1
	for i := range visits {
		v := &visits[i]
		if v.Username == nil || *v.Username != username || !v.IsSession() {
			continue
		}
		if idx < 0 || v.Timestamp > visits[idx].Timestamp {
			idx = i
		}
	}
	return idx
}
