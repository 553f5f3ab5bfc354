package services

import (
	"context"

	"github.com/dmitrijs2005/cyclelogin/internal/cycle"
	"github.com/dmitrijs2005/cyclelogin/internal/server/auth"
)

// CounterService owns the global visit counter and the cycle derived
// from it.
type CounterService struct {
	st *Store
}

func NewCounterService(st *Store) *CounterService {
	return &CounterService{st: st}
}

// IncrementAndGetCycle bumps the counter by one and returns the new count
// with its cycle.
func (s *CounterService) IncrementAndGetCycle(ctx context.Context) (int64, int, error) {
	n, err := s.st.repo.IncrementCounter(ctx)
	if err != nil {
		return 0, 0, backendErr("increment counter", err)
	}
	return n, cycle.FromCount(n), nil
}

// CurrentCycle reads the counter without changing it.
func (s *CounterService) CurrentCycle(ctx context.Context) (int64, int, error) {
	n, err := s.st.repo.GetCounter(ctx)
	if err != nil {
		return 0, 0, backendErr("get counter", err)
	}
	return n, cycle.FromCount(n), nil
}

// Reset sets the counter back to zero.
func (s *CounterService) Reset(ctx context.Context, p auth.Privilege) error {
	if err := s.st.require(p); err != nil {
		return err
	}
	if err := s.st.repo.PutCounter(ctx, 0); err != nil {
		return backendErr("reset counter", err)
	}
	s.st.log.Info(ctx, "visit counter reset", "by", p.Subject())
	return nil
}
