// Package services contains the server-side business logic: the visit
// counter, the user directory, license management, login validation and
// the visit log. Every service works on a shared Store so their
// read-modify-write cycles on the same record list are serialized.
package services

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/dmitrijs2005/cyclelogin/internal/common"
	"github.com/dmitrijs2005/cyclelogin/internal/logging"
	"github.com/dmitrijs2005/cyclelogin/internal/server/auth"
	"github.com/dmitrijs2005/cyclelogin/internal/server/repositories/records"
	"github.com/dmitrijs2005/cyclelogin/internal/timex"
)

// Store bundles the record store handle with the locks and clock the
// services share.
type Store struct {
	repo records.Repository
	log  logging.Logger
	now  func() time.Time

	usersMu  sync.Mutex
	visitsMu sync.Mutex
}

// StoreOption customizes a Store.
type StoreOption func(*Store)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger used by the services.
func WithLogger(l logging.Logger) StoreOption {
	return func(s *Store) { s.log = l }
}

func NewStore(repo records.Repository, opts ...StoreOption) *Store {
	s := &Store{repo: repo, log: logging.Nop{}, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Repository exposes the underlying record store.
func (s *Store) Repository() records.Repository { return s.repo }

func (s *Store) nowMs() int64 { return timex.UnixMilli(s.now()) }

func (s *Store) require(p auth.Privilege) error {
	return auth.Require(p, s.now())
}

// backendErr marks a record store failure so transports can report it as
// "operation failed, try again".
func backendErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, common.ErrorBackend, err)
}

func validDays(days float64) error {
	if math.IsNaN(days) || math.IsInf(days, 0) || days <= 0 {
		return fmt.Errorf("%w: days must be a positive number", common.ErrorInvalidInput)
	}
	return nil
}
