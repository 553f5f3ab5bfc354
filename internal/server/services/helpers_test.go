package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/cyclelogin/internal/server/auth"
	"github.com/dmitrijs2005/cyclelogin/internal/server/models"
	"github.com/dmitrijs2005/cyclelogin/internal/server/repositories/records"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

const dayMs = int64(86_400_000)

func nowMs() int64 { return t0.UnixMilli() }

func i64(v int64) *int64 { return &v }
func str(v string) *string { return &v }

func newTestStore(t *testing.T) (*Store, *records.MemoryRepository) {
	t.Helper()
	repo := records.NewMemoryRepository()
	return NewStore(repo, WithClock(newTestClock())), repo
}

// devPrivilege obtains a real capability the way transports do.
func devPrivilege(t *testing.T) auth.Privilege {
	t.Helper()
	iss := auth.NewIssuer("secret", "9659829", time.Hour).WithClock(func() time.Time { return t0 })
	tok, _, err := iss.Exchange("9659829")
	require.NoError(t, err)
	p, err := iss.Verify(tok)
	require.NoError(t, err)
	return p
}

func seedUsers(t *testing.T, repo records.Repository, users ...models.User) {
	t.Helper()
	require.NoError(t, repo.PutUsers(context.Background(), users))
}

// failingRepo fails every call that reaches the backend.
type failingRepo struct {
	records.Repository
	err error
}

func (f failingRepo) GetUsers(context.Context) ([]models.User, error)   { return nil, f.err }
func (f failingRepo) PutUsers(context.Context, []models.User) error     { return f.err }
func (f failingRepo) GetVisits(context.Context) ([]models.Visit, error) { return nil, f.err }
func (f failingRepo) PutVisits(context.Context, []models.Visit) error   { return f.err }
func (f failingRepo) GetCounter(context.Context) (int64, error)         { return 0, f.err }
func (f failingRepo) PutCounter(context.Context, int64) error           { return f.err }
func (f failingRepo) IncrementCounter(context.Context) (int64, error)   { return 0, f.err }

func newTestClock() func() time.Time {
	return func() time.Time { return t0 }
}
