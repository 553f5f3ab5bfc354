package cli

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/cyclelogin/internal/api"
	"github.com/dmitrijs2005/cyclelogin/internal/client/config"
	"github.com/dmitrijs2005/cyclelogin/internal/server/models"
)

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type fakeClient struct {
	count int64

	validateResp *api.ValidateResponse
	validateErr  error
	lastValidate struct {
		username, pin string
		cycle         int
	}

	incErr   error
	visits   []models.Visit
	amended  []int64
	amendFor []string
	token    string
	closed   bool
	users    []models.User
	created  []string
	deleted  []string
	licenses []*api.UpdateLicenseRequest
	bulkDays []float64
	resets   int
	groups   map[string][]models.Visit
	adminErr error
}

func (f *fakeClient) Ping(ctx context.Context) error { return nil }

func (f *fakeClient) IncrementVisitCount(ctx context.Context) (*api.CounterResponse, error) {
	if f.incErr != nil {
		return nil, f.incErr
	}
	f.count++
	return &api.CounterResponse{Count: f.count, Cycle: int((f.count-1)%5) + 1}, nil
}

func (f *fakeClient) GetVisitCount(ctx context.Context) (*api.CounterResponse, error) {
	c := 1
	if f.count > 0 {
		c = int((f.count-1)%5) + 1
	}
	return &api.CounterResponse{Count: f.count, Cycle: c}, nil
}

func (f *fakeClient) Validate(ctx context.Context, username, pin string, cycle int) (*api.ValidateResponse, error) {
	f.lastValidate.username, f.lastValidate.pin, f.lastValidate.cycle = username, pin, cycle
	return f.validateResp, f.validateErr
}

func (f *fakeClient) RecordVisit(ctx context.Context, v models.Visit) error {
	f.visits = append(f.visits, v)
	return nil
}

func (f *fakeClient) AmendLastDuration(ctx context.Context, username string, durationMs int64) (bool, error) {
	f.amended = append(f.amended, durationMs)
	f.amendFor = append(f.amendFor, username)
	return true, nil
}

func (f *fakeClient) ExchangeDevPIN(ctx context.Context, pin string) error { return nil }
func (f *fakeClient) SetAccessToken(token string)                          { f.token = token }

func (f *fakeClient) ListUsers(ctx context.Context) ([]models.User, error) {
	return f.users, f.adminErr
}

func (f *fakeClient) CreateUser(ctx context.Context, username string) (*api.CreateUserResponse, error) {
	if f.adminErr != nil {
		return nil, f.adminErr
	}
	f.created = append(f.created, username)
	codes := []string{"1111111", "2222222", "3333333", "4444444", "5555555"}
	return &api.CreateUserResponse{OK: true, User: models.User{ID: "id-1", Username: username, CycleCodes: codes}, CycleCodes: codes}, nil
}

func (f *fakeClient) DeleteUser(ctx context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return f.adminErr
}

func (f *fakeClient) UpdateLicense(ctx context.Context, req *api.UpdateLicenseRequest) (*models.User, error) {
	if f.adminErr != nil {
		return nil, f.adminErr
	}
	f.licenses = append(f.licenses, req)
	return &models.User{ID: req.ID, Username: "alice"}, nil
}

func (f *fakeClient) BulkAddLicense(ctx context.Context, days float64) (int, error) {
	f.bulkDays = append(f.bulkDays, days)
	return 2, f.adminErr
}

func (f *fakeClient) ListVisits(ctx context.Context) ([]models.Visit, error) {
	return f.visits, f.adminErr
}

func (f *fakeClient) VisitsByUser(ctx context.Context) (map[string][]models.Visit, error) {
	return f.groups, f.adminErr
}

func (f *fakeClient) ResetVisitCount(ctx context.Context) error {
	f.resets++
	f.count = 0
	return f.adminErr
}

func (f *fakeClient) Close() error { f.closed = true; return nil }

// newTestApp builds an App over fc whose prompts read the given lines.
func newTestApp(fc *fakeClient, lines ...string) (*App, *bytes.Buffer) {
	var out bytes.Buffer
	r := bufio.NewReader(strings.NewReader(strings.Join(lines, "\n") + "\n"))
	cfg := &config.Config{RequestTimeout: time.Second, Referrer: "test"}
	a := newApp(cfg, fc, r, &out)
	now := t0
	a.now = func() time.Time { return now }
	return a, &out
}

// stubPIN replaces the hidden PIN prompt for the duration of the test.
func stubPIN(t *testing.T, pin string) {
	t.Helper()
	old := readPassword
	readPassword = func(int) ([]byte, error) { return []byte(pin), nil }
	t.Cleanup(func() { readPassword = old })
}
