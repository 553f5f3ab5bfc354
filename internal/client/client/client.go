package client

import (
	"context"

	"github.com/dmitrijs2005/cyclelogin/internal/api"
	"github.com/dmitrijs2005/cyclelogin/internal/server/models"
)

// Client is the set of remote operations used by the CLI.
type Client interface {
	Ping(ctx context.Context) error

	IncrementVisitCount(ctx context.Context) (*api.CounterResponse, error)
	GetVisitCount(ctx context.Context) (*api.CounterResponse, error)
	Validate(ctx context.Context, username, pin string, cycle int) (*api.ValidateResponse, error)
	RecordVisit(ctx context.Context, v models.Visit) error
	AmendLastDuration(ctx context.Context, username string, durationMs int64) (bool, error)

	ExchangeDevPIN(ctx context.Context, pin string) error
	SetAccessToken(token string)

	ListUsers(ctx context.Context) ([]models.User, error)
	CreateUser(ctx context.Context, username string) (*api.CreateUserResponse, error)
	DeleteUser(ctx context.Context, id string) error
	UpdateLicense(ctx context.Context, req *api.UpdateLicenseRequest) (*models.User, error)
	BulkAddLicense(ctx context.Context, days float64) (int, error)
	ListVisits(ctx context.Context) ([]models.Visit, error)
	VisitsByUser(ctx context.Context) (map[string][]models.Visit, error)
	ResetVisitCount(ctx context.Context) error

	Close() error
}
