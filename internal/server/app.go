// Package server initializes and runs the cycle login server: it opens the
// configured record store, wires the services, and runs the HTTP and gRPC
// transports until a shutdown signal arrives.
package server

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/cyclelogin/internal/logging"
	"github.com/dmitrijs2005/cyclelogin/internal/server/auth"
	"github.com/dmitrijs2005/cyclelogin/internal/server/config"
	"github.com/dmitrijs2005/cyclelogin/internal/server/httpapi"
	"github.com/dmitrijs2005/cyclelogin/internal/server/repositories/records"
	"github.com/dmitrijs2005/cyclelogin/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/cyclelogin/internal/server/services"

	gs "github.com/dmitrijs2005/cyclelogin/internal/server/grpc"
)

type runner interface {
	Run(ctx context.Context) error
}

type App struct {
	config   *config.Config
	logger   logging.Logger
	repo     records.Repository
	services *services.Services
}

// openRepository and logOutput are seams for tests.
var openRepository = repomanager.Open
var logOutput io.Writer = os.Stdout

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSON(logOutput, c.LogLevel)

	if c.SecretKey == config.DefaultSecretKey {
		logger.Warn(ctx, "default secret key in use, set CYCLE_LOGIN_SECRET or -s")
	}

	repo, err := openRepository(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	st := services.NewStore(repo, services.WithLogger(logger.With("module", "services")))
	issuer := auth.NewIssuer(c.SecretKey, c.DevPIN, c.DevTokenValidityDuration)

	logger.Info(ctx, "storage ready", "backend", c.StorageBackend)

	return &App{
		config:   c,
		logger:   logger,
		repo:     repo,
		services: services.New(st, issuer),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) start(ctx context.Context, cancelFunc context.CancelFunc, name string, r runner) {
	if err := r.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error(), "server", name)
		cancelFunc()
	}
}

func (app *App) runners() map[string]runner {
	return map[string]runner{
		"http": httpapi.NewHTTPServer(app.config.EndpointAddrHTTP, app.logger, app.services),
		"grpc": gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.services),
	}
}

// Run blocks until a signal arrives, ctx is cancelled, or a server fails,
// then closes the record store.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	for name, r := range app.runners() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.start(ctx, cancelFunc, name, r)
		}()
	}

	wg.Wait()

	if err := app.repo.Close(); err != nil {
		app.logger.Error(ctx, "closing storage", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
