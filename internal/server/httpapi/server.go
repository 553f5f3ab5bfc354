package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/cyclelogin/internal/logging"
	"github.com/dmitrijs2005/cyclelogin/internal/server/services"
)

const shutdownTimeout = 5 * time.Second

// HTTPServer serves the REST API.
type HTTPServer struct {
	address string
	handler http.Handler
	logger  logging.Logger
}

func NewHTTPServer(a string, l logging.Logger, svc *services.Services) *HTTPServer {
	l = l.With("module", "http_server")
	return &HTTPServer{
		address: a,
		handler: NewRouter(NewHandler(svc, l)),
		logger:  l,
	}
}

// Run listens on the configured address until ctx is cancelled.
func (s *HTTPServer) Run(ctx context.Context) error {

	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{Handler: s.handler, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
