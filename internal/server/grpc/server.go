package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/cyclelogin/internal/api"
	"github.com/dmitrijs2005/cyclelogin/internal/logging"
	"github.com/dmitrijs2005/cyclelogin/internal/server/services"
	"google.golang.org/grpc"
)

// GRPCServer exposes the services over gRPC with the JSON codec.
type GRPCServer struct {
	address string
	svc     *services.Services
	logger  logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, svc *services.Services) *GRPCServer {
	return &GRPCServer{
		address: a,
		logger:  l.With("module", "grpc_server"),
		svc:     svc,
	}
}

// NewServer builds a grpc.Server with the interceptors and the service
// registered. Run uses it; tests serve it on a bufconn listener.
func (s *GRPCServer) NewServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor))
	RegisterCycleLoginServer(srv, s)
	return srv
}

// Run listens on the configured address until ctx is cancelled.
func (s *GRPCServer) Run(ctx context.Context) error {

	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := s.NewServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", s.address, "codec", api.CodecName)

	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
