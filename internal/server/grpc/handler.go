package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/cyclelogin/internal/api"
	"github.com/dmitrijs2005/cyclelogin/internal/common"
	"github.com/dmitrijs2005/cyclelogin/internal/server/services"
	"github.com/dmitrijs2005/cyclelogin/internal/timex"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus maps service errors onto gRPC codes.
func toStatus(err error) error {
	switch {
	case errors.Is(err, common.ErrorInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		return status.Error(codes.Unauthenticated, "unauthorized")
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, common.ErrorAlreadyExists):
		return status.Error(codes.AlreadyExists, "username already exists")
	case errors.Is(err, common.ErrorBackend):
		return status.Error(codes.Unavailable, "operation failed, try again")
	default:
		return status.Error(codes.Internal, "internal error")
	}
}

func (s *GRPCServer) fail(ctx context.Context, err error) error {
	s.logger.Error(ctx, err.Error())
	return toStatus(err)
}

func (s *GRPCServer) Ping(ctx context.Context, req *api.Empty) (*api.PingResponse, error) {

	return &api.PingResponse{Status: "OK"}, nil

}

func (s *GRPCServer) ExchangeDevPIN(ctx context.Context, req *api.DevTokenRequest) (*api.DevTokenResponse, error) {

	token, exp, err := s.svc.Issuer.Exchange(req.PIN)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, "invalid dev PIN")
	}

	return &api.DevTokenResponse{Token: token, ExpiresAt: timex.UnixMilli(exp)}, nil

}

func (s *GRPCServer) Validate(ctx context.Context, req *api.ValidateRequest) (*api.ValidateResponse, error) {

	resp, err := s.svc.ValidateRequest(ctx, req)
	if err != nil {
		return nil, s.fail(ctx, err)
	}
	return resp, nil

}

func (s *GRPCServer) IncrementVisitCount(ctx context.Context, req *api.Empty) (*api.CounterResponse, error) {

	n, c, err := s.svc.Counter.IncrementAndGetCycle(ctx)
	if err != nil {
		return nil, s.fail(ctx, err)
	}
	return &api.CounterResponse{Count: n, Cycle: c}, nil

}

func (s *GRPCServer) GetVisitCount(ctx context.Context, req *api.Empty) (*api.CounterResponse, error) {

	n, c, err := s.svc.Counter.CurrentCycle(ctx)
	if err != nil {
		return nil, s.fail(ctx, err)
	}
	return &api.CounterResponse{Count: n, Cycle: c}, nil

}

func (s *GRPCServer) RecordVisit(ctx context.Context, req *api.Visit) (*api.RecordVisitResponse, error) {

	v, err := s.svc.Visits.Record(ctx, *req)
	if err != nil {
		return nil, s.fail(ctx, err)
	}
	return &api.RecordVisitResponse{OK: true, Visit: v}, nil

}

func (s *GRPCServer) AmendLastDuration(ctx context.Context, req *api.AmendDurationRequest) (*api.AmendDurationResponse, error) {

	ok, err := s.svc.Visits.AmendLastDuration(ctx, req.Username, req.DurationMs)
	if err != nil {
		return nil, s.fail(ctx, err)
	}
	return &api.AmendDurationResponse{OK: true, Amended: ok}, nil

}

func (s *GRPCServer) ListUsers(ctx context.Context, req *api.Empty) (*api.ListUsersResponse, error) {

	users, err := s.svc.Users.List(ctx, privilegeFrom(ctx))
	if err != nil {
		return nil, s.fail(ctx, err)
	}
	return &api.ListUsersResponse{Users: users}, nil

}

func (s *GRPCServer) CreateUser(ctx context.Context, req *api.CreateUserRequest) (*api.CreateUserResponse, error) {

	u, err := s.svc.Users.Create(ctx, privilegeFrom(ctx), req.Username)
	if err != nil {
		return nil, s.fail(ctx, err)
	}

	s.logger.Info(ctx, "Created", "username", u.Username)
	return &api.CreateUserResponse{OK: true, User: *u, CycleCodes: u.CycleCodes}, nil

}

func (s *GRPCServer) DeleteUser(ctx context.Context, req *api.DeleteUserRequest) (*api.OKResponse, error) {

	if err := s.svc.Users.Delete(ctx, privilegeFrom(ctx), req.ID); err != nil {
		return nil, s.fail(ctx, err)
	}
	return &api.OKResponse{OK: true}, nil

}

func (s *GRPCServer) UpdateLicense(ctx context.Context, req *api.UpdateLicenseRequest) (*api.UpdateLicenseResponse, error) {

	u, err := s.svc.Licenses.Apply(ctx, privilegeFrom(ctx), req.ID, services.LicenseChangeFrom(req))
	if err != nil {
		return nil, s.fail(ctx, err)
	}
	return &api.UpdateLicenseResponse{OK: true, User: *u}, nil

}

func (s *GRPCServer) BulkAddLicense(ctx context.Context, req *api.BulkAddLicenseRequest) (*api.BulkAddLicenseResponse, error) {

	n, err := s.svc.Licenses.BulkAddDays(ctx, privilegeFrom(ctx), req.DaysOrDefault())
	if err != nil {
		return nil, s.fail(ctx, err)
	}
	return &api.BulkAddLicenseResponse{OK: true, Count: n}, nil

}

func (s *GRPCServer) ListVisits(ctx context.Context, req *api.Empty) (*api.ListVisitsResponse, error) {

	visits, err := s.svc.Visits.List(ctx, privilegeFrom(ctx))
	if err != nil {
		return nil, s.fail(ctx, err)
	}
	return &api.ListVisitsResponse{Visits: visits}, nil

}

func (s *GRPCServer) VisitsByUser(ctx context.Context, req *api.Empty) (*api.VisitsByUserResponse, error) {

	groups, err := s.svc.Visits.GroupByUser(ctx, privilegeFrom(ctx))
	if err != nil {
		return nil, s.fail(ctx, err)
	}
	return &api.VisitsByUserResponse{Groups: groups}, nil

}

func (s *GRPCServer) ResetVisitCount(ctx context.Context, req *api.Empty) (*api.OKResponse, error) {

	if err := s.svc.Counter.Reset(ctx, privilegeFrom(ctx)); err != nil {
		return nil, s.fail(ctx, err)
	}
	return &api.OKResponse{OK: true}, nil

}
