package client

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/cyclelogin/internal/api"
	"github.com/dmitrijs2005/cyclelogin/internal/common"
	"github.com/dmitrijs2005/cyclelogin/internal/server/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

var _ Client = (*GRPCClient)(nil)

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn

	mu          sync.RWMutex
	accessToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {

	if token := s.token(); token != "" {
		ctx = withAccessToken(ctx, token)
	}

	return invoker(ctx, method, req, reply, cc, opts...)
}

// NewGRPCClient connects lazily to endpointURL. Extra dial options are
// appended after the defaults, so tests can swap the dialer.
func NewGRPCClient(endpointURL string, extra ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}

	opts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(api.CodecName)),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
	}
	opts = append(opts, extra...)

	conn, err := grpc.NewClient(endpointURL, opts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	return c, nil
}

func (s *GRPCClient) token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// SetAccessToken replaces the dev token sent with later calls. An empty
// token stops sending one.
func (s *GRPCClient) SetAccessToken(token string) {
	s.mu.Lock()
	s.accessToken = token
	s.mu.Unlock()
}

func (s *GRPCClient) invoke(ctx context.Context, method string, req, resp any) error {
	if err := s.conn.Invoke(ctx, api.FullMethod(method), req, resp); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	var resp api.PingResponse
	if err := s.invoke(ctx, api.MethodPing, &api.Empty{}, &resp); err != nil {
		return err
	}
	if resp.Status != "OK" {
		return fmt.Errorf("unexpected ping status %q", resp.Status)
	}
	return nil
}

func (s *GRPCClient) IncrementVisitCount(ctx context.Context) (*api.CounterResponse, error) {
	var resp api.CounterResponse
	if err := s.invoke(ctx, api.MethodIncrementCount, &api.Empty{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *GRPCClient) GetVisitCount(ctx context.Context) (*api.CounterResponse, error) {
	var resp api.CounterResponse
	if err := s.invoke(ctx, api.MethodGetCount, &api.Empty{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *GRPCClient) Validate(ctx context.Context, username, pin string, cycle int) (*api.ValidateResponse, error) {
	req := &api.ValidateRequest{Username: username, PIN: pin, Cycle: cycle}
	var resp api.ValidateResponse
	if err := s.invoke(ctx, api.MethodValidate, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *GRPCClient) RecordVisit(ctx context.Context, v models.Visit) error {
	var resp api.RecordVisitResponse
	return s.invoke(ctx, api.MethodRecordVisit, &v, &resp)
}

func (s *GRPCClient) AmendLastDuration(ctx context.Context, username string, durationMs int64) (bool, error) {
	req := &api.AmendDurationRequest{Username: username, DurationMs: float64(durationMs)}
	var resp api.AmendDurationResponse
	if err := s.invoke(ctx, api.MethodAmendDuration, req, &resp); err != nil {
		return false, err
	}
	return resp.Amended, nil
}

// ExchangeDevPIN trades the override PIN for a dev token and keeps it for
// subsequent privileged calls.
func (s *GRPCClient) ExchangeDevPIN(ctx context.Context, pin string) error {
	var resp api.DevTokenResponse
	if err := s.invoke(ctx, api.MethodExchangeDevPIN, &api.DevTokenRequest{PIN: pin}, &resp); err != nil {
		return err
	}
	s.SetAccessToken(resp.Token)
	return nil
}

func (s *GRPCClient) ListUsers(ctx context.Context) ([]models.User, error) {
	var resp api.ListUsersResponse
	if err := s.invoke(ctx, api.MethodListUsers, &api.Empty{}, &resp); err != nil {
		return nil, err
	}
	return resp.Users, nil
}

func (s *GRPCClient) CreateUser(ctx context.Context, username string) (*api.CreateUserResponse, error) {
	var resp api.CreateUserResponse
	if err := s.invoke(ctx, api.MethodCreateUser, &api.CreateUserRequest{Username: username}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *GRPCClient) DeleteUser(ctx context.Context, id string) error {
	var resp api.OKResponse
	return s.invoke(ctx, api.MethodDeleteUser, &api.DeleteUserRequest{ID: id}, &resp)
}

func (s *GRPCClient) UpdateLicense(ctx context.Context, req *api.UpdateLicenseRequest) (*models.User, error) {
	var resp api.UpdateLicenseResponse
	if err := s.invoke(ctx, api.MethodUpdateLicense, req, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

func (s *GRPCClient) BulkAddLicense(ctx context.Context, days float64) (int, error) {
	req := &api.BulkAddLicenseRequest{}
	if days != 0 {
		req.Days = &days
	}
	var resp api.BulkAddLicenseResponse
	if err := s.invoke(ctx, api.MethodBulkAddLicense, req, &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}

func (s *GRPCClient) ListVisits(ctx context.Context) ([]models.Visit, error) {
	var resp api.ListVisitsResponse
	if err := s.invoke(ctx, api.MethodListVisits, &api.Empty{}, &resp); err != nil {
		return nil, err
	}
	return resp.Visits, nil
}

func (s *GRPCClient) VisitsByUser(ctx context.Context) (map[string][]models.Visit, error) {
	var resp api.VisitsByUserResponse
	if err := s.invoke(ctx, api.MethodVisitsByUser, &api.Empty{}, &resp); err != nil {
		return nil, err
	}
	return resp.Groups, nil
}

func (s *GRPCClient) ResetVisitCount(ctx context.Context) error {
	var resp api.OKResponse
	return s.invoke(ctx, api.MethodResetVisitCount, &api.Empty{}, &resp)
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrUnavailable
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.NotFound:
		return ErrNotFound
	case codes.AlreadyExists:
		return ErrAlreadyExists
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", ErrInvalidInput, st.Message())
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
