package grpc

import (
	"context"

	"github.com/dmitrijs2005/cyclelogin/internal/api"
	"google.golang.org/grpc"
)

// CycleLoginServer is the server side of the cyclelogin.v1.CycleLogin
// service.
type CycleLoginServer interface {
	Ping(context.Context, *api.Empty) (*api.PingResponse, error)
	ExchangeDevPIN(context.Context, *api.DevTokenRequest) (*api.DevTokenResponse, error)
	Validate(context.Context, *api.ValidateRequest) (*api.ValidateResponse, error)
	IncrementVisitCount(context.Context, *api.Empty) (*api.CounterResponse, error)
	GetVisitCount(context.Context, *api.Empty) (*api.CounterResponse, error)
	RecordVisit(context.Context, *api.Visit) (*api.RecordVisitResponse, error)
	AmendLastDuration(context.Context, *api.AmendDurationRequest) (*api.AmendDurationResponse, error)

	ListUsers(context.Context, *api.Empty) (*api.ListUsersResponse, error)
	CreateUser(context.Context, *api.CreateUserRequest) (*api.CreateUserResponse, error)
	DeleteUser(context.Context, *api.DeleteUserRequest) (*api.OKResponse, error)
	UpdateLicense(context.Context, *api.UpdateLicenseRequest) (*api.UpdateLicenseResponse, error)
	BulkAddLicense(context.Context, *api.BulkAddLicenseRequest) (*api.BulkAddLicenseResponse, error)
	ListVisits(context.Context, *api.Empty) (*api.ListVisitsResponse, error)
	VisitsByUser(context.Context, *api.Empty) (*api.VisitsByUserResponse, error)
	ResetVisitCount(context.Context, *api.Empty) (*api.OKResponse, error)
}

// unary adapts a CycleLoginServer method to a grpc.MethodDesc.
func unary[Req, Resp any](name string, call func(CycleLoginServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(CycleLoginServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: api.FullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(CycleLoginServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: api.ServiceName,
	HandlerType: (*CycleLoginServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(api.MethodPing, CycleLoginServer.Ping),
		unary(api.MethodExchangeDevPIN, CycleLoginServer.ExchangeDevPIN),
		unary(api.MethodValidate, CycleLoginServer.Validate),
		unary(api.MethodIncrementCount, CycleLoginServer.IncrementVisitCount),
		unary(api.MethodGetCount, CycleLoginServer.GetVisitCount),
		unary(api.MethodRecordVisit, CycleLoginServer.RecordVisit),
		unary(api.MethodAmendDuration, CycleLoginServer.AmendLastDuration),
		unary(api.MethodListUsers, CycleLoginServer.ListUsers),
		unary(api.MethodCreateUser, CycleLoginServer.CreateUser),
		unary(api.MethodDeleteUser, CycleLoginServer.DeleteUser),
		unary(api.MethodUpdateLicense, CycleLoginServer.UpdateLicense),
		unary(api.MethodBulkAddLicense, CycleLoginServer.BulkAddLicense),
		unary(api.MethodListVisits, CycleLoginServer.ListVisits),
		unary(api.MethodVisitsByUser, CycleLoginServer.VisitsByUser),
		unary(api.MethodResetVisitCount, CycleLoginServer.ResetVisitCount),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "cyclelogin/v1",
}

func RegisterCycleLoginServer(s grpc.ServiceRegistrar, srv CycleLoginServer) {
	s.RegisterService(&serviceDesc, srv)
}
