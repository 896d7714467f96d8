package grpc

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "storeauth.AuthService"

const (
	MethodRegister          = "Register"
	MethodLogin             = "Login"
	MethodVerifyMfa         = "VerifyMfa"
	MethodEnableMfa         = "EnableMfa"
	MethodConfirmMfa        = "ConfirmMfaEnrollment"
	MethodDisableMfa        = "DisableMfa"
	MethodRefreshToken      = "RefreshToken"
	MethodLogout            = "Logout"
	MethodRevokeAllSessions = "RevokeAllSessions"
	MethodGetProfile        = "GetProfile"
	MethodListRoles         = "ListRoles"
	MethodListStores        = "ListStores"
)

// FullMethod returns the wire name of method, e.g. "/storeauth.AuthService/Login".
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// AuthServiceServer is the server side of storeauth.AuthService.
type AuthServiceServer interface {
	Register(context.Context, *RegisterRequest) (*SessionResponse, error)
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	VerifyMfa(context.Context, *VerifyMfaRequest) (*SessionResponse, error)
	EnableMfa(context.Context, *Empty) (*EnableMfaResponse, error)
	ConfirmMfaEnrollment(context.Context, *ConfirmMfaRequest) (*Empty, error)
	DisableMfa(context.Context, *Empty) (*Empty, error)
	RefreshToken(context.Context, *RefreshTokenRequest) (*SessionResponse, error)
	Logout(context.Context, *Empty) (*Empty, error)
	RevokeAllSessions(context.Context, *Empty) (*Empty, error)
	GetProfile(context.Context, *Empty) (*Profile, error)
	ListRoles(context.Context, *Empty) (*ListRolesResponse, error)
	ListStores(context.Context, *Empty) (*ListStoresResponse, error)
}

func unary[Req, Resp any](method string, call func(AuthServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(AuthServiceServer)
			if interceptor == nil {
				return call(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(s, ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// AuthServiceDesc describes storeauth.AuthService for grpc.Server.RegisterService.
var AuthServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AuthServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodRegister, AuthServiceServer.Register),
		unary(MethodLogin, AuthServiceServer.Login),
		unary(MethodVerifyMfa, AuthServiceServer.VerifyMfa),
		unary(MethodEnableMfa, AuthServiceServer.EnableMfa),
		unary(MethodConfirmMfa, AuthServiceServer.ConfirmMfaEnrollment),
		unary(MethodDisableMfa, AuthServiceServer.DisableMfa),
		unary(MethodRefreshToken, AuthServiceServer.RefreshToken),
		unary(MethodLogout, AuthServiceServer.Logout),
		unary(MethodRevokeAllSessions, AuthServiceServer.RevokeAllSessions),
		unary(MethodGetProfile, AuthServiceServer.GetProfile),
		unary(MethodListRoles, AuthServiceServer.ListRoles),
		unary(MethodListStores, AuthServiceServer.ListStores),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "storeauth/auth",
}

// RegisterAuthServiceServer attaches srv to s.
func RegisterAuthServiceServer(s grpc.ServiceRegistrar, srv AuthServiceServer) {
	s.RegisterService(&AuthServiceDesc, srv)
}
