// Package grpc exposes AuthService as the storeauth.AuthService gRPC service.
// Messages are plain structs carried by a JSON codec.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/storeauth/internal/logging"
	"github.com/dmitrijs2005/storeauth/internal/server/config"
	"github.com/dmitrijs2005/storeauth/internal/server/throttle"
	"google.golang.org/grpc"
)

type GRPCServer struct {
	address  string
	auth     Authenticator
	limiters map[string]*throttle.Limiter
	logger   logging.Logger
}

var _ AuthServiceServer = (*GRPCServer)(nil)

func NewGRPCServer(address string, l logging.Logger, svc Authenticator, limits config.ThrottleConfig) *GRPCServer {
	return &GRPCServer{
		address: address,
		auth:    svc,
		limiters: map[string]*throttle.Limiter{
			FullMethod(MethodRegister):     throttle.NewLimiter(limits.RegisterPerMinute, 0, nil),
			FullMethod(MethodLogin):        throttle.NewLimiter(limits.LoginPerMinute, 0, nil),
			FullMethod(MethodVerifyMfa):    throttle.NewLimiter(limits.VerifyMfaPerMinute, 0, nil),
			FullMethod(MethodRefreshToken): throttle.NewLimiter(limits.RefreshPerMinute, 0, nil),
		},
		logger: l.With("module", "grpc_server"),
	}
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.throttleInterceptor, s.accessTokenInterceptor))
	RegisterAuthServiceServer(srv, s)
	return srv
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is done, then stops gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}
	return nil
}
