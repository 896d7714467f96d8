package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/storeauth/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

type ctxKey string

const userIDKey ctxKey = "userID"

// authenticated lists the methods that require an access token.
var authenticated = map[string]bool{
	FullMethod(MethodEnableMfa):         true,
	FullMethod(MethodConfirmMfa):        true,
	FullMethod(MethodDisableMfa):        true,
	FullMethod(MethodLogout):            true,
	FullMethod(MethodRevokeAllSessions): true,
	FullMethod(MethodGetProfile):        true,
}

// UserIDFromContext returns the user id put there by the access-token
// interceptor.
func UserIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(userIDKey).(string)
	return v, ok && v != ""
}

func (s *GRPCServer) throttleInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if l, ok := s.limiters[info.FullMethod]; ok {
		key := peerKey(ctx)
		if !l.Allow(key) {
			s.logger.Warn(ctx, "throttled", "method", info.FullMethod, "peer", key)
			return nil, status.Error(codes.ResourceExhausted, "too many requests")
		}
	}
	return handler(ctx, req)
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if !authenticated[info.FullMethod] {
		return handler(ctx, req)
	}

	var accessToken string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		values := md.Get(common.AccessTokenHeaderName)
		if len(values) > 0 {
			accessToken = values[0]
		}
	}
	if len(accessToken) == 0 {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	claims, err := s.auth.ParseAccessToken(accessToken)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, common.ErrInvalidOrExpiredToken.Error())
	}

	ctx = context.WithValue(ctx, userIDKey, claims.Subject)
	return handler(ctx, req)
}

// peerKey is the client IP, or the raw address when it has no port.
func peerKey(ctx context.Context) string {
	p, ok := peer.FromContext(ctx)
	if !ok || p.Addr == nil {
		return "unknown"
	}
	addr := p.Addr.String()
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
