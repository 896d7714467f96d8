package grpc

import (
	"context"

	"github.com/dmitrijs2005/storeauth/internal/server/auth"
	"github.com/dmitrijs2005/storeauth/internal/server/models"
	"github.com/dmitrijs2005/storeauth/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Authenticator is the service the RPC adapter fronts. *services.AuthService
// implements it.
type Authenticator interface {
	Register(ctx context.Context, in services.RegisterInput) (*services.Session, error)
	Login(ctx context.Context, email, password string) (*services.LoginResult, error)
	VerifyMfa(ctx context.Context, pendingToken, code string) (*services.Session, error)
	EnableMfa(ctx context.Context, userID string) (*services.Enrollment, error)
	ConfirmMfaEnrollment(ctx context.Context, userID, code string) error
	DisableMfa(ctx context.Context, userID string) error
	RefreshToken(ctx context.Context, refreshToken string) (*services.Session, error)
	Logout(ctx context.Context, userID string) error
	RevokeAllSessions(ctx context.Context, userID string) error
	GetProfile(ctx context.Context, userID string) (*services.Profile, error)
	ListRoles(ctx context.Context) ([]models.Role, error)
	ListStores(ctx context.Context) ([]models.Store, error)
	ParseAccessToken(token string) (*auth.Claims, error)
}

var _ Authenticator = (*services.AuthService)(nil)

func (s *GRPCServer) Register(ctx context.Context, req *RegisterRequest) (*SessionResponse, error) {
	s.logger.Info(ctx, "Registration request")

	session, err := s.auth.Register(ctx, services.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Phone:    req.Phone,
		RoleID:   req.RoleID,
		StoreID:  req.StoreID,
	})
	if err != nil {
		return nil, s.fail(ctx, MethodRegister, err)
	}

	s.logger.Info(ctx, "Registered", "user_id", session.User.ID)
	return toSession(session), nil
}

func (s *GRPCServer) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	res, err := s.auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, s.fail(ctx, MethodLogin, err)
	}
	if res.MfaRequired {
		return &LoginResponse{MfaRequired: true, PendingToken: res.PendingToken}, nil
	}
	return &LoginResponse{Session: toSession(res.Session)}, nil
}

func (s *GRPCServer) VerifyMfa(ctx context.Context, req *VerifyMfaRequest) (*SessionResponse, error) {
	session, err := s.auth.VerifyMfa(ctx, req.PendingToken, req.Code)
	if err != nil {
		return nil, s.fail(ctx, MethodVerifyMfa, err)
	}
	return toSession(session), nil
}

func (s *GRPCServer) EnableMfa(ctx context.Context, _ *Empty) (*EnableMfaResponse, error) {
	userID, err := userIDFrom(ctx)
	if err != nil {
		return nil, err
	}
	e, err := s.auth.EnableMfa(ctx, userID)
	if err != nil {
		return nil, s.fail(ctx, MethodEnableMfa, err)
	}
	return &EnableMfaResponse{Secret: e.Secret, ProvisioningURI: e.ProvisioningURI, QRCode: e.QRCode}, nil
}

func (s *GRPCServer) ConfirmMfaEnrollment(ctx context.Context, req *ConfirmMfaRequest) (*Empty, error) {
	userID, err := userIDFrom(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.auth.ConfirmMfaEnrollment(ctx, userID, req.Code); err != nil {
		return nil, s.fail(ctx, MethodConfirmMfa, err)
	}
	return &Empty{}, nil
}

func (s *GRPCServer) DisableMfa(ctx context.Context, _ *Empty) (*Empty, error) {
	userID, err := userIDFrom(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.auth.DisableMfa(ctx, userID); err != nil {
		return nil, s.fail(ctx, MethodDisableMfa, err)
	}
	return &Empty{}, nil
}

func (s *GRPCServer) RefreshToken(ctx context.Context, req *RefreshTokenRequest) (*SessionResponse, error) {
	session, err := s.auth.RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, s.fail(ctx, MethodRefreshToken, err)
	}
	return toSession(session), nil
}

func (s *GRPCServer) Logout(ctx context.Context, _ *Empty) (*Empty, error) {
	userID, err := userIDFrom(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.auth.Logout(ctx, userID); err != nil {
		return nil, s.fail(ctx, MethodLogout, err)
	}
	return &Empty{}, nil
}

func (s *GRPCServer) RevokeAllSessions(ctx context.Context, _ *Empty) (*Empty, error) {
	userID, err := userIDFrom(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.auth.RevokeAllSessions(ctx, userID); err != nil {
		return nil, s.fail(ctx, MethodRevokeAllSessions, err)
	}
	return &Empty{}, nil
}

func (s *GRPCServer) GetProfile(ctx context.Context, _ *Empty) (*Profile, error) {
	userID, err := userIDFrom(ctx)
	if err != nil {
		return nil, err
	}
	p, err := s.auth.GetProfile(ctx, userID)
	if err != nil {
		return nil, s.fail(ctx, MethodGetProfile, err)
	}
	return toProfile(p), nil
}

func (s *GRPCServer) ListRoles(ctx context.Context, _ *Empty) (*ListRolesResponse, error) {
	roles, err := s.auth.ListRoles(ctx)
	if err != nil {
		return nil, s.fail(ctx, MethodListRoles, err)
	}
	out := &ListRolesResponse{Roles: make([]Role, 0, len(roles))}
	for _, r := range roles {
		out.Roles = append(out.Roles, Role{ID: r.ID, Name: r.Name, Description: r.Description})
	}
	return out, nil
}

func (s *GRPCServer) ListStores(ctx context.Context, _ *Empty) (*ListStoresResponse, error) {
	stores, err := s.auth.ListStores(ctx)
	if err != nil {
		return nil, s.fail(ctx, MethodListStores, err)
	}
	out := &ListStoresResponse{Stores: make([]Store, 0, len(stores))}
	for _, st := range stores {
		out.Stores = append(out.Stores, Store{ID: st.ID, Name: st.Name})
	}
	return out, nil
}

// fail logs err and converts it into a status.
func (s *GRPCServer) fail(ctx context.Context, method string, err error) error {
	st := toStatus(err)
	if status.Code(st) == codes.Internal || status.Code(st) == codes.Unavailable {
		s.logger.Error(ctx, "request failed", "method", method, "error", err.Error())
	} else {
		s.logger.Debug(ctx, "request rejected", "method", method, "code", status.Code(st).String())
	}
	return st
}

func userIDFrom(ctx context.Context) (string, error) {
	userID, ok := UserIDFromContext(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "missing token")
	}
	return userID, nil
}

func toProfile(p *services.Profile) *Profile {
	if p == nil {
		return nil
	}
	return &Profile{
		ID:         p.ID,
		Email:      p.Email,
		FullName:   p.FullName,
		Phone:      p.Phone,
		RoleID:     p.RoleID,
		Role:       p.Role,
		StoreID:    p.StoreID,
		Active:     p.Active,
		MfaEnabled: p.MfaEnabled,
		CreatedAt:  p.CreatedAt,
	}
}

func toSession(s *services.Session) *SessionResponse {
	out := &SessionResponse{User: toProfile(s.User)}
	if s.Tokens != nil {
		out.AccessToken = s.Tokens.AccessToken
		out.RefreshToken = s.Tokens.RefreshToken
		out.AccessExpiresAt = s.Tokens.AccessExpiresAt
		out.RefreshExpiresAt = s.Tokens.RefreshExpiresAt
	}
	return out
}
