package grpc

import (
	"context"

	"github.com/dmitrijs2005/storeauth/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// Client calls storeauth.AuthService over an established connection using
// the JSON codec.
type Client struct {
	conn grpc.ClientConnInterface
}

func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

// WithAccessToken returns ctx carrying token in outgoing metadata.
func WithAccessToken(ctx context.Context, token string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, common.AccessTokenHeaderName, token)
}

func invoke[Resp any](ctx context.Context, c *Client, method string, req any) (*Resp, error) {
	out := new(Resp)
	if err := c.conn.Invoke(ctx, FullMethod(method), req, out, grpc.CallContentSubtype(CodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Register(ctx context.Context, req *RegisterRequest) (*SessionResponse, error) {
	return invoke[SessionResponse](ctx, c, MethodRegister, req)
}

func (c *Client) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	return invoke[LoginResponse](ctx, c, MethodLogin, req)
}

func (c *Client) VerifyMfa(ctx context.Context, req *VerifyMfaRequest) (*SessionResponse, error) {
	return invoke[SessionResponse](ctx, c, MethodVerifyMfa, req)
}

func (c *Client) EnableMfa(ctx context.Context) (*EnableMfaResponse, error) {
	return invoke[EnableMfaResponse](ctx, c, MethodEnableMfa, &Empty{})
}

func (c *Client) ConfirmMfaEnrollment(ctx context.Context, code string) error {
	_, err := invoke[Empty](ctx, c, MethodConfirmMfa, &ConfirmMfaRequest{Code: code})
	return err
}

func (c *Client) DisableMfa(ctx context.Context) error {
	_, err := invoke[Empty](ctx, c, MethodDisableMfa, &Empty{})
	return err
}

func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*SessionResponse, error) {
	return invoke[SessionResponse](ctx, c, MethodRefreshToken, &RefreshTokenRequest{RefreshToken: refreshToken})
}

func (c *Client) Logout(ctx context.Context) error {
	_, err := invoke[Empty](ctx, c, MethodLogout, &Empty{})
	return err
}

func (c *Client) RevokeAllSessions(ctx context.Context) error {
	_, err := invoke[Empty](ctx, c, MethodRevokeAllSessions, &Empty{})
	return err
}

func (c *Client) GetProfile(ctx context.Context) (*Profile, error) {
	return invoke[Profile](ctx, c, MethodGetProfile, &Empty{})
}

func (c *Client) ListRoles(ctx context.Context) (*ListRolesResponse, error) {
	return invoke[ListRolesResponse](ctx, c, MethodListRoles, &Empty{})
}

func (c *Client) ListStores(ctx context.Context) (*ListStoresResponse, error) {
	return invoke[ListStoresResponse](ctx, c, MethodListStores, &Empty{})
}
