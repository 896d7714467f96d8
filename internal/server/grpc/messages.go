package grpc

import "time"

// Empty is the request or response of methods without a payload.
type Empty struct{}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone,omitempty"`
	RoleID   string `json:"role_id"`
	StoreID  string `json:"store_id"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type VerifyMfaRequest struct {
	PendingToken string `json:"pending_token"`
	Code         string `json:"code"`
}

type ConfirmMfaRequest struct {
	Code string `json:"code"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type Profile struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	FullName   string    `json:"full_name"`
	Phone      string    `json:"phone,omitempty"`
	RoleID     string    `json:"role_id"`
	Role       string    `json:"role"`
	StoreID    string    `json:"store_id"`
	Active     bool      `json:"active"`
	MfaEnabled bool      `json:"mfa_enabled"`
	CreatedAt  time.Time `json:"created_at"`
}

type SessionResponse struct {
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
	User             *Profile  `json:"user"`
}

// LoginResponse carries either Session or, when MfaRequired is set, a
// PendingToken for VerifyMfa.
type LoginResponse struct {
	MfaRequired  bool             `json:"mfa_required"`
	PendingToken string           `json:"pending_token,omitempty"`
	Session      *SessionResponse `json:"session,omitempty"`
}

type EnableMfaResponse struct {
	Secret          string `json:"secret"`
	ProvisioningURI string `json:"provisioning_uri"`
	QRCode          string `json:"qr_code"`
}

type Role struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type ListRolesResponse struct {
	Roles []Role `json:"roles"`
}

type Store struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type ListStoresResponse struct {
	Stores []Store `json:"stores"`
}
