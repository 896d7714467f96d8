package services

import (
	"time"

	"github.com/dmitrijs2005/storeauth/internal/server/models"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// Profile is the user-safe view of a credential record. It never carries
// hashes, secrets or lockout state.
type Profile struct {
	ID         string
	Email      string
	FullName   string
	Phone      string
	RoleID     string
	Role       string
	StoreID    string
	Active     bool
	MfaEnabled bool
	CreatedAt  time.Time
}

// Session is returned whenever tokens are issued.
type Session struct {
	Tokens *TokenPair
	User   *Profile
}

// LoginResult is either a full Session or, for MFA accounts, a pending token
// that must be exchanged through VerifyMfa.
type LoginResult struct {
	MfaRequired  bool
	PendingToken string
	Session      *Session
}

// Enrollment is shown to the user once when MFA setup begins.
type Enrollment struct {
	Secret          string
	ProvisioningURI string
	// QRCode is a data:image/png;base64 URL of the provisioning URI.
	QRCode string
}

// RegisterInput carries a self-registration request.
type RegisterInput struct {
	Email    string
	Password string
	FullName string
	Phone    string
	RoleID   string
	StoreID  string
}

// Grant is the outcome of a token issue: the committed record, its role and
// the fresh pair.
type Grant struct {
	User   *models.User
	Role   *models.Role
	Tokens *TokenPair
}

func newProfile(u *models.User, role *models.Role) *Profile {
	p := &Profile{
		ID:         u.ID,
		Email:      u.Email,
		FullName:   u.FullName,
		Phone:      u.Phone,
		RoleID:     u.RoleID,
		StoreID:    u.StoreID,
		Active:     u.Active,
		MfaEnabled: u.MfaEnabled,
		CreatedAt:  u.CreatedAt,
	}
	if role != nil {
		p.Role = role.Name
	}
	return p
}
