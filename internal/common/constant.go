// Package common contains shared constants and sentinel errors used across
// storeauth components.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on inbound requests.
const AccessTokenHeaderName = "access_token"

// RefreshTokenSize is the number of random bytes in an opaque refresh token.
const RefreshTokenSize = 64
