package grpc

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/dmitrijs2005/storeauth/internal/common"
	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestToStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code codes.Code
		msg  string
	}{
		{"credentials", common.ErrInvalidCredentials, codes.Unauthenticated, "invalid credentials"},
		{"mfa code", common.ErrInvalidMfaCode, codes.Unauthenticated, "invalid mfa code"},
		{"token", common.ErrInvalidOrExpiredToken, codes.Unauthenticated, "invalid or expired token"},
		{"inactive", common.ErrAccountInactive, codes.Unauthenticated, "account inactive"},
		{"locked", &common.LockedError{RetryAfter: 14*time.Minute + time.Second}, codes.PermissionDenied, "account locked, retry in 15 minutes"},
		{"duplicate", common.ErrDuplicateEmail, codes.AlreadyExists, "email already registered"},
		{"policy", &common.PolicyError{Reasons: []string{"too short", "no digit"}}, codes.InvalidArgument, "password policy: too short; no digit"},
		{"input", common.ErrInvalidInput, codes.InvalidArgument, "invalid input"},
		{"mfa state", common.ErrMfaAlreadyEnabled, codes.FailedPrecondition, "mfa already enabled"},
		{"mfa missing", common.ErrMfaNotConfigured, codes.FailedPrecondition, "mfa not configured"},
		{"reference", common.ErrReferenceNotFound, codes.NotFound, "referenced record not found"},
		{"not found", common.ErrorNotFound, codes.NotFound, "not found"},
		{"conflict", common.ErrVersionConflict, codes.Aborted, "version conflict"},
		{
			"storage hides cause",
			fmt.Errorf("%w: %w", common.ErrStorageUnavailable, errors.New("dial tcp 10.0.0.5:5432: refused")),
			codes.Unavailable, "storage unavailable",
		},
		{"other", errors.New("boom"), codes.Internal, "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := status.Convert(toStatus(tt.err))
			assert.Equal(t, tt.code, st.Code())
			assert.Equal(t, tt.msg, st.Message())
		})
	}
}
