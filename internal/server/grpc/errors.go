package grpc

import (
	"errors"

	"github.com/dmitrijs2005/storeauth/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var codeOf = []struct {
	err  error
	code codes.Code
}{
	{common.ErrInvalidCredentials, codes.Unauthenticated},
	{common.ErrInvalidMfaCode, codes.Unauthenticated},
	{common.ErrInvalidOrExpiredToken, codes.Unauthenticated},
	{common.ErrAccountInactive, codes.Unauthenticated},
	{common.ErrAccountLocked, codes.PermissionDenied},
	{common.ErrDuplicateEmail, codes.AlreadyExists},
	{common.ErrPolicyViolation, codes.InvalidArgument},
	{common.ErrInvalidInput, codes.InvalidArgument},
	{common.ErrMfaNotConfigured, codes.FailedPrecondition},
	{common.ErrMfaAlreadyEnabled, codes.FailedPrecondition},
	{common.ErrReferenceNotFound, codes.NotFound},
	{common.ErrorNotFound, codes.NotFound},
	{common.ErrVersionConflict, codes.Aborted},
	{common.ErrStorageUnavailable, codes.Unavailable},
}

// toStatus converts a service error into a gRPC status. Locked and policy
// errors keep their full message; others expose only the sentinel text so
// that wrapped storage details stay in the logs.
func toStatus(err error) error {
	var locked *common.LockedError
	if errors.As(err, &locked) {
		return status.Error(codes.PermissionDenied, locked.Error())
	}
	var policy *common.PolicyError
	if errors.As(err, &policy) {
		return status.Error(codes.InvalidArgument, policy.Error())
	}
	for _, m := range codeOf {
		if errors.Is(err, m.err) {
			return status.Error(m.code, m.err.Error())
		}
	}
	return status.Error(codes.Internal, common.ErrorInternal.Error())
}
