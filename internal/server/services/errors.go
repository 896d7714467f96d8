package services

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/storeauth/internal/common"
)

// classified are the errors callers can act on; everything else coming out
// of the store is reported as common.ErrStorageUnavailable.
var classified = []error{
	common.ErrorNotFound,
	common.ErrVersionConflict,
	common.ErrInvalidInput,
	common.ErrInvalidCredentials,
	common.ErrAccountLocked,
	common.ErrAccountInactive,
	common.ErrDuplicateEmail,
	common.ErrPolicyViolation,
	common.ErrReferenceNotFound,
	common.ErrMfaNotConfigured,
	common.ErrMfaAlreadyEnabled,
	common.ErrInvalidMfaCode,
	common.ErrInvalidOrExpiredToken,
	common.ErrStorageUnavailable,
}

func storageErr(err error) error {
	if err == nil {
		return nil
	}
	for _, c := range classified {
		if errors.Is(err, c) {
			return err
		}
	}
	return fmt.Errorf("%w: %w", common.ErrStorageUnavailable, err)
}
