package api

import (
	"github.com/padmotion/padmotion/apitypes"
	apierror "github.com/padmotion/padmotion/internal/server/api/error"
)

// Pointer-returning variants of the apierror helpers, used by the server
// when writing problem lines.
func ErrBadRequest(detail string) *apitypes.ApiError { return ptr(apierror.ErrBadRequest(detail)) }
func ErrNotFound(detail string) *apitypes.ApiError   { return ptr(apierror.ErrNotFound(detail)) }
func ErrInternal(detail string) *apitypes.ApiError   { return ptr(apierror.ErrInternal(detail)) }
func ErrUnauthorized(detail string) *apitypes.ApiError {
	return ptr(apierror.ErrUnauthorized(detail))
}

// WrapError normalizes any error into *apitypes.ApiError.
func WrapError(err error) *apitypes.ApiError {
	if err == nil {
		return nil
	}
	return ptr(apierror.WrapError(err))
}

func ptr(e apitypes.ApiError) *apitypes.ApiError { return &e }
