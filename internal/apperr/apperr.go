// Package apperr holds the error kinds shared by services and the HTTP layer.
// Services wrap them with fmt.Errorf("%w: ...") and handlers map them back with errors.Is.
package apperr

import (
	"errors"
	"net/http"
)

var (
	ErrUnauthenticated  = errors.New("unauthenticated")   // 401
	ErrForbidden        = errors.New("forbidden")         // 403
	ErrNotFound         = errors.New("not found")         // 404
	ErrInvalidOperation = errors.New("invalid operation") // 400
	ErrValidation       = errors.New("validation")        // 400
	ErrConflict         = errors.New("conflict")          // 409
	ErrPaymentProvider  = errors.New("payment provider")  // 502
	ErrSignatureInvalid = errors.New("signature invalid") // 400
	ErrInternal         = errors.New("internal")          // 500
)

type kind struct {
	err    error
	status int
	code   string
}

var kinds = []kind{
	{ErrUnauthenticated, http.StatusUnauthorized, "UNAUTHENTICATED"},
	{ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
	{ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
	{ErrInvalidOperation, http.StatusBadRequest, "INVALID_OPERATION"},
	{ErrValidation, http.StatusBadRequest, "VALIDATION"},
	{ErrConflict, http.StatusConflict, "CONFLICT"},
	{ErrPaymentProvider, http.StatusBadGateway, "PAYMENT_PROVIDER_ERROR"},
	{ErrSignatureInvalid, http.StatusBadRequest, "SIGNATURE_INVALID"},
}

// Classify returns the HTTP status and stable error code for err.
// Anything not wrapping a known kind is an internal error.
func Classify(err error) (int, string) {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.status, k.code
		}
	}
	return http.StatusInternalServerError, "INTERNAL"
}
