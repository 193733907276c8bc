package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/pixo/internal/common"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// StatusError carries an HTTP status next to the error that caused it.
type StatusError struct {
	Err    error
	Status int
	Kind   string
}

func (e *StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Status)
}

func (e *StatusError) Unwrap() error { return e.Err }

// errorKinds is checked in order; the first sentinel that matches wins.
var errorKinds = []struct {
	err    error
	status int
	kind   string
}{
	{common.ErrInvalidInput, http.StatusBadRequest, "InvalidInput"},
	{common.ErrDuplicateUser, http.StatusBadRequest, "DuplicateUser"},
	{common.ErrInvalidCredentials, http.StatusBadRequest, "InvalidCredentials"},
	{common.ErrNotLiked, http.StatusBadRequest, "NotLiked"},
	{common.ErrMissingToken, http.StatusUnauthorized, "MissingToken"},
	{common.ErrInvalidToken, http.StatusForbidden, "InvalidToken"},
	{common.ErrNotFound, http.StatusNotFound, "NotFound"},
	{common.ErrEmptyCollection, http.StatusNotFound, "EmptyCollection"},
	{common.ErrStoreUnavailable, http.StatusServiceUnavailable, "StoreUnavailable"},
}

// toStatusError classifies err. Server-side failures get a generic message so
// store diagnostics never reach the caller.
func toStatusError(err error) (*StatusError, ErrorResponse) {
	var se *StatusError
	if !errors.As(err, &se) {
		se = &StatusError{Err: err, Status: http.StatusInternalServerError, Kind: "Internal"}
		for _, k := range errorKinds {
			if errors.Is(err, k.err) {
				se = &StatusError{Err: err, Status: k.status, Kind: k.kind}
				break
			}
		}
	}

	body := ErrorResponse{Kind: se.Kind, Message: se.Error()}
	switch {
	case se.Status == http.StatusServiceUnavailable:
		body.Message = "service temporarily unavailable"
	case se.Status >= http.StatusInternalServerError:
		body.Message = "internal server error"
	}
	return se, body
}
