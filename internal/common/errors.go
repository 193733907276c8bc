// Package common defines shared constants and sentinel errors used across
// the pixo server layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Validation errors. Detail is attached by wrapping.
	ErrInvalidInput = errors.New("invalid input")

	// Repository-level errors.
	ErrNotFound        = errors.New("not found")
	ErrDuplicateUser   = errors.New("user already exists")
	ErrEmptyCollection = errors.New("no images found")
	ErrNotLiked        = errors.New("image is not liked by this user")

	// Auth errors.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMissingToken       = errors.New("access denied")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")

	// Infrastructure errors.
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrInternal         = errors.New("internal error")
)
