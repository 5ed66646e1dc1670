package domain

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrNotAvailable   = errors.New("not available")
	ErrUnauthorized   = errors.New("access denied")
	ErrDuplicateEmail = errors.New("email already registered")
	ErrValidation     = errors.New("validation failed")
)
