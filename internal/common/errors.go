// Package common holds the sentinel errors shared by repositories, services
// and transports.
package common

import "errors"

var (
	// repository specific errors
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// service specific errors
	ErrValidation        = errors.New("validation error")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidState      = errors.New("invalid state")
	ErrInvalidCredential = errors.New("invalid email/password")
	ErrInvalidToken      = errors.New("invalid token")
	ErrStorageDisabled   = errors.New("object storage is not configured")
)
