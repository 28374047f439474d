package apperrors

import (
	"errors"
)

var (
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrUserNotFound      = errors.New("user not found")

	ErrInvalidCredentials = errors.New("invalid email or password")

	ErrTokenMissing       = errors.New("token not provided")
	ErrTokenExpired       = errors.New("token is expired")
	ErrTokenInvalid       = errors.New("token is invalid")
	ErrTokenNotAssociated = errors.New("token not associated with any user")
	ErrTokenMismatch      = errors.New("token not associated with this user")

	ErrPostNotFound    = errors.New("post not found")
	ErrBookingNotFound = errors.New("booking not found")
)
