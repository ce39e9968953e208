package errors

import "errors"

var (
	ErrInvalidAgentInput  = errors.New("invalid agent input")
	ErrInvalidLoginInput  = errors.New("invalid login input")
	ErrInvalidPhoneNumber = errors.New("invalid phone number")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailExists        = errors.New("email already exists")
	ErrUserNotFound       = errors.New("agent not found")
	ErrUnauthorized       = errors.New("authentication required")
	ErrForbidden          = errors.New("admin access required")
	ErrInvalidToken       = errors.New("invalid or expired token")
)
