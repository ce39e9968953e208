package services

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	domainerrors "agentdesk/contexts/identity-access/agent-directory/domain/errors"
)

const (
	MinNameLength     = 2
	MinMobileLength   = 10
	MinPasswordLength = 6
)

// FieldError reports one rejected input field. It unwraps to the input error kind
// so callers can match the whole validation failure with errors.Is.
type FieldError struct {
	Field   string
	Message string
	Kind    error
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e FieldError) Unwrap() error {
	return e.Kind
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail accepts bare addresses only; display-name forms are rejected.
func ValidEmail(email string) bool {
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return false
	}
	return addr.Address == email && strings.Contains(email[strings.LastIndex(email, "@")+1:], ".")
}

// AgentFieldErrors returns every rule the agent input breaks, in field order.
func AgentFieldErrors(name string, email string, mobile string, password string) []FieldError {
	var out []FieldError
	if utf8.RuneCountInString(strings.TrimSpace(name)) < MinNameLength {
		out = append(out, FieldError{
			Field:   "name",
			Message: fmt.Sprintf("must be at least %d characters", MinNameLength),
			Kind:    domainerrors.ErrInvalidAgentInput,
		})
	}
	if !ValidEmail(NormalizeEmail(email)) {
		out = append(out, FieldError{
			Field:   "email",
			Message: "invalid email format",
			Kind:    domainerrors.ErrInvalidAgentInput,
		})
	}
	if len(strings.TrimSpace(mobile)) < MinMobileLength {
		out = append(out, FieldError{
			Field:   "mobile",
			Message: "mobile number is required",
			Kind:    domainerrors.ErrInvalidAgentInput,
		})
	}
	if len(password) < MinPasswordLength {
		out = append(out, FieldError{
			Field:   "password",
			Message: fmt.Sprintf("must be at least %d characters", MinPasswordLength),
			Kind:    domainerrors.ErrInvalidAgentInput,
		})
	}
	return out
}

// LoginFieldErrors applies the same email/password shape rules to login input.
func LoginFieldErrors(email string, password string) []FieldError {
	var out []FieldError
	if !ValidEmail(NormalizeEmail(email)) {
		out = append(out, FieldError{
			Field:   "email",
			Message: "invalid email format",
			Kind:    domainerrors.ErrInvalidLoginInput,
		})
	}
	if len(password) < MinPasswordLength {
		out = append(out, FieldError{
			Field:   "password",
			Message: fmt.Sprintf("must be at least %d characters", MinPasswordLength),
			Kind:    domainerrors.ErrInvalidLoginInput,
		})
	}
	return out
}
