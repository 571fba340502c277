package domain

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrForbidden            = errors.New("forbidden")
	ErrUnauthenticated      = errors.New("unauthenticated")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrDuplicateApplication = errors.New("you have already applied to this job")
	ErrDuplicateEmail       = errors.New("email is already registered")
	ErrInvalidTransition    = errors.New("status transition not allowed")
	ErrAdminProtected       = errors.New("admin accounts cannot be blocked or deleted")
	ErrSelfAction           = errors.New("you cannot perform this action on your own account")
	// ErrUnavailable marks store failures the caller may retry.
	ErrUnavailable = errors.New("service temporarily unavailable, please retry")
)

type ValidationError struct {
	Msg    string
	Fields map[string]string
}

func NewValidationError(msg string, fields map[string]string) *ValidationError {
	return &ValidationError{Msg: msg, Fields: fields}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Msg
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, e.Fields[k])
	}
	return e.Msg + ": " + strings.Join(parts, "; ")
}
