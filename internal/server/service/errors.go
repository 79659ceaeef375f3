package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors for the service layer.
var (
	ErrNotFound      = errors.New("not found")
	ErrQueryRequired = errors.New("search query is required")
)

// ValidationError reports one message per invalid request field, so the API
// can return a structured, field-keyed error body instead of a single
// opaque message.
type ValidationError struct {
	Fields map[string]string
}

func newValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

// Add records a message for a field. The first message per field wins.
func (e *ValidationError) Add(field, message string) {
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = message
	}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// errOrNil lets validation sites build up a *ValidationError and return a
// plain nil error when nothing was recorded.
func (e *ValidationError) errOrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}
