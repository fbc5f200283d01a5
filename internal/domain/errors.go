package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicate is returned when a record with the same title or source URL already exists.
	ErrDuplicate = errors.New("deal already exists")
	// ErrNotFound is returned when no record matches the identifier.
	ErrNotFound = errors.New("deal not found")
	// ErrInvalid marks input rejected at the write path.
	ErrInvalid = errors.New("invalid deal")
	// ErrNotADeal means the model judged the text not to describe an agreement.
	ErrNotADeal = errors.New("not a deal")
	// ErrQuotaExhausted means the extraction service reported a rate limit.
	ErrQuotaExhausted = errors.New("extraction quota exhausted")
	// ErrNotConfigured means a required key or endpoint is missing.
	ErrNotConfigured = errors.New("not configured")
	// ErrUnauthorized is returned when a scan trigger lacks valid credentials.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNoArticleText means the page could not be turned into text.
	ErrNoArticleText = errors.New("could not extract article text")
)

// ValidationError describes a single rejected field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Unwrap lets callers match any validation failure with errors.Is(err, ErrInvalid).
func (e *ValidationError) Unwrap() error {
	return ErrInvalid
}

// ParseError wraps model output that could not be turned into a candidate.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse model output: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// MissingConfig builds an ErrNotConfigured error naming the absent setting.
func MissingConfig(setting string) error {
	return fmt.Errorf("%s: %w", setting, ErrNotConfigured)
}
