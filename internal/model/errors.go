package model

import (
	"errors"
	"fmt"
)

// NetworkError is a connection, status or timeout failure while fetching the feed.
type NetworkError struct {
	Endpoint   string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("network error at %s: status %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("network error at %s: %v", e.Endpoint, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ParseError is a malformed or incomplete feed payload.
type ParseError struct {
	Index   int // offending entry, -1 when the whole document is bad
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Index >= 0 {
		return fmt.Sprintf("parse error at entry %d: %s", e.Index, msg)
	}
	return fmt.Sprintf("parse error: %s", msg)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ClockError means the time source cannot be trusted right now.
type ClockError struct {
	Reason string
}

func (e *ClockError) Error() string {
	return fmt.Sprintf("clock unavailable: %s", e.Reason)
}

// ConfigError is missing configuration that retrying cannot fix.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error for %s: %s", e.Field, e.Message)
}

// Retryable reports whether the scheduler should back off and try again.
func Retryable(err error) bool {
	var netErr *NetworkError
	var parseErr *ParseError
	return errors.As(err, &netErr) || errors.As(err, &parseErr)
}
