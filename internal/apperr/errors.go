// Package apperr holds the error taxonomy shared by the upstream clients,
// the chat pipeline and the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound matches any UpstreamError carrying a 404 status.
	ErrNotFound = errors.New("not found")
	// ErrSessionNotFound is returned for unknown or expired chat sessions.
	ErrSessionNotFound = errors.New("session not found")
)

// ConfigError reports a missing provider credential. It is never retried.
type ConfigError struct {
	Service string // human readable, e.g. "Weather API"
	EnvVar  string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s key not configured", e.Service)
}

// Detail is the hint surfaced in the "details" field of error bodies.
func (e *ConfigError) Detail() string {
	return fmt.Sprintf("Please set %s in your environment variables", e.EnvVar)
}

// UpstreamError is a non-2xx or unusable response from a proxied provider.
type UpstreamError struct {
	Service string
	Status  int
	Message string
	Body    []byte
	Err     error
}

func (e *UpstreamError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Status > 0 {
		return fmt.Sprintf("%s returned HTTP %d: %s", e.Service, e.Status, msg)
	}
	return fmt.Sprintf("%s request failed: %s", e.Service, msg)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func (e *UpstreamError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// ParseError reports an upstream payload that is missing expected fields.
type ParseError struct {
	Service string
	Field   string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s response malformed (%s): %v", e.Service, e.Field, e.Err)
	}
	return fmt.Sprintf("%s response missing %s", e.Service, e.Field)
}

func (e *ParseError) Unwrap() error { return e.Err }

// HTTPStatus maps an error onto the status code returned to API clients.
func HTTPStatus(err error) int {
	var upstream *UpstreamError
	if errors.As(err, &upstream) && upstream.Status >= 400 && upstream.Status < 600 {
		return upstream.Status
	}
	return http.StatusInternalServerError
}

// Details extracts the most useful human readable detail from err.
func Details(err error) string {
	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) {
		return cfgErr.Detail()
	}
	var upstream *UpstreamError
	if errors.As(err, &upstream) && upstream.Message != "" {
		return upstream.Message
	}
	return err.Error()
}

// IsConfig reports whether err is a ConfigError.
func IsConfig(err error) bool {
	var cfgErr *ConfigError
	return errors.As(err, &cfgErr)
}
