package clio

import (
	"errors"
	"fmt"
	"strings"
)

// StatusError is a non-2xx response from the upstream API.
type StatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("upstream returned %d for %s: %s", e.StatusCode, e.URL, e.Body)
	}
	return fmt.Sprintf("upstream returned %d for %s", e.StatusCode, e.URL)
}

// IsAuthError reports whether the failure calls for re-authentication
// rather than a retry or sample-data fallback.
func (e *StatusError) IsAuthError() bool {
	return e.StatusCode == 401
}

// retryable statuses mean "this endpoint/parameter combination is wrong for
// this deployment, try the next one". Anything else is fatal.
func (e *StatusError) retryable() bool {
	switch e.StatusCode {
	case 400, 404, 422:
		return true
	}
	return false
}

// IsAuthError reports whether err (anywhere in its chain) is an upstream 401.
func IsAuthError(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.IsAuthError()
}

// SourceUnavailableError means every endpoint/parameter variant for a record
// kind was exhausted. Attempts enumerates what was tried so upstream schema
// drift can be diagnosed from the error alone.
type SourceUnavailableError struct {
	Kind     string
	Attempts []string
	Last     error
}

func (e *SourceUnavailableError) Error() string {
	return fmt.Sprintf("unable to fetch %s records: tried %s", e.Kind, strings.Join(e.Attempts, ", "))
}

func (e *SourceUnavailableError) Unwrap() error {
	return e.Last
}
