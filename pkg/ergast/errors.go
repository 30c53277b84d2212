package ergast

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingKey is returned when the table or list key is absent from a response.
	ErrMissingKey = errors.New("ergast: key not found in response")
	// ErrInvalidJSON is returned when a response body is not JSON.
	ErrInvalidJSON = errors.New("ergast: response is not valid json")
)

// StatusError reports a response with a status other than 200.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("ergast: %s returned status %d body: %s", e.URL, e.StatusCode, e.Body)
}

func bodySnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}
