package gitlab

import (
	"errors"
	"fmt"
)

// Fetch error kinds. A transport failure and an undecodable body are
// distinguished so callers can log them separately; neither is retried.
var (
	ErrNetwork = errors.New("network failure")
	ErrDecode  = errors.New("response body is not valid JSON")
)

// StatusError is returned for any non-2xx API response.
type StatusError struct {
	Status int
	URL    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("gitlab returned status %d for %s", e.Status, e.URL)
}
