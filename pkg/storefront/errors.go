package storefront

import (
	"errors"
	"fmt"
)

// APIError is a non-2xx (or Success:false) reply from the backend.
type APIError struct {
	status   int
	endpoint string
	Message  string
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("storefront %s: status %d: %s", e.endpoint, e.status, e.Message)
}

// StatusCode returns the HTTP status the backend answered with.
func (e *APIError) StatusCode() int {
	if e == nil {
		return 0
	}
	return e.status
}

// Endpoint names the logical backend operation that failed.
func (e *APIError) Endpoint() string {
	if e == nil {
		return ""
	}
	return e.endpoint
}

// AsAPIError extracts the backend rejection from an error chain.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
