package unsplash

import "fmt"

// Messages surfaced verbatim in the admin UI. Keep them user-readable.
const (
	msgRateLimited  = "The Unsplash API rate limit has been reached. Please try again later."
	msgConnectivity = "Could not reach the Unsplash API. Check your network connection."
)

// RateLimitError means a 403 arrived with X-RateLimit-Remaining exhausted.
// It overrides whatever the response body says.
type RateLimitError struct{}

func (e *RateLimitError) Error() string { return msgRateLimited }

// APIError carries the first structured error message from a JSON error body,
// e.g. {"errors": ["OAuth error: The access token is invalid"]}.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string { return e.Message }

// APITextError carries a plain-text or XML error body verbatim.
type APITextError struct {
	Code int
	Body string
}

func (e *APITextError) Error() string { return e.Body }

// StatusError is the fallback for a non-2xx response with no usable body.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string { return fmt.Sprintf("unexpected status code %d", e.Code) }

// ConnectivityError wraps a transport-level failure (no response at all).
type ConnectivityError struct {
	Err error
}

func (e *ConnectivityError) Error() string { return msgConnectivity }
func (e *ConnectivityError) Unwrap() error { return e.Err }
