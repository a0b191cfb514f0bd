package v1

import (
	"fmt"
	"io"
	"net/http"
)

// Request wraps http.Request to simplify usage.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   string
}

// Response wraps http.Response (or fault response definition).
type Response struct {
	StatusCode int
	Body       string
	Header     map[string]string
}

// NewRequestWrapper creates a wrapper from http.Request.
func NewRequestWrapper(r *http.Request) Request {
	bodyBytes, _ := io.ReadAll(r.Body)
	return Request{
		Method: r.Method,
		URL:    r.URL.String(),
		Header: r.Header,
		Body:   string(bodyBytes),
	}
}

// NewResponse Helper to create a response for fault handlers.
func NewResponse(code int, body string) Response {
	return Response{
		StatusCode: code,
		Body:       body,
		Header:     make(map[string]string),
	}
}

// Err converts a server-side failure response into an error carrying the
// response body, so an engine's refusal ("Out of space in CodeCache",
// "OOM command not allowed") can flow through the tolerance filter.
// Responses below 500 yield nil.
func (r Response) Err() error {
	if r.StatusCode < 500 {
		return nil
	}
	return fmt.Errorf("server failure %d: %s", r.StatusCode, r.Body)
}
