package httpclient

import (
	"context"
	"net/url"
)

// Response is a minimal HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
}

// Request describes a single outbound call. Query values are always encoded into the URL,
// including on POST, so repeated keys survive. Form, when non-empty, becomes an
// application/x-www-form-urlencoded body.
type Request struct {
	Method  string
	URL     string
	Query   url.Values
	Form    url.Values
	Headers map[string]string
}

// Client abstracts HTTP calls so callers can inject mocks or different transports.
// Implementations return an error only for network-level failures; non-2xx statuses
// are reported through Response.
type Client interface {
	Do(ctx context.Context, req Request) (Response, error)
}
