package httpclient

import "context"

// Response is the part of an HTTP response the ergast client and enricher read.
type Response interface {
	Body() []byte
	StatusCode() int
}

// Client issues GET requests. Tests substitute stubs for it.
type Client interface {
	Get(ctx context.Context, url string, headers map[string]string) (Response, error)
}
