package httpclient

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultTimeout bounds a single request when the caller does not pick one.
const DefaultTimeout = 15 * time.Second

// RestyClient adapts resty.Client to the httpclient.Client interface.
type RestyClient struct {
	client *resty.Client
}

// NewRestyClient creates a RestyClient whose requests give up after timeout.
func NewRestyClient(timeout time.Duration) *RestyClient {
	return &RestyClient{client: newRestyBaseClient(timeout)}
}

// NewRestyHTTPClient exposes a configured resty.Client for callers needing other verbs.
func NewRestyHTTPClient(timeout time.Duration) *resty.Client {
	return newRestyBaseClient(timeout)
}

func newRestyBaseClient(timeout time.Duration) *resty.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := resty.New()
	c.SetTimeout(timeout)
	return c
}

// Get performs a GET request and returns the fully read response.
// Non-2xx statuses are not errors here; callers inspect StatusCode.
func (r *RestyClient) Get(ctx context.Context, url string, headers map[string]string) (Response, error) {
	req := r.client.R().SetContext(ctx)
	if len(headers) > 0 {
		req.SetHeaders(headers)
	}
	resp, err := req.Get(url)
	if err != nil {
		return nil, err
	}
	return &restyResponse{resp: resp}, nil
}

type restyResponse struct {
	resp *resty.Response
}

func (r *restyResponse) Body() []byte    { return r.resp.Body() }
func (r *restyResponse) StatusCode() int { return r.resp.StatusCode() }
