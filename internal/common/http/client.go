package http

import (
	"bytes"
	"context"
	"net/http"
	"time"
)

const defaultIdleConnsPerHost = 10

// Client is a pooled HTTP client for JSON APIs.
type Client struct {
	httpClient *http.Client
}

// NewClient returns a client whose per-request timeout is timeout and whose
// idle pool keeps up to idleConnsPerHost connections per host, so a batch of
// concurrent calls to one endpoint can reuse connections.
func NewClient(timeout time.Duration, idleConnsPerHost int) *Client {
	if idleConnsPerHost <= 0 {
		idleConnsPerHost = defaultIdleConnsPerHost
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConns = idleConnsPerHost * 2
	transport.MaxIdleConnsPerHost = idleConnsPerHost
	transport.IdleConnTimeout = 90 * time.Second

	return &Client{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.httpClient.Do(req)
}

// PostJSON posts body with a JSON content type plus the given headers.
func (c *Client) PostJSON(ctx context.Context, url string, body []byte, headers map[string]string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return c.httpClient.Do(req)
}
