package env

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/reliverse/reliverse/pkg/version"
)

// ExampleFetcher retrieves .env.example content from a remote source.
type ExampleFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPFetcher fetches example files over HTTP with retries.
type HTTPFetcher struct {
	client *resty.Client
}

// NewHTTPFetcher returns an HTTPFetcher with the given request timeout.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", version.UserAgent()).
		SetRetryCount(2).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second)
	client.AddRetryCondition(retryCondition)
	return &HTTPFetcher{client: client}
}

// retryCondition retries network errors and transient server responses.
func retryCondition(r *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	if r == nil {
		return false
	}
	code := r.StatusCode()
	return code >= 500 || code == 429 || code == 408
}

// Fetch downloads url and returns the body. Non-2xx responses and empty
// bodies are errors wrapping ErrFetch.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	resp, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFetch, url, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: %s: status %d", ErrFetch, url, resp.StatusCode())
	}
	body := resp.Body()
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: %s: empty body", ErrFetch, url)
	}
	return body, nil
}
