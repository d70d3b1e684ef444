package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

// TransportError is the terminal failure of a fetch after retry exhaustion.
type TransportError struct {
	URL    string
	Status int // 0 when the failure was a network/timeout error
	Err    error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetch %s: status %d", e.URL, e.Status)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Client fetches raw HTML with a fixed retry contract: 3 attempts total,
// a flat 1 second gap between attempts, 10 seconds per attempt. Any non-2xx
// status or network error counts as a failed attempt. This is deliberately
// not exponential backoff.
type Client struct {
	http *resty.Client
}

func NewClient() *Client {
	c := resty.New()
	c.SetTimeout(10 * time.Second)
	c.SetHeader("user-agent", userAgent)
	c.SetRetryCount(2) // retries after the first attempt, 3 attempts total
	c.SetRetryWaitTime(time.Second)
	// resty doubles the wait per retry by default; pinning the max keeps
	// the gap flat at 1s.
	c.SetRetryMaxWaitTime(time.Second)
	c.AddRetryCondition(func(r *resty.Response, err error) bool {
		if err != nil {
			return true
		}
		return r.StatusCode() < 200 || r.StatusCode() > 299
	})
	return &Client{http: c}
}

// FetchHTML returns the body of url, or a *TransportError once all attempts
// are exhausted.
func (c *Client) FetchHTML(ctx context.Context, url string) (string, error) {
	res, err := c.http.R().SetContext(ctx).Get(url)
	if err != nil {
		return "", &TransportError{URL: url, Err: err}
	}
	if res.StatusCode() < 200 || res.StatusCode() > 299 {
		return "", &TransportError{URL: url, Status: res.StatusCode()}
	}
	return res.String(), nil
}
