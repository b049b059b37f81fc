package clients

import (
	"time"

	"resty.dev/v3"
)

type HTTPClientOptions struct {
	RetryCount       int
	RetryWaitTime    time.Duration
	RetryMaxWaitTime time.Duration
	TimeOut          time.Duration
	UserAgent        string
}

// DefaultHTTPClientOptions retries a failed delivery a few times with a
// short backoff.
func DefaultHTTPClientOptions() *HTTPClientOptions {
	return &HTTPClientOptions{
		RetryCount:       3,
		RetryWaitTime:    500 * time.Millisecond,
		RetryMaxWaitTime: 5 * time.Second,
		TimeOut:          15 * time.Second,
		UserAgent:        "taskcard/1.0",
	}
}

func newRestyClient(t *HTTPClientOptions) *resty.Client {
	return resty.New().
		SetRetryCount(t.RetryCount).
		SetRetryWaitTime(t.RetryWaitTime).
		SetRetryMaxWaitTime(t.RetryMaxWaitTime).
		SetAllowNonIdempotentRetry(true).
		SetTimeout(t.TimeOut).
		SetHeader("User-Agent", t.UserAgent)
}
