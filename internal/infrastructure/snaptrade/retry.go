package snaptrade

import (
	"fmt"
	"net/http"
	"time"
)

// Doer executes a single HTTP request. Satisfied by *http.Client.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RetryConfig bounds the retry loop for transport-level failures.
type RetryConfig struct {
	MaxRetries   int           // retries beyond the first attempt
	InitialDelay time.Duration // delay before the first retry; doubles per retry
}

// DefaultRetryConfig matches the production retry budget: 4 total attempts
// with 1s, 2s, 4s between them.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:   3,
		InitialDelay: 1 * time.Second,
	}
}

// RetryingDoer retries transport-level failures with exponential backoff.
// Any HTTP response, 2xx or not, is returned as-is on the attempt that
// produced it: a non-2xx reply is an answer from the service, not a
// transport failure, and is never retried.
type RetryingDoer struct {
	doer  Doer
	cfg   RetryConfig
	sleep func(time.Duration)
}

func NewRetryingDoer(doer Doer, cfg RetryConfig) *RetryingDoer {
	return &RetryingDoer{
		doer:  doer,
		cfg:   cfg,
		sleep: time.Sleep,
	}
}

func (d *RetryingDoer) Do(req *http.Request) (*http.Response, error) {
	var lastErr error
	delay := d.cfg.InitialDelay

	for attempt := 0; attempt <= d.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			// Requests built with a byte reader carry GetBody; rewind it so
			// the retried attempt sends the full payload again.
			if req.GetBody != nil {
				body, err := req.GetBody()
				if err != nil {
					return nil, fmt.Errorf("failed to rewind request body: %w", err)
				}
				req.Body = body
			}
			d.sleep(delay)
			delay *= 2
		}

		resp, err := d.doer.Do(req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w", d.cfg.MaxRetries+1, lastErr)
}
