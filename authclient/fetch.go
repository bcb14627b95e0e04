package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	interrors "github.com/merchantdeck/go-dashboard-auth/internal/errors"
)

// rateLimitError carries the server-supplied retry-after hint.
type rateLimitError struct {
	retryAfter time.Duration
}

func (e *rateLimitError) Error() string { return interrors.ErrRateLimited.Error() }
func (e *rateLimitError) Unwrap() error { return interrors.ErrRateLimited }

// schemaValidator is implemented by every response wire type.
type schemaValidator interface {
	Validate() error
}

// doJSON performs one logical request with the bounded retry policy: a
// small fixed number of attempts with linear backoff, a per-request
// timeout, and one delayed retry honoring Retry-After on rate limits.
// A non-2xx status with a coherent body is NOT an error here; the decoded
// body tells the caller what failed. Transport failures, 5xx responses,
// and schema-invalid bodies are errors.
func (c *Client) doJSON(ctx context.Context, method, path string, body []byte, out schemaValidator) error {
	var lastErr error
	rateLimitRetried := false

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		err := c.attempt(ctx, method, path, body, out)
		if err == nil {
			return nil
		}
		lastErr = err

		if !retryable(err) || attempt == c.maxAttempts {
			break
		}

		delay := time.Duration(attempt) * c.retryBackoff
		var rle *rateLimitError
		if interrors.As(err, &rle) {
			// Rate limits get exactly one delayed retry, whatever the
			// attempt budget for transport failures is.
			if rateLimitRetried {
				break
			}
			rateLimitRetried = true
			if rle.retryAfter > 0 {
				delay = rle.retryAfter
			}
		}

		c.logger.Warn().Err(err).Str("path", path).Int("attempt", attempt).Msg("request failed, retrying")
		if err := sleepCtx(ctx, delay); err != nil {
			return interrors.Wrapf(interrors.ErrTimeout, "[authclient] cancelled while backing off")
		}
	}

	return lastErr
}

func (c *Client) attempt(ctx context.Context, method, path string, body []byte, out schemaValidator) error {
	reqCtx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(reqCtx, method, c.baseURL+path, reader)
	if err != nil {
		return interrors.Wrapf(err, "[authclient] building %s %s", method, path)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if reqCtx.Err() == context.DeadlineExceeded {
			return interrors.Wrapf(interrors.ErrTimeout, "[authclient] %s %s", method, path)
		}
		return interrors.Wrapf(interrors.ErrConnection, "[authclient] %s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return &rateLimitError{retryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
	case resp.StatusCode >= http.StatusInternalServerError:
		return interrors.Wrapf(interrors.ErrConnection, "[authclient] %s %s: status %d", method, path, resp.StatusCode)
	}

	// 2xx and remaining 4xx carry the normalized response shape. A body
	// that fails schema validation is an invalid server response, never
	// retried and never passed through.
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return interrors.Wrapf(interrors.ErrMalformedResponse, "[authclient] %s %s: %v", method, path, err)
	}
	if err := out.Validate(); err != nil {
		return interrors.Wrapf(interrors.ErrMalformedResponse, "[authclient] %s %s: %v", method, path, err)
	}
	return nil
}

func retryable(err error) bool {
	return interrors.Is(err, interrors.ErrTimeout) ||
		interrors.Is(err, interrors.ErrConnection) ||
		interrors.Is(err, interrors.ErrRateLimited)
}

func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds >= 0 {
		return time.Duration(seconds) * time.Second
	}
	return 0
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
