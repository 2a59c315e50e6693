package llm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
)

var (
	// ErrTimeout is returned when the request did not complete within the
	// configured timeout.
	ErrTimeout = errors.New("request timed out")
	// ErrMissingAPIKey is returned when no key is configured for a provider.
	ErrMissingAPIKey = errors.New("api key not configured")
	// ErrUnknownProvider is returned for vendor names outside Providers.
	ErrUnknownProvider = errors.New("unknown provider")
)

// ProviderError is a non-2xx answer from the vendor.
type ProviderError struct {
	Provider   Provider
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s api error: %d - %s", e.Provider.DisplayName(), e.StatusCode, e.Body)
}

// ParseError is a 2xx response whose body could not be interpreted.
type ParseError struct {
	Provider Provider
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s response: %v", e.Provider.DisplayName(), e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IsTimeout reports whether err is a timeout.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// post sends one JSON POST and returns the body of a 2xx response. It does not
// retry.
func (c *completerConfig) post(ctx context.Context, url string, header http.Header, body []byte) ([]byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, transportError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ProviderError{Provider: c.provider, StatusCode: resp.StatusCode, Body: string(data)}
	}
	return data, nil
}

func transportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("do request: %w", err)
}
