package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"
)

const (
	MaxBodySize = 5 << 20 // 5 MiB

	defaultBackoff = time.Second
)

var ErrBodyTooLarge = errors.New("feed body exceeds size limit")

// StatusError is returned for any non-200 response.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP error: %d %s", e.Code, http.StatusText(e.Code))
}

func (e *StatusError) transient() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= http.StatusInternalServerError
}

type Fetcher struct {
	httpClient *http.Client
	parser     *Parser
	userAgent  string
	timeout    time.Duration
	retries    uint64
	backoff    time.Duration
}

func NewFetcher(httpClient *http.Client, parser *Parser, userAgent string, timeout time.Duration, retries int) *Fetcher {
	return &Fetcher{
		httpClient: httpClient,
		parser:     parser,
		userAgent:  userAgent,
		timeout:    timeout,
		retries:    uint64(max(retries, 0)),
		backoff:    defaultBackoff,
	}
}

// Fetch retrieves and normalizes a feed. Every failure is a *FetchError.
func (f *Fetcher) Fetch(ctx context.Context, feedURL string) (*Result, error) {
	var data []byte

	backoff := retry.WithMaxRetries(f.retries, retry.NewExponential(f.backoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		body, err := f.fetchOnce(ctx, feedURL)
		if err != nil {
			return err
		}
		data = body
		return nil
	})
	if err != nil {
		return nil, &FetchError{URL: feedURL, Err: err}
	}

	result, err := f.parser.Run(data)
	if err != nil {
		return nil, &FetchError{URL: feedURL, Err: err}
	}

	return result, nil
}

// fetchOnce performs a single bounded attempt. Transient failures are marked retryable.
func (f *Fetcher) fetchOnce(ctx context.Context, url string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml;q=0.9, */*;q=0.8")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, retry.RetryableError(fmt.Errorf("failed to fetch feed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		statusErr := &StatusError{Code: resp.StatusCode}
		if statusErr.transient() {
			return nil, retry.RetryableError(statusErr)
		}
		return nil, statusErr
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize+1))
	if err != nil {
		return nil, retry.RetryableError(fmt.Errorf("failed to read response body: %w", err))
	}
	if len(data) > MaxBodySize {
		return nil, ErrBodyTooLarge
	}

	return data, nil
}
