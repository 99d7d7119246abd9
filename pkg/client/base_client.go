package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type BaseClient struct {
	client         HTTPClient
	logger         *zap.Logger
	circuitBreaker *gobreaker.CircuitBreaker
	maxRetries     int
	retryDelay     time.Duration
	multiplier     float64
}

type ClientConfig struct {
	Timeout        time.Duration
	MaxRetries     int
	RetryDelay     time.Duration
	Multiplier     float64
	Threshold      int
	BreakerTimeout time.Duration
}

func NewBaseClient(name string, config ClientConfig, logger *zap.Logger) *BaseClient {
	return NewBaseClientWithHTTP(name, &http.Client{Timeout: config.Timeout}, config, logger)
}

// NewBaseClientWithHTTP lets callers supply their own transport, e.g. in tests.
func NewBaseClientWithHTTP(name string, httpClient HTTPClient, config ClientConfig, logger *zap.Logger) *BaseClient {
	threshold := uint32(config.Threshold)
	if threshold == 0 {
		threshold = 3
	}

	breakerSettings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    0,
		Timeout:     config.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= threshold && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Info("Circuit breaker state changed",
				zap.String("client", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}

	return &BaseClient{
		client:         httpClient,
		logger:         logger,
		circuitBreaker: gobreaker.NewCircuitBreaker(breakerSettings),
		maxRetries:     config.MaxRetries,
		retryDelay:     config.RetryDelay,
		multiplier:     config.Multiplier,
	}
}

// GetWithRetry returns the body of a 2xx response. Failures are *FetchError
// or *NetworkError; an open breaker is reported as a *NetworkError.
func (c *BaseClient) GetWithRetry(ctx context.Context, url string) ([]byte, error) {
	result, err := c.circuitBreaker.Execute(func() (interface{}, error) {
		return c.doGetWithRetry(ctx, url)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, &NetworkError{URL: url, Err: err}
		}
		return nil, err
	}

	return result.([]byte), nil
}

func (c *BaseClient) doGetWithRetry(ctx context.Context, url string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(float64(c.retryDelay) * math.Pow(c.multiplier, float64(attempt-1)))
			c.logger.Debug("Retrying request",
				zap.String("url", url),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay))

			select {
			case <-ctx.Done():
				return nil, &NetworkError{URL: url, Err: ctx.Err()}
			case <-time.After(delay):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request failed: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = &NetworkError{URL: url, Err: err}
			c.logger.Warn("HTTP request failed",
				zap.String("url", url),
				zap.Int("attempt", attempt),
				zap.Error(err))
			continue
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			body, err := io.ReadAll(resp.Body)
			resp.Body.Close()

			if err != nil {
				lastErr = &NetworkError{URL: url, Err: err}
				continue
			}

			c.logger.Debug("Request successful",
				zap.String("url", url),
				zap.Int("status", resp.StatusCode),
				zap.Int("body_size", len(body)))

			return body, nil
		}

		resp.Body.Close()
		lastErr = &FetchError{URL: url, StatusCode: resp.StatusCode}
		c.logger.Warn("Upstream returned error status",
			zap.String("url", url),
			zap.Int("status", resp.StatusCode),
			zap.Int("attempt", attempt))

		// Don't retry on client errors (4xx) except 429 (rate limiting)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			break
		}
	}

	return nil, lastErr
}
