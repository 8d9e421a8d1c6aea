package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"
)

// Config defines retry configuration
type Config struct {
	// MaxAttempts is the maximum number of attempts (including the first one)
	MaxAttempts int
	// InitialDelay is the delay before the second attempt
	InitialDelay time.Duration
	// MaxDelay caps the delay between attempts
	MaxDelay time.Duration
	// Multiplier is the exponential backoff multiplier
	Multiplier float64
	// Jitter spreads delays by ±25% to avoid lockstep retries
	Jitter bool
	// OnRetry is called before each wait for observability
	OnRetry func(attempt int, err error, nextDelay time.Duration)
	// After creates a timer channel (for testing, defaults to time.After)
	After func(d time.Duration) <-chan time.Time
}

// DefaultConfig returns a sensible default configuration
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  3,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
		Jitter:       true,
	}
}

// Normalize validates and normalizes the configuration
func (c *Config) Normalize() error {
	if c.MaxAttempts <= 0 {
		return errors.New("retry: MaxAttempts must be positive")
	}
	if c.InitialDelay <= 0 {
		return errors.New("retry: InitialDelay must be positive")
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = 30 * time.Second
	}
	if c.InitialDelay > c.MaxDelay {
		return errors.New("retry: InitialDelay cannot be greater than MaxDelay")
	}
	if c.Multiplier == 0 {
		c.Multiplier = 2.0
	}
	if c.Multiplier < 1.0 {
		return errors.New("retry: Multiplier must be >= 1.0")
	}
	if c.After == nil {
		c.After = time.After
	}
	return nil
}

// RetryableFunc is a function that can be retried
type RetryableFunc func(ctx context.Context) error

// IsRetryableFunc determines if an error should trigger a retry
type IsRetryableFunc func(err error) bool

// RetriesExceededError is returned when retries are exhausted
type RetriesExceededError struct {
	LastError error
	Attempts  int
}

func (e *RetriesExceededError) Error() string {
	return fmt.Sprintf("retry: max attempts exceeded (%d attempts): %v", e.Attempts, e.LastError)
}

func (e *RetriesExceededError) Unwrap() error {
	return e.LastError
}

// Do executes fn, retrying every error except context cancellation.
func Do(ctx context.Context, config Config, fn RetryableFunc) error {
	return DoWithRetryable(ctx, config, fn, func(err error) bool {
		return !errors.Is(err, context.Canceled)
	})
}

// DoWithRetryable executes a function with retry logic and custom retryable check
func DoWithRetryable(ctx context.Context, config Config, fn RetryableFunc, isRetryable IsRetryableFunc) error {
	cfg := config
	if err := cfg.Normalize(); err != nil {
		return err
	}

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if attempt == cfg.MaxAttempts {
			break
		}
		if !isRetryable(lastErr) {
			return lastErr
		}

		delay := cfg.applyJitter(cfg.delay(attempt))
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, lastErr, delay)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-cfg.After(delay):
		}
	}

	return &RetriesExceededError{LastError: lastErr, Attempts: cfg.MaxAttempts}
}

// delay calculates the backoff for the given attempt
func (c Config) delay(attempt int) time.Duration {
	d := c.InitialDelay
	for i := 1; i < attempt; i++ {
		d = time.Duration(float64(d) * c.Multiplier)
		if d >= c.MaxDelay {
			return c.MaxDelay
		}
	}
	return d
}

func (c Config) applyJitter(d time.Duration) time.Duration {
	if !c.Jitter || d < 4 {
		return d
	}
	spread := d / 4
	d = d - spread + time.Duration(rand.Int63n(int64(2*spread)))
	if d > c.MaxDelay {
		return c.MaxDelay
	}
	return d
}
