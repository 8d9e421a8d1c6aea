// Package retry provides retry logic with exponential backoff and jitter.
//
// Basic Usage:
//
//	err := retry.Do(ctx, retry.DefaultConfig(), func(ctx context.Context) error {
//	    return store.Insert(ctx, row)
//	})
//
// Custom Retry Logic:
//
//	cfg := retry.DefaultConfig()
//	cfg.MaxAttempts = 5
//	err := retry.DoWithRetryable(ctx, cfg, fn, isBusy)
//
// Exhausted attempts are reported as *RetriesExceededError, which unwraps to
// the last error returned by fn. Non-retryable errors are returned unchanged.
package retry
