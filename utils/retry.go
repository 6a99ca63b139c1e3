package utils

import (
	"errors"
	"fmt"
	"time"
)

// RetryConfig holds the parameters for the retry strategy. The delay grows
// linearly with the attempt number (base, 2×base, 3×base, ...) which keeps
// repeated hits against rate-limited deal sites well spaced out.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Logger      *Logger

	// Sleep is swappable so tests can run without real elapsed time.
	Sleep func(time.Duration)
}

// Do executes fn with linear back-off retry logic. An error wrapped with
// Terminal aborts immediately; retrying a request a bot-wall already flagged
// only digs the hole deeper.
func (r *RetryConfig) Do(operationName string, fn func() error) error {
	sleep := r.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	var lastErr error
	for attempt := 1; attempt <= r.MaxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if IsTerminal(lastErr) {
			return lastErr
		}

		if attempt < r.MaxAttempts {
			delay := r.BaseDelay * time.Duration(attempt)
			r.Logger.Warn("[retry] %s failed (attempt %d/%d): %v — retrying in %v",
				operationName, attempt, r.MaxAttempts, lastErr, delay)
			sleep(delay)
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, r.MaxAttempts, lastErr)
}

// Terminal marks err as not worth retrying. Do returns it unchanged on the
// attempt that produced it.
func Terminal(err error) error {
	return terminalError{err: err}
}

// IsTerminal reports whether err carries the Terminal marker.
func IsTerminal(err error) bool {
	var t terminalError
	return errors.As(err, &t)
}

type terminalError struct {
	err error
}

func (t terminalError) Error() string { return t.err.Error() }

func (t terminalError) Unwrap() error { return t.err }
