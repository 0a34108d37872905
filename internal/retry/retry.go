package retry

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Policy retries transient quota failures with a fixed backoff. The interval
// is deliberately not exponential: provider quota windows reset on a roughly
// fixed cadence, so waiting longer each time buys nothing.
type Policy struct {
	MaxAttempts int
	Backoff     time.Duration
	Logger      *slog.Logger

	// Sleep is swapped out in tests; nil means time.Sleep.
	Sleep func(time.Duration)
}

// NewPolicy applies the documented defaults: 3 attempts, 40 second backoff.
func NewPolicy(maxAttempts, backoffSeconds int, logger *slog.Logger) Policy {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	if backoffSeconds <= 0 {
		backoffSeconds = 40
	}
	return Policy{
		MaxAttempts: maxAttempts,
		Backoff:     time.Duration(backoffSeconds) * time.Second,
		Logger:      logger,
	}
}

// Invoke calls fn, retrying only rate-limit failures up to the attempt
// budget. Any other error class surfaces immediately; an exhausted budget
// surfaces the last rate-limit error.
func (p Policy) Invoke(ctx context.Context, fn func(context.Context) (string, error)) (string, error) {
	sleep := p.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		out, err := fn(ctx)
		if err == nil {
			return out, nil
		}
		if !IsRateLimit(err) {
			return "", err
		}

		lastErr = err
		if attempt == p.MaxAttempts {
			break
		}
		if p.Logger != nil {
			p.Logger.Warn("rate limit hit, backing off",
				"wait", p.Backoff, "attempt", attempt, "max_attempts", p.MaxAttempts)
		}
		sleep(p.Backoff)
	}

	return "", fmt.Errorf("rate limited after %d attempts: %w", p.MaxAttempts, lastErr)
}

// IsRateLimit recognizes the provider's quota signature by inspecting the
// error text, the one contract the summarization boundary guarantees.
func IsRateLimit(err error) bool {
	if err == nil {
		return false
	}
	text := err.Error()
	return strings.Contains(text, "429") || strings.Contains(text, "RESOURCE_EXHAUSTED")
}
