// Package poll provides the fixed-interval retry loop used by the login
// workflow's readiness checks.
package poll

import (
	"context"
	"time"
)

// Until evaluates pred up to maxAttempts times, sleeping interval between
// attempts. It returns the 1-based attempt number on the first true result,
// or 0 when attempts are exhausted or the context is canceled. Exhaustion is
// informational for callers, never fatal.
func Until(ctx context.Context, maxAttempts int, interval time.Duration, pred func() bool) int {
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if pred() {
			return attempt
		}
		if attempt == maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return 0
		case <-time.After(interval):
		}
	}
	return 0
}
