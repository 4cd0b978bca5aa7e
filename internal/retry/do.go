package retry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/docserve/internal/foundation/errors"
	"git.home.luguber.info/inful/docserve/internal/logfields"
)

// Do runs fn under the policy, sleeping between attempts according to
// Delay. MaxRetries <= 0 means a single attempt. Classified errors marked
// non-retryable stop the loop at once, as does context cancellation.
func Do(ctx context.Context, pol Policy, op string, fn func(context.Context) error) error {
	if pol.MaxRetries <= 0 {
		return fn(ctx)
	}
	var lastErr error
	for attempt := 0; attempt <= pol.MaxRetries; attempt++ {
		if attempt > 0 {
			slog.Warn("retrying operation", slog.String("operation", op), logfields.Attempt(attempt))
		}
		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err
		if classified, ok := errors.AsClassified(err); ok && !classified.CanRetry() {
			return err
		}
		if attempt == pol.MaxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pol.Delay(attempt + 1)):
		}
	}
	return fmt.Errorf("%s failed after retries: %w", op, lastErr)
}
