package llm

import (
	"context"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"

	"github.com/jingkaihe/recipe-agent/pkg/logger"
)

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusRequestTimeout ||
			apiErr.HTTPStatusCode == http.StatusTooManyRequests ||
			apiErr.HTTPStatusCode >= http.StatusInternalServerError
	}

	var reqErr *openai.RequestError
	return errors.As(err, &reqErr)
}

func (b *Backend) withRetry(ctx context.Context, operation string, fn func() error) error {
	cfg := b.config.Retry
	attempts := cfg.Attempts
	if attempts < 1 {
		attempts = 1
	}

	delayType := retry.BackOffDelay
	if cfg.BackoffType == "fixed" {
		delayType = retry.FixedDelay
	}

	err := retry.Do(
		fn,
		retry.RetryIf(isRetryableError),
		retry.Attempts(uint(attempts)),
		retry.Delay(time.Duration(cfg.InitialDelay)*time.Millisecond),
		retry.MaxDelay(time.Duration(cfg.MaxDelay)*time.Millisecond),
		retry.DelayType(delayType),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			logger.G(ctx).
				WithError(err).
				WithField("operation", operation).
				WithField("attempt", n+1).
				WithField("max_attempts", attempts).
				Warn("retrying backend call")
		}),
	)
	if err != nil {
		return errors.Wrapf(err, "%s request failed", operation)
	}
	return nil
}
