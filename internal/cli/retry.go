package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/pfrederiksen/acta-lineup/internal/lineup"
	"github.com/pfrederiksen/acta-lineup/internal/logger"
	"github.com/pfrederiksen/acta-lineup/internal/scraper"
	"github.com/pfrederiksen/acta-lineup/internal/server"
)

const (
	initialRetryInterval = 500 * time.Millisecond
	maxRetryInterval     = 5 * time.Second
)

type retryConfig struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

func defaultRetryConfig() retryConfig {
	return retryConfig{
		InitialInterval: initialRetryInterval,
		MaxInterval:     maxRetryInterval,
	}
}

// retryable reports whether a fetch failure may succeed on a later attempt:
// transport errors, timeouts, 429 and 5xx responses.
func retryable(err error) bool {
	var fe *scraper.FetchError
	if !errors.As(err, &fe) {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	return fe.StatusCode == 0 ||
		fe.StatusCode == http.StatusTooManyRequests ||
		fe.StatusCode >= http.StatusInternalServerError
}

// fetchWithRetry fetches a roster, retrying transient failures with
// exponential backoff. The last fetch error is returned unchanged.
func fetchWithRetry(ctx context.Context, src server.RosterSource, url string, cfg retryConfig, log *logger.Logger) (*lineup.Roster, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = cfg.InitialInterval
	b.MaxInterval = cfg.MaxInterval

	bo := backoff.WithContext(backoff.WithMaxRetries(b, cfg.MaxRetries), ctx)

	var (
		roster  *lineup.Roster
		lastErr error
	)
	attempt := 0
	op := func() error {
		attempt++
		r, err := src.FetchRoster(ctx, url)
		if err == nil {
			roster = r
			return nil
		}
		lastErr = err
		if !retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		log.Warn("fetch failed, retrying", logger.Fields{
			"url":     url,
			"attempt": attempt,
			"wait_ms": wait.Milliseconds(),
			"error":   err.Error(),
		})
	}

	if err := backoff.RetryNotify(op, bo, notify); err != nil {
		if lastErr != nil {
			return nil, lastErr
		}
		return nil, err
	}
	return roster, nil
}
