/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package ghclient

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/chainguard-dev/clog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/time/rate"
)

// GitHub rate limit header names, in Go canonical form even though the docs
// list them lowercase.
// https://docs.github.com/en/rest/using-the-rest-api/rate-limits-for-the-rest-api#checking-the-status-of-your-rate-limit
const (
	headerRetryAfter          = "Retry-After"
	headerXRateLimitReset     = "X-Ratelimit-Reset"
	headerXRateLimitRemaining = "X-Ratelimit-Remaining"
)

var rateLimitPauses = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "github_rate_limit_pauses_total",
	Help: "Times GitHub signaled a rate limit and requests were paused, by reason.",
}, []string{"status_code", "reason"})

// rateLimitTransport throttles GitHub API requests. When GitHub answers 403
// or 429 it pauses all requests through this transport for the duration the
// response headers ask for, then retries.
// https://docs.github.com/en/rest/using-the-rest-api/rate-limits-for-the-rest-api#exceeding-the-rate-limit
type rateLimitTransport struct {
	base              http.RoundTripper
	limiter           *pausableLimiter
	defaultRetryAfter time.Duration
}

// NewRateLimitTransport wraps a transport with GitHub rate limit handling.
// defaultRetryAfter is the pause applied when a rate limit response carries
// no usable headers; zero means one minute.
func NewRateLimitTransport(base http.RoundTripper, defaultRetryAfter time.Duration) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	if defaultRetryAfter == 0 {
		defaultRetryAfter = time.Minute
	}
	return &rateLimitTransport{
		base: base,
		limiter: &pausableLimiter{
			base: rate.NewLimiter(rate.Inf, 100),
		},
		defaultRetryAfter: defaultRetryAfter,
	}
}

func (t *rateLimitTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return resp, err
	}

	if t.pauseIfLimited(ctx, resp) {
		return t.RoundTrip(req)
	}
	return resp, nil
}

// pauseIfLimited inspects a response for rate limit signals and pauses the
// limiter accordingly. Returns true when the request should be retried.
func (t *rateLimitTransport) pauseIfLimited(ctx context.Context, resp *http.Response) bool {
	log := clog.FromContext(ctx)

	if resp.StatusCode != http.StatusForbidden &&
		resp.StatusCode != http.StatusTooManyRequests {
		return false
	}

	var (
		retryAfter time.Duration
		reset      time.Time
		remaining  int
	)

	if v := resp.Header.Get(headerRetryAfter); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			log.Warnf("failed to parse retry-after header: %v", err)
		} else {
			retryAfter = time.Duration(seconds) * time.Second
		}
	}
	if v := resp.Header.Get(headerXRateLimitRemaining); v != "" {
		r, err := strconv.Atoi(v)
		if err != nil {
			log.Warnf("failed to parse x-ratelimit-remaining header: %v", err)
		} else {
			remaining = r
		}
	}
	if v := resp.Header.Get(headerXRateLimitReset); v != "" {
		seconds, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			log.Warnf("failed to parse x-ratelimit-reset header: %v", err)
		} else {
			reset = time.Unix(seconds, 0)
		}
	}

	statusCode := strconv.Itoa(resp.StatusCode)

	if retryAfter > 0 {
		rateLimitPauses.WithLabelValues(statusCode, "retry_after").Inc()
		log.With("retry_after", retryAfter).Warn("GitHub rate limit hit, pausing requests")
		t.limiter.PauseFor(retryAfter)
		return true
	}

	if remaining == 0 && !reset.IsZero() {
		retryAfter = time.Until(reset)
		if retryAfter > 0 {
			rateLimitPauses.WithLabelValues(statusCode, "remaining_zero").Inc()
			log.With("reset_at", reset, "retry_after", retryAfter).Warn("GitHub rate limit exhausted, pausing until reset")
			t.limiter.PauseFor(retryAfter)
			return true
		}
	}

	rateLimitPauses.WithLabelValues(statusCode, "no_headers").Inc()
	log.With("retry_after", t.defaultRetryAfter).Warn("GitHub rate limit hit without headers, using default pause")
	t.limiter.PauseFor(t.defaultRetryAfter)
	return true
}

// pausableLimiter is a rate limiter that can additionally block every caller
// for a fixed window.
type pausableLimiter struct {
	base       *rate.Limiter
	mu         sync.Mutex
	pauseUntil time.Time
	pauseCh    chan struct{}
}

func (l *pausableLimiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	pauseCh := l.pauseCh
	l.mu.Unlock()

	if pauseCh != nil {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-pauseCh:
		}
	}

	return l.base.Wait(ctx)
}

// PauseFor blocks all requests for d. An active shorter pause is extended;
// a longer one is left in place.
func (l *pausableLimiter) PauseFor(d time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	until := time.Now().Add(d)

	if !until.After(l.pauseUntil) {
		return
	}
	l.pauseUntil = until

	if l.pauseCh != nil {
		close(l.pauseCh)
	}
	l.pauseCh = make(chan struct{})

	go func(ch chan struct{}) {
		timer := time.NewTimer(d)
		defer timer.Stop()

		<-timer.C
		l.mu.Lock()
		if ch == l.pauseCh {
			close(ch)
			l.pauseCh = nil
			l.pauseUntil = time.Time{}
		}
		l.mu.Unlock()
	}(l.pauseCh)
}
