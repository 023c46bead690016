package translate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/vtt-translator/backend/internal/metrics"
)

const (
	defaultHTTPTimeout    = 5 * time.Minute
	defaultRetryAttempts  = 3
	defaultRetryBaseDelay = time.Second
	defaultRetryMaxDelay  = 20 * time.Second
	maxResponseBytes      = 8 << 20
)

// ClientConfig holds the settings shared by every HTTP-backed engine
type ClientConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration

	RetryAttempts  int
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration

	// Limiter throttles outbound calls; it is normally shared by all engines
	Limiter    *rate.Limiter
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

type transport struct {
	engine  string
	apiKey  string
	http    *http.Client
	limiter *rate.Limiter
	logger  zerolog.Logger

	attempts  int
	baseDelay time.Duration
	maxDelay  time.Duration
	sleep     func(ctx context.Context, d time.Duration) error
}

func newTransport(engine string, cfg ClientConfig) *transport {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	t := &transport{
		engine:    engine,
		apiKey:    strings.TrimSpace(cfg.APIKey),
		http:      cfg.HTTPClient,
		limiter:   cfg.Limiter,
		logger:    cfg.Logger.With().Str("engine", engine).Logger(),
		attempts:  cfg.RetryAttempts,
		baseDelay: cfg.RetryBaseDelay,
		maxDelay:  cfg.RetryMaxDelay,
		sleep:     sleepContext,
	}
	if t.http == nil {
		t.http = &http.Client{Timeout: timeout}
	}
	if t.attempts <= 0 {
		t.attempts = defaultRetryAttempts
	}
	if t.baseDelay <= 0 {
		t.baseDelay = defaultRetryBaseDelay
	}
	if t.maxDelay <= 0 {
		t.maxDelay = defaultRetryMaxDelay
	}
	return t
}

// do sends the request built by newReq, retrying transient failures, and
// returns the body of the first 2xx response
func (t *transport) do(ctx context.Context, newReq func(ctx context.Context) (*http.Request, error)) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= t.attempts; attempt++ {
		body, err := t.once(ctx, newReq)
		if err == nil {
			metrics.ProviderCallsTotal.WithLabelValues(t.engine, metrics.OutcomeOK).Inc()
			return body, nil
		}
		lastErr = err

		if attempt == t.attempts || !isTransientError(err) || ctx.Err() != nil {
			break
		}
		metrics.ProviderCallsTotal.WithLabelValues(t.engine, metrics.OutcomeRetry).Inc()
		delay := t.backoff(err, attempt)
		t.logger.Warn().Err(err).Int("attempt", attempt).Dur("delay", delay).Msg("provider call failed, retrying")
		if err := t.sleep(ctx, delay); err != nil {
			lastErr = err
			break
		}
	}

	metrics.ProviderCallsTotal.WithLabelValues(t.engine, metrics.OutcomeError).Inc()
	var pe *ProviderError
	if !errors.As(lastErr, &pe) {
		lastErr = &ProviderError{Engine: t.engine, Err: lastErr}
	}
	return nil, lastErr
}

func (t *transport) once(ctx context.Context, newReq func(ctx context.Context) (*http.Request, error)) ([]byte, error) {
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, &ProviderError{Engine: t.engine, Err: fmt.Errorf("rate limiter: %w", err)}
		}
	}

	req, err := newReq(ctx)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", t.engine, err)
	}

	start := time.Now()
	resp, err := t.http.Do(req)
	metrics.ProviderCallDuration.WithLabelValues(t.engine).Observe(time.Since(start).Seconds())
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, &ProviderError{Engine: t.engine, Err: ctxErr}
		}
		return nil, &ProviderError{Engine: t.engine, Err: errors.New(Redact(err.Error(), t.apiKey))}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &ProviderError{Engine: t.engine, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ProviderError{
			Engine:     t.engine,
			StatusCode: resp.StatusCode,
			Body:       Redact(snippet(body), t.apiKey),
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}
	return body, nil
}

func (t *transport) backoff(err error, attempt int) time.Duration {
	var pe *ProviderError
	if errors.As(err, &pe) && pe.RetryAfter > 0 {
		if pe.RetryAfter > t.maxDelay {
			return t.maxDelay
		}
		return pe.RetryAfter
	}
	delay := t.baseDelay << (attempt - 1)
	if delay <= 0 || delay > t.maxDelay {
		delay = t.maxDelay
	}
	return delay
}

func parseRetryAfter(value string) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(value); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
