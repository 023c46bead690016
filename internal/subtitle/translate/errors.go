package translate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

var (
	// ErrUpstream is matched by every failure caused by the translation provider
	ErrUpstream = errors.New("translation provider failure")
	// ErrCountMismatch means the provider answered with the wrong number of texts
	ErrCountMismatch = errors.New("translation count mismatch")
	// ErrUnknownEngine is returned by the registry for unregistered engine names
	ErrUnknownEngine = errors.New("unknown translation engine")
	// ErrNotConfigured is returned by engines constructed without a credential
	ErrNotConfigured = errors.New("translation engine not configured")
)

const maxErrorBody = 512

// ProviderError is a failed call to a translation provider
type ProviderError struct {
	Engine     string
	StatusCode int
	Body       string
	RetryAfter time.Duration
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s API error (status %d): %s", e.Engine, e.StatusCode, e.Body)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s API request: %v", e.Engine, e.Err)
	}
	return e.Engine + " API request failed"
}

func (e *ProviderError) Unwrap() error { return e.Err }

func (e *ProviderError) Is(target error) bool { return target == ErrUpstream }

// Transient reports whether the call is worth retrying
func (e *ProviderError) Transient() bool {
	if e.StatusCode == 0 {
		return e.Err != nil && !errors.Is(e.Err, context.Canceled) && !errors.Is(e.Err, context.DeadlineExceeded)
	}
	switch e.StatusCode {
	case http.StatusRequestTimeout, http.StatusTooEarly, http.StatusTooManyRequests:
		return true
	}
	return e.StatusCode >= 500
}

// IsUpstream reports whether err was caused by the translation provider
func IsUpstream(err error) bool {
	return errors.Is(err, ErrUpstream) || errors.Is(err, ErrCountMismatch)
}

func isTransientError(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Transient()
	}
	return false
}

// Redact replaces every non-empty secret in msg
func Redact(msg string, secrets ...string) string {
	for _, s := range secrets {
		s = strings.TrimSpace(s)
		if len(s) < 4 {
			continue
		}
		msg = strings.ReplaceAll(msg, s, "[redacted]")
	}
	return msg
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorBody {
		s = s[:maxErrorBody] + "..."
	}
	return s
}
