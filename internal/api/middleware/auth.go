package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/vtt-translator/backend/internal/auth"
)

type contextKey string

const PrincipalKey contextKey = "principal"

// Verifier validates an Authorization header value
type Verifier interface {
	Verify(header string) (auth.Principal, error)
}

// AuthMiddleware rejects requests without a valid bearer token before the
// body is read. A nil verifier disables the check.
func AuthMiddleware(verifier Verifier, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if verifier == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := verifier.Verify(r.Header.Get("Authorization"))
			if err != nil {
				msg := auth.ErrInvalidToken.Error()
				if errors.Is(err, auth.ErrMissingToken) {
					msg = auth.ErrMissingToken.Error()
				}
				logger.Warn().
					Str("path", r.URL.Path).
					Str("remote", r.RemoteAddr).
					Str("reason", msg).
					Msg("rejected unauthorized request")
				w.Header().Set("WWW-Authenticate", `Bearer realm="vtt-translator"`)
				writeError(w, "unauthorized", msg, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), PrincipalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetPrincipal(r *http.Request) (auth.Principal, bool) {
	p, ok := r.Context().Value(PrincipalKey).(auth.Principal)
	return p, ok
}
