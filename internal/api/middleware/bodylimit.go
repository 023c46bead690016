package middleware

import (
	"fmt"
	"net/http"
)

// MaxBodySize limits the request body to maxBytes. Requests that announce a
// larger Content-Length are rejected with 413 before anything is read.
func MaxBodySize(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				writeError(w, "bad_input", fmt.Sprintf("upload exceeds %d bytes", maxBytes), http.StatusRequestEntityTooLarge)
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
