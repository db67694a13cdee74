package middleware

import (
	"context"
	"net/http"
	"strings"

	"go-armada/pkg/handlers"
)

// RequireAuth returns chi middleware that rejects requests without a
// valid token and stores the caller in the request context. Paths in
// skip are exempt (health probes, the OpenAPI document).
func (m *AuthMiddleware) RequireAuth(skip ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, s := range skip {
				if strings.HasPrefix(r.URL.Path, s) {
					next.ServeHTTP(w, r)
					return
				}
			}

			caller, err := m.ValidateAuthFromHeaders(r.Header.Get("Authorization"), r.Header.Get("Cookie"))
			if err != nil {
				handlers.UnauthorizedResponse(w)
				return
			}

			ctx := context.WithValue(r.Context(), AuthContextKeyCaller, caller)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
