package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/CAMGREEN637/gift-ai-backend/internal/api"
)

// AdminKeyAuth guards admin routes with a shared API key carried in the
// X-API-Key header. An empty configured key disables the check entirely,
// which is the development-mode default.
func AdminKeyAuth(adminKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if adminKey == "" {
				next.ServeHTTP(w, r)
				return
			}

			provided := r.Header.Get("X-API-Key")
			if provided == "" {
				api.Error(w, http.StatusUnauthorized, "missing api key")
				return
			}

			if subtle.ConstantTimeCompare([]byte(provided), []byte(adminKey)) != 1 {
				api.Error(w, http.StatusUnauthorized, "invalid api key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
