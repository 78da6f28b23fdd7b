package ratelimit

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP resolves the client identity for rate limiting: the first hop of
// X-Forwarded-For, then X-Real-IP, then the transport-level peer address.
// Signals are never combined or hashed.
func ClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}

	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return strings.TrimSpace(realIP)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
