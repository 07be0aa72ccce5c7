// Package clientip resolves the client-facing IP address of an HTTP request.
//
// Resolution precedence: X-Forwarded-For (first hop) → X-Real-IP → the
// transport-level peer address. The result feeds the rate limiter and block
// store, so a stable answer matters more than a perfectly trustworthy one;
// deployments terminating TLS at a proxy are expected to sanitize the
// forwarding headers there.
package clientip

import (
	"net"
	"net/http"
	"strings"
)

// FromRequest returns the best-effort client IP for r, or "unknown" when
// nothing usable is present.
func FromRequest(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	// RemoteAddr without a port (some test servers, unix sockets)
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}

	return "unknown"
}
