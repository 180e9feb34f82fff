package common

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP resolves the originating client address. The service sits behind
// a reverse proxy in production, so forwarding headers win over RemoteAddr;
// only the first hop of X-Forwarded-For is trusted.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	for _, header := range []string{"X-Forwarded-For", "X-Real-IP"} {
		value := strings.TrimSpace(r.Header.Get(header))
		if value == "" {
			continue
		}
		if first, _, found := strings.Cut(value, ","); found {
			value = strings.TrimSpace(first)
		}
		if value != "" {
			return value
		}
	}
	if host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr)); err == nil {
		return host
	}
	return strings.TrimSpace(r.RemoteAddr)
}
