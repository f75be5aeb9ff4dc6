package clientip

import (
	"net"
	"net/http"
	"strings"
)

// GetIP returns the client's IP address for a request.
// Order: X-Forwarded-For (first valid hop), X-Real-IP, then RemoteAddr.
// Returns an empty string when nothing parses as an IP.
func GetIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		for hop := range strings.SplitSeq(forwarded, ",") {
			if ip := parseIP(strings.TrimSpace(hop)); ip != "" {
				return ip
			}
		}
	}

	if ip := parseIP(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr may already be a bare IP in tests and odd transports.
		return parseIP(r.RemoteAddr)
	}
	return parseIP(host)
}

// parseIP validates and canonicalizes an IP string, "" when invalid.
func parseIP(s string) string {
	if s == "" {
		return ""
	}
	ip := net.ParseIP(strings.Trim(s, "[]"))
	if ip == nil {
		return ""
	}
	return ip.String()
}
