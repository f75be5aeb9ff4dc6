// Package clientip extracts the originating client IP from an HTTP request,
// preferring proxy headers over the socket address. Used for rate-limit
// keying, where a stable per-client identifier matters more than perfect
// spoofing resistance (the limiter fails open on unknown clients anyway).
package clientip
