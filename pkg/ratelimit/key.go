package ratelimit

import (
	"hash/fnv"
	"net/http"
	"strconv"
	"strings"

	"github.com/aulakit/aulakit/pkg/clientip"
)

// maxKeyLength bounds stored key length; longer composites are hashed.
const maxKeyLength = 64

// KeyFunc extracts a rate limit key from a request.
type KeyFunc func(r *http.Request) string

// ByIP keys requests on the client IP.
func ByIP() KeyFunc {
	return func(r *http.Request) string {
		return clientip.GetIP(r)
	}
}

// ByHeader keys requests on a header value, empty when absent.
func ByHeader(name string) KeyFunc {
	return func(r *http.Request) string {
		return r.Header.Get(name)
	}
}

// ByPath keys requests on the request path, separating quotas per endpoint.
func ByPath() KeyFunc {
	return func(r *http.Request) string {
		return r.URL.Path
	}
}

// Composite joins several key functions. Empty parts are skipped; keys
// longer than 64 bytes are FNV-1a hashed to keep store keys compact.
func Composite(keyFuncs ...KeyFunc) KeyFunc {
	return func(r *http.Request) string {
		parts := make([]string, 0, len(keyFuncs))
		for _, fn := range keyFuncs {
			if key := fn(r); key != "" {
				parts = append(parts, key)
			}
		}

		if len(parts) == 0 {
			return ""
		}

		combined := strings.Join(parts, ":")
		if len(combined) <= maxKeyLength {
			return combined
		}

		h := fnv.New64a()
		h.Write([]byte(combined))
		return strconv.FormatUint(h.Sum64(), 36)
	}
}
