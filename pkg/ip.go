package pkg

import (
	"net/http"
	"strings"
)

// ClientKeyUnknown is used when a request carries no usable client address.
const ClientKeyUnknown = "unknown"

// ClientKey derives the identifier used for login rate limiting.
// Header precedence: X-Forwarded-For (first hop), then X-Real-Ip,
// then the literal "unknown".
func ClientKey(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		// the first entry is the originating client
		if i := strings.Index(fwd, ","); i >= 0 {
			fwd = fwd[:i]
		}
		return strings.TrimSpace(fwd)
	}
	if realIp := r.Header.Get("X-Real-Ip"); realIp != "" {
		return realIp
	}
	return ClientKeyUnknown
}
