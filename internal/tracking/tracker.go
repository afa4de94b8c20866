package tracking

import (
	"context"
	"strings"
)

// HeaderSource is the narrow request surface the tracker consumes, decoupling
// it from any particular HTTP framework. http.Header satisfies it.
type HeaderSource interface {
	Get(name string) string
}

// RequestMeta is the coarse metadata derived from an incoming request.
type RequestMeta struct {
	IPAddress string
	Device    string
	Location  string
}

// UnknownMeta is the fallback triple used when a request cannot be inspected.
var UnknownMeta = RequestMeta{
	IPAddress: LocationUnknown,
	Device:    LocationUnknown,
	Location:  LocationUnknown,
}

// ipHeaders in priority order.
var ipHeaders = []string{"x-forwarded-for", "x-real-ip", "cf-connecting-ip"}

// Tracker derives request metadata best-effort; it never fails the caller.
type Tracker struct {
	geo *LocationClient
}

// NewTracker builds a Tracker over the given location client. A nil client
// resolves every non-local address to "Unknown".
func NewTracker(geo *LocationClient) *Tracker {
	return &Tracker{geo: geo}
}

// TrackRequest extracts the client IP and user agent from headers, classifies
// the device, and resolves the location.
func (t *Tracker) TrackRequest(ctx context.Context, headers HeaderSource) RequestMeta {
	if headers == nil {
		return UnknownMeta
	}

	ip := clientIP(headers)

	userAgent := headers.Get("user-agent")
	if userAgent == "" {
		userAgent = LocationUnknown
	}

	return RequestMeta{
		IPAddress: ip,
		Device:    ClassifyDevice(userAgent),
		Location:  t.geo.Locate(ctx, ip),
	}
}

func clientIP(headers HeaderSource) string {
	for _, name := range ipHeaders {
		if value := headers.Get(name); value != "" {
			// x-forwarded-for may carry a proxy chain; the client is first.
			if comma := strings.Index(value, ","); comma != -1 {
				value = value[:comma]
			}
			return strings.TrimSpace(value)
		}
	}
	return "127.0.0.1"
}
