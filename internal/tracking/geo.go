package tracking

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/lukewarren/accountd/pkg/logger"
	"github.com/lukewarren/accountd/pkg/metrics"
)

// DefaultGeoTimeout bounds each geolocation lookup.
const DefaultGeoTimeout = 2 * time.Second

// Labels returned when no lookup happens or a lookup cannot resolve.
const (
	LocationLocal   = "Local"
	LocationUnknown = "Unknown"
)

// LocationClient resolves IP addresses to coarse location labels through an
// ipinfo-style JSON endpoint. Lookups degrade gracefully: any failure yields
// "Unknown", never an error.
type LocationClient struct {
	baseURL string
	client  *http.Client
	log     *zap.Logger
}

// NewLocationClient builds a LocationClient. An empty baseURL disables
// network lookups entirely.
func NewLocationClient(baseURL string, timeout time.Duration) *LocationClient {
	if timeout <= 0 {
		timeout = DefaultGeoTimeout
	}
	return &LocationClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   timeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:        100,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: timeout,
			},
		},
		log: logger.WithModule("tracking"),
	}
}

type geoResponse struct {
	City   string `json:"city"`
	Region string `json:"region"`
}

// Locate returns a location label for the given IP. Loopback and empty
// addresses resolve to "Local" without any network call.
func (c *LocationClient) Locate(ctx context.Context, ip string) string {
	if isLocalAddress(ip) {
		metrics.GeoLookups.WithLabelValues("local").Inc()
		return LocationLocal
	}
	if c == nil || c.baseURL == "" {
		metrics.GeoLookups.WithLabelValues("miss").Inc()
		return LocationUnknown
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/%s/json", c.baseURL, ip), nil)
	if err != nil {
		metrics.GeoLookups.WithLabelValues("error").Inc()
		return LocationUnknown
	}

	res, err := c.client.Do(req)
	if err != nil {
		c.log.Debug("geolocation lookup failed", zap.String("ip", ip), zap.Error(err))
		metrics.GeoLookups.WithLabelValues("error").Inc()
		return LocationUnknown
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		metrics.GeoLookups.WithLabelValues("error").Inc()
		return LocationUnknown
	}

	var body geoResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		metrics.GeoLookups.WithLabelValues("error").Inc()
		return LocationUnknown
	}

	switch {
	case body.City != "":
		metrics.GeoLookups.WithLabelValues("hit").Inc()
		return body.City
	case body.Region != "":
		metrics.GeoLookups.WithLabelValues("hit").Inc()
		return body.Region
	default:
		metrics.GeoLookups.WithLabelValues("miss").Inc()
		return LocationUnknown
	}
}

func isLocalAddress(ip string) bool {
	switch ip {
	case "", "127.0.0.1", "::1", "localhost":
		return true
	}
	return false
}
