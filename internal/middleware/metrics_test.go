package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/lukewarren/accountd/pkg/metrics"
)

func TestMetricsCollapsesUnmatchedRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(Metrics())

	series := metrics.APILatency.MustCurryWith(prometheus.Labels{
		"method": "DELETE",
		"path":   "unmatched",
		"status": "404",
	})
	require.Equal(t, 0, testutil.CollectAndCount(series))

	for _, target := range []string{"/nope", "/still/nope"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, target, nil))
		require.Equal(t, http.StatusNotFound, w.Code)
	}

	// both misses share one series
	require.Equal(t, 1, testutil.CollectAndCount(series))
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(Metrics())
	r.GET("/widgets/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/widgets/42", nil))
	require.Equal(t, http.StatusOK, w.Code)

	series := metrics.APILatency.MustCurryWith(prometheus.Labels{
		"method": "GET",
		"path":   "/widgets/:id",
		"status": "200",
	})
	require.Equal(t, 1, testutil.CollectAndCount(series))
}
