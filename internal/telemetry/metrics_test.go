package telemetry

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGinMiddlewareCountsByRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinMiddleware())
	r.GET("/api/map", func(c *gin.Context) { c.Status(http.StatusOK) })

	before := testutil.ToFloat64(HTTPRequests.WithLabelValues("/api/map", "200"))
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/map?year=2000", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}
	assert.Equal(t, before+2, testutil.ToFloat64(HTTPRequests.WithLabelValues("/api/map", "200")))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Positive(t, testutil.ToFloat64(HTTPRequests.WithLabelValues("unmatched", "404")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	RecordCache(true)
	DatasetRows.Set(42)

	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := w.Body.String()
	assert.True(t, strings.Contains(body, `heartdash_filter_cache_total{result="hit"}`))
	assert.True(t, strings.Contains(body, "heartdash_dataset_rows 42"))
}
