package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/franciscosanchezn/foodgram-api/internal/metrics"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Metrics())
	router.GET("/api/recipes/:id/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	counter := metrics.APIRequestsTotal.WithLabelValues("GET", "/api/recipes/:id/", "204")
	before := testutil.ToFloat64(counter)

	for _, path := range []string{"/api/recipes/1/", "/api/recipes/2/"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
	}

	assert.Equal(t, before+2, testutil.ToFloat64(counter))
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.APIActiveRequests))
}
