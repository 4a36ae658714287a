package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/tags/", "200"))

	RecordAPIRequest("GET", "/api/tags/", 200, 15*time.Millisecond)

	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/tags/", "200"))
	assert.Equal(t, before+1, after)
}

func TestDomainCounters(t *testing.T) {
	created := testutil.ToFloat64(RecipesCreated)
	RecordRecipeCreated()
	assert.Equal(t, created+1, testutil.ToFloat64(RecipesCreated))

	pdf := testutil.ToFloat64(ShoppingListDownloads.WithLabelValues("pdf"))
	RecordShoppingListDownload("pdf")
	assert.Equal(t, pdf+1, testutil.ToFloat64(ShoppingListDownloads.WithLabelValues("pdf")))

	rejected := testutil.ToFloat64(RateLimitRejections.WithLabelValues("recipe_create"))
	RecordRateLimitRejection("recipe_create")
	assert.Equal(t, rejected+1, testutil.ToFloat64(RateLimitRejections.WithLabelValues("recipe_create")))
}
