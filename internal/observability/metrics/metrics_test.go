package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRouteLabel(t *testing.T) {
	assert.Equal(t, "/api/activities/{id}", routeLabel("/api/activities/42"))
	assert.Equal(t, "/api/farms", routeLabel("/api/farms"))
	assert.Equal(t, "/", routeLabel("/"))
}

func TestHTTPMetricsMiddlewareCountsStatus(t *testing.T) {
	h := HTTPMetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/api/farms/{id}", "418"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/farms/7", nil))
	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/api/farms/{id}", "418"))

	assert.Equal(t, before+1, after)
}

func TestObserveRecordCreated(t *testing.T) {
	before := testutil.ToFloat64(recordsCreated.WithLabelValues("farm"))
	ObserveRecordCreated("farm")
	assert.Equal(t, before+1, testutil.ToFloat64(recordsCreated.WithLabelValues("farm")))
}
