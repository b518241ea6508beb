package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddlewareLabelsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/api/products/{slug}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	before := testutil.ToFloat64(RequestTotal.WithLabelValues("GET", "/api/products/{slug}", "404"))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/products/mango-lassi", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/products/chai", nil))

	after := testutil.ToFloat64(RequestTotal.WithLabelValues("GET", "/api/products/{slug}", "404"))
	assert.Equal(t, before+2, after)
}

func TestRecordReconcile(t *testing.T) {
	before := testutil.ToFloat64(ReconcileTargets.WithLabelValues("category"))
	RecordReconcile("ok", 1, 3, 2, 0, 10*time.Millisecond)

	assert.Equal(t, before+3, testutil.ToFloat64(ReconcileTargets.WithLabelValues("category")))
}

func TestHandlerServesRegistry(t *testing.T) {
	rec := httptest.NewRecorder()
	Handler()(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "shop_reconcile_runs_total") ||
		strings.Contains(rec.Body.String(), "go_goroutines"))
}
