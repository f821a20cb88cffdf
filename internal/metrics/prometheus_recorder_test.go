package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder_RecordsAndServes(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)

	pr.ObserveRenderDuration("page", 15*time.Millisecond, ResultSuccess)
	pr.IncCacheLookup(true)
	pr.IncCacheLookup(true)
	pr.IncCacheLookup(false)
	pr.ObserveBuildDuration(500 * time.Millisecond)
	pr.AddPagesBuilt(4)
	pr.IncLongPoll(false)
	pr.IncEpochBump()
	pr.SetWaitingClients(2)

	assert.InDelta(t, 2, testutil.ToFloat64(pr.cacheLookups.WithLabelValues("hit")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(pr.cacheLookups.WithLabelValues("miss")), 0)
	assert.InDelta(t, 4, testutil.ToFloat64(pr.pagesBuilt), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(pr.longPolls.WithLabelValues("timeout")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(pr.waitingClients), 0)

	rec := httptest.NewRecorder()
	HTTPHandler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "docsite_pages_built_total 4")
	assert.Contains(t, rec.Body.String(), "docsite_livereload_epoch_bumps_total 1")
}

func TestNilPrometheusRecorder_IsSafe(t *testing.T) {
	var pr *PrometheusRecorder
	assert.NotPanics(t, func() {
		pr.IncEpochBump()
		pr.IncCacheLookup(true)
		pr.ObserveRenderDuration("page", time.Second, ResultError)
	})
}

func TestResultFor(t *testing.T) {
	assert.Equal(t, ResultSuccess, ResultFor(nil))
	assert.Equal(t, ResultError, ResultFor(assert.AnError))
}

var _ Recorder = NoopRecorder{}
var _ Recorder = (*PrometheusRecorder)(nil)
