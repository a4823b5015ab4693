package handler

import (
	"fmt"
	"net/http"

	"github.com/bilemo/bilemo/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "bilemo_http_request_duration_seconds_count %d\n", snap.RequestDurationCount)
	writeMetric(w, "bilemo_http_request_duration_seconds_sum %.6f\n", float64(snap.RequestDurationTotalNs)/1e9)
	writeMetric(w, "bilemo_http_not_modified_total %d\n", snap.NotModified)

	writeMetric(w, "bilemo_pages_out_of_range_total %d\n", snap.PagesOutOfRange)
	writeMetric(w, "bilemo_access_denied_total %d\n", snap.AccessDenied)
	writeMetric(w, "bilemo_rate_limited_total %d\n", snap.RateLimited)

	writeMetric(w, "bilemo_principal_cache_hits_total %d\n", snap.PrincipalCacheHits)
	writeMetric(w, "bilemo_principal_cache_misses_total %d\n", snap.PrincipalCacheMisses)

	writeMetric(w, "bilemo_users_created_total %d\n", snap.UsersCreated)
	writeMetric(w, "bilemo_users_updated_total %d\n", snap.UsersUpdated)
	writeMetric(w, "bilemo_users_deleted_total %d\n", snap.UsersDeleted)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
