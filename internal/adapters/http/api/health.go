package api

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	service "github.com/okian/akreditasi/internal/app"
	"github.com/okian/akreditasi/pkg/metrics"
)

// StatsProvider reports the service's runtime state.
type StatsProvider interface {
	Stats(ctx context.Context) service.Stats
}

// HealthHandler serves the operational endpoints.
type HealthHandler struct {
	stats StatsProvider
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(stats StatsProvider) *HealthHandler {
	return &HealthHandler{stats: stats}
}

type healthResponse struct {
	Status  string `json:"status"`
	Workers bool   `json:"workers"`
}

// HandleHealth handles GET /healthz. The service answers 503 until its
// recompute workers are running.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if h.stats == nil || !h.stats.Stats(r.Context()).Started {
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "starting"})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Workers: true})
}

// HandleStats handles GET /stats.
func (h *HealthHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if h.stats == nil {
		writeJSON(w, http.StatusOK, service.Stats{})
		return
	}
	writeJSON(w, http.StatusOK, h.stats.Stats(r.Context()))
}

// HandleMetrics serves the Prometheus registry.
func (h *HealthHandler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}).ServeHTTP(w, r)
}
