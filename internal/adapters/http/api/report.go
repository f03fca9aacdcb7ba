package api

import (
	"net/http"

	"github.com/google/uuid"
)

// ReportHandler serves program dashboard records.
type ReportHandler struct {
	deps ReportDependencies
}

// NewReportHandler creates a new report handler.
func NewReportHandler(deps ReportDependencies) *ReportHandler {
	return &ReportHandler{deps: deps}
}

// HandleGetReport handles GET /programs/{id}/report?year=&unit=&assessor=&scale=.
func (h *ReportHandler) HandleGetReport(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_report"
	programID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
		return
	}
	scope, err := parseScope(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
		return
	}
	scale, err := parseScale(r)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}

	rep, err := h.deps.Report(r.Context(), scope, programID, scale)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// HandleGetReports handles GET /reports?year=&unit=&assessor=&scale=.
func (h *ReportHandler) HandleGetReports(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_reports"
	scope, err := parseScope(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
		return
	}
	scale, err := parseScale(r)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}

	reps, err := h.deps.Reports(r.Context(), scope, scale)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reps)
}
