package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/okian/akreditasi/internal/domain/report"
)

// RankingDependencies reads the executive ranking built by recompute jobs.
type RankingDependencies interface {
	Rankings(ctx context.Context, limit int) ([]Entry, error)
	Rank(ctx context.Context, programID uuid.UUID) (Entry, error)
	CachedReport(ctx context.Context, programID uuid.UUID) (report.Program, error)
}

// RankingHandler serves the ranking and the reports it was built from.
type RankingHandler struct {
	deps     RankingDependencies
	maxLimit int
}

// NewRankingHandler creates a ranking handler capped at maxLimit entries per page.
func NewRankingHandler(deps RankingDependencies, maxLimit int) *RankingHandler {
	return &RankingHandler{deps: deps, maxLimit: maxLimit}
}

// HandleGetRankings handles GET /rankings?limit=N.
func (h *RankingHandler) HandleGetRankings(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_rankings"
	n := h.maxLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		var err error
		n, err = strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", newKind(op, ErrBadRequest))
			return
		}
	}
	if n > h.maxLimit {
		writeError(w, http.StatusBadRequest, "limit_exceeded", newKind(op, ErrBadRequest))
		return
	}
	entries, err := h.deps.Rankings(r.Context(), n)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// HandleGetRank handles GET /rankings/{id}.
func (h *RankingHandler) HandleGetRank(w http.ResponseWriter, r *http.Request) {
	programID, ok := h.programID(w, r, "api.get_rank")
	if !ok {
		return
	}
	entry, err := h.deps.Rank(r.Context(), programID)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// HandleGetRankedReport handles GET /rankings/{id}/report: the report the
// program's current rank was computed from, without recomputing it.
func (h *RankingHandler) HandleGetRankedReport(w http.ResponseWriter, r *http.Request) {
	programID, ok := h.programID(w, r, "api.get_ranked_report")
	if !ok {
		return
	}
	rep, err := h.deps.CachedReport(r.Context(), programID)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (h *RankingHandler) programID(w http.ResponseWriter, r *http.Request, op string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
		return uuid.Nil, false
	}
	return id, true
}
