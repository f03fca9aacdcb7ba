package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// RecomputeHandler queues program report rebuilds.
type RecomputeHandler struct {
	deps     RecomputeDependencies
	validate *validator.Validate
}

// NewRecomputeHandler creates a new recompute handler.
func NewRecomputeHandler(deps RecomputeDependencies, v *validator.Validate) *RecomputeHandler {
	if v == nil {
		v = validator.New(validator.WithRequiredStructEnabled())
	}
	return &RecomputeHandler{deps: deps, validate: v}
}

// recomputeRequest is the body of POST /recompute. An empty body or an empty
// list means every program.
type recomputeRequest struct {
	ProgramIDs []string `json:"program_ids" validate:"omitempty,max=10000,dive,uuid"`
}

type recomputeResponse struct {
	Status string `json:"status"`
	Queued int    `json:"queued"`
}

// HandlePostRecompute handles POST /recompute requests.
func (h *RecomputeHandler) HandlePostRecompute(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_recompute"
	var req recomputeRequest
	if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeValidationError(w, op, err)
		return
	}

	ids := make([]uuid.UUID, 0, len(req.ProgramIDs))
	for _, s := range req.ProgramIDs {
		ids = append(ids, uuid.MustParse(s))
	}

	queued, err := h.deps.Recompute(r.Context(), ids)
	if err != nil {
		status, code := statusFor(err)
		writeJSON(w, status, struct {
			errorResponse
			Queued int `json:"queued"`
		}{errorResponse{Code: code, Message: err.Error()}, queued})
		return
	}
	writeJSON(w, http.StatusAccepted, recomputeResponse{Status: "accepted", Queued: queued})
}
