package api

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/okian/akreditasi/internal/domain/model"
)

// EvaluationHandler accepts assessor scores.
type EvaluationHandler struct {
	deps     EvaluationDependencies
	validate *validator.Validate
}

// NewEvaluationHandler creates a new evaluation handler.
func NewEvaluationHandler(deps EvaluationDependencies, v *validator.Validate) *EvaluationHandler {
	if v == nil {
		v = validator.New(validator.WithRequiredStructEnabled())
	}
	return &EvaluationHandler{deps: deps, validate: v}
}

// evaluationRequest is the body of POST /evaluations.
type evaluationRequest struct {
	AssignmentID    string   `json:"assignment_id" validate:"required,uuid"`
	AssessorID      string   `json:"assessor_id" validate:"required,uuid"`
	CriteriaPointID string   `json:"criteria_point_id" validate:"required,uuid"`
	Score           *float64 `json:"score" validate:"required,gte=0"`
	Status          *string  `json:"status" validate:"omitempty,oneof=passed inadequate"`
	Notes           string   `json:"notes" validate:"max=4000"`
}

func (req evaluationRequest) toModel() model.Evaluation {
	return model.Evaluation{
		AssignmentID:    uuid.MustParse(req.AssignmentID),
		AssessorID:      uuid.MustParse(req.AssessorID),
		CriteriaPointID: uuid.MustParse(req.CriteriaPointID),
		Score:           *req.Score,
		Status:          req.Status,
		Notes:           req.Notes,
	}
}

type evaluationResponse struct {
	AssignmentID     uuid.UUID    `json:"assignment_id"`
	AssessorID       uuid.UUID    `json:"assessor_id"`
	CriteriaPointID  uuid.UUID    `json:"criteria_point_id"`
	Score            float64      `json:"score"`
	Status           *string      `json:"status,omitempty"`
	Notes            string       `json:"notes,omitempty"`
	UpdatedAt        time.Time    `json:"updated_at"`
	Created          bool         `json:"created"`
	AssignmentStatus model.Status `json:"assignment_status"`
	ProgramID        uuid.UUID    `json:"program_id"`
}

// HandlePostEvaluation handles POST /evaluations requests.
func (h *EvaluationHandler) HandlePostEvaluation(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_evaluation"
	var req evaluationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeValidationError(w, op, err)
		return
	}

	res, err := h.deps.SubmitEvaluation(r.Context(), req.toModel())
	if err != nil {
		writeUpstreamError(w, err)
		return
	}

	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	e := res.Evaluation
	writeJSON(w, status, evaluationResponse{
		AssignmentID:     e.AssignmentID,
		AssessorID:       e.AssessorID,
		CriteriaPointID:  e.CriteriaPointID,
		Score:            e.Score,
		Status:           e.Status,
		Notes:            e.Notes,
		UpdatedAt:        e.UpdatedAt,
		Created:          res.Created,
		AssignmentStatus: res.Status,
		ProgramID:        res.ProgramID,
	})
}
