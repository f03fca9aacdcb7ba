// Package api serves the accreditation dashboards over net/http.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/okian/akreditasi/internal/adapters/repository"
	"github.com/okian/akreditasi/internal/domain/grading"
	"github.com/okian/akreditasi/internal/domain/model"
	"github.com/okian/akreditasi/internal/domain/report"
	"github.com/okian/akreditasi/internal/domain/types"
)

const (
	defaultMaxLimit = 1000
	maxBodyBytes    = 1 << 20
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	ReportDependencies
	EvaluationDependencies
	RecomputeDependencies
	RankingDependencies
}

// Entry mirrors the read shape returned by ranking queries.
type Entry = types.Entry

// ServerOption configures a Server.
type ServerOption func(*serverConfig)

type serverConfig struct {
	maxLimit int
}

// WithMaxLimit caps the ranking page size.
func WithMaxLimit(n int) ServerOption {
	return func(c *serverConfig) {
		if n > 0 {
			c.maxLimit = n
		}
	}
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler     *HealthHandler
	reportHandler     *ReportHandler
	evaluationHandler *EvaluationHandler
	recomputeHandler  *RecomputeHandler
	rankingHandler    *RankingHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...ServerOption) *Server {
	cfg := serverConfig{maxLimit: defaultMaxLimit}
	for _, opt := range opts {
		opt(&cfg)
	}
	v := validator.New(validator.WithRequiredStructEnabled())
	return &Server{
		healthHandler:     NewHealthHandler(statsProvider),
		reportHandler:     NewReportHandler(deps),
		evaluationHandler: NewEvaluationHandler(deps, v),
		recomputeHandler:  NewRecomputeHandler(deps, v),
		rankingHandler:    NewRankingHandler(deps, cfg.maxLimit),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.healthHandler.HandleStats, "stats"))
	mux.HandleFunc("GET /programs/{id}/report", MetricsMiddleware(s.reportHandler.HandleGetReport, "program_report"))
	mux.HandleFunc("GET /reports", MetricsMiddleware(s.reportHandler.HandleGetReports, "reports"))
	mux.HandleFunc("POST /evaluations", MetricsMiddleware(s.evaluationHandler.HandlePostEvaluation, "evaluations"))
	mux.HandleFunc("POST /recompute", MetricsMiddleware(s.recomputeHandler.HandlePostRecompute, "recompute"))
	mux.HandleFunc("GET /rankings", MetricsMiddleware(s.rankingHandler.HandleGetRankings, "rankings"))
	mux.HandleFunc("GET /rankings/{id}", MetricsMiddleware(s.rankingHandler.HandleGetRank, "rank"))
	mux.HandleFunc("GET /rankings/{id}/report", MetricsMiddleware(s.rankingHandler.HandleGetRankedReport, "ranked_report"))
}

// ReportDependencies computes dashboard records.
type ReportDependencies interface {
	Report(ctx context.Context, scope model.Scope, programID uuid.UUID, scale grading.Scale) (report.Program, error)
	Reports(ctx context.Context, scope model.Scope, scale grading.Scale) ([]report.Program, error)
}

// EvaluationDependencies records assessor scores.
type EvaluationDependencies interface {
	SubmitEvaluation(ctx context.Context, e model.Evaluation) (repository.SubmitResult, error)
}

// RecomputeDependencies queues report rebuilds.
type RecomputeDependencies interface {
	Recompute(ctx context.Context, programIDs []uuid.UUID) (int, error)
}

type errorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// writeJSON encodes v before committing status, so a value that cannot be
// encoded becomes a 500 instead of an empty success.
func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		body, _ = json.Marshal(errorResponse{Code: "encode_failed", Message: err.Error()})
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeUpstreamError maps an error from the service to its status.
func writeUpstreamError(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	writeError(w, status, code, err)
}

// writeValidationError reports validator failures field by field.
func writeValidationError(w http.ResponseWriter, op string, err error) {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
		return
	}
	details := make(map[string]string, len(ve))
	for _, fe := range ve {
		details[fe.Field()] = fe.Tag()
	}
	writeJSON(w, http.StatusBadRequest, errorResponse{
		Code:    "validation_failed",
		Message: newKind(op, ErrBadRequest).Error(),
		Details: details,
	})
}

// decodeJSON reads a bounded JSON body into v, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// parseScope reads ?year=&unit=&assessor= into a Scope.
func parseScope(r *http.Request) (model.Scope, error) {
	q := r.URL.Query()
	var scope model.Scope
	if y := strings.TrimSpace(q.Get("year")); y != "" {
		year, err := strconv.Atoi(y)
		if err != nil || year < 0 {
			return model.Scope{}, errors.New("invalid year")
		}
		scope.Year = year
	}
	var err error
	if scope.UnitID, err = parseOptionalUUID(q.Get("unit")); err != nil {
		return model.Scope{}, errors.New("invalid unit")
	}
	if scope.AssessorID, err = parseOptionalUUID(q.Get("assessor")); err != nil {
		return model.Scope{}, errors.New("invalid assessor")
	}
	return scope, nil
}

func parseOptionalUUID(s string) (uuid.UUID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return uuid.Nil, nil
	}
	return uuid.Parse(s)
}

// parseScale reads ?scale=; empty leaves the service default.
func parseScale(r *http.Request) (grading.Scale, error) {
	s := strings.TrimSpace(r.URL.Query().Get("scale"))
	if s == "" {
		return "", nil
	}
	return grading.ParseScale(s)
}
