package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/loomhr/loom/internal/agents"
	"github.com/loomhr/loom/internal/dataset"
	loomerrors "github.com/loomhr/loom/internal/errors"
	"github.com/loomhr/loom/internal/observability"
	"github.com/loomhr/loom/internal/registry"
)

// Version is the API version reported by the index endpoint.
const Version = "1.0.0"

// Handlers bundles the agents behind the REST surface.
type Handlers struct {
	attrition    *agents.Attrition
	diversity    *agents.Diversity
	planning     *agents.Planning
	productivity *agents.Productivity
	simulation   *agents.Simulation
	skillGap     *agents.SkillGap
	validator    *dataset.SchemaValidator
	stats        *observability.RequestStats
	logger       *slog.Logger
}

// NewHandlers creates the handler set. A nil logger uses slog.Default().
func NewHandlers(
	attrition *agents.Attrition,
	diversity *agents.Diversity,
	planning *agents.Planning,
	productivity *agents.Productivity,
	simulation *agents.Simulation,
	skillGap *agents.SkillGap,
	logger *slog.Logger,
) (*Handlers, error) {
	validator, err := dataset.NewSchemaValidator(dataset.HRSchema())
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		attrition:    attrition,
		diversity:    diversity,
		planning:     planning,
		productivity: productivity,
		simulation:   simulation,
		skillGap:     skillGap,
		validator:    validator,
		stats:        observability.NewRequestStats(time.Hour),
		logger:       logger,
	}, nil
}

// Router returns the full API handler with the default middleware applied.
func (h *Handlers) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", h.handleIndex)
	mux.HandleFunc("GET /health", h.handleHealth)
	mux.HandleFunc("POST /api/datasets/validate", h.handleValidate)
	mux.HandleFunc("POST /api/attrition/analyze", h.handleAttritionAnalyze)
	mux.HandleFunc("GET /api/attrition/feature-importance", h.handleFeatureImportance)
	mux.HandleFunc("POST /api/diversity/analyze", h.handleDiversityAnalyze)
	mux.HandleFunc("POST /api/planning/forecast", h.handlePlanningForecast)
	mux.HandleFunc("GET /api/planning/roles", h.handlePlanningRoles)
	mux.HandleFunc("GET /api/planning/salary-ranges", h.handleSalaryRanges)
	mux.HandleFunc("POST /api/productivity/analyze", h.handleProductivityAnalyze)
	mux.HandleFunc("POST /api/simulation/attrition", h.handleSimulation)
	mux.HandleFunc("GET /api/simulation/interventions", h.handleInterventions)
	mux.HandleFunc("POST /api/skill-gap/analyze", h.handleSkillGapAnalyze)
	mux.HandleFunc("GET /api/skill-gap/required-skills", h.handleRequiredSkills)
	mux.HandleFunc("GET /stats", h.handleStats)

	middleware := ChainMiddleware(
		RequestIDMiddleware,
		RecoveryMiddleware(h.logger),
		LoggingMiddleware(h.logger),
		StatsMiddleware(h.stats),
		ContentTypeMiddleware,
	)
	return middleware(mux)
}

func (h *Handlers) handleIndex(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":        "Loom Workforce Analytics API",
		"version":     Version,
		"description": "API for workforce analysis and planning",
		"endpoints": map[string]string{
			"datasets":     "/api/datasets",
			"attrition":    "/api/attrition",
			"diversity":    "/api/diversity",
			"planning":     "/api/planning",
			"productivity": "/api/productivity",
			"simulation":   "/api/simulation",
			"skill_gap":    "/api/skill-gap",
		},
	})
}

func (h *Handlers) handleStats(w http.ResponseWriter, r *http.Request) {
	snapshot := h.stats.Snapshot()
	endpoints := make([]map[string]any, len(snapshot))
	for i, e := range snapshot {
		endpoints[i] = map[string]any{
			"endpoint":      e.Endpoint,
			"count":         e.Count,
			"client_errors": e.ClientErrors,
			"server_errors": e.ServerErrors,
			"avg_ms":        e.AvgDuration().Milliseconds(),
			"max_ms":        e.MaxDuration.Milliseconds(),
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"endpoints": endpoints})
}

func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "loom",
	})
}

// tableRequest is the JSON body carrying an employee dataset.
type tableRequest struct {
	Rows []map[string]any `json:"rows"`
}

// decodeTable reads the request body as a table: CSV when the content type
// says so, JSON rows otherwise.
func (h *Handlers) decodeTable(r *http.Request) (*dataset.Table, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "text/csv") {
		return dataset.ReadCSV(r.Body, dataset.DateColumns)
	}

	var req tableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, fmt.Errorf("invalid request body: %w", err)
	}
	return dataset.FromRows(req.Rows, dataset.DateColumns)
}

func (h *Handlers) handleValidate(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	table, err := h.decodeTable(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), requestID)
		return
	}

	if err := h.validator.Validate(table); err != nil {
		h.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"rows":    table.NumRows(),
		"columns": table.NumCols(),
	})
}

func (h *Handlers) handleAttritionAnalyze(w http.ResponseWriter, r *http.Request) {
	table, err := h.decodeTable(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), GetRequestID(r.Context()))
		return
	}

	result, err := h.attrition.Analyze(r.Context(), table)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handlers) handleFeatureImportance(w http.ResponseWriter, r *http.Request) {
	importances, err := h.attrition.FeatureImportance(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"feature_importance": importances})
}

func (h *Handlers) handleDiversityAnalyze(w http.ResponseWriter, r *http.Request) {
	table, err := h.decodeTable(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), GetRequestID(r.Context()))
		return
	}

	result, err := h.diversity.Analyze(table)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type planningRequest struct {
	HeadcountPlan  []agents.HeadcountEntry `json:"headcount_plan"`
	HiringPipeline []agents.PipelineEntry  `json:"hiring_pipeline"`
}

func (h *Handlers) handlePlanningForecast(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	var req planningRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err), requestID)
		return
	}

	result, err := h.planning.Forecast(req.HeadcountPlan, req.HiringPipeline)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handlers) handlePlanningRoles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"roles": h.planning.Roles()})
}

func (h *Handlers) handleSalaryRanges(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.planning.SalaryRanges())
}

type productivityRequest struct {
	TimeLogs []agents.TimeLog `json:"time_logs"`
	TaskLogs []agents.TaskLog `json:"task_logs"`
}

func (h *Handlers) handleProductivityAnalyze(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	var req productivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err), requestID)
		return
	}

	result, err := h.productivity.Analyze(req.TimeLogs, req.TaskLogs)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type simulationRequest struct {
	Rows              []map[string]any    `json:"rows"`
	Intervention      agents.Intervention `json:"intervention"`
	ParticipationRate *float64            `json:"participation_rate"`
}

func (h *Handlers) handleSimulation(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	var req simulationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err), requestID)
		return
	}

	table, err := dataset.FromRows(req.Rows, dataset.DateColumns)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), requestID)
		return
	}

	rate := 1.0
	if req.ParticipationRate != nil {
		rate = *req.ParticipationRate
	}

	result, err := h.simulation.Simulate(table, req.Intervention, rate)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handlers) handleInterventions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.simulation.Interventions())
}

type skillGapRequest struct {
	Employees   []agents.Employee  `json:"employees"`
	ResumeTexts map[int64]string   `json:"resume_texts"`
	Transcripts map[int64][]string `json:"transcripts"`
}

func (h *Handlers) handleSkillGapAnalyze(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	var req skillGapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err), requestID)
		return
	}
	if len(req.Employees) == 0 {
		writeError(w, http.StatusBadRequest, "employees is required", requestID)
		return
	}

	reports := h.skillGap.Analyze(req.Employees, req.ResumeTexts, req.Transcripts)
	writeJSON(w, http.StatusOK, map[string]any{"recommendations": reports})
}

func (h *Handlers) handleRequiredSkills(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.skillGap.RequiredSkills())
}

// respondError maps domain errors to HTTP status codes: schema violations
// are the caller's fault, a missing trained model is 404, and everything
// else is a logged 500.
func (h *Handlers) respondError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := GetRequestID(r.Context())

	if loomerrors.IsClientError(err) {
		if verr, ok := dataset.AsValidationError(err); ok {
			details := make([]string, len(verr.Violations))
			for i, v := range verr.Violations {
				details[i] = v.Message
			}
			writeError(w, http.StatusBadRequest,
				fmt.Sprintf("%d schema violation(s)", len(verr.Violations)),
				requestID, details...)
			return
		}
		writeError(w, http.StatusBadRequest, err.Error(), requestID)
		return
	}

	if errors.Is(err, registry.ErrModelNotFound) ||
		loomerrors.GetCode(err) == loomerrors.CodeArtifactMissing {
		writeError(w, http.StatusNotFound, "no trained model available", requestID)
		return
	}

	h.logger.Error("request failed",
		"request_id", requestID,
		"path", r.URL.Path,
		"error", err)
	writeError(w, http.StatusInternalServerError, "internal server error", requestID)
}
