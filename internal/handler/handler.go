package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/mtlprog/floatingagent/docs" // Import generated docs
	"github.com/mtlprog/floatingagent/internal/handler/dto"
	"github.com/mtlprog/floatingagent/internal/metrics"
	"github.com/mtlprog/floatingagent/internal/relay"
	"github.com/mtlprog/floatingagent/internal/repository"
	"github.com/mtlprog/floatingagent/internal/service"
	"github.com/mtlprog/floatingagent/internal/static"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	pool             *pgxpool.Pool
	agentService     *service.AgentService
	selectionService *service.SelectionService
	tokenService     *service.TokenService
	runRepo          *repository.WorkflowRunRepository
	metrics          *metrics.Metrics
	router           *relay.Router
	features         dto.FeaturesResponse
}

// New creates a new Handler instance with all dependencies. A nil pool
// disables the workflow journal; nil metrics disable /metrics.
func New(platform service.Platform, pool *pgxpool.Pool, m *metrics.Metrics) *Handler {
	var (
		journals service.Journals
		runRepo  *repository.WorkflowRunRepository
	)
	if pool != nil {
		runRepo = repository.NewWorkflowRunRepository(pool)
		journals = append(journals, runRepo)
	}
	if m != nil {
		journals = append(journals, m)
	}

	// Create services
	runner := service.NewRunner(journals)

	h := &Handler{
		pool:             pool,
		agentService:     service.NewAgentService(platform, runner),
		selectionService: service.NewSelectionService(platform, runner),
		tokenService:     service.NewTokenService(platform),
		runRepo:          runRepo,
		metrics:          m,
		features:         loadFeatures(),
	}
	h.router = h.newRelayRouter()

	return h
}

// RegisterRoutes registers all HTTP routes.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Landing page and health check
	mux.HandleFunc("GET /{$}", h.handleIndex)
	mux.HandleFunc("GET /healthz", h.handleHealthz)

	// Swagger UI
	mux.HandleFunc("GET /swagger/", httpSwagger.Handler())

	if h.metrics != nil {
		mux.Handle("GET /metrics", h.metrics.Handler())
	}

	// Extension API
	mux.HandleFunc("GET /api/status", h.handleStatus)
	mux.HandleFunc("GET /api/features", h.handleFeatures)
	mux.HandleFunc("POST /api/dom", h.handleDOM)
	mux.HandleFunc("POST /api/weavy-token", h.handleIssueToken)
	mux.HandleFunc("POST /api/save-selection", h.handleSaveSelection)
	mux.HandleFunc("POST /api/relay", h.handleRelay)

	// Agents
	mux.HandleFunc("GET /api/agents", h.handleListAgents)
	mux.HandleFunc("POST /api/agents", h.handleCreateAgent)
	mux.HandleFunc("PUT /api/agents/{uid}", h.handleUpdateAgent)
	mux.HandleFunc("POST /api/agents/{uid}/avatar", h.handleUpdateAvatar)
	mux.HandleFunc("DELETE /api/agents/{uid}", h.handleDeleteAgent)

	// Workflow journal
	mux.HandleFunc("GET /api/workflows", h.handleListRuns)
	mux.HandleFunc("GET /api/workflows/{id}", h.handleGetRun)
}

// handleIndex serves the embedded landing page.
func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(static.IndexHTML))
}

// handleHealthz returns 200 OK if the journal database (when configured) is reachable.
func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if err := h.Ping(r.Context()); err != nil {
		slog.Error("database health check failed", "error", err)
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// Ping checks if the journal database is reachable. Without a journal it
// always succeeds.
func (h *Handler) Ping(ctx context.Context) error {
	if h.pool == nil {
		return nil
	}
	return h.pool.Ping(ctx)
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// respondError writes a standard error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, dto.NewErrorResponse(message))
}

// respondDomainError maps err to a status code and writes it.
func respondDomainError(w http.ResponseWriter, err error) {
	status, body := dto.MapDomainError(err)
	respondJSON(w, status, body)
}

// decodeBody parses a JSON request body into v.
// Returns false if invalid (error already sent to client).
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return false
		}
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func loadFeatures() dto.FeaturesResponse {
	var features dto.FeaturesResponse
	if err := json.Unmarshal(static.FeaturesJSON, &features); err != nil {
		slog.Error("failed to parse embedded feature list", "error", err)
	}
	if features.Features == nil {
		features.Features = []dto.Feature{}
	}
	return features
}
