// Package httpapi exposes the analysis engine over HTTP: health, readiness
// and metrics endpoints, and a single analysis operation accepting either a
// JSON payload or the original two-file CSV upload form.
package httpapi

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/lmr105/supply-interruption-service/internal/analysis"
	"github.com/lmr105/supply-interruption-service/internal/config"
	"github.com/lmr105/supply-interruption-service/internal/domain"
	"github.com/lmr105/supply-interruption-service/internal/ingest"
	"github.com/lmr105/supply-interruption-service/internal/observability"
	"github.com/lmr105/supply-interruption-service/internal/report"
)

// maxUploadBytes caps a multipart upload; logger exports are small.
const maxUploadBytes = 32 << 20

// Analyzer runs one analysis and reports readiness.
type Analyzer interface {
	Analyze(ctx context.Context, readings []domain.Reading, heights []float64, params analysis.Parameters) (*analysis.Result, error)
	CheckReadiness(ctx context.Context) error
}

// ResultPublisher delivers a completed result to an external system.
// Delivery is advisory; a publish failure never fails the request.
type ResultPublisher interface {
	Publish(ctx context.Context, result *analysis.Result) error
}

// Server exposes the analysis HTTP API.
type Server struct {
	httpServer *http.Server
	analyzer   Analyzer
	publisher  ResultPublisher
	metrics    *observability.Metrics
	logger     *slog.Logger

	apiToken string
	defaults config.AnalysisConfig
}

// NewServer wires the routes. publisher may be nil when publishing is
// disabled.
func NewServer(cfg *config.Config, analyzer Analyzer, publisher ResultPublisher, metrics *observability.Metrics, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		analyzer:  analyzer,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
		apiToken:  cfg.APIToken,
		defaults:  cfg.Analysis,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("POST /v1/analyses", s.requireToken(s.handleAnalyze))

	// The expected consumer is a browser upload form on another origin.
	handler := cors.New(cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type", "X-API-Token"},
	}).Handler(mux)

	s.httpServer = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.analyzer.CheckReadiness(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// requireToken gates a handler behind the shared API token. An empty
// configured token disables the gate.
func (s *Server) requireToken(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.apiToken != "" {
			got := r.Header.Get("X-API-Token")
			if subtle.ConstantTimeCompare([]byte(got), []byte(s.apiToken)) != 1 {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid or missing API token"})
				return
			}
		}
		next(w, r)
	}
}

// analysisRequest is the JSON form of an analysis submission. Zero-value
// thresholds fall back to the configured defaults.
type analysisRequest struct {
	Readings     []domain.Reading `json:"readings"`
	Heights      []float64        `json:"heights"`
	LoggerHeight float64          `json:"logger_height"`
	Headloss     float64          `json:"headloss"`
	UnitCost     float64          `json:"unit_cost"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeRequest(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	result, err := s.analyzer.Analyze(r.Context(), req.Readings, req.Heights, s.parameters(req))
	if err != nil {
		s.writeError(w, err)
		return
	}

	if s.publisher != nil {
		if pubErr := s.publisher.Publish(r.Context(), result); pubErr != nil {
			s.metrics.PublishErrors.Inc()
			s.logger.Error("result publish failed", "run_id", result.RunID, "error", pubErr)
		}
	}

	switch format(r) {
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="supply-interruptions.csv"`)
		if err := report.WriteCSV(w, report.Build(result)); err != nil {
			s.logger.Error("write csv report", "run_id", result.RunID, "error", err)
		}
	case "html":
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := report.WriteHTML(w, report.Build(result)); err != nil {
			s.logger.Error("write html report", "run_id", result.RunID, "error", err)
		}
	default:
		writeJSON(w, http.StatusOK, result)
	}
}

// decodeRequest accepts a JSON body or the multipart upload form with
// pressure_csv and heights_csv files.
func (s *Server) decodeRequest(r *http.Request) (*analysisRequest, error) {
	ct := r.Header.Get("Content-Type")
	if ct == "" || strings.HasPrefix(ct, "application/json") {
		var req analysisRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, &domain.MalformedInputError{Field: "body", Reason: "invalid JSON: " + err.Error()}
		}
		return &req, nil
	}
	return s.decodeMultipart(r)
}

func (s *Server) decodeMultipart(r *http.Request) (*analysisRequest, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, &domain.MalformedInputError{Field: "body", Reason: "expected JSON or multipart form: " + err.Error()}
	}

	pressureFile, _, err := r.FormFile("pressure_csv")
	if err != nil {
		return nil, &domain.MalformedInputError{Field: "pressure_csv", Reason: "missing file"}
	}
	defer pressureFile.Close()

	heightsFile, _, err := r.FormFile("heights_csv")
	if err != nil {
		return nil, &domain.MalformedInputError{Field: "heights_csv", Reason: "missing file"}
	}
	defer heightsFile.Close()

	readings, err := ingest.ReadPressureCSV(pressureFile)
	if err != nil {
		return nil, err
	}
	heights, err := ingest.ReadHeightsCSV(heightsFile)
	if err != nil {
		return nil, err
	}

	req := &analysisRequest{Readings: readings, Heights: heights}

	req.LoggerHeight, err = formFloat(r, "logger_height", true)
	if err != nil {
		return nil, err
	}
	req.Headloss, err = formFloat(r, "headloss", false)
	if err != nil {
		return nil, err
	}
	req.UnitCost, err = formFloat(r, "unit_cost", false)
	if err != nil {
		return nil, err
	}
	return req, nil
}

func formFloat(r *http.Request, field string, required bool) (float64, error) {
	raw := r.FormValue(field)
	if raw == "" {
		if required {
			return 0, &domain.MalformedInputError{Field: field, Reason: "missing value"}
		}
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &domain.MalformedInputError{Field: field, Reason: "non-numeric value " + strconv.Quote(raw)}
	}
	return v, nil
}

// parameters merges the request scalars with the configured thresholds.
func (s *Server) parameters(req *analysisRequest) analysis.Parameters {
	params := analysis.Parameters{
		LoggerHeight:    req.LoggerHeight,
		Headloss:        req.Headloss,
		ReferenceOffset: s.defaults.ReferenceOffset,
		Thresholds: domain.Thresholds{
			MergeGap:    s.defaults.MergeGap,
			MinDuration: s.defaults.MinDuration,
		},
		NetworkProperties: s.defaults.NetworkProperties,
		UnitCost:          s.defaults.UnitCost,
	}
	if req.UnitCost > 0 {
		params.UnitCost = req.UnitCost
	}
	return params
}

func format(r *http.Request) string {
	if f := r.URL.Query().Get("format"); f != "" {
		return f
	}
	if r.Header.Get("Accept") == "text/html" {
		return "html"
	}
	return ""
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	var malformed *domain.MalformedInputError
	if errors.As(err, &malformed) {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": err.Error(),
			"field": malformed.Field,
		})
		return
	}
	s.logger.Error("analysis failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
