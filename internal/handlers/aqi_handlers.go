package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"airwatch/internal/analysis"
	"airwatch/internal/charts"
	"airwatch/internal/models"
	"airwatch/internal/render"
	"airwatch/internal/repository"
	"airwatch/internal/services"
	"airwatch/pkg/logging"
	"airwatch/pkg/metrics"
)

// Options configures where the handler finds datasets and assets
type Options struct {
	DataDir     string
	DefaultFile string
	ExportDir   string
	AssetDir    string
	Threshold   float64
	Station     models.Location
	Logos       []string
}

// AQIHandler serves the monitoring and simulation flows over HTTP
type AQIHandler struct {
	service *services.AnalysisService
	opts    Options
	png     *render.PNGRenderer
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewAQIHandler creates a new AQI handler
func NewAQIHandler(
	service *services.AnalysisService,
	opts Options,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
) *AQIHandler {
	if opts.Threshold <= 0 {
		opts.Threshold = analysis.DefaultSeverityThreshold
	}
	return &AQIHandler{
		service: service,
		opts:    opts,
		png:     render.NewPNGRenderer(),
		logger:  logger,
		metrics: metricsCollector,
	}
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string   `json:"error"`
	Message string   `json:"message"`
	Code    int      `json:"code"`
	Missing []string `json:"missing,omitempty"`
}

// EmptyResponse reports a valid request that produced no data
type EmptyResponse struct {
	Empty   bool   `json:"empty"`
	Message string `json:"message"`
}

// StatisticsResponse is returned by GET /api/statistics
type StatisticsResponse struct {
	Source     string             `json:"source"`
	Statistics *models.Statistics `json:"statistics"`
	Entries    []models.StatEntry `json:"entries"`
}

// HourlyResponse is returned by GET /api/hourly
type HourlyResponse struct {
	Threshold   float64               `json:"threshold"`
	Counts      map[string]int        `json:"counts"`
	Exceeding   []models.HourlyBucket `json:"exceeding"`
	BucketCount int                   `json:"bucket_count"`
	Safe        bool                  `json:"safe"`
	Message     string                `json:"message,omitempty"`
}

// ScenarioOptionsResponse is returned by GET /api/scenario/options
type ScenarioOptionsResponse struct {
	Options  []float64                 `json:"options"`
	Defaults models.ScenarioParameters `json:"defaults"`
	Current  models.CurrentConditions  `json:"current_conditions"`
}

// GetStatistics handles GET /api/statistics
func (h *AQIHandler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	path, r, err := h.dataset(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	stats, err := h.service.Statistics(r.Context(), path)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.sendJSON(w, StatisticsResponse{
		Source:     filepath.Base(path),
		Statistics: stats,
		Entries:    stats.Entries(),
	}, http.StatusOK)
}

// GetHourly handles GET /api/hourly
func (h *AQIHandler) GetHourly(w http.ResponseWriter, r *http.Request) {
	path, r, err := h.dataset(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	threshold := h.opts.Threshold
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		if threshold, err = parseFloatParam("threshold", raw); err != nil {
			h.handleError(w, r, err)
			return
		}
	}

	dist, err := h.service.Hourly(r.Context(), path, threshold)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	response := HourlyResponse{
		Threshold:   dist.Threshold,
		Counts:      make(map[string]int, len(dist.Counts)),
		Exceeding:   dist.Exceeding,
		BucketCount: dist.BucketCount,
		Safe:        dist.Safe(),
	}
	for hour, count := range dist.Counts {
		response.Counts[strconv.Itoa(hour)] = count
	}
	if response.Safe {
		response.Message = models.SafeMessage
	}
	h.sendJSON(w, response, http.StatusOK)
}

// GetAdvisory handles GET /api/advisory
func (h *AQIHandler) GetAdvisory(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("aqi")
	if raw == "" {
		h.sendError(w, r, "aqi query parameter is required", http.StatusBadRequest)
		return
	}
	aqi, err := parseFloatParam("aqi", raw)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	advisory, err := h.service.Advise(r.Context(), aqi)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.sendJSON(w, advisory, http.StatusOK)
}

// GetSimulation handles GET /api/simulate
func (h *AQIHandler) GetSimulation(w http.ResponseWriter, r *http.Request) {
	path, r, err := h.dataset(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	params, err := h.scenario(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	report, err := h.service.Simulate(r.Context(), path, params)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	report.Source = filepath.Base(path)
	h.sendJSON(w, report, http.StatusOK)
}

// ExportSimulation handles POST /api/simulate/export.
// The adjusted data is written to a fresh file and returned as an attachment.
func (h *AQIHandler) ExportSimulation(w http.ResponseWriter, r *http.Request) {
	path, r, err := h.dataset(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	params, err := h.scenario(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	format, err := repository.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	report, err := h.service.Simulate(r.Context(), path, params)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	out, err := h.service.Export(r.Context(), report.Series, h.opts.ExportDir, format)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	data, err := os.ReadFile(out)
	if err != nil {
		h.handleError(w, r, fmt.Errorf("failed to read export: %w", err))
		return
	}

	name := filepath.Base(out)
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("X-Export-File", name)
	w.WriteHeader(http.StatusCreated)
	w.Write(data)
}

// GetChart handles GET /api/charts/{column}.png.
// simulate=true plots the column against its adjusted counterpart.
func (h *AQIHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	path, r, err := h.dataset(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	column, err := charts.ResolveColumn(mux.Vars(r)["column"])
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	var params *models.ScenarioParameters
	if simulate, _ := strconv.ParseBool(r.URL.Query().Get("simulate")); simulate {
		p, err := h.scenario(r)
		if err != nil {
			h.handleError(w, r, err)
			return
		}
		params = &p
	}

	chart, err := h.service.Chart(r.Context(), path, column, params)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	if err := h.png.RenderLine(w, chart); err != nil {
		h.logger.Error(r.Context(), "[API_CHART_RENDER_ERROR] Failed to render chart", logging.Fields{
			"column": column,
		}, err)
	}
}

// GetHourlyChart handles GET /api/charts/hourly.png
func (h *AQIHandler) GetHourlyChart(w http.ResponseWriter, r *http.Request) {
	path, r, err := h.dataset(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	dist, err := h.service.Hourly(r.Context(), path, h.opts.Threshold)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	chart, err := charts.HourlyChart(dist)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	if err := h.png.RenderBars(w, chart); err != nil {
		h.logger.Error(r.Context(), "[API_CHART_RENDER_ERROR] Failed to render hourly chart", logging.Fields{}, err)
	}
}

// GetScenarioOptions handles GET /api/scenario/options
func (h *AQIHandler) GetScenarioOptions(w http.ResponseWriter, r *http.Request) {
	h.sendJSON(w, ScenarioOptionsResponse{
		Options:  analysis.RatioOptions(),
		Defaults: h.service.DefaultScenario(),
		Current:  h.service.CurrentConditions(),
	}, http.StatusOK)
}

// GetAsset handles GET /assets/{name}
func (h *AQIHandler) GetAsset(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if name != filepath.Base(name) || name == "." || name == ".." {
		h.sendError(w, r, "invalid asset name", http.StatusBadRequest)
		return
	}
	path := filepath.Join(h.opts.AssetDir, name)
	if _, err := os.Stat(path); err != nil {
		h.sendError(w, r, "asset not found: "+name, http.StatusNotFound)
		return
	}
	http.ServeFile(w, r, path)
}

// HealthCheck handles GET /health
func (h *AQIHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	h.logger.Debug(ctx, "[HEALTH_CHECK] Health check requested", logging.Fields{})
	h.sendJSON(w, status, http.StatusOK)
}

// dataset resolves the dataset query parameter inside the data directory
func (h *AQIHandler) dataset(r *http.Request) (string, *http.Request, error) {
	name := r.URL.Query().Get("dataset")
	path, err := repository.ResolveDataset(h.opts.DataDir, name, h.opts.DefaultFile)
	if err != nil {
		return "", r, err
	}
	ctx := logging.WithDataset(r.Context(), filepath.Base(path))
	return path, r.WithContext(ctx), nil
}

// scenario reads vegetation, ev and filter ratios, defaulting to the preselected scenario
func (h *AQIHandler) scenario(r *http.Request) (models.ScenarioParameters, error) {
	params := h.service.DefaultScenario()
	fields := []struct {
		name   string
		target *float64
	}{
		{"vegetation", &params.VegetationRatio},
		{"ev", &params.EVAdoptionRatio},
		{"filter", &params.SmogFilterEffectiveness},
	}

	q := r.URL.Query()
	for _, f := range fields {
		raw := q.Get(f.name)
		if raw == "" {
			continue
		}
		v, err := parseFloatParam(f.name, raw)
		if err != nil {
			return params, err
		}
		*f.target = v
	}
	return params, params.Validate()
}

func parseFloatParam(name, raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &models.ValidationError{
			Field:   name,
			Value:   raw,
			Message: fmt.Sprintf("%s must be a number, got %q", name, raw),
		}
	}
	return v, nil
}

// statusFor maps the error taxonomy onto HTTP status codes
func statusFor(err error) (int, string) {
	var (
		vErr *models.ValidationError
		pErr *models.ParseError
		nErr *repository.NotFoundError
		eErr *models.EmptyDataError
	)
	switch {
	case errors.As(err, &vErr):
		return http.StatusBadRequest, "validation_error"
	case errors.As(err, &pErr):
		return http.StatusUnprocessableEntity, "parse_error"
	case errors.As(err, &nErr):
		return http.StatusNotFound, "not_found"
	case errors.As(err, &eErr):
		return http.StatusOK, "empty_data"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// handleError reports an error from the analysis pipeline
func (h *AQIHandler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	status, errType := statusFor(err)

	var eErr *models.EmptyDataError
	if errors.As(err, &eErr) {
		h.sendJSON(w, EmptyResponse{Empty: true, Message: err.Error()}, http.StatusOK)
		return
	}

	h.metrics.RecordAPIError(errType, routeName(r))
	if status == http.StatusInternalServerError {
		h.logger.Error(r.Context(), "[API_ERROR] Request failed", logging.Fields{
			"path": r.URL.Path,
		}, err)
		h.sendError(w, r, "internal server error", status)
		return
	}

	h.logger.Warn(r.Context(), "[API_REJECTED] Request rejected", logging.Fields{
		"path":  r.URL.Path,
		"type":  errType,
		"error": err.Error(),
	})

	response := ErrorResponse{
		Error:   http.StatusText(status),
		Message: err.Error(),
		Code:    status,
	}
	var vErr *models.ValidationError
	if errors.As(err, &vErr) {
		response.Missing = vErr.Missing
	}
	h.sendJSON(w, response, status)
}

// sendJSON sends a JSON response
func (h *AQIHandler) sendJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// sendError sends an error response
func (h *AQIHandler) sendError(w http.ResponseWriter, r *http.Request, message string, statusCode int) {
	response := ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	}

	h.sendJSON(w, response, statusCode)
}

// RegisterRoutes registers all AQI routes
func (h *AQIHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/health", h.HealthCheck).Methods("GET")
	router.HandleFunc("/api/statistics", h.GetStatistics).Methods("GET")
	router.HandleFunc("/api/hourly", h.GetHourly).Methods("GET")
	router.HandleFunc("/api/advisory", h.GetAdvisory).Methods("GET")
	router.HandleFunc("/api/simulate", h.GetSimulation).Methods("GET")
	router.HandleFunc("/api/simulate/export", h.ExportSimulation).Methods("POST")
	router.HandleFunc("/api/scenario/options", h.GetScenarioOptions).Methods("GET")
	router.HandleFunc("/api/charts/hourly.png", h.GetHourlyChart).Methods("GET")
	router.HandleFunc("/api/charts/{column}.png", h.GetChart).Methods("GET")
	router.HandleFunc("/assets/{name}", h.GetAsset).Methods("GET")
	router.HandleFunc("/", h.Dashboard).Methods("GET")
	router.HandleFunc("/simulate", h.SimulationPage).Methods("GET")
}
