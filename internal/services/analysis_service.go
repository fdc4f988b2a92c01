package services

import (
	"context"
	"time"

	"airwatch/internal/analysis"
	"airwatch/internal/models"
	"airwatch/internal/repository"
	"airwatch/pkg/logging"
	"airwatch/pkg/metrics"
)

// AnalysisService runs the monitoring and simulation flows over flat-file datasets
type AnalysisService struct {
	repo    repository.SeriesRepository
	current models.CurrentConditions
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewAnalysisService creates a new analysis service
func NewAnalysisService(repo repository.SeriesRepository, current models.CurrentConditions, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *AnalysisService {
	return &AnalysisService{
		repo:    repo,
		current: current,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// CurrentConditions returns the configured campus conditions
func (s *AnalysisService) CurrentConditions() models.CurrentConditions {
	return s.current
}

// DefaultScenario returns the preselected scenario for the current conditions
func (s *AnalysisService) DefaultScenario() models.ScenarioParameters {
	return analysis.DefaultScenario(s.current)
}

// Advise returns the health advisory for an AQI value
func (s *AnalysisService) Advise(ctx context.Context, aqi float64) (*models.Advisory, error) {
	advisory, err := analysis.LookupAdvisory(aqi)
	if err != nil {
		s.logger.Warn(ctx, "[ADVISORY_REJECTED] Invalid AQI value", logging.Fields{
			"aqi":   aqi,
			"error": err.Error(),
		})
		return nil, err
	}

	s.logger.Debug(ctx, "[ADVISORY_LOOKUP] Advisory resolved", logging.Fields{
		"aqi":   aqi,
		"level": advisory.Level,
	})
	return advisory, nil
}

// load wraps the repository with timing
func (s *AnalysisService) load(ctx context.Context, path string, flow repository.Flow) (*models.Series, error) {
	start := time.Now()
	defer s.metrics.ObserveProcessing("load_"+flow.String(), start)
	return s.repo.Load(ctx, path, flow)
}
