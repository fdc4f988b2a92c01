package services

import (
	"context"
	"time"

	"airwatch/internal/analysis"
	"airwatch/internal/charts"
	"airwatch/internal/models"
	"airwatch/internal/repository"
	"airwatch/pkg/logging"
)

// SimulationReport is everything the simulation view shows for one scenario
type SimulationReport struct {
	Source         string                    `json:"source"`
	Current        models.CurrentConditions  `json:"current_conditions"`
	Parameters     models.ScenarioParameters `json:"parameters"`
	CombinedFactor float64                   `json:"combined_factor"`
	Original       *models.Statistics        `json:"original"`
	Adjusted       *models.Statistics        `json:"adjusted"`
	Rows           int                       `json:"rows"`
	Series         *models.AdjustedSeries    `json:"-"`
	Charts         []*charts.LineChart       `json:"-"`
}

// Simulate runs the simulation flow and builds the original-versus-adjusted charts
func (s *AnalysisService) Simulate(ctx context.Context, path string, params models.ScenarioParameters) (*SimulationReport, error) {
	adjusted, err := s.simulate(ctx, path, params)
	if err != nil {
		return nil, err
	}

	report := &SimulationReport{
		Source:         path,
		Current:        s.current,
		Parameters:     params,
		CombinedFactor: adjusted.CombinedFactor,
		Rows:           adjusted.Len(),
		Series:         adjusted,
	}

	if report.Original, err = analysis.ComputeStatistics(adjusted.Original); err != nil {
		return nil, err
	}
	if report.Adjusted, err = adjustedStatistics(adjusted); err != nil {
		return nil, err
	}

	for _, col := range models.PollutantColumns {
		chart, err := charts.ComparisonChart(adjusted, col)
		if err != nil {
			return nil, err
		}
		report.Charts = append(report.Charts, chart)
	}
	return report, nil
}

func (s *AnalysisService) simulate(ctx context.Context, path string, params models.ScenarioParameters) (*models.AdjustedSeries, error) {
	start := time.Now()

	s.logger.Info(ctx, "[SIMULATE_START] Starting scenario simulation", logging.Fields{
		"path":                      path,
		"vegetation_ratio":          params.VegetationRatio,
		"ev_adoption_ratio":         params.EVAdoptionRatio,
		"smog_filter_effectiveness": params.SmogFilterEffectiveness,
	})

	if err := params.Validate(); err != nil {
		return nil, err
	}

	series, err := s.load(ctx, path, repository.FlowSimulation)
	if err != nil {
		return nil, err
	}

	adjusted, err := analysis.Simulate(series, params)
	if err != nil {
		return nil, err
	}

	s.metrics.SimulationsTotal.Inc()
	s.metrics.CombinedFactor.Observe(adjusted.CombinedFactor)
	s.metrics.ObserveProcessing("simulate", start)

	s.logger.Info(ctx, "[SIMULATE_COMPLETE] Scenario simulation completed", logging.Fields{
		"path":             path,
		"rows":             adjusted.Len(),
		"combined_factor":  adjusted.CombinedFactor,
		"duration_seconds": time.Since(start).Seconds(),
	})
	return adjusted, nil
}

// adjustedStatistics summarises the three simulated columns
func adjustedStatistics(a *models.AdjustedSeries) (*models.Statistics, error) {
	stats := &models.Statistics{Count: a.Len()}
	targets := map[string]*models.PollutantStats{
		models.ColumnAQI:  &stats.AQI,
		models.ColumnPM25: &stats.PM25,
		models.ColumnPM10: &stats.PM10,
	}
	for col, target := range targets {
		values := make([]float64, a.Len())
		for i, r := range a.Adjusted {
			values[i], _ = r.Value(col)
		}
		summary, err := analysis.Summarize(values)
		if err != nil {
			return nil, err
		}
		*target = summary
	}
	return stats, nil
}

// Export writes the adjusted series into a fresh file under dir
func (s *AnalysisService) Export(ctx context.Context, adjusted *models.AdjustedSeries, dir string, format repository.Format) (string, error) {
	start := time.Now()
	defer s.metrics.ObserveProcessing("export", start)
	return s.repo.Export(ctx, adjusted, dir, format)
}
