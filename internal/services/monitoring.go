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

// previewRows is the number of rows shown in the data preview
const previewRows = 5

// MonitoringReport is everything the monitoring view shows for one dataset
type MonitoringReport struct {
	Source      string                     `json:"source"`
	Columns     []string                   `json:"columns"`
	Preview     [][]string                 `json:"preview"`
	Statistics  *models.Statistics         `json:"statistics"`
	Charts      []*charts.LineChart        `json:"-"`
	Hourly      *models.HourlyDistribution `json:"hourly"`
	HourlyChart *charts.BarChart           `json:"-"`
	Duration    time.Duration              `json:"-"`
}

// Monitor runs the monitoring flow: statistics, one chart per pollutant and the hourly distribution
func (s *AnalysisService) Monitor(ctx context.Context, path string, threshold float64) (*MonitoringReport, error) {
	start := time.Now()

	s.logger.Info(ctx, "[MONITOR_START] Starting monitoring analysis", logging.Fields{
		"path":      path,
		"threshold": threshold,
	})

	series, err := s.load(ctx, path, repository.FlowMonitoring)
	if err != nil {
		return nil, err
	}

	report := &MonitoringReport{
		Source:  path,
		Columns: series.Names(),
		Preview: preview(series),
	}

	if report.Statistics, err = analysis.ComputeStatistics(series); err != nil {
		return nil, err
	}

	for _, col := range models.PollutantColumns {
		chart, err := charts.ReadingsChart(series, col)
		if err != nil {
			return nil, err
		}
		report.Charts = append(report.Charts, chart)
	}

	if report.Hourly, err = s.hourly(ctx, series, threshold); err != nil {
		return nil, err
	}
	if !report.Hourly.Safe() {
		if report.HourlyChart, err = charts.HourlyChart(report.Hourly); err != nil {
			return nil, err
		}
	}

	report.Duration = time.Since(start)
	s.metrics.ObserveProcessing("monitor", start)

	s.logger.Info(ctx, "[MONITOR_COMPLETE] Monitoring analysis completed", logging.Fields{
		"path":             path,
		"rows":             series.Len(),
		"exceeding_hours":  len(report.Hourly.Exceeding),
		"safe":             report.Hourly.Safe(),
		"duration_seconds": report.Duration.Seconds(),
	})

	return report, nil
}

// Statistics computes the nine summary values of a dataset
func (s *AnalysisService) Statistics(ctx context.Context, path string) (*models.Statistics, error) {
	series, err := s.load(ctx, path, repository.FlowMonitoring)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	defer s.metrics.ObserveProcessing("statistics", start)
	return analysis.ComputeStatistics(series)
}

// Hourly computes the high-AQI distribution of a dataset
func (s *AnalysisService) Hourly(ctx context.Context, path string, threshold float64) (*models.HourlyDistribution, error) {
	series, err := s.load(ctx, path, repository.FlowMonitoring)
	if err != nil {
		return nil, err
	}
	return s.hourly(ctx, series, threshold)
}

func (s *AnalysisService) hourly(ctx context.Context, series *models.Series, threshold float64) (*models.HourlyDistribution, error) {
	start := time.Now()
	defer s.metrics.ObserveProcessing("hourly", start)

	dist, err := analysis.AggregateHourly(series, threshold)
	if err != nil {
		return nil, err
	}
	s.metrics.HighAQIHours.Set(float64(len(dist.Exceeding)))

	if dist.Safe() {
		s.logger.Info(ctx, "[HOURLY_SAFE] No hour exceeded the threshold", logging.Fields{
			"threshold": threshold,
			"buckets":   dist.BucketCount,
		})
	}
	return dist, nil
}

// Chart builds the chart for one pollutant column.
// With params set the chart compares the column against its simulated counterpart.
func (s *AnalysisService) Chart(ctx context.Context, path, column string, params *models.ScenarioParameters) (*charts.LineChart, error) {
	if params == nil {
		series, err := s.load(ctx, path, repository.FlowMonitoring)
		if err != nil {
			return nil, err
		}
		return charts.ReadingsChart(series, column)
	}

	adjusted, err := s.simulate(ctx, path, *params)
	if err != nil {
		return nil, err
	}
	return charts.ComparisonChart(adjusted, column)
}

func preview(s *models.Series) [][]string {
	records := s.Table.Records()
	if len(records) <= 1 {
		return nil
	}
	rows := records[1:]
	if len(rows) > previewRows {
		rows = rows[:previewRows]
	}
	return rows
}
