package analysis

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"airwatch/internal/models"
)

// ComputeStatistics returns average, max and min of AQI, PM2.5 and PM10.
// An empty series yields EmptyDataError instead of NaN aggregates.
func ComputeStatistics(s *models.Series) (*models.Statistics, error) {
	if s.IsEmpty() {
		return nil, &models.EmptyDataError{Stage: "statistics", Message: "no data: the series has no readings"}
	}

	stats := &models.Statistics{Count: s.Len()}
	targets := map[string]*models.PollutantStats{
		models.ColumnAQI:  &stats.AQI,
		models.ColumnPM25: &stats.PM25,
		models.ColumnPM10: &stats.PM10,
	}

	for col, target := range targets {
		values, err := s.Values(col)
		if err != nil {
			return nil, err
		}
		*target = summarize(values)
	}
	return stats, nil
}

// summarize assumes a non-empty slice
func summarize(values []float64) models.PollutantStats {
	return models.PollutantStats{
		Average: stat.Mean(values, nil),
		Max:     floats.Max(values),
		Min:     floats.Min(values),
	}
}

// Summarize aggregates an arbitrary column, e.g. an adjusted one
func Summarize(values []float64) (models.PollutantStats, error) {
	if len(values) == 0 {
		return models.PollutantStats{}, &models.EmptyDataError{Stage: "statistics"}
	}
	return summarize(values), nil
}
