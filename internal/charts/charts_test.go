package charts

import (
	"errors"
	"testing"
	"time"

	"airwatch/internal/models"
)

func sampleSeries() *models.Series {
	base := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	return &models.Series{
		HasTimestamps: true,
		Readings: []models.Reading{
			{Timestamp: base, AQI: 120, PM25: 80, PM10: 100},
			{Timestamp: base.Add(15 * time.Minute), AQI: 60, PM25: 30, PM10: 50},
		},
	}
}

func TestReadingsChart(t *testing.T) {
	chart, err := ReadingsChart(sampleSeries(), models.ColumnAQI)
	if err != nil {
		t.Fatalf("ReadingsChart: %v", err)
	}
	if chart.Title != "AQI Over Time" || !chart.TimeAxis {
		t.Errorf("unexpected chart %+v", chart)
	}
	if len(chart.References) != 4 || chart.References[2].Label != "AQI 150 (Unhealthy for Sensitive Groups)" {
		t.Errorf("unexpected references %+v", chart.References)
	}
	line := chart.Lines[0]
	if !line.Markers || len(line.Points) != 2 || line.Points[1].Value != 60 {
		t.Errorf("unexpected line %+v", line)
	}
	if got := chart.XValues(); got[0] != "01-01-2024 10:00" || got[1] != "01-01-2024 10:15" {
		t.Errorf("unexpected x values %v", got)
	}

	pm, err := ReadingsChart(sampleSeries(), models.ColumnPM10)
	if err != nil {
		t.Fatalf("ReadingsChart: %v", err)
	}
	if len(pm.References) != 0 {
		t.Error("only AQI charts carry reference lines")
	}
}

func TestReadingsChartErrors(t *testing.T) {
	if _, err := ReadingsChart(sampleSeries(), "site"); err == nil {
		t.Error("expected error for unknown column")
	}
	var eErr *models.EmptyDataError
	if _, err := ReadingsChart(&models.Series{}, models.ColumnAQI); !errors.As(err, &eErr) {
		t.Errorf("expected EmptyDataError, got %v", err)
	}
}

func TestComparisonChart(t *testing.T) {
	s := sampleSeries()
	adjusted := &models.AdjustedSeries{
		Original: s,
		Adjusted: []models.AdjustedReading{{AQI: 47.88, PM25: 31.92, PM10: 39.9}, {AQI: 23.94, PM25: 11.97, PM10: 19.95}},
	}

	chart, err := ComparisonChart(adjusted, models.ColumnPM25)
	if err != nil {
		t.Fatalf("ComparisonChart: %v", err)
	}
	if chart.Title != "PM2.5 and Adjusted PM2.5 over Time" {
		t.Errorf("unexpected title %q", chart.Title)
	}
	if len(chart.Lines) != 2 || chart.Lines[0].Dashed || !chart.Lines[1].Dashed {
		t.Fatalf("unexpected lines %+v", chart.Lines)
	}
	if chart.Lines[0].Points[0].Value != 80 || chart.Lines[1].Points[0].Value != 31.92 {
		t.Errorf("unexpected values %+v", chart.Lines)
	}
}

func TestHourlyChart(t *testing.T) {
	dist := &models.HourlyDistribution{
		Threshold: 150,
		Exceeding: []models.HourlyBucket{{MeanAQI: 180}},
	}
	dist.Counts[10] = 2

	chart, err := HourlyChart(dist)
	if err != nil {
		t.Fatalf("HourlyChart: %v", err)
	}
	if len(chart.Bars) != 24 {
		t.Fatalf("expected 24 bars, got %d", len(chart.Bars))
	}
	if chart.Bars[10].Value != 2 || chart.Bars[10].Label != "10" || chart.Bars[0].Value != 0 {
		t.Errorf("unexpected bars %+v", chart.Bars)
	}

	_, err = HourlyChart(&models.HourlyDistribution{Threshold: 150})
	var eErr *models.EmptyDataError
	if !errors.As(err, &eErr) || err.Error() != models.SafeMessage {
		t.Errorf("expected safe message, got %v", err)
	}
}

func TestResolveColumn(t *testing.T) {
	tests := map[string]string{
		"AQIH":  models.ColumnAQI,
		"aqi":   models.ColumnAQI,
		"PM2.5": models.ColumnPM25,
		"pm25":  models.ColumnPM25,
		"PM10":  models.ColumnPM10,
	}
	for in, want := range tests {
		got, err := ResolveColumn(in)
		if err != nil || got != want {
			t.Errorf("ResolveColumn(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ResolveColumn("CO2"); err == nil {
		t.Error("expected error for unknown column")
	}
}
