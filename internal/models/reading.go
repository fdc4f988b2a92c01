package models

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/go-gota/gota/dataframe"
)

// Column names used by the monitoring station exports
const (
	ColumnTimestamp    = "timestamp"
	ColumnAQI          = "AQIH"
	ColumnPM25         = "PM2.5"
	ColumnPM10         = "PM10"
	ColumnAQIAdjusted  = "AQI_Adjusted"
	ColumnPM25Adjusted = "PM2.5_Adjusted"
	ColumnPM10Adjusted = "PM10_Adjusted"
)

// TimestampLayout is the day-first layout of the timestamp column (DD-MM-YYYY HH:MM)
const TimestampLayout = "02-01-2006 15:04"

// PollutantColumns lists the measured columns in display order
var PollutantColumns = []string{ColumnAQI, ColumnPM25, ColumnPM10}

// AdjustedColumnFor maps a pollutant column onto its simulated counterpart
var AdjustedColumnFor = map[string]string{
	ColumnAQI:  ColumnAQIAdjusted,
	ColumnPM25: ColumnPM25Adjusted,
	ColumnPM10: ColumnPM10Adjusted,
}

// Reading represents a single air-quality sample from the monitoring station
type Reading struct {
	Timestamp time.Time `json:"timestamp"`
	AQI       float64   `json:"aqih"`
	PM25      float64   `json:"pm2_5"`
	PM10      float64   `json:"pm10"`
}

// Value returns the reading's value for a pollutant column
func (r Reading) Value(column string) (float64, bool) {
	switch column {
	case ColumnAQI:
		return r.AQI, true
	case ColumnPM25:
		return r.PM25, true
	case ColumnPM10:
		return r.PM10, true
	default:
		return 0, false
	}
}

// Series is the chronologically ordered result of one load.
// Table holds every input column (trimmed names, raw cell text) in the same
// row order as Readings; it is treated as read-only once loaded.
type Series struct {
	Source        string              `json:"source"`
	Readings      []Reading           `json:"readings"`
	HasTimestamps bool                `json:"has_timestamps"`
	Table         dataframe.DataFrame `json:"-"`
}

// Len returns the number of readings
func (s *Series) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Readings)
}

// IsEmpty reports whether the series has no readings
func (s *Series) IsEmpty() bool {
	return s.Len() == 0
}

// Values extracts a numeric column. Pollutant columns come from the typed
// readings, anything else is parsed from the raw table.
func (s *Series) Values(column string) ([]float64, error) {
	if s == nil {
		return nil, &EmptyDataError{Stage: "values"}
	}

	switch column {
	case ColumnAQI, ColumnPM25, ColumnPM10:
		out := make([]float64, len(s.Readings))
		for i, r := range s.Readings {
			out[i], _ = r.Value(column)
		}
		return out, nil
	}

	return TableFloats(s.Table, column)
}

// Names returns the column names of the raw table
func (s *Series) Names() []string {
	if s == nil {
		return nil
	}
	return s.Table.Names()
}

// TableFloats parses a column of a raw table as float64 values
func TableFloats(table dataframe.DataFrame, column string) ([]float64, error) {
	if !HasColumn(table, column) {
		return nil, NewMissingColumnsError([]string{column})
	}

	records := table.Col(column).Records()
	out := make([]float64, len(records))
	for i, raw := range records {
		v, err := ParseValue(raw)
		if err != nil {
			return nil, &ParseError{Row: i + 1, Column: column, Value: raw, Err: err}
		}
		out[i] = v
	}
	return out, nil
}

// ParseValue parses a numeric cell, rejecting NaN and infinities
func ParseValue(raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("value %q is not a finite number", raw)
	}
	return v, nil
}

// FormatValue renders a float with the shortest representation that parses back exactly
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// HasColumn reports whether a table has the named column
func HasColumn(table dataframe.DataFrame, name string) bool {
	for _, n := range table.Names() {
		if n == name {
			return true
		}
	}
	return false
}

// AdjustedReading holds the simulated values for one row
type AdjustedReading struct {
	AQI  float64 `json:"aqi_adjusted"`
	PM25 float64 `json:"pm2_5_adjusted"`
	PM10 float64 `json:"pm10_adjusted"`
}

// Value returns the adjusted value for a pollutant column
func (a AdjustedReading) Value(column string) (float64, bool) {
	switch column {
	case ColumnAQI, ColumnAQIAdjusted:
		return a.AQI, true
	case ColumnPM25, ColumnPM25Adjusted:
		return a.PM25, true
	case ColumnPM10, ColumnPM10Adjusted:
		return a.PM10, true
	default:
		return 0, false
	}
}

// AdjustedSeries is a series plus the three simulated columns.
// It is produced per simulation request and never shared between requests.
type AdjustedSeries struct {
	Original       *Series             `json:"-"`
	Parameters     ScenarioParameters  `json:"parameters"`
	CombinedFactor float64             `json:"combined_factor"`
	Adjusted       []AdjustedReading   `json:"adjusted"`
	Table          dataframe.DataFrame `json:"-"`
}

// Len returns the number of rows
func (a *AdjustedSeries) Len() int {
	if a == nil {
		return 0
	}
	return len(a.Adjusted)
}

// ScenarioParameters are the mitigation ratios supplied per simulation
type ScenarioParameters struct {
	VegetationRatio         float64 `json:"vegetation_ratio"`
	EVAdoptionRatio         float64 `json:"ev_adoption_ratio"`
	SmogFilterEffectiveness float64 `json:"smog_filter_effectiveness"`
}

// Validate checks every ratio lies in [0,1]
func (p ScenarioParameters) Validate() error {
	ratios := []struct {
		field string
		value float64
	}{
		{"vegetation_ratio", p.VegetationRatio},
		{"ev_adoption_ratio", p.EVAdoptionRatio},
		{"smog_filter_effectiveness", p.SmogFilterEffectiveness},
	}

	for _, r := range ratios {
		if math.IsNaN(r.value) || r.value < 0 || r.value > 1 {
			return &ValidationError{
				Field:   r.field,
				Value:   FormatValue(r.value),
				Message: fmt.Sprintf("%s must be between 0 and 1, got %v", r.field, r.value),
			}
		}
	}
	return nil
}

// CombinedFactor is (1 - vegetation) x (1 - EV adoption) x (1 - smog filter)
func (p ScenarioParameters) CombinedFactor() float64 {
	return (1 - p.VegetationRatio) * (1 - p.EVAdoptionRatio) * (1 - p.SmogFilterEffectiveness)
}

// CurrentConditions describes the campus as it is today
type CurrentConditions struct {
	VegetationRatio float64 `json:"vegetation_ratio"`
	BuiltUpRatio    float64 `json:"builtup_ratio"`
	EVAdoptionRatio float64 `json:"ev_adoption_ratio"`
}

// PollutantStats holds the aggregates of one column
type PollutantStats struct {
	Average float64 `json:"average"`
	Max     float64 `json:"max"`
	Min     float64 `json:"min"`
}

// Statistics is the fixed nine-value summary of a series
type Statistics struct {
	AQI   PollutantStats `json:"aqi"`
	PM25  PollutantStats `json:"pm2_5"`
	PM10  PollutantStats `json:"pm10"`
	Count int            `json:"count"`
}

// StatEntry is one labelled statistic
type StatEntry struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Entries lists the statistics in display order
func (s *Statistics) Entries() []StatEntry {
	entries := make([]StatEntry, 0, 9)
	for _, p := range []struct {
		name  string
		stats PollutantStats
	}{
		{"AQI", s.AQI},
		{"PM2.5", s.PM25},
		{"PM10", s.PM10},
	} {
		entries = append(entries,
			StatEntry{Label: "Average " + p.name, Value: p.stats.Average},
			StatEntry{Label: "Max " + p.name, Value: p.stats.Max},
			StatEntry{Label: "Min " + p.name, Value: p.stats.Min},
		)
	}
	return entries
}

// HourlyBucket is the mean of all readings inside one calendar hour
type HourlyBucket struct {
	Start    time.Time `json:"start"`
	MeanAQI  float64   `json:"mean_aqi"`
	MeanPM25 float64   `json:"mean_pm2_5"`
	MeanPM10 float64   `json:"mean_pm10"`
}

// SafeMessage is reported when no hour exceeds the severity threshold
const SafeMessage = "Air quality is generally safe throughout the day."

// HourlyDistribution counts, per hour of day, the calendar hours whose mean AQI exceeded the threshold.
// Counts carries explicit zeros so a chart axis stays stable.
type HourlyDistribution struct {
	Threshold   float64        `json:"threshold"`
	Counts      [24]int        `json:"counts"`
	Exceeding   []HourlyBucket `json:"exceeding"`
	BucketCount int            `json:"bucket_count"`
}

// Safe reports whether no bucket exceeded the threshold
func (d *HourlyDistribution) Safe() bool {
	return d == nil || len(d.Exceeding) == 0
}

// Exceedances returns only the hours with at least one exceedance
func (d *HourlyDistribution) Exceedances() map[int]int {
	out := make(map[int]int)
	if d == nil {
		return out
	}
	for hour, count := range d.Counts {
		if count > 0 {
			out[hour] = count
		}
	}
	return out
}

// Advisory is the health guidance for an AQI value
type Advisory struct {
	AQI     float64 `json:"aqi"`
	Tier    int     `json:"tier"`
	Level   string  `json:"level"`
	Message string  `json:"message"`
}

// Location is a map marker for the monitoring station
type Location struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
