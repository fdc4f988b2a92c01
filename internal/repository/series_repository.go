package repository

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"airwatch/internal/models"
	"airwatch/pkg/logging"
	"airwatch/pkg/metrics"
)

// timestampParseLayout accepts one- or two-digit day, month and hour, day first
const timestampParseLayout = "2-1-2006 15:04"

// Flow selects which columns a load must provide
type Flow int

const (
	// FlowMonitoring requires timestamp, AQIH, PM2.5 and PM10
	FlowMonitoring Flow = iota
	// FlowSimulation requires AQIH, PM2.5 and PM10; timestamps are parsed when present
	FlowSimulation
)

// RequiredColumns returns the columns the flow cannot run without
func (f Flow) RequiredColumns() []string {
	if f == FlowSimulation {
		return []string{models.ColumnAQI, models.ColumnPM25, models.ColumnPM10}
	}
	return []string{models.ColumnTimestamp, models.ColumnAQI, models.ColumnPM25, models.ColumnPM10}
}

func (f Flow) String() string {
	if f == FlowSimulation {
		return "simulation"
	}
	return "monitoring"
}

// SeriesRepository provides access to flat-file air-quality datasets
type SeriesRepository interface {
	// Load reads, validates and parses a dataset
	Load(ctx context.Context, path string, flow Flow) (*models.Series, error)

	// Export writes an adjusted series to a fresh file inside dir and returns its path
	Export(ctx context.Context, adjusted *models.AdjustedSeries, dir string, format Format) (string, error)
}

// NotFoundError represents a dataset that does not exist
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

func (e *NotFoundError) IsTransient() bool {
	return false
}

// fileRepository implements SeriesRepository on the local filesystem
type fileRepository struct {
	sheet   string
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewFileRepository creates a repository reading CSV and XLSX datasets.
// sheet selects the worksheet of XLSX inputs; empty means the first sheet.
func NewFileRepository(sheet string, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) SeriesRepository {
	return &fileRepository{
		sheet:   sheet,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// Load reads a dataset and converts it into a chronologically ordered series
func (r *fileRepository) Load(ctx context.Context, path string, flow Flow) (*models.Series, error) {
	timer := r.metrics.NewTimer(r.metrics.LoadDuration)

	r.logger.Info(ctx, "[LOAD_START] Loading dataset", logging.Fields{
		"path":  path,
		"flow":  flow.String(),
		"stage": "READ",
	})

	table, err := r.readTable(path)
	if err != nil {
		r.metrics.RecordLoadError(errorType(err))
		r.logger.Error(ctx, "[LOAD_READ_ERROR] Failed to read dataset", logging.Fields{
			"path": path,
		}, err)
		return nil, err
	}

	s, err := BuildSeries(table, flow)
	if err != nil {
		r.metrics.RecordLoadError(errorType(err))
		r.logger.Error(ctx, "[LOAD_VALIDATION_ERROR] Dataset rejected", logging.Fields{
			"path":    path,
			"flow":    flow.String(),
			"columns": table.Names(),
		}, err)
		return nil, err
	}
	s.Source = path

	duration := timer.ObserveDuration()
	r.metrics.LoadRecordsTotal.Add(float64(s.Len()))

	r.logger.Info(ctx, "[LOAD_COMPLETE] Dataset loaded", logging.Fields{
		"path":             path,
		"flow":             flow.String(),
		"rows":             s.Len(),
		"has_timestamps":   s.HasTimestamps,
		"duration_seconds": duration.Seconds(),
	})

	return s, nil
}

func (r *fileRepository) readTable(path string) (dataframe.DataFrame, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return dataframe.DataFrame{}, &NotFoundError{Resource: "dataset", ID: filepath.Base(path)}
		}
		return dataframe.DataFrame{}, fmt.Errorf("failed to stat dataset: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		records, err := readXLSXRecords(path, r.sheet)
		if err != nil {
			return dataframe.DataFrame{}, err
		}
		return recordsToTable(records)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("failed to read dataset: %w", err)
	}
	return ReadCSV(data)
}

// ReadCSV parses comma-delimited bytes into a string-typed table with trimmed header names
func ReadCSV(data []byte) (dataframe.DataFrame, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	records, err := reader.ReadAll()
	if err != nil {
		var csvErr *csv.ParseError
		if errors.As(err, &csvErr) {
			return dataframe.DataFrame{}, &models.ParseError{Row: csvErr.Line - 1, Column: "*", Value: "", Err: csvErr.Err}
		}
		return dataframe.DataFrame{}, fmt.Errorf("failed to read csv: %w", err)
	}
	return recordsToTable(records)
}

// byteOrderMark prefixes CSV files saved by Excel as UTF-8
const byteOrderMark = "\ufeff"

// recordsToTable builds a gota table from a header row plus data rows
func recordsToTable(records [][]string) (dataframe.DataFrame, error) {
	if len(records) == 0 {
		return dataframe.DataFrame{}, &models.EmptyDataError{Stage: "load", Message: "dataset is empty: no header row"}
	}

	header := make([]string, len(records[0]))
	for i, name := range records[0] {
		if i == 0 {
			name = strings.TrimPrefix(name, byteOrderMark)
		}
		header[i] = strings.TrimSpace(name)
	}

	// gota refuses a header without rows, so build the empty columns directly
	if len(records) == 1 {
		cols := make([]series.Series, len(header))
		for i, name := range header {
			cols[i] = series.New([]string{}, series.String, name)
		}
		return dataframe.New(cols...), nil
	}

	rows := make([][]string, 0, len(records))
	rows = append(rows, header)
	rows = append(rows, records[1:]...)

	table := dataframe.LoadRecords(rows,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if table.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("failed to build table: %w", table.Err)
	}
	return table, nil
}

// AQI and concentrations are never negative
var errNegativeValue = errors.New("pollutant values must not be negative")

// BuildSeries validates a raw table for the flow and parses its readings.
// Every missing column is reported before any row is parsed.
func BuildSeries(table dataframe.DataFrame, flow Flow) (*models.Series, error) {
	var missing []string
	for _, col := range flow.RequiredColumns() {
		if !models.HasColumn(table, col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, models.NewMissingColumnsError(missing)
	}

	n := table.Nrow()
	if n == 0 {
		return nil, &models.EmptyDataError{Stage: "load", Message: "dataset has no readings"}
	}

	s := &models.Series{
		Readings:      make([]models.Reading, n),
		HasTimestamps: models.HasColumn(table, models.ColumnTimestamp),
	}

	if s.HasTimestamps {
		for i, raw := range table.Col(models.ColumnTimestamp).Records() {
			ts, err := time.Parse(timestampParseLayout, strings.TrimSpace(raw))
			if err != nil {
				return nil, &models.ParseError{Row: i + 1, Column: models.ColumnTimestamp, Value: raw, Err: err}
			}
			s.Readings[i].Timestamp = ts
		}
	}

	for _, col := range models.PollutantColumns {
		for i, raw := range table.Col(col).Records() {
			v, err := models.ParseValue(strings.TrimSpace(raw))
			if err == nil && v < 0 {
				err = errNegativeValue
			}
			if err != nil {
				return nil, &models.ParseError{Row: i + 1, Column: col, Value: raw, Err: err}
			}
			switch col {
			case models.ColumnAQI:
				s.Readings[i].AQI = v
			case models.ColumnPM25:
				s.Readings[i].PM25 = v
			case models.ColumnPM10:
				s.Readings[i].PM10 = v
			}
		}
	}

	s.Table = table
	if s.HasTimestamps {
		sortChronologically(s)
	}
	return s, nil
}

// sortChronologically orders readings by timestamp and keeps the raw table aligned
func sortChronologically(s *models.Series) {
	sorted := sort.SliceIsSorted(s.Readings, func(i, j int) bool {
		return s.Readings[i].Timestamp.Before(s.Readings[j].Timestamp)
	})
	if sorted {
		return
	}

	perm := make([]int, len(s.Readings))
	for i := range perm {
		perm[i] = i
	}
	sort.SliceStable(perm, func(i, j int) bool {
		return s.Readings[perm[i]].Timestamp.Before(s.Readings[perm[j]].Timestamp)
	})

	readings := make([]models.Reading, len(perm))
	for i, p := range perm {
		readings[i] = s.Readings[p]
	}
	s.Readings = readings
	s.Table = s.Table.Subset(perm)
}

// ResolveDataset maps a dataset name onto a file inside dir.
// Only the base name is honoured so callers cannot escape dir.
func ResolveDataset(dir, name, fallback string) (string, error) {
	if name == "" {
		name = fallback
	}
	base := filepath.Base(name)
	if base != name || base == "." || base == ".." || base == string(filepath.Separator) {
		return "", &models.ValidationError{
			Field:   "dataset",
			Value:   name,
			Message: fmt.Sprintf("invalid dataset name %q", name),
		}
	}
	return filepath.Join(dir, base), nil
}

// errorType labels an error for metrics
func errorType(err error) string {
	var (
		vErr *models.ValidationError
		pErr *models.ParseError
		eErr *models.EmptyDataError
		nErr *NotFoundError
	)
	switch {
	case errors.As(err, &vErr):
		return "validation_error"
	case errors.As(err, &pErr):
		return "parse_error"
	case errors.As(err, &eErr):
		return "empty_data"
	case errors.As(err, &nErr):
		return "not_found"
	default:
		return "read_error"
	}
}
