package analysis

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/stat"

	"airwatch/internal/models"
)

// DefaultSeverityThreshold flags an hour as high AQI
const DefaultSeverityThreshold = 150.0

const bucketKeyLayout = "2006-01-02T15"

const columnBucket = "bucket"

// AggregateHourly averages readings per calendar hour, keeps the buckets whose
// mean AQI is strictly above threshold, then counts the survivors per hour of day.
// Buckets from different days fall into the same hour-of-day count.
func AggregateHourly(s *models.Series, threshold float64) (*models.HourlyDistribution, error) {
	if math.IsNaN(threshold) || threshold <= 0 {
		return nil, &models.ValidationError{
			Field:   "threshold",
			Value:   models.FormatValue(threshold),
			Message: fmt.Sprintf("threshold must be a positive AQI value, got %v", threshold),
		}
	}
	if s.IsEmpty() {
		return nil, &models.EmptyDataError{Stage: "hourly", Message: "no data: the series has no readings"}
	}
	if !s.HasTimestamps {
		return nil, models.NewMissingColumnsError([]string{models.ColumnTimestamp})
	}

	buckets, err := hourlyBuckets(s)
	if err != nil {
		return nil, err
	}

	dist := &models.HourlyDistribution{
		Threshold:   threshold,
		BucketCount: len(buckets),
	}
	for _, b := range buckets {
		if b.MeanAQI > threshold {
			dist.Exceeding = append(dist.Exceeding, b)
			dist.Counts[b.Start.Hour()]++
		}
	}
	return dist, nil
}

// hourlyBuckets groups the readings by truncated timestamp and averages each group
func hourlyBuckets(s *models.Series) ([]models.HourlyBucket, error) {
	keys := make([]string, s.Len())
	aqi := make([]float64, s.Len())
	pm25 := make([]float64, s.Len())
	pm10 := make([]float64, s.Len())
	for i, r := range s.Readings {
		keys[i] = r.Timestamp.Truncate(time.Hour).Format(bucketKeyLayout)
		aqi[i], pm25[i], pm10[i] = r.AQI, r.PM25, r.PM10
	}

	df := dataframe.New(
		series.New(keys, series.String, columnBucket),
		series.New(aqi, series.Float, models.ColumnAQI),
		series.New(pm25, series.Float, models.ColumnPM25),
		series.New(pm10, series.Float, models.ColumnPM10),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("failed to build hourly frame: %w", df.Err)
	}

	groups := df.GroupBy(columnBucket).GetGroups()
	buckets := make([]models.HourlyBucket, 0, len(groups))
	for _, group := range groups {
		key := group.Col(columnBucket).Elem(0).String()
		start, err := time.Parse(bucketKeyLayout, key)
		if err != nil {
			return nil, fmt.Errorf("invalid hourly bucket %q: %w", key, err)
		}
		buckets = append(buckets, models.HourlyBucket{
			Start:    start,
			MeanAQI:  stat.Mean(group.Col(models.ColumnAQI).Float(), nil),
			MeanPM25: stat.Mean(group.Col(models.ColumnPM25).Float(), nil),
			MeanPM10: stat.Mean(group.Col(models.ColumnPM10).Float(), nil),
		})
	}

	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Start.Before(buckets[j].Start)
	})
	return buckets, nil
}
