package analysis

import (
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"

	"airwatch/internal/models"
)

func ts(t *testing.T, s string) time.Time {
	t.Helper()
	v, err := time.Parse(models.TimestampLayout, s)
	if err != nil {
		t.Fatalf("parse %s: %v", s, err)
	}
	return v
}

func newSeries(readings ...models.Reading) *models.Series {
	return &models.Series{Readings: readings, HasTimestamps: true}
}

func TestComputeStatistics(t *testing.T) {
	s := newSeries(
		models.Reading{AQI: 100, PM25: 40, PM10: 60},
		models.Reading{AQI: 200, PM25: 20, PM10: 90},
		models.Reading{AQI: 150, PM25: 30, PM10: 30},
	)

	stats, err := ComputeStatistics(s)
	if err != nil {
		t.Fatalf("ComputeStatistics: %v", err)
	}

	want := models.Statistics{
		AQI:   models.PollutantStats{Average: 150, Max: 200, Min: 100},
		PM25:  models.PollutantStats{Average: 30, Max: 40, Min: 20},
		PM10:  models.PollutantStats{Average: 60, Max: 90, Min: 30},
		Count: 3,
	}
	if *stats != want {
		t.Errorf("expected %+v, got %+v", want, *stats)
	}
}

func TestComputeStatisticsEmpty(t *testing.T) {
	for _, s := range []*models.Series{nil, newSeries()} {
		_, err := ComputeStatistics(s)
		var eErr *models.EmptyDataError
		if !errors.As(err, &eErr) {
			t.Errorf("expected EmptyDataError, got %v", err)
		}
	}
}

func TestStatisticsOrderingProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for iter := 0; iter < 200; iter++ {
		n := 1 + rng.Intn(50)
		readings := make([]models.Reading, n)
		for i := range readings {
			readings[i] = models.Reading{
				AQI:  rng.Float64() * 500,
				PM25: rng.Float64() * 300,
				PM10: rng.Float64() * 400,
			}
		}
		stats, err := ComputeStatistics(newSeries(readings...))
		if err != nil {
			t.Fatalf("ComputeStatistics: %v", err)
		}
		for _, p := range []models.PollutantStats{stats.AQI, stats.PM25, stats.PM10} {
			if p.Max < p.Average-1e-9 || p.Average < p.Min-1e-9 {
				t.Fatalf("ordering violated: %+v", p)
			}
		}
	}
}

func TestAggregateHourly(t *testing.T) {
	s := newSeries(
		models.Reading{Timestamp: ts(t, "01-01-2024 10:00"), AQI: 200},
		models.Reading{Timestamp: ts(t, "01-01-2024 10:30"), AQI: 160},
		models.Reading{Timestamp: ts(t, "01-01-2024 11:00"), AQI: 100},
		models.Reading{Timestamp: ts(t, "02-01-2024 10:15"), AQI: 151},
		models.Reading{Timestamp: ts(t, "02-01-2024 18:45"), AQI: 150},
	)

	dist, err := AggregateHourly(s, DefaultSeverityThreshold)
	if err != nil {
		t.Fatalf("AggregateHourly: %v", err)
	}

	if dist.BucketCount != 4 {
		t.Errorf("expected 4 buckets, got %d", dist.BucketCount)
	}
	if dist.Counts[10] != 2 {
		t.Errorf("expected 2 exceedances at 10h, got %d", dist.Counts[10])
	}
	if dist.Counts[18] != 0 {
		t.Error("a mean equal to the threshold must not count")
	}
	if got := dist.Exceedances(); len(got) != 1 || got[10] != 2 {
		t.Errorf("unexpected exceedances %v", got)
	}
	if len(dist.Exceeding) != 2 || dist.Exceeding[0].MeanAQI != 180 {
		t.Errorf("unexpected exceeding buckets %+v", dist.Exceeding)
	}
	if dist.Safe() {
		t.Error("distribution should not be safe")
	}
}

func TestAggregateHourlyBucketsBeforeProjection(t *testing.T) {
	// hour-of-day mean would be 130, but the first day's bucket alone exceeds
	s := newSeries(
		models.Reading{Timestamp: ts(t, "01-01-2024 10:00"), AQI: 160},
		models.Reading{Timestamp: ts(t, "02-01-2024 10:00"), AQI: 100},
	)

	dist, err := AggregateHourly(s, DefaultSeverityThreshold)
	if err != nil {
		t.Fatalf("AggregateHourly: %v", err)
	}
	if dist.Counts[10] != 1 {
		t.Errorf("expected one exceeding bucket at 10h, got %d", dist.Counts[10])
	}
}

func TestAggregateHourlySafe(t *testing.T) {
	s := newSeries(
		models.Reading{Timestamp: ts(t, "01-01-2024 10:00"), AQI: 40},
		models.Reading{Timestamp: ts(t, "01-01-2024 11:00"), AQI: 90},
	)

	dist, err := AggregateHourly(s, DefaultSeverityThreshold)
	if err != nil {
		t.Fatalf("AggregateHourly: %v", err)
	}
	if !dist.Safe() {
		t.Error("expected safe distribution")
	}
	if len(dist.Exceedances()) != 0 {
		t.Errorf("expected no exceedances, got %v", dist.Exceedances())
	}
}

func TestAggregateHourlyErrors(t *testing.T) {
	noTimestamps := &models.Series{Readings: []models.Reading{{AQI: 10}}}

	tests := []struct {
		name      string
		series    *models.Series
		threshold float64
		check     func(error) bool
	}{
		{"empty", newSeries(), 150, func(err error) bool {
			var e *models.EmptyDataError
			return errors.As(err, &e)
		}},
		{"no timestamps", noTimestamps, 150, func(err error) bool {
			var e *models.ValidationError
			return errors.As(err, &e)
		}},
		{"zero threshold", newSeries(models.Reading{}), 0, func(err error) bool {
			var e *models.ValidationError
			return errors.As(err, &e)
		}},
		{"nan threshold", newSeries(models.Reading{}), math.NaN(), func(err error) bool {
			var e *models.ValidationError
			return errors.As(err, &e)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := AggregateHourly(tt.series, tt.threshold)
			if err == nil || !tt.check(err) {
				t.Errorf("unexpected error %v", err)
			}
		})
	}
}

func TestSimulateWorkedExample(t *testing.T) {
	s := newSeries(models.Reading{Timestamp: ts(t, "01-01-2024 10:00"), AQI: 120, PM25: 80, PM10: 100})
	params := models.ScenarioParameters{VegetationRatio: 0.30, EVAdoptionRatio: 0.05, SmogFilterEffectiveness: 0.40}

	adjusted, err := Simulate(s, params)
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}

	if math.Abs(adjusted.CombinedFactor-0.399) > 1e-12 {
		t.Errorf("expected factor 0.399, got %v", adjusted.CombinedFactor)
	}
	if math.Abs(adjusted.Adjusted[0].AQI-47.88) > 1e-9 {
		t.Errorf("expected adjusted AQI 47.88, got %v", adjusted.Adjusted[0].AQI)
	}

	for _, col := range []string{models.ColumnTimestamp, models.ColumnAQI, models.ColumnAQIAdjusted, models.ColumnPM25Adjusted, models.ColumnPM10Adjusted} {
		if !models.HasColumn(adjusted.Table, col) {
			t.Errorf("expected column %s in %v", col, adjusted.Table.Names())
		}
	}

	got, err := models.TableFloats(adjusted.Table, models.ColumnAQIAdjusted)
	if err != nil {
		t.Fatalf("TableFloats: %v", err)
	}
	if got[0] != adjusted.Adjusted[0].AQI {
		t.Errorf("table and readings disagree: %v vs %v", got[0], adjusted.Adjusted[0].AQI)
	}

	if s.Readings[0].AQI != 120 {
		t.Error("original series must not change")
	}
}

func TestSimulateRejectsInvalidParameters(t *testing.T) {
	s := newSeries(models.Reading{AQI: 1})
	_, err := Simulate(s, models.ScenarioParameters{VegetationRatio: 1.2})
	var vErr *models.ValidationError
	if !errors.As(err, &vErr) || vErr.Field != "vegetation_ratio" {
		t.Errorf("expected vegetation_ratio validation error, got %v", err)
	}

	if _, err := Simulate(newSeries(), models.ScenarioParameters{}); err == nil {
		t.Error("expected error for empty series")
	}
}

func TestSimulateMonotonicProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for iter := 0; iter < 500; iter++ {
		params := models.ScenarioParameters{
			VegetationRatio:         rng.Float64(),
			EVAdoptionRatio:         rng.Float64(),
			SmogFilterEffectiveness: rng.Float64(),
		}
		if iter%10 == 0 {
			params = models.ScenarioParameters{}
		}
		// loaded readings are non-negative; zero is a valid reading
		r := models.Reading{AQI: rng.Float64() * 500, PM25: rng.Float64() * 200, PM10: rng.Float64() * 300}
		if iter%7 == 0 {
			r.AQI = 0
		}

		adjusted, err := Simulate(newSeries(r), params)
		if err != nil {
			t.Fatalf("Simulate: %v", err)
		}
		a := adjusted.Adjusted[0]
		allZero := params == models.ScenarioParameters{}

		for _, pair := range [][2]float64{{r.AQI, a.AQI}, {r.PM25, a.PM25}, {r.PM10, a.PM10}} {
			if pair[1] > pair[0] {
				t.Fatalf("adjusted %v exceeds original %v for %+v", pair[1], pair[0], params)
			}
			if pair[0] > 0 && (pair[1] == pair[0]) != allZero {
				t.Fatalf("equality must hold only for zero ratios: %+v -> %v/%v", params, pair[0], pair[1])
			}
		}
	}
}

func TestFullVegetationZeroesOutput(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 50; i++ {
		params := models.ScenarioParameters{VegetationRatio: 1, EVAdoptionRatio: rng.Float64(), SmogFilterEffectiveness: rng.Float64()}
		if f := params.CombinedFactor(); f != 0 {
			t.Fatalf("expected zero factor, got %v", f)
		}
	}
}

func TestRatioOptions(t *testing.T) {
	options := RatioOptions()
	if len(options) != 19 {
		t.Fatalf("expected 19 options, got %d", len(options))
	}
	if options[0] != 0.10 || options[18] != 1.00 || options[3] != 0.25 {
		t.Errorf("unexpected options %v", options)
	}
}

func TestDefaultScenario(t *testing.T) {
	got := DefaultScenario(models.CurrentConditions{VegetationRatio: 0.30, BuiltUpRatio: 0.50, EVAdoptionRatio: 0.05})
	want := models.ScenarioParameters{VegetationRatio: 0.35, EVAdoptionRatio: 0.10, SmogFilterEffectiveness: 0.25}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}

	clamped := DefaultScenario(models.CurrentConditions{})
	if clamped.VegetationRatio != 0.10 || clamped.EVAdoptionRatio != 0.10 {
		t.Errorf("zero conditions should select the first option, got %+v", clamped)
	}
}

func TestLookupAdvisory(t *testing.T) {
	tests := []struct {
		aqi   float64
		level string
	}{
		{0, "Good"},
		{50, "Good"},
		{75, "Moderate"},
		{100, "Moderate"},
		{150, "Unhealthy for Sensitive Groups"},
		{151, "Unhealthy"},
		{300, "Very Unhealthy"},
		{301, "Hazardous"},
		{math.Inf(1), "Hazardous"},
	}
	for _, tt := range tests {
		adv, err := LookupAdvisory(tt.aqi)
		if err != nil {
			t.Fatalf("LookupAdvisory(%v): %v", tt.aqi, err)
		}
		if adv.Level != tt.level {
			t.Errorf("LookupAdvisory(%v) = %s, want %s", tt.aqi, adv.Level, tt.level)
		}
	}

	adv, _ := LookupAdvisory(75)
	if adv.Message != "Air quality is acceptable; however, some pollutants may be a concern for a small number of people." {
		t.Errorf("unexpected message %q", adv.Message)
	}
	adv, _ = LookupAdvisory(151)
	if adv.Message != "Everyone may begin to experience health effects; members of sensitive groups may experience more serious health effects." {
		t.Errorf("unexpected message %q", adv.Message)
	}
}

func TestLookupAdvisoryRejectsInvalid(t *testing.T) {
	for _, aqi := range []float64{-1, math.NaN()} {
		_, err := LookupAdvisory(aqi)
		var vErr *models.ValidationError
		if !errors.As(err, &vErr) {
			t.Errorf("LookupAdvisory(%v): expected ValidationError, got %v", aqi, err)
		}
	}
}

func TestAdvisoryMonotonic(t *testing.T) {
	prev := -1
	for aqi := 0.0; aqi <= 600; aqi += 0.5 {
		adv, err := LookupAdvisory(aqi)
		if err != nil {
			t.Fatalf("LookupAdvisory(%v): %v", aqi, err)
		}
		if adv.Tier < prev {
			t.Fatalf("tier decreased at %v", aqi)
		}
		prev = adv.Tier
	}
	if prev != len(AdvisoryLevels())-1 {
		t.Errorf("expected to reach the top tier, got %d", prev)
	}
}
