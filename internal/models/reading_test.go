package models

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gota/gota/dataframe"
)

// TestScenarioParameters_CombinedFactor covers the mitigation product
func TestScenarioParameters_CombinedFactor(t *testing.T) {
	tests := []struct {
		name   string
		params ScenarioParameters
		want   float64
	}{
		{
			name:   "worked example",
			params: ScenarioParameters{VegetationRatio: 0.30, EVAdoptionRatio: 0.05, SmogFilterEffectiveness: 0.40},
			want:   0.399,
		},
		{
			name:   "no mitigation",
			params: ScenarioParameters{},
			want:   1,
		},
		{
			name:   "full vegetation zeroes output",
			params: ScenarioParameters{VegetationRatio: 1, EVAdoptionRatio: 0.2, SmogFilterEffectiveness: 0.5},
			want:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.params.CombinedFactor()
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("CombinedFactor() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScenarioParameters_Validate(t *testing.T) {
	tests := []struct {
		name    string
		params  ScenarioParameters
		wantErr bool
		field   string
	}{
		{"all zero", ScenarioParameters{}, false, ""},
		{"all one", ScenarioParameters{1, 1, 1}, false, ""},
		{"negative vegetation", ScenarioParameters{VegetationRatio: -0.1}, true, "vegetation_ratio"},
		{"ev above one", ScenarioParameters{EVAdoptionRatio: 1.05}, true, "ev_adoption_ratio"},
		{"filter NaN", ScenarioParameters{SmogFilterEffectiveness: math.NaN()}, true, "smog_filter_effectiveness"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				return
			}
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
			if vErr.Field != tt.field {
				t.Errorf("Field = %q, want %q", vErr.Field, tt.field)
			}
		})
	}
}

func TestStatistics_EntriesOrder(t *testing.T) {
	stats := &Statistics{
		AQI:  PollutantStats{Average: 2, Max: 3, Min: 1},
		PM25: PollutantStats{Average: 20, Max: 30, Min: 10},
		PM10: PollutantStats{Average: 200, Max: 300, Min: 100},
	}

	want := []StatEntry{
		{"Average AQI", 2}, {"Max AQI", 3}, {"Min AQI", 1},
		{"Average PM2.5", 20}, {"Max PM2.5", 30}, {"Min PM2.5", 10},
		{"Average PM10", 200}, {"Max PM10", 300}, {"Min PM10", 100},
	}

	got := stats.Entries()
	if len(got) != len(want) {
		t.Fatalf("len(Entries()) = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Entries()[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestHourlyDistribution_Exceedances(t *testing.T) {
	var d HourlyDistribution
	if !d.Safe() {
		t.Error("empty distribution should be safe")
	}

	d.Counts[8] = 2
	d.Counts[17] = 1
	d.Exceeding = []HourlyBucket{{}, {}, {}}

	if d.Safe() {
		t.Error("distribution with exceeding buckets should not be safe")
	}

	got := d.Exceedances()
	if len(got) != 2 || got[8] != 2 || got[17] != 1 {
		t.Errorf("Exceedances() = %v, want map[8:2 17:1]", got)
	}
}

func TestSeries_Values(t *testing.T) {
	table := dataframe.LoadRecords([][]string{
		{"timestamp", "AQIH", "PM2.5", "PM10", "Extra"},
		{"01-01-2024 10:00", "120", "80", "100", "1.5"},
	})
	s := &Series{
		Readings: []Reading{{AQI: 120, PM25: 80, PM10: 100}},
		Table:    table,
	}

	aqi, err := s.Values(ColumnAQI)
	if err != nil || len(aqi) != 1 || aqi[0] != 120 {
		t.Errorf("Values(AQIH) = %v, %v", aqi, err)
	}

	extra, err := s.Values("Extra")
	if err != nil || len(extra) != 1 || extra[0] != 1.5 {
		t.Errorf("Values(Extra) = %v, %v", extra, err)
	}

	if _, err := s.Values("Missing"); err == nil {
		t.Error("expected error for missing column")
	}
}

func TestParseValue(t *testing.T) {
	for _, raw := range []string{"NaN", "Inf", "-Inf", "abc", ""} {
		if _, err := ParseValue(raw); err == nil {
			t.Errorf("ParseValue(%q) should fail", raw)
		}
	}

	v := 0.1 + 0.2
	got, err := ParseValue(FormatValue(v))
	if err != nil || got != v {
		t.Errorf("FormatValue round trip = %v, %v; want %v", got, err, v)
	}
}

func TestErrors(t *testing.T) {
	missing := NewMissingColumnsError([]string{"PM2.5", "PM10"})
	if missing.Error() != "required column(s) not found in the data: PM2.5, PM10" {
		t.Errorf("Error() = %q", missing.Error())
	}
	if missing.IsTransient() {
		t.Error("ValidationError should not be transient")
	}

	cause := errors.New("bad layout")
	pErr := &ParseError{Row: 3, Column: "timestamp", Value: "2024-01-01", Err: cause}
	if !errors.Is(pErr, cause) {
		t.Error("ParseError should unwrap to its cause")
	}

	empty := &EmptyDataError{Stage: "statistics"}
	if empty.Error() != "statistics: no data" {
		t.Errorf("Error() = %q", empty.Error())
	}
}
