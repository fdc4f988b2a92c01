package analysis

import (
	"math"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"airwatch/internal/models"
)

const (
	ratioMin  = 0.10
	ratioMax  = 1.00
	ratioStep = 0.05

	// defaultFilterOption is the preselected smog filter option (0.25)
	defaultFilterOption = 3
)

// Simulate scales AQI, PM2.5 and PM10 of every row by the combined mitigation factor.
// The adjusted columns are appended to a copy of the raw table; s is not modified.
func Simulate(s *models.Series, params models.ScenarioParameters) (*models.AdjustedSeries, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if s.IsEmpty() {
		return nil, &models.EmptyDataError{Stage: "simulate", Message: "no data: the series has no readings"}
	}

	factor := params.CombinedFactor()
	adjusted := &models.AdjustedSeries{
		Original:       s,
		Parameters:     params,
		CombinedFactor: factor,
		Adjusted:       make([]models.AdjustedReading, s.Len()),
	}

	columns := map[string][]string{}
	for _, col := range models.PollutantColumns {
		columns[col] = make([]string, s.Len())
	}
	for i, r := range s.Readings {
		a := models.AdjustedReading{
			AQI:  r.AQI * factor,
			PM25: r.PM25 * factor,
			PM10: r.PM10 * factor,
		}
		adjusted.Adjusted[i] = a
		columns[models.ColumnAQI][i] = models.FormatValue(a.AQI)
		columns[models.ColumnPM25][i] = models.FormatValue(a.PM25)
		columns[models.ColumnPM10][i] = models.FormatValue(a.PM10)
	}

	table := baseTable(s)
	for _, col := range models.PollutantColumns {
		table = table.Mutate(series.New(columns[col], series.String, models.AdjustedColumnFor[col]))
		if table.Err != nil {
			return nil, table.Err
		}
	}
	adjusted.Table = table

	return adjusted, nil
}

// baseTable copies the raw table, or rebuilds one from the readings when the
// series was assembled without it
func baseTable(s *models.Series) dataframe.DataFrame {
	if s.Table.Ncol() > 0 {
		return s.Table.Copy()
	}

	var cols []series.Series
	if s.HasTimestamps {
		ts := make([]string, s.Len())
		for i, r := range s.Readings {
			ts[i] = r.Timestamp.Format(models.TimestampLayout)
		}
		cols = append(cols, series.New(ts, series.String, models.ColumnTimestamp))
	}
	for _, col := range models.PollutantColumns {
		values := make([]string, s.Len())
		for i, r := range s.Readings {
			v, _ := r.Value(col)
			values[i] = models.FormatValue(v)
		}
		cols = append(cols, series.New(values, series.String, col))
	}
	return dataframe.New(cols...)
}

// RatioOptions lists the selectable ratios from 0.10 to 1.00 in steps of 0.05
func RatioOptions() []float64 {
	n := int(math.Round((ratioMax-ratioMin)/ratioStep)) + 1
	options := make([]float64, n)
	for i := range options {
		options[i] = math.Round((ratioMin+float64(i)*ratioStep)*100) / 100
	}
	return options
}

// DefaultScenario preselects options from the current campus conditions:
// the option at index floor(ratio*20)-1 for vegetation and EV adoption, 0.25 for the smog filter.
func DefaultScenario(current models.CurrentConditions) models.ScenarioParameters {
	options := RatioOptions()
	pick := func(ratio float64) float64 {
		idx := int(math.Floor(ratio*20+1e-9)) - 1
		if idx < 0 {
			idx = 0
		}
		if idx >= len(options) {
			idx = len(options) - 1
		}
		return options[idx]
	}

	return models.ScenarioParameters{
		VegetationRatio:         pick(current.VegetationRatio),
		EVAdoptionRatio:         pick(current.EVAdoptionRatio),
		SmogFilterEffectiveness: options[defaultFilterOption],
	}
}
