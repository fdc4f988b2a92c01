// Package charts builds render-ready chart specifications from analysis results.
// It does not draw anything; see internal/render for the surfaces that do.
package charts

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"airwatch/internal/models"
)

// Point is one sample. Seq is the row position, used as x when the series has no timestamps.
type Point struct {
	Seq   int       `json:"seq"`
	Time  time.Time `json:"time,omitempty"`
	Value float64   `json:"value"`
}

// Line is a plotted series
type Line struct {
	Name    string  `json:"name"`
	Color   string  `json:"color"`
	Dashed  bool    `json:"dashed"`
	Markers bool    `json:"markers"`
	Points  []Point `json:"points"`
}

// ReferenceLine is a fixed horizontal threshold
type ReferenceLine struct {
	Value float64 `json:"value"`
	Label string  `json:"label"`
	Color string  `json:"color"`
}

// LineChart is a time-series chart specification
type LineChart struct {
	Title      string          `json:"title"`
	XLabel     string          `json:"x_label"`
	YLabel     string          `json:"y_label"`
	TimeAxis   bool            `json:"time_axis"`
	Grid       bool            `json:"grid"`
	Lines      []Line          `json:"lines"`
	References []ReferenceLine `json:"references,omitempty"`
}

// Bar is one labelled bar
type Bar struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// BarChart is a categorical chart specification
type BarChart struct {
	Title  string `json:"title"`
	XLabel string `json:"x_label"`
	YLabel string `json:"y_label"`
	Color  string `json:"color"`
	Bars   []Bar  `json:"bars"`
}

// AQIReferences are the fixed AQI thresholds drawn on AQI charts
var AQIReferences = []ReferenceLine{
	{Value: 50, Label: "AQI 50 (Good)", Color: "#0000ff"},
	{Value: 100, Label: "AQI 100 (Moderate)", Color: "#ffff00"},
	{Value: 150, Label: "AQI 150 (Unhealthy for Sensitive Groups)", Color: "#ffa500"},
	{Value: 200, Label: "AQI 200 (Unhealthy)", Color: "#ff0000"},
}

type columnStyle struct {
	title         string
	yLabel        string
	legend        string
	color         string
	compareLabel  string
	compareColor  string
	adjustedColor string
}

var styles = map[string]columnStyle{
	models.ColumnAQI: {
		title: "AQI Over Time", yLabel: "AQI", legend: "AQI (15 min intervals)", color: "#0000ff",
		compareLabel: "AQI", compareColor: "#0000ff", adjustedColor: "#00ffff",
	},
	models.ColumnPM25: {
		title: "PM2.5 Over Time", yLabel: "PM2.5 Concentration (µg/m³)", legend: "PM2.5", color: "#ffa500",
		compareLabel: "PM2.5", compareColor: "#008000", adjustedColor: "#00ff00",
	},
	models.ColumnPM10: {
		title: "PM10 Over Time", yLabel: "PM10 Concentration (µg/m³)", legend: "PM10", color: "#008000",
		compareLabel: "PM10", compareColor: "#ffa500", adjustedColor: "#ffff00",
	},
}

// ResolveColumn maps user input such as "aqi" or "pm25" onto a pollutant column
func ResolveColumn(name string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "aqi", "aqih":
		return models.ColumnAQI, nil
	case "pm2.5", "pm25", "pm2_5":
		return models.ColumnPM25, nil
	case "pm10":
		return models.ColumnPM10, nil
	}
	return "", &models.ValidationError{
		Field:   "column",
		Value:   name,
		Message: fmt.Sprintf("unknown column %q, expected one of %s", name, strings.Join(models.PollutantColumns, ", ")),
	}
}

// ReadingsChart plots one pollutant column with a marker per sample.
// AQI charts carry the fixed threshold reference lines.
func ReadingsChart(s *models.Series, column string) (*LineChart, error) {
	style, ok := styles[column]
	if !ok {
		return nil, &models.ValidationError{Field: "column", Value: column, Message: fmt.Sprintf("cannot chart column %q", column)}
	}
	if s.IsEmpty() {
		return nil, &models.EmptyDataError{Stage: "chart", Message: "no data to chart"}
	}

	chart := &LineChart{
		Title:    style.title,
		XLabel:   "Timestamp",
		YLabel:   style.yLabel,
		TimeAxis: s.HasTimestamps,
		Lines: []Line{{
			Name:    style.legend,
			Color:   style.color,
			Markers: true,
			Points:  points(s, func(r models.Reading, _ int) float64 { v, _ := r.Value(column); return v }),
		}},
	}
	if column == models.ColumnAQI {
		chart.References = append([]ReferenceLine(nil), AQIReferences...)
	}
	return chart, nil
}

// ComparisonChart plots an original column against its dashed adjusted counterpart
func ComparisonChart(adjusted *models.AdjustedSeries, column string) (*LineChart, error) {
	style, ok := styles[column]
	if !ok {
		return nil, &models.ValidationError{Field: "column", Value: column, Message: fmt.Sprintf("cannot chart column %q", column)}
	}
	if adjusted.Len() == 0 || adjusted.Original.Len() != adjusted.Len() {
		return nil, &models.EmptyDataError{Stage: "chart", Message: "no adjusted data to chart"}
	}

	s := adjusted.Original
	return &LineChart{
		Title:    fmt.Sprintf("%s and Adjusted %s over Time", style.compareLabel, style.compareLabel),
		XLabel:   "Timestamp",
		YLabel:   style.compareLabel,
		TimeAxis: s.HasTimestamps,
		Grid:     true,
		Lines: []Line{
			{
				Name:   "Original " + style.compareLabel,
				Color:  style.compareColor,
				Points: points(s, func(r models.Reading, _ int) float64 { v, _ := r.Value(column); return v }),
			},
			{
				Name:   "Adjusted " + style.compareLabel,
				Color:  style.adjustedColor,
				Dashed: true,
				Points: points(s, func(_ models.Reading, i int) float64 { v, _ := adjusted.Adjusted[i].Value(column); return v }),
			},
		},
	}, nil
}

// HourlyChart has one bar per hour of day, zeros included.
// A safe distribution has nothing to plot and yields EmptyDataError.
func HourlyChart(dist *models.HourlyDistribution) (*BarChart, error) {
	if dist.Safe() {
		return nil, &models.EmptyDataError{Stage: "hourly", Message: models.SafeMessage}
	}

	chart := &BarChart{
		Title:  "Hourly High AQI Counts",
		XLabel: "Hour of Day",
		YLabel: "Count of High AQI Readings",
		Color:  "#ff0000",
		Bars:   make([]Bar, len(dist.Counts)),
	}
	for hour, count := range dist.Counts {
		chart.Bars[hour] = Bar{Label: strconv.Itoa(hour), Value: float64(count)}
	}
	return chart, nil
}

func points(s *models.Series, value func(models.Reading, int) float64) []Point {
	out := make([]Point, len(s.Readings))
	for i, r := range s.Readings {
		out[i] = Point{Seq: i, Value: value(r, i)}
		if s.HasTimestamps {
			out[i].Time = r.Timestamp
		}
	}
	return out
}

// XValues returns the x axis labels for a line chart
func (c *LineChart) XValues() []string {
	if len(c.Lines) == 0 {
		return nil
	}
	labels := make([]string, len(c.Lines[0].Points))
	for i, p := range c.Lines[0].Points {
		if c.TimeAxis {
			labels[i] = p.Time.Format(models.TimestampLayout)
		} else {
			labels[i] = strconv.Itoa(p.Seq)
		}
	}
	return labels
}
