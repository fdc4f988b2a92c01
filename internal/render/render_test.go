package render

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"airwatch/internal/charts"
	"airwatch/internal/models"
	"airwatch/internal/services"
)

func sampleLineChart() *charts.LineChart {
	base := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	return &charts.LineChart{
		Title:    "AQI Over Time",
		XLabel:   "Timestamp",
		YLabel:   "AQI",
		TimeAxis: true,
		Lines: []charts.Line{{
			Name:    "AQI (15 min intervals)",
			Color:   "#0000ff",
			Markers: true,
			Points: []charts.Point{
				{Seq: 0, Time: base, Value: 120},
				{Seq: 1, Time: base.Add(15 * time.Minute), Value: 80},
				{Seq: 2, Time: base.Add(30 * time.Minute), Value: 160},
			},
		}},
		References: charts.AQIReferences,
	}
}

func sampleBarChart() *charts.BarChart {
	bc := &charts.BarChart{Title: "Hourly High AQI Counts", YLabel: "Count", Color: "#ff0000"}
	for h := 0; h < 24; h++ {
		bc.Bars = append(bc.Bars, charts.Bar{Label: string(rune('0' + h%10)), Value: float64(h % 3)})
	}
	return bc
}

func TestPNGRenderer(t *testing.T) {
	r := NewPNGRenderer()

	var buf bytes.Buffer
	if err := r.RenderLine(&buf, sampleLineChart()); err != nil {
		t.Fatalf("RenderLine: %v", err)
	}
	if _, err := png.Decode(&buf); err != nil {
		t.Errorf("line chart is not a PNG: %v", err)
	}

	buf.Reset()
	if err := r.RenderBars(&buf, sampleBarChart()); err != nil {
		t.Fatalf("RenderBars: %v", err)
	}
	if _, err := png.Decode(&buf); err != nil {
		t.Errorf("bar chart is not a PNG: %v", err)
	}
}

func TestPNGRendererSinglePoint(t *testing.T) {
	c := &charts.LineChart{
		Title: "PM10 Over Time",
		Lines: []charts.Line{{Name: "PM10", Color: "#008000", Points: []charts.Point{{Seq: 0, Value: 42}}}},
	}
	var buf bytes.Buffer
	if err := NewPNGRenderer().RenderLine(&buf, c); err != nil {
		t.Fatalf("RenderLine: %v", err)
	}
}

func TestHTMLSurface(t *testing.T) {
	s := NewHTMLSurface("AQI Monitoring Tool", NavLink{Label: "Simulation", URL: "/simulate"})

	steps := []error{
		s.Images(LogoAssets("/assets/", []string{"nitw.png", "watch.png"})),
		s.Map(models.Location{Name: "NIT Warangal Monitoring Station", Latitude: 17.9836, Longitude: 79.5308}),
		s.Chart(sampleLineChart()),
		s.Bars(sampleBarChart()),
		s.Text("AQI Statistics", "Average AQI: 120.00\nMax AQI: 160.00"),
		s.Markdown("Recommendations for a Sustainable Campus", Recommendations),
		s.Table("Data Preview", []string{"timestamp", "AQIH"}, [][]string{{"01-01-2024 10:00", "120"}}),
	}
	for i, err := range steps {
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	if s.Len() != 7 {
		t.Errorf("expected 7 blocks, got %d", s.Len())
	}

	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	page := buf.String()

	for _, want := range []string{
		"<h1>AQI Monitoring Tool</h1>",
		`src="/assets/nitw.png"`,
		"station-map",
		"srcdoc=",
		"<strong>Green Building Design</strong>",
		"<p>Max AQI: 160.00</p>",
		"<td>01-01-2024 10:00</td>",
		`href="/simulate"`,
	} {
		if !strings.Contains(page, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestConsoleSurface(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer
	s := NewConsoleSurface(&out, dir)

	if err := s.Chart(sampleLineChart()); err != nil {
		t.Fatalf("Chart: %v", err)
	}
	if err := s.Text("AQI Statistics", "Average AQI: 1.00"); err != nil {
		t.Fatalf("Text: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "aqi_over_time.png")); err != nil {
		t.Errorf("expected chart file: %v", err)
	}
	if !strings.Contains(out.String(), "AQI Statistics\n--------------") {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestChartFileName(t *testing.T) {
	tests := map[string]string{
		"AQI Over Time":                      "aqi_over_time.png",
		"PM2.5 and Adjusted PM2.5 over Time": "pm2_5_and_adjusted_pm2_5_over_time.png",
		"???":                                "chart.png",
	}
	for in, want := range tests {
		if got := ChartFileName(in); got != want {
			t.Errorf("ChartFileName(%q) = %q, want %q", in, got, want)
		}
	}
}

type recordingSurface struct {
	calls []string
}

func (r *recordingSurface) Chart(c *charts.LineChart) error { r.calls = append(r.calls, "chart:"+c.Title); return nil }
func (r *recordingSurface) Bars(c *charts.BarChart) error  { r.calls = append(r.calls, "bars:"+c.Title); return nil }
func (r *recordingSurface) Text(title, body string) error {
	r.calls = append(r.calls, "text:"+title+":"+body)
	return nil
}
func (r *recordingSurface) Markdown(title, _ string) error { r.calls = append(r.calls, "md:"+title); return nil }
func (r *recordingSurface) Table(title string, _ []string, _ [][]string) error {
	r.calls = append(r.calls, "table:"+title)
	return nil
}
func (r *recordingSurface) Map(loc models.Location) error { r.calls = append(r.calls, "map:"+loc.Name); return nil }
func (r *recordingSurface) Images(a []ImageAsset) error   { r.calls = append(r.calls, "images"); return nil }

func TestMonitoringViewSafe(t *testing.T) {
	view := &MonitoringView{
		Report: &services.MonitoringReport{
			Statistics: &models.Statistics{},
			Charts:     []*charts.LineChart{sampleLineChart()},
			Hourly:     &models.HourlyDistribution{Threshold: 150},
		},
		Station: models.Location{Name: "station"},
	}

	rec := &recordingSurface{}
	if err := view.Present(rec); err != nil {
		t.Fatalf("Present: %v", err)
	}
	last := rec.calls[len(rec.calls)-1]
	if last != "text:Hourly High AQI Counts:"+models.SafeMessage {
		t.Errorf("expected safe message last, got %v", rec.calls)
	}
}

func TestStatisticsText(t *testing.T) {
	stats := &models.Statistics{AQI: models.PollutantStats{Average: 104.5, Max: 200, Min: 9}}
	lines := strings.Split(StatisticsText(stats), "\n")
	if len(lines) != 9 || lines[0] != "Average AQI: 104.50" || lines[2] != "Min AQI: 9.00" {
		t.Errorf("unexpected statistics text %v", lines)
	}
}

func TestCurrentConditionsText(t *testing.T) {
	got := CurrentConditionsText(models.CurrentConditions{VegetationRatio: 0.30, BuiltUpRatio: 0.50, EVAdoptionRatio: 0.05})
	want := "Vegetation Cover: 30.0%\nBuilt-Up Area: 50.0%\nEV Adoption Rate: 5.0%"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
