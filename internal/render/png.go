package render

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"airwatch/internal/charts"
)

// PNGRenderer draws chart specifications as PNG images
type PNGRenderer struct {
	Width  int
	Height int
}

// NewPNGRenderer creates a renderer with the default canvas size
func NewPNGRenderer() *PNGRenderer {
	return &PNGRenderer{Width: 1000, Height: 500}
}

func color(hex string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
}

// RenderLine writes a line chart as PNG
func (p *PNGRenderer) RenderLine(w io.Writer, c *charts.LineChart) error {
	if len(c.Lines) == 0 || len(c.Lines[0].Points) == 0 {
		return fmt.Errorf("chart %q has no points", c.Title)
	}

	graph := chart.Chart{
		Title:  c.Title,
		Width:  p.Width,
		Height: p.Height,
		TitleStyle: chart.Style{
			FontSize: 14,
		},
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Name: c.XLabel,
		},
		YAxis: chart.YAxis{
			Name: c.YLabel,
		},
	}
	if c.TimeAxis {
		graph.XAxis.ValueFormatter = chart.TimeValueFormatterWithFormat("02-01 15:04")
	}
	if c.Grid {
		grid := chart.Style{StrokeColor: drawing.ColorFromHex("dddddd"), StrokeWidth: 1}
		graph.XAxis.GridMajorStyle = grid
		graph.YAxis.GridMajorStyle = grid
	}

	xMin, xMax := math.Inf(1), math.Inf(-1)
	yMin, yMax := math.Inf(1), math.Inf(-1)
	for _, line := range c.Lines {
		style := chart.Style{
			StrokeColor: color(line.Color),
			StrokeWidth: 2,
		}
		if line.Dashed {
			style.StrokeDashArray = []float64{6, 4}
		}
		if line.Markers {
			style.DotColor = color(line.Color)
			style.DotWidth = 3
		}

		xs, ys := make([]float64, len(line.Points)), make([]float64, len(line.Points))
		times := make([]time.Time, len(line.Points))
		for i, pt := range line.Points {
			xs[i] = float64(pt.Seq)
			if c.TimeAxis {
				times[i] = pt.Time
				xs[i] = chart.TimeToFloat64(pt.Time)
			}
			ys[i] = pt.Value
			xMin, xMax = math.Min(xMin, xs[i]), math.Max(xMax, xs[i])
			yMin, yMax = math.Min(yMin, ys[i]), math.Max(yMax, ys[i])
		}

		if c.TimeAxis {
			graph.Series = append(graph.Series, chart.TimeSeries{Name: line.Name, Style: style, XValues: times, YValues: ys})
		} else {
			graph.Series = append(graph.Series, chart.ContinuousSeries{Name: line.Name, Style: style, XValues: xs, YValues: ys})
		}
	}

	for _, ref := range c.References {
		style := chart.Style{
			StrokeColor:     color(ref.Color),
			StrokeWidth:     1.5,
			StrokeDashArray: []float64{5, 5},
		}
		graph.Series = append(graph.Series, chart.ContinuousSeries{
			Name:    ref.Label,
			Style:   style,
			XValues: []float64{xMin, xMax},
			YValues: []float64{ref.Value, ref.Value},
		})
		yMin, yMax = math.Min(yMin, ref.Value), math.Max(yMax, ref.Value)
	}

	// go-chart rejects zero-width ranges
	if xMin == xMax {
		pad := 1.0
		if c.TimeAxis {
			pad = float64(time.Hour)
		}
		graph.XAxis.Range = &chart.ContinuousRange{Min: xMin - pad, Max: xMax + pad}
	}
	if yMin == yMax {
		graph.YAxis.Range = &chart.ContinuousRange{Min: yMin - 1, Max: yMax + 1}
	}

	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("failed to render %q: %w", c.Title, err)
	}
	return nil
}

// RenderBars writes a bar chart as PNG
func (p *PNGRenderer) RenderBars(w io.Writer, c *charts.BarChart) error {
	if len(c.Bars) == 0 {
		return fmt.Errorf("chart %q has no bars", c.Title)
	}

	maxValue := 0.0
	bars := make([]chart.Value, len(c.Bars))
	for i, b := range c.Bars {
		bars[i] = chart.Value{
			Label: b.Label,
			Value: b.Value,
			Style: chart.Style{
				FillColor:   color(c.Color),
				StrokeColor: color(c.Color),
			},
		}
		maxValue = math.Max(maxValue, b.Value)
	}

	graph := chart.BarChart{
		Title:    c.Title,
		Width:    p.Width,
		Height:   p.Height,
		BarWidth: 28,
		TitleStyle: chart.Style{
			FontSize: 14,
		},
		Background: chart.Style{
			Padding: chart.Box{Top: 40},
		},
		YAxis: chart.YAxis{
			Name:  c.YLabel,
			Range: &chart.ContinuousRange{Min: 0, Max: maxValue + 1},
		},
		Bars: bars,
	}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("failed to render %q: %w", c.Title, err)
	}
	return nil
}

// WriteLineFile renders a line chart into path
func (p *PNGRenderer) WriteLineFile(path string, c *charts.LineChart) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer f.Close()
	return p.RenderLine(f, c)
}

// WriteBarsFile renders a bar chart into path
func (p *PNGRenderer) WriteBarsFile(path string, c *charts.BarChart) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer f.Close()
	return p.RenderBars(f, c)
}
