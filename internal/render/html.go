package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"strings"

	echarts "github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"airwatch/internal/charts"
	"airwatch/internal/models"
)

// HTMLSurface collects report blocks and writes them as a single page.
// Charts are go-echarts pages embedded through iframe srcdoc.
type HTMLSurface struct {
	title    string
	nav      []NavLink
	blocks   []template.HTML
	markdown goldmark.Markdown
}

// NavLink is a link in the page header
type NavLink struct {
	Label string
	URL   string
}

// NewHTMLSurface creates an empty page
func NewHTMLSurface(title string, nav ...NavLink) *HTMLSurface {
	return &HTMLSurface{
		title:    title,
		nav:      nav,
		markdown: goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

var blockTemplates = template.Must(template.New("blocks").Parse(`
{{define "chart"}}<section class="chart"><iframe title="{{.Title}}" srcdoc="{{.Doc}}" width="100%" height="480" frameborder="0"></iframe></section>{{end}}
{{define "text"}}<section>{{if .Title}}<h3>{{.Title}}</h3>{{end}}{{range .Lines}}<p>{{.}}</p>{{end}}</section>{{end}}
{{define "markdown"}}<section>{{if .Title}}<h3>{{.Title}}</h3>{{end}}{{.Body}}</section>{{end}}
{{define "table"}}<section>{{if .Title}}<h3>{{.Title}}</h3>{{end}}<table><thead><tr>{{range .Header}}<th>{{.}}</th>{{end}}</tr></thead><tbody>{{range .Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>{{end}}</tbody></table></section>{{end}}
{{define "images"}}<section class="logos">{{range .}}<img src="{{.URL}}" alt="{{.Name}}" width="{{.Width}}">{{end}}</section><hr>{{end}}
{{define "map"}}<section><h3>AQI Monitoring Stations</h3><div id="station-map" style="height:400px"></div>
<script>(function(){var m=L.map('station-map').setView([{{.Latitude}},{{.Longitude}}],15);L.tileLayer('https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png',{attribution:'&copy; OpenStreetMap contributors'}).addTo(m);L.marker([{{.Latitude}},{{.Longitude}}]).addTo(m).bindTooltip({{.Name}});})();</script></section>{{end}}
{{define "page"}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<style>body{font-family:sans-serif;max-width:1100px;margin:0 auto;padding:1em}table{border-collapse:collapse}td,th{border:1px solid #ccc;padding:4px 8px}.logos img{margin-right:12px}nav a{margin-right:1em}</style>
</head>
<body>
{{if .Nav}}<nav>{{range .Nav}}<a href="{{.URL}}">{{.Label}}</a>{{end}}</nav>{{end}}
<h1>{{.Title}}</h1>
{{range .Blocks}}{{.}}
{{end}}</body>
</html>{{end}}
`))

func (s *HTMLSurface) add(name string, data interface{}) error {
	var buf bytes.Buffer
	if err := blockTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("failed to render %s block: %w", name, err)
	}
	s.blocks = append(s.blocks, template.HTML(buf.String()))
	return nil
}

// Chart adds an interactive line chart
func (s *HTMLSurface) Chart(c *charts.LineChart) error {
	line := echarts.NewLine()
	line.SetGlobalOptions(
		echarts.WithInitializationOpts(opts.Initialization{
			PageTitle: c.Title,
			Width:     "1000px",
			Height:    "440px",
		}),
		echarts.WithTitleOpts(opts.Title{Title: c.Title}),
		echarts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
		echarts.WithXAxisOpts(opts.XAxis{Name: c.XLabel}),
		echarts.WithYAxisOpts(opts.YAxis{Name: c.YLabel}),
	)
	line.SetXAxis(c.XValues())

	for i, l := range c.Lines {
		data := make([]opts.LineData, len(l.Points))
		for j, p := range l.Points {
			data[j] = opts.LineData{Value: p.Value}
		}

		lineType := "solid"
		if l.Dashed {
			lineType = "dashed"
		}
		seriesOpts := []echarts.SeriesOpts{
			echarts.WithLineStyleOpts(opts.LineStyle{Color: l.Color, Type: lineType}),
			echarts.WithItemStyleOpts(opts.ItemStyle{Color: l.Color}),
		}
		if i == 0 {
			for _, ref := range c.References {
				seriesOpts = append(seriesOpts, echarts.WithMarkLineNameYAxisItemOpts(opts.MarkLineNameYAxisItem{
					Name:  ref.Label,
					YAxis: ref.Value,
				}))
			}
		}
		line.AddSeries(l.Name, data, seriesOpts...)
	}

	var buf bytes.Buffer
	if err := line.Render(&buf); err != nil {
		return fmt.Errorf("failed to render chart %q: %w", c.Title, err)
	}
	return s.add("chart", struct {
		Title string
		Doc   string
	}{c.Title, buf.String()})
}

// Bars adds an interactive bar chart
func (s *HTMLSurface) Bars(c *charts.BarChart) error {
	bar := echarts.NewBar()
	bar.SetGlobalOptions(
		echarts.WithInitializationOpts(opts.Initialization{
			PageTitle: c.Title,
			Width:     "1000px",
			Height:    "440px",
		}),
		echarts.WithTitleOpts(opts.Title{Title: c.Title}),
		echarts.WithXAxisOpts(opts.XAxis{Name: c.XLabel}),
		echarts.WithYAxisOpts(opts.YAxis{Name: c.YLabel}),
	)

	labels := make([]string, len(c.Bars))
	data := make([]opts.BarData, len(c.Bars))
	for i, b := range c.Bars {
		labels[i] = b.Label
		data[i] = opts.BarData{Value: b.Value}
	}
	bar.SetXAxis(labels).AddSeries(c.YLabel, data, echarts.WithItemStyleOpts(opts.ItemStyle{Color: c.Color}))

	var buf bytes.Buffer
	if err := bar.Render(&buf); err != nil {
		return fmt.Errorf("failed to render chart %q: %w", c.Title, err)
	}
	return s.add("chart", struct {
		Title string
		Doc   string
	}{c.Title, buf.String()})
}

// Text adds a heading and one paragraph per line of body
func (s *HTMLSurface) Text(title, body string) error {
	var lines []string
	for _, l := range strings.Split(body, "\n") {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}
	return s.add("text", struct {
		Title string
		Lines []string
	}{title, lines})
}

// Markdown adds a block rendered from GitHub-flavoured markdown
func (s *HTMLSurface) Markdown(title, markdown string) error {
	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(markdown), &buf); err != nil {
		return fmt.Errorf("failed to convert markdown: %w", err)
	}
	return s.add("markdown", struct {
		Title string
		Body  template.HTML
	}{title, template.HTML(buf.String())})
}

// Table adds a simple data table
func (s *HTMLSurface) Table(title string, header []string, rows [][]string) error {
	return s.add("table", struct {
		Title  string
		Header []string
		Rows   [][]string
	}{title, header, rows})
}

// Map adds a Leaflet map with a marker at the station
func (s *HTMLSurface) Map(loc models.Location) error {
	return s.add("map", loc)
}

// Images adds the logo strip
func (s *HTMLSurface) Images(assets []ImageAsset) error {
	if len(assets) == 0 {
		return nil
	}
	return s.add("images", assets)
}

// Len returns the number of blocks added so far
func (s *HTMLSurface) Len() int {
	return len(s.blocks)
}

// WriteTo writes the complete page
func (s *HTMLSurface) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	err := blockTemplates.ExecuteTemplate(&buf, "page", struct {
		Title  string
		Nav    []NavLink
		Blocks []template.HTML
	}{s.title, s.nav, s.blocks})
	if err != nil {
		return 0, fmt.Errorf("failed to render page: %w", err)
	}
	n, err := w.Write(buf.Bytes())
	return int64(n), err
}
