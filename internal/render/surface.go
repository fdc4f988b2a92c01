// Package render draws chart specifications and report blocks onto concrete surfaces.
package render

import (
	"airwatch/internal/charts"
	"airwatch/internal/models"
)

// ImageAsset is a named image shown in the header strip
type ImageAsset struct {
	Name  string
	URL   string
	Width int
}

// Surface is a destination for report blocks. Blocks are shown in call order.
type Surface interface {
	Chart(c *charts.LineChart) error
	Bars(c *charts.BarChart) error
	Text(title, body string) error
	Markdown(title, markdown string) error
	Table(title string, header []string, rows [][]string) error
	Map(loc models.Location) error
	Images(assets []ImageAsset) error
}

// LogoAssets builds the header strip from asset file names served under baseURL
func LogoAssets(baseURL string, names []string) []ImageAsset {
	assets := make([]ImageAsset, 0, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		assets = append(assets, ImageAsset{Name: name, URL: baseURL + name, Width: 100})
	}
	return assets
}
