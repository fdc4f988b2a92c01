package render

import (
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"airwatch/internal/charts"
	"airwatch/internal/models"
)

var unsafeFileChars = regexp.MustCompile(`[^a-z0-9]+`)

// ConsoleSurface prints text blocks to a writer and saves charts as PNG files in a directory
type ConsoleSurface struct {
	out    io.Writer
	dir    string
	png    *PNGRenderer
	Charts []string
}

// NewConsoleSurface creates a surface writing charts into dir
func NewConsoleSurface(out io.Writer, dir string) *ConsoleSurface {
	return &ConsoleSurface{out: out, dir: dir, png: NewPNGRenderer()}
}

// ChartFileName derives a stable file name from a chart title
func ChartFileName(title string) string {
	name := strings.Trim(unsafeFileChars.ReplaceAllString(strings.ToLower(title), "_"), "_")
	if name == "" {
		name = "chart"
	}
	return name + ".png"
}

func (c *ConsoleSurface) Chart(lc *charts.LineChart) error {
	path := filepath.Join(c.dir, ChartFileName(lc.Title))
	if err := c.png.WriteLineFile(path, lc); err != nil {
		return err
	}
	c.Charts = append(c.Charts, path)
	fmt.Fprintf(c.out, "%s: %s\n", lc.Title, path)
	return nil
}

func (c *ConsoleSurface) Bars(bc *charts.BarChart) error {
	path := filepath.Join(c.dir, ChartFileName(bc.Title))
	if err := c.png.WriteBarsFile(path, bc); err != nil {
		return err
	}
	c.Charts = append(c.Charts, path)
	fmt.Fprintf(c.out, "%s: %s\n", bc.Title, path)
	return nil
}

func (c *ConsoleSurface) Text(title, body string) error {
	if title != "" {
		fmt.Fprintf(c.out, "\n%s\n%s\n", title, strings.Repeat("-", len(title)))
	}
	_, err := fmt.Fprintln(c.out, body)
	return err
}

// Markdown is printed as-is
func (c *ConsoleSurface) Markdown(title, markdown string) error {
	return c.Text(title, strings.TrimSpace(markdown))
}

func (c *ConsoleSurface) Table(title string, header []string, rows [][]string) error {
	lines := []string{strings.Join(header, "\t")}
	for _, row := range rows {
		lines = append(lines, strings.Join(row, "\t"))
	}
	return c.Text(title, strings.Join(lines, "\n"))
}

func (c *ConsoleSurface) Map(loc models.Location) error {
	return c.Text("Monitoring Station", fmt.Sprintf("%s (%.4f, %.4f)", loc.Name, loc.Latitude, loc.Longitude))
}

// Images are not shown on the console
func (c *ConsoleSurface) Images([]ImageAsset) error {
	return nil
}
