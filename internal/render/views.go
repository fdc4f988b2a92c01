package render

import (
	"fmt"
	"strings"

	"airwatch/internal/models"
	"airwatch/internal/services"
)

// Recommendations is shown above the simulation results
const Recommendations = `
- **Green Building Design**: Use energy-efficient materials and technologies.
- **Renewable Energy Sources**: Install solar panels.
- **Sustainable Transportation**: Promote cycling, walking, and provide EV charging stations.
- **Water Conservation**: Implement rainwater harvesting and drought-resistant landscaping.
- **Waste Reduction and Recycling**: Establish recycling and composting programs.
- **Green Spaces**: Create community gardens and maintain biodiversity.
- **Sustainable Food Options**: Offer locally sourced and organic food.
- **Education and Awareness**: Incorporate sustainability into the curriculum.
- **Community Engagement**: Involve students and staff in sustainability initiatives.
- **Smart Campus Technologies**: Use technology for efficient energy management.
`

// MonitoringView lays out the monitoring flow
type MonitoringView struct {
	Report   *services.MonitoringReport
	Station  models.Location
	Logos    []ImageAsset
	Advisory *models.Advisory
}

// Present writes the view onto a surface
func (v *MonitoringView) Present(s Surface) error {
	steps := []func() error{
		func() error { return s.Images(v.Logos) },
		func() error { return s.Map(v.Station) },
		func() error { return s.Table("Data Preview", v.Report.Columns, v.Report.Preview) },
		func() error { return s.Text("AQI Statistics", StatisticsText(v.Report.Statistics)) },
	}
	for _, c := range v.Report.Charts {
		c := c
		steps = append(steps, func() error { return s.Chart(c) })
	}
	steps = append(steps, func() error {
		if v.Report.HourlyChart == nil {
			return s.Text("Hourly High AQI Counts", models.SafeMessage)
		}
		return s.Bars(v.Report.HourlyChart)
	})
	if v.Advisory != nil {
		steps = append(steps, func() error {
			return s.Text("Health Tips Based on AQI Levels", fmt.Sprintf("AQI %s (%s): %s", models.FormatValue(v.Advisory.AQI), v.Advisory.Level, v.Advisory.Message))
		})
	}

	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

// SimulationView lays out the simulation flow
type SimulationView struct {
	Report *services.SimulationReport
	Logos  []ImageAsset
}

// Present writes the view onto a surface
func (v *SimulationView) Present(s Surface) error {
	if err := s.Images(v.Logos); err != nil {
		return err
	}
	if err := s.Markdown("Recommendations for a Sustainable Campus", Recommendations); err != nil {
		return err
	}
	if err := s.Text("Current Conditions", CurrentConditionsText(v.Report.Current)); err != nil {
		return err
	}
	if err := s.Text("Scenario", ScenarioText(v.Report)); err != nil {
		return err
	}
	for _, c := range v.Report.Charts {
		if err := s.Chart(c); err != nil {
			return err
		}
	}
	return nil
}

// StatisticsText renders the nine statistics one per line
func StatisticsText(stats *models.Statistics) string {
	if stats == nil {
		return "No data"
	}
	lines := make([]string, 0, 9)
	for _, e := range stats.Entries() {
		lines = append(lines, fmt.Sprintf("%s: %.2f", e.Label, e.Value))
	}
	return strings.Join(lines, "\n")
}

// CurrentConditionsText renders the campus conditions as percentages
func CurrentConditionsText(c models.CurrentConditions) string {
	return fmt.Sprintf("Vegetation Cover: %.1f%%\nBuilt-Up Area: %.1f%%\nEV Adoption Rate: %.1f%%",
		c.VegetationRatio*100, c.BuiltUpRatio*100, c.EVAdoptionRatio*100)
}

// ScenarioText summarises the chosen ratios and their effect
func ScenarioText(r *services.SimulationReport) string {
	p := r.Parameters
	lines := []string{
		fmt.Sprintf("Vegetation: %.0f%%", p.VegetationRatio*100),
		fmt.Sprintf("EV Adoption: %.0f%%", p.EVAdoptionRatio*100),
		fmt.Sprintf("Smog Filter Effectiveness: %.0f%%", p.SmogFilterEffectiveness*100),
		fmt.Sprintf("Combined factor: %.4f", r.CombinedFactor),
	}
	if r.Original != nil && r.Adjusted != nil {
		lines = append(lines, fmt.Sprintf("Average AQI: %.2f -> %.2f", r.Original.AQI.Average, r.Adjusted.AQI.Average))
	}
	return strings.Join(lines, "\n")
}
