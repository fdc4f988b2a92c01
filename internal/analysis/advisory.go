package analysis

import (
	"fmt"
	"math"

	"airwatch/internal/models"
)

type advisoryTier struct {
	upper   float64
	level   string
	message string
}

// advisoryTiers use inclusive upper bounds; the last tier catches everything above 300
var advisoryTiers = []advisoryTier{
	{50, "Good", "Air quality is satisfactory; air pollution poses little or no risk."},
	{100, "Moderate", "Air quality is acceptable; however, some pollutants may be a concern for a small number of people."},
	{150, "Unhealthy for Sensitive Groups", "Members of sensitive groups may experience health effects. The general public is less likely to be affected."},
	{200, "Unhealthy", "Everyone may begin to experience health effects; members of sensitive groups may experience more serious health effects."},
	{300, "Very Unhealthy", "Health alert: everyone may experience more serious health effects."},
	{math.Inf(1), "Hazardous", "Health warnings of emergency conditions. The entire population is more likely to be affected."},
}

// LookupAdvisory maps an AQI value to its health advisory.
// Negative and NaN values are rejected.
func LookupAdvisory(aqi float64) (*models.Advisory, error) {
	if math.IsNaN(aqi) || aqi < 0 {
		return nil, &models.ValidationError{
			Field:   "aqi",
			Value:   models.FormatValue(aqi),
			Message: fmt.Sprintf("AQI must be a non-negative number, got %v", aqi),
		}
	}

	for i, tier := range advisoryTiers {
		if aqi <= tier.upper {
			return &models.Advisory{
				AQI:     aqi,
				Tier:    i,
				Level:   tier.level,
				Message: tier.message,
			}, nil
		}
	}
	// unreachable: the last tier is unbounded
	return nil, fmt.Errorf("no advisory tier for AQI %v", aqi)
}

// AdvisoryLevels returns the tier names in ascending severity
func AdvisoryLevels() []string {
	levels := make([]string, len(advisoryTiers))
	for i, t := range advisoryTiers {
		levels[i] = t.level
	}
	return levels
}
