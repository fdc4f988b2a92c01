package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/sethvargo/go-envconfig"

	"airwatch/internal/models"
)

// Config holds all configuration for the air-quality reporting tool
type Config struct {
	Server   ServerConfig   `env:", prefix=SERVER_"`
	Logging  LoggingConfig  `env:", prefix=LOG_"`
	Data     DataConfig     `env:", prefix=DATA_"`
	Scenario ScenarioConfig `env:", prefix=SCENARIO_"`
	Analysis AnalysisConfig `env:", prefix=ANALYSIS_"`
	Station  StationConfig  `env:", prefix=STATION_"`
}

// ServerConfig configures the HTTP presentation adapter
type ServerConfig struct {
	Host         string        `env:"HOST, default=0.0.0.0"`
	Port         int           `env:"PORT, default=8080"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT, default=15s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT, default=30s"`
	IdleTimeout  time.Duration `env:"IDLE_TIMEOUT, default=60s"`
}

// LoggingConfig configures the structured logger
type LoggingConfig struct {
	Level string `env:"LEVEL, default=info"`
}

// DataConfig locates datasets, exports and image assets
type DataConfig struct {
	Dir       string   `env:"DIR, default=./data"`
	File      string   `env:"FILE, default=AQI_fill.csv"`
	Sheet     string   `env:"SHEET"`
	ExportDir string   `env:"EXPORT_DIR, default=./exports"`
	AssetDir  string   `env:"ASSET_DIR, default=./assets"`
	Logos     []string `env:"LOGOS, default=nitw.png,cuny.png,bronx.png,kiss.png,usindia.png,watch.png"`
	Cache     bool     `env:"CACHE, default=true"`
}

// ScenarioConfig holds the current campus conditions used to seed simulations
type ScenarioConfig struct {
	VegetationRatio float64 `env:"VEGETATION_RATIO, default=0.30"`
	BuiltUpRatio    float64 `env:"BUILTUP_RATIO, default=0.50"`
	EVAdoptionRatio float64 `env:"EV_ADOPTION_RATIO, default=0.05"`
}

// AnalysisConfig holds the hourly aggregation settings
type AnalysisConfig struct {
	SeverityThreshold float64 `env:"SEVERITY_THRESHOLD, default=150"`
}

// StationConfig places the monitoring station on the map
type StationConfig struct {
	Name      string  `env:"NAME, default=NIT Warangal Monitoring Station"`
	Latitude  float64 `env:"LATITUDE, default=17.9836"`
	Longitude float64 `env:"LONGITUDE, default=79.5308"`
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	return Load(context.Background())
}

// Load loads configuration from environment variables
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	return &cfg, nil
}

// Validate checks ranges that envconfig cannot express
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Data.Dir == "" {
		return fmt.Errorf("data directory must be set")
	}
	if c.Data.File != filepath.Base(c.Data.File) {
		return fmt.Errorf("data file %q must be a file name inside the data directory", c.Data.File)
	}
	if c.Analysis.SeverityThreshold <= 0 {
		return fmt.Errorf("severity threshold must be positive, got %v", c.Analysis.SeverityThreshold)
	}
	if c.Station.Latitude < -90 || c.Station.Latitude > 90 {
		return fmt.Errorf("invalid station latitude %v", c.Station.Latitude)
	}
	if c.Station.Longitude < -180 || c.Station.Longitude > 180 {
		return fmt.Errorf("invalid station longitude %v", c.Station.Longitude)
	}

	current := c.CurrentConditions()
	for name, v := range map[string]float64{
		"vegetation ratio":  current.VegetationRatio,
		"built-up ratio":    current.BuiltUpRatio,
		"EV adoption ratio": current.EVAdoptionRatio,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s must be between 0 and 1, got %v", name, v)
		}
	}
	return nil
}

// DataFile returns the default dataset path
func (c *Config) DataFile() string {
	return filepath.Join(c.Data.Dir, c.Data.File)
}

// CurrentConditions returns the configured campus conditions
func (c *Config) CurrentConditions() models.CurrentConditions {
	return models.CurrentConditions{
		VegetationRatio: c.Scenario.VegetationRatio,
		BuiltUpRatio:    c.Scenario.BuiltUpRatio,
		EVAdoptionRatio: c.Scenario.EVAdoptionRatio,
	}
}

// StationLocation returns the monitoring station marker
func (c *Config) StationLocation() models.Location {
	return models.Location{
		Name:      c.Station.Name,
		Latitude:  c.Station.Latitude,
		Longitude: c.Station.Longitude,
	}
}
