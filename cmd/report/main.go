package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"airwatch/internal/analysis"
	"airwatch/internal/config"
	"airwatch/internal/models"
	"airwatch/internal/render"
	"airwatch/internal/repository"
	"airwatch/internal/services"
	"airwatch/pkg/logging"
	"airwatch/pkg/metrics"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Parse command-line flags
	dataFile := flag.String("data", cfg.DataFile(), "CSV or XLSX file with timestamp, AQIH, PM2.5 and PM10 columns")
	outDir := flag.String("out", "./report", "Directory for chart images")
	threshold := flag.Float64("threshold", cfg.Analysis.SeverityThreshold, "Hourly mean AQI above which an hour counts as high")
	aqi := flag.Float64("aqi", 0, "Show the health advisory for this AQI value")
	simulate := flag.Bool("simulate", false, "Run the mitigation scenario instead of the monitoring report")
	defaults := analysis.DefaultScenario(cfg.CurrentConditions())
	vegetation := flag.Float64("vegetation", defaults.VegetationRatio, "Vegetation ratio for the scenario")
	ev := flag.Float64("ev", defaults.EVAdoptionRatio, "EV adoption ratio for the scenario")
	filter := flag.Float64("filter", defaults.SmogFilterEffectiveness, "Smog filter effectiveness for the scenario")
	export := flag.Bool("export", false, "Write the adjusted data after a simulation")
	format := flag.String("format", "csv", "Export format: csv or xlsx")
	debug := flag.Bool("debug", false, "Log at debug level regardless of LOG_LEVEL")
	flag.Parse()


	// Initialize logger
	logger := logging.NewStructuredLogger("airwatch-report", "1.0.0", logging.ParseLevel(cfg.Logging.Level))
	logger.SetOutput(os.Stderr)
	if *debug {
		logger.SetLevel(logging.DebugLevel)
	}

	ctx := logging.WithDataset(context.Background(), *dataFile)
	logger.Info(ctx, "[REPORT_START] Starting air-quality report", logging.Fields{
		"version":  "1.0.0",
		"data":     *dataFile,
		"out":      *outDir,
		"simulate": *simulate,
	})

	// Initialize metrics collector
	metricsCollector := metrics.NewCollector("airwatch_report")

	repo := repository.NewFileRepository(cfg.Data.Sheet, logger, metricsCollector)
	analysisService := services.NewAnalysisService(repo, cfg.CurrentConditions(), logger, metricsCollector)

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		logger.Fatal(ctx, "[REPORT_ERROR] Failed to create output directory", logging.Fields{"out": *outDir}, err)
	}
	surface := render.NewConsoleSurface(os.Stdout, *outDir)

	if *simulate {
		params := models.ScenarioParameters{
			VegetationRatio:         *vegetation,
			EVAdoptionRatio:         *ev,
			SmogFilterEffectiveness: *filter,
		}
		runSimulation(ctx, analysisService, surface, *dataFile, params, *export, *format, cfg.Data.ExportDir, logger)
	} else {
		var advise *float64
		if isFlagSet(flag.CommandLine, "aqi") {
			advise = aqi
		}
		runMonitoring(ctx, analysisService, surface, *dataFile, *threshold, advise, cfg.StationLocation(), logger)
	}

	logger.Info(ctx, "[REPORT_COMPLETE] Report written", logging.Fields{
		"charts": len(surface.Charts),
	})
}

func runMonitoring(
	ctx context.Context,
	svc *services.AnalysisService,
	surface *render.ConsoleSurface,
	path string,
	threshold float64,
	aqi *float64,
	station models.Location,
	logger *logging.StructuredLogger,
) {
	report, err := svc.Monitor(ctx, path, threshold)
	if err != nil {
		fail(ctx, logger, "[MONITOR_ERROR] Monitoring report failed", err)
	}

	view := &render.MonitoringView{Report: report, Station: station}
	if aqi != nil {
		if view.Advisory, err = svc.Advise(ctx, *aqi); err != nil {
			fail(ctx, logger, "[ADVISORY_ERROR] Advisory lookup failed", err)
		}
	}

	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("AQI MONITORING REPORT")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Source:             %s\n", report.Source)
	fmt.Printf("Readings:           %d\n", report.Statistics.Count)
	fmt.Printf("Hourly buckets:     %d\n", report.Hourly.BucketCount)
	fmt.Printf("High AQI hours:     %d\n", len(report.Hourly.Exceeding))
	fmt.Printf("Duration:           %v\n", report.Duration)

	if err := view.Present(surface); err != nil {
		fail(ctx, logger, "[RENDER_ERROR] Failed to write report", err)
	}
}

func runSimulation(
	ctx context.Context,
	svc *services.AnalysisService,
	surface *render.ConsoleSurface,
	path string,
	params models.ScenarioParameters,
	export bool,
	rawFormat, exportDir string,
	logger *logging.StructuredLogger,
) {
	format, err := repository.ParseFormat(rawFormat)
	if err != nil {
		fail(ctx, logger, "[EXPORT_ERROR] Invalid export format", err)
	}

	report, err := svc.Simulate(ctx, path, params)
	if err != nil {
		fail(ctx, logger, "[SIMULATION_ERROR] Simulation failed", err)
	}

	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("MITIGATION SCENARIO")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Source:             %s\n", report.Source)
	fmt.Printf("Rows:               %d\n", report.Rows)
	fmt.Printf("Combined factor:    %.4f\n", report.CombinedFactor)

	view := &render.SimulationView{Report: report}
	if err := view.Present(surface); err != nil {
		fail(ctx, logger, "[RENDER_ERROR] Failed to write report", err)
	}

	if !export {
		return
	}

	out, err := svc.Export(ctx, report.Series, exportDir, format)
	if err != nil {
		fail(ctx, logger, "[EXPORT_ERROR] Export failed", err)
	}

	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Println("EXPORT COMPLETE")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("File:               %s\n", out)
}

// isFlagSet reports whether name was given on the command line
func isFlagSet(fs *flag.FlagSet, name string) bool {
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

// fail prints empty-data outcomes as a message and exits non-zero on anything else
func fail(ctx context.Context, logger *logging.StructuredLogger, message string, err error) {
	var empty *models.EmptyDataError
	if errors.As(err, &empty) {
		fmt.Println(empty.Error())
		os.Exit(0)
	}
	fmt.Fprintf(os.Stderr, "%v\n", err)
	logger.Fatal(ctx, message, logging.Fields{}, err)
}
