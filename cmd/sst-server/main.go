// Package main provides the SST preview HTTP server.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.ngs.io/sst-prescription/internal/adapter/render"
	"go.ngs.io/sst-prescription/internal/adapter/store"
	"go.ngs.io/sst-prescription/internal/adapter/store/sst"
	"go.ngs.io/sst-prescription/internal/cli"
	"go.ngs.io/sst-prescription/internal/config"
	httpHandler "go.ngs.io/sst-prescription/internal/http"
	"go.ngs.io/sst-prescription/internal/usecase"
)

func main() {
	// Parse command-line flags.
	showHelp := flag.Bool("help", false, "Show usage information")
	showVersion := flag.Bool("version", false, "Show version information")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	flag.Parse()

	if *showHelp {
		printUsage()
		return
	}

	if *showVersion {
		fmt.Printf("sst-server version %s\n", cli.Version)
		return
	}

	log := cli.NewLogger(*verbose)

	// Load configuration from environment.
	port := getEnv("PORT", "8080")
	configPath := getEnv("SST_CONFIG", "")

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	cli.Override(&cfg.Paths.Input, os.Getenv("SST_INPUT_DIR"))
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	log.Info().
		Str("port", port).
		Str("config", configPath).
		Str("input", cfg.Paths.Input).
		Interface("region", cfg.Region).
		Msg("starting SST preview server")

	// Coastline overlay is optional.
	var coast *render.Coastline
	if cfg.Plot.Coastline != "" {
		coast, err = render.LoadCoastline(cfg.Plot.Coastline, cfg.Region)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load coastline")
		}
		log.Info().Int("lines", coast.Len()).Msg("coastline loaded")
	}

	renderer, err := render.NewRenderer(render.Options{
		Region:    cfg.Region,
		DPI:       cfg.Plot.DPI,
		SSTLevels: cfg.Plot.SSTLevels,
		ErrLevels: cfg.Plot.ErrLevels,
		Coastline: coast,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create renderer")
	}

	// Every request opens its own store over the configured archive.
	open := func(dataset string) (store.SnapshotLoader, error) {
		s, err := sst.NewStore(cfg.Paths.Input, dataset, cfg.Region)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	preview := usecase.NewPreviewService(open, renderer)

	// Setup router.
	router := httpHandler.SetupRouter(preview)

	// Start server.
	addr := fmt.Sprintf(":%s", port)
	log.Info().Str("addr", addr).Msg("server listening")
	log.Info().Msgf("health check: http://localhost:%s/health", port)

	if err := router.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// printUsage prints usage information.
func printUsage() {
	fmt.Printf("SST Preview Server v%s\n\n", cli.Version)
	fmt.Println("USAGE:")
	fmt.Println("  sst-server [flags]")
	fmt.Println()
	fmt.Println("FLAGS:")
	fmt.Println("  -help          Show this help message")
	fmt.Println("  -version       Show version information")
	fmt.Println("  -verbose       Enable debug logging")
	fmt.Println()
	fmt.Println("ENVIRONMENT VARIABLES:")
	fmt.Println("  PORT                    Server port (default: 8080)")
	fmt.Println("  SST_CONFIG              Configuration file, .yaml/.yml or .toml (default: built-in defaults)")
	fmt.Println("  SST_INPUT_DIR           Root directory of the SST archives (overrides paths.input)")
	fmt.Println("  CORS_ALLOWED_ORIGINS    Comma-separated list of allowed origins (default: all origins)")
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  # Start server with default settings")
	fmt.Println("  sst-server")
	fmt.Println()
	fmt.Println("  # Serve an archive on a custom port")
	fmt.Println("  PORT=3000 SST_INPUT_DIR=/data/sst sst-server")
	fmt.Println()
	fmt.Println("API ENDPOINTS:")
	fmt.Println("  GET /health                    Health check")
	fmt.Println("  GET /v1/datasets               List supported SST products")
	fmt.Println("  GET /v1/sst/filled             Filled SST grid (dataset, time, method)")
	fmt.Println("  GET /v1/sst/point              Filled SST at a location (dataset, time, lat, lon, method)")
	fmt.Println("  GET /v1/sst/map                PNG map (dataset, time, field=sst|err)")
	fmt.Println()
}
