// Roon Relay - controller sidecar
//
// This is the main entry point for the Roon Relay sidecar. The relay pairs
// with a Roon core, tracks zone and output state, resolves album artwork,
// and streams a line-delimited JSON protocol to its host process over
// stdout. Logs go to stderr; stdout carries nothing but protocol lines.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nerrad567/roon-relay/internal/artwork"
	"github.com/nerrad567/roon-relay/internal/infrastructure/config"
	"github.com/nerrad567/roon-relay/internal/infrastructure/logging"
	"github.com/nerrad567/roon-relay/internal/infrastructure/telemetry"
	"github.com/nerrad567/roon-relay/internal/protocol"
	"github.com/nerrad567/roon-relay/internal/roon"
	"github.com/nerrad567/roon-relay/internal/zone"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Roon Relay",
		"version", version,
		"commit", commit,
	)

	// Load configuration; a missing file falls back to defaults so the
	// relay runs with zero configuration.
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// The emitter owns stdout from here on.
	emitter := protocol.NewEmitter(os.Stdout)
	emitter.SetLogger(log)

	// Artwork pipeline: LRU cache behind a deadline-guarded fetcher.
	cache := artwork.NewCache(cfg.Artwork.CacheCapacity, cfg.GetCacheTTL())
	fetcher := artwork.NewFetcher(cache, cfg.GetFetchTimeout(), cfg.Artwork.ThumbnailSize)
	fetcher.SetLogger(log)

	// State reconciliation
	reconciler := zone.NewReconciler(emitter, fetcher)
	reconciler.SetLogger(log)

	// Connect to InfluxDB (optional)
	var telemetryClient *telemetry.Client
	if cfg.Telemetry.Enabled {
		telemetryClient, err = telemetry.Connect(cfg.Telemetry)
		if err != nil {
			return fmt.Errorf("connecting telemetry: %w", err)
		}
		defer func() {
			log.Info("closing telemetry connection")
			if closeErr := telemetryClient.Close(); closeErr != nil {
				log.Error("error closing telemetry", "error", closeErr)
			}
		}()
		log.Info("telemetry connected",
			"url", cfg.Telemetry.URL,
			"org", cfg.Telemetry.Org,
			"bucket", cfg.Telemetry.Bucket,
		)

		telemetryClient.SetOnError(func(err error) {
			log.Error("telemetry write error", "error", err)
		})

		fetcher.SetTelemetry(telemetryClient)
		reconciler.SetTelemetry(telemetryClient)
	} else {
		log.Info("telemetry disabled")
	}

	// Connection supervisor drives the pairing lifecycle until shutdown.
	supervisor := roon.NewSupervisor(cfg, emitter, reconciler, fetcher, cache)
	supervisor.SetLogger(log)
	if telemetryClient != nil {
		supervisor.SetTelemetry(telemetryClient)
	}

	emitter.Emit(protocol.NewStatus(protocol.StatusDiscovering, "starting up"))
	log.Info("initialisation complete, supervising core connection")

	if err := supervisor.Run(ctx); err != nil {
		return fmt.Errorf("supervising core connection: %w", err)
	}

	log.Info("shutdown signal received, cleaning up")
	log.Info("Roon Relay stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses ROONRELAY_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("ROONRELAY_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
