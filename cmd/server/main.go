/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the farm resource simulation server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load config (YAML file, FARM_* environment, defaults) and flags
  2. Initialize SQLite journal
  3. Build the simulation from the farm file (or a demo farm)
  4. Run warm-up steps and register the step schedule
  5. Configure HTTP router
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -config  Config file path (default: config.yaml, optional)
  -port    HTTP server port, overrides config
  -db      SQLite database path, overrides config
           Use ":memory:" for in-memory database

ENVIRONMENT:
  FARM_PORT, FARM_SQLITE_PATH, FARM_FILE, FARM_WARMUP_STEPS, FARM_STEP_CRON

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the step schedule (waits for a running step)
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close database connection

EXAMPLES:
  # Run a farm file, one step every 10 seconds
  FARM_STEP_CRON="@every 10s" ./server -config=config.yaml

  # In-memory journal, 12 warm-up steps
  FARM_WARMUP_STEPS=12 ./server -db=":memory:"

SEE ALSO:
  - config/config.go: Configuration fields
  - factory/farm.go: Farm file schema
  - api/server.go: Router configuration
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/warp/farm-resource-engine/api"
	"github.com/warp/farm-resource-engine/config"
	"github.com/warp/farm-resource-engine/farm"
	"github.com/warp/farm-resource-engine/store/sqlite"
)

// fallbackScenario is installed when the farm file does not exist.
const fallbackScenario = "dairy-yards"

func main() {
	// Flags
	configPath := flag.String("config", "config.yaml", "Config file path")
	port := flag.String("port", "", "HTTP server port (overrides config)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *port != "" {
		cfg.Server.Port = *port
	}
	if *dbPath != "" {
		cfg.Database.SQLitePath = *dbPath
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	// Initialize journal
	if cfg.Database.SQLitePath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Database.SQLitePath), 0o755); err != nil {
			log.Fatalf("Failed to create database directory: %v", err)
		}
	}
	journal, err := sqlite.New(cfg.Database.SQLitePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer journal.Close()

	ctx := context.Background()

	// Initialize handler and simulation
	runner := farm.NewRunner(nil)
	handler := api.NewHandler(runner, journal)

	sim, err := handler.Farms.Load(cfg.Simulation.FarmFile)
	switch {
	case err == nil:
		if err := handler.Install(ctx, sim); err != nil {
			log.Fatalf("Failed to initialise farm: %v", err)
		}
		log.Printf("[Simulation] Loaded farm from %s", cfg.Simulation.FarmFile)
	case errors.Is(err, os.ErrNotExist):
		log.Printf("[Simulation] Farm file %s not found, loading demo farm %q", cfg.Simulation.FarmFile, fallbackScenario)
		if err := handler.InstallScenario(ctx, fallbackScenario); err != nil {
			log.Fatalf("Failed to load demo farm: %v", err)
		}
	default:
		log.Fatalf("Failed to load farm: %v", err)
	}

	if n := cfg.Simulation.WarmupSteps; n > 0 {
		if err := runner.StepN(ctx, n); err != nil {
			log.Fatalf("Warm-up failed: %v", err)
		}
		log.Printf("[Simulation] Warm-up complete: %d steps", n)
	}

	if cfg.Simulation.StepCron != "" {
		if err := runner.Schedule(cfg.Simulation.StepCron); err != nil {
			log.Fatalf("Failed to schedule steps: %v", err)
		}
		runner.Start()
	}

	// Create router
	router := api.NewRouter(handler)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on http://localhost:%s", cfg.Server.Port)
		log.Printf("API available at http://localhost:%s/api", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	if cfg.Simulation.StepCron != "" {
		runner.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
