// Package main implements the supply-chain analytics API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/ayusingh-54/supply-chain-analytics/internal/app"
	"github.com/ayusingh-54/supply-chain-analytics/internal/config"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	var (
		configFile  string
		dataDir     string
		httpAddr    string
		storageType string
		logLevel    string
		showVersion bool
		showHelp    bool
	)

	flag.StringVar(&configFile, "config", "", "Path to configuration file (YAML or JSON)")
	flag.StringVar(&dataDir, "data-dir", "", "Base directory for all data files")
	flag.StringVar(&httpAddr, "http-addr", "", "HTTP listen address for the API server")
	flag.StringVar(&storageType, "storage", "", "Storage type for raw uploads: local, s3")
	flag.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showHelp, "help", false, "Show help message")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "supplychain - supply-chain analytics backend\n\n")
		fmt.Fprintf(os.Stderr, "Usage: supplychain [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  supplychain --data-dir /data/supplychain\n")
		fmt.Fprintf(os.Stderr, "  supplychain --config /etc/supplychain/config.yaml\n")
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  SUPPLYCHAIN_DATA_DIR       Base directory for data files\n")
		fmt.Fprintf(os.Stderr, "  SUPPLYCHAIN_HTTP_ADDR      HTTP listen address\n")
		fmt.Fprintf(os.Stderr, "  SUPPLYCHAIN_STORAGE_TYPE   Storage type (local, s3)\n")
		fmt.Fprintf(os.Stderr, "  SUPPLYCHAIN_S3_BUCKET      S3 bucket for raw uploads\n")
		fmt.Fprintf(os.Stderr, "  SUPPLYCHAIN_LOG_LEVEL      Log level\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("supplychain version %s (commit: %s)\n", version, commit)
		os.Exit(0)
	}

	// A local .env is optional; real environments set variables directly.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: failed to load .env: %v", err)
	}

	cfg, err := loadConfig(configFile, dataDir, httpAddr, storageType, logLevel)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := application.Start(ctx); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	if err := application.WaitForShutdown(ctx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}

	if err := application.Stop(context.Background()); err != nil {
		log.Printf("Stop error: %v", err)
		os.Exit(1)
	}
}

// loadConfig layers configuration from file, environment, and command
// line flags, lowest priority first.
func loadConfig(configFile, dataDir, httpAddr, storageType, logLevel string) (*config.Config, error) {
	var cfg *config.Config
	var err error

	if configFile != "" {
		cfg, err = config.LoadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	} else {
		cfg = config.DefaultConfig()
	}

	config.LoadFromEnv(cfg)

	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if httpAddr != "" {
		cfg.HTTP.Addr = httpAddr
	}
	if storageType != "" {
		cfg.Storage.Type = storageType
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	return cfg, nil
}
