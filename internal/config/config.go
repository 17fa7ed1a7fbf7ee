// Package config provides unified configuration for the supply-chain
// analytics service.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the service configuration.
type Config struct {
	// DataDir is the base directory for all data files
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// HTTP configuration
	HTTP HTTPConfig `json:"http" yaml:"http"`

	// Upload limits and behavior
	Upload UploadConfig `json:"upload" yaml:"upload"`

	// Storage configuration for raw upload files
	Storage StorageConfig `json:"storage" yaml:"storage"`

	// Graph mirror configuration
	Graph GraphConfig `json:"graph" yaml:"graph"`

	// Logging configuration
	Log LogConfig `json:"log" yaml:"log"`
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	// Addr is the listen address for the API server
	Addr string `json:"addr" yaml:"addr"`

	// ReadTimeout is the HTTP read timeout
	ReadTimeout time.Duration `json:"read_timeout" yaml:"read_timeout"`

	// WriteTimeout is the HTTP write timeout
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout"`

	// IdleTimeout is the HTTP idle timeout
	IdleTimeout time.Duration `json:"idle_timeout" yaml:"idle_timeout"`
}

// UploadConfig holds upload behavior configuration.
type UploadConfig struct {
	// MaxFileSizeMB caps the accepted upload size in megabytes
	MaxFileSizeMB int `json:"max_file_size_mb" yaml:"max_file_size_mb"`

	// PreviewRows is the number of rows returned by validation previews
	PreviewRows int `json:"preview_rows" yaml:"preview_rows"`
}

// StorageConfig holds raw-file storage configuration.
type StorageConfig struct {
	// Type is the storage type: local, s3
	Type string `json:"type" yaml:"type"`

	// Path is the local storage path (for local type)
	Path string `json:"path" yaml:"path"`

	// S3 configuration (for s3 type)
	S3 S3Config `json:"s3" yaml:"s3"`
}

// S3Config holds S3 storage configuration.
type S3Config struct {
	// Bucket is the S3 bucket name
	Bucket string `json:"bucket" yaml:"bucket"`

	// Region is the AWS region
	Region string `json:"region" yaml:"region"`

	// Endpoint is the S3 endpoint (for S3-compatible storage)
	Endpoint string `json:"endpoint" yaml:"endpoint"`

	// UsePathStyle enables path-style addressing (required for MinIO)
	UsePathStyle bool `json:"use_path_style" yaml:"use_path_style"`
}

// GraphConfig holds graph mirror configuration.
type GraphConfig struct {
	// Enabled controls whether the graph mirror is kept in sync
	Enabled bool `json:"enabled" yaml:"enabled"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	// Level is the minimum log level: debug, info, warn, error
	Level string `json:"level" yaml:"level"`

	// Development switches to the human-readable console encoder
	Development bool `json:"development" yaml:"development"`
}

// DefaultConfig returns the default configuration for local development.
func DefaultConfig() *Config {
	return &Config{
		DataDir: "./data/supplychain",
		HTTP: HTTPConfig{
			Addr:         ":8080",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		Upload: UploadConfig{
			MaxFileSizeMB: 50,
			PreviewRows:   10,
		},
		Storage: StorageConfig{
			Type: "local",
			Path: "",
		},
		Graph: GraphConfig{
			Enabled: true,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Resolve resolves relative paths and sets defaults based on DataDir.
func (c *Config) Resolve() {
	if c.DataDir == "" {
		c.DataDir = "./data/supplychain"
	}
	if c.Storage.Path == "" {
		c.Storage.Path = filepath.Join(c.DataDir, "storage")
	}
	if c.Upload.PreviewRows <= 0 {
		c.Upload.PreviewRows = 10
	}
}

// DatabasePath returns the path to the analytics database.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "analytics.db")
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}

	if c.Storage.Type != "local" && c.Storage.Type != "s3" {
		return fmt.Errorf("invalid storage type: %s (must be local or s3)", c.Storage.Type)
	}

	if c.Storage.Type == "s3" && c.Storage.S3.Bucket == "" {
		return fmt.Errorf("s3.bucket is required when storage type is s3")
	}

	if c.Upload.MaxFileSizeMB <= 0 || c.Upload.MaxFileSizeMB > 1024 {
		return fmt.Errorf("upload.max_file_size_mb must be between 1 and 1024, got %d", c.Upload.MaxFileSizeMB)
	}

	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}

	return nil
}

// MaxFileSizeBytes returns the upload cap in bytes.
func (c *Config) MaxFileSizeBytes() int64 {
	return int64(c.Upload.MaxFileSizeMB) * 1024 * 1024
}

// LoadFromFile loads configuration from a YAML or JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", ext)
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables use the SUPPLYCHAIN_ prefix.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("SUPPLYCHAIN_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}

	// HTTP configuration
	if v := os.Getenv("SUPPLYCHAIN_HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}

	// Upload configuration
	if v := os.Getenv("SUPPLYCHAIN_UPLOAD_MAX_FILE_SIZE_MB"); v != "" {
		fmt.Sscanf(v, "%d", &cfg.Upload.MaxFileSizeMB)
	}
	if v := os.Getenv("SUPPLYCHAIN_UPLOAD_PREVIEW_ROWS"); v != "" {
		fmt.Sscanf(v, "%d", &cfg.Upload.PreviewRows)
	}

	// Storage configuration
	if v := os.Getenv("SUPPLYCHAIN_STORAGE_TYPE"); v != "" {
		cfg.Storage.Type = v
	}
	if v := os.Getenv("SUPPLYCHAIN_STORAGE_PATH"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv("SUPPLYCHAIN_S3_BUCKET"); v != "" {
		cfg.Storage.S3.Bucket = v
	}
	if v := os.Getenv("SUPPLYCHAIN_S3_REGION"); v != "" {
		cfg.Storage.S3.Region = v
	}
	if v := os.Getenv("SUPPLYCHAIN_S3_ENDPOINT"); v != "" {
		cfg.Storage.S3.Endpoint = v
	}

	// Graph configuration
	if v := os.Getenv("SUPPLYCHAIN_GRAPH_ENABLED"); v != "" {
		cfg.Graph.Enabled = v == "true" || v == "1"
	}

	// Logging configuration
	if v := os.Getenv("SUPPLYCHAIN_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

// EnsureDirectories creates all required directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.DataDir,
		c.Storage.Path,
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
