// Package config provides unified configuration for the Loom service.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/loomhr/loom/internal/model"
)

// Config holds the configuration for the Loom service.
type Config struct {
	// Addr is the HTTP listen address
	Addr string `json:"addr" yaml:"addr"`

	// DataDir is the base directory for all data files
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// HTTP server configuration
	HTTP HTTPConfig `json:"http" yaml:"http"`

	// Training configuration for the attrition model
	Training TrainingConfig `json:"training" yaml:"training"`

	// Storage configuration for model artifacts
	Storage StorageConfig `json:"storage" yaml:"storage"`

	// Logging configuration
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	// ReadTimeout is the HTTP read timeout
	ReadTimeout time.Duration `json:"read_timeout" yaml:"read_timeout"`

	// WriteTimeout is the HTTP write timeout
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout"`

	// IdleTimeout is the HTTP idle timeout
	IdleTimeout time.Duration `json:"idle_timeout" yaml:"idle_timeout"`
}

// TrainingConfig holds random forest training parameters.
type TrainingConfig struct {
	// NumTrees is the number of trees in the forest (1–1000)
	NumTrees int `json:"num_trees" yaml:"num_trees"`

	// MaxDepth is the maximum tree depth
	MaxDepth int `json:"max_depth" yaml:"max_depth"`

	// MinLeafSize is the minimum number of samples per leaf
	MinLeafSize int `json:"min_leaf_size" yaml:"min_leaf_size"`

	// Seed is the deterministic training seed
	Seed int64 `json:"seed" yaml:"seed"`
}

// StorageConfig holds artifact storage configuration.
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

	// UsePathStyle forces path-style addressing (for MinIO and friends)
	UsePathStyle bool `json:"use_path_style" yaml:"use_path_style"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error
	Level string `json:"level" yaml:"level"`

	// Format is the log output format: text, json
	Format string `json:"format" yaml:"format"`
}

// DefaultConfig returns the default configuration for local development.
func DefaultConfig() *Config {
	forest := model.DefaultForestConfig()
	return &Config{
		Addr:    ":8000",
		DataDir: "./data/loom",
		HTTP: HTTPConfig{
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 120 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		Training: TrainingConfig{
			NumTrees:    forest.NumTrees,
			MaxDepth:    forest.MaxDepth,
			MinLeafSize: forest.MinLeafSize,
			Seed:        forest.Seed,
		},
		Storage: StorageConfig{
			Type: "local",
			Path: "",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Resolve resolves relative paths and sets defaults based on DataDir.
func (c *Config) Resolve() {
	if c.DataDir == "" {
		c.DataDir = "./data/loom"
	}
	if c.Storage.Path == "" {
		c.Storage.Path = filepath.Join(c.DataDir, "artifacts")
	}
}

// RegistryPath returns the path to the model registry database.
func (c *Config) RegistryPath() string {
	return filepath.Join(c.DataDir, "registry.db")
}

// ForestConfig returns the training parameters as a forest configuration.
func (c *Config) ForestConfig() model.ForestConfig {
	return model.ForestConfig{
		NumTrees:    c.Training.NumTrees,
		MaxDepth:    c.Training.MaxDepth,
		MinLeafSize: c.Training.MinLeafSize,
		Seed:        c.Training.Seed,
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr is required")
	}

	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}

	if c.Storage.Type != "local" && c.Storage.Type != "s3" {
		return fmt.Errorf("invalid storage type: %s (must be local or s3)", c.Storage.Type)
	}

	if c.Storage.Type == "s3" && c.Storage.S3.Bucket == "" {
		return fmt.Errorf("s3.bucket is required when storage type is s3")
	}

	if c.Training.NumTrees < 1 || c.Training.NumTrees > 1000 {
		return fmt.Errorf("training.num_trees must be between 1 and 1000, got %d", c.Training.NumTrees)
	}

	if c.Training.MaxDepth < 1 {
		return fmt.Errorf("training.max_depth must be positive, got %d", c.Training.MaxDepth)
	}

	if c.Training.MinLeafSize < 1 {
		return fmt.Errorf("training.min_leaf_size must be positive, got %d", c.Training.MinLeafSize)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}

	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return fmt.Errorf("invalid logging format: %s (must be text or json)", c.Logging.Format)
	}

	return nil
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
// Environment variables use the LOOM_ prefix.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("LOOM_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("LOOM_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}

	// HTTP configuration
	if v := os.Getenv("LOOM_HTTP_READ_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.HTTP.ReadTimeout = d
		}
	}
	if v := os.Getenv("LOOM_HTTP_WRITE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.HTTP.WriteTimeout = d
		}
	}

	// Training configuration
	if v := os.Getenv("LOOM_TRAINING_NUM_TREES"); v != "" {
		fmt.Sscanf(v, "%d", &cfg.Training.NumTrees)
	}
	if v := os.Getenv("LOOM_TRAINING_MAX_DEPTH"); v != "" {
		fmt.Sscanf(v, "%d", &cfg.Training.MaxDepth)
	}
	if v := os.Getenv("LOOM_TRAINING_SEED"); v != "" {
		fmt.Sscanf(v, "%d", &cfg.Training.Seed)
	}

	// Storage configuration
	if v := os.Getenv("LOOM_STORAGE_TYPE"); v != "" {
		cfg.Storage.Type = v
	}
	if v := os.Getenv("LOOM_STORAGE_PATH"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv("LOOM_S3_BUCKET"); v != "" {
		cfg.Storage.S3.Bucket = v
	}
	if v := os.Getenv("LOOM_S3_REGION"); v != "" {
		cfg.Storage.S3.Region = v
	}
	if v := os.Getenv("LOOM_S3_ENDPOINT"); v != "" {
		cfg.Storage.S3.Endpoint = v
	}
	if v := os.Getenv("LOOM_S3_USE_PATH_STYLE"); v != "" {
		cfg.Storage.S3.UsePathStyle = v == "true" || v == "1"
	}

	// Logging configuration
	if v := os.Getenv("LOOM_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("LOOM_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}

// EnsureDirectories creates all required directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.DataDir}
	if c.Storage.Type == "local" {
		dirs = append(dirs, c.Storage.Path)
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
