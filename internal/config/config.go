// Package config provides configuration loading and structs for the
// companymatch server and CLI.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application. The backend location and
// index name live here and are passed into the engine at construction time;
// nothing reads them from process-wide state.
type Config struct {
	Debug   bool          `yaml:"debug"`
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Match   MatchConfig   `yaml:"match"`
	Dataset DatasetConfig `yaml:"dataset"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds paths for the record database and the search index root.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
	IndexPath    string `yaml:"index_path"`
}

// MatchConfig holds matching engine settings.
type MatchConfig struct {
	// IndexName is the search index queried by every tier.
	IndexName string `yaml:"index_name"`
	// BatchConcurrency bounds how many names of a batch resolve at once.
	BatchConcurrency int `yaml:"batch_concurrency"`
	// MaxBatchSize caps the number of names accepted in one request.
	MaxBatchSize int `yaml:"max_batch_size"`
}

// DatasetConfig holds reference dataset loading settings.
type DatasetConfig struct {
	// Directories are watched for changed dataset files when the server runs.
	Directories []string `yaml:"directories"`
	// Extensions filters which files are loaded (default .csv and .xlsx).
	Extensions []string `yaml:"extensions"`
	// ChunkSize is the number of records per store/index write batch.
	ChunkSize int `yaml:"chunk_size"`
}

// Load reads and parses the config file at path, expands paths, and applies
// defaults. Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Storage.IndexPath = expandPath(cfg.Storage.IndexPath, configDir)
	for i := range cfg.Dataset.Directories {
		cfg.Dataset.Directories[i] = expandPath(cfg.Dataset.Directories[i], configDir)
	}

	return &cfg, nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are
// relative to configDir; other relative paths are relative to the home
// directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
