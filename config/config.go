// Package config loads the storage layout the engine works against. Two
// directories are required at process start: one for uploaded dataset
// files, one for serialized model artifacts.
package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/codingburgas/2425-11-b-pp-student-practices-system-for-ai-experiments-ATApostolov21/pkg/errors"
)

type Config struct {
	Storage StorageConfig
	Logger  LoggerConfig
}

type StorageConfig struct {
	// DatasetDir holds one data file per uploaded dataset plus the
	// dataset ledger file.
	DatasetDir string
	// ModelDir holds one artifact file per trained model plus the
	// model ledger file.
	ModelDir string
}

type LoggerConfig struct {
	Level string
}

// Load reads configuration from environment variables with sensible
// defaults for local use.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("DATASET_DIR", "data/datasets")
	v.SetDefault("MODEL_DIR", "data/models")
	v.SetDefault("LOGGER_LEVEL", "info")

	v.AutomaticEnv()

	cfg := &Config{
		Storage: StorageConfig{
			DatasetDir: v.GetString("DATASET_DIR"),
			ModelDir:   v.GetString("MODEL_DIR"),
		},
		Logger: LoggerConfig{
			Level: v.GetString("LOGGER_LEVEL"),
		},
	}

	return cfg, nil
}

// EnsureDirs creates the storage directories if they do not exist yet.
func (c *Config) EnsureDirs() error {
	for _, dir := range []string{c.Storage.DatasetDir, c.Storage.ModelDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.NewStorageError("EnsureDirs", dir, err)
		}
	}
	return nil
}

// DatasetPath returns the path of a stored dataset file.
func (c *Config) DatasetPath(filename string) string {
	return filepath.Join(c.Storage.DatasetDir, filename)
}

// ModelPath returns the path of a stored model artifact file.
func (c *Config) ModelPath(filename string) string {
	return filepath.Join(c.Storage.ModelDir, filename)
}
