package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Config holds the service configuration. It is loaded once at process
// start and must not be mutated afterwards; every component reads it
// through value copies.
type Config struct {
	// Port is the HTTP server port.
	Port string `env:"PORT" envDefault:"8080"`

	// BigQuery destination, composed into a fully qualified table ID
	// via TableID().
	ProjectID string `env:"BQ_PROJECT_ID" envDefault:"elevated-column-458305-f8"`
	DatasetID string `env:"BQ_DATASET_ID" envDefault:"Sales_Transaction_HTTP"`
	TableName string `env:"BQ_TABLE_NAME" envDefault:"transaction"`

	// ServiceAccountFile is the path to a service account key file.
	// When empty, Application Default Credentials are used.
	ServiceAccountFile string `env:"SERVICE_ACCOUNT_FILE"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty bool   `env:"LOG_PRETTY" envDefault:"true"`
}

// Load reads the configuration from environment variables.
func Load() (Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parsing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// TableID returns the fully qualified BigQuery table ID in the
// 'project.dataset.table' format.
func (c Config) TableID() string {
	return fmt.Sprintf("%s.%s.%s", c.ProjectID, c.DatasetID, c.TableName)
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("config: PORT is required")
	}
	if c.ProjectID == "" {
		return fmt.Errorf("config: BQ_PROJECT_ID is required")
	}
	if c.DatasetID == "" {
		return fmt.Errorf("config: BQ_DATASET_ID is required")
	}
	if c.TableName == "" {
		return fmt.Errorf("config: BQ_TABLE_NAME is required")
	}
	return nil
}
