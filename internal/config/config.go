package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Storage drivers understood by the persistence layer.
const (
	StorageMemory  = "memory"
	StorageSQLite  = "sqlite"
	StorageMongoDB = "mongodb"
)

// CSV encodings understood by the exporter.
const (
	CSVModeQuoted   = "quoted"
	CSVModeSanitize = "sanitize"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Storage   StorageConfig
	Cache     CacheConfig
	Dashboard DashboardConfig
	Reporting ReportingConfig
	Export    ExportConfig
	Sheets    SheetsConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string `env:"APP_PORT" envDefault:"8080"`
}

// LogConfig tunes the zap logger.
type LogConfig struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`
}

// StorageConfig selects and configures the key-value backend.
type StorageConfig struct {
	Driver     string `env:"STORAGE_DRIVER" envDefault:"sqlite"`
	SQLitePath string `env:"SQLITE_PATH" envDefault:"herdboard.db"`
	MongoDB    MongoDBConfig
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI        string `env:"MONGODB_URI" envDefault:"mongodb://localhost:27017"`
	DBName     string `env:"MONGODB_DB_NAME" envDefault:"herdboard"`
	Collection string `env:"MONGODB_COLLECTION" envDefault:"kv"`
}

// CacheConfig controls the expiring cache.
type CacheConfig struct {
	TTL           time.Duration `env:"CACHE_TTL" envDefault:"5m"`
	PurgeSchedule string        `env:"CACHE_PURGE_SCHEDULE" envDefault:"@every 1m"`
}

// DashboardConfig controls the facade.
type DashboardConfig struct {
	SimulatedLatency time.Duration `env:"SIMULATED_LATENCY" envDefault:"300ms"`
	SeedDemoHerd     bool          `env:"SEED_DEMO_HERD" envDefault:"true"`
}

// ReportingConfig holds scheduler-related settings.
type ReportingConfig struct {
	WarmSchedule string `env:"REPORT_WARM_SCHEDULE" envDefault:"0 6 * * *"`
	Timezone     string `env:"TIMEZONE" envDefault:"UTC"`
}

// ExportConfig tunes the CSV exporter.
type ExportConfig struct {
	CSVMode string `env:"EXPORT_CSV_MODE" envDefault:"quoted"`
}

// SheetsConfig contains configuration required to push exports to Google Sheets.
// The sink is disabled while either field is empty.
type SheetsConfig struct {
	CredentialsPath string `env:"GOOGLE_SHEETS_CREDENTIALS_PATH"`
	SpreadsheetID   string `env:"GOOGLE_SHEET_EXPORT_ID"`
	Range           string `env:"GOOGLE_SHEET_EXPORT_RANGE" envDefault:"Export!A1"`
}

// Enabled reports whether the Sheets export sink is configured.
func (s SheetsConfig) Enabled() bool {
	return s.CredentialsPath != "" && s.SpreadsheetID != ""
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Ignore the returned error here; missing .env files are acceptable when
		// configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	switch c.Storage.Driver {
	case StorageMemory:
	case StorageSQLite:
		if c.Storage.SQLitePath == "" {
			return errors.New("SQLITE_PATH must be provided for the sqlite driver")
		}
	case StorageMongoDB:
		if c.Storage.MongoDB.URI == "" {
			return errors.New("MONGODB_URI must be provided for the mongodb driver")
		}
		if c.Storage.MongoDB.DBName == "" {
			return errors.New("MONGODB_DB_NAME must be provided for the mongodb driver")
		}
		if c.Storage.MongoDB.Collection == "" {
			return errors.New("MONGODB_COLLECTION must not be empty")
		}
	default:
		return fmt.Errorf("STORAGE_DRIVER %q is not supported", c.Storage.Driver)
	}

	if c.Cache.TTL <= 0 {
		return errors.New("CACHE_TTL must be positive")
	}

	if c.Dashboard.SimulatedLatency < 0 {
		return errors.New("SIMULATED_LATENCY must not be negative")
	}

	switch c.Export.CSVMode {
	case CSVModeQuoted, CSVModeSanitize:
	default:
		return fmt.Errorf("EXPORT_CSV_MODE %q is not supported", c.Export.CSVMode)
	}

	if _, err := time.LoadLocation(c.Reporting.Timezone); err != nil {
		return fmt.Errorf("TIMEZONE %q is invalid: %w", c.Reporting.Timezone, err)
	}

	if c.Sheets.SpreadsheetID != "" && c.Sheets.CredentialsPath == "" {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH must be provided when GOOGLE_SHEET_EXPORT_ID is set")
	}

	return nil
}
