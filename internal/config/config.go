package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config represents the complete application configuration
type Config struct {
	Server ServerConfig
	Store  StoreConfig
	Data   DataConfig
}

// ServerConfig holds HTTP accessor surface settings
type ServerConfig struct {
	Port string
}

// StoreConfig holds snapshot store settings
type StoreConfig struct {
	Driver string // "sqlite3" or "postgres"
	DSN    string
}

// DataConfig holds import/export settings
type DataConfig struct {
	CSVDelimiter   rune
	TimeLayout     string
	ExportParallel int // concurrent table exports per dataset
}

// Load reads configuration from environment variables with defaults
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PHENOLAB_PORT", "8090"),
		},
		Store: StoreConfig{
			Driver: getEnv("PHENOLAB_STORE_DRIVER", "sqlite3"),
			DSN:    getEnv("PHENOLAB_STORE_DSN", "phenolab.db"),
		},
		Data: DataConfig{
			CSVDelimiter:   ';',
			TimeLayout:     getEnv("PHENOLAB_TIME_LAYOUT", "2006-01-02 15:04:05"),
			ExportParallel: getEnvInt("PHENOLAB_EXPORT_PARALLEL", 4),
		},
	}

	if d := os.Getenv("PHENOLAB_CSV_DELIMITER"); d != "" {
		cfg.Data.CSVDelimiter = rune(d[0])
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case "sqlite3", "postgres":
	default:
		return fmt.Errorf("unsupported store driver %q", c.Store.Driver)
	}
	if c.Data.ExportParallel < 1 {
		return fmt.Errorf("export parallelism must be at least 1, got %d", c.Data.ExportParallel)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
