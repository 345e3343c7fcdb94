package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// Data locations
	RawDataPath string `mapstructure:"RAW_DATA_PATH"`
	DatasetPath string `mapstructure:"DATASET_PATH"`
	ModelDir    string `mapstructure:"MODEL_DIR"`

	// Parquet reader/writer goroutines
	ParquetParallelism int64 `mapstructure:"PARQUET_PARALLELISM"`

	// Run registry
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	RecordRuns  bool   `mapstructure:"RECORD_RUNS"`
}

func LoadConfig() (*Config, error) {
	return load(".", "..")
}

func load(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "")
	v.SetDefault("RAW_DATA_PATH", "data/atp_data.csv")
	v.SetDefault("DATASET_PATH", "data/atp_data_production.parquet")
	v.SetDefault("MODEL_DIR", ".")
	v.SetDefault("PARQUET_PARALLELISM", 4)
	v.SetDefault("DATABASE_URL", "data/acebet.db")
	v.SetDefault("RECORD_RUNS", true)

	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if config.ParquetParallelism < 1 {
		config.ParquetParallelism = 1
	}

	return &config, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// UsesPostgres reports whether the registry lives in PostgreSQL rather than a SQLite file.
func (c *Config) UsesPostgres() bool {
	return strings.HasPrefix(c.DatabaseURL, "postgres://") || strings.HasPrefix(c.DatabaseURL, "postgresql://")
}
