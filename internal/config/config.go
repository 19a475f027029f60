package config

import (
	"time"
)

// Config is the root application configuration.
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Providers ProvidersConfig `yaml:"providers"`
	Enrich    EnrichConfig    `yaml:"enrich"`
	Log       LogConfig       `yaml:"log"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// ProvidersConfig holds settings for the external dictionary sources.
type ProvidersConfig struct {
	Jisho   ProviderConfig `yaml:"jisho"`
	Tatoeba ProviderConfig `yaml:"tatoeba"`
}

// ProviderConfig holds settings for one external source. An empty BaseURL
// means the adapter's built-in public endpoint.
type ProviderConfig struct {
	BaseURL string        `yaml:"base_url" env-default:""`
	Timeout time.Duration `yaml:"timeout"  env-default:"10s"`
}

// EnrichConfig holds example-backfill settings.
type EnrichConfig struct {
	ExamplesPerGloss int `yaml:"examples_per_gloss" env:"ENRICH_EXAMPLES_PER_GLOSS" env-default:"3"`
	Concurrency      int `yaml:"concurrency"        env:"ENRICH_CONCURRENCY"        env-default:"4"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}
