package config

import (
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Cache      CacheConfig      `yaml:"cache"`
	Rules      RulesConfig      `yaml:"rules"`
	Translator TranslatorConfig `yaml:"translator"`
	Lookup     LookupConfig     `yaml:"lookup"`
	Log        LogConfig        `yaml:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"60s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// CacheConfig holds glossary cache settings.
type CacheConfig struct {
	TTL          time.Duration `yaml:"ttl"           env:"CACHE_TTL"           env-default:"5m"`
	SnapshotPath string        `yaml:"snapshot_path" env:"CACHE_SNAPSHOT_PATH" env-default:"./glossary-cache.json"`
}

// RulesConfig holds translation rule set settings. An empty Path loads the
// embedded canonical rules.
type RulesConfig struct {
	Path string `yaml:"path" env:"RULES_PATH"`
}

// TranslatorConfig holds settings for the translation model.
type TranslatorConfig struct {
	// APIKey is not validated at load time so tools that never call the
	// model (migrations) can share the config.
	APIKey        string        `yaml:"api_key"         env:"TRANSLATOR_API_KEY"`
	Model         string        `yaml:"model"           env:"TRANSLATOR_MODEL"           env-default:"claude-sonnet-4-5"`
	MaxTokens     int           `yaml:"max_tokens"      env:"TRANSLATOR_MAX_TOKENS"      env-default:"8192"`
	Temperature   float64       `yaml:"temperature"     env:"TRANSLATOR_TEMPERATURE"     env-default:"0.2"`
	Timeout       time.Duration `yaml:"timeout"         env:"TRANSLATOR_TIMEOUT"         env-default:"120s"`
	MaxInputChars int           `yaml:"max_input_chars" env:"TRANSLATOR_MAX_INPUT_CHARS" env-default:"50000"`
}

// LookupConfig holds terminology lookup settings.
type LookupConfig struct {
	SourceTimeout   time.Duration `yaml:"source_timeout"   env:"LOOKUP_SOURCE_TIMEOUT"   env-default:"10s"`
	SourcePriority  string        `yaml:"source_priority"  env:"LOOKUP_SOURCE_PRIORITY"  env-default:"termium,oqlf"`
	BreakerFailures uint32        `yaml:"breaker_failures" env:"LOOKUP_BREAKER_FAILURES" env-default:"3"`
	BreakerCooldown time.Duration `yaml:"breaker_cooldown" env:"LOOKUP_BREAKER_COOLDOWN" env-default:"60s"`

	// Priority is parsed from SourcePriority during validation.
	Priority []string `yaml:"-" env:"-"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}
