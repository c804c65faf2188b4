package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for sqlscribe.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (passwords, API keys) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Engine database (feedback rows + vector store)
	Database DatabaseConfig `yaml:"database"`

	// Target datasource (the database questions are answered against)
	Datasource DatasourceConfig `yaml:"datasource"`

	// Language model endpoints
	LLM       LLMConfig       `yaml:"llm"`
	Embedding EmbeddingConfig `yaml:"embedding"`

	// Vector collection settings
	Vector VectorConfig `yaml:"vector"`

	// MigrationsPath is the directory holding *.sql migration files.
	MigrationsPath string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"migrations"`
}

// DatabaseConfig holds the engine's own PostgreSQL configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"sqlscribe"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"sqlscribe"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
}

// ConnectionString returns a PostgreSQL connection URL with proper escaping.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgresql://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(c.User),
		url.QueryEscape(c.Password),
		c.Host,
		c.Port,
		url.QueryEscape(c.Database),
		c.SSLMode,
	)
}

// DatasourceConfig holds the target relational store configuration.
// Driver selects the adapter: "postgres" (default) or "mssql".
type DatasourceConfig struct {
	Driver   string `yaml:"driver" env:"DATASOURCE_DRIVER" env-default:"postgres"`
	Host     string `yaml:"host" env:"DATASOURCE_HOST" env-default:"localhost"`
	Port     int    `yaml:"port" env:"DATASOURCE_PORT" env-default:"5432"`
	User     string `yaml:"user" env:"DATASOURCE_USER" env-default:"app_user"`
	Password string `yaml:"-" env:"DATASOURCE_PASSWORD"` // Secret - not in YAML
	Database string `yaml:"database" env:"DATASOURCE_DATABASE" env-default:"app_db"`
	SSLMode  string `yaml:"ssl_mode" env:"DATASOURCE_SSLMODE" env-default:"disable"`
}

// Dialect returns the SQL dialect name used in prompt instructions.
func (c *DatasourceConfig) Dialect() string {
	switch c.Driver {
	case "mssql":
		return "SQL Server"
	default:
		return "PostgreSQL"
	}
}

// LLMConfig holds the completion endpoint configuration.
// Provider selects the wire contract: "ollama" (native /api/generate,
// default) or "openai" (OpenAI-compatible chat completions).
type LLMConfig struct {
	Provider       string  `yaml:"provider" env:"LLM_PROVIDER" env-default:"ollama"`
	BaseURL        string  `yaml:"base_url" env:"LLM_BASE_URL" env-default:"http://localhost:11434"`
	Model          string  `yaml:"model" env:"LLM_MODEL" env-default:"llama3.2:3b-instruct-q4_0"`
	APIKey         string  `yaml:"-" env:"LLM_API_KEY"` // Secret - not in YAML
	Temperature    float64 `yaml:"temperature" env:"LLM_TEMPERATURE" env-default:"0.1"`
	TopP           float64 `yaml:"top_p" env:"LLM_TOP_P" env-default:"0.9"`
	MaxTokens      int     `yaml:"max_tokens" env:"LLM_MAX_TOKENS" env-default:"500"`
	TimeoutSeconds int     `yaml:"timeout_seconds" env:"LLM_TIMEOUT_SECONDS" env-default:"90"`
}

// Timeout returns the completion request timeout as a duration.
func (c *LLMConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// EmbeddingConfig holds the embedding endpoint configuration.
// BaseURL and Provider fall back to the LLM settings when empty.
type EmbeddingConfig struct {
	Provider       string `yaml:"provider" env:"EMBEDDING_PROVIDER" env-default:""`
	BaseURL        string `yaml:"base_url" env:"EMBEDDING_BASE_URL" env-default:""`
	Model          string `yaml:"model" env:"EMBEDDING_MODEL" env-default:"nomic-embed-text"`
	APIKey         string `yaml:"-" env:"EMBEDDING_API_KEY"` // Secret - not in YAML
	TimeoutSeconds int    `yaml:"timeout_seconds" env:"EMBEDDING_TIMEOUT_SECONDS" env-default:"30"`

	// Dimensions is the fixed vector length produced by the embedding model.
	// Must match the vector column type of the collection (see migrations).
	Dimensions int `yaml:"dimensions" env:"EMBEDDING_DIMENSIONS" env-default:"768"`
}

// Timeout returns the embedding request timeout as a duration.
func (c *EmbeddingConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// VectorConfig holds vector collection settings.
type VectorConfig struct {
	Collection string `yaml:"collection" env:"VECTOR_COLLECTION" env-default:"db_schema"`
}

// Load reads configuration from config.yaml with environment variable
// overrides. If config.yaml does not exist, configuration comes from the
// environment alone. The version parameter is injected at build time and set
// on the returned Config.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if _, err := os.Stat("config.yaml"); err == nil {
		if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment config: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	// Embedding endpoint defaults to the completion endpoint.
	if cfg.Embedding.BaseURL == "" {
		cfg.Embedding.BaseURL = cfg.LLM.BaseURL
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = cfg.LLM.Provider
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Datasource.Driver {
	case "postgres", "mssql":
	default:
		return fmt.Errorf("unsupported datasource driver %q", c.Datasource.Driver)
	}

	switch c.LLM.Provider {
	case "ollama", "openai":
	default:
		return fmt.Errorf("unsupported llm provider %q", c.LLM.Provider)
	}

	if c.Embedding.Dimensions <= 0 {
		return fmt.Errorf("embedding dimensions must be positive, got %d", c.Embedding.Dimensions)
	}

	return nil
}
