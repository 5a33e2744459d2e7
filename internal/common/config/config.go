// internal/common/config/config.go
package config

import (
	"fmt"
	"time"

	"indiamart-audit/internal/llm"
	"indiamart-audit/internal/reconcile/advisory"
)

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig               `mapstructure:"app"`
	Camunda       CamundaConfig           `mapstructure:"camunda"`
	Database      DatabaseConfig          `mapstructure:"database"`
	LLM           LLMConfig               `mapstructure:"llm"`
	Audit         AuditConfig             `mapstructure:"audit"`
	Notifications NotificationConfig      `mapstructure:"notifications"`
	Workers       map[string]WorkerConfig `mapstructure:"workers"`
	Logging       LoggingConfig           `mapstructure:"logging"`
	Metrics       MetricsConfig           `mapstructure:"metrics"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	Plaintext      bool   `mapstructure:"plaintext"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// ElasticsearchConfig is optional; result indexing is off without addresses.
type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
}

func (e ElasticsearchConfig) Enabled() bool {
	return len(e.Addresses) > 0
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// LLMConfig points at an OpenAI-compatible chat completions endpoint.
type LLMConfig struct {
	BaseURL        string  `mapstructure:"base_url"`
	APIKey         string  `mapstructure:"api_key"`
	Model          string  `mapstructure:"model"`
	Timeout        int     `mapstructure:"timeout"` // milliseconds, per attempt
	MaxRetries     int     `mapstructure:"max_retries"`
	InitialBackoff int     `mapstructure:"initial_backoff"` // milliseconds
	MaxBackoff     int     `mapstructure:"max_backoff"`     // milliseconds
	MaxTokens      int     `mapstructure:"max_tokens"`
	Temperature    float64 `mapstructure:"temperature"`
	JSONMode       bool    `mapstructure:"json_mode"`
}

type AuditConfig struct {
	BatchSize           int    `mapstructure:"batch_size"`
	Concurrency         int    `mapstructure:"concurrency"`
	NormalizerCacheSize int    `mapstructure:"normalizer_cache_size"`
	CallTimeout         int    `mapstructure:"call_timeout"` // milliseconds
	SessionTTL          int    `mapstructure:"session_ttl"`  // milliseconds
	ResultIndex         string `mapstructure:"result_index"`
}

// NotificationConfig controls the end-of-run summary.
type NotificationConfig struct {
	Region string `mapstructure:"region"`
	SNS    struct {
		Enabled  bool   `mapstructure:"enabled"`
		TopicARN string `mapstructure:"topic_arn"`
	} `mapstructure:"sns"`
	SES struct {
		Enabled   bool     `mapstructure:"enabled"`
		FromEmail string   `mapstructure:"from_email"`
		ToEmails  []string `mapstructure:"to_emails"`
	} `mapstructure:"ses"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type MetricsConfig struct {
	Address string `mapstructure:"address"`
}

// LLMClientConfig converts the llm section for llm.NewClient.
func (c *Config) LLMClientConfig() *llm.Config {
	return &llm.Config{
		BaseURL:        c.LLM.BaseURL,
		APIKey:         c.LLM.APIKey,
		Model:          c.LLM.Model,
		Timeout:        GetDuration(c.LLM.Timeout),
		MaxRetries:     c.LLM.MaxRetries,
		InitialBackoff: GetDuration(c.LLM.InitialBackoff),
		MaxBackoff:     GetDuration(c.LLM.MaxBackoff),
		MaxTokens:      c.LLM.MaxTokens,
		Temperature:    c.LLM.Temperature,
		JSONMode:       c.LLM.JSONMode,
		MaxIdleConns:   c.Audit.Concurrency,
	}
}

// AdvisoryConfig converts the audit and llm sections for the reconciler.
func (c *Config) AdvisoryConfig() *advisory.Config {
	return &advisory.Config{
		BatchSize:   c.Audit.BatchSize,
		Concurrency: c.Audit.Concurrency,
		CallTimeout: GetDuration(c.Audit.CallTimeout),
		Temperature: c.LLM.Temperature,
		MaxTokens:   c.LLM.MaxTokens,
		JSONMode:    c.LLM.JSONMode,
	}
}

// LLMCallBudget is the worst-case duration in milliseconds of one llm call:
// every attempt timing out plus the capped backoff between attempts.
func (c *Config) LLMCallBudget() int {
	total := (c.LLM.MaxRetries + 1) * c.LLM.Timeout
	for attempt := 1; attempt <= c.LLM.MaxRetries; attempt++ {
		total += min(c.LLM.InitialBackoff<<(attempt-1), c.LLM.MaxBackoff)
	}
	return total
}

func (c *Config) SessionTTL() time.Duration {
	return GetDuration(c.Audit.SessionTTL)
}
