// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App             AppConfig               `mapstructure:"app"`
	Camunda         CamundaConfig           `mapstructure:"camunda"`
	Database        DatabaseConfig          `mapstructure:"database"`
	Workers         map[string]WorkerConfig `mapstructure:"workers"`
	APIs            APIsConfig              `mapstructure:"apis"`
	Extraction      ExtractionConfig        `mapstructure:"extraction"`
	Recommendations RecommendationConfig    `mapstructure:"recommendations"`
	Session         SessionConfig           `mapstructure:"session"`
	Logging         LoggingConfig           `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
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

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// APIsConfig holds settings for external API integrations.
type APIsConfig struct {
	// Advisor is the remote chat/product-matching service the assistant
	// forwards conversations to.
	Advisor struct {
		BaseURL string `mapstructure:"base_url"`
		APIKey  string `mapstructure:"api_key"`
		Timeout int    `mapstructure:"timeout"` // milliseconds
	} `mapstructure:"advisor"`
}

// ExtractionConfig holds the field-extractor tuning knobs.
type ExtractionConfig struct {
	// WindowSize is how many trailing transcript messages a pass reads.
	WindowSize int `mapstructure:"window_size"`
	// DebounceMs is the quiet period required after the last transcript
	// change before a new extraction pass is due.
	DebounceMs int `mapstructure:"debounce_ms"`
}

// RecommendationConfig holds the reconciler tuning knobs.
type RecommendationConfig struct {
	// MaxWindow bounds the deduplicated recommendation window (2 or 3 in
	// the shipped UI layouts).
	MaxWindow int `mapstructure:"max_window"`
}

// SessionConfig holds chat-session retention settings.
type SessionConfig struct {
	TTLMinutes int `mapstructure:"ttl_minutes"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
