package config

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the complete application configuration
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Providers     ProvidersConfig
	Pipeline      PipelineConfig
	QueryLog      QueryLogConfig
	Observability ObservabilityConfig
	Environment   string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration

	// TrustProxyHeaders derives the client address from X-Forwarded-For
	// and X-Real-IP. Enable only behind a proxy that sets them.
	TrustProxyHeaders bool
}

// DatabaseConfig holds PostgreSQL database configuration.
// When ConnectionString (from DATABASE_URL) is set, it takes precedence over individual fields.
type DatabaseConfig struct {
	ConnectionString string
	Host             string
	Port             int
	User             string
	Password         string
	Database         string
	SSLMode          string
	MaxOpenConns     int
	MaxIdleConns     int
	ConnMaxLifetime  time.Duration
}

// ProvidersConfig holds the model provider configurations
type ProvidersConfig struct {
	OpenAI OpenAIConfig
}

// OpenAIConfig holds the embedding and generation settings for OpenAI
type OpenAIConfig struct {
	APIKey            string
	BaseURL           string
	EmbeddingModel    string
	ChatModel         string
	EmbeddingTimeout  time.Duration
	GenerationTimeout time.Duration
}

// PipelineConfig holds the tunables of the query pipeline
type PipelineConfig struct {
	DailyQueryLimit     int
	RateLimitSweep      time.Duration
	MaxTurns            int
	SessionTTL          time.Duration
	MaxClients          int
	SimilarityThreshold float64
	MinResults          int
	MaxContextChunks    int
	MaxTokens           int
	Temperature         float64
	CorpusCacheTTL      time.Duration
}

// QueryLogConfig controls the asynchronous query log writer
type QueryLogConfig struct {
	Enabled     bool
	Workers     int
	BufferSize  int
	StopTimeout time.Duration
}

// ObservabilityConfig holds monitoring and logging configuration
type ObservabilityConfig struct {
	LogLevel       string
	LogFormat      string // json or text
	MetricsEnabled bool
}

// New creates a new Config instance by loading environment variables
func New(ctx context.Context) (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getPort(),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 120*time.Second),
			RequestTimeout:  getEnvAsDuration("SERVER_REQUEST_TIMEOUT", 120*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),

			TrustProxyHeaders: getEnvAsBool("SERVER_TRUST_PROXY", false),
		},
		Database: loadDatabaseConfig(),
		Providers: ProvidersConfig{
			OpenAI: OpenAIConfig{
				APIKey:            getEnv("OPENAI_API_KEY", ""),
				BaseURL:           getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
				EmbeddingModel:    getEnv("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),
				ChatModel:         getEnv("OPENAI_CHAT_MODEL", "gpt-4o-mini"),
				EmbeddingTimeout:  getEnvAsDuration("OPENAI_EMBEDDING_TIMEOUT", 30*time.Second),
				GenerationTimeout: getEnvAsDuration("OPENAI_GENERATION_TIMEOUT", 60*time.Second),
			},
		},
		Pipeline: PipelineConfig{
			DailyQueryLimit:     getEnvAsInt("RATE_LIMIT_DAILY_QUERIES", 10),
			RateLimitSweep:      getEnvAsDuration("RATE_LIMIT_SWEEP_INTERVAL", time.Hour),
			MaxTurns:            getEnvAsInt("SESSION_MAX_TURNS", 5),
			SessionTTL:          getEnvAsDuration("SESSION_TTL", 24*time.Hour),
			MaxClients:          getEnvAsInt("SESSION_MAX_CLIENTS", 10000),
			SimilarityThreshold: getEnvAsFloat("RETRIEVAL_SIMILARITY_THRESHOLD", 0.35),
			MinResults:          getEnvAsInt("RETRIEVAL_MIN_RESULTS", 3),
			MaxContextChunks:    getEnvAsInt("SYNTHESIS_MAX_CHUNKS", 7),
			MaxTokens:           getEnvAsInt("SYNTHESIS_MAX_TOKENS", 1000),
			Temperature:         getEnvAsFloat("SYNTHESIS_TEMPERATURE", 0.7),
			CorpusCacheTTL:      getEnvAsDuration("CORPUS_CACHE_TTL", 5*time.Minute),
		},
		QueryLog: QueryLogConfig{
			Enabled:     getEnvAsBool("QUERY_LOG_ENABLED", true),
			Workers:     getEnvAsInt("QUERY_LOG_WORKERS", 2),
			BufferSize:  getEnvAsInt("QUERY_LOG_BUFFER", 1000),
			StopTimeout: getEnvAsDuration("QUERY_LOG_STOP_TIMEOUT", 5*time.Second),
		},
		Observability: ObservabilityConfig{
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			LogFormat:      getEnv("LOG_FORMAT", "json"),
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if all required configuration fields are set
func (c *Config) Validate() error {
	if c.Database.ConnectionString == "" && c.Database.Host == "" {
		return fmt.Errorf("database configuration required: set DATABASE_URL or DB_HOST")
	}
	if c.Database.ConnectionString == "" {
		if c.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if c.Database.Database == "" {
			return fmt.Errorf("database name is required")
		}
	}

	if c.IsProduction() && c.Providers.OpenAI.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required in production")
	}

	p := c.Pipeline
	if p.DailyQueryLimit <= 0 {
		return fmt.Errorf("daily query limit must be positive")
	}
	if p.MaxTurns <= 0 {
		return fmt.Errorf("session max turns must be positive")
	}
	if p.MaxClients <= 0 {
		return fmt.Errorf("session max clients must be positive")
	}
	if p.SimilarityThreshold < 0 || p.SimilarityThreshold > 1 {
		return fmt.Errorf("similarity threshold must be within [0,1], got %v", p.SimilarityThreshold)
	}
	if p.MinResults <= 0 || p.MaxContextChunks <= 0 {
		return fmt.Errorf("retrieval floor and context chunk count must be positive")
	}

	if c.Observability.LogLevel == "" {
		return fmt.Errorf("log level is required")
	}

	return nil
}

// RequireOpenAI reports an error when no OpenAI key is configured.
// Commands that call the model providers use it in addition to Validate.
func (c *Config) RequireOpenAI() error {
	if c.Providers.OpenAI.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY not found in environment variables")
	}
	return nil
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "dev"
}

// DSN returns the PostgreSQL connection string.
// Uses ConnectionString (from DATABASE_URL) when set; otherwise builds from individual fields.
func (c *DatabaseConfig) DSN() string {
	if c.ConnectionString != "" {
		return c.ConnectionString
	}
	dsn := fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Database, c.SSLMode)
	if c.Password != "" {
		dsn += " password=" + c.Password
	}
	return dsn
}

// LogString returns a safe string for logging (no password). Parses ConnectionString when set.
func (c *DatabaseConfig) LogString() string {
	if c.ConnectionString != "" {
		u, err := url.Parse(c.ConnectionString)
		if err == nil {
			port := u.Port()
			if port == "" {
				port = "5432"
			}
			db := strings.TrimPrefix(u.Path, "/")
			return fmt.Sprintf("host=%s port=%s database=%s", u.Hostname(), port, db)
		}
		return "host=<from DATABASE_URL>"
	}
	return fmt.Sprintf("host=%s port=%d database=%s", c.Host, c.Port, c.Database)
}

func loadDatabaseConfig() DatabaseConfig {
	pool := DatabaseConfig{
		MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
	}
	if dbURL := getEnv("DATABASE_URL", ""); dbURL != "" {
		pool.ConnectionString = dbURL
		return pool
	}
	pool.Host = getEnv("DB_HOST", "localhost")
	pool.Port = getEnvAsInt("DB_PORT", 5432)
	pool.User = getEnv("DB_USER", "lens")
	pool.Password = getEnv("DB_PASSWORD", "")
	pool.Database = getEnv("DB_NAME", "lenny_knowledge")
	pool.SSLMode = getEnv("DB_SSLMODE", "disable")
	return pool
}

// Address returns the HTTP server address
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// getPort returns the server port from PORT or SERVER_PORT env vars (default: 8000)
func getPort() int {
	for _, key := range []string{"PORT", "SERVER_PORT"} {
		if value := os.Getenv(key); value != "" {
			if p, err := strconv.Atoi(value); err == nil {
				return p
			}
		}
	}
	return 8000
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
