package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Archive   ArchiveConfig
	Resolver  ResolverConfig
	Scheduler SchedulerConfig
	Pipeline  PipelineConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string
	Host            string
	Environment     string
	AllowedOrigins  []string
	ShutdownTimeout int
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host        string
	Port        string
	User        string
	Password    string
	Name        string
	SSLMode     string
	MaxConns    int
	MinConns    int
	AutoMigrate bool
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

// JWTConfig holds the admin-API token validation configuration
type JWTConfig struct {
	AccessSecret string
	AccessExpiry time.Duration
}

// ArchiveConfig holds raw-payload archive (object storage) configuration
type ArchiveConfig struct {
	Enabled         bool
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	UseSSL          bool
}

// ResolverConfig holds identity-resolution tier defaults and voting thresholds.
// Hoisted here so tests can construct deterministic resolvers without
// touching package-level constants.
type ResolverConfig struct {
	ProjectMappingConfidence float64
	GlobalMappingConfidence  float64
	ExactNameConfidence      float64
	AliasConfidence          float64
	PartialNameConfidence    float64

	// VoteThreshold is the minimum winning share for an automatic project
	// match; shares within VoteEpsilon of it pass (boundary-inclusive).
	VoteThreshold float64
	VoteEpsilon   float64
}

// SchedulerConfig holds quarantine retry scheduler configuration
type SchedulerConfig struct {
	Interval    time.Duration
	MaxRetries  int
	BatchSize   int
	RecordDelay time.Duration
}

// PipelineConfig holds the downstream document-pipeline collaborator and
// the gateway's dispatch pool configuration
type PipelineConfig struct {
	BaseURL        string
	APIToken       string
	RequestTimeout time.Duration
	Workers        int
	QueueSize      int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	config := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			Host:            getEnv("HOST", "0.0.0.0"),
			Environment:     getEnv("ENVIRONMENT", "development"),
			AllowedOrigins:  []string{getEnv("ALLOWED_ORIGINS", "http://localhost:3000")},
			ShutdownTimeout: getEnvAsInt("SHUTDOWN_TIMEOUT", 10),
		},
		Database: DatabaseConfig{
			Host:        getEnv("DB_HOST", "localhost"),
			Port:        getEnv("DB_PORT", "5432"),
			User:        getEnv("DB_USER", "postgres"),
			Password:    getEnv("DB_PASSWORD", "postgres"),
			Name:        getEnv("DB_NAME", "meetsync"),
			SSLMode:     getEnv("DB_SSLMODE", "disable"),
			MaxConns:    getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:    getEnvAsInt("DB_MIN_CONNS", 5),
			AutoMigrate: getEnvAsBool("DB_AUTO_MIGRATE", false),
		},
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", true),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			AccessSecret: getEnv("JWT_ACCESS_SECRET", "your-access-secret-change-in-production"),
			AccessExpiry: getEnvAsDuration("JWT_ACCESS_EXPIRY", "15m"),
		},
		Archive: ArchiveConfig{
			Enabled:         getEnvAsBool("ARCHIVE_ENABLED", false),
			Endpoint:        getEnv("ARCHIVE_ENDPOINT", "localhost:9000"),
			AccessKeyID:     getEnv("ARCHIVE_ACCESS_KEY", "minioadmin"),
			SecretAccessKey: getEnv("ARCHIVE_SECRET_KEY", "minioadmin"),
			BucketName:      getEnv("ARCHIVE_BUCKET", "meetsync-payloads"),
			UseSSL:          getEnvAsBool("ARCHIVE_USE_SSL", false),
		},
		Resolver: ResolverConfig{
			ProjectMappingConfidence: getEnvAsFloat("RESOLVER_PROJECT_MAPPING_CONFIDENCE", 0.95),
			GlobalMappingConfidence:  getEnvAsFloat("RESOLVER_GLOBAL_MAPPING_CONFIDENCE", 0.90),
			ExactNameConfidence:      getEnvAsFloat("RESOLVER_EXACT_NAME_CONFIDENCE", 0.85),
			AliasConfidence:          getEnvAsFloat("RESOLVER_ALIAS_CONFIDENCE", 0.85),
			PartialNameConfidence:    getEnvAsFloat("RESOLVER_PARTIAL_NAME_CONFIDENCE", 0.60),
			VoteThreshold:            getEnvAsFloat("RESOLVER_VOTE_THRESHOLD", 0.70),
			VoteEpsilon:              getEnvAsFloat("RESOLVER_VOTE_EPSILON", 1e-9),
		},
		Scheduler: SchedulerConfig{
			Interval:    getEnvAsDuration("SCHEDULER_INTERVAL", "1h"),
			MaxRetries:  getEnvAsInt("SCHEDULER_MAX_RETRIES", 10),
			BatchSize:   getEnvAsInt("SCHEDULER_BATCH_SIZE", 50),
			RecordDelay: getEnvAsDuration("SCHEDULER_RECORD_DELAY", "500ms"),
		},
		Pipeline: PipelineConfig{
			BaseURL:        getEnv("PIPELINE_BASE_URL", "http://localhost:8090"),
			APIToken:       getEnv("PIPELINE_API_TOKEN", ""),
			RequestTimeout: getEnvAsDuration("PIPELINE_REQUEST_TIMEOUT", "30s"),
			Workers:        getEnvAsInt("PIPELINE_DISPATCH_WORKERS", 2),
			QueueSize:      getEnvAsInt("PIPELINE_DISPATCH_QUEUE", 64),
		},
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Scheduler.MaxRetries <= 0 {
		return fmt.Errorf("SCHEDULER_MAX_RETRIES must be positive")
	}
	if c.Scheduler.BatchSize <= 0 {
		return fmt.Errorf("SCHEDULER_BATCH_SIZE must be positive")
	}
	if c.Resolver.VoteThreshold <= 0 || c.Resolver.VoteThreshold > 1 {
		return fmt.Errorf("RESOLVER_VOTE_THRESHOLD must be in (0, 1]")
	}
	if c.Pipeline.Workers <= 0 {
		return fmt.Errorf("PIPELINE_DISPATCH_WORKERS must be positive")
	}
	return nil
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}
	return duration
}
