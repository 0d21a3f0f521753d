package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"veilbot/database"

	"github.com/go-playground/validator/v10"
)

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken string `validate:"required_unless=Environment test"`

	// Database configuration
	DatabaseURL  string        `validate:"required_unless=Environment test"`
	DatabaseName string        `validate:"omitempty,excludesall=/?"`
	DBTxTimeout  time.Duration `validate:"gt=0"`

	// NATS configuration
	NATSServers string // Empty disables the message bus

	// HTTP configuration
	HTTPAddr      string  `validate:"required"`
	WebhookSecret string  `validate:"omitempty,min=16"`
	WebhookRate   float64 `validate:"gt=0"` // Webhook requests per second per client

	// Economy and payments
	GuessCost       int64  `validate:"gt=0"`
	CheckoutBaseURL string `validate:"omitempty,url"`

	// Recovery
	HydrationRate float64 `validate:"gt=0"` // Message edits per second during startup hydration

	// Logging
	LogLevel      string `validate:"oneof=trace debug info warn error"`
	LogFile       string
	LogMaxSizeMB  int `validate:"gte=0"`
	LogMaxBackups int `validate:"gte=0"`
	LogMaxAgeDays int `validate:"gte=0"`

	// Environment
	Environment string `validate:"oneof=development production test"`
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	// If instance is already set (e.g., by tests), return it
	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			// In test environment, use a default test config instead of panicking
			if os.Getenv("GO_TEST") == "1" || os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// IsProduction reports whether the bot runs in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// NATSEnabled reports whether events are forwarded to NATS
func (c *Config) NATSEnabled() bool {
	return strings.TrimSpace(c.NATSServers) != ""
}

// Validate checks the configuration against its struct tags
func (c *Config) Validate() error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		// Discord
		DiscordToken: os.Getenv("DISCORD_TOKEN"),

		// Database
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DatabaseName: os.Getenv("DATABASE_NAME"),
		DBTxTimeout:  getDurationWithDefault("DB_TX_TIMEOUT", 10*time.Second),

		// NATS
		NATSServers: os.Getenv("NATS_SERVERS"),

		// HTTP
		HTTPAddr:      getEnvWithDefault("HTTP_ADDR", ":8080"),
		WebhookSecret: os.Getenv("WEBHOOK_SECRET"),
		WebhookRate:   getFloatWithDefault("WEBHOOK_RATE", 5),

		// Economy
		GuessCost:       getIntWithDefault("GUESS_COST", 5),
		CheckoutBaseURL: os.Getenv("CHECKOUT_BASE_URL"),

		// Recovery
		HydrationRate: getFloatWithDefault("HYDRATION_RATE", 2),

		// Logging
		LogLevel:      strings.ToLower(getEnvWithDefault("LOG_LEVEL", "info")),
		LogFile:       os.Getenv("LOG_FILE"),
		LogMaxSizeMB:  int(getIntWithDefault("LOG_MAX_SIZE_MB", 100)),
		LogMaxBackups: int(getIntWithDefault("LOG_MAX_BACKUPS", 5)),
		LogMaxAgeDays: int(getIntWithDefault("LOG_MAX_AGE_DAYS", 28)),

		// Environment
		Environment: getEnvWithDefault("ENVIRONMENT", "development"),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntWithDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getFloatWithDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationWithDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
// This should only be called from test files
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
// This should only be called from test files
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		DiscordToken:  "test-token",
		DBTxTimeout:   5 * time.Second,
		HTTPAddr:      ":0",
		WebhookSecret: "test-webhook-secret",
		WebhookRate:   100,
		GuessCost:     5,
		HydrationRate: 100,
		LogLevel:      "debug",
		Environment:   "test",
	}
}
