package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	APIBaseURL   string
	APIServerKey string

	TenantID       string
	ApplicationIDs []string

	DaysBack int
	PageSize int
	MaxPages int

	APIDelayMs        int
	APITimeoutSeconds int
	MaxRetries        int
	RetryBackoffMs    int

	MaxConcurrency   int
	DisabledChannels []string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	HTTPAddr           string
	RunIntervalMinutes int
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		APIBaseURL:   strings.TrimRight(getEnv("API_BASE_URL", "https://am1.api.indigitall.com"), "/"),
		APIServerKey: getEnv("API_SERVER_KEY", ""),

		TenantID:       getEnv("TENANT_ID", "visionamos"),
		ApplicationIDs: getEnvList("APPLICATION_IDS", "100274"),

		DaysBack: getEnvInt("EXTRACTION_DAYS_BACK", 90),
		PageSize: getEnvInt("EXTRACTION_PAGE_SIZE", 100),
		MaxPages: getEnvInt("EXTRACTION_MAX_PAGES", 50),

		APIDelayMs:        getEnvInt("API_DELAY_MS", 500),
		APITimeoutSeconds: getEnvInt("API_TIMEOUT_SECONDS", 30),
		MaxRetries:        getEnvInt("API_MAX_RETRIES", 3),
		RetryBackoffMs:    getEnvInt("API_RETRY_BACKOFF_MS", 2000),

		MaxConcurrency:   getEnvInt("MAX_CONCURRENCY", 3),
		DisabledChannels: getEnvList("DISABLED_CHANNELS", ""),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "postgres"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "postgres"),
		PostgresDB:       getEnv("POSTGRES_DB", "postgres"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		HTTPAddr:           getEnv("HTTP_ADDR", ":8080"),
		RunIntervalMinutes: getEnvInt("RUN_INTERVAL_MINUTES", 360),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

// PrimaryApplicationID returns the first configured application id. It is
// the fallback account when a payload element carries none of its own.
func (c *Config) PrimaryApplicationID() string {
	if len(c.ApplicationIDs) == 0 {
		return ""
	}
	return c.ApplicationIDs[0]
}

// ChannelDisabled reports whether a channel was excluded via configuration.
// Channels known to be unavailable for an account (e.g. SMS without an SMS
// contract) can be skipped proactively instead of failing every run.
func (c *Config) ChannelDisabled(name string) bool {
	for _, d := range c.DisabledChannels {
		if strings.EqualFold(d, name) {
			return true
		}
	}
	return false
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvList(key, fallback string) []string {
	raw := getEnv(key, fallback)
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
