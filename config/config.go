package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	App       AppConfig
	Remote    RemoteConfig
	Firebase  FirebaseConfig
	Telegram  TelegramConfig
	Drive     DriveConfig
	Files     FilesConfig
	Reminders RemindersConfig
}

type ServerConfig struct {
	Port string
	// ProjectServer mounts the project document server (/api/...) in this
	// process. It needs the database.
	ProjectServer bool
	CORSOrigins   []string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AppConfig struct {
	Environment string
	LogLevel    string
	LogFormat   string
	Version     string
	WorkspaceID string
}

type RemoteConfig struct {
	URL     string
	Timeout time.Duration
}

type FirebaseConfig struct {
	CredentialsPath string
	// AuthDisabled swaps token verification for the X-User-* header fallback.
	AuthDisabled bool
}

type TelegramConfig struct {
	BotToken   string
	ChatID     string
	RatePerSec float64
}

type DriveConfig struct {
	ArchiveFolderID string
	CredentialsPath string
}

type FilesConfig struct {
	Bucket        string
	Region        string
	Endpoint      string
	PublicBaseURL string
}

type RemindersConfig struct {
	Cron            string
	DeadlineEnabled bool
	DeadlineDays    int
	PaymentEnabled  bool
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	port := getEnv("PORT", "8080")
	cfg := &Config{
		Server: ServerConfig{
			Port:          port,
			ProjectServer: getEnvAsBool("PROJECT_SERVER_ENABLED", true),
			CORSOrigins:   getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "studio"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			LogFormat:   getEnv("LOG_FORMAT", "text"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			WorkspaceID: getEnv("WORKSPACE_ID", "default"),
		},
		Remote: RemoteConfig{
			URL:     getEnv("REMOTE_URL", "http://localhost:"+port+"/api"),
			Timeout: getEnvAsDuration("REMOTE_TIMEOUT", 30*time.Second),
		},
		Firebase: FirebaseConfig{
			CredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
			AuthDisabled:    getEnvAsBool("AUTH_DISABLED", false),
		},
		Telegram: TelegramConfig{
			BotToken:   getEnv("TELEGRAM_BOT_TOKEN", ""),
			ChatID:     getEnv("TELEGRAM_CHAT_ID", ""),
			RatePerSec: getEnvAsFloat("TELEGRAM_RATE_PER_SEC", 1),
		},
		Drive: DriveConfig{
			ArchiveFolderID: getEnv("DRIVE_ARCHIVE_FOLDER_ID", ""),
			CredentialsPath: getEnv("DRIVE_CREDENTIALS_PATH", ""),
		},
		Files: FilesConfig{
			Bucket:        getEnv("S3_BUCKET", ""),
			Region:        getEnv("S3_REGION", "us-east-1"),
			Endpoint:      getEnv("S3_ENDPOINT", ""),
			PublicBaseURL: getEnv("S3_PUBLIC_BASE_URL", ""),
		},
		Reminders: RemindersConfig{
			Cron:            getEnv("REMINDER_CRON", "0 0 * * * *"),
			DeadlineEnabled: getEnvAsBool("REMINDER_DEADLINE_ENABLED", true),
			DeadlineDays:    getEnvAsInt("REMINDER_DEADLINE_DAYS", 3),
			PaymentEnabled:  getEnvAsBool("REMINDER_PAYMENT_ENABLED", false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Server.ProjectServer && c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required when the project server is enabled")
	}

	if c.Redis.Addr == "" {
		return fmt.Errorf("REDIS_ADDR is required")
	}

	if c.Reminders.DeadlineDays < 0 {
		return fmt.Errorf("REMINDER_DEADLINE_DAYS must not be negative")
	}

	switch strings.ToLower(c.App.LogFormat) {
	case "json", "text":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or text, got %q", c.App.LogFormat)
	}

	return nil
}

// IsProduction reports whether the app runs in production mode.
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	var out []string
	for _, v := range strings.Split(valueStr, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
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
		log.Printf("Warning: Invalid number for %s, using default: %g", key, defaultValue)
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
		log.Printf("Warning: Invalid boolean for %s, using default: %t", key, defaultValue)
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
		log.Printf("Warning: Invalid duration for %s, using default: %s", key, defaultValue)
		return defaultValue
	}

	return value
}
