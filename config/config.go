package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config captures every tunable of the rideboard process. Values come from
// environment variables with defaults that work for local development.
type Config struct {
	ServerPort string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBTimezone string

	RabbitURL string

	JWTSecret string

	LogFile  string
	LogLevel string

	// Maintenance sweep cadence and how far ahead of departure the reminder
	// goes out.
	MaintenanceInterval time.Duration
	ReminderLead        time.Duration
	// Listings whose arrival time is older than this are purged by the sweep.
	ListingRetention time.Duration
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		logrus.Info("no .env file found, relying on environment")
	}

	return Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "rideboard"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		DBTimezone: getEnv("DB_TIMEZONE", "UTC"),

		RabbitURL: os.Getenv("RABBIT_URL"),

		JWTSecret: getEnv("JWT_SECRET", "supersecret"),

		LogFile:  getEnv("LOG_FILE", "./logs/rideboard.log"),
		LogLevel: strings.ToLower(getEnv("LOG_LEVEL", "info")),

		MaintenanceInterval: getDuration("MAINTENANCE_INTERVAL", time.Hour),
		ReminderLead:        getDuration("REMINDER_LEAD", 24*time.Hour),
		ListingRetention:    getDuration("LISTING_RETENTION", 7*24*time.Hour),
	}
}

// DSN builds the Postgres data source name for GORM.
func (c Config) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode, c.DBTimezone,
	)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		logrus.Warnf("invalid %s %q, using default %s", key, v, fallback)
		return fallback
	}
	return d
}
