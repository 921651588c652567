package config

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Cache     CacheConfig
	Inventory InventoryConfig
	Forecast  ForecastConfig
	Sources   SourcesConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	LogLevel       string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Driver         string
	URL            string
	Host           string
	Port           string
	User           string
	Password       string
	DBName         string
	SSLMode        string
	MaxConcurrency int
}

// DSN prefers DATABASE_URL and falls back to the discrete settings.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

type CacheConfig struct {
	Enabled       bool
	RedisURL      string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	TTLSeconds    int
}

// InventoryConfig holds the status policy for the inventory snapshot.
type InventoryConfig struct {
	CriticalDays            float64
	ReorderSoonDays         float64
	CriticalReorderFraction float64
	UsageWindowDays         int
}

type ForecastConfig struct {
	Days                  int
	HistoryDays           int
	RevenueHistoryDays    int
	RevenueMinDays        int
	RevenueTrendThreshold float64
}

type SourcesConfig struct {
	GoogleCredentialsJSON string
	DriveFolder           string
	S3Endpoint            string
	S3AccessKey           string
	S3SecretKey           string
	S3Bucket              string
	S3Region              string
	S3UseSSL              bool
	IngestWorkers         int
	ExportTimezone        string
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		setDefaults(viper.GetViper())

		// Read from environment variables
		viper.AutomaticEnv()

		instance = fromViper(viper.GetViper())
	})

	return instance
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_MODE", "debug")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SERVER_READ_TIMEOUT", 15)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 30)
	v.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})

	v.SetDefault("STORE_DRIVER", "postgres")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "kitchenops")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_CONCURRENCY", 10)

	v.SetDefault("CACHE_ENABLED", false)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_HOST", "127.0.0.1")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_TTL_SECONDS", 60)

	v.SetDefault("STATUS_CRITICAL_DAYS", 2)
	v.SetDefault("STATUS_REORDER_SOON_DAYS", 5)
	v.SetDefault("STATUS_CRITICAL_REORDER_FRACTION", 0.5)
	v.SetDefault("USAGE_WINDOW_DAYS", 28)

	v.SetDefault("FORECAST_DAYS", 7)
	v.SetDefault("FORECAST_HISTORY_DAYS", 42)
	v.SetDefault("REVENUE_HISTORY_DAYS", 90)
	v.SetDefault("REVENUE_MIN_DAYS", 5)
	v.SetDefault("REVENUE_TREND_THRESHOLD", 10)

	v.SetDefault("GOOGLE_CREDENTIALS_JSON", "")
	v.SetDefault("GOOGLE_CREDENTIALS_FILE", "")
	v.SetDefault("DRIVE_FOLDER", "")
	v.SetDefault("S3_ENDPOINT", "")
	v.SetDefault("S3_ACCESS_KEY", "")
	v.SetDefault("S3_SECRET_KEY", "")
	v.SetDefault("S3_BUCKET", "")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("S3_USE_SSL", true)
	v.SetDefault("INGEST_WORKERS", 4)
	v.SetDefault("EXPORT_TIMEZONE", "UTC")
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			Mode:           v.GetString("SERVER_MODE"),
			LogLevel:       v.GetString("LOG_LEVEL"),
			ReadTimeout:    v.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:   v.GetInt("SERVER_WRITE_TIMEOUT"),
			AllowedOrigins: v.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
		},
		Database: DatabaseConfig{
			Driver:         strings.ToLower(v.GetString("STORE_DRIVER")),
			URL:            v.GetString("DATABASE_URL"),
			Host:           v.GetString("DB_HOST"),
			Port:           v.GetString("DB_PORT"),
			User:           v.GetString("DB_USER"),
			Password:       v.GetString("DB_PASSWORD"),
			DBName:         v.GetString("DB_NAME"),
			SSLMode:        v.GetString("DB_SSLMODE"),
			MaxConcurrency: v.GetInt("DB_MAX_CONCURRENCY"),
		},
		Cache: CacheConfig{
			Enabled:       v.GetBool("CACHE_ENABLED"),
			RedisURL:      v.GetString("REDIS_URL"),
			RedisHost:     v.GetString("REDIS_HOST"),
			RedisPort:     v.GetString("REDIS_PORT"),
			RedisPassword: v.GetString("REDIS_PASSWORD"),
			RedisDB:       v.GetInt("REDIS_DB"),
			TTLSeconds:    v.GetInt("CACHE_TTL_SECONDS"),
		},
		Inventory: InventoryConfig{
			CriticalDays:            v.GetFloat64("STATUS_CRITICAL_DAYS"),
			ReorderSoonDays:         v.GetFloat64("STATUS_REORDER_SOON_DAYS"),
			CriticalReorderFraction: v.GetFloat64("STATUS_CRITICAL_REORDER_FRACTION"),
			UsageWindowDays:         v.GetInt("USAGE_WINDOW_DAYS"),
		},
		Forecast: ForecastConfig{
			Days:                  v.GetInt("FORECAST_DAYS"),
			HistoryDays:           v.GetInt("FORECAST_HISTORY_DAYS"),
			RevenueHistoryDays:    v.GetInt("REVENUE_HISTORY_DAYS"),
			RevenueMinDays:        v.GetInt("REVENUE_MIN_DAYS"),
			RevenueTrendThreshold: v.GetFloat64("REVENUE_TREND_THRESHOLD"),
		},
		Sources: SourcesConfig{
			GoogleCredentialsJSON: googleCredentials(v),
			DriveFolder:           v.GetString("DRIVE_FOLDER"),
			S3Endpoint:            v.GetString("S3_ENDPOINT"),
			S3AccessKey:           v.GetString("S3_ACCESS_KEY"),
			S3SecretKey:           v.GetString("S3_SECRET_KEY"),
			S3Bucket:              v.GetString("S3_BUCKET"),
			S3Region:              v.GetString("S3_REGION"),
			S3UseSSL:              v.GetBool("S3_USE_SSL"),
			IngestWorkers:         v.GetInt("INGEST_WORKERS"),
			ExportTimezone:        v.GetString("EXPORT_TIMEZONE"),
		},
	}
}

// Defaults returns the configuration built from defaults only.
func Defaults() *Config {
	v := viper.New()
	setDefaults(v)
	return fromViper(v)
}

func googleCredentials(v *viper.Viper) string {
	if raw := v.GetString("GOOGLE_CREDENTIALS_JSON"); raw != "" {
		return raw
	}
	if path := v.GetString("GOOGLE_CREDENTIALS_FILE"); path != "" {
		if data, err := os.ReadFile(path); err == nil {
			return string(data)
		}
	}
	return ""
}
