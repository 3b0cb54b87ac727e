package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	DatabaseName      string `mapstructure:"DATABASE_NAME"`
	Env               string `mapstructure:"ENV"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr        string `mapstructure:"REDIS_ADDR"`
	RedisPassword    string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB     int    `mapstructure:"REDIS_CACHE_DB"`
	RedisLockDB      int    `mapstructure:"REDIS_LOCK_DB"`
	RedisQueueDB     int    `mapstructure:"REDIS_QUEUE_DB"`
	SlotStatusTTLSec int    `mapstructure:"SLOT_STATUS_TTL_SEC"`

	// Booking engine tuning.
	ReserveLockTTLSec int     `mapstructure:"RESERVE_LOCK_TTL_SEC"`
	SweepIntervalMin  int     `mapstructure:"SWEEP_INTERVAL_MIN"`
	SlotBasePrice     float64 `mapstructure:"SLOT_BASE_PRICE"`

	// External collaborators.
	StripeKey                     string `mapstructure:"STRIPE_KEY"`
	FirebaseServiceAccountKeyPath string `mapstructure:"FIREBASE_SERVICE_ACCOUNT_KEY_PATH"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_LOCK_DB", 1)
	viper.SetDefault("REDIS_QUEUE_DB", 2)
	viper.SetDefault("SLOT_STATUS_TTL_SEC", 30)
	viper.SetDefault("RESERVE_LOCK_TTL_SEC", 10)
	viper.SetDefault("SWEEP_INTERVAL_MIN", 15)
	viper.SetDefault("SLOT_BASE_PRICE", 150000)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "tutorhub")
	viper.SetDefault("FIREBASE_SERVICE_ACCOUNT_KEY_PATH", "")

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
