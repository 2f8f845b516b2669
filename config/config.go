package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	Env               string `mapstructure:"ENV"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisSchedDB  int    `mapstructure:"REDIS_SCHED_DB"`

	// Dispatch tuning.
	DispatchBatchSize      int     `mapstructure:"DISPATCH_BATCH_SIZE"`
	DispatchOfferWindowMin int     `mapstructure:"DISPATCH_OFFER_WINDOW_MIN"`
	DispatchDistanceWeight float64 `mapstructure:"DISPATCH_DISTANCE_WEIGHT"`
	DispatchRatingWeight   float64 `mapstructure:"DISPATCH_RATING_WEIGHT"`
	DispatchDefaultRadius  float64 `mapstructure:"DISPATCH_DEFAULT_RADIUS_KM"`

	// Firebase service account for outbound pushes; empty disables FCM.
	FirebaseCredentialsFile string `mapstructure:"FIREBASE_CREDENTIALS_FILE"`
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
	viper.SetDefault("REDIS_SCHED_DB", 1)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DISPATCH_BATCH_SIZE", 3)
	viper.SetDefault("DISPATCH_OFFER_WINDOW_MIN", 5)
	viper.SetDefault("DISPATCH_DISTANCE_WEIGHT", 0.6)
	viper.SetDefault("DISPATCH_RATING_WEIGHT", 0.4)
	viper.SetDefault("DISPATCH_DEFAULT_RADIUS_KM", 0)
	viper.SetDefault("FIREBASE_CREDENTIALS_FILE", "")

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
