package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Session   SessionConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type MongoDBConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	SessionTTL time.Duration
}

// SessionConfig drives the client-side lifecycle manager. Defaults mirror the
// production values; tests override them freely.
type SessionConfig struct {
	APIBaseURL           string
	InactivityWait       time.Duration // idle span before the warning opens
	WarningCountdown     time.Duration // warning-to-forced-logout span
	ExpirationCheckEvery time.Duration
	ExpirationLeeway     time.Duration // log out this long before the token expires
	StatusFlagSetEvery   time.Duration
	StatusFlagPollEvery  time.Duration
	PresencePollEvery    time.Duration
	ReloadAfterLogout    time.Duration
	ReloadAfterRemoteEnd time.Duration
	RequestTimeout       time.Duration
}

type RateLimitConfig struct {
	Enabled       bool
	UseRedis      bool
	RPS           float64
	Burst         int
	WindowSeconds int
}

// LoadConfig loads configuration from environment variables and .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env")

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "5002")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("SERVER_ENVIRONMENT", "development")
	viper.SetDefault("MONGODB_TIMEOUT", 10)
	viper.SetDefault("JWT_SESSION_TTL_MINUTES", 360)
	viper.SetDefault("SESSION_API_BASE_URL", "http://localhost:5002")
	viper.SetDefault("SESSION_INACTIVITY_WAIT_SECONDS", 300)
	viper.SetDefault("SESSION_WARNING_COUNTDOWN_SECONDS", 20)
	viper.SetDefault("SESSION_EXPIRATION_CHECK_MS", 3000)
	viper.SetDefault("SESSION_EXPIRATION_LEEWAY_SECONDS", 60)
	viper.SetDefault("SESSION_STATUS_FLAG_SET_MS", 60000)
	viper.SetDefault("SESSION_STATUS_FLAG_POLL_MS", 1000)
	viper.SetDefault("SESSION_PRESENCE_POLL_MS", 50)
	viper.SetDefault("SESSION_RELOAD_AFTER_LOGOUT_MS", 1000)
	viper.SetDefault("SESSION_RELOAD_AFTER_REMOTE_END_MS", 1500)
	viper.SetDefault("SESSION_REQUEST_TIMEOUT_SECONDS", 10)
	viper.SetDefault("RATE_LIMIT_ENABLED", false)
	viper.SetDefault("RATE_LIMIT_RPS", 20.0)
	viper.SetDefault("RATE_LIMIT_BURST", 40)
	viper.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 1)

	cfg := &Config{
		Server: ServerConfig{
			Port:         viper.GetString("SERVER_PORT"),
			Host:         viper.GetString("SERVER_HOST"),
			Environment:  viper.GetString("SERVER_ENVIRONMENT"),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		MongoDB: MongoDBConfig{
			URI:      viper.GetString("MONGODB_URI"),
			Database: viper.GetString("MONGODB_DATABASE"),
			Timeout:  time.Duration(viper.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       0,
		},
		JWT: JWTConfig{
			Secret:     os.Getenv("JWT_SECRET"),
			SessionTTL: time.Duration(viper.GetInt("JWT_SESSION_TTL_MINUTES")) * time.Minute,
		},
		Session: SessionConfig{
			APIBaseURL:           viper.GetString("SESSION_API_BASE_URL"),
			InactivityWait:       time.Duration(viper.GetInt("SESSION_INACTIVITY_WAIT_SECONDS")) * time.Second,
			WarningCountdown:     time.Duration(viper.GetInt("SESSION_WARNING_COUNTDOWN_SECONDS")) * time.Second,
			ExpirationCheckEvery: time.Duration(viper.GetInt("SESSION_EXPIRATION_CHECK_MS")) * time.Millisecond,
			ExpirationLeeway:     time.Duration(viper.GetInt("SESSION_EXPIRATION_LEEWAY_SECONDS")) * time.Second,
			StatusFlagSetEvery:   time.Duration(viper.GetInt("SESSION_STATUS_FLAG_SET_MS")) * time.Millisecond,
			StatusFlagPollEvery:  time.Duration(viper.GetInt("SESSION_STATUS_FLAG_POLL_MS")) * time.Millisecond,
			PresencePollEvery:    time.Duration(viper.GetInt("SESSION_PRESENCE_POLL_MS")) * time.Millisecond,
			ReloadAfterLogout:    time.Duration(viper.GetInt("SESSION_RELOAD_AFTER_LOGOUT_MS")) * time.Millisecond,
			ReloadAfterRemoteEnd: time.Duration(viper.GetInt("SESSION_RELOAD_AFTER_REMOTE_END_MS")) * time.Millisecond,
			RequestTimeout:       time.Duration(viper.GetInt("SESSION_REQUEST_TIMEOUT_SECONDS")) * time.Second,
		},
		RateLimit: RateLimitConfig{
			Enabled:       viper.GetBool("RATE_LIMIT_ENABLED"),
			UseRedis:      viper.GetBool("RATE_LIMIT_USE_REDIS"),
			RPS:           viper.GetFloat64("RATE_LIMIT_RPS"),
			Burst:         viper.GetInt("RATE_LIMIT_BURST"),
			WindowSeconds: viper.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
	}

	// Basic validation
	if cfg.JWT.Secret == "" {
		log.Println("WARNING: JWT_SECRET is not set; set a secure value in production")
	}

	return cfg, nil
}
