package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultJWTSecret is only suitable for local development.
const DefaultJWTSecret = "insecure-dev-secret-change-me"

type Config struct {
	AppEnv                string
	LogLevel              slog.Level
	ApiServicePort        string
	ApiGrpcPort           string
	DBDriver              string
	SQLitePath            string
	PostgreSQLHost        string
	PostgreSQLPort        int64
	PostgreSQLUser        string
	PostgreSQLPassword    string
	PostgreSQLDatabase    string
	DBConnectRetries      int64
	JWTSecret             string
	AccessTokenExpiration int64 // seconds
	BcryptCost            int64
	RedisHost             string
	RedisPort             int64
	RedisPassword         string
	RedisDatabase         int64
	UserCacheTTL          int64 // seconds
	ShutdownTimeout       int64 // seconds
}

func LoadConfig() *Config {
	// A missing .env file is the normal case outside local development.
	_ = godotenv.Load()

	return &Config{
		AppEnv:                getEnv("APP_ENV", "development"),                              // Default development
		LogLevel:              getLogLevel(),                                                 // Default INFO
		ApiServicePort:        getEnv("API_SERVICE_PORT", "8080"),                            // Default 8080
		ApiGrpcPort:           getEnv("API_GRPC_PORT", "50052"),                              // Default 50052 (gRPC health)
		DBDriver:              strings.ToLower(getEnv("DB_DRIVER", "postgres")),              // postgres | sqlite
		SQLitePath:            getEnv("SQLITE_PATH", "file:taskmanager.db?_foreign_keys=on"), // sqlite DSN
		PostgreSQLHost:        getEnv("POSTGRESQL_HOST", "db"),                               // Default db
		PostgreSQLPort:        getEnvAsInt64("POSTGRESQL_PORT", 5432),                        // Default 5432
		PostgreSQLUser:        getEnv("POSTGRESQL_USER", "taskmanager_user"),                 // Default user
		PostgreSQLPassword:    getEnv("POSTGRESQL_PASSWORD", "taskmanager_password"),         // Default password
		PostgreSQLDatabase:    getEnv("POSTGRESQL_DATABASE", "taskmanager_db"),               // Default database name
		DBConnectRetries:      getEnvAsInt64("DB_CONNECT_RETRIES", 30),                       // Default 30 attempts
		JWTSecret:             getEnv("JWT_SECRET", DefaultJWTSecret),                        // Override in production
		AccessTokenExpiration: getEnvAsInt64("ACCESS_TOKEN_EXPIRATION", 900),                 // Default 15 minutes
		BcryptCost:            getEnvAsInt64("BCRYPT_COST", 10),                              // bcrypt.DefaultCost
		RedisHost:             getEnv("REDIS_HOST", "redis"),                                 // Default redis
		RedisPort:             getEnvAsInt64("REDIS_PORT", 6379),                             // Default 6379
		RedisPassword:         getEnv("REDIS_PASSWORD", ""),                                  // Default empty
		RedisDatabase:         getEnvAsInt64("REDIS_DATABASE", 0),                            // Default 0
		UserCacheTTL:          getEnvAsInt64("USER_CACHE_TTL", 300),                          // Default 5 minutes
		ShutdownTimeout:       getEnvAsInt64("SHUTDOWN_TIMEOUT", 10),                         // Default 10 seconds
	}
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return strings.ToLower(c.AppEnv) == "production"
}

// TokenTTL returns the access token lifetime.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.AccessTokenExpiration) * time.Second
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt64(key string, fallback int64) int64 {
	if valueStr, exists := os.LookupEnv(key); exists {
		if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
			return value
		}
	}
	return fallback
}

func getLogLevel() slog.Level {
	levelStr := getEnv("LOG_LEVEL", "INFO")

	switch strings.ToUpper(levelStr) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
