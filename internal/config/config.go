package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for our application
type Config struct {
	Port                      string
	Origin                    string
	Environment               string
	JWTSecret                 string
	JWTRefreshSecret          string
	Database                  DatabaseConfig
	Redis                     RedisConfig
	JWTExpirationMinutes      int
	JWTRefreshExpirationHours int
	Provisioning              ProvisioningConfig
	ReportWebhookURL          string
}

// DatabaseConfig holds database connection details
type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Name     string
	DSN      string
}

// RedisConfig holds connection details for the realtime pub/sub broker
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// ProvisioningConfig holds the retry knobs for the account provisioning
// and session resolution flows. Defaults reproduce the observed behavior
// of the legacy system: 3 insert attempts, 5 lookup attempts, 2 seconds
// between attempts.
type ProvisioningConfig struct {
	ProfileInsertAttempts int
	ProfileLookupAttempts int
	RetryDelay            time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	dbConfig := DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "3306"),
		Username: getEnv("DB_USERNAME", "root"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "hospital"),
	}

	// Build DSN (Data Source Name) for MySQL connection
	dbConfig.DSN = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		dbConfig.Username, dbConfig.Password, dbConfig.Host, dbConfig.Port, dbConfig.Name)

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	jwtExpMinutes, err := strconv.Atoi(getEnv("JWT_EXPIRATION_MINUTES", "15"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRATION_MINUTES: %w", err)
	}

	jwtRefreshExpHours, err := strconv.Atoi(getEnv("JWT_REFRESH_EXPIRATION_HOURS", "168")) // 7 days
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_REFRESH_EXPIRATION_HOURS: %w", err)
	}

	insertAttempts, err := strconv.Atoi(getEnv("PROVISION_PROFILE_INSERT_ATTEMPTS", "3"))
	if err != nil {
		return nil, fmt.Errorf("invalid PROVISION_PROFILE_INSERT_ATTEMPTS: %w", err)
	}

	lookupAttempts, err := strconv.Atoi(getEnv("RESOLVE_PROFILE_LOOKUP_ATTEMPTS", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid RESOLVE_PROFILE_LOOKUP_ATTEMPTS: %w", err)
	}

	retryDelayMs, err := strconv.Atoi(getEnv("PROVISION_RETRY_DELAY_MS", "2000"))
	if err != nil {
		return nil, fmt.Errorf("invalid PROVISION_RETRY_DELAY_MS: %w", err)
	}

	return &Config{
		Port:             getEnv("PORT", "3001"),
		Origin:           getEnv("ORIGIN", "http://localhost:4200"),
		Environment:      getEnv("APP_ENV", "development"),
		JWTSecret:        getEnv("JWT_SECRET", "default_jwt_secret"),
		JWTRefreshSecret: getEnv("JWT_REFRESH_SECRET", "default_refresh_secret"),
		Database:         dbConfig,
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		JWTExpirationMinutes:      jwtExpMinutes,
		JWTRefreshExpirationHours: jwtRefreshExpHours,
		Provisioning: ProvisioningConfig{
			ProfileInsertAttempts: insertAttempts,
			ProfileLookupAttempts: lookupAttempts,
			RetryDelay:            time.Duration(retryDelayMs) * time.Millisecond,
		},
		ReportWebhookURL: getEnv("REPORT_WEBHOOK_URL", ""),
	}, nil
}

// Helper function to get environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
