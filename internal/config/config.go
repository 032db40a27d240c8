package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Server
	Port     string `toml:"port"`
	Env      string `toml:"env"`
	LogLevel string `toml:"log_level"`

	// Database
	DBDriver   string `toml:"db_driver"`
	DBHost     string `toml:"db_host"`
	DBPort     string `toml:"db_port"`
	DBUser     string `toml:"db_user"`
	DBPassword string `toml:"db_password"`
	DBName     string `toml:"db_name"`
	DBSSLMode  string `toml:"db_sslmode"`
	SQLitePath string `toml:"sqlite_path"`

	MigrationsDir string `toml:"migrations_dir"`

	// JWT
	JWTSecret               string        `toml:"jwt_secret"`
	JWTRefreshSecret        string        `toml:"jwt_refresh_secret"`
	JWTExpirationDur        time.Duration `toml:"-"`
	JWTRefreshExpirationDur time.Duration `toml:"-"`
	JWTExpiresIn            string        `toml:"jwt_expires_in"`
	JWTRefreshExpiresIn     string        `toml:"jwt_refresh_expires_in"`

	// Metrics
	MetricsAPIKey string `toml:"metrics_api_key"`
}

var appConfig *Config

// defaults returns the built-in configuration used for local development.
func defaults() *Config {
	return &Config{
		Port:                "8080",
		Env:                 "development",
		LogLevel:            "",
		DBDriver:            "postgres",
		DBHost:              "localhost",
		DBPort:              "5432",
		DBUser:              "juntos",
		DBPassword:          "juntos",
		DBName:              "juntos",
		DBSSLMode:           "disable",
		SQLitePath:          "juntos.db",
		MigrationsDir:       "migrations",
		JWTSecret:           "fallback-secret-key-for-dev-only",
		JWTRefreshSecret:    "fallback-refresh-secret-for-dev-only",
		JWTExpiresIn:        "24h",
		JWTRefreshExpiresIn: "168h",
	}
}

// Load loads configuration from defaults, an optional TOML file named by
// CONFIG_FILE, and environment variables, in increasing order of precedence.
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config file %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	cfg.JWTExpirationDur = parseDuration("JWT_EXPIRES_IN", cfg.JWTExpiresIn, 24*time.Hour)
	cfg.JWTRefreshExpirationDur = parseDuration("JWT_REFRESH_EXPIRES_IN", cfg.JWTRefreshExpiresIn, 7*24*time.Hour)

	if cfg.DBDriver != "postgres" && cfg.DBDriver != "sqlite" {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q (use postgres or sqlite)", cfg.DBDriver)
	}

	appConfig = cfg
	return cfg, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// Set replaces the active configuration. Tests use it to pin secrets.
func Set(cfg *Config) {
	appConfig = cfg
}

// Default returns a fully resolved configuration without reading the
// environment or any file.
func Default() *Config {
	cfg := defaults()
	cfg.JWTExpirationDur = 24 * time.Hour
	cfg.JWTRefreshExpirationDur = 7 * 24 * time.Hour
	return cfg
}

func applyEnv(cfg *Config) {
	overrides := map[string]*string{
		"PORT":                   &cfg.Port,
		"ENV":                    &cfg.Env,
		"LOG_LEVEL":              &cfg.LogLevel,
		"DB_DRIVER":              &cfg.DBDriver,
		"DB_HOST":                &cfg.DBHost,
		"DB_PORT":                &cfg.DBPort,
		"DB_USER":                &cfg.DBUser,
		"DB_PASSWORD":            &cfg.DBPassword,
		"DB_NAME":                &cfg.DBName,
		"DB_SSLMODE":             &cfg.DBSSLMode,
		"SQLITE_PATH":            &cfg.SQLitePath,
		"MIGRATIONS_DIR":         &cfg.MigrationsDir,
		"JWT_SECRET":             &cfg.JWTSecret,
		"JWT_REFRESH_SECRET":     &cfg.JWTRefreshSecret,
		"JWT_EXPIRES_IN":         &cfg.JWTExpiresIn,
		"JWT_REFRESH_EXPIRES_IN": &cfg.JWTRefreshExpiresIn,
		"METRICS_API_KEY":        &cfg.MetricsAPIKey,
	}
	for key, target := range overrides {
		*target = getEnv(key, *target)
	}
}

func parseDuration(key, value string, fallback time.Duration) time.Duration {
	dur, err := time.ParseDuration(value)
	if err != nil || dur <= 0 {
		log.Printf("Warning: invalid %s value '%s', falling back to %s\n", key, value, fallback)
		return fallback
	}
	return dur
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
