package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverFirestore = "firestore"
	DriverSQLite    = "sqlite"
)

type Config struct {
	Port              string
	GinMode           string
	StoreDriver       string
	CredentialsFile   string
	FirebaseProjectID string
	TaskCollection    string
	SQLitePath        string
	JWTSecret         string
	DeleteAllSentinel string
	PreviewLimit      int
	CORSOrigins       []string
	LogLevel          string
	LogFormat         string
}

// SetDefaults registers every key with its default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8800")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("STORE_DRIVER", DriverFirestore)
	v.SetDefault("GOOGLE_APPLICATION_CREDENTIALS_1", "")
	v.SetDefault("FIREBASE_PROJECT_ID", "")
	v.SetDefault("TASK_COLLECTION", "Tasks")
	v.SetDefault("SQLITE_PATH", "tasky.db")
	v.SetDefault("JWT_SECRET_KEY", "")
	v.SetDefault("DELETE_ALL_SENTINEL", "all")
	v.SetDefault("DASHBOARD_PREVIEW_LIMIT", 10)
	v.SetDefault("CORS_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
}

// Load reads .env (when present), the optional config file and the environment,
// in increasing order of precedence.
func Load(configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}
	return FromViper(v)
}

func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:              v.GetString("PORT"),
		GinMode:           v.GetString("GIN_MODE"),
		StoreDriver:       strings.ToLower(v.GetString("STORE_DRIVER")),
		CredentialsFile:   v.GetString("GOOGLE_APPLICATION_CREDENTIALS_1"),
		FirebaseProjectID: v.GetString("FIREBASE_PROJECT_ID"),
		TaskCollection:    v.GetString("TASK_COLLECTION"),
		SQLitePath:        v.GetString("SQLITE_PATH"),
		JWTSecret:         v.GetString("JWT_SECRET_KEY"),
		DeleteAllSentinel: v.GetString("DELETE_ALL_SENTINEL"),
		PreviewLimit:      v.GetInt("DASHBOARD_PREVIEW_LIMIT"),
		CORSOrigins:       splitList(v.GetString("CORS_ORIGINS")),
		LogLevel:          v.GetString("LOG_LEVEL"),
		LogFormat:         strings.ToLower(v.GetString("LOG_FORMAT")),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverFirestore, DriverSQLite:
	default:
		return fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", DriverFirestore, DriverSQLite, c.StoreDriver)
	}
	if c.StoreDriver == DriverSQLite && c.SQLitePath == "" {
		return errors.New("SQLITE_PATH is required for the sqlite driver")
	}
	if c.PreviewLimit <= 0 {
		return fmt.Errorf("DASHBOARD_PREVIEW_LIMIT must be positive, got %d", c.PreviewLimit)
	}
	if c.DeleteAllSentinel == "" {
		return errors.New("DELETE_ALL_SENTINEL must not be empty")
	}
	switch c.GinMode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("GIN_MODE must be debug, release or test, got %q", c.GinMode)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	return nil
}

// RequireJWTSecret reports a missing JWT_SECRET_KEY for commands that verify or sign tokens.
func (c *Config) RequireJWTSecret() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET_KEY is not set")
	}
	return nil
}

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func (c *Config) NewLogger() *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
