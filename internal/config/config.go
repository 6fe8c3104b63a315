package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "COMMERCE"

// Storage backends
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

type Config struct {
	Server  ServerConfig
	Storage string
	Seed    bool
	DB      DBConfig
	Auth    AuthConfig
	Log     LogConfig
}

type ServerConfig struct {
	Addr    string
	GinMode string
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

type AuthConfig struct {
	Secret   string
	TokenTTL time.Duration
	// Admins are the usernames allowed to manage categories
	Admins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// DSN renders the PostgreSQL connection string
func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=UTC",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode)
}

// Load reads configuration from flags, then COMMERCE_* environment variables,
// then an optional .env file. Flags set explicitly win over the environment.
func Load(args []string) (Config, error) {
	fs := pflag.NewFlagSet("commerce", pflag.ContinueOnError)

	envFile := fs.String("env-file", ".env", "dotenv file loaded before reading the environment")

	// server config
	fs.String("server-addr", ":8080", "listen address")
	fs.String("gin-mode", "release", "gin mode: debug, release or test")

	// storage config
	fs.String("storage", StorageMemory, "storage backend: memory or postgres")
	fs.Bool("seed", false, "populate the store with sample data on start")

	// db config
	fs.String("db-host", "localhost", "")
	fs.Int("db-port", 5432, "")
	fs.String("db-user", "", "")
	fs.String("db-password", "", "")
	fs.String("db-name", "", "")
	fs.String("db-sslmode", "disable", "")

	// auth config
	fs.String("auth-secret", "", "HMAC secret used to sign bearer tokens")
	fs.Duration("token-ttl", 24*time.Hour, "bearer token lifetime")
	fs.StringSlice("auth-admins", nil, "comma separated usernames allowed to manage categories")

	// log config
	fs.String("log-level", "info", "")
	fs.String("log-format", "json", "json or text")

	if err := fs.Parse(args); err != nil {
		return Config{}, fmt.Errorf("parse flags: %w", err)
	}

	if err := loadDotEnv(*envFile); err != nil {
		return Config{}, err
	}

	v := viper.New()
	if err := v.BindPFlags(fs); err != nil {
		return Config{}, fmt.Errorf("bind flags: %w", err)
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cfg := Config{
		Server: ServerConfig{
			Addr:    v.GetString("server-addr"),
			GinMode: v.GetString("gin-mode"),
		},
		Storage: strings.ToLower(v.GetString("storage")),
		Seed:    v.GetBool("seed"),
		DB: DBConfig{
			Host:     v.GetString("db-host"),
			Port:     v.GetInt("db-port"),
			User:     v.GetString("db-user"),
			Password: v.GetString("db-password"),
			Name:     v.GetString("db-name"),
			SSLMode:  v.GetString("db-sslmode"),
		},
		Auth: AuthConfig{
			Secret:   v.GetString("auth-secret"),
			TokenTTL: v.GetDuration("token-ttl"),
			Admins:   splitList(v.GetStringSlice("auth-admins")),
		},
		Log: LogConfig{
			Level:  v.GetString("log-level"),
			Format: v.GetString("log-format"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every missing or inconsistent setting at once
func (c Config) Validate() error {
	var errs []error
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server-addr is required"))
	}
	if c.Auth.Secret == "" {
		errs = append(errs, errors.New("auth-secret is required"))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("token-ttl must be positive"))
	}

	switch c.Storage {
	case StorageMemory:
	case StoragePostgres:
		if c.DB.Host == "" || c.DB.Name == "" || c.DB.User == "" {
			errs = append(errs, errors.New("db-host, db-name and db-user are required for postgres storage"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage %q", c.Storage))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// splitList flattens comma separated entries. Values coming from the
// environment arrive as one string, flag values already split.
func splitList(values []string) []string {
	var out []string
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// loadDotEnv loads path into the process environment when the file exists.
// Variables already set are not overridden.
func loadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}
