package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StorageFile   = "file"
	StorageSQLite = "sqlite"
)

type Config struct {
	AppEnv   string `mapstructure:"APP_ENV"`
	Server   ServerConfig
	Storage  StorageConfig
	LogLevel string `mapstructure:"LOG_LEVEL"`
}

type ServerConfig struct {
	Port    string        `mapstructure:"SERVER_PORT"`
	Timeout time.Duration `mapstructure:"SERVER_TIMEOUT"`
}

type StorageConfig struct {
	Driver         string `mapstructure:"STORAGE_DRIVER"`
	DataDir        string `mapstructure:"DATA_DIR"`
	UsersSnapshot  string `mapstructure:"USERS_SNAPSHOT"`
	EventsSnapshot string `mapstructure:"EVENTS_SNAPSHOT"`
	SQLitePath     string `mapstructure:"SQLITE_PATH"`
}

func setDefaults() {
	viper.SetDefault("APP_ENV", "production")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_TIMEOUT", "15s")
	viper.SetDefault("STORAGE_DRIVER", StorageFile)
	viper.SetDefault("DATA_DIR", "data")
	viper.SetDefault("USERS_SNAPSHOT", "users.json")
	viper.SetDefault("EVENTS_SNAPSHOT", "events.json")
	viper.SetDefault("SQLITE_PATH", "data/cityevents.db")
}

// Load reads an optional .env file and then the environment. A missing .env
// is not an error.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf(".env file could not be loaded: %w", err)
	}

	setDefaults()
	viper.AutomaticEnv()

	var cfg Config

	cfg.AppEnv = viper.GetString("APP_ENV")
	cfg.Server.Port = viper.GetString("SERVER_PORT")
	cfg.Server.Timeout = viper.GetDuration("SERVER_TIMEOUT")

	cfg.Storage.Driver = strings.ToLower(strings.TrimSpace(viper.GetString("STORAGE_DRIVER")))
	cfg.Storage.DataDir = viper.GetString("DATA_DIR")
	cfg.Storage.UsersSnapshot = strings.TrimSpace(viper.GetString("USERS_SNAPSHOT"))
	cfg.Storage.EventsSnapshot = strings.TrimSpace(viper.GetString("EVENTS_SNAPSHOT"))
	cfg.Storage.SQLitePath = viper.GetString("SQLITE_PATH")

	cfg.LogLevel = viper.GetString("LOG_LEVEL")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case StorageFile, StorageSQLite:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	if c.Storage.UsersSnapshot == "" || c.Storage.EventsSnapshot == "" {
		return errors.New("snapshot names must not be empty")
	}
	if c.Storage.UsersSnapshot == c.Storage.EventsSnapshot {
		return errors.New("users and events snapshots must differ")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("invalid server timeout %s", c.Server.Timeout)
	}

	return nil
}

func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.AppEnv, "development")
}
