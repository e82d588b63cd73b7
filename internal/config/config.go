package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Config keeps runtime settings for the journal.
type Config struct {
	TelegramToken   string        `mapstructure:"telegram_token"`
	DatabaseURL     string        `mapstructure:"database_url"`
	DataDir         string        `mapstructure:"data_dir"`
	ExportDir       string        `mapstructure:"export_dir"`
	HistoryDir      string        `mapstructure:"history_dir"`
	StreakPolicy    string        `mapstructure:"streak_policy"`
	SnapshotRefresh string        `mapstructure:"snapshot_refresh"`
	LockAfter       time.Duration `mapstructure:"lock_after"`
	Timezone        string        `mapstructure:"timezone"`
	LogLevel        string        `mapstructure:"log_level"`
	LogFormat       string        `mapstructure:"log_format"`
	LogFile         string        `mapstructure:"log_file"`
	SentryDSN       string        `mapstructure:"sentry_dsn"`
	Environment     string        `mapstructure:"environment"`
}

// ErrTelegramTokenMissing is returned by RequireTelegram when no bot token is configured.
var ErrTelegramTokenMissing = errors.New("TELEGRAM_TOKEN is required")

// Load reads configuration from an optional YAML file and the environment.
// Variables use the DAILYJOURNAL_ prefix; TELEGRAM_TOKEN, DATABASE_URL and
// SENTRY_DSN are also read without it.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetDefault("telegram_token", "")
	v.SetDefault("database_url", "")
	v.SetDefault("data_dir", "~/.dailyjournal")
	v.SetDefault("export_dir", "")
	v.SetDefault("history_dir", "")
	v.SetDefault("streak_policy", "grace")
	v.SetDefault("snapshot_refresh", "00:05")
	v.SetDefault("lock_after", "30m")
	v.SetDefault("timezone", "Local")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("log_file", "")
	v.SetDefault("sentry_dsn", "")
	v.SetDefault("environment", "development")

	v.SetEnvPrefix("DAILYJOURNAL")
	v.AutomaticEnv()
	_ = v.BindEnv("telegram_token", "DAILYJOURNAL_TELEGRAM_TOKEN", "TELEGRAM_TOKEN")
	_ = v.BindEnv("database_url", "DAILYJOURNAL_DATABASE_URL", "DATABASE_URL")
	_ = v.BindEnv("sentry_dsn", "DAILYJOURNAL_SENTRY_DSN", "SENTRY_DSN")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(".dailyjournal") // .yaml is implicit
		v.SetConfigType("yaml")
		if home, err := homedir.Dir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.resolvePaths(); err != nil {
		return Config{}, err
	}
	if _, err := cfg.Location(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) resolvePaths() error {
	dataDir, err := homedir.Expand(strings.TrimSpace(c.DataDir))
	if err != nil {
		return fmt.Errorf("expand data dir: %w", err)
	}
	c.DataDir = dataDir

	if c.DatabaseURL == "" {
		c.DatabaseURL = filepath.Join(dataDir, "journal.db")
	}
	if c.ExportDir == "" {
		c.ExportDir = filepath.Join(dataDir, "exports")
	}
	if c.HistoryDir == "" {
		c.HistoryDir = filepath.Join(dataDir, "history")
	}
	for _, p := range []*string{&c.ExportDir, &c.HistoryDir, &c.LogFile} {
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return fmt.Errorf("expand %q: %w", *p, err)
		}
		*p = expanded
	}
	return nil
}

// Location returns the zone used to decide what "today" is.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// RequireTelegram fails when the bot cannot be started.
func (c Config) RequireTelegram() error {
	if strings.TrimSpace(c.TelegramToken) == "" {
		return ErrTelegramTokenMissing
	}
	return nil
}
