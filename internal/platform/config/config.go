package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	ESI      ESIConfig      `mapstructure:"esi"`
	Sync     SyncConfig     `mapstructure:"sync"`
	Webhooks WebhooksConfig `mapstructure:"webhooks"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	Path           string `mapstructure:"path"`
	MaxConnections int    `mapstructure:"max_connections"`
}

type ESIConfig struct {
	BaseURL        string            `mapstructure:"base_url"`
	RequestTimeout time.Duration     `mapstructure:"request_timeout"`
	MaxRetries     uint64            `mapstructure:"max_retries"`
	RetryBackoff   time.Duration     `mapstructure:"retry_backoff"`
	Tokens         map[string]string `mapstructure:"tokens"`
}

// SyncConfig is passed into the engines explicitly; feature flags are
// evaluated once per run, never read from globals mid-sync.
type SyncConfig struct {
	Interval              time.Duration `mapstructure:"interval"`
	TaskTimeout           time.Duration `mapstructure:"task_timeout"`
	CustomsOfficesEnabled bool          `mapstructure:"customs_offices_enabled"`
	StarbasesEnabled      bool          `mapstructure:"starbases_enabled"`
	TimersEnabled         bool          `mapstructure:"timers_enabled"`
	DefaultTagsEnabled    bool          `mapstructure:"default_tags_enabled"`
	DefaultLanguage       string        `mapstructure:"default_language"`
	Languages             []string      `mapstructure:"languages"`

	StructuresGrace    time.Duration `mapstructure:"structures_grace"`
	NotificationsGrace time.Duration `mapstructure:"notifications_grace"`
	ForwardingGrace    time.Duration `mapstructure:"forwarding_grace"`
	AssetsGrace        time.Duration `mapstructure:"assets_grace"`
}

type WebhooksConfig struct {
	SendTimeout time.Duration `mapstructure:"send_timeout"`
}

type LoggingConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	FilePath string `mapstructure:"file_path"`
}

func Load(path string) (*Config, error) {
	viper.SetConfigFile(path)
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("esi.base_url", "https://esi.evetech.net/latest")
	viper.SetDefault("esi.request_timeout", "30s")
	viper.SetDefault("esi.max_retries", 3)
	viper.SetDefault("esi.retry_backoff", "1s")

	viper.SetDefault("sync.interval", "5m")
	viper.SetDefault("sync.task_timeout", "10m")
	viper.SetDefault("sync.default_language", "en-us")
	viper.SetDefault("sync.languages", []string{"en-us", "de", "ko", "ru"})
	viper.SetDefault("sync.structures_grace", "30m")
	viper.SetDefault("sync.notifications_grace", "30m")
	viper.SetDefault("sync.forwarding_grace", "30m")
	viper.SetDefault("sync.assets_grace", "30m")

	viper.SetDefault("webhooks.send_timeout", "10s")
}
