package main

import (
	"fmt"
	"strings"

	"ecoverse_backend/internal/repository"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	configPath   = "./"
	configName   = "config"
	configFormat = "yaml"
)

type Config struct {
	Database repository.Config `yaml:"database"`
	Server   ServerConfig      `yaml:"server"`

	TelegramAuth TelegramAuthConfig `yaml:"telegramAuth"`
	Notify       NotifyConfig       `yaml:"notify"`
	RateLimit    RateLimitConfig    `yaml:"rateLimit"`

	// Telegram user ids allowed to use the review and admin routes.
	Reviewers []int64 `yaml:"reviewers"`

	LogLevel    string `yaml:"logLevel"`
	LogEncoding string `yaml:"logEncoding"`
}

type ServerConfig struct {
	Host            string `yaml:"host"`
	Port            string `yaml:"port"`
	ShutdownTimeout int    `yaml:"shutdownTimeout"`
}

type TelegramAuthConfig struct {
	TelegramBotToken string `yaml:"telegramBotToken"`
	DebugMode        bool   `yaml:"debugMode"`
}

type NotifyConfig struct {
	Telegram bool `yaml:"telegram"`
}

type RateLimitConfig struct {
	PerSecond float64 `yaml:"perSecond"`
	Burst     int     `yaml:"burst"`
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", "8888")
	viper.SetDefault("server.shutdownTimeout", 10)
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logEncoding", "json")
	viper.SetDefault("rateLimit.perSecond", 2)
	viper.SetDefault("rateLimit.burst", 5)
}

// LoadConfig reads config.yaml and lets APP_ prefixed environment variables override it.
// A .env file next to the binary is loaded first when present.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	viper.SetConfigName(configName)
	viper.AddConfigPath(configPath)
	viper.SetConfigType(configFormat)

	viper.AutomaticEnv()
	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Notify.Telegram && cfg.TelegramAuth.TelegramBotToken == "" {
		return nil, fmt.Errorf("notify.telegram requires telegramAuth.telegramBotToken")
	}

	return &cfg, nil
}
