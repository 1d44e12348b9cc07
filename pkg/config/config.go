package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

const (
	DefaultWelcome = "Welcome to support bot! Please send your complete request in a single message, " +
		"and we'll forward it to our team. This helps us process your request efficiently."
	DefaultConfirmation = "Thanks! We've received your request and will respond within a few hours. " +
		"There's no need to send multiple messages for the same issue. If you'd like to add " +
		"more information, please include everything in one detailed message."
	DefaultRestartButton = "🔄 Start/Restart"
)

type Config struct {
	Telegram TelegramConfig `mapstructure:"telegram"`
	Messages MessagesConfig `mapstructure:"messages"`
	Log      LogConfig      `mapstructure:"log"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

type TelegramConfig struct {
	Token       string `mapstructure:"token"`
	AdminChatID int64  `mapstructure:"admin_chat_id"`
	PollTimeout int    `mapstructure:"poll_timeout"`
	Debug       bool   `mapstructure:"debug"`
}

type MessagesConfig struct {
	Welcome       string `mapstructure:"welcome"`
	Confirmation  string `mapstructure:"confirmation"`
	RestartButton string `mapstructure:"restart_button"`
}

type LogConfig struct {
	Development bool `mapstructure:"development"`
}

type MetricsConfig struct {
	// Addr is the listen address of the /metrics endpoint. Empty disables it.
	Addr string `mapstructure:"addr"`
}

// ConfigurationError reports a required startup value that is missing or
// malformed. The bot must not start when one is returned.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("config: %s %s", e.Field, e.Reason)
}

// LoadConfig reads the optional YAML file at path, then applies environment
// overrides. A missing file is not an error: the two required values are
// usually supplied through TELEGRAM_BOT_TOKEN and ADMIN_CHAT_ID.
func LoadConfig(path string) (Config, error) {
	v := viper.New()

	// Set default values
	v.SetDefault("telegram.poll_timeout", 60)
	v.SetDefault("telegram.debug", false)
	v.SetDefault("messages.welcome", DefaultWelcome)
	v.SetDefault("messages.confirmation", DefaultConfirmation)
	v.SetDefault("messages.restart_button", DefaultRestartButton)
	v.SetDefault("log.development", false)
	v.SetDefault("metrics.addr", "")

	// Enable environment variable support
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to stat config %s: %w", path, err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}

	// Get other environment variables
	for _, key := range []string{"TELEGRAM_BOT_TOKEN", "TELEGRAM_TOKEN"} {
		if token := v.GetString(key); token != "" {
			config.Telegram.Token = token
			break
		}
	}

	if raw := strings.TrimSpace(v.GetString("ADMIN_CHAT_ID")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Config{}, &ConfigurationError{Field: "ADMIN_CHAT_ID", Reason: "must be an integer chat id"}
		}
		config.Telegram.AdminChatID = id
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

// Validate checks the values without which the relay cannot run.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Telegram.Token) == "" {
		return &ConfigurationError{Field: "TELEGRAM_BOT_TOKEN", Reason: "must be set"}
	}
	if c.Telegram.AdminChatID == 0 {
		return &ConfigurationError{Field: "ADMIN_CHAT_ID", Reason: "must be set"}
	}
	if c.Telegram.PollTimeout < 0 {
		return &ConfigurationError{Field: "telegram.poll_timeout", Reason: "must not be negative"}
	}
	return nil
}
