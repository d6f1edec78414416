package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the settings for the todoist command.
type Config struct {
	Todoist TodoistConfig
	Logger  LoggerConfig
}

type TodoistConfig struct {
	// BaseURL is the API root, with trailing slash.
	BaseURL string
	// APIToken authenticates without an email or password when set.
	APIToken string
	Email    string
	Password string
	Timeout  time.Duration
}

type LoggerConfig struct {
	Level        string
	Mode         string
	Encoding     string
	ColorEnabled bool
}

// Load loads configuration using Viper.
// Config file name: config.yaml — searched in ./config, ., /etc/todoist/
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/todoist/")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{}

	cfg.Todoist.BaseURL = viper.GetString("todoist.base_url")
	cfg.Todoist.APIToken = viper.GetString("todoist.api_token")
	cfg.Todoist.Email = viper.GetString("todoist.email")
	cfg.Todoist.Password = viper.GetString("todoist.password")
	cfg.Todoist.Timeout = viper.GetDuration("todoist.timeout")
	if token := viper.GetString("todoist_api_token"); token != "" {
		cfg.Todoist.APIToken = token
	}

	cfg.Logger.Level = viper.GetString("logger.level")
	cfg.Logger.Mode = viper.GetString("logger.mode")
	cfg.Logger.Encoding = viper.GetString("logger.encoding")
	cfg.Logger.ColorEnabled = viper.GetBool("logger.color_enabled")

	if cfg.Todoist.APIToken == "" && (cfg.Todoist.Email == "" || cfg.Todoist.Password == "") {
		return nil, fmt.Errorf("no credentials configured - set todoist.api_token or todoist.email and todoist.password")
	}

	return cfg, nil
}

func setDefaults() {
	viper.SetDefault("todoist.base_url", "https://api.todoist.com/API/v8/")
	viper.SetDefault("todoist.timeout", "30s")
	viper.SetDefault("logger.level", "debug")
	viper.SetDefault("logger.mode", "debug")
	viper.SetDefault("logger.encoding", "console")
	viper.SetDefault("logger.color_enabled", true)
}
