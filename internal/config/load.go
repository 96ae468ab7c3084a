package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. TAREAS_SERVER_PORT.
const EnvPrefix = "TAREAS"

var defaults = map[string]any{
	"server.port":                         8080,
	"server.log_level":                    "info",
	"server.cors_allowed_origins":         []string{"*"},
	"server.shutdown_timeout_seconds":     15,
	"database.url":                        "",
	"database.max_open_conns":             25,
	"database.max_idle_conns":             25,
	"database.conn_max_lifetime_minutes":  5,
	"auth.jwt_secret":                     "",
	"auth.token_lifetime_minutes":         60,
	"auth.refresh_token_lifetime_minutes": 10080,
	"auth.bcrypt_cost":                    10,
	"rate_limit.redis_url":                "",
	"rate_limit.login_attempts":           5,
	"rate_limit.window_seconds":           60,
	"bootstrap.admin_user_name":           "",
	"bootstrap.admin_email":               "",
	"bootstrap.admin_password":            "",
}

// Load configuration from environment variables and optionally a config.yaml
// file in the working directory. Environment variables take precedence over
// values from the file. Returns a populated Config or an error if
// loading or validation fails.
func Load() (*Config, error) {
	return LoadFrom(".")
}

// LoadFrom is Load reading config.yaml from dir.
func LoadFrom(dir string) (*Config, error) {
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only resolves keys viper already knows about during
	// Unmarshal, so bind every key explicitly.
	for key := range defaults {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("error binding env for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}
