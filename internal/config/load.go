package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable the loader reads,
// e.g. TASKER_SERVER_PORT for server.port.
const EnvPrefix = "TASKER"

// defaults lists every known key together with its default value.
// Keys with a nil default have no default but are still bound to the environment.
var defaults = map[string]any{
	"server.port":                       8080,
	"server.log_level":                  "info",
	"server.log_format":                 "json",
	"server.auth_rate_limit_per_minute": 30,
	"server.shutdown_timeout_seconds":   10,
	"database.url":                      nil,
	"database.max_open_conns":           10,
	"database.max_idle_conns":           5,
	"database.auto_migrate":             false,
	"auth.jwt_secret":                   nil,
	"auth.bcrypt_cost":                  10,
	"mail.sendgrid_api_key":             nil,
	"mail.from_address":                 "noreply@tasker.local",
	"mail.from_name":                    "Tasker",
	"mail.queue_size":                   100,
	"mail.worker_count":                 2,
	"mail.timeout_seconds":              10,
	"avatar.backend":                    AvatarBackendDatabase,
	"avatar.s3_bucket":                  nil,
	"avatar.s3_region":                  nil,
	"avatar.s3_endpoint":                nil,
	"avatar.s3_access_key_id":           nil,
	"avatar.s3_secret_access_key":       nil,
	"avatar.s3_use_path_style":          false,
}

// legacyEnv maps keys to the unprefixed variable names used by older
// deployments. The prefixed variable always wins.
var legacyEnv = map[string]string{
	"server.port":           "PORT",
	"database.url":          "DATABASE_URL",
	"auth.jwt_secret":       "JWT_SECRET",
	"mail.sendgrid_api_key": "SENDGRID_API_KEY",
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"port":         "server.port",
	"log-level":    "server.log_level",
	"database-url": "database.url",
}

// RegisterFlags adds the configuration flags understood by LoadWithFlags.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.String("config", "", "path to a YAML/JSON/TOML config file")
	flags.Int("port", 0, "HTTP listen port (overrides server.port)")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("database-url", "", "PostgreSQL connection URL")
}

// Load reads configuration from defaults and environment variables only.
func Load() (*Config, error) {
	return LoadWithFlags(nil)
}

// LoadWithFlags reads configuration from, in increasing precedence: defaults,
// the optional config file named by --config, environment variables, and
// explicitly set command-line flags. The result is validated before return.
func LoadWithFlags(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	for key, value := range defaults {
		if value != nil {
			v.SetDefault(key, value)
		}
		envNames := []string{key, envName(key)}
		if legacy, ok := legacyEnv[key]; ok {
			envNames = append(envNames, legacy)
		}
		if err := v.BindEnv(envNames...); err != nil {
			return nil, fmt.Errorf("failed to bind environment for %s: %w", key, err)
		}
	}

	if flags != nil {
		if configFile, err := flags.GetString("config"); err == nil && configFile != "" {
			v.SetConfigFile(configFile)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
			}
		}
		for name, key := range flagKeys {
			if flag := flags.Lookup(name); flag != nil {
				if err := v.BindPFlag(key, flag); err != nil {
					return nil, fmt.Errorf("failed to bind flag --%s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Server.LogLevel = strings.ToLower(cfg.Server.LogLevel)
	cfg.Server.LogFormat = strings.ToLower(cfg.Server.LogFormat)
	cfg.Avatar.Backend = strings.ToLower(cfg.Avatar.Backend)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks cfg against its struct tags and reports every failing field.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			problems := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				problems = append(problems, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(problems, ", "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func envName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}
