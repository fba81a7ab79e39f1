package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/mediconnect/mediconnect_backend/pkg/constants"
)

func ReadConfig(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigName(constants.ConfigName)
	v.SetConfigType(constants.ConfigFormat)
	v.AddConfigPath(configPath)

	// MEDICONNECT_DATABASE_HOST overrides database.host
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || os.Getenv(constants.EnvPrefix+"_DATABASE_HOST") == "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

func MustReadConfig(path string) *Config {
	config, err := ReadConfig(path)
	if err != nil {
		panic(err)
	}
	return config
}

// setDefaults registers every key that may come only from the environment so
// AutomaticEnv can see it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.timeout_seconds", 30)
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.databases", []string{"mediconnect", "mediconnect_casbin"})

	v.SetDefault("clinic.timezone", constants.DefaultTimezone)
	v.SetDefault("clinic.booking_lead_minutes", 30)
	v.SetDefault("clinic.change_lead_minutes", 120)
	v.SetDefault("clinic.rebook_lead_minutes", 0)
	v.SetDefault("clinic.daily_cap", 3)
	v.SetDefault("clinic.horizon_days", 180)
	v.SetDefault("clinic.open_blocks_limit", 50)
	v.SetDefault("clinic.reason_cache_seconds", 600)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "mediconnect")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("casbin_database.host", "localhost")
	v.SetDefault("casbin_database.port", 5432)
	v.SetDefault("casbin_database.user", "postgres")
	v.SetDefault("casbin_database.password", "")
	v.SetDefault("casbin_database.dbname", "mediconnect_casbin")
	v.SetDefault("casbin_database.sslmode", "disable")

	v.SetDefault("redis.addr", "localhost:6379")

	v.SetDefault("authentication.jwt.secret", "")
	v.SetDefault("authentication.jwt.issuer", constants.AppName)
	v.SetDefault("authentication.jwt.access_ttl_minutes", 60)
	v.SetDefault("authentication.session_ttl_minutes", 720)

	v.SetDefault("authorization.casbin_model_path", "casbin_model.conf")
	v.SetDefault("authorization.enable_audit", true)

	v.SetDefault("email.app_name", "MediConnect")
	v.SetDefault("sms.default_region", "CL")
	v.SetDefault("nats.subject", "mediconnect.appointment")
	v.SetDefault("notifications.transport", "direct")
	v.SetDefault("notifications.timeout_seconds", 15)

	v.SetDefault("observability.service_name", "mediconnect_backend")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.output.stdout", true)
}
