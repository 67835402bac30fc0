// Package config loads prodtrack configuration from config.yaml and
// PRODTRACK_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"prodtrack/internal/infrastructure/storage/postgres"
	"prodtrack/pkg/logger"
)

// EnvPrefix prefixes every environment override, e.g. PRODTRACK_POSTGRES_DSN.
const EnvPrefix = "PRODTRACK"

type Configuration struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Postgres PostgresConfig `mapstructure:"postgres" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	Logging  logger.Config  `mapstructure:"logging"`
}

type ServerConfig struct {
	Address         string        `mapstructure:"address" validate:"required"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout" validate:"gte=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gte=0"`
}

type PostgresConfig struct {
	postgres.PoolConfig `mapstructure:",squash"`

	StatementTimeout time.Duration `mapstructure:"statement_timeout" validate:"gte=0"`
	LockTimeout      time.Duration `mapstructure:"lock_timeout" validate:"gte=0"`
}

type AuthConfig struct {
	JWTSecret      string        `mapstructure:"jwt_secret" validate:"required,min=16"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl" validate:"gt=0"`
}

// TxOptions returns transaction options with the configured timeouts.
func (c PostgresConfig) TxOptions() postgres.TxOptions {
	opts := postgres.DefaultTxOptions()
	if c.StatementTimeout > 0 {
		opts.StatementTimeout = c.StatementTimeout
	}
	if c.LockTimeout > 0 {
		opts.LockTimeout = c.LockTimeout
	}
	return opts
}

// NewConfig reads configuration from the first config.yaml found and the
// environment. A missing file is not an error.
func NewConfig() (*Configuration, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/prodtrack")

	return load(v)
}

// LoadFile reads configuration from path and the environment.
func LoadFile(path string) (*Configuration, error) {
	v := viper.New()
	v.SetConfigFile(path)
	return load(v)
}

func load(v *viper.Viper) (*Configuration, error) {
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper) {
	pool := postgres.DefaultPoolConfig("")
	tx := postgres.DefaultTxOptions()

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.request_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)

	v.SetDefault("postgres.dsn", "")
	v.SetDefault("postgres.max_conns", pool.MaxConns)
	v.SetDefault("postgres.min_conns", pool.MinConns)
	v.SetDefault("postgres.max_conn_lifetime", pool.MaxConnLifetime)
	v.SetDefault("postgres.max_conn_idle_time", pool.MaxConnIdleTime)
	v.SetDefault("postgres.health_check_period", pool.HealthCheckPeriod)
	v.SetDefault("postgres.application_name", pool.ApplicationName)
	v.SetDefault("postgres.statement_timeout", tx.StatementTimeout)
	v.SetDefault("postgres.lock_timeout", tx.LockTimeout)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.access_token_ttl", 30*time.Minute)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.development", false)
}

func (c Configuration) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
