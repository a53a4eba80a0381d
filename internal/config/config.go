package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverRedis    = "redis"
	StoreDriverMemory   = "memory"
)

type Config struct {
	AppName  string
	AppEnv   string
	Port     string `validate:"required"`
	LogLevel string `validate:"oneof=trace debug info warn error fatal panic"`

	Store    StoreConfig
	DB       DBConfig
	Redis    RedisConfig
	RabbitMQ RabbitMQConfig
	JWT      JWTConfig
	Metrics  MetricsConfig
}

type StoreConfig struct {
	Driver string `validate:"oneof=postgres redis memory"`
}

type DBConfig struct {
	URL          string
	MaxOpenConns int `validate:"gte=0"`
	MaxIdleConns int `validate:"gte=0"`
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int `validate:"gte=0"`
}

// RabbitMQConfig leaves URL empty to disable change events.
type RabbitMQConfig struct {
	URL   string
	Queue string `validate:"required"`
}

type JWTConfig struct {
	Secret     string        `validate:"required"`
	Expiration time.Duration `validate:"gt=0"`
}

type MetricsConfig struct {
	Addr string
}

var validate = validator.New()

// Load reads .env (if any) and the process environment. The result is
// validated; a missing JWT secret or store address is an error.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logrus.WithError(err).Warn("Failed to read .env file")
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("APP_NAME", "product-api")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PORT", "5000")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORE_DRIVER", StoreDriverPostgres)
	v.SetDefault("DB_MAX_OPEN_CONNS", 100)
	v.SetDefault("DB_MAX_IDLE_CONNS", 10)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("RABBITMQ_QUEUE", "catalog_events")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("METRICS_ADDR", ":8088")

	cfg := &Config{
		AppName:  v.GetString("APP_NAME"),
		AppEnv:   v.GetString("APP_ENV"),
		Port:     v.GetString("PORT"),
		LogLevel: strings.ToLower(v.GetString("LOG_LEVEL")),

		Store: StoreConfig{
			Driver: strings.ToLower(v.GetString("STORE_DRIVER")),
		},

		DB: DBConfig{
			URL:          v.GetString("DATABASE_URL"),
			MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
		},

		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},

		RabbitMQ: RabbitMQConfig{
			URL:   v.GetString("RABBITMQ_URL"),
			Queue: v.GetString("RABBITMQ_QUEUE"),
		},

		JWT: JWTConfig{
			Secret:     v.GetString("JWT_SECRET"),
			Expiration: v.GetDuration("JWT_EXPIRATION"),
		},

		Metrics: MetricsConfig{
			Addr: v.GetString("METRICS_ADDR"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	switch c.Store.Driver {
	case StoreDriverPostgres:
		if c.DB.URL == "" {
			return errors.New("invalid configuration: DATABASE_URL is required for the postgres store")
		}
	case StoreDriverRedis:
		if c.Redis.Addr == "" {
			return errors.New("invalid configuration: REDIS_ADDR is required for the redis store")
		}
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func (c *Config) EventsEnabled() bool {
	return c.RabbitMQ.URL != ""
}
