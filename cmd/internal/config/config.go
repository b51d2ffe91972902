package config

import (
	"sync"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/zhukovvlad/listings-go/cmd/pkg/logging"
)

// ServiceAuthConfig — server-to-server аутентификация входящих запросов
// от сервиса извлечения.
type ServiceAuthConfig struct {
	Enabled bool   `yaml:"enabled" env-default:"false"`
	APIKey  string `yaml:"api_key" env:"MS_SERVER_API_KEY" env-default:""`
}

// RateLimitConfig — ограничение частоты запросов обработки.
type RateLimitConfig struct {
	Enabled bool `yaml:"enabled" env-default:"true"`
	RPS     int  `yaml:"rps" env-default:"10"`
	Burst   int  `yaml:"burst" env-default:"20"`
}

// ListingLogConfig — журнал обработанных объявлений в Postgres.
// Выключенный журнал не мешает обработке: сервис работает без БД.
type ListingLogConfig struct {
	Enabled bool   `yaml:"enabled" env-default:"false"`
	DSN     string `yaml:"dsn" env:"LISTING_LOG_DSN" env-default:""`
}

type Config struct {
	IsDebug *bool `yaml:"is_debug" env-required:"true"`
	Listen  struct {
		Type   string `yaml:"type" env-default:"port"`
		BindIP string `yaml:"bind_ip" env-default:"127.0.0.1"`
		Port   string `yaml:"port" env-default:"8080"`
	} `yaml:"listen"`
	RulesPath   string            `yaml:"rules_path" env:"RULES_PATH" env-default:"./cmd/config/rules.yml"`
	ServiceAuth ServiceAuthConfig `yaml:"service_auth"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit"`
	ListingLog  ListingLogConfig  `yaml:"listing_log"`
}

var instance *Config
var once sync.Once

func GetConfig() *Config {
	once.Do(func() {
		logger := logging.GetLogger()
		logger.Info("read application configuration")
		instance = &Config{}
		if err := cleanenv.ReadConfig("./cmd/config/config.yml", instance); err != nil {
			help, _ := cleanenv.GetDescription(instance, nil)
			logger.Info(help)
			logger.Fatal(err)
		}
	})

	return instance
}
