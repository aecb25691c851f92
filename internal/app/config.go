package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config — вся конфигурация процесса; читается один раз на старте
// и дальше не меняется.
type Config struct {
	App struct {
		Name        string `koanf:"name"`
		HTTPAddr    string `koanf:"http_addr"`
		MetricsAddr string `koanf:"metrics_addr"`
		LogLevel    string `koanf:"log_level"`
	} `koanf:"app"`

	Postgres struct {
		DSN string `koanf:"dsn"`
	} `koanf:"postgres"`

	Telegram struct {
		// Endpoint — общий URL доставки уведомлений.
		Endpoint string `koanf:"endpoint"`
		// ChatIDs — список получателей рассылки.
		ChatIDs     []string      `koanf:"chat_ids"`
		SendTimeout time.Duration `koanf:"send_timeout"`
	} `koanf:"telegram"`

	Security struct {
		// JWTSecret общий с внешним сервисом авторизации.
		JWTSecret string `koanf:"jwt_secret"`
		Issuer    string `koanf:"issuer"`
		Audience  string `koanf:"audience"`
	} `koanf:"security"`

	Redis struct {
		Addr     string `koanf:"addr"`
		Password string `koanf:"password"`
	} `koanf:"redis"`

	Idempotency struct {
		TTL time.Duration `koanf:"ttl"`
	} `koanf:"idempotency"`
}

// DefaultConfig возвращает конфигурацию для локального запуска.
func DefaultConfig() Config {
	var cfg Config
	cfg.App.Name = "nucoffee-orders"
	cfg.App.HTTPAddr = ":8080"
	cfg.App.MetricsAddr = ":9090"
	cfg.App.LogLevel = "info"
	cfg.Telegram.SendTimeout = 5 * time.Second
	cfg.Idempotency.TTL = 24 * time.Hour
	return cfg
}

// LoadConfig читает yaml-файл (опционально) и оверлей переменных окружения
// с префиксом NUCOFFEE_ (вложенность через __, например NUCOFFEE_POSTGRES__DSN).
func LoadConfig(path string) (Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider("NUCOFFEE_", ".", func(s string) string {
		s = strings.TrimPrefix(s, "NUCOFFEE_")
		s = strings.ReplaceAll(s, "__", ".")
		return strings.ToLower(s)
	}), nil); err != nil {
		return Config{}, fmt.Errorf("env overlay: %w", err)
	}

	cfg := DefaultConfig()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate проверяет согласованность конфигурации.
func (c Config) Validate() error {
	if c.App.HTTPAddr == "" {
		return fmt.Errorf("app.http_addr required")
	}
	if c.App.MetricsAddr == "" {
		return fmt.Errorf("app.metrics_addr required")
	}
	if len(c.Telegram.ChatIDs) > 0 && c.Telegram.Endpoint == "" {
		return fmt.Errorf("telegram.endpoint required when chat_ids are configured")
	}
	if c.Telegram.SendTimeout < 0 {
		return fmt.Errorf("telegram.send_timeout must be non-negative")
	}
	return nil
}
