// Package config описывает настройки сервисов MindWell и их загрузку из YAML.
//
// Путь к файлу задаётся переменной окружения CONFIG_PATH. Секреты можно
// переопределить переменными окружения (см. теги env).
package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Окружения, от которых зависит формат логов.
const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

// Config общая структура для хранения настроек всех бинарников.
type Config struct {
	Env                     string `yaml:"env" env:"MINDWELL_ENV" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"DATABASE_URL" env-required:"true"`
	MigrationsPath          string `yaml:"migrations_path" env-default:"./migrations"`
	FrontendURL             string `yaml:"frontend_url" env:"FRONTEND_URL" env-default:"http://localhost:3000"`
	RedisConnection         `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	RabbitMQ                `yaml:"rabbitmq"`
	SMTP                    `yaml:"smtp"`
	Paystack                `yaml:"paystack"`
	OpenAI                  `yaml:"openai"`
	Subscription            `yaml:"subscription"`
	RateLimit               `yaml:"rate_limit"`
}

// HTTPServer настройки HTTP сервера.
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// RedisConnection настройки подключения к redis.
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	TimeoutRedis time.Duration `yaml:"timeoutredis"`
}

// JWTToken настройки сессионных токенов.
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY" env-required:"true"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"24h"`
}

// RabbitMQ настройки брокера. Пустой URL в API означает, что письма
// только логируются и никуда не отправляются.
type RabbitMQ struct {
	RabbitMQURL        string        `yaml:"url" env:"RABBITMQ_URL"`
	RabbitMQMaxRetries int           `yaml:"max_retries" env-default:"5"`
	RabbitMQRetryDelay time.Duration `yaml:"retry_delay" env-default:"3s"`
}

// SMTP настройки отправки писем. Без SMTPUser воркер только логирует письма.
type SMTP struct {
	SMTPHost string `yaml:"host" env:"SMTP_HOST"`
	SMTPPort string `yaml:"port" env:"SMTP_PORT" env-default:"587"`
	SMTPUser string `yaml:"user" env:"SMTP_USER"`
	SMTPPass string `yaml:"password" env:"SMTP_PASSWORD"`
	SMTPFrom string `yaml:"from" env:"SMTP_FROM"`
}

// Paystack настройки платёжного шлюза.
type Paystack struct {
	PaystackBaseURL     string        `yaml:"base_url" env-default:"https://api.paystack.co"`
	PaystackSecretKey   string        `yaml:"secret_key" env:"PAYSTACK_SECRET_KEY"`
	PaystackTimeout     time.Duration `yaml:"timeout" env-default:"10s"`
	PaystackCallbackURL string        `yaml:"callback_url" env:"PAYSTACK_CALLBACK_URL"`
	// Порог подряд идущих ошибок, после которого размыкается circuit breaker.
	BreakerFailures uint32        `yaml:"breaker_failures" env-default:"5"`
	BreakerTimeout  time.Duration `yaml:"breaker_timeout" env-default:"30s"`
}

// OpenAI настройки анализа тональности и генерации текстов.
type OpenAI struct {
	OpenAIAPIKey  string        `yaml:"api_key" env:"OPENAI_API_KEY"`
	OpenAIBaseURL string        `yaml:"base_url" env-default:"https://api.openai.com/v1"`
	OpenAIModel   string        `yaml:"model" env-default:"gpt-3.5-turbo"`
	OpenAITimeout time.Duration `yaml:"timeout" env-default:"15s"`
}

// Subscription параметры премиум-подписки и одноразовых токенов.
type Subscription struct {
	PlanAmount        int64         `yaml:"plan_amount" env-default:"500000"`
	PlanCurrency      string        `yaml:"plan_currency" env-default:"KES"`
	Period            time.Duration `yaml:"period" env-default:"720h"`
	ReminderLead      time.Duration `yaml:"reminder_lead" env-default:"72h"`
	ReminderInterval  time.Duration `yaml:"reminder_interval" env-default:"24h"`
	VerificationTTL   time.Duration `yaml:"verification_ttl" env-default:"24h"`
	PasswordResetTTL  time.Duration `yaml:"password_reset_ttl" env-default:"1h"`
	DashboardCacheTTL time.Duration `yaml:"dashboard_cache_ttl" env-default:"60s"`
}

// RateLimit ограничение частоты запросов к публичным эндпоинтам аутентификации.
type RateLimit struct {
	RPS   float64 `yaml:"rps" env-default:"1"`
	Burst int     `yaml:"burst" env-default:"5"`
}

// MustLoad читает конфиг из CONFIG_PATH и завершает процесс при ошибке.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}

// Load читает конфиг по пути configPath.
func Load(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); err != nil {
		return nil, err
	}
	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// WebhookSecret возвращает секрет для проверки подписи вебхуков Paystack.
// Paystack подписывает вебхуки тем же секретным ключом, что используется для API.
func (c *Config) WebhookSecret() string {
	return c.PaystackSecretKey
}
