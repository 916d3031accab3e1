package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

type Config struct {
	Environment string `env:"APP_ENV" envDefault:"development"`
	BaseURL     string `env:"BASE_URL" envDefault:"http://localhost:8080"`

	HTTP     HTTPConfig
	DB       DBConfig
	Midtrans MidtransConfig `envPrefix:"MIDTRANS_"`
	Redis    RedisConfig    `envPrefix:"REDIS_"`
	JWT      JWTConfig      `envPrefix:"JWT_"`
	SMTP     SMTPConfig     `envPrefix:"SMTP_"`
	Store    StoreConfig    `envPrefix:"STORE_"`
}

type HTTPConfig struct {
	Host string `env:"HTTP_HOST" envDefault:""`
	Port string `env:"PORT" envDefault:"8080"`
}

type DBConfig struct {
	DSN string `env:"DB_DSN" envDefault:"host=localhost user=postgres password=postgres dbname=konveksimax port=5432 sslmode=disable"`
}

type MidtransConfig struct {
	ServerKey  string `env:"SERVER_KEY"`
	ClientKey  string `env:"CLIENT_KEY"`
	Production bool   `env:"PRODUCTION" envDefault:"false"`
}

type RedisConfig struct {
	// Addr empty disables caching; region lookups then always hit upstream.
	Addr      string        `env:"ADDR"`
	RegionTTL time.Duration `env:"REGION_TTL" envDefault:"24h"`
}

type JWTConfig struct {
	Secret string `env:"SECRET,required"`
}

type SMTPConfig struct {
	// Host empty disables outbound mail.
	Host     string `env:"HOST"`
	Port     int    `env:"PORT" envDefault:"587"`
	User     string `env:"USER"`
	Password string `env:"PASSWORD"`
	From     string `env:"FROM"`
}

// StoreConfig is the pickup address stamped onto self-pickup orders.
type StoreConfig struct {
	Street     string `env:"STREET" envDefault:"Jl. Industri No. 12"`
	Province   string `env:"PROVINCE" envDefault:"Jawa Barat"`
	City       string `env:"CITY" envDefault:"Bandung"`
	District   string `env:"DISTRICT" envDefault:"Cibeunying"`
	PostalCode string `env:"POSTAL_CODE" envDefault:"40121"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func (c *Config) Production() bool {
	return c.Environment == "production" || c.Environment == "prod"
}
