package configs

import (
	"fmt"
	"os"
	"strconv"
)

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

type Config struct {
	HTTP struct {
		Port string
	}
	DB struct {
		Host     string
		Port     string
		User     string
		Password string
		Database string
	}
	Redis RedisConfig
}

func NewConfig() (*Config, error) {
	var cfg Config

	if envPort := os.Getenv("HTTP_PORT"); envPort != "" {
		cfg.HTTP.Port = envPort
	} else {
		cfg.HTTP.Port = "8080"
	}

	if envDBHost := os.Getenv("POSTGRES_HOST"); envDBHost != "" {
		cfg.DB.Host = envDBHost
	}

	if envDBPort := os.Getenv("POSTGRES_PORT"); envDBPort != "" {
		cfg.DB.Port = envDBPort
	} else {
		cfg.DB.Port = "5432"
	}

	if envDBUser := os.Getenv("POSTGRES_USER"); envDBUser != "" {
		cfg.DB.User = envDBUser
	}

	if envDBPassword := os.Getenv("POSTGRES_PASSWORD"); envDBPassword != "" {
		cfg.DB.Password = envDBPassword
	}

	if envDBDatabase := os.Getenv("POSTGRES_DB"); envDBDatabase != "" {
		cfg.DB.Database = envDBDatabase
	}

	if envRedisHost := os.Getenv("REDIS_HOST"); envRedisHost != "" {
		cfg.Redis.Host = envRedisHost
	} else {
		cfg.Redis.Host = "localhost"
	}

	if envRedisPort := os.Getenv("REDIS_PORT"); envRedisPort != "" {
		cfg.Redis.Port = envRedisPort
	} else {
		cfg.Redis.Port = "6379"
	}

	if envRedisPassword := os.Getenv("REDIS_PASSWORD"); envRedisPassword != "" {
		cfg.Redis.Password = envRedisPassword
	}

	if envRedisDB := os.Getenv("REDIS_DB"); envRedisDB != "" {
		db, err := strconv.Atoi(envRedisDB)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB value %q: %w", envRedisDB, err)
		}
		cfg.Redis.DB = db
	}

	return &cfg, nil
}

func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Database)
}
