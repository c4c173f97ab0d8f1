package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Server struct {
		Host                 string
		JWTSecret            string `toml:"jwt_secret"`
		ReadTimeout          time.Duration
		WriteTimeout         time.Duration
		ReadHeaderTimeout    time.Duration
		StrReadTimeout       string `toml:"read_timeout"`
		StrWriteTimeout      string `toml:"write_timeout"`
		StrReadHeaderTimeout string `toml:"read_header_timeout"`
	}
	Database struct {
		Host     string
		User     string
		Password string
		Database string
	}
	Redis struct {
		RedisAddr          string `toml:"redis_addr"`
		RedisPassword      string `toml:"redis_password"`
		RedisDB            int    `toml:"redis_db"`
		AccessTokenTTL     time.Duration
		RefreshTokenTTL    time.Duration
		StrAccessTokenTTL  string `toml:"access_token_ttl"`
		StrRefreshTokenTTL string `toml:"refresh_token_ttl"`
	}
	Payroll struct {
		DefaultBaseSalary float64 `toml:"default_base_salary"`
		SalaryCacheTTL    time.Duration
		StrSalaryCacheTTL string `toml:"salary_cache_ttl"`
	}
}

func GetConfig(path string, logger *slog.Logger) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Error("Error read config file", slog.String("error", err.Error()))
		return nil, err
	}

	var cfg *Config

	if _, tomlErr := toml.Decode(string(data), &cfg); tomlErr != nil {
		logger.Error("Error decode config file", slog.String("error", tomlErr.Error()))
		return nil, tomlErr
	}

	if cfg.Server.JWTSecret == "" {
		return nil, fmt.Errorf("jwt_secret is required")
	}

	if err = parseDurations(cfg); err != nil {
		return nil, err
	}

	if cfg.Payroll.DefaultBaseSalary < 0 {
		return nil, fmt.Errorf("default_base_salary must be non-negative")
	}
	if cfg.Payroll.DefaultBaseSalary == 0 {
		cfg.Payroll.DefaultBaseSalary = 600
	}

	logger.Info("Config is loaded")
	return cfg, nil
}

func parseDurations(cfg *Config) error {
	var err error

	if cfg.Redis.AccessTokenTTL, err = time.ParseDuration(cfg.Redis.StrAccessTokenTTL); err != nil {
		return fmt.Errorf("invalid access_token_ttl: %w", err)
	}
	if cfg.Redis.RefreshTokenTTL, err = time.ParseDuration(cfg.Redis.StrRefreshTokenTTL); err != nil {
		return fmt.Errorf("invalid refresh_token_ttl: %w", err)
	}
	if cfg.Payroll.SalaryCacheTTL, err = time.ParseDuration(cfg.Payroll.StrSalaryCacheTTL); err != nil {
		return fmt.Errorf("invalid salary_cache_ttl: %w", err)
	}
	if cfg.Server.ReadTimeout, err = time.ParseDuration(cfg.Server.StrReadTimeout); err != nil {
		return fmt.Errorf("invalid read_timeout: %w", err)
	}
	if cfg.Server.WriteTimeout, err = time.ParseDuration(cfg.Server.StrWriteTimeout); err != nil {
		return fmt.Errorf("invalid write_timeout: %w", err)
	}
	if cfg.Server.ReadHeaderTimeout, err = time.ParseDuration(cfg.Server.StrReadHeaderTimeout); err != nil {
		return fmt.Errorf("invalid read_header_timeout: %w", err)
	}

	return nil
}
