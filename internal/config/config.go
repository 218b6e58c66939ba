// Package config содержит логику чтения конфигурации админ-панели кофейни.
package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config содержит параметры подключения админ-панели к бэкенду.
type Config struct {
	BaseURL      string        `env:"API_BASE_URL"`
	StateFile    string        `env:"STATE_FILE"`
	Email        string        `env:"ADMIN_EMAIL"`
	Password     string        `env:"ADMIN_PASSWORD"`
	PollInterval time.Duration `env:"POLL_INTERVAL"`
	Demo         bool          `env:"DEMO_MODE"`
}

// Parse считывает конфигурацию из флагов командной строки и переменных
// окружения; значения окружения имеют приоритет. Файл .env в рабочем
// каталоге подхватывается, если существует.
func Parse() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envBaseURL := cfg.BaseURL
	envStateFile := cfg.StateFile
	envEmail := cfg.Email
	envPassword := cfg.Password
	envPollInterval := cfg.PollInterval
	envDemo := cfg.Demo

	flag.StringVar(&cfg.BaseURL, "b", "http://localhost:8000/api/v1", "backend base URL")
	flag.StringVar(&cfg.StateFile, "f", "coffeeadmin.json", "path to the session state file")
	flag.StringVar(&cfg.Email, "u", "", "admin email for login")
	flag.StringVar(&cfg.Password, "p", "", "admin password for login")
	flag.DurationVar(&cfg.PollInterval, "i", 5*time.Second, "notification poll interval")
	flag.BoolVar(&cfg.Demo, "demo", false, "run against the built-in stub backend")

	flag.Parse()

	if envBaseURL != "" {
		cfg.BaseURL = envBaseURL
	}
	if envStateFile != "" {
		cfg.StateFile = envStateFile
	}
	if envEmail != "" {
		cfg.Email = envEmail
	}
	if envPassword != "" {
		cfg.Password = envPassword
	}
	if envPollInterval != 0 {
		cfg.PollInterval = envPollInterval
	}
	if envDemo {
		cfg.Demo = true
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8000/api/v1"
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}

	return cfg, nil
}
