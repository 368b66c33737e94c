package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr          string        `yaml:"addr"`
	JWTSecret     string        `yaml:"jwt_secret"`
	APITimeout    time.Duration `yaml:"timeout"`
	DatabasePath  string        `yaml:"database_path"`
	TokenDuration time.Duration `yaml:"token_duration"`
	WorkerCount   int           `yaml:"worker_count"`
	RateLimit     float64       `yaml:"rate_limit"`
	RateBurst     int           `yaml:"rate_burst"`
	GDPR          GDPRConfig    `yaml:"gdpr"`
}

type GDPRConfig struct {
	SweepInterval  time.Duration `yaml:"sweep_interval"`
	BulkConcurrent int           `yaml:"bulk_concurrent"`
}

const insecureSecret = "supersecretkey"

func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		Addr:          getEnv("TP_ADDR", ":8080"),
		JWTSecret:     getEnv("TP_JWT_SECRET", insecureSecret),
		APITimeout:    15 * time.Second,
		DatabasePath:  getEnv("TP_DATABASE_PATH", "talentpipe.db"),
		TokenDuration: 1 * time.Hour,
		WorkerCount:   4,
		RateLimit:     20,
		RateBurst:     40,
		GDPR: GDPRConfig{
			SweepInterval:  24 * time.Hour,
			BulkConcurrent: 8,
		},
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Validate applies defaults for zero values and rejects settings that are
// unsafe outside development (TP_ENV=development).
func (c *Config) Validate() error {
	if c.WorkerCount <= 0 {
		c.WorkerCount = 4
	}
	if c.RateLimit <= 0 {
		c.RateLimit = 20
	}
	if c.RateBurst <= 0 {
		c.RateBurst = 40
	}
	if c.GDPR.SweepInterval <= 0 {
		c.GDPR.SweepInterval = 24 * time.Hour
	}
	if c.GDPR.BulkConcurrent <= 0 {
		c.GDPR.BulkConcurrent = 8
	}
	if c.JWTSecret == "" || c.JWTSecret == insecureSecret {
		if os.Getenv("TP_ENV") != "development" {
			return fmt.Errorf("jwt_secret must be set to a strong value outside development")
		}
	}
	if c.Addr == "" {
		return fmt.Errorf("addr must not be empty")
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}
