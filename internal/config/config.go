package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config defines service configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Store  StoreConfig  `yaml:"store"`
	AI     AIConfig     `yaml:"ai"`
	Log    LogConfig    `yaml:"log"`
}

type ServerConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	CORSOrigin string `yaml:"cors_origin"`
}

type StoreConfig struct {
	Path string `yaml:"path"`
}

type AIConfig struct {
	APIKey         string `yaml:"api_key"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads configuration from an optional YAML file and environment
// variables. Environment values override file values.
func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host:       "0.0.0.0",
			Port:       3001,
			CORSOrigin: "http://localhost:3000",
		},
		Store: StoreConfig{
			Path: "data/protrack.json",
		},
		AI: AIConfig{
			TimeoutSeconds: 30,
		},
		Log: LogConfig{
			Level: "info",
		},
	}

	if path := os.Getenv("PROTRACK_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if host := os.Getenv("PROTRACK_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("PROTRACK_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid PROTRACK_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if origin := os.Getenv("PROTRACK_CORS_ORIGIN"); origin != "" {
		cfg.Server.CORSOrigin = origin
	}
	if path := os.Getenv("PROTRACK_DATA_PATH"); path != "" {
		cfg.Store.Path = path
	}
	if key := os.Getenv("PROTRACK_GEMINI_API_KEY"); key != "" {
		cfg.AI.APIKey = key
	} else if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		cfg.AI.APIKey = key
	}
	if level := os.Getenv("PROTRACK_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}

	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
