package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultModelPath is used when neither the config file nor MODEL_PATH names an artifact.
const DefaultModelPath = "churn_model_pipeline.yaml"

// Config captures the settings required to boot the churn API.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Model   ModelConfig   `yaml:"model"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig controls the HTTP, gRPC and metrics listeners.
type ServerConfig struct {
	HTTPAddress     string        `yaml:"httpAddress"`
	GRPCAddress     string        `yaml:"grpcAddress"`
	MetricsAddress  string        `yaml:"metricsAddress"`
	GracefulTimeout time.Duration `yaml:"gracefulTimeout"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	AllowedOrigins  []string      `yaml:"allowedOrigins"`
	GinMode         string        `yaml:"ginMode"`
}

// ModelConfig locates the fitted pipeline artifact.
type ModelConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	JSON       bool   `yaml:"json"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"maxSizeMB"`
	MaxBackups int    `yaml:"maxBackups"`
	MaxAgeDays int    `yaml:"maxAgeDays"`
	Compress   bool   `yaml:"compress"`
}

// Load initialises Config from a YAML file and optional environment overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("CHURN_API_CONFIG")
	}

	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config file %s not found: %w", path, err)
			}
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	if cfg.Model.Path == "" {
		cfg.Model.Path = DefaultModelPath
	}
	return &cfg, nil
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			HTTPAddress:     ":8000",
			GRPCAddress:     ":50051",
			MetricsAddress:  ":2112",
			GracefulTimeout: 10 * time.Second,
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    15 * time.Second,
			AllowedOrigins:  []string{"*"},
			GinMode:         "release",
		},
		Model:   ModelConfig{Path: DefaultModelPath},
		Logging: LoggingConfig{Level: "info", JSON: false, MaxSizeMB: 100, MaxBackups: 3, MaxAgeDays: 28},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MODEL_PATH"); v != "" {
		cfg.Model.Path = v
	}
	// Empty values are meaningful for the optional listeners, so presence is checked.
	if v, ok := os.LookupEnv("CHURN_API_HTTP_ADDRESS"); ok && v != "" {
		cfg.Server.HTTPAddress = v
	}
	if v, ok := os.LookupEnv("CHURN_API_GRPC_ADDRESS"); ok {
		cfg.Server.GRPCAddress = v
	}
	if v, ok := os.LookupEnv("CHURN_API_METRICS_ADDRESS"); ok {
		cfg.Server.MetricsAddress = v
	}
	if v := os.Getenv("CHURN_API_GRACEFUL_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.GracefulTimeout = d
		}
	}
	if v := os.Getenv("CHURN_API_CORS_ORIGINS"); v != "" {
		cfg.Server.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("CHURN_API_GIN_MODE"); v != "" {
		cfg.Server.GinMode = v
	}
	if v := os.Getenv("CHURN_API_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("CHURN_API_LOG_FORMAT"); v != "" {
		cfg.Logging.JSON = strings.EqualFold(v, "json")
	}
	if v := os.Getenv("CHURN_API_LOG_FILE"); v != "" {
		cfg.Logging.File = v
	}
	if v := os.Getenv("CHURN_API_LOG_MAX_SIZE_MB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Logging.MaxSizeMB = n
		}
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
