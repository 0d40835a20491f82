package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CHURN_API_CONFIG", "MODEL_PATH", "CHURN_API_HTTP_ADDRESS", "CHURN_API_GRPC_ADDRESS",
		"CHURN_API_METRICS_ADDRESS", "CHURN_API_GRACEFUL_TIMEOUT", "CHURN_API_CORS_ORIGINS",
		"CHURN_API_GIN_MODE", "CHURN_API_LOG_LEVEL", "CHURN_API_LOG_FORMAT", "CHURN_API_LOG_FILE",
		"CHURN_API_LOG_MAX_SIZE_MB",
	} {
		if v, ok := os.LookupEnv(key); ok {
			os.Unsetenv(key)
			t.Cleanup(func() { os.Setenv(key, v) })
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Model.Path != DefaultModelPath {
		t.Fatalf("expected default model path, got %s", cfg.Model.Path)
	}
	if cfg.Server.HTTPAddress != ":8000" || cfg.Server.GRPCAddress != ":50051" {
		t.Fatalf("unexpected listener defaults: %+v", cfg.Server)
	}
	if len(cfg.Server.AllowedOrigins) != 1 || cfg.Server.AllowedOrigins[0] != "*" {
		t.Fatalf("expected permissive CORS default, got %v", cfg.Server.AllowedOrigins)
	}
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(`server:
  httpAddress: ":9000"
  gracefulTimeout: 3s
  allowedOrigins: ["https://churn.example.com"]
model:
  path: /models/from-file.yaml
logging:
  level: debug
`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("MODEL_PATH", "/models/from-env.yaml")
	t.Setenv("CHURN_API_GRPC_ADDRESS", "")
	t.Setenv("CHURN_API_LOG_FORMAT", "json")
	t.Setenv("CHURN_API_CORS_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Model.Path != "/models/from-env.yaml" {
		t.Fatalf("MODEL_PATH should win over the file, got %s", cfg.Model.Path)
	}
	if cfg.Server.HTTPAddress != ":9000" || cfg.Server.GracefulTimeout != 3*time.Second {
		t.Fatalf("file values not applied: %+v", cfg.Server)
	}
	if cfg.Server.GRPCAddress != "" {
		t.Fatalf("empty CHURN_API_GRPC_ADDRESS should disable gRPC, got %q", cfg.Server.GRPCAddress)
	}
	if cfg.Server.MetricsAddress != ":2112" {
		t.Fatalf("unset fields should keep defaults, got %q", cfg.Server.MetricsAddress)
	}
	if !cfg.Logging.JSON || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging config: %+v", cfg.Logging)
	}
	if len(cfg.Server.AllowedOrigins) != 2 || cfg.Server.AllowedOrigins[1] != "https://b.example.com" {
		t.Fatalf("unexpected origins: %v", cfg.Server.AllowedOrigins)
	}
}

func TestLoadConfigFromEnvPath(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("model:\n  path: \"\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CHURN_API_CONFIG", path)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Model.Path != DefaultModelPath {
		t.Fatalf("blank model path should fall back to default, got %q", cfg.Model.Path)
	}
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected parse error")
	}
}
