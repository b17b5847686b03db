package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr != ":8090" {
		t.Fatalf("addr = %s, want :8090", cfg.HTTPAddr)
	}
	if cfg.DBPath != "mca_history.db" {
		t.Fatalf("db path = %s", cfg.DBPath)
	}
	if cfg.ClassifierURL != "" {
		t.Fatalf("classifier url = %s, want empty (bayesian only)", cfg.ClassifierURL)
	}
	if cfg.Pipeline.Activator.ActivationThreshold != 30 {
		t.Fatalf("threshold = %f, want 30", cfg.Pipeline.Activator.ActivationThreshold)
	}
	if cfg.Pipeline.Ensemble.ClassifierTimeout != 2*time.Second {
		t.Fatalf("classifier timeout = %s, want 2s", cfg.Pipeline.Ensemble.ClassifierTimeout)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	yaml := `httpAddr: ":9999"
dbPath: /tmp/other.db
classifierUrl: http://localhost:5000
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr != ":9999" {
		t.Fatalf("addr = %s, want :9999", cfg.HTTPAddr)
	}
	if cfg.DBPath != "/tmp/other.db" {
		t.Fatalf("db path = %s", cfg.DBPath)
	}
	if cfg.ClassifierURL != "http://localhost:5000" {
		t.Fatalf("classifier url = %s", cfg.ClassifierURL)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	yaml := "httpAddr: \":9999\"\n"
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("MCA_HTTP_ADDR", ":7777")
	t.Setenv("MCA_ACTIVATION_THRESHOLD", "45")
	t.Setenv("MCA_CLASSIFIER_TIMEOUT", "500ms")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr != ":7777" {
		t.Fatalf("addr = %s, env should win over file", cfg.HTTPAddr)
	}
	if cfg.Pipeline.Activator.ActivationThreshold != 45 {
		t.Fatalf("threshold = %f, want 45", cfg.Pipeline.Activator.ActivationThreshold)
	}
	if cfg.Pipeline.Ensemble.ClassifierTimeout != 500*time.Millisecond {
		t.Fatalf("classifier timeout = %s, want 500ms", cfg.Pipeline.Ensemble.ClassifierTimeout)
	}
}

func TestBadThresholdEnv(t *testing.T) {
	t.Setenv("MCA_ACTIVATION_THRESHOLD", "not-a-number")
	if _, err := Load(""); err == nil {
		t.Fatal("unparseable threshold should fail")
	}
}

func TestMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("missing config file should fail")
	}
}
