package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/mca-engine/internal/session"
)

// #region config

// Config is the top-level engine configuration.
type Config struct {
	HTTPAddr          string        `yaml:"httpAddr"`
	DBPath            string        `yaml:"dbPath"`
	ClassifierURL     string        `yaml:"classifierUrl"` // empty = Bayesian-only
	ClassifierTimeout time.Duration `yaml:"classifierTimeout"`
	LikelihoodPath    string        `yaml:"likelihoodPath"` // empty = built-in table

	Pipeline session.Config `yaml:"pipeline"`
}

// Default returns the standard configuration.
func Default() Config {
	return Config{
		HTTPAddr:          ":8090",
		DBPath:            "mca_history.db",
		ClassifierTimeout: 2 * time.Second,
		Pipeline:          session.DefaultConfig(),
	}
}

// #endregion config

// #region load

// Load reads configuration with precedence: defaults, then the YAML file at
// path (optional, empty path skips), then environment variables.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.HTTPAddr = envOr("MCA_HTTP_ADDR", cfg.HTTPAddr)
	cfg.DBPath = envOr("MCA_DB", cfg.DBPath)
	cfg.ClassifierURL = envOr("MCA_CLASSIFIER_URL", cfg.ClassifierURL)
	cfg.LikelihoodPath = envOr("MCA_LIKELIHOOD_TABLE", cfg.LikelihoodPath)

	if v := os.Getenv("MCA_ACTIVATION_THRESHOLD"); v != "" {
		threshold, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Config{}, fmt.Errorf("parse MCA_ACTIVATION_THRESHOLD: %w", err)
		}
		cfg.Pipeline.Activator.ActivationThreshold = threshold
	}
	if v := os.Getenv("MCA_CLASSIFIER_TIMEOUT"); v != "" {
		timeout, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse MCA_CLASSIFIER_TIMEOUT: %w", err)
		}
		cfg.ClassifierTimeout = timeout
	}

	cfg.Pipeline.Ensemble.ClassifierTimeout = cfg.ClassifierTimeout
	return cfg, nil
}

// #endregion load

// #region helpers

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion helpers
