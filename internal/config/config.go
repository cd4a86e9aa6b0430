// Package config loads service settings from defaults, an optional JSON
// file, and SUPPLY_-prefixed environment variables, in that order of
// precedence (later wins).
package config

import (
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// AnalysisConfig carries the domain constants every run uses unless the
// request overrides them.
type AnalysisConfig struct {
	MergeGap          time.Duration `koanf:"merge_gap"`
	MinDuration       time.Duration `koanf:"min_duration"`
	ReferenceOffset   float64       `koanf:"reference_offset"`
	NetworkProperties int           `koanf:"network_properties"`
	UnitCost          float64       `koanf:"unit_cost"`
	Workers           int           `koanf:"workers"`
}

// KafkaConfig controls the optional analysis-summary publisher.
type KafkaConfig struct {
	Enabled bool     `koanf:"enabled"`
	Brokers []string `koanf:"brokers"`
	Topic   string   `koanf:"topic"`
}

// Config holds all service settings.
type Config struct {
	HTTPAddr        string        `koanf:"http_addr"`
	LogLevel        string        `koanf:"log_level"`
	LogFormat       string        `koanf:"log_format"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// APIToken gates the analysis endpoint; empty disables the gate.
	APIToken string `koanf:"api_token"`

	Analysis AnalysisConfig `koanf:"analysis"`
	Kafka    KafkaConfig    `koanf:"kafka"`
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"http_addr":        ":8080",
		"log_level":        "info",
		"log_format":       "json",
		"shutdown_timeout": "10s",

		"analysis.merge_gap":          "1h",
		"analysis.min_duration":       "3h",
		"analysis.reference_offset":   3.0,
		"analysis.network_properties": 1473786,
		"analysis.unit_cost":          0.0,
		"analysis.workers":            0, // 0 = GOMAXPROCS

		"kafka.enabled": false,
		"kafka.topic":   "supply-analysis-summaries",
	}
}

// Load builds the configuration. The JSON file named by CONFIG_FILE is
// optional; environment variables use the SUPPLY_ prefix with "__" as the
// nesting separator, e.g. SUPPLY_KAFKA__BROKERS=broker1:9092,broker2:9092.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, errors.Wrap(err, "load defaults")
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := k.Load(file.Provider(path), json.Parser()); err != nil {
			return nil, errors.Wrapf(err, "load config file %s", path)
		}
	}

	if err := k.Load(env.Provider("SUPPLY_", ".", envKey), nil); err != nil {
		return nil, errors.Wrap(err, "load environment")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}

	// Brokers arrive comma-separated from the environment.
	if raw := k.String("kafka.brokers"); raw != "" && strings.Contains(raw, ",") {
		cfg.Kafka.Brokers = splitAndTrim(raw)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey maps SUPPLY_ANALYSIS__MERGE_GAP to analysis.merge_gap.
func envKey(s string) string {
	s = strings.TrimPrefix(s, "SUPPLY_")
	s = strings.ToLower(s)
	return strings.ReplaceAll(s, "__", ".")
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// validate accumulates every problem rather than stopping at the first, so
// a misconfigured deployment reports all of its mistakes at once.
func (c *Config) validate() error {
	var errs error

	if c.HTTPAddr == "" {
		errs = multierr.Append(errs, errors.New("http_addr is required"))
	}
	if c.ShutdownTimeout <= 0 {
		errs = multierr.Append(errs, errors.New("shutdown_timeout must be positive"))
	}
	if c.Analysis.MergeGap <= 0 {
		errs = multierr.Append(errs, errors.New("analysis.merge_gap must be positive"))
	}
	if c.Analysis.MinDuration <= 0 {
		errs = multierr.Append(errs, errors.New("analysis.min_duration must be positive"))
	}
	if c.Analysis.NetworkProperties <= 0 {
		errs = multierr.Append(errs, errors.New("analysis.network_properties must be positive"))
	}
	if c.Analysis.UnitCost < 0 {
		errs = multierr.Append(errs, errors.New("analysis.unit_cost must not be negative"))
	}
	if c.Analysis.Workers < 0 {
		errs = multierr.Append(errs, errors.New("analysis.workers must not be negative"))
	}
	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			errs = multierr.Append(errs, errors.New("kafka.brokers is required when kafka.enabled"))
		}
		if c.Kafka.Topic == "" {
			errs = multierr.Append(errs, errors.New("kafka.topic is required when kafka.enabled"))
		}
	}

	return errs
}
