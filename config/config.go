package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/mjoly/fieldops/core/metrics"
	"github.com/mjoly/fieldops/core/session"
	"github.com/mjoly/fieldops/infra/mqtt"
	"github.com/mjoly/fieldops/infra/storehttp"
)

type Config struct {
	MQTT     mqtt.Config      `json:"mqtt"`
	Store    storehttp.Config `json:"store"`
	Session  session.Config   `json:"session"`
	Dispatch DispatchConfig   `json:"dispatch"`
	Metrics  metrics.Config   `json:"metrics"`
}

// DispatchConfig parameterises the assignment engine.
type DispatchConfig struct {
	// Strategy selects the batch ranking strategy. Only "balanced" exists today.
	Strategy string `json:"strategy"`
	// RatingWeight skews the workload tie-break towards better rated providers.
	RatingWeight float64 `json:"rating_weight"`
}

// SetDefaults applies sane defaults.
func (c *DispatchConfig) SetDefaults() {
	if c.Strategy == "" {
		c.Strategy = "balanced"
	}
	if c.RatingWeight <= 0 {
		c.RatingWeight = 0.1
	}
}

// Validate checks mandatory fields.
func (c DispatchConfig) Validate() error {
	if c.Strategy != "balanced" {
		return fmt.Errorf("unknown strategy %s", c.Strategy)
	}
	return nil
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("FIELDOPS_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "fieldops_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.MQTT.SetDefaults()
	cfg.Store.SetDefaults()
	cfg.Session.SetDefaults()
	cfg.Dispatch.SetDefaults()
	cfg.Metrics.SetDefaults()
	if err := cfg.Store.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Dispatch.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
