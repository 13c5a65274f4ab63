package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `mqtt:
  broker: "tcp://localhost:1883"
  client_id: "cli"
  username: "user"
  password: "pass"
  changes_topic: "fieldops/changes/#"
  use_tls: false
store:
  base_url: "https://api.example.test"
  api_key: "secret"
session:
  poll_interval_seconds: 15
dispatch:
  strategy: "balanced"
metrics:
  prometheus_enabled: true
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"broker", cfg.MQTT.Broker, "tcp://localhost:1883"},
		{"client_id", cfg.MQTT.ClientID, "cli"},
		{"username", cfg.MQTT.Username, "user"},
		{"changes_topic", cfg.MQTT.ChangesTopic, "fieldops/changes/#"},
		{"use_tls", cfg.MQTT.UseTLS, false},
		{"store.base_url", cfg.Store.BaseURL, "https://api.example.test"},
		{"store.api_key", cfg.Store.APIKey, "secret"},
		{"store.timeout_default", cfg.Store.TimeoutSeconds, 10},
		{"session.poll_interval", cfg.Session.PollIntervalSeconds, 15},
		{"dispatch.strategy", cfg.Dispatch.Strategy, "balanced"},
		{"dispatch.rating_weight_default", cfg.Dispatch.RatingWeight, 0.1},
		{"metrics.prometheus_enabled", cfg.Metrics.PrometheusEnabled, true},
		{"metrics.prometheus_port_default", cfg.Metrics.PrometheusPort, ":9090"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s: got %v want %v", c.name, c.got, c.want)
		}
	}
}

func TestLoad_UnsupportedFormat(t *testing.T) {
	if _, err := Load("config.toml"); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestLoad_MissingStoreURL(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{"dispatch":{"strategy":"balanced"}}`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for missing store base_url")
	}
}

func TestDispatchConfig_Validate(t *testing.T) {
	c := DispatchConfig{Strategy: "greedy"}
	if err := c.Validate(); err == nil {
		t.Fatal("expected error for unknown strategy")
	}
}
