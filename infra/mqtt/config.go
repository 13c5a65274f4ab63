package mqtt

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

// Config defines the connection parameters for the Paho MQTT client.
type Config struct {
	Broker       string          `json:"broker"`
	ClientID     string          `json:"client_id"`
	Username     string          `json:"username"`
	Password     string          `json:"password"`
	ChangesTopic string          `json:"changes_topic"`
	UseTLS       bool            `json:"use_tls"`
	ClientCert   string          `json:"client_cert"`
	ClientKey    string          `json:"client_key"`
	CABundle     string          `json:"ca_bundle"`
	AuthMethod   string          `json:"auth_method"`
	QoS          map[string]byte `json:"qos"`
	LWTTopic     string          `json:"lwt_topic"`
	LWTPayload   string          `json:"lwt_payload"`
	LWTQoS       byte            `json:"lwt_qos"`
	LWTRetain    bool            `json:"lwt_retain"`
	TLSConfig    *tls.Config     `json:"-"`
}

// SetDefaults applies sane defaults. Each session gets its own client id so
// the broker does not drop one dispatcher when another connects.
func (c *Config) SetDefaults() {
	if c.ChangesTopic == "" {
		c.ChangesTopic = "fieldops/changes/#"
	}
	if c.ClientID == "" {
		c.ClientID = "fieldops-" + uuid.NewString()
	}
}

// NewClientOptions builds mqtt client options from Config.
func NewClientOptions(cfg Config) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.AuthMethod == "username_password" || cfg.AuthMethod == "both" || cfg.AuthMethod == "" {
		if cfg.Username != "" {
			opts.SetUsername(cfg.Username)
		}
		if cfg.Password != "" {
			opts.SetPassword(cfg.Password)
		}
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	if cfg.LWTTopic != "" {
		opts.SetWill(cfg.LWTTopic, cfg.LWTPayload, cfg.LWTQoS, cfg.LWTRetain)
	}
	return opts, nil
}

// LoadTLSConfig loads the TLS configuration from the file paths in the config.
func (c Config) LoadTLSConfig() (*tls.Config, error) {
	if c.TLSConfig != nil {
		return c.TLSConfig, nil
	}
	if c.ClientCert == "" || c.ClientKey == "" || c.CABundle == "" {
		return nil, fmt.Errorf("tls config requires client_cert, client_key and ca_bundle")
	}
	cert, err := tls.LoadX509KeyPair(c.ClientCert, c.ClientKey)
	if err != nil {
		return nil, fmt.Errorf("load cert: %w", err)
	}
	caBytes, err := os.ReadFile(c.CABundle)
	if err != nil {
		return nil, fmt.Errorf("read ca: %w", err)
	}
	pool := x509.NewCertPool()
	pool.AppendCertsFromPEM(caBytes)
	cfg := &tls.Config{Certificates: []tls.Certificate{cert}, RootCAs: pool, MinVersion: tls.VersionTLS12}
	return cfg, nil
}
