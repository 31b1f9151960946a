// Package mqtt publishes computed plans to an MQTT broker.
package mqtt

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/kilianp07/quarterplan/infra/logger"
)

// ErrPublishTimeout is returned when the broker does not confirm a publish
// before the configured timeout.
var ErrPublishTimeout = errors.New("mqtt publish timeout")

// Config defines the connection parameters for the Paho MQTT client.
type Config struct {
	Broker    string `json:"broker"`
	ClientID  string `json:"client_id"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	Topic     string `json:"topic"`
	QoS       byte   `json:"qos"`
	Retain    bool   `json:"retain"`
	TimeoutMS int    `json:"timeout_ms"`

	UseTLS     bool        `json:"use_tls"`
	ClientCert string      `json:"client_cert"`
	ClientKey  string      `json:"client_key"`
	CABundle   string      `json:"ca_bundle"`
	TLSConfig  *tls.Config `json:"-"`
}

// SetDefaults fills in the topic and timeout.
func (c *Config) SetDefaults() {
	if c.Topic == "" {
		c.Topic = "quarterplan/plans"
	}
	if c.TimeoutMS <= 0 {
		c.TimeoutMS = 5000
	}
	if c.ClientID == "" {
		c.ClientID = "quarterplan"
	}
}

// Validate checks the broker URL when publishing is configured.
func (c Config) Validate() error {
	if c.Broker == "" {
		return nil
	}
	if !strings.Contains(c.Broker, "://") {
		return fmt.Errorf("mqtt broker must include a scheme: %s", c.Broker)
	}
	if c.QoS > 2 {
		return fmt.Errorf("mqtt qos must be 0, 1 or 2, got %d", c.QoS)
	}
	return nil
}

func (c Config) timeout() time.Duration {
	if c.TimeoutMS <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// PlanPublisher sends plans as JSON documents, one topic per scenario.
type PlanPublisher struct {
	cli     pahoClient
	topic   string
	qos     byte
	retain  bool
	timeout time.Duration
	logger  logger.Logger
}

// NewPlanPublisher connects to the broker described by cfg.
func NewPlanPublisher(cfg Config) (*PlanPublisher, error) {
	cfg.SetDefaults()
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	log := logger.New("mqtt_publisher")
	opts.OnConnect = func(paho.Client) {
		log.Infof("MQTT connected to %s", cfg.Broker)
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	c := newMQTTClient(opts)
	token := c.Connect()
	// Disconnect on failure so auto-reconnect stops retrying in the background.
	if !token.WaitTimeout(cfg.timeout()) {
		c.Disconnect(0)
		return nil, fmt.Errorf("connect %s: timeout", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		c.Disconnect(0)
		return nil, fmt.Errorf("connect %s: %w", cfg.Broker, err)
	}
	return &PlanPublisher{
		cli:     c,
		topic:   strings.TrimSuffix(cfg.Topic, "/"),
		qos:     cfg.QoS,
		retain:  cfg.Retain,
		timeout: cfg.timeout(),
		logger:  log,
	}, nil
}

// NewClientOptions builds mqtt client options from Config.
func NewClientOptions(cfg Config) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	opts.SetConnectTimeout(cfg.timeout())
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
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
	return &tls.Config{Certificates: []tls.Certificate{cert}, RootCAs: pool, MinVersion: tls.VersionTLS12}, nil
}

// Topic returns the topic used for scenario.
func (p *PlanPublisher) Topic(scenario string) string {
	if scenario == "" {
		scenario = "default"
	}
	return p.topic + "/" + scenario
}

// PublishPlan encodes plan as JSON and publishes it on the scenario topic.
func (p *PlanPublisher) PublishPlan(ctx context.Context, scenario string, plan any) error {
	payload, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("encode plan: %w", err)
	}
	topic := p.Topic(scenario)
	token := p.cli.Publish(topic, p.qos, p.retain, payload)
	timer := time.NewTimer(p.timeout)
	defer timer.Stop()
	select {
	case <-token.Done():
	case <-timer.C:
		return fmt.Errorf("%s: %w", topic, ErrPublishTimeout)
	case <-ctx.Done():
		return ctx.Err()
	}
	if err := token.Error(); err != nil {
		p.logger.Errorf("publish to %s failed: %v", topic, err)
		return err
	}
	p.logger.Infof("published plan to %s (%d bytes)", topic, len(payload))
	return nil
}

// Close gracefully closes the MQTT connection.
func (p *PlanPublisher) Close() error {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
	return nil
}
