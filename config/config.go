package config

import (
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	mu sync.Mutex `yaml:"-"`

	Region       string `yaml:"region"`
	NodeName     string `yaml:"node_name"`
	DatabasePath string `yaml:"database_path"`

	Web       WebConfig       `yaml:"web"`
	Messaging MessagingConfig `yaml:"messaging"`
	Refresh   RefreshConfig   `yaml:"refresh"`
}

// WebConfig defines the web server settings.
type WebConfig struct {
	Host          string `yaml:"host"`
	Port          int    `yaml:"port"`
	SessionSecret string `yaml:"session_secret"`
}

// MessagingConfig defines the messaging backend.
type MessagingConfig struct {
	Backend             string        `yaml:"backend"` // "mqtt" or "kafka"
	MQTT                MQTTConfig    `yaml:"mqtt"`
	Kafka               KafkaConfig   `yaml:"kafka"`
	ChangesTopic        string        `yaml:"changes_topic"`
	BatchesTopic        string        `yaml:"batches_topic"`
	OutboxDrainInterval time.Duration `yaml:"outbox_drain_interval"`
	NodeID              string        `yaml:"node_id"`
}

// MQTTConfig defines MQTT broker settings.
type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	Port     int    `yaml:"port"`
	ClientID string `yaml:"client_id"`
}

// KafkaConfig defines Kafka broker settings.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	GroupID string   `yaml:"group_id"`
}

// RefreshConfig tunes the realtime refresh coordinator.
type RefreshConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// Defaults returns a Config with sane defaults.
func Defaults() *Config {
	return &Config{
		Region:       "west",
		NodeName:     "supplyline-1",
		DatabasePath: "supplyline.db",
		Web: WebConfig{
			Host: "0.0.0.0",
			Port: 8082,
		},
		Messaging: MessagingConfig{
			Backend:             "mqtt",
			ChangesTopic:        "supplyline/changes",
			BatchesTopic:        "supplyline/batches",
			OutboxDrainInterval: 5 * time.Second,
			MQTT: MQTTConfig{
				Broker: "localhost",
				Port:   1883,
			},
		},
		Refresh: RefreshConfig{
			Debounce: 300 * time.Millisecond,
		},
	}
}

// Load reads a YAML config file. If the file doesn't exist, defaults are used.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config to a YAML file.
func (c *Config) Save(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// NodeID returns the configured node ID, or derives one from region.node_name.
func (c *Config) NodeID() string {
	if c.Messaging.NodeID != "" {
		return c.Messaging.NodeID
	}
	return c.Region + "." + c.NodeName
}

// KafkaGroupID returns the configured consumer group, or derives one per node
// so every node sees every change notice.
func (c *Config) KafkaGroupID() string {
	if c.Messaging.Kafka.GroupID != "" {
		return c.Messaging.Kafka.GroupID
	}
	return "supplyline-" + c.NodeID()
}

// Lock acquires the config mutex for multi-step mutations.
func (c *Config) Lock() { c.mu.Lock() }

// Unlock releases the config mutex.
func (c *Config) Unlock() { c.mu.Unlock() }
