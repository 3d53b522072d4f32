package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load missing file: %v", err)
	}
	if cfg.Web.Port != 8082 {
		t.Errorf("port = %d, want default 8082", cfg.Web.Port)
	}
	if cfg.Refresh.Debounce != 300*time.Millisecond {
		t.Errorf("debounce = %v, want default 300ms", cfg.Refresh.Debounce)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "supplyline.yaml")
	cfg := Defaults()
	cfg.Region = "east"
	cfg.Messaging.Backend = "kafka"
	cfg.Messaging.Kafka.Brokers = []string{"k1:9092"}
	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Region != "east" || got.Messaging.Backend != "kafka" {
		t.Errorf("round trip lost fields: %+v", got)
	}
	if len(got.Messaging.Kafka.Brokers) != 1 || got.Messaging.Kafka.Brokers[0] != "k1:9092" {
		t.Errorf("brokers = %v", got.Messaging.Kafka.Brokers)
	}
}

func TestNodeIDDerivation(t *testing.T) {
	cfg := Defaults()
	if got := cfg.NodeID(); got != "west.supplyline-1" {
		t.Errorf("derived node id = %q", got)
	}
	cfg.Messaging.NodeID = "custom-node"
	if got := cfg.NodeID(); got != "custom-node" {
		t.Errorf("explicit node id = %q", got)
	}
}

func TestKafkaGroupIDPerNode(t *testing.T) {
	cfg := Defaults()
	if got := cfg.KafkaGroupID(); got != "supplyline-west.supplyline-1" {
		t.Errorf("derived group id = %q", got)
	}
	cfg.Messaging.Kafka.GroupID = "shared"
	if got := cfg.KafkaGroupID(); got != "shared" {
		t.Errorf("explicit group id = %q", got)
	}
}
