package kafka_config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected defaults to be valid, got %v", err)
	}
	if cfg.AssignmentTopic != DefaultAssignmentTopic {
		t.Errorf("expected topic %s, got %s", DefaultAssignmentTopic, cfg.AssignmentTopic)
	}
	if cfg.AutoAssignTopic != DefaultAutoAssignTopic {
		t.Errorf("expected topic %s, got %s", DefaultAutoAssignTopic, cfg.AutoAssignTopic)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv(EnvKafkaBrokers, " broker-1:9092 , broker-2:9092")
	t.Setenv(EnvKafkaAssignmentTopic, "assignments-v2")
	t.Setenv(EnvKafkaConsumerRetryBackoff, "1s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Brokers) != 2 || cfg.Brokers[1] != "broker-2:9092" {
		t.Errorf("expected trimmed brokers, got %v", cfg.Brokers)
	}
	if cfg.AssignmentTopic != "assignments-v2" {
		t.Errorf("expected overridden topic, got %s", cfg.AssignmentTopic)
	}
	if cfg.ConsumerRetryBackoff != time.Second {
		t.Errorf("expected 1s backoff, got %s", cfg.ConsumerRetryBackoff)
	}
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv(EnvKafkaProducerCompression, "brotli")
	t.Setenv(EnvKafkaBrokers, "a:1,,b:2")

	_, err := Load()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "ProducerCompression") || !strings.Contains(err.Error(), "Broker 1 cannot be empty") {
		t.Errorf("unexpected error: %v", err)
	}
}
