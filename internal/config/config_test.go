package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_PORT", "")
	t.Setenv("DB_NAME", "")
	t.Setenv("KAFKA_INSTANCE_ID", "")
	t.Setenv("EVENT_DRIVEN_ENABLED", "")

	cfg := Load()
	if cfg.AppPort != "8080" {
		t.Fatalf("expected port 8080, got %s", cfg.AppPort)
	}
	if cfg.DBName != "storefront" {
		t.Fatalf("expected db storefront, got %s", cfg.DBName)
	}
	if cfg.KafkaInstanceID == "" {
		t.Fatalf("expected instance id to fall back to hostname")
	}
	if !cfg.EventDriven() {
		t.Fatalf("expected event driven mode by default")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("KAFKA_INSTANCE_ID", "node-a")
	t.Setenv("EVENT_DRIVEN_ENABLED", "false")
	t.Setenv("KAFKA_TOPIC_PARTITIONS", "6")

	cfg := Load()
	if cfg.AppPort != "9090" {
		t.Fatalf("expected port 9090, got %s", cfg.AppPort)
	}
	if cfg.KafkaInstanceID != "node-a" {
		t.Fatalf("expected node-a, got %s", cfg.KafkaInstanceID)
	}
	if cfg.EventDriven() {
		t.Fatalf("expected event driven mode to be disabled")
	}
	if cfg.TopicPartitions() != 6 {
		t.Fatalf("expected 6 partitions, got %d", cfg.TopicPartitions())
	}
}

func TestNumericFallbacks(t *testing.T) {
	cfg := &Config{
		KafkaTopicPartitions:   "abc",
		KafkaRetryPartitions:   "-1",
		KafkaReplicationFactor: "0",
	}
	if cfg.TopicPartitions() != 3 {
		t.Fatalf("expected 3, got %d", cfg.TopicPartitions())
	}
	if cfg.RetryPartitions() != 1 {
		t.Fatalf("expected 1, got %d", cfg.RetryPartitions())
	}
	if cfg.ReplicationFactor() != 1 {
		t.Fatalf("expected 1, got %d", cfg.ReplicationFactor())
	}
}
