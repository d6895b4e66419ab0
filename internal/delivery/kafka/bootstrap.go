package kafka

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/azizikri/storefront-rules/internal/config"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"
)

// Topics returns every topic the service produces to or consumes from.
func Topics(instanceID string) []string {
	topics := RequestTopics()
	topics = append(topics, RetryTopics()...)
	for _, topic := range requestTopics {
		topics = append(topics, topic+TopicDLQSuffix)
	}
	return append(topics, ReplyTopic(instanceID))
}

func partitionsFor(topic string, cfg *config.Config) int32 {
	if strings.HasSuffix(topic, TopicRetrySuffix) || strings.HasSuffix(topic, TopicDLQSuffix) {
		return int32(cfg.RetryPartitions())
	}
	return int32(cfg.TopicPartitions())
}

func EnsureTopics(ctx context.Context, client *kgo.Client, cfg *config.Config) error {
	adm := kadm.NewClient(client)
	replicationFactor := cfg.ReplicationFactor()

	for _, topic := range Topics(cfg.KafkaInstanceID) {
		resp, err := adm.CreateTopics(ctx, partitionsFor(topic, cfg), replicationFactor, nil, topic)
		if err != nil {
			return fmt.Errorf("failed to create topic %s: %w", topic, err)
		}
		for _, detail := range resp {
			if detail.Err != nil && !strings.Contains(detail.Err.Error(), "already exists") {
				return fmt.Errorf("failed to create topic %s: %w", detail.Topic, detail.Err)
			}
		}
	}

	log.Println("All topics ensured")
	return nil
}
