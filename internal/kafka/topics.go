package kafka

import (
	"context"
	"fmt"
	"net"
	"sort"
	"strconv"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/riskgraph/internal/config"
)

// TopicConfig defines Kafka topic configuration
type TopicConfig struct {
	Name              string
	Partitions        int
	ReplicationFactor int
	RetentionMs       int64
	CleanupPolicy     string
	KeyField          string
}

// Topics returns the topics the impact publisher writes to
func Topics(cfg config.KafkaConfig) []TopicConfig {
	topics := []TopicConfig{{
		Name:              cfg.ImpactTopic,
		Partitions:        8,
		ReplicationFactor: 3,
		RetentionMs:       2592000000, // 30 days
		CleanupPolicy:     "delete",
		KeyField:          "service_id",
	}}
	if cfg.CrisisTopic != "" && cfg.CrisisTopic != cfg.ImpactTopic {
		topics = append(topics, TopicConfig{
			Name:              cfg.CrisisTopic,
			Partitions:        4,
			ReplicationFactor: 3,
			RetentionMs:       7776000000, // 90 days
			CleanupPolicy:     "delete",
			KeyField:          "service_id",
		})
	}
	if cfg.ScoreTopic != "" {
		topics = append(topics, TopicConfig{
			Name:              cfg.ScoreTopic,
			Partitions:        4,
			ReplicationFactor: 3,
			RetentionMs:       2592000000, // 30 days
			CleanupPolicy:     "delete",
			KeyField:          "risk_id",
		})
	}
	return topics
}

// TopicManager handles Kafka topic creation and management
type TopicManager struct {
	brokers []string
	logger  *zap.Logger
}

// NewTopicManager creates a new topic manager
func NewTopicManager(brokers []string, logger *zap.Logger) *TopicManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TopicManager{
		brokers: brokers,
		logger:  logger,
	}
}

// CreateTopics creates the given topics through the cluster controller.
// Topics that already exist are logged and skipped.
func (tm *TopicManager) CreateTopics(ctx context.Context, topics []TopicConfig) error {
	if len(tm.brokers) == 0 {
		return ErrInvalidBrokers
	}

	conn, err := kafka.DialContext(ctx, "tcp", tm.brokers[0])
	if err != nil {
		return fmt.Errorf("failed to connect to Kafka broker: %w", err)
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		return fmt.Errorf("failed to get controller: %w", err)
	}

	controllerConn, err := kafka.DialContext(ctx, "tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	if err != nil {
		return fmt.Errorf("failed to connect to controller: %w", err)
	}
	defer controllerConn.Close()

	for _, topic := range topics {
		if topic.Name == "" {
			return ErrInvalidTopic
		}
		err := controllerConn.CreateTopics(kafka.TopicConfig{
			Topic:             topic.Name,
			NumPartitions:     topic.Partitions,
			ReplicationFactor: topic.ReplicationFactor,
			ConfigEntries: []kafka.ConfigEntry{
				{ConfigName: "retention.ms", ConfigValue: strconv.FormatInt(topic.RetentionMs, 10)},
				{ConfigName: "cleanup.policy", ConfigValue: topic.CleanupPolicy},
			},
		})
		if err != nil {
			tm.logger.Warn("Failed to create topic", zap.String("topic", topic.Name), zap.Error(err))
			continue
		}
		tm.logger.Info("Created topic", zap.String("topic", topic.Name))
	}

	return nil
}

// ListTopics lists all Kafka topics, sorted
func (tm *TopicManager) ListTopics(ctx context.Context) ([]string, error) {
	if len(tm.brokers) == 0 {
		return nil, ErrInvalidBrokers
	}

	conn, err := kafka.DialContext(ctx, "tcp", tm.brokers[0])
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Kafka broker: %w", err)
	}
	defer conn.Close()

	partitions, err := conn.ReadPartitions()
	if err != nil {
		return nil, fmt.Errorf("failed to read partitions: %w", err)
	}

	topicSet := make(map[string]struct{})
	for _, partition := range partitions {
		topicSet[partition.Topic] = struct{}{}
	}

	topics := make([]string, 0, len(topicSet))
	for topic := range topicSet {
		topics = append(topics, topic)
	}
	sort.Strings(topics)
	return topics, nil
}
