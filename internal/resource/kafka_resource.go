package resource

import (
	"sync"

	"convert-service/pkg/config"
	"convert-service/pkg/kafka"
)

var (
	kafkaResourceOnce sync.Once
	kafkaSingleton    *KafkaResource
)

// KafkaResource manages the shared Kafka client.
type KafkaResource struct{}

// DefaultKafkaResource returns the global Kafka resource instance.
func DefaultKafkaResource() *KafkaResource {
	kafkaResourceOnce.Do(func() {
		kafkaSingleton = &KafkaResource{}
	})
	return kafkaSingleton
}

func (r *KafkaResource) Name() string { return "kafka" }

func (r *KafkaResource) MustOpen() {
	cfg := config.GetGlobalConfig()
	if cfg == nil || !cfg.Kafka.Enabled {
		return
	}
	kafka.DefaultClient().MustOpen()
}

func (r *KafkaResource) Close() {
	cfg := config.GetGlobalConfig()
	if cfg == nil || !cfg.Kafka.Enabled {
		return
	}
	kafka.DefaultClient().Close()
}
