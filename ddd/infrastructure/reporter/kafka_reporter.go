package reporter

import (
	"context"
	"encoding/json"
	"time"

	"convert-service/ddd/domain/gateway"
	"convert-service/ddd/domain/vo"
	"convert-service/pkg/config"
	"convert-service/pkg/kafka"
	"convert-service/pkg/logger"
)

// outcomeEvent is the wire form published to the outcomes topic.
type outcomeEvent struct {
	JobID      string `json:"job_id"`
	Succeeded  bool   `json:"succeeded"`
	Diagnostic string `json:"diagnostic,omitempty"`
	OutputKey  string `json:"output_key,omitempty"`
	ReportedAt string `json:"reported_at"`
}

// KafkaReporter publishes terminal outcomes to the conversion outcomes topic.
type KafkaReporter struct {
	client *kafka.Client
	topic  string
}

func NewKafkaReporter(client *kafka.Client, topic string) gateway.OutcomeReporter {
	if topic == "" {
		if cfg := config.GetGlobalConfig(); cfg != nil {
			topic = cfg.Kafka.Topics.ConversionOutcomes
		}
	}
	return &KafkaReporter{client: client, topic: topic}
}

func (r *KafkaReporter) ReportOutcome(ctx context.Context, jobID string, outcome vo.Outcome, outputKey string) error {
	if r.client == nil || r.topic == "" {
		return nil
	}

	event := outcomeEvent{
		JobID:      jobID,
		Succeeded:  outcome.Succeeded,
		Diagnostic: outcome.Diagnostic,
		OutputKey:  outputKey,
		ReportedAt: time.Now().UTC().Format(time.RFC3339),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if err := r.client.Produce(ctx, r.topic, []byte(jobID), payload); err != nil {
		logger.Errorf("outcome publish failed job_id=%s error=%s", jobID, err.Error())
		return err
	}
	logger.Infof("outcome published job_id=%s succeeded=%t", jobID, outcome.Succeeded)
	return nil
}

// NopReporter discards outcomes; used when Kafka is disabled.
type NopReporter struct{}

func (NopReporter) ReportOutcome(ctx context.Context, jobID string, outcome vo.Outcome, outputKey string) error {
	return nil
}
