package component

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"

	appsvc "convert-service/ddd/application/app"
	"convert-service/ddd/application/cqe"
	"convert-service/pkg/config"
	pkgkafka "convert-service/pkg/kafka"
	"convert-service/pkg/logger"
	"convert-service/pkg/task"
)

// RequestConsumer ingests conversion requests from the intake topic and feeds
// them through the same application facade as the HTTP API.
type RequestConsumer struct {
	app    appsvc.ConvertApp
	topic  string
	group  string
	ctx    context.Context
	cancel context.CancelFunc
}

func NewRequestConsumer(app appsvc.ConvertApp, cfg *config.Config) *RequestConsumer {
	topic := "convert.requests"
	group := "convert-service-group"
	if cfg != nil {
		if cfg.Kafka.Topics.ConversionRequests != "" {
			topic = cfg.Kafka.Topics.ConversionRequests
		}
		if cfg.Kafka.GroupID != "" {
			group = cfg.Kafka.GroupID
		}
	}
	return &RequestConsumer{app: app, topic: topic, group: group}
}

// Register hooks the consumer into the background task manager.
func (c *RequestConsumer) Register() {
	task.Register(&task.Func{
		TaskName:  "conversion-request-consumer",
		StartFunc: func(ctx context.Context) error { return c.Start() },
		StopFunc:  c.Stop,
	})
}

func (c *RequestConsumer) Start() error {
	c.ctx, c.cancel = context.WithCancel(context.Background())
	reader := pkgkafka.DefaultClient().Reader(c.topic, c.group)
	go func() {
		defer reader.Close()
		logger.Infof("Kafka consumer started topic=%s group=%s", c.topic, c.group)
		for {
			msg, err := reader.ReadMessage(c.ctx)
			if err != nil {
				if c.ctx.Err() != nil {
					return
				}
				if errors.Is(err, io.EOF) || strings.Contains(err.Error(), "EOF") {
					logger.Debugf("Kafka reader EOF topic=%s", c.topic)
				} else {
					logger.Warnf("Kafka read error error=%s", err.Error())
				}
				continue
			}

			var req cqe.CreateConversionReq
			if err := json.Unmarshal(msg.Value, &req); err != nil {
				logger.Warnf("Kafka message unmarshal error error=%s", err.Error())
				continue
			}
			logger.Infof("Kafka conversion request received input=%s format=%s", req.InputPath, req.Format)
			if _, err := c.app.CreateConversion(context.Background(), &req); err != nil {
				logger.Warnf("CreateConversion failed error=%s input=%s", err.Error(), req.InputPath)
			}
		}
	}()
	return nil
}

func (c *RequestConsumer) Stop() error {
	if c.cancel != nil {
		c.cancel()
	}
	return nil
}
