package repository

import (
	"context"
	"fmt"

	"FeatureMill/internal/domain/models"
	domrepo "FeatureMill/internal/domain/repository"
	pkgkafka "FeatureMill/pkg/kafka"
	applogger "FeatureMill/pkg/logger"
)

// KafkaPublisher emits dataset-ready events to a Kafka topic, keyed by
// symbol so per-symbol ordering holds.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topic    string
	l        *applogger.Logger
}

func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

// SetLogger injects a structured logger.
func (p *KafkaPublisher) SetLogger(l *applogger.Logger) { p.l = l }

var _ domrepo.Publisher = (*KafkaPublisher)(nil)

func (p *KafkaPublisher) PublishDatasetReady(ctx context.Context, event *models.DatasetEvent) error {
	if err := p.producer.Publish(ctx, p.topic, []byte(event.Symbol), event); err != nil {
		return fmt.Errorf("publish dataset event: %w", err)
	}
	if p.l != nil {
		p.l.Info("dataset event published",
			applogger.String("topic", p.topic),
			applogger.String("symbol", event.Symbol),
			applogger.Int("features", len(event.Features)),
		)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
