package repository

import (
	"context"
	"fmt"

	"CryptoCast/internal/domain/models"
	domrepo "CryptoCast/internal/domain/repository"
)

var _ domrepo.OutcomeArchive = (*KafkaOutcomeArchive)(nil)

// Publisher is the subset of pkg/kafka.Producer the archive needs.
type Publisher interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
	Close() error
}

// KafkaOutcomeArchive streams outcomes keyed by asset id, so events for one
// asset stay ordered within a partition.
type KafkaOutcomeArchive struct {
	producer Publisher
	topic    string
}

func NewKafkaOutcomeArchive(producer Publisher, topic string) *KafkaOutcomeArchive {
	return &KafkaOutcomeArchive{producer: producer, topic: topic}
}

func (a *KafkaOutcomeArchive) Record(ctx context.Context, o models.Outcome) error {
	if err := a.producer.Publish(ctx, a.topic, []byte(o.AssetID), o); err != nil {
		return fmt.Errorf("publish outcome: %w", err)
	}
	return nil
}

func (a *KafkaOutcomeArchive) Close() error {
	if a.producer != nil {
		return a.producer.Close()
	}
	return nil
}
