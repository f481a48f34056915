// Package events publishes loan lifecycle events to kafka. Publishing
// is best-effort from the caller's point of view: the loan operation
// itself never fails because the broker is down.
package events

import (
	"context"
	"encoding/json"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/abakhtin/library-api/pkg/kafka"
)

type Publisher struct {
	producer sarama.SyncProducer
	log      *zap.Logger
}

func NewPublisher(producer sarama.SyncProducer, log *zap.Logger) *Publisher {
	return &Publisher{
		producer: producer,
		log:      log.Named("events"),
	}
}

func (p *Publisher) Publish(_ context.Context, event kafka.EventLoan) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	msg := &sarama.ProducerMessage{
		Topic: kafka.LoanTopic,
		Key:   sarama.StringEncoder(event.ISBN),
		Value: sarama.ByteEncoder(data),
	}
	if _, _, err := p.producer.SendMessage(msg); err != nil {
		return err
	}
	p.log.Debug("published", zap.String("type", string(event.EventType)), zap.Int64("loanId", event.LoanID))
	return nil
}

func (p *Publisher) Close() error {
	return p.producer.Close()
}

// NopPublisher is used when kafka is not configured.
type NopPublisher struct{}

func NewNopPublisher() *NopPublisher { return &NopPublisher{} }

func (*NopPublisher) Publish(context.Context, kafka.EventLoan) error { return nil }
