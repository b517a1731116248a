// Package kafka publishes engine events and consumes catalog changes over
// Apache Kafka via sarama.
package kafka

import (
	"context"

	"github.com/IBM/sarama"

	appoutbox "bookingengine/internal/app/outbox"
	"bookingengine/internal/infra/outbox"
)

type Producer struct {
	sync sarama.SyncProducer
	// Topic maps an event name to its topic. Nil publishes under the name.
	Topic  func(name string) string
	Source string
}

func NewProducer(brokers []string, cfg *sarama.Config) (*Producer, error) {
	if cfg == nil {
		cfg = sarama.NewConfig()
	}
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Idempotent = true
	cfg.Producer.Return.Successes = true
	cfg.Net.MaxOpenRequests = 1
	sync, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}
	return &Producer{sync: sync}, nil
}

// NewProducerFrom wraps an existing sync producer.
func NewProducerFrom(sync sarama.SyncProducer) *Producer {
	return &Producer{sync: sync}
}

func (p *Producer) Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	hs := make([]sarama.RecordHeader, 0, len(headers))
	for k, v := range headers {
		hs = append(hs, sarama.RecordHeader{Key: []byte(k), Value: []byte(v)})
	}
	msg := &sarama.ProducerMessage{
		Topic:   topic,
		Key:     sarama.StringEncoder(key),
		Value:   sarama.ByteEncoder(payload),
		Headers: hs,
	}
	_, _, err := p.sync.SendMessage(msg)
	return err
}

// Add sends the record straight to the broker, for deployments without a
// durable outbox.
func (p *Producer) Add(ctx context.Context, rec appoutbox.EventRecord) error {
	payload, headers, err := appoutbox.CloudEvent(rec, p.Source)
	if err != nil {
		return err
	}
	topic := rec.Name
	if p.Topic != nil {
		topic = p.Topic(rec.Name)
	}
	return p.Publish(ctx, topic, rec.Aggregate, payload, headers)
}

func (p *Producer) Close() error {
	if p.sync == nil {
		return nil
	}
	return p.sync.Close()
}

var (
	_ appoutbox.Outbox = (*Producer)(nil)
	_ outbox.Producer  = (*Producer)(nil)
)
