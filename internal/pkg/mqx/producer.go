package mqx

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/gofrs/uuid"
)

// GeneralProducer publishes JSON-encoded events of one type to one topic
// and waits for the broker ack before returning.
type GeneralProducer[T any] struct {
	producer *kafka.Producer
	topic    string
}

func NewGeneralProducer[T any](producer *kafka.Producer, topic string) (*GeneralProducer[T], error) {
	return &GeneralProducer[T]{
		producer: producer,
		topic:    topic,
	}, nil
}

func (p *GeneralProducer[T]) Produce(ctx context.Context, evt T) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	key, err := uuid.NewV4()
	if err != nil {
		return fmt.Errorf("generate event key: %w", err)
	}

	deliveryChan := make(chan kafka.Event, 1)
	err = p.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &p.topic, Partition: kafka.PartitionAny},
		Key:            key.Bytes(),
		Value:          data,
	}, deliveryChan)
	if err != nil {
		return fmt.Errorf("produce to %s: %w", p.topic, err)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case ev := <-deliveryChan:
		msg, ok := ev.(*kafka.Message)
		if !ok {
			return fmt.Errorf("produce to %s: unexpected event %T", p.topic, ev)
		}
		if msg.TopicPartition.Error != nil {
			return fmt.Errorf("produce to %s: %w", p.topic, msg.TopicPartition.Error)
		}
	}
	return nil
}

func (p *GeneralProducer[T]) Close() {
	p.producer.Close()
}
