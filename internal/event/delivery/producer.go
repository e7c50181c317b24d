package delivery

import (
	"context"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"

	"github.com/rangerops/clubhouse-rbs/internal/pkg/mqx"
)

//go:generate mockgen -source=./producer.go -package=evtmocks -destination=../mocks/delivery_task_producer.mock.go
type TaskProducer interface {
	Produce(ctx context.Context, evt Task) error
}

func NewTaskProducer(producer *kafka.Producer) (TaskProducer, error) {
	return mqx.NewGeneralProducer[Task](producer, TaskTopic)
}
