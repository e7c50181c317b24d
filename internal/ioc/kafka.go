package ioc

import (
	"fmt"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/gotomicro/ego/core/econf"

	"github.com/rangerops/clubhouse-rbs/internal/event/delivery"
)

type kafkaConfig struct {
	Addr     string `yaml:"addr"`
	ClientID string `yaml:"clientID"`
	GroupID  string `yaml:"groupID"`
}

func loadKafkaConfig() kafkaConfig {
	var cfg kafkaConfig
	if err := econf.UnmarshalKey("kafka", &cfg); err != nil {
		panic(err)
	}
	if cfg.GroupID == "" {
		cfg.GroupID = "rbs-delivery"
	}
	return cfg
}

func InitProducer() *kafka.Producer {
	cfg := loadKafkaConfig()
	producer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": cfg.Addr,
		"client.id":         cfg.ClientID,
	})
	if err != nil {
		panic(fmt.Sprintf("init kafka producer: %v", err))
	}
	return producer
}

func InitConsumer() *kafka.Consumer {
	cfg := loadKafkaConfig()
	consumer, err := kafka.NewConsumer(&kafka.ConfigMap{
		"bootstrap.servers":  cfg.Addr,
		"group.id":           cfg.GroupID,
		"auto.offset.reset":  "earliest",
		"enable.auto.commit": "false",
	})
	if err != nil {
		panic(fmt.Sprintf("init kafka consumer: %v", err))
	}
	if err := consumer.SubscribeTopics([]string{delivery.TaskTopic}, nil); err != nil {
		panic(fmt.Sprintf("subscribe %s: %v", delivery.TaskTopic, err))
	}
	return consumer
}
