package notifications

import (
	"fmt"

	"github.com/IBM/sarama"
)

// Producer abstracts the message broker so the dispatcher can be tested
// without a live cluster.
type Producer interface {
	Send(topic, key string, payload []byte) error
	Close() error
}

type kafkaProducer struct {
	producer sarama.SyncProducer
}

// NewKafkaProducer creates a synchronous Kafka producer. Messages are hash
// partitioned on the key and acknowledged by all in-sync replicas.
func NewKafkaProducer(brokers []string) (Producer, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 3
	config.Producer.Return.Successes = true
	config.Producer.Partitioner = sarama.NewHashPartitioner
	config.Producer.Compression = sarama.CompressionSnappy

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return &kafkaProducer{producer: producer}, nil
}

func (k *kafkaProducer) Send(topic, key string, payload []byte) error {
	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(payload),
	}

	if _, _, err := k.producer.SendMessage(msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

func (k *kafkaProducer) Close() error {
	return k.producer.Close()
}
