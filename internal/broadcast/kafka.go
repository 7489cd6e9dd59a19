package broadcast

import (
	"context"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Skotchmaster/shopstate/internal/mykafka"
	"github.com/Skotchmaster/shopstate/internal/notify"
	"github.com/Skotchmaster/shopstate/pkg/logging"
)

const (
	minReadRetry = 500 * time.Millisecond
	maxReadRetry = 30 * time.Second
)

type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Kafka publishes storage changes to one topic and reads every change back.
// Each instance uses its own consumer group so that all of them see all changes.
type Kafka struct {
	notify.Fanout

	Topic    string
	producer *mykafka.Producer
	reader   MessageReader

	minRetry time.Duration
	maxRetry time.Duration
}

func NewKafka(brokers []string, topic, origin string) (*Kafka, error) {
	producer, err := mykafka.NewProducer(brokers)
	if err != nil {
		return nil, err
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		Topic:       topic,
		GroupID:     "shopstate-" + origin,
		StartOffset: kafka.LastOffset,
		MinBytes:    1,
		MaxBytes:    1 << 20,
	})

	return NewKafkaWith(topic, producer, reader), nil
}

func NewKafkaWith(topic string, producer *mykafka.Producer, reader MessageReader) *Kafka {
	return &Kafka{Topic: topic, producer: producer, reader: reader, minRetry: minReadRetry, maxRetry: maxReadRetry}
}

func (k *Kafka) Publish(ctx context.Context, ch notify.StorageChange) error {
	return k.producer.PublishEvent(ctx, k.Topic, string(ch.Key), ch)
}

// Run reads the topic until ctx is cancelled. Read errors are logged and
// retried with exponential backoff.
func (k *Kafka) Run(ctx context.Context) error {
	l := logging.FromContext(ctx).With("svc", "broadcast.kafka")
	l.Info("kafka_reader_started", "topic", k.Topic)

	wait := k.minRetry
	for {
		msg, err := k.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				l.Info("kafka_reader_stopped")
				return nil
			}
			l.Error("kafka_read_error", "topic", k.Topic, "err", err, "retry_in", wait)

			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				l.Info("kafka_reader_stopped")
				return nil
			case <-timer.C:
			}
			wait = min(wait*2, k.maxRetry)
			continue
		}
		wait = k.minRetry
		dispatch(ctx, &k.Fanout, "broadcast.kafka", msg.Value)
	}
}

func (k *Kafka) Close() error {
	return errors.Join(k.reader.Close(), k.producer.Close())
}
