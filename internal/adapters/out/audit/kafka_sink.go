package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"ordering/internal/core/ports"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// DefaultBuffer is the number of records queued before new ones are dropped.
const DefaultBuffer = 1024

// MessageWriter is the part of *kafka.Writer the sink uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// message is the JSON body published for one record.
type message struct {
	ID        string         `json:"id"`
	Action    string         `json:"action"`
	ActorID   string         `json:"actorId"`
	ActorName string         `json:"actorName"`
	OrderID   string         `json:"orderId,omitempty"`
	At        time.Time      `json:"at"`
	Details   map[string]any `json:"details,omitempty"`
}

// KafkaSink publishes audit records to a Kafka topic from a background
// goroutine. Records are keyed by order id so one order's trail stays in
// one partition. A full queue drops the record with a warning.
type KafkaSink struct {
	w      MessageWriter
	inbox  chan kafka.Message
	done   chan struct{}
	once   sync.Once
	logger *slog.Logger
}

// NewKafkaWriter builds the async writer used in production.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		Async:        true,
	}
}

func NewKafkaSink(w MessageWriter, buffer int, logger *slog.Logger) *KafkaSink {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	s := &KafkaSink{
		w:      w,
		inbox:  make(chan kafka.Message, buffer),
		done:   make(chan struct{}),
		logger: logger.With("component", "audit_kafka"),
	}
	go s.loop()
	return s
}

func (s *KafkaSink) Record(ctx context.Context, record ports.AuditRecord) {
	body, err := json.Marshal(message{
		ID:        uuid.NewString(),
		Action:    record.Action,
		ActorID:   record.ActorID,
		ActorName: record.ActorName,
		OrderID:   record.OrderID,
		At:        record.At,
		Details:   record.Details,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to encode audit record", "action", record.Action, "error", err)
		return
	}

	msg := kafka.Message{
		Key:   []byte(record.OrderID),
		Value: body,
		Time:  record.At,
	}

	defer func() {
		// Record after Close lands on a closed channel.
		if recover() != nil {
			s.logger.WarnContext(ctx, "Audit sink closed, record dropped", "action", record.Action)
		}
	}()

	select {
	case s.inbox <- msg:
	default:
		s.logger.WarnContext(ctx, "Audit queue full, record dropped", "action", record.Action)
	}
}

// Close flushes queued records and closes the writer.
func (s *KafkaSink) Close() error {
	s.once.Do(func() { close(s.inbox) })
	<-s.done
	return s.w.Close()
}

func (s *KafkaSink) loop() {
	defer close(s.done)
	for msg := range s.inbox {
		if err := s.w.WriteMessages(context.Background(), msg); err != nil {
			s.logger.Warn("Failed to publish audit record", "error", err)
		}
	}
}
