package kafka

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/tiendaonline/backend/internal/events"
)

// Producer publishes order lifecycle events. Writes go through a buffered
// inbox so request handlers never block on the broker; Close flushes what is
// left before the writer shuts down.
type Producer struct {
	w       *kafka.Writer
	inbox   chan kafka.Message
	closeCh chan struct{}
}

var _ events.Publisher = (*Producer)(nil)

func NewProducer(brokers []string, buf int) *Producer {
	return &Producer{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Async:        true,
		},
		inbox:   make(chan kafka.Message, buf),
		closeCh: make(chan struct{}),
	}
}

func (p *Producer) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				// Flush whatever is already buffered, then stop. Only Close()
				// closes the inbox; this path just drains and exits.
				p.drain()
				_ = p.w.Close()
				close(p.closeCh)
				return
			case m, ok := <-p.inbox:
				if !ok {
					_ = p.w.Close()
					close(p.closeCh)
					return
				}
				p.write(m)
			}
		}
	}()
}

// Publish implements events.Publisher. The message key is the order id so all
// events of one order stay ordered within a partition.
func (p *Producer) Publish(ctx context.Context, topic string, ev events.Envelope) {
	m := kafka.Message{
		Topic: topic,
		Key:   events.PartitionKey(ev.CorrelationID),
		Value: events.MustMarshal(ev),
		Time:  time.Now(),
		Headers: []kafka.Header{
			{Key: "x-event-type", Value: []byte(ev.EventType)},
			{Key: "x-event-version", Value: []byte(strconv.Itoa(ev.EventVersion))},
		},
	}
	select {
	case p.inbox <- m:
	default:
		slog.WarnContext(ctx, "kafka inbox lleno, evento descartado",
			"topic", topic, "event_type", ev.EventType, "correlation_id", ev.CorrelationID)
	}
}

func (p *Producer) drain() {
	for {
		select {
		case m, ok := <-p.inbox:
			if !ok {
				return
			}
			p.write(m)
		default:
			return
		}
	}
}

func (p *Producer) write(m kafka.Message) {
	if err := p.w.WriteMessages(context.Background(), m); err != nil {
		slog.Error("error publicando evento kafka", "topic", m.Topic, "error", err)
	}
}

// Close stops accepting events and lets the goroutine flush the rest.
func (p *Producer) Close() { close(p.inbox) }

// WaitClosed blocks until the flush goroutine finished.
func (p *Producer) WaitClosed() { <-p.closeCh }
