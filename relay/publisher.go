package relay

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Fadil369/momfood-cloud-kitchen-sub000/models"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// Publisher emits notification events on every order status change. With
// brokers it writes to the kafka topic; otherwise it feeds the manager's
// loopback channel directly.
type Publisher struct {
	writer *kafka.Writer
	local  *Manager
}

func NewPublisher(brokers []string, topic string, local *Manager) *Publisher {
	p := &Publisher{local: local}
	if len(brokers) > 0 {
		p.writer = &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		}
	}
	return p
}

func (p *Publisher) Publish(ctx context.Context, n models.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.Timestamp.IsZero() {
		n.Timestamp = time.Now()
	}
	if p.writer == nil {
		p.local.Inject(n)
		return nil
	}
	payload, err := json.Marshal(n)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(n.OrderID),
		Value: payload,
	})
}

func (p *Publisher) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
