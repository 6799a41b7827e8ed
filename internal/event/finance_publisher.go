package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// FinancePublisher publishes finance events to RabbitMQ. Publishing is
// informational: callers log failures but never fail the operation on them.
type FinancePublisher struct {
	conn              *RabbitMQConnection
	messagesPublished int64
	messagesFailed    int64
	lastPublishTime   time.Time
}

// NewFinancePublisher creates a new finance event publisher
func NewFinancePublisher(conn *RabbitMQConnection) *FinancePublisher {
	return &FinancePublisher{
		conn:            conn,
		lastPublishTime: time.Now(),
	}
}

// Publish publishes a finance event to the finance_events queue
func (p *FinancePublisher) Publish(ctx context.Context, evt FinanceEvent) error {
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now()
	}

	// Ensure the queue exists
	_, err := p.conn.Channel.QueueDeclare(
		FinanceEventsQueue, // queue name
		true,               // durable
		false,              // delete when unused
		false,              // exclusive
		false,              // no-wait
		nil,                // arguments
	)
	if err != nil {
		p.messagesFailed++
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	body, err := json.Marshal(evt)
	if err != nil {
		p.messagesFailed++
		return fmt.Errorf("failed to marshal finance event: %w", err)
	}

	err = p.conn.Channel.PublishWithContext(
		ctx,
		"",                 // exchange
		FinanceEventsQueue, // routing key (queue name)
		false,              // mandatory
		false,              // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		p.messagesFailed++
		return fmt.Errorf("failed to publish finance event: %w", err)
	}

	p.messagesPublished++
	p.lastPublishTime = time.Now()
	slog.Info("Published finance event", "event_type", evt.EventType, "association_id", evt.AssociationID)
	return nil
}
