package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// channel is the subset of *amqp.Channel used for publishing.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPPublisher publishes SaleRecorded events as persistent JSON messages to
// a durable queue through the default exchange. A single channel is shared
// and guarded by a mutex because amqp channels are not safe for concurrent
// publishing.
type AMQPPublisher struct {
	queue string

	mu   sync.Mutex
	conn *amqp.Connection
	ch   channel

	now func() time.Time
}

// NewAMQPPublisher dials url, opens a channel, and declares queue as durable.
func NewAMQPPublisher(url, queue string) (*AMQPPublisher, error) {
	if queue == "" {
		return nil, errors.New("amqp: queue name is empty")
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp: dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("amqp: open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(
		queue, // name
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,   // args
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("amqp: declare queue %q: %w", queue, err)
	}

	p := newAMQPPublisher(queue, ch)
	p.conn = conn
	return p, nil
}

func newAMQPPublisher(queue string, ch channel) *AMQPPublisher {
	return &AMQPPublisher{queue: queue, ch: ch, now: time.Now}
}

// PublishSaleRecorded implements Publisher.
func (p *AMQPPublisher) PublishSaleRecorded(ctx context.Context, ev SaleRecorded) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("amqp: marshal event: %w", err)
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    p.now().UTC(),
		Type:         "sale.recorded",
		Body:         body,
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch == nil {
		return errors.New("amqp: publisher closed")
	}
	if err := p.ch.PublishWithContext(ctx,
		"",      // default exchange
		p.queue, // routing key = queue name
		false,   // mandatory
		false,   // immediate
		msg,
	); err != nil {
		return fmt.Errorf("amqp: publish sale %d: %w", ev.SaleID, err)
	}
	return nil
}

// Close releases the channel and the connection. It is safe to call twice.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	if p.ch != nil {
		errs = append(errs, p.ch.Close())
		p.ch = nil
	}
	if p.conn != nil {
		errs = append(errs, p.conn.Close())
		p.conn = nil
	}
	return errors.Join(errs...)
}
