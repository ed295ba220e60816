// Package amqp publishes submission notifications to a RabbitMQ topic exchange.
package amqp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/okian/clubhouse/internal/domain/model"
	"github.com/okian/clubhouse/pkg/logger"
)

const (
	exchangeKind     = "topic"
	publishTimeout   = 5 * time.Second
	reconnectBackoff = 5 * time.Second
	routingKeyPrefix = "submission."
)

// ErrClosed is returned by Publish after Close.
var ErrClosed = errors.New("publisher closed")

// Channel is the part of *amqp.Channel the publisher needs.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher sends notifications as persistent JSON messages.
type Publisher struct {
	mu       sync.RWMutex
	conn     *amqp.Connection
	channel  Channel
	exchange string
	url      string
	closed   bool
	done     chan struct{}
	logger   logger.Logger
}

// Dial connects to url, declares the exchange and starts watching the
// connection for drops.
func Dial(url, exchange string) (*Publisher, error) {
	conn, ch, err := connect(url, exchange)
	if err != nil {
		return nil, err
	}
	p := &Publisher{
		conn:     conn,
		channel:  ch,
		exchange: exchange,
		url:      url,
		done:     make(chan struct{}),
		logger:   logger.Get().Named("amqp"),
	}
	go p.watch(conn)

	p.logger.Info(context.Background(), "amqp publisher initialized", logger.String("exchange", exchange))
	return p, nil
}

// NewWithChannel builds a publisher over an existing channel. It does not reconnect.
func NewWithChannel(ch Channel, exchange string) *Publisher {
	return &Publisher{
		channel:  ch,
		exchange: exchange,
		done:     make(chan struct{}),
		logger:   logger.Get().Named("amqp"),
	}
}

func connect(url, exchange string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("failed to open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, exchangeKind, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, fmt.Errorf("failed to declare exchange: %w", err)
	}
	return conn, ch, nil
}

// RoutingKey returns the key a notification of kind is published under.
func RoutingKey(kind model.SubmissionKind) string {
	return routingKeyPrefix + string(kind)
}

// Publish sends n to the exchange.
func (p *Publisher) Publish(ctx context.Context, n model.Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = p.channel.PublishWithContext(ctx, p.exchange, RoutingKey(n.Kind), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
		Timestamp:    n.At,
		MessageId:    n.ID,
	})
	if err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}

	p.logger.Debug(ctx, "notification published",
		logger.String("routing_key", RoutingKey(n.Kind)),
		logger.Int("body_size", len(body)),
	)
	return nil
}

// watch redials after the broker drops the connection, until Close.
func (p *Publisher) watch(conn *amqp.Connection) {
	closed := conn.NotifyClose(make(chan *amqp.Error, 1))
	for {
		select {
		case <-p.done:
			return
		case cerr, ok := <-closed:
			if !ok || cerr == nil {
				return
			}
			p.logger.Error(context.Background(), "broker connection lost, reconnecting", logger.Error(cerr))
			next, ok := p.redial()
			if !ok {
				return
			}
			closed = next.NotifyClose(make(chan *amqp.Error, 1))
		}
	}
}

func (p *Publisher) redial() (*amqp.Connection, bool) {
	for {
		select {
		case <-p.done:
			return nil, false
		case <-time.After(reconnectBackoff):
		}
		conn, ch, err := connect(p.url, p.exchange)
		if err != nil {
			p.logger.Warn(context.Background(), "reconnect failed", logger.Error(err))
			continue
		}
		p.mu.Lock()
		p.conn, p.channel = conn, ch
		p.mu.Unlock()
		p.logger.Info(context.Background(), "reconnected to broker")
		return conn, true
	}
}

// HealthCheck reports whether the connection is usable.
func (p *Publisher) HealthCheck() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	switch {
	case p.closed:
		return ErrClosed
	case p.channel == nil:
		return errors.New("amqp channel is nil")
	case p.conn != nil && p.conn.IsClosed():
		return errors.New("amqp connection is closed")
	}
	return nil
}

// Close stops reconnecting and closes the channel and connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	close(p.done)

	var errs []error
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	return errors.Join(errs...)
}
