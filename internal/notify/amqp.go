package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// AMQPConfig identifies the broker and routing for published notifications.
type AMQPConfig struct {
	URL        string
	Exchange   string
	RoutingKey string
}

// amqpChannel is the subset of *amqp.Channel the publisher uses.
type amqpChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// amqpDialer opens a channel and returns it with a func closing the
// underlying connection.
type amqpDialer func(url string) (amqpChannel, func() error, error)

// AMQP publishes notifications as persistent JSON messages to a topic
// exchange. The connection is opened on first use and reused until Close.
type AMQP struct {
	config AMQPConfig
	logger *slog.Logger
	dial   amqpDialer

	mu        sync.Mutex
	channel   amqpChannel
	closeConn func() error
}

// NewAMQP creates an AMQP notifier. No connection is made until Notify.
func NewAMQP(config AMQPConfig, logger *slog.Logger) *AMQP {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &AMQP{
		config: config,
		logger: logger,
		dial:   dialAMQP,
	}
}

func dialAMQP(url string) (amqpChannel, func() error, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("failed to create channel: %w", err)
	}
	return ch, conn.Close, nil
}

// connect establishes the channel and declares the exchange once.
func (a *AMQP) connect() (amqpChannel, error) {
	if a.channel != nil {
		return a.channel, nil
	}

	a.logger.Debug("connecting to AMQP broker", slog.String("exchange", a.config.Exchange))

	ch, closeConn, err := a.dial(a.config.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to AMQP broker: %w", err)
	}

	err = ch.ExchangeDeclare(
		a.config.Exchange, // name
		"topic",           // type
		true,              // durable
		false,             // auto-deleted
		false,             // internal
		false,             // no-wait
		nil,               // arguments
	)
	if err != nil {
		ch.Close()
		if closeConn != nil {
			closeConn()
		}
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	a.channel = ch
	a.closeConn = closeConn
	return ch, nil
}

// Notify publishes the notification to the configured exchange.
func (a *AMQP) Notify(ctx context.Context, n Notification) error {
	body, err := json.Marshal(NewPayload(n))
	if err != nil {
		return fmt.Errorf("marshal amqp payload: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	ch, err := a.connect()
	if err != nil {
		return err
	}

	err = ch.PublishWithContext(
		ctx,
		a.config.Exchange,   // exchange
		a.config.RoutingKey, // routing key
		false,               // mandatory
		false,               // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			MessageId:    uuid.NewString(),
			Timestamp:    time.Now(),
			Type:         string(n.Severity),
		},
	)
	if err != nil {
		// Drop the channel so the next Notify reconnects.
		a.reset()
		return fmt.Errorf("failed to publish message: %w", err)
	}

	a.logger.Debug("notification published",
		slog.String("exchange", a.config.Exchange),
		slog.String("routing_key", a.config.RoutingKey),
		slog.Int("body_size", len(body)),
	)
	return nil
}

// Close closes the channel and connection if open.
func (a *AMQP) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.reset()
}

func (a *AMQP) reset() error {
	var errs []error
	if a.channel != nil {
		if err := a.channel.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.closeConn != nil {
		if err := a.closeConn(); err != nil {
			errs = append(errs, err)
		}
	}
	a.channel = nil
	a.closeConn = nil
	return errors.Join(errs...)
}

// Name returns "amqp"
func (a *AMQP) Name() string {
	return "amqp"
}
