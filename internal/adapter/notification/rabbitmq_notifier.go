package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iho/memledger/internal/domain"
)

// RabbitMQConfig configures the RabbitMQ sink.
type RabbitMQConfig struct {
	URL        string
	Exchange   string
	RoutingKey string
}

// amqpChannel is the subset of *amqp.Channel the notifier uses.
type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitMQNotifier publishes notifications to a topic exchange.
type RabbitMQNotifier struct {
	conn       *amqp.Connection
	channel    amqpChannel
	exchange   string
	routingKey string
}

// DialRabbitMQ connects to RabbitMQ and declares the notification exchange.
func DialRabbitMQ(cfg RabbitMQConfig) (*RabbitMQNotifier, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		cfg.Exchange, // name
		"topic",      // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	n := newRabbitMQNotifier(channel, cfg.Exchange, cfg.RoutingKey)
	n.conn = conn

	return n, nil
}

func newRabbitMQNotifier(channel amqpChannel, exchange, routingKey string) *RabbitMQNotifier {
	return &RabbitMQNotifier{
		channel:    channel,
		exchange:   exchange,
		routingKey: routingKey,
	}
}

// NotifyAboutTransfer publishes a persistent JSON message.
func (n *RabbitMQNotifier) NotifyAboutTransfer(ctx context.Context, account domain.Account, message string) error {
	notification := newNotification(account, message)

	body, err := json.Marshal(notification)
	if err != nil {
		return err
	}

	err = n.channel.PublishWithContext(ctx,
		n.exchange,   // exchange
		n.routingKey, // routing key
		false,        // mandatory
		false,        // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    notification.ID,
			Timestamp:    notification.CreatedAt.Truncate(time.Second),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}

	return nil
}

// Close closes the channel and the connection.
func (n *RabbitMQNotifier) Close() error {
	err := n.channel.Close()
	if n.conn != nil {
		err = errors.Join(err, n.conn.Close())
	}

	return err
}
