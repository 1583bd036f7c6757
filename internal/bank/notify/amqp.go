package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/aussiebroadwan/teller/pkg/idx"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	DefaultExchange = "teller.events"

	RoutingKeyOTPIssued        = "auth.otp.issued"
	RoutingKeyLockedOut        = "auth.account.locked"
	RoutingKeyDepositCompleted = "account.deposit.completed"
)

// publisher is the part of *amqp.Channel the notifier uses.
type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQPNotifier publishes notifications as JSON events on a topic exchange
// for the mail worker to pick up.
type AMQPNotifier struct {
	Exchange string

	pub  publisher
	conn *amqp.Connection
}

// DialAMQP connects to the broker and declares the exchange.
func DialAMQP(rawURL, exchange string) (*AMQPNotifier, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse amqp url: %w", err)
	}
	if u.Scheme != "amqp" && u.Scheme != "amqps" {
		return nil, errors.New("amqp url must use amqp:// or amqps://")
	}
	if exchange == "" {
		exchange = DefaultExchange
	}

	conn, err := amqp.DialConfig(rawURL, amqp.Config{Dial: amqp.DefaultDial(10 * time.Second)})
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open amqp channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}

	return &AMQPNotifier{Exchange: exchange, pub: ch, conn: conn}, nil
}

func newAMQPNotifier(pub publisher, exchange string) *AMQPNotifier {
	return &AMQPNotifier{Exchange: exchange, pub: pub}
}

func (n *AMQPNotifier) OTPIssued(ctx context.Context, msg OTPMessage) error {
	return n.publish(ctx, RoutingKeyOTPIssued, msg)
}

func (n *AMQPNotifier) LockedOut(ctx context.Context, msg LockoutMessage) error {
	return n.publish(ctx, RoutingKeyLockedOut, msg)
}

func (n *AMQPNotifier) DepositCompleted(ctx context.Context, msg DepositMessage) error {
	return n.publish(ctx, RoutingKeyDepositCompleted, msg)
}

func (n *AMQPNotifier) publish(ctx context.Context, key string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}

	err = n.pub.PublishWithContext(ctx, n.Exchange, key, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    idx.New().String(),
		Timestamp:    time.Now().UTC(),
		Type:         key,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", key, err)
	}
	return nil
}

// Close tears down the broker connection, closing its channels with it.
func (n *AMQPNotifier) Close() error {
	if n.conn == nil {
		return nil
	}
	return n.conn.Close()
}
