package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type published struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakePublisher struct {
	sent []published
	err  error
}

func (f *fakePublisher) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func TestAMQPNotifier(t *testing.T) {
	ctx := context.Background()

	t.Run("otp event", func(t *testing.T) {
		pub := &fakePublisher{}
		n := newAMQPNotifier(pub, DefaultExchange)

		exp := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
		require.NoError(t, n.OTPIssued(ctx, OTPMessage{UserID: "u1", Email: "alice@example.com", Code: "123456", ExpiresAt: exp}))

		require.Len(t, pub.sent, 1)
		require.Equal(t, DefaultExchange, pub.sent[0].exchange)
		require.Equal(t, RoutingKeyOTPIssued, pub.sent[0].key)
		require.Equal(t, "application/json", pub.sent[0].msg.ContentType)
		require.Equal(t, amqp.Persistent, pub.sent[0].msg.DeliveryMode)
		require.NotEmpty(t, pub.sent[0].msg.MessageId)

		var got OTPMessage
		require.NoError(t, json.Unmarshal(pub.sent[0].msg.Body, &got))
		require.Equal(t, "123456", got.Code)
		require.True(t, exp.Equal(got.ExpiresAt))
	})

	t.Run("deposit event keeps amounts exact", func(t *testing.T) {
		pub := &fakePublisher{}
		n := newAMQPNotifier(pub, "bank")

		require.NoError(t, n.DepositCompleted(ctx, DepositMessage{
			AccountNumber: "1234567890",
			Amount:        decimal.RequireFromString("0.10"),
			NewBalance:    decimal.RequireFromString("100.30"),
		}))

		require.Len(t, pub.sent, 1)
		require.Equal(t, "bank", pub.sent[0].exchange)
		require.Equal(t, RoutingKeyDepositCompleted, pub.sent[0].key)
		require.Contains(t, string(pub.sent[0].msg.Body), `"new_balance":"100.3"`)
	})

	t.Run("lockout event", func(t *testing.T) {
		pub := &fakePublisher{}
		n := newAMQPNotifier(pub, DefaultExchange)

		until := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)
		require.NoError(t, n.LockedOut(ctx, LockoutMessage{UserID: "u1", Email: "alice@example.com", LockedUntil: until}))

		require.Len(t, pub.sent, 1)
		require.Equal(t, RoutingKeyLockedOut, pub.sent[0].key)

		var got LockoutMessage
		require.NoError(t, json.Unmarshal(pub.sent[0].msg.Body, &got))
		require.Equal(t, "alice@example.com", got.Email)
		require.True(t, until.Equal(got.LockedUntil))
	})

	t.Run("publish failure surfaces", func(t *testing.T) {
		boom := errors.New("channel closed")
		n := newAMQPNotifier(&fakePublisher{err: boom}, DefaultExchange)
		require.ErrorIs(t, n.OTPIssued(ctx, OTPMessage{}), boom)
	})
}

func TestDialAMQPRejectsBadScheme(t *testing.T) {
	_, err := DialAMQP("http://localhost:5672", "")
	require.Error(t, err)
}

func TestLogNotifier(t *testing.T) {
	ctx := context.Background()
	msg := OTPMessage{UserID: "u1", Email: "alice@example.com", Code: "654321"}

	t.Run("hides code by default", func(t *testing.T) {
		var buf bytes.Buffer
		n := &LogNotifier{Logger: slog.New(slog.NewJSONHandler(&buf, nil))}
		require.NoError(t, n.OTPIssued(ctx, msg))
		require.NotContains(t, buf.String(), "654321")
		require.NotContains(t, buf.String(), "alice@example.com")
	})

	t.Run("lockout masks the address", func(t *testing.T) {
		var buf bytes.Buffer
		n := &LogNotifier{Logger: slog.New(slog.NewJSONHandler(&buf, nil))}
		require.NoError(t, n.LockedOut(ctx, LockoutMessage{UserID: "u1", Email: "alice@example.com"}))
		require.Contains(t, buf.String(), `"msg":"account locked"`)
		require.NotContains(t, buf.String(), "alice@example.com")
	})

	t.Run("reveals code in development", func(t *testing.T) {
		var buf bytes.Buffer
		n := &LogNotifier{Logger: slog.New(slog.NewJSONHandler(&buf, nil)), RevealCodes: true}
		require.NoError(t, n.OTPIssued(ctx, msg))
		require.Contains(t, buf.String(), `"otp":"654321"`)
	})
}
