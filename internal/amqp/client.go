package amqp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rabbitmq/amqp091-go"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

const (
	publishTimeout = 5 * time.Second

	retryInitialDelay = time.Second
	retryMaxDelay     = 30 * time.Second
)

// channel is the subset of *amqp091.Channel used after setup.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp091.Table) (<-chan amqp091.Delivery, error)
	Qos(prefetchCount, prefetchSize int, global bool) error
	Close() error
}

type Client struct {
	conn         *amqp091.Connection
	channel      channel
	exchangeName string
	queueName    string

	// retry spaces out requeues while handlers keep failing.
	retry backoff.BackOff
	sleep func(context.Context, time.Duration) error
}

// Handlers receives decoded messages. A nil handler acknowledges and drops
// messages of that type.
type Handlers struct {
	TransactionRecorded func(context.Context, *TransactionRecordedMessage) error
	BudgetExceeded      func(context.Context, *BudgetExceededMessage) error
}

func NewClient(url, exchangeName, queueName string) (*Client, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := setup(ch, exchangeName, queueName); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}

	return &Client{
		conn:         conn,
		channel:      ch,
		exchangeName: exchangeName,
		queueName:    queueName,
		retry:        newRetryBackOff(),
		sleep:        sleepContext,
	}, nil
}

// newRetryBackOff doubles from retryInitialDelay up to retryMaxDelay and
// never gives up.
func newRetryBackOff() *backoff.ExponentialBackOff {
	b := &backoff.ExponentialBackOff{
		InitialInterval:     retryInitialDelay,
		RandomizationFactor: 0,
		Multiplier:          2,
		MaxInterval:         retryMaxDelay,
		MaxElapsedTime:      0,
		Stop:                backoff.Stop,
		Clock:               backoff.SystemClock,
	}
	b.Reset()
	return b
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func setup(ch *amqp091.Channel, exchangeName, queueName string) error {
	err := ch.ExchangeDeclare(
		exchangeName, // name
		"direct",     // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	_, err = ch.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	// Routing key equals the queue name on the direct exchange.
	err = ch.QueueBind(queueName, queueName, exchangeName, false, nil)
	if err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	return nil
}

func (c *Client) publish(ctx context.Context, msgType, messageID string, body []byte) error {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err := c.channel.PublishWithContext(
		ctx,
		c.exchangeName, // exchange
		c.queueName,    // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Type:         msgType,
			MessageId:    messageID,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s: %w", msgType, err)
	}
	return nil
}

// PublishTransactionRecorded announces a newly stored transaction.
func (c *Client) PublishTransactionRecorded(ctx context.Context, tx core.Transaction) error {
	msg := NewTransactionRecordedMessage(tx)
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	if err := c.publish(ctx, TypeTransactionRecorded, msg.MessageID, body); err != nil {
		return err
	}

	log.For(ctx, log.ComponentAMQP).InfoContext(ctx, "Published transaction recorded message",
		log.FieldMessageID, msg.MessageID,
		log.FieldTransactionID, tx.ID,
		"exchange", c.exchangeName,
		log.FieldQueue, c.queueName)
	return nil
}

// PublishBudgetExceeded announces a monthly budget overrun.
func (c *Client) PublishBudgetExceeded(ctx context.Context, userID int64, o core.Overage) error {
	msg := NewBudgetExceededMessage(userID, o)
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	if err := c.publish(ctx, TypeBudgetExceeded, msg.MessageID, body); err != nil {
		return err
	}

	log.For(ctx, log.ComponentAMQP).InfoContext(ctx, "Published budget exceeded message",
		log.FieldMessageID, msg.MessageID,
		log.FieldUserID, userID,
		log.FieldCategory, o.Category,
		log.FieldMonth, o.Month)
	return nil
}

// Consume delivers messages to h until ctx is cancelled. Undecodable messages
// are rejected without requeue. Handler failures are requeued after a delay
// that grows with each consecutive failure.
func (c *Client) Consume(ctx context.Context, prefetch int, h Handlers) error {
	logger := log.For(ctx, log.ComponentAMQP).With(log.FieldQueue, c.queueName)

	if prefetch > 0 {
		if err := c.channel.Qos(prefetch, 0, false); err != nil {
			return fmt.Errorf("set prefetch: %w", err)
		}
	}

	msgs, err := c.channel.Consume(
		c.queueName, // queue
		"",          // consumer
		false,       // auto-ack
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	logger.InfoContext(ctx, "Started consuming messages")

	for {
		select {
		case <-ctx.Done():
			logger.InfoContext(ctx, "Stopping message consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return errors.New("message channel closed")
			}
			c.dispatch(ctx, delivery, h)
		}
	}
}

func (c *Client) dispatch(ctx context.Context, d amqp091.Delivery, h Handlers) {
	var err error
	switch d.Type {
	case TypeTransactionRecorded, "":
		msg, decodeErr := TransactionRecordedMessageFromJSON(d.Body)
		if decodeErr != nil {
			reject(ctx, d, decodeErr)
			return
		}
		if h.TransactionRecorded != nil {
			err = h.TransactionRecorded(ctx, msg)
		}
	case TypeBudgetExceeded:
		msg, decodeErr := BudgetExceededMessageFromJSON(d.Body)
		if decodeErr != nil {
			reject(ctx, d, decodeErr)
			return
		}
		if h.BudgetExceeded != nil {
			err = h.BudgetExceeded(ctx, msg)
		}
	default:
		reject(ctx, d, fmt.Errorf("unknown message type %q", d.Type))
		return
	}

	logger := deliveryLogger(ctx, d)
	if err != nil {
		delay := c.retryBackOff().NextBackOff()
		logger.ErrorContext(ctx, "Failed to handle message, requeueing",
			log.FieldError, err,
			log.FieldDelay, delay)
		c.pause(ctx, delay)
		d.Nack(false, true)
		return
	}

	c.retryBackOff().Reset()
	d.Ack(false)
	logger.DebugContext(ctx, "Processed message")
}

func (c *Client) retryBackOff() backoff.BackOff {
	if c.retry == nil {
		c.retry = newRetryBackOff()
	}
	return c.retry
}

func (c *Client) pause(ctx context.Context, d time.Duration) {
	sleep := c.sleep
	if sleep == nil {
		sleep = sleepContext
	}
	_ = sleep(ctx, d)
}

func deliveryLogger(ctx context.Context, d amqp091.Delivery) *log.Logger {
	return log.For(ctx, log.ComponentAMQP).With(
		log.FieldMessageType, d.Type,
		log.FieldMessageID, d.MessageId)
}

func reject(ctx context.Context, d amqp091.Delivery, err error) {
	deliveryLogger(ctx, d).ErrorContext(ctx, "Rejecting undecodable message", log.FieldError, err)
	d.Nack(false, false)
}

func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
