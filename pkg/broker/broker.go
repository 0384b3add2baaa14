package broker

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/dolittle/data-pipeline/pkg/pipeline"
)

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
}

// Client wraps one AMQP connection and the single channel this pipeline
// uses. It never reconnects on its own; a lost connection is surfaced via
// NotifyClose or the closed delivery channel and the caller owns what
// happens next.
type Client struct {
	conn       *amqp.Connection
	channel    *amqp.Channel
	logContext logrus.FieldLogger
}

func Connect(logContext logrus.FieldLogger, config Config) (*Client, error) {
	logContext = logContext.WithFields(logrus.Fields{
		"broker_host": config.Host,
		"broker_port": config.Port,
	})
	logContext.Info("Connecting to RabbitMQ...")

	url := fmt.Sprintf("amqp://%s:%s@%s:%d/", config.Username, config.Password, config.Host, config.Port)
	// Heartbeat keeps idle consumers from being silently dropped by proxies.
	conn, err := amqp.DialConfig(url, amqp.Config{
		Heartbeat: 600 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("dialing broker: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("opening channel: %w", err)
	}

	logContext.Info("Connected to RabbitMQ")
	return &Client{
		conn:       conn,
		channel:    channel,
		logContext: logContext,
	}, nil
}

// DeclareQueue declares a durable queue, creating it if missing.
func (c *Client) DeclareQueue(name string) error {
	_, err := c.channel.QueueDeclare(name, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("declaring queue %s: %w", name, err)
	}
	return nil
}

// Consume starts delivering from the queue with a prefetch of one: the
// broker holds the next message until the current one is acked or nacked.
// That is the pipeline's whole backpressure story. The returned channel
// closes when the connection is lost.
func (c *Client) Consume(queue string, consumerTag string) (<-chan pipeline.Delivery, error) {
	if err := c.channel.Qos(1, 0, false); err != nil {
		return nil, fmt.Errorf("setting prefetch: %w", err)
	}

	amqpDeliveries, err := c.channel.Consume(queue, consumerTag, false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("consuming from %s: %w", queue, err)
	}

	deliveries := make(chan pipeline.Delivery)
	go func() {
		defer close(deliveries)
		for d := range amqpDeliveries {
			deliveries <- delivery{d}
		}
	}()
	return deliveries, nil
}

// Publish sends a persistent message to the queue via the default exchange.
func (c *Client) Publish(ctx context.Context, queue string, body []byte) error {
	err := c.channel.PublishWithContext(ctx, "", queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publishing to %s: %w", queue, err)
	}
	return nil
}

// NotifyClose reports a dropped connection.
func (c *Client) NotifyClose() <-chan *amqp.Error {
	return c.conn.NotifyClose(make(chan *amqp.Error, 1))
}

func (c *Client) Close() {
	if err := c.conn.Close(); err != nil {
		c.logContext.WithFields(logrus.Fields{
			"error": err,
		}).Warn("closing broker connection")
	}
}

type delivery struct {
	d amqp.Delivery
}

func (w delivery) Body() []byte {
	return w.d.Body
}

func (w delivery) Ack() error {
	return w.d.Ack(false)
}

func (w delivery) Nack(requeue bool) error {
	return w.d.Nack(false, requeue)
}
