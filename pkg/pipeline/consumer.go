package pipeline

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
)

// ErrConnectionLost is returned by Run when the broker stops delivering.
// Reconnection is the deployment's restart policy, not handled in-process.
var ErrConnectionLost = errors.New("broker connection lost")

// Decision is the acknowledgement outcome for one delivery.
type Decision int

const (
	DecisionAck Decision = iota
	DecisionDiscard
	DecisionRequeue
)

func (d Decision) String() string {
	switch d {
	case DecisionAck:
		return "ack"
	case DecisionDiscard:
		return "nack-discard"
	case DecisionRequeue:
		return "nack-requeue"
	}
	return "unknown"
}

type Consumer struct {
	repo       Repo
	logContext logrus.FieldLogger
}

func NewConsumer(repo Repo, logContext logrus.FieldLogger) *Consumer {
	return &Consumer{
		repo:       repo,
		logContext: logContext,
	}
}

// Run consumes deliveries one at a time until ctx is cancelled or the
// channel closes. The in-flight delivery is always settled before Run
// returns, so cancellation drains rather than cuts off.
func (c *Consumer) Run(ctx context.Context, deliveries <-chan Delivery) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case delivery, ok := <-deliveries:
			if !ok {
				return ErrConnectionLost
			}
			c.Handle(ctx, delivery)
		}
	}
}

// Handle settles a single delivery with the decision from Decide.
func (c *Consumer) Handle(ctx context.Context, delivery Delivery) Decision {
	decision := c.Decide(ctx, delivery.Body())

	var err error
	switch decision {
	case DecisionAck:
		err = delivery.Ack()
	case DecisionDiscard:
		err = delivery.Nack(false)
	case DecisionRequeue:
		err = delivery.Nack(true)
	}

	if err != nil {
		c.logContext.WithFields(logrus.Fields{
			"error":    err,
			"decision": decision.String(),
		}).Error("settling delivery")
	}
	return decision
}

// Decide runs decode -> process -> insert and maps the outcome to an
// acknowledgement decision. Decode failures are poison messages and are
// discarded; store failures are transient and requeued.
func (c *Consumer) Decide(ctx context.Context, body []byte) Decision {
	event, err := Decode(body)
	if err != nil {
		c.logContext.WithFields(logrus.Fields{
			"error": err,
		}).Error("discarding undecodable message")
		return DecisionDiscard
	}

	record := Process(event)

	id, err := c.repo.Insert(ctx, record)
	if err != nil {
		c.logContext.WithFields(logrus.Fields{
			"error": err,
		}).Error("store insert failed, requeueing")
		return DecisionRequeue
	}

	c.logContext.WithFields(logrus.Fields{
		"id": id,
	}).Info("record saved")
	return DecisionAck
}
