package kafka

import (
	"context"
	"errors"
	"fmt"

	"github.com/IBM/sarama"
)

// MessageHandler processes one consumed record. Returning an error leaves the
// offset unmarked so the record is redelivered; handlers are expected to
// deduplicate on redelivery.
type MessageHandler interface {
	Handle(ctx context.Context, msg *sarama.ConsumerMessage) error
}

// Consumer runs a consumer group over a fixed topic set.
type Consumer struct {
	group   sarama.ConsumerGroup
	handler MessageHandler
}

func NewConsumer(brokers []string, groupID string, cfg *sarama.Config, handler MessageHandler) (*Consumer, error) {
	if handler == nil {
		return nil, errors.New("kafka: message handler required")
	}
	if cfg == nil {
		cfg = sarama.NewConfig()
	}
	cfg.Version = sarama.V2_5_0_0
	group, err := sarama.NewConsumerGroup(brokers, groupID, cfg)
	if err != nil {
		return nil, fmt.Errorf("kafka: join group %s: %w", groupID, err)
	}
	return &Consumer{group: group, handler: handler}, nil
}

// Run consumes until the context is cancelled, rejoining the group after
// each rebalance.
func (c *Consumer) Run(ctx context.Context, topics []string) error {
	claims := claimRunner{handler: c.handler}
	for {
		if err := c.group.Consume(ctx, topics, claims); err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

func (c *Consumer) Close() error {
	return c.group.Close()
}

type claimRunner struct {
	handler MessageHandler
}

func (claimRunner) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (claimRunner) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (r claimRunner) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for msg := range claim.Messages() {
		if err := r.handler.Handle(sess.Context(), msg); err != nil {
			// Leave the offset unmarked; the record comes back on the
			// next session.
			continue
		}
		sess.MarkMessage(msg, "")
	}
	return nil
}
