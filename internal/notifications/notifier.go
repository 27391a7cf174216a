// Package notifications publishes accepted review events into Redis
// channels for out-of-process consumers (the live review panel).
package notifications

import (
	"context"
	"encoding/json"
	"time"

	"brc/internal/models"

	"github.com/redis/go-redis/v9"
)

// ReviewEventsChannel is the pub/sub channel carrying accepted transitions.
const ReviewEventsChannel = "reviews:events"

// ReviewEvent describes one accepted state transition.
type ReviewEvent struct {
	BotID    models.Snowflake `json:"bot_id"`
	Action   string           `json:"action"`
	State    string           `json:"state"`
	Reviewer models.Snowflake `json:"reviewer"`
	Resend   bool             `json:"resend"`
	At       time.Time        `json:"at"`
}

// Notifier provides helpers to publish review events into Redis channels.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier returns a Notifier backed by the given Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishReview sends an accepted review event to the events channel.
// A nil Redis client makes this a no-op.
func (n *Notifier) PublishReview(ctx context.Context, ev ReviewEvent) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return n.rdb.Publish(ctx, ReviewEventsChannel, payload).Err()
}

// Subscribe subscribes to the review events channel and invokes onEvent for
// each message. Intended for panel bridges and tests.
func (n *Notifier) Subscribe(ctx context.Context, onEvent func(ev ReviewEvent)) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	sub := n.rdb.Subscribe(ctx, ReviewEventsChannel)
	ch := sub.Channel()

	go func() {
		for msg := range ch {
			var ev ReviewEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				continue
			}
			onEvent(ev)
		}
	}()

	return nil
}
