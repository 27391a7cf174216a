package notifications

import (
	"context"
	"testing"
	"time"

	"brc/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishReviewRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	n := NewNotifier(rdb)

	received := make(chan ReviewEvent, 1)
	require.NoError(t, n.Subscribe(context.Background(), func(ev ReviewEvent) {
		received <- ev
	}))
	// Give the subscription a moment to register before publishing.
	time.Sleep(100 * time.Millisecond)

	ev := ReviewEvent{
		BotID:    models.Snowflake(519850436899897346),
		Action:   "APPROVE",
		State:    "APPROVED",
		Reviewer: models.Snowflake(563808552288780322),
		At:       time.Now().UTC(),
	}
	require.NoError(t, n.PublishReview(context.Background(), ev))

	select {
	case got := <-received:
		assert.Equal(t, ev.BotID, got.BotID)
		assert.Equal(t, "APPROVE", got.Action)
		assert.Equal(t, "APPROVED", got.State)
		assert.Equal(t, ev.Reviewer, got.Reviewer)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for review event")
	}
}

func TestPublishReviewNilSafe(t *testing.T) {
	var n *Notifier
	assert.NoError(t, n.PublishReview(context.Background(), ReviewEvent{}))
	assert.NoError(t, NewNotifier(nil).PublishReview(context.Background(), ReviewEvent{}))
}
