package cache

import (
	"context"
	"errors"
	"testing"

	"brc/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { SetClient(nil) })
	return mr
}

func TestAside(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	fetches := 0
	fetch := func(dest *models.Submission) func() error {
		return func() error {
			fetches++
			*dest = models.Submission{BotID: 519850436899897346, Username: "Fates List"}
			return nil
		}
	}

	var first models.Submission
	key := SubmissionKey(519850436899897346)
	require.NoError(t, Aside(ctx, key, &first, SubmissionTTL, fetch(&first)))
	assert.Equal(t, 1, fetches)
	assert.Equal(t, "Fates List", first.Username)

	// Second read is served from the cache.
	var second models.Submission
	require.NoError(t, Aside(ctx, key, &second, SubmissionTTL, fetch(&second)))
	assert.Equal(t, 1, fetches)
	assert.Equal(t, first.BotID, second.BotID)
}

func TestAsideFetchError(t *testing.T) {
	setupMiniredis(t)

	var out models.Submission
	err := Aside(context.Background(), "missing", &out, SubmissionTTL, func() error {
		return errors.New("db down")
	})
	assert.Error(t, err)
}

func TestAsideWithoutRedis(t *testing.T) {
	SetClient(nil)

	fetches := 0
	var out models.Submission
	require.NoError(t, Aside(context.Background(), "k", &out, SubmissionTTL, func() error {
		fetches++
		out = models.Submission{BotID: 1}
		return nil
	}))
	assert.Equal(t, 1, fetches)
	assert.Equal(t, models.Snowflake(1), out.BotID)
}

func TestInvalidateSubmission(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	key := SubmissionKey(42)
	require.NoError(t, SetJSON(ctx, key, models.Submission{BotID: 42}, SubmissionTTL))
	require.True(t, mr.Exists(key))

	InvalidateSubmission(ctx, 42)
	assert.False(t, mr.Exists(key))
}

func TestInvalidateListAlsoDropsIndex(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, ListKey("id-1"), models.List{ID: "id-1"}, ListTTL))
	require.NoError(t, SetJSON(ctx, ListIndexKey, []models.PublicList{}, ListTTL))

	InvalidateList(ctx, "id-1")
	assert.False(t, mr.Exists(ListKey("id-1")))
	assert.False(t, mr.Exists(ListIndexKey))
}
