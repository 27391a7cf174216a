package cache

import (
	"context"
	"fmt"
	"time"

	"brc/internal/models"
)

const (
	SubmissionKeyPrefix = "bot:%d"
	ListKeyPrefix       = "list:%s"
	ListIndexKey        = "lists:all"
)

const (
	SubmissionTTL = 2 * time.Minute
	ListTTL       = 10 * time.Minute
)

func SubmissionKey(botID models.Snowflake) string {
	return fmt.Sprintf(SubmissionKeyPrefix, int64(botID))
}

func ListKey(id string) string {
	return fmt.Sprintf(ListKeyPrefix, id)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateSubmission(ctx context.Context, botID models.Snowflake) {
	Invalidate(ctx, SubmissionKey(botID))
}

func InvalidateList(ctx context.Context, id string) {
	Invalidate(ctx, ListKey(id))
	Invalidate(ctx, ListIndexKey)
}
