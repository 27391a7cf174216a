package review

import (
	"encoding/json"
	"testing"

	"brc/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPayloadFull(t *testing.T) {
	sub := testSubmission(models.StateUnderReview)
	payload := buildPayload(sub, models.ActionApprove, "Looks good", models.Snowflake(563808552288780322), true)

	assert.Equal(t, "519850436899897346", payload["bot_id"])
	assert.Equal(t, "563808552288780322", payload["owner"])
	assert.Equal(t, []string{"510065483693817867"}, payload["extra_owners"])
	assert.Equal(t, "563808552288780322", payload["reviewer"])
	assert.Equal(t, "Looks good", payload["reason"])
	assert.Equal(t, *originID(), payload["list_source"])
	assert.Equal(t, false, payload["limited"])

	// IDs must survive a JSON round trip without float mangling.
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "519850436899897346", decoded["bot_id"])
}

func TestBuildPayloadRedacted(t *testing.T) {
	sub := testSubmission(models.StateUnderReview)
	sub.LongDescription = "secret marketing copy"
	payload := buildPayload(sub, models.ActionDeny, "Not eligible", models.Snowflake(1), false)

	assert.Equal(t, map[string]any{
		"bot_id":   "519850436899897346",
		"can_add":  false,
		"reviewer": "1",
		"reason":   "Not eligible",
	}, payload)
}

func TestPayloadIsFull(t *testing.T) {
	origin := &models.List{ID: *originID()}
	other := &models.List{ID: "0b7f1a33-9c1f-4f9e-bb57-1f2ad3b0e102"}

	crossAdd := testSubmission(models.StatePending)
	crossAdd.CrossAdd = true
	assert.True(t, payloadIsFull(crossAdd, origin))
	assert.True(t, payloadIsFull(crossAdd, other))

	private := testSubmission(models.StatePending)
	private.CrossAdd = false
	assert.True(t, payloadIsFull(private, origin), "origin always gets the full payload")
	assert.False(t, payloadIsFull(private, other))

	// No origin recorded: only cross-add grants the full payload.
	orphan := testSubmission(models.StatePending)
	orphan.ListSource = nil
	orphan.CrossAdd = false
	assert.False(t, payloadIsFull(orphan, other))
}
