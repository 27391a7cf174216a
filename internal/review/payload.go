package review

import (
	"time"

	"brc/internal/models"
)

// buildPayload produces the wire payload for one list. Exactly two shapes
// exist: the full submission plus action metadata for the origin list (or
// when the submitter opted into cross-adding), and a minimal redacted stub
// for everyone else so free-text fields never leak to lists the submitter
// opted out of syndicating to.
//
// All snowflakes are rendered as decimal strings: list clients include
// JavaScript consumers whose number type loses precision above 2^53-1.
func buildPayload(sub *models.Submission, action models.Action, reason string, reviewer models.Snowflake, full bool) map[string]any {
	if !full {
		return map[string]any{
			"bot_id":   sub.BotID.String(),
			"can_add":  false,
			"reviewer": reviewer.String(),
			"reason":   reason,
		}
	}

	return map[string]any{
		"bot_id":           sub.BotID.String(),
		"owner":            sub.Owner.String(),
		"extra_owners":     sub.ExtraOwners.Strings(),
		"username":         sub.Username,
		"description":      sub.Description,
		"long_description": sub.LongDescription,
		"website":          sub.Website,
		"invite":           sub.Invite,
		"tags":             []string(sub.Tags),
		"nsfw":             sub.NSFW,
		"prefix":           sub.Prefix,
		"added_at":         sub.AddedAt.UTC().Format(time.RFC3339),
		"list_source":      sub.ListSourceID(),
		"reason":           reason,
		"reviewer":         reviewer.String(),
		"limited":          false,
	}
}

// payloadIsFull decides which shape a list receives: the origin list always
// gets the full payload; everyone else only when cross-add is enabled.
func payloadIsFull(sub *models.Submission, list *models.List) bool {
	return sub.ListSourceID() == list.ID || sub.CrossAdd
}
