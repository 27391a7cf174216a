// Package review implements the review dispatcher: it validates a requested
// state transition against the stored submission state, applies it exactly
// once, and fans the outcome out to every trusted list over its webhook,
// tolerating partial delivery failure without corrupting state or audit.
package review

import (
	"fmt"

	"brc/internal/models"
)

// actionSpec is the static transition data an action carries: which source
// states it accepts, the state it produces, the rejection message for an
// illegal transition, and which of a list's callback URLs receives it.
type actionSpec struct {
	allowedSources []models.State
	newState       models.State
	rejection      string
	callback       func(*models.List) string
}

var actionTable = map[models.Action]actionSpec{
	models.ActionClaim: {
		allowedSources: []models.State{models.StatePending},
		newState:       models.StateUnderReview,
		rejection:      "This bot cannot be claimed as it is not pending review? Maybe someone is testing it right now?",
		callback:       func(l *models.List) string { return l.ClaimBotAPI },
	},
	models.ActionUnclaim: {
		allowedSources: []models.State{models.StateUnderReview},
		newState:       models.StatePending,
		rejection:      "This bot cannot be unclaimed as it is not under review?",
		callback:       func(l *models.List) string { return l.UnclaimBotAPI },
	},
	models.ActionApprove: {
		allowedSources: []models.State{models.StateUnderReview},
		newState:       models.StateApproved,
		rejection:      "This bot cannot be approved as it is not under review?",
		callback:       func(l *models.List) string { return l.ApproveBotAPI },
	},
	models.ActionDeny: {
		allowedSources: []models.State{models.StateUnderReview},
		newState:       models.StateDenied,
		rejection:      "This bot cannot be denied as it is not under review?",
		callback:       func(l *models.List) string { return l.DenyBotAPI },
	},
}

// specFor resolves the transition data for an action. The action set is
// closed; anything else is a programming error on the caller's side.
func specFor(a models.Action) (actionSpec, error) {
	spec, ok := actionTable[a]
	if !ok {
		return actionSpec{}, fmt.Errorf("unknown review action %d", int(a))
	}
	return spec, nil
}
