package models

import (
	"fmt"
	"strings"
	"time"
)

// Action is a review transition kind.
type Action int

// Review actions, in the wire order of the original queue.
const (
	ActionClaim Action = iota
	ActionUnclaim
	ActionApprove
	ActionDeny
)

// String returns the canonical name of the action.
func (a Action) String() string {
	switch a {
	case ActionClaim:
		return "CLAIM"
	case ActionUnclaim:
		return "UNCLAIM"
	case ActionApprove:
		return "APPROVE"
	case ActionDeny:
		return "DENY"
	default:
		return "UNKNOWN"
	}
}

// ParseAction resolves an action from its canonical name, case-insensitively.
func ParseAction(s string) (Action, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CLAIM":
		return ActionClaim, nil
	case "UNCLAIM":
		return ActionUnclaim, nil
	case "APPROVE":
		return ActionApprove, nil
	case "DENY":
		return ActionDeny, nil
	default:
		return 0, fmt.Errorf("unknown action %q", s)
	}
}

// ReviewAction is one audit entry per accepted state transition. Rows are
// append-only; delivery outcomes never mutate them.
type ReviewAction struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	BotID      Snowflake `gorm:"not null;index" json:"bot_id"`
	Action     Action    `gorm:"not null" json:"action"`
	Reason     string    `gorm:"type:text" json:"reason"`
	Reviewer   Snowflake `gorm:"not null" json:"reviewer"`
	ListSource *string   `gorm:"type:uuid" json:"list_source,omitempty"`
	ActionTime time.Time `gorm:"autoCreateTime;index" json:"action_time"`
}

// TableName overrides the gorm table name.
func (ReviewAction) TableName() string {
	return "bot_action"
}
