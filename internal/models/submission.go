// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// State is the review lifecycle state of a submission.
type State int

// Review lifecycle states.
const (
	StatePending State = iota
	StateUnderReview
	StateApproved
	StateDenied
)

// String returns the canonical name of the state.
func (s State) String() string {
	switch s {
	case StatePending:
		return "PENDING"
	case StateUnderReview:
		return "UNDER_REVIEW"
	case StateApproved:
		return "APPROVED"
	case StateDenied:
		return "DENIED"
	default:
		return "UNKNOWN"
	}
}

// Terminal reports whether no further review-driven transition leaves the state.
func (s State) Terminal() bool {
	return s == StateApproved || s == StateDenied
}

// Submission represents a bot queued for review. One row per tracked bot,
// keyed by the bot's platform snowflake.
type Submission struct {
	BotID           Snowflake     `gorm:"primaryKey;autoIncrement:false" json:"bot_id"`
	Username        string        `json:"username"`
	State           State         `gorm:"not null;default:0;index" json:"state"`
	Owner           Snowflake     `gorm:"not null" json:"owner"`
	ExtraOwners     SnowflakeList `gorm:"type:jsonb" json:"extra_owners"`
	ListSource      *string       `gorm:"type:uuid;index" json:"list_source"`
	CrossAdd        bool          `gorm:"not null;default:true" json:"cross_add"`
	Reviewer        *Snowflake    `json:"reviewer,omitempty"`
	Description     string        `gorm:"type:text" json:"description"`
	LongDescription string        `gorm:"type:text" json:"long_description"`
	Website         string        `json:"website,omitempty"`
	Invite          string        `json:"invite,omitempty"`
	Support         string        `json:"support,omitempty"`
	Donate          string        `json:"donate,omitempty"`
	Library         string        `json:"library,omitempty"`
	Banner          string        `json:"banner,omitempty"`
	Prefix          string        `json:"prefix,omitempty"`
	Tags            StringList    `gorm:"type:jsonb" json:"tags"`
	NSFW            bool          `gorm:"not null;default:false" json:"nsfw"`
	ReviewNote      string        `gorm:"type:text" json:"review_note,omitempty"`
	AddedAt         time.Time     `gorm:"autoCreateTime" json:"added_at"`
}

// TableName overrides the gorm table name.
func (Submission) TableName() string {
	return "bot_queue"
}

// ListSourceID returns the origin list id or the empty string.
func (s *Submission) ListSourceID() string {
	if s.ListSource == nil {
		return ""
	}
	return *s.ListSource
}
