package models

import (
	"time"
)

// ListState classifies a list's eligibility to participate in the workflow.
type ListState int

// List trust states. Only PendingAPISupport and Supported lists receive
// webhooks or may authenticate inbound requests.
const (
	ListStatePendingAPISupport ListState = iota
	ListStateSupported
	ListStateDefunct
	ListStateBlacklisted
	ListStateUnconfirmedEnrollment
)

// String returns the canonical name of the list state.
func (s ListState) String() string {
	switch s {
	case ListStatePendingAPISupport:
		return "PENDING_API_SUPPORT"
	case ListStateSupported:
		return "SUPPORTED"
	case ListStateDefunct:
		return "DEFUNCT"
	case ListStateBlacklisted:
		return "BLACKLISTED"
	case ListStateUnconfirmedEnrollment:
		return "UNCONFIRMED_ENROLLMENT"
	default:
		return "UNKNOWN"
	}
}

// Trusted reports whether the list is eligible to receive notifications
// and to authenticate inbound requests.
func (s ListState) Trusted() bool {
	return s == ListStatePendingAPISupport || s == ListStateSupported
}

// List is an external bot catalog enrolled in the review workflow.
type List struct {
	ID            string    `gorm:"primaryKey;type:uuid" json:"id"`
	Name          string    `gorm:"not null" json:"name"`
	Description   string    `gorm:"type:text" json:"description,omitempty"`
	Domain        string    `json:"domain,omitempty"`
	Icon          string    `json:"icon,omitempty"`
	State         ListState `gorm:"not null;default:4" json:"state"`
	ClaimBotAPI   string    `gorm:"not null" json:"-"`
	UnclaimBotAPI string    `gorm:"not null" json:"-"`
	ApproveBotAPI string    `gorm:"not null" json:"-"`
	DenyBotAPI    string    `gorm:"not null" json:"-"`
	SecretKey     string    `gorm:"not null" json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName overrides the gorm table name.
func (List) TableName() string {
	return "bot_list"
}

// Label returns the human-readable identifier used to key per-list
// delivery outcomes: domain, else name, else id.
func (l *List) Label() string {
	if l.Domain != "" {
		return l.Domain
	}
	if l.Name != "" {
		return l.Name
	}
	return l.ID
}

// PublicList is the projection of a list exposed on the public catalog
// endpoints. It never carries callback URLs or the secret.
type PublicList struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Domain      string    `json:"domain,omitempty"`
	Icon        string    `json:"icon,omitempty"`
	State       ListState `json:"state"`
}

// Public returns the public projection of the list.
func (l *List) Public() PublicList {
	return PublicList{
		ID:          l.ID,
		Name:        l.Name,
		Description: l.Description,
		Domain:      l.Domain,
		Icon:        l.Icon,
		State:       l.State,
	}
}
