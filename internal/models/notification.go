package models

import "time"

const (
	NotifApproved   = "approved"
	NotifRejected   = "rejected"
	NotifInvitation = "invitation"
	NotifProposal   = "proposal_submitted"
	NotifAward      = "award"
)

// Notification is a fire-and-forget message shown to a user. The workflow
// writes them on key transitions and never reads them back.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	RelatedID *string   `json:"relatedId,omitempty"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}
