package models

import "time"

type FeedbackAction string // Creator's verdict on a line item between rounds

const (
	AcceptItem FeedbackAction = "accept"
	ModifyItem FeedbackAction = "modify"
	DeleteItem FeedbackAction = "delete"
)

// RoundItemFeedback is a creator's note on one proposal item, addressed to the
// supplier for the next round.
type RoundItemFeedback struct {
	ID             string         `json:"id"`
	ProposalID     string         `json:"proposalId"`
	ProposalItemID string         `json:"proposalItemId"`
	RoundNumber    int            `json:"roundNumber"`
	Action         FeedbackAction `json:"action"`
	FeedbackText   string         `json:"feedbackText"`
	SuggestedPrice *float64       `json:"suggestedPrice,omitempty"`
	CreatedBy      string         `json:"createdBy"`
	CreatedAt      time.Time      `json:"createdAt"`
}

// RoundSuggestion is a new line item the creator wants quoted in the next round.
type RoundSuggestion struct {
	ID                string    `json:"id"`
	RequestID         string    `json:"requestId"`
	RoundNumber       int       `json:"roundNumber"`
	ItemName          string    `json:"itemName"`
	Description       string    `json:"description"`
	SuggestedQuantity float64   `json:"suggestedQuantity"`
	Notes             *string   `json:"notes,omitempty"`
	CreatedBy         string    `json:"createdBy"`
	CreatedAt         time.Time `json:"createdAt"`
}

// ItemFeedbackInput is the per-item feedback in an advance-round payload.
// Items marked accept are not persisted.
type ItemFeedbackInput struct {
	ProposalItemID string         `json:"proposalItemId"`
	Action         FeedbackAction `json:"action"`
	FeedbackText   string         `json:"feedbackText"`
	SuggestedPrice *float64       `json:"suggestedPrice,omitempty"`
}

// SuggestionInput is one new-item suggestion in an advance-round payload.
type SuggestionInput struct {
	ItemName          string  `json:"itemName"`
	Description       string  `json:"description"`
	SuggestedQuantity float64 `json:"suggestedQuantity"`
	Notes             *string `json:"notes,omitempty"`
}

// AdvanceRound is the payload closing the current round and opening the next.
type AdvanceRound struct {
	Feedback    []ItemFeedbackInput `json:"feedback"`
	Suggestions []SuggestionInput   `json:"suggestions"`
}

// RoundFeedbackView is what a supplier sees for a round: feedback on their own
// items plus the request-wide new-item suggestions.
type RoundFeedbackView struct {
	RoundNumber int                 `json:"roundNumber"`
	Feedback    []RoundItemFeedback `json:"feedback"`
	Suggestions []RoundSuggestion   `json:"suggestions"`
}
