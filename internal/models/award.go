package models

import "time"

type AwardSelectionStatus string // Status of the creator's proposed winner

const (
	PendingSelection  AwardSelectionStatus = "pending_approval"
	ApprovedSelection AwardSelectionStatus = "approved"
	RejectedSelection AwardSelectionStatus = "rejected"
)

// AwardSelection is the creator's proposed winning proposal, one per request,
// awaiting approver sign-off.
type AwardSelection struct {
	ID                   string               `json:"id"`
	RequestID            string               `json:"requestId"`
	SelectedProposalID   string               `json:"selectedProposalId"`
	SelectedSupplierID   string               `json:"selectedSupplierId"`
	SelectedAmount       float64              `json:"selectedAmount"`
	IsLowestPrice        bool                 `json:"isLowestPrice"`
	CreatorJustification *string              `json:"creatorJustification,omitempty"`
	SelectedBy           string               `json:"selectedBy"`
	SelectedAt           time.Time            `json:"selectedAt"`
	Status               AwardSelectionStatus `json:"status"`
	ApprovedBy           *string              `json:"approvedBy,omitempty"`
	ApprovedAt           *time.Time           `json:"approvedAt,omitempty"`
	ApprovalNotes        *string              `json:"approvalNotes,omitempty"`
}

// Award is the immutable record created when a selection is approved.
type Award struct {
	ID                string    `json:"id"`
	RequestID         string    `json:"requestId"`
	WinningProposalID string    `json:"winningProposalId"`
	WinningSupplierID string    `json:"winningSupplierId"`
	AwardedAmount     float64   `json:"awardedAmount"`
	IsLowestPrice     bool      `json:"isLowestPrice"`
	Justification     *string   `json:"justification,omitempty"`
	AwardedBy         string    `json:"awardedBy"`
	AwardedAt         time.Time `json:"awardedAt"`
}

// AwardSelect is the creator's payload proposing a winner.
type AwardSelect struct {
	ProposalID    string `json:"proposalId"`
	Justification string `json:"justification"`
}

// AwardDecision carries an approver's notes on approve/reject of a selection.
type AwardDecision struct {
	Notes string `json:"notes"`
}
