package models

import "time"

type (
	RequestStatus string // Lifecycle status of a purchase request
	RoundStatus   string // Sub-state of the current negotiation round
)

const (
	DraftRequest      RequestStatus = "draft"            // Being edited by its creator
	PendingRequest    RequestStatus = "pending_approval" // Submitted, waiting for an approver
	ActiveRequest     RequestStatus = "active"           // Approved, rounds in progress
	EvaluationRequest RequestStatus = "evaluation"       // Award selection pending sign-off
	AwardedRequest    RequestStatus = "awarded"          // Award approved, terminal
	CancelledRequest  RequestStatus = "cancelled"        // Withdrawn by the creator, terminal

	AcceptingProposals RoundStatus = "accepting_proposals"
	UnderReviewRound   RoundStatus = "under_review"
	AwardPending       RoundStatus = "award_pending"
)

// Request represents a purchase request posted by a creator.
type Request struct {
	ID               string        `json:"id"`
	RequestNumber    string        `json:"requestNumber"`
	CreatorID        string        `json:"creatorId"`
	EventType        string        `json:"eventType"`
	Title            string        `json:"title"`
	Description      string        `json:"description"`
	InternalBudget   *float64      `json:"internalBudget,omitempty"`
	Status           RequestStatus `json:"status"`
	RoundStatus      *RoundStatus  `json:"roundStatus,omitempty"`
	MaxRounds        int           `json:"maxRounds"`
	CurrentRound     int           `json:"currentRound"`
	RoundDeadline    *time.Time    `json:"roundDeadline,omitempty"`
	ApprovedBy       *string       `json:"approvedBy,omitempty"`
	ApprovedAt       *time.Time    `json:"approvedAt,omitempty"`
	ApprovalComments *string       `json:"approvalComments,omitempty"`
	CreatedAt        time.Time     `json:"createdAt"`
	UpdatedAt        time.Time     `json:"updatedAt"`
}

// RequestCreate represents the payload for creating a draft request.
type RequestCreate struct {
	EventType      string     `json:"eventType"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	InternalBudget *float64   `json:"internalBudget,omitempty"`
	MaxRounds      int        `json:"maxRounds"`
	RoundDeadline  *time.Time `json:"roundDeadline,omitempty"`
}

// RequestSubmit represents the payload for submitting a draft for approval.
type RequestSubmit struct {
	SupplierIDs []string `json:"supplierIds"`
}

// ApprovalDecision carries an approver's comments on approve/reject.
type ApprovalDecision struct {
	Comments string `json:"comments"`
}
