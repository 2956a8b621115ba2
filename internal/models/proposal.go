package models

import "time"

type ProposalStatus string // Status of a supplier's proposal within a round

const (
	DraftProposal       ProposalStatus = "draft"
	SubmittedProposal   ProposalStatus = "submitted"
	UnderReviewProposal ProposalStatus = "under_review"
	AdjustmentProposal  ProposalStatus = "adjustment_requested"
	FinalistProposal    ProposalStatus = "finalist"
	AwardedProposal     ProposalStatus = "awarded"
	NotSelectedProposal ProposalStatus = "not_selected"
)

// Proposal represents a supplier's priced response for one round of a request.
type Proposal struct {
	ID             string         `json:"id"`
	RequestID      string         `json:"requestId"`
	SupplierID     string         `json:"supplierId"`
	RoundNumber    int            `json:"roundNumber"`
	Subtotal       float64        `json:"subtotal"`
	FeeAmount      float64        `json:"feeAmount"`
	TotalAmount    float64        `json:"totalAmount"`
	ContextualInfo *string        `json:"contextualInfo,omitempty"`
	Status         ProposalStatus `json:"status"`
	SubmittedAt    *time.Time     `json:"submittedAt,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
	Items          []ProposalItem `json:"items,omitempty"`
}

// ProposalItem is a priced line item belonging to a proposal.
type ProposalItem struct {
	ID              string    `json:"id"`
	ProposalID      string    `json:"proposalId"`
	ItemName        string    `json:"itemName"`
	Description     *string   `json:"description,omitempty"`
	Quantity        float64   `json:"quantity"`
	UnitPrice       float64   `json:"unitPrice"`
	TotalPrice      float64   `json:"totalPrice"`
	NeedsAdjustment bool      `json:"needsAdjustment"`
	CreatedAt       time.Time `json:"createdAt"`
}

// ProposalItemInput is one line item as sent by the supplier. Totals are
// recomputed server-side and never trusted from the client.
type ProposalItemInput struct {
	ItemName    string  `json:"itemName"`
	Description *string `json:"description,omitempty"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
}

// ProposalDraft represents the payload for saving or submitting a proposal.
type ProposalDraft struct {
	ContextualInfo *string             `json:"contextualInfo,omitempty"`
	Items          []ProposalItemInput `json:"items"`
}

// ProposalAttachment records a file stored alongside a proposal.
type ProposalAttachment struct {
	ID             string    `json:"id"`
	ProposalID     string    `json:"proposalId"`
	ProposalItemID *string   `json:"proposalItemId,omitempty"`
	FileName       string    `json:"fileName"`
	FilePath       string    `json:"filePath"`
	FileSize       *int64    `json:"fileSize,omitempty"`
	MimeType       *string   `json:"mimeType,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// AttachmentUpload is one file in an attachment upload payload, content
// carried base64-encoded.
type AttachmentUpload struct {
	FileName      string  `json:"fileName"`
	MimeType      *string `json:"mimeType,omitempty"`
	ContentBase64 string  `json:"contentBase64"`
}

// AttachmentResult reports the per-file outcome of an upload batch. Failed
// uploads are skipped, not fatal.
type AttachmentResult struct {
	FileName string `json:"fileName"`
	Uploaded bool   `json:"uploaded"`
	Reason   string `json:"reason,omitempty"`
}
