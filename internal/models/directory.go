package models

import "time"

type UserRole string // Role carried by a profile and by the session claim

const (
	RoleCreator  UserRole = "request_creator"
	RoleApprover UserRole = "procurement_approver"
	RoleSupplier UserRole = "supplier"
	RoleAdmin    UserRole = "admin"
)

// UserProfile is the stored profile for an authenticated principal.
type UserProfile struct {
	ID       string   `json:"id"`
	UserID   string   `json:"userId"`
	Role     UserRole `json:"role"`
	FullName string   `json:"fullName"`
	Email    string   `json:"email"`
	Phone    *string  `json:"phone,omitempty"`
	Area     *string  `json:"area,omitempty"`
	IsActive bool     `json:"isActive"`
}

// Supplier is a vendor eligible for invitations.
type Supplier struct {
	ID                    string  `json:"id"`
	Name                  string  `json:"name"`
	ContactName           string  `json:"contactName"`
	ContactEmail          string  `json:"contactEmail"`
	ContactPhone          *string `json:"contactPhone,omitempty"`
	ContractFeePercentage float64 `json:"contractFeePercentage"`
	IsActive              bool    `json:"isActive"`
	TotalInvitations      int     `json:"totalInvitations"`
	TotalAwards           int     `json:"totalAwards"`
}

// Invitation grants a supplier eligibility to bid on a request.
// Immutable after creation except the notified_at stamp.
type Invitation struct {
	ID         string     `json:"id"`
	RequestID  string     `json:"requestId"`
	SupplierID string     `json:"supplierId"`
	InvitedAt  time.Time  `json:"invitedAt"`
	NotifiedAt *time.Time `json:"notifiedAt,omitempty"`
}
