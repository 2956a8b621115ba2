package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/procurehub/procurement-service/internal/auth"
	"github.com/procurehub/procurement-service/internal/models"
	"github.com/procurehub/procurement-service/internal/repository"
	"github.com/procurehub/procurement-service/internal/utils"
)

// RequestService owns the purchase request lifecycle from draft through
// approval, plus supplier invitations.
type RequestService struct {
	Repo          repository.RequestRepository
	Directory     repository.DirectoryRepository
	Notifications repository.NotificationRepository
	Logger        *log.Logger
}

// NewRequestService creates a new RequestService.
func NewRequestService(repo repository.RequestRepository, directory repository.DirectoryRepository, notifications repository.NotificationRepository, logger *log.Logger) *RequestService {
	return &RequestService{Repo: repo, Directory: directory, Notifications: notifications, Logger: logger}
}

// CreateRequest creates a draft request for the calling creator.
func (s *RequestService) CreateRequest(ctx context.Context, identity *auth.Identity, req models.RequestCreate) (*models.Request, error) {
	if !utils.HasRole(identity.Role(), models.RoleCreator, models.RoleAdmin) {
		return nil, models.NewAuthorizationError("only request creators can create requests")
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, models.NewValidationError("title is required")
	}
	return s.Repo.CreateRequest(ctx, identity.Profile.ID, req)
}

// GetUserRequests returns the caller's own requests.
func (s *RequestService) GetUserRequests(ctx context.Context, identity *auth.Identity, limitStr, offsetStr string) ([]models.Request, error) {
	if !utils.HasRole(identity.Role(), models.RoleCreator, models.RoleAdmin) {
		return nil, models.NewAuthorizationError("only request creators can list their requests")
	}
	limit, offset, err := utils.ParseLimitOffset(limitStr, offsetStr)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	return s.Repo.GetUserRequests(ctx, identity.Profile.ID, limit, offset)
}

// ListRequests returns requests filtered by status and event type, for
// approver dashboards.
func (s *RequestService) ListRequests(ctx context.Context, identity *auth.Identity, limitStr, offsetStr string, statuses, eventTypes []string) ([]models.Request, error) {
	if !utils.HasRole(identity.Role(), models.RoleApprover, models.RoleAdmin) {
		return nil, models.NewAuthorizationError("only approvers can list all requests")
	}
	limit, offset, err := utils.ParseLimitOffset(limitStr, offsetStr)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	allowed := map[models.RequestStatus]bool{
		models.DraftRequest:      true,
		models.PendingRequest:    true,
		models.ActiveRequest:     true,
		models.EvaluationRequest: true,
		models.AwardedRequest:    true,
		models.CancelledRequest:  true,
	}
	for _, status := range statuses {
		if !allowed[models.RequestStatus(status)] {
			return nil, models.NewValidationError(fmt.Sprintf("unsupported status filter: %s", status))
		}
	}
	return s.Repo.ListRequests(ctx, limit, offset, statuses, eventTypes)
}

// GetRequestStatus returns a request's status to anyone allowed to see it.
func (s *RequestService) GetRequestStatus(ctx context.Context, identity *auth.Identity, requestID string) (models.RequestStatus, error) {
	request, err := s.Repo.GetRequestByID(ctx, requestID)
	if err != nil {
		return "", err
	}

	switch identity.Role() {
	case models.RoleApprover, models.RoleAdmin:
	case models.RoleCreator:
		if request.CreatorID != identity.Profile.ID {
			return "", models.NewAuthorizationError("you do not own this request")
		}
	case models.RoleSupplier:
		supplier, err := s.Directory.GetSupplierByEmail(ctx, identity.Profile.Email)
		if err != nil {
			return "", err
		}
		invited, err := s.Repo.HasInvitation(ctx, requestID, supplier.ID)
		if err != nil {
			return "", err
		}
		if !invited {
			return "", models.NewAuthorizationError("you were not invited to this request")
		}
	}
	return request.Status, nil
}

// SubmitRequest validates a draft, invites the selected suppliers and sends
// the request for approval. Resubmitting after a rejection keeps the existing
// invitations and only adds suppliers that were not invited before.
func (s *RequestService) SubmitRequest(ctx context.Context, identity *auth.Identity, requestID string, submit models.RequestSubmit) (*models.Request, error) {
	if !utils.HasRole(identity.Role(), models.RoleCreator, models.RoleAdmin) {
		return nil, models.NewAuthorizationError("only request creators can submit requests")
	}

	request, err := s.Repo.GetRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if identity.Role() != models.RoleAdmin && request.CreatorID != identity.Profile.ID {
		return nil, models.NewAuthorizationError("you do not own this request")
	}
	if request.Status != models.DraftRequest {
		return nil, models.NewValidationError("only draft requests can be submitted")
	}

	if strings.TrimSpace(request.Title) == "" || strings.TrimSpace(request.Description) == "" || strings.TrimSpace(request.EventType) == "" {
		return nil, models.NewValidationError("title, description and event type are required before submitting")
	}

	supplierIDs := utils.DedupIDs(submit.SupplierIDs)
	if len(supplierIDs) == 0 {
		return nil, models.NewValidationError("select at least one supplier to invite")
	}
	count, err := s.Directory.CountActiveSuppliers(ctx, supplierIDs)
	if err != nil {
		return nil, err
	}
	if count != len(supplierIDs) {
		return nil, models.NewValidationError("one or more selected suppliers do not exist or are inactive")
	}

	existing, err := s.Repo.GetInvitations(ctx, requestID)
	if err != nil {
		return nil, err
	}
	invited := make(map[string]bool, len(existing))
	for _, inv := range existing {
		invited[inv.SupplierID] = true
	}
	var newSuppliers []string
	for _, id := range supplierIDs {
		if !invited[id] {
			newSuppliers = append(newSuppliers, id)
		}
	}
	if len(newSuppliers) > 0 {
		if _, err = s.Repo.CreateInvitations(ctx, requestID, newSuppliers); err != nil {
			return nil, err
		}
	}
	return s.Repo.SubmitRequest(ctx, requestID)
}

// ApproveRequest activates a pending request. The status update is the
// authoritative transition; notifications and invitation stamps are
// best-effort side effects and never roll it back.
func (s *RequestService) ApproveRequest(ctx context.Context, identity *auth.Identity, requestID, comments string) (*models.Request, error) {
	if !utils.HasRole(identity.Role(), models.RoleApprover, models.RoleAdmin) {
		return nil, models.NewAuthorizationError("only approvers can approve requests")
	}

	request, err := s.Repo.GetRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.Status != models.PendingRequest {
		return nil, models.NewValidationError("only requests pending approval can be approved")
	}

	approved, err := s.Repo.ApproveRequest(ctx, requestID, identity.Profile.ID, comments)
	if err != nil {
		return nil, err
	}

	s.notifyApproval(ctx, approved)
	return approved, nil
}

func (s *RequestService) notifyApproval(ctx context.Context, request *models.Request) {
	_, err := s.Notifications.Create(ctx, request.CreatorID, "Request approved",
		fmt.Sprintf("Your request %q has been approved", request.Title),
		models.NotifApproved, &request.ID)
	if err != nil {
		s.Logger.Printf("failed to notify creator of approval for request %s: %v", request.ID, err)
	}

	invitations, err := s.Repo.GetInvitations(ctx, request.ID)
	if err != nil {
		s.Logger.Printf("failed to load invitations for request %s: %v", request.ID, err)
		return
	}
	for _, inv := range invitations {
		_, err = s.Notifications.Create(ctx, inv.SupplierID, "New invitation",
			fmt.Sprintf("You have been invited to bid on %q", request.Title),
			models.NotifInvitation, &request.ID)
		if err != nil {
			s.Logger.Printf("failed to notify supplier %s for request %s: %v", inv.SupplierID, request.ID, err)
		}
	}
	if err = s.Repo.StampInvitationsNotified(ctx, request.ID); err != nil {
		s.Logger.Printf("failed to stamp invitations for request %s: %v", request.ID, err)
	}
}

// RejectRequest sends a pending request back to draft.
func (s *RequestService) RejectRequest(ctx context.Context, identity *auth.Identity, requestID, comments string) (*models.Request, error) {
	if !utils.HasRole(identity.Role(), models.RoleApprover, models.RoleAdmin) {
		return nil, models.NewAuthorizationError("only approvers can reject requests")
	}
	if strings.TrimSpace(comments) == "" {
		return nil, models.NewValidationError("rejection comments are required")
	}

	request, err := s.Repo.GetRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.Status != models.PendingRequest {
		return nil, models.NewValidationError("only requests pending approval can be rejected")
	}

	rejected, err := s.Repo.RejectRequest(ctx, requestID, comments)
	if err != nil {
		return nil, err
	}

	_, err = s.Notifications.Create(ctx, rejected.CreatorID, "Request rejected",
		fmt.Sprintf("Your request %q was sent back: %s", rejected.Title, comments),
		models.NotifRejected, &rejected.ID)
	if err != nil {
		s.Logger.Printf("failed to notify creator of rejection for request %s: %v", rejected.ID, err)
	}
	return rejected, nil
}

// CancelRequest withdraws a request. Terminal.
func (s *RequestService) CancelRequest(ctx context.Context, identity *auth.Identity, requestID string) (*models.Request, error) {
	if !utils.HasRole(identity.Role(), models.RoleCreator, models.RoleAdmin) {
		return nil, models.NewAuthorizationError("only request creators can cancel requests")
	}

	request, err := s.Repo.GetRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if identity.Role() != models.RoleAdmin && request.CreatorID != identity.Profile.ID {
		return nil, models.NewAuthorizationError("you do not own this request")
	}
	if utils.ContainsRequestStatus([]models.RequestStatus{models.AwardedRequest, models.CancelledRequest}, request.Status) {
		return nil, models.NewValidationError("awarded or cancelled requests cannot be cancelled")
	}
	return s.Repo.CancelRequest(ctx, requestID)
}

// DeleteRequest removes a request and everything hanging off it. Irreversible;
// the confirmation step lives upstream in the client.
func (s *RequestService) DeleteRequest(ctx context.Context, identity *auth.Identity, requestID string) error {
	if !utils.HasRole(identity.Role(), models.RoleApprover, models.RoleAdmin) {
		return models.NewAuthorizationError("only approvers can delete requests")
	}
	return s.Repo.DeleteRequest(ctx, requestID)
}

// GetInvitations returns a request's invitations.
func (s *RequestService) GetInvitations(ctx context.Context, identity *auth.Identity, requestID string) ([]models.Invitation, error) {
	request, err := s.Repo.GetRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if identity.Role() == models.RoleCreator && request.CreatorID != identity.Profile.ID {
		return nil, models.NewAuthorizationError("you do not own this request")
	}
	if identity.Role() == models.RoleSupplier {
		return nil, models.NewAuthorizationError("suppliers cannot list request invitations")
	}
	return s.Repo.GetInvitations(ctx, requestID)
}
