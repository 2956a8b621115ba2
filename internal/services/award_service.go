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

// AwardService owns winner selection and the approver's final sign-off.
type AwardService struct {
	Repo          repository.AwardRepository
	Requests      repository.RequestRepository
	Proposals     repository.ProposalRepository
	Directory     repository.DirectoryRepository
	Notifications repository.NotificationRepository
	Logger        *log.Logger
}

// NewAwardService creates a new AwardService.
func NewAwardService(repo repository.AwardRepository, requests repository.RequestRepository, proposals repository.ProposalRepository, directory repository.DirectoryRepository, notifications repository.NotificationRepository, logger *log.Logger) *AwardService {
	return &AwardService{
		Repo:          repo,
		Requests:      requests,
		Proposals:     proposals,
		Directory:     directory,
		Notifications: notifications,
		Logger:        logger,
	}
}

// SelectWinner records the creator's proposed winner for approver sign-off.
// Picking anything but the lowest-priced submitted proposal requires a written
// justification. Re-selecting overwrites the request's previous selection.
func (s *AwardService) SelectWinner(ctx context.Context, identity *auth.Identity, requestID string, sel models.AwardSelect) (*models.AwardSelection, error) {
	if !utils.HasRole(identity.Role(), models.RoleCreator, models.RoleAdmin) {
		return nil, models.NewAuthorizationError("only request creators can select a winner")
	}

	request, err := s.Requests.GetRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if identity.Role() != models.RoleAdmin && request.CreatorID != identity.Profile.ID {
		return nil, models.NewAuthorizationError("you do not own this request")
	}
	if request.Status != models.ActiveRequest && request.Status != models.EvaluationRequest {
		return nil, models.NewValidationError("a winner can only be selected while the request is active or in evaluation")
	}

	proposals, err := s.Proposals.GetSubmittedProposals(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if len(proposals) == 0 {
		return nil, models.NewValidationError("there are no submitted proposals to select from")
	}

	var chosen *models.Proposal
	for i := range proposals {
		if proposals[i].ID == sel.ProposalID {
			chosen = &proposals[i]
			break
		}
	}
	if chosen == nil {
		return nil, models.NewValidationError("the selected proposal is not a submitted proposal of this request")
	}

	isLowest := chosen.TotalAmount <= proposals[0].TotalAmount
	justification := strings.TrimSpace(sel.Justification)
	if !isLowest && justification == "" {
		return nil, models.NewValidationError("justification required when not selecting the lowest-priced proposal")
	}

	selection := models.AwardSelection{
		RequestID:          requestID,
		SelectedProposalID: chosen.ID,
		SelectedSupplierID: chosen.SupplierID,
		SelectedAmount:     chosen.TotalAmount,
		IsLowestPrice:      isLowest,
		SelectedBy:         identity.Profile.ID,
	}
	if justification != "" {
		selection.CreatorJustification = &justification
	}
	return s.Repo.UpsertSelection(ctx, selection)
}

// GetPendingSelections lists selections awaiting sign-off, for approver dashboards.
func (s *AwardService) GetPendingSelections(ctx context.Context, identity *auth.Identity, limitStr, offsetStr string) ([]models.AwardSelection, error) {
	if !utils.HasRole(identity.Role(), models.RoleApprover, models.RoleAdmin) {
		return nil, models.NewAuthorizationError("only approvers can list pending selections")
	}
	limit, offset, err := utils.ParseLimitOffset(limitStr, offsetStr)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	return s.Repo.GetPendingSelections(ctx, limit, offset)
}

// ApproveSelection finalizes a selection into an award. Approving an
// already-approved selection replays the existing award without writing or
// re-notifying, so retries after a partial failure are safe. The database
// write itself is atomic; notifications afterwards are best-effort and never
// undo the award.
func (s *AwardService) ApproveSelection(ctx context.Context, identity *auth.Identity, selectionID string, decision models.AwardDecision) (*models.Award, error) {
	if !utils.HasRole(identity.Role(), models.RoleApprover, models.RoleAdmin) {
		return nil, models.NewAuthorizationError("only approvers can approve award selections")
	}

	sel, err := s.Repo.GetSelectionByID(ctx, selectionID)
	if err != nil {
		return nil, err
	}
	if sel.Status == models.ApprovedSelection {
		return s.Repo.GetAwardByRequest(ctx, sel.RequestID)
	}

	award, err := s.Repo.ApproveSelection(ctx, selectionID, identity.Profile.ID, decision.Notes)
	if err != nil {
		return nil, err
	}

	s.notifyAward(ctx, award)
	return award, nil
}

func (s *AwardService) notifyAward(ctx context.Context, award *models.Award) {
	request, err := s.Requests.GetRequestByID(ctx, award.RequestID)
	if err != nil {
		s.Logger.Printf("failed to load request %s for award notifications: %v", award.RequestID, err)
		return
	}

	_, err = s.Notifications.Create(ctx, request.CreatorID, "Award approved",
		fmt.Sprintf("The award for %q has been approved", request.Title),
		models.NotifAward, &award.ID)
	if err != nil {
		s.Logger.Printf("failed to notify creator of award %s: %v", award.ID, err)
	}

	_, err = s.Notifications.Create(ctx, award.WinningSupplierID, "You won",
		fmt.Sprintf("Your proposal for %q has been awarded", request.Title),
		models.NotifAward, &award.ID)
	if err != nil {
		s.Logger.Printf("failed to notify supplier %s of award %s: %v", award.WinningSupplierID, award.ID, err)
	}
}

// RejectSelection sends a selection back to the creator with the approver's notes.
func (s *AwardService) RejectSelection(ctx context.Context, identity *auth.Identity, selectionID string, decision models.AwardDecision) (*models.AwardSelection, error) {
	if !utils.HasRole(identity.Role(), models.RoleApprover, models.RoleAdmin) {
		return nil, models.NewAuthorizationError("only approvers can reject award selections")
	}
	if strings.TrimSpace(decision.Notes) == "" {
		return nil, models.NewValidationError("rejection notes are required")
	}

	sel, err := s.Repo.GetSelectionByID(ctx, selectionID)
	if err != nil {
		return nil, err
	}
	if sel.Status != models.PendingSelection {
		return nil, models.NewValidationError("only pending selections can be rejected")
	}
	return s.Repo.RejectSelection(ctx, selectionID, identity.Profile.ID, decision.Notes)
}

// GetAward returns the award for a request to anyone allowed to see it.
func (s *AwardService) GetAward(ctx context.Context, identity *auth.Identity, requestID string) (*models.Award, error) {
	request, err := s.Requests.GetRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	award, err := s.Repo.GetAwardByRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	switch identity.Role() {
	case models.RoleApprover, models.RoleAdmin:
	case models.RoleCreator:
		if request.CreatorID != identity.Profile.ID {
			return nil, models.NewAuthorizationError("you do not own this request")
		}
	case models.RoleSupplier:
		supplier, err := s.Directory.GetSupplierByEmail(ctx, identity.Profile.Email)
		if err != nil {
			return nil, err
		}
		if award.WinningSupplierID != supplier.ID {
			return nil, models.NewAuthorizationError("only the winning supplier can view this award")
		}
	}
	return award, nil
}
