package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"strings"

	"github.com/procurehub/procurement-service/internal/auth"
	"github.com/procurehub/procurement-service/internal/models"
	"github.com/procurehub/procurement-service/internal/repository"
	"github.com/procurehub/procurement-service/internal/storage"
	"github.com/procurehub/procurement-service/internal/utils"
)

// ProposalService owns the per-supplier, per-round proposal lifecycle.
type ProposalService struct {
	Repo          repository.ProposalRepository
	Requests      repository.RequestRepository
	Directory     repository.DirectoryRepository
	Notifications repository.NotificationRepository
	Store         storage.Uploader
	Logger        *log.Logger
}

// NewProposalService creates a new ProposalService.
func NewProposalService(repo repository.ProposalRepository, requests repository.RequestRepository, directory repository.DirectoryRepository, notifications repository.NotificationRepository, store storage.Uploader, logger *log.Logger) *ProposalService {
	return &ProposalService{
		Repo:          repo,
		Requests:      requests,
		Directory:     directory,
		Notifications: notifications,
		Store:         store,
		Logger:        logger,
	}
}

// resolveSupplier maps the calling profile to its supplier record via the
// contact email match and checks the invitation for the request.
func (s *ProposalService) resolveSupplier(ctx context.Context, identity *auth.Identity, requestID string) (*models.Supplier, error) {
	if identity.Role() != models.RoleSupplier {
		return nil, models.NewAuthorizationError("only suppliers can work on proposals")
	}
	supplier, err := s.Directory.GetSupplierByEmail(ctx, identity.Profile.Email)
	if err != nil {
		return nil, err
	}
	invited, err := s.Requests.HasInvitation(ctx, requestID, supplier.ID)
	if err != nil {
		return nil, err
	}
	if !invited {
		return nil, models.NewAuthorizationError("you were not invited to this request")
	}
	return supplier, nil
}

// prepareDraft validates the target request and recomputes the money fields
// from the submitted items.
func (s *ProposalService) prepareDraft(ctx context.Context, supplier *models.Supplier, requestID string, draft models.ProposalDraft) (*models.Proposal, error) {
	request, err := s.Requests.GetRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.Status != models.ActiveRequest {
		return nil, models.NewValidationError("this request is not accepting proposals")
	}

	existing, err := s.Repo.GetProposalForRound(ctx, requestID, supplier.ID, request.CurrentRound)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Status != models.DraftProposal {
		return nil, models.NewValidationError("you have already submitted a proposal for this round")
	}

	subtotal, fee, total := utils.ComputeTotals(draft.Items, supplier.ContractFeePercentage)
	return &models.Proposal{
		RequestID:      requestID,
		SupplierID:     supplier.ID,
		RoundNumber:    request.CurrentRound,
		Subtotal:       subtotal,
		FeeAmount:      fee,
		TotalAmount:    total,
		ContextualInfo: draft.ContextualInfo,
	}, nil
}

// SaveDraft stores the supplier's work in progress for the current round.
func (s *ProposalService) SaveDraft(ctx context.Context, identity *auth.Identity, requestID string, draft models.ProposalDraft) (*models.Proposal, error) {
	supplier, err := s.resolveSupplier(ctx, identity, requestID)
	if err != nil {
		return nil, err
	}
	proposal, err := s.prepareDraft(ctx, supplier, requestID, draft)
	if err != nil {
		return nil, err
	}
	return s.Repo.UpsertDraft(ctx, *proposal, draft.Items)
}

// SubmitProposal validates and submits the supplier's proposal for the
// current round, recomputing all monetary fields server-side.
func (s *ProposalService) SubmitProposal(ctx context.Context, identity *auth.Identity, requestID string, draft models.ProposalDraft) (*models.Proposal, error) {
	supplier, err := s.resolveSupplier(ctx, identity, requestID)
	if err != nil {
		return nil, err
	}

	if len(draft.Items) == 0 {
		return nil, models.NewValidationError("a proposal needs at least one item")
	}
	for _, item := range draft.Items {
		if strings.TrimSpace(item.ItemName) == "" {
			return nil, models.NewValidationError("every item needs a name")
		}
		if item.UnitPrice <= 0 {
			return nil, models.NewValidationError(fmt.Sprintf("item %q needs a unit price greater than zero", item.ItemName))
		}
		if item.Quantity <= 0 {
			return nil, models.NewValidationError(fmt.Sprintf("item %q needs a quantity greater than zero", item.ItemName))
		}
	}

	proposal, err := s.prepareDraft(ctx, supplier, requestID, draft)
	if err != nil {
		return nil, err
	}

	// Prices may only go down between rounds.
	priorTotal, hasPrior, err := s.Repo.LatestSubmittedTotal(ctx, requestID, supplier.ID, proposal.RoundNumber)
	if err != nil {
		return nil, err
	}
	if hasPrior && proposal.TotalAmount > priorTotal {
		return nil, models.NewValidationError(fmt.Sprintf(
			"round %d total ($%.2f) cannot exceed your previous round's total ($%.2f)",
			proposal.RoundNumber, proposal.TotalAmount, priorTotal))
	}

	saved, err := s.Repo.UpsertDraft(ctx, *proposal, draft.Items)
	if err != nil {
		return nil, err
	}
	submitted, err := s.Repo.SubmitProposal(ctx, saved.ID)
	if err != nil {
		return nil, err
	}
	submitted.Items = saved.Items

	request, err := s.Requests.GetRequestByID(ctx, requestID)
	if err == nil {
		_, nerr := s.Notifications.Create(ctx, request.CreatorID, "Proposal received",
			fmt.Sprintf("%s submitted a round %d proposal for %q", supplier.Name, submitted.RoundNumber, request.Title),
			models.NotifProposal, &submitted.ID)
		if nerr != nil {
			s.Logger.Printf("failed to notify creator of proposal %s: %v", submitted.ID, nerr)
		}
	} else {
		s.Logger.Printf("failed to load request %s for notification: %v", requestID, err)
	}
	return submitted, nil
}

// ListForRequest returns a request's submitted proposals, cheapest first.
func (s *ProposalService) ListForRequest(ctx context.Context, identity *auth.Identity, requestID string) ([]models.Proposal, error) {
	request, err := s.Requests.GetRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	switch identity.Role() {
	case models.RoleApprover, models.RoleAdmin:
	case models.RoleCreator:
		if request.CreatorID != identity.Profile.ID {
			return nil, models.NewAuthorizationError("you do not own this request")
		}
	default:
		return nil, models.NewAuthorizationError("suppliers cannot view competing proposals")
	}
	return s.Repo.GetSubmittedProposals(ctx, requestID)
}

// ListMine returns the calling supplier's proposals across requests.
func (s *ProposalService) ListMine(ctx context.Context, identity *auth.Identity, limitStr, offsetStr string) ([]models.Proposal, error) {
	if identity.Role() != models.RoleSupplier {
		return nil, models.NewAuthorizationError("only suppliers have proposals of their own")
	}
	limit, offset, err := utils.ParseLimitOffset(limitStr, offsetStr)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	supplier, err := s.Directory.GetSupplierByEmail(ctx, identity.Profile.Email)
	if err != nil {
		return nil, err
	}
	return s.Repo.GetSupplierProposals(ctx, supplier.ID, limit, offset)
}

// AddAttachments uploads files for a proposal. Uploads are best-effort: a
// failed file is logged and skipped, and the rest of the batch proceeds.
func (s *ProposalService) AddAttachments(ctx context.Context, identity *auth.Identity, proposalID string, files []models.AttachmentUpload) ([]models.AttachmentResult, error) {
	if identity.Role() != models.RoleSupplier {
		return nil, models.NewAuthorizationError("only suppliers can attach files to proposals")
	}
	proposal, err := s.Repo.GetProposalByID(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	supplier, err := s.Directory.GetSupplierByEmail(ctx, identity.Profile.Email)
	if err != nil {
		return nil, err
	}
	if proposal.SupplierID != supplier.ID {
		return nil, models.NewAuthorizationError("this proposal belongs to another supplier")
	}
	if len(files) == 0 {
		return nil, models.NewValidationError("no files provided")
	}

	results := make([]models.AttachmentResult, 0, len(files))
	for _, file := range files {
		result := models.AttachmentResult{FileName: file.FileName}
		content, err := base64.StdEncoding.DecodeString(file.ContentBase64)
		if err != nil {
			result.Reason = "file content is not valid base64"
			results = append(results, result)
			continue
		}

		path := fmt.Sprintf("proposals/%s/%s", proposalID, file.FileName)
		contentType := ""
		if file.MimeType != nil {
			contentType = *file.MimeType
		}
		if err := s.Store.Upload(ctx, path, content, contentType); err != nil {
			s.Logger.Printf("attachment upload failed for proposal %s file %s: %v", proposalID, file.FileName, err)
			result.Reason = "upload failed; the file was skipped"
			results = append(results, result)
			continue
		}

		size := int64(len(content))
		_, err = s.Repo.CreateAttachment(ctx, models.ProposalAttachment{
			ProposalID: proposalID,
			FileName:   file.FileName,
			FilePath:   path,
			FileSize:   &size,
			MimeType:   file.MimeType,
		})
		if err != nil {
			s.Logger.Printf("failed to record attachment for proposal %s file %s: %v", proposalID, file.FileName, err)
			result.Reason = "uploaded but could not be recorded"
			results = append(results, result)
			continue
		}

		result.Uploaded = true
		results = append(results, result)
	}
	return results, nil
}
