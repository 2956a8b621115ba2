package services

import (
	"context"
	"log"

	"github.com/procurehub/procurement-service/internal/ai"
	"github.com/procurehub/procurement-service/internal/auth"
	"github.com/procurehub/procurement-service/internal/models"
	"github.com/procurehub/procurement-service/internal/repository"
	"github.com/procurehub/procurement-service/internal/utils"
)

// Analyzer produces a comparative write-up of a request's proposals.
type Analyzer interface {
	Enabled() bool
	Analyze(ctx context.Context, req ai.AnalyzeRequest) (string, error)
}

// AnalysisService gathers a request's submitted proposals and hands them to
// the external analysis service.
type AnalysisService struct {
	Client    Analyzer
	Requests  repository.RequestRepository
	Proposals repository.ProposalRepository
	Directory repository.DirectoryRepository
	Logger    *log.Logger
}

// NewAnalysisService creates a new AnalysisService.
func NewAnalysisService(client Analyzer, requests repository.RequestRepository, proposals repository.ProposalRepository, directory repository.DirectoryRepository, logger *log.Logger) *AnalysisService {
	return &AnalysisService{Client: client, Requests: requests, Proposals: proposals, Directory: directory, Logger: logger}
}

// Analyze returns a free-text comparison of the request's submitted proposals
// against the internal budget.
func (s *AnalysisService) Analyze(ctx context.Context, identity *auth.Identity, requestID string) (string, error) {
	if !utils.HasRole(identity.Role(), models.RoleCreator, models.RoleApprover, models.RoleAdmin) {
		return "", models.NewAuthorizationError("suppliers cannot run proposal analysis")
	}

	request, err := s.Requests.GetRequestByID(ctx, requestID)
	if err != nil {
		return "", err
	}
	if identity.Role() == models.RoleCreator && request.CreatorID != identity.Profile.ID {
		return "", models.NewAuthorizationError("you do not own this request")
	}

	if !s.Client.Enabled() {
		return "", models.NewTransientError("proposal analysis is not available")
	}

	proposals, err := s.Proposals.GetSubmittedProposals(ctx, requestID)
	if err != nil {
		return "", err
	}
	if len(proposals) == 0 {
		return "", models.NewValidationError("there are no submitted proposals to analyze")
	}

	summaries := make([]ai.ProposalSummary, 0, len(proposals))
	for _, p := range proposals {
		name := p.SupplierID
		supplier, err := s.Directory.GetSupplierByID(ctx, p.SupplierID)
		if err != nil {
			s.Logger.Printf("failed to resolve supplier %s for analysis: %v", p.SupplierID, err)
		} else {
			name = supplier.Name
		}
		summaries = append(summaries, ai.ProposalSummary{
			Supplier:       name,
			Total:          p.TotalAmount,
			Items:          p.Items,
			ContextualInfo: p.ContextualInfo,
		})
	}

	analysis, err := s.Client.Analyze(ctx, ai.AnalyzeRequest{
		Proposals:      summaries,
		InternalBudget: request.InternalBudget,
	})
	if err != nil {
		s.Logger.Printf("proposal analysis failed for request %s: %v", requestID, err)
		return "", models.NewTransientError("proposal analysis failed; try again later")
	}
	return analysis, nil
}
