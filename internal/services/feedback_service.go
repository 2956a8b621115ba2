package services

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/procurehub/procurement-service/internal/auth"
	"github.com/procurehub/procurement-service/internal/models"
	"github.com/procurehub/procurement-service/internal/repository"
	"github.com/procurehub/procurement-service/internal/utils"
)

// FeedbackService owns round progression: creators close a round with item
// feedback and new-item suggestions, suppliers read both for the round they
// are quoting.
type FeedbackService struct {
	Repo      repository.FeedbackRepository
	Requests  repository.RequestRepository
	Directory repository.DirectoryRepository
	Logger    *log.Logger
}

// NewFeedbackService creates a new FeedbackService.
func NewFeedbackService(repo repository.FeedbackRepository, requests repository.RequestRepository, directory repository.DirectoryRepository, logger *log.Logger) *FeedbackService {
	return &FeedbackService{Repo: repo, Requests: requests, Directory: directory, Logger: logger}
}

// AdvanceRound closes the current round and opens the next. Feedback rows are
// stamped with the closing round, suggestions with the round being opened.
// Items marked accept need no record and are dropped.
func (s *FeedbackService) AdvanceRound(ctx context.Context, identity *auth.Identity, requestID string, payload models.AdvanceRound) (*models.Request, error) {
	if !utils.HasRole(identity.Role(), models.RoleCreator, models.RoleAdmin) {
		return nil, models.NewAuthorizationError("only request creators can advance rounds")
	}

	request, err := s.Requests.GetRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if identity.Role() != models.RoleAdmin && request.CreatorID != identity.Profile.ID {
		return nil, models.NewAuthorizationError("you do not own this request")
	}
	if request.Status != models.ActiveRequest {
		return nil, models.NewValidationError("only active requests have rounds to advance")
	}
	if request.CurrentRound >= request.MaxRounds {
		return nil, models.NewValidationError(fmt.Sprintf(
			"round %d is the final round; select a winner instead", request.CurrentRound))
	}

	roundItems, err := s.Repo.GetRoundItems(ctx, requestID, request.CurrentRound)
	if err != nil {
		return nil, err
	}

	var feedback []models.RoundItemFeedback
	for _, fb := range payload.Feedback {
		switch fb.Action {
		case models.AcceptItem:
			continue
		case models.ModifyItem, models.DeleteItem:
		default:
			return nil, models.NewValidationError(fmt.Sprintf("unsupported feedback action: %s", fb.Action))
		}
		if strings.TrimSpace(fb.FeedbackText) == "" {
			return nil, models.NewValidationError("feedback text is required when modifying or deleting an item")
		}
		proposalID, ok := roundItems[fb.ProposalItemID]
		if !ok {
			return nil, models.NewValidationError(fmt.Sprintf(
				"item %s does not belong to a submitted proposal of round %d", fb.ProposalItemID, request.CurrentRound))
		}
		feedback = append(feedback, models.RoundItemFeedback{
			ProposalID:     proposalID,
			ProposalItemID: fb.ProposalItemID,
			RoundNumber:    request.CurrentRound,
			Action:         fb.Action,
			FeedbackText:   fb.FeedbackText,
			SuggestedPrice: fb.SuggestedPrice,
			CreatedBy:      identity.Profile.ID,
		})
	}

	var suggestions []models.RoundSuggestion
	for _, sg := range payload.Suggestions {
		if strings.TrimSpace(sg.ItemName) == "" || strings.TrimSpace(sg.Description) == "" {
			continue
		}
		suggestions = append(suggestions, models.RoundSuggestion{
			RequestID:         requestID,
			RoundNumber:       request.CurrentRound + 1,
			ItemName:          sg.ItemName,
			Description:       sg.Description,
			SuggestedQuantity: sg.SuggestedQuantity,
			Notes:             sg.Notes,
			CreatedBy:         identity.Profile.ID,
		})
	}

	if err = s.Repo.AdvanceRound(ctx, requestID, request.CurrentRound+1, feedback, suggestions); err != nil {
		return nil, err
	}
	return s.Requests.GetRequestByID(ctx, requestID)
}

// GetRoundFeedback returns what a supplier should act on when quoting a round:
// the feedback left on their previous-round items and the suggestions opened
// for the round itself. An empty round string means the request's current round.
func (s *FeedbackService) GetRoundFeedback(ctx context.Context, identity *auth.Identity, requestID, roundStr string) (*models.RoundFeedbackView, error) {
	if identity.Role() != models.RoleSupplier {
		return nil, models.NewAuthorizationError("only suppliers read round feedback")
	}

	request, err := s.Requests.GetRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
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

	round := request.CurrentRound
	if roundStr != "" {
		round, err = strconv.Atoi(roundStr)
		if err != nil || round < 1 {
			return nil, models.NewValidationError("round must be a positive number")
		}
	}

	view := &models.RoundFeedbackView{RoundNumber: round}
	if round > 1 {
		view.Feedback, err = s.Repo.GetFeedbackForSupplier(ctx, requestID, supplier.ID, round-1)
		if err != nil {
			return nil, err
		}
	}
	view.Suggestions, err = s.Repo.GetSuggestions(ctx, requestID, round)
	if err != nil {
		return nil, err
	}
	return view, nil
}
