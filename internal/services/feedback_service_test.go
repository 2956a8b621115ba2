package services

import (
	"context"
	"testing"

	"github.com/procurehub/procurement-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestAdvanceRoundBlockedAtMaxRounds(t *testing.T) {
	requests := new(MockRequestRepository)
	requests.On("GetRequestByID", mock.Anything, "req-1").Return(&models.Request{
		ID: "req-1", CreatorID: "p1", Status: models.ActiveRequest, CurrentRound: 3, MaxRounds: 3,
	}, nil)

	repo := new(MockFeedbackRepository)
	service := NewFeedbackService(repo, requests, new(MockDirectoryRepository), testLogger())

	_, err := service.AdvanceRound(context.Background(), creatorIdentity("p1"), "req-1", models.AdvanceRound{})

	var errResp *models.ErrorResponse
	assert.ErrorAs(t, err, &errResp)
	assert.Equal(t, 400, errResp.StatusCode)
	repo.AssertNotCalled(t, "AdvanceRound", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAdvanceRoundDropsAcceptedItems(t *testing.T) {
	requests := new(MockRequestRepository)
	requests.On("GetRequestByID", mock.Anything, "req-1").Return(&models.Request{
		ID: "req-1", CreatorID: "p1", Status: models.ActiveRequest, CurrentRound: 1, MaxRounds: 3,
	}, nil).Once()
	requests.On("GetRequestByID", mock.Anything, "req-1").Return(&models.Request{
		ID: "req-1", CreatorID: "p1", Status: models.ActiveRequest, CurrentRound: 2, MaxRounds: 3,
	}, nil)

	repo := new(MockFeedbackRepository)
	repo.On("GetRoundItems", mock.Anything, "req-1", 1).Return(map[string]string{
		"item-1": "prop-1",
		"item-2": "prop-1",
	}, nil)
	repo.On("AdvanceRound", mock.Anything, "req-1", 2,
		mock.MatchedBy(func(feedback []models.RoundItemFeedback) bool {
			// Only the modify survives; the accept is dropped.
			return len(feedback) == 1 && feedback[0].ProposalItemID == "item-2" &&
				feedback[0].RoundNumber == 1 && feedback[0].ProposalID == "prop-1"
		}),
		mock.MatchedBy(func(suggestions []models.RoundSuggestion) bool {
			return len(suggestions) == 1 && suggestions[0].RoundNumber == 2
		})).Return(nil)

	service := NewFeedbackService(repo, requests, new(MockDirectoryRepository), testLogger())

	request, err := service.AdvanceRound(context.Background(), creatorIdentity("p1"), "req-1", models.AdvanceRound{
		Feedback: []models.ItemFeedbackInput{
			{ProposalItemID: "item-1", Action: models.AcceptItem},
			{ProposalItemID: "item-2", Action: models.ModifyItem, FeedbackText: "too expensive"},
		},
		Suggestions: []models.SuggestionInput{
			{ItemName: "Docking station", Description: "One per laptop", SuggestedQuantity: 50},
		},
	})

	assert.NoError(t, err)
	assert.Equal(t, 2, request.CurrentRound)
	repo.AssertExpectations(t)
}

func TestAdvanceRoundRequiresFeedbackText(t *testing.T) {
	requests := new(MockRequestRepository)
	requests.On("GetRequestByID", mock.Anything, "req-1").Return(&models.Request{
		ID: "req-1", CreatorID: "p1", Status: models.ActiveRequest, CurrentRound: 1, MaxRounds: 3,
	}, nil)

	repo := new(MockFeedbackRepository)
	repo.On("GetRoundItems", mock.Anything, "req-1", 1).Return(map[string]string{"item-1": "prop-1"}, nil)

	service := NewFeedbackService(repo, requests, new(MockDirectoryRepository), testLogger())

	_, err := service.AdvanceRound(context.Background(), creatorIdentity("p1"), "req-1", models.AdvanceRound{
		Feedback: []models.ItemFeedbackInput{{ProposalItemID: "item-1", Action: models.DeleteItem}},
	})

	var errResp *models.ErrorResponse
	assert.ErrorAs(t, err, &errResp)
	assert.Equal(t, 400, errResp.StatusCode)
}

func TestAdvanceRoundRejectsForeignItems(t *testing.T) {
	requests := new(MockRequestRepository)
	requests.On("GetRequestByID", mock.Anything, "req-1").Return(&models.Request{
		ID: "req-1", CreatorID: "p1", Status: models.ActiveRequest, CurrentRound: 1, MaxRounds: 3,
	}, nil)

	repo := new(MockFeedbackRepository)
	repo.On("GetRoundItems", mock.Anything, "req-1", 1).Return(map[string]string{"item-1": "prop-1"}, nil)

	service := NewFeedbackService(repo, requests, new(MockDirectoryRepository), testLogger())

	_, err := service.AdvanceRound(context.Background(), creatorIdentity("p1"), "req-1", models.AdvanceRound{
		Feedback: []models.ItemFeedbackInput{{ProposalItemID: "item-other", Action: models.ModifyItem, FeedbackText: "cheaper please"}},
	})

	var errResp *models.ErrorResponse
	assert.ErrorAs(t, err, &errResp)
	assert.Equal(t, 400, errResp.StatusCode)
}

func TestAdvanceRoundOwnershipEnforced(t *testing.T) {
	requests := new(MockRequestRepository)
	requests.On("GetRequestByID", mock.Anything, "req-1").Return(&models.Request{
		ID: "req-1", CreatorID: "someone-else", Status: models.ActiveRequest, CurrentRound: 1, MaxRounds: 3,
	}, nil)

	service := NewFeedbackService(new(MockFeedbackRepository), requests, new(MockDirectoryRepository), testLogger())

	_, err := service.AdvanceRound(context.Background(), creatorIdentity("p1"), "req-1", models.AdvanceRound{})

	var errResp *models.ErrorResponse
	assert.ErrorAs(t, err, &errResp)
	assert.Equal(t, 403, errResp.StatusCode)
}

func TestGetRoundFeedbackCombinesPreviousRoundFeedbackWithCurrentSuggestions(t *testing.T) {
	requests := new(MockRequestRepository)
	requests.On("GetRequestByID", mock.Anything, "req-1").Return(&models.Request{
		ID: "req-1", Status: models.ActiveRequest, CurrentRound: 2, MaxRounds: 3,
	}, nil)
	requests.On("HasInvitation", mock.Anything, "req-1", "sup-1").Return(true, nil)

	directory := new(MockDirectoryRepository)
	directory.On("GetSupplierByEmail", mock.Anything, "s@acme.test").Return(&models.Supplier{ID: "sup-1", IsActive: true}, nil)

	repo := new(MockFeedbackRepository)
	repo.On("GetFeedbackForSupplier", mock.Anything, "req-1", "sup-1", 1).Return([]models.RoundItemFeedback{
		{ProposalItemID: "item-1", RoundNumber: 1, Action: models.ModifyItem, FeedbackText: "too expensive"},
	}, nil)
	repo.On("GetSuggestions", mock.Anything, "req-1", 2).Return([]models.RoundSuggestion{
		{ItemName: "Docking station", RoundNumber: 2},
	}, nil)

	service := NewFeedbackService(repo, requests, directory, testLogger())

	view, err := service.GetRoundFeedback(context.Background(), supplierIdentity("p9", "s@acme.test"), "req-1", "")

	assert.NoError(t, err)
	assert.Equal(t, 2, view.RoundNumber)
	assert.Len(t, view.Feedback, 1)
	assert.Len(t, view.Suggestions, 1)
}

func TestGetRoundFeedbackFirstRoundHasNoFeedback(t *testing.T) {
	requests := new(MockRequestRepository)
	requests.On("GetRequestByID", mock.Anything, "req-1").Return(&models.Request{
		ID: "req-1", Status: models.ActiveRequest, CurrentRound: 1, MaxRounds: 3,
	}, nil)
	requests.On("HasInvitation", mock.Anything, "req-1", "sup-1").Return(true, nil)

	directory := new(MockDirectoryRepository)
	directory.On("GetSupplierByEmail", mock.Anything, "s@acme.test").Return(&models.Supplier{ID: "sup-1", IsActive: true}, nil)

	repo := new(MockFeedbackRepository)
	repo.On("GetSuggestions", mock.Anything, "req-1", 1).Return([]models.RoundSuggestion{}, nil)

	service := NewFeedbackService(repo, requests, directory, testLogger())

	view, err := service.GetRoundFeedback(context.Background(), supplierIdentity("p9", "s@acme.test"), "req-1", "")

	assert.NoError(t, err)
	assert.Empty(t, view.Feedback)
	repo.AssertNotCalled(t, "GetFeedbackForSupplier", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
