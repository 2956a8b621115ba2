package services

import (
	"context"
	"io"
	"log"

	"github.com/procurehub/procurement-service/internal/ai"
	"github.com/procurehub/procurement-service/internal/auth"
	"github.com/procurehub/procurement-service/internal/models"

	"github.com/stretchr/testify/mock"
)

// --- Mocks ---

type MockRequestRepository struct {
	mock.Mock
}

func (m *MockRequestRepository) CreateRequest(ctx context.Context, creatorID string, req models.RequestCreate) (*models.Request, error) {
	args := m.Called(ctx, creatorID, req)
	if r, ok := args.Get(0).(*models.Request); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRequestRepository) GetRequestByID(ctx context.Context, requestID string) (*models.Request, error) {
	args := m.Called(ctx, requestID)
	if r, ok := args.Get(0).(*models.Request); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRequestRepository) GetUserRequests(ctx context.Context, creatorID string, limit, offset int) ([]models.Request, error) {
	args := m.Called(ctx, creatorID, limit, offset)
	if r, ok := args.Get(0).([]models.Request); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRequestRepository) ListRequests(ctx context.Context, limit, offset int, statuses, eventTypes []string) ([]models.Request, error) {
	args := m.Called(ctx, limit, offset, statuses, eventTypes)
	if r, ok := args.Get(0).([]models.Request); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRequestRepository) SubmitRequest(ctx context.Context, requestID string) (*models.Request, error) {
	args := m.Called(ctx, requestID)
	if r, ok := args.Get(0).(*models.Request); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRequestRepository) ApproveRequest(ctx context.Context, requestID, approverID, comments string) (*models.Request, error) {
	args := m.Called(ctx, requestID, approverID, comments)
	if r, ok := args.Get(0).(*models.Request); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRequestRepository) RejectRequest(ctx context.Context, requestID, comments string) (*models.Request, error) {
	args := m.Called(ctx, requestID, comments)
	if r, ok := args.Get(0).(*models.Request); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRequestRepository) CancelRequest(ctx context.Context, requestID string) (*models.Request, error) {
	args := m.Called(ctx, requestID)
	if r, ok := args.Get(0).(*models.Request); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRequestRepository) DeleteRequest(ctx context.Context, requestID string) error {
	args := m.Called(ctx, requestID)
	return args.Error(0)
}

func (m *MockRequestRepository) CreateInvitations(ctx context.Context, requestID string, supplierIDs []string) ([]models.Invitation, error) {
	args := m.Called(ctx, requestID, supplierIDs)
	if r, ok := args.Get(0).([]models.Invitation); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRequestRepository) GetInvitations(ctx context.Context, requestID string) ([]models.Invitation, error) {
	args := m.Called(ctx, requestID)
	if r, ok := args.Get(0).([]models.Invitation); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRequestRepository) HasInvitation(ctx context.Context, requestID, supplierID string) (bool, error) {
	args := m.Called(ctx, requestID, supplierID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRequestRepository) StampInvitationsNotified(ctx context.Context, requestID string) error {
	args := m.Called(ctx, requestID)
	return args.Error(0)
}

type MockProposalRepository struct {
	mock.Mock
}

func (m *MockProposalRepository) UpsertDraft(ctx context.Context, p models.Proposal, items []models.ProposalItemInput) (*models.Proposal, error) {
	args := m.Called(ctx, p, items)
	if r, ok := args.Get(0).(*models.Proposal); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProposalRepository) SubmitProposal(ctx context.Context, proposalID string) (*models.Proposal, error) {
	args := m.Called(ctx, proposalID)
	if r, ok := args.Get(0).(*models.Proposal); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProposalRepository) GetProposalByID(ctx context.Context, proposalID string) (*models.Proposal, error) {
	args := m.Called(ctx, proposalID)
	if r, ok := args.Get(0).(*models.Proposal); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProposalRepository) GetProposalForRound(ctx context.Context, requestID, supplierID string, round int) (*models.Proposal, error) {
	args := m.Called(ctx, requestID, supplierID, round)
	if r, ok := args.Get(0).(*models.Proposal); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProposalRepository) GetSubmittedProposals(ctx context.Context, requestID string) ([]models.Proposal, error) {
	args := m.Called(ctx, requestID)
	if r, ok := args.Get(0).([]models.Proposal); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProposalRepository) GetSupplierProposals(ctx context.Context, supplierID string, limit, offset int) ([]models.Proposal, error) {
	args := m.Called(ctx, supplierID, limit, offset)
	if r, ok := args.Get(0).([]models.Proposal); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProposalRepository) LatestSubmittedTotal(ctx context.Context, requestID, supplierID string, beforeRound int) (float64, bool, error) {
	args := m.Called(ctx, requestID, supplierID, beforeRound)
	return args.Get(0).(float64), args.Bool(1), args.Error(2)
}

func (m *MockProposalRepository) GetItems(ctx context.Context, proposalID string) ([]models.ProposalItem, error) {
	args := m.Called(ctx, proposalID)
	if r, ok := args.Get(0).([]models.ProposalItem); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProposalRepository) CreateAttachment(ctx context.Context, att models.ProposalAttachment) (*models.ProposalAttachment, error) {
	args := m.Called(ctx, att)
	if r, ok := args.Get(0).(*models.ProposalAttachment); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockFeedbackRepository struct {
	mock.Mock
}

func (m *MockFeedbackRepository) GetRoundItems(ctx context.Context, requestID string, round int) (map[string]string, error) {
	args := m.Called(ctx, requestID, round)
	if r, ok := args.Get(0).(map[string]string); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockFeedbackRepository) AdvanceRound(ctx context.Context, requestID string, newRound int, feedback []models.RoundItemFeedback, suggestions []models.RoundSuggestion) error {
	args := m.Called(ctx, requestID, newRound, feedback, suggestions)
	return args.Error(0)
}

func (m *MockFeedbackRepository) GetFeedbackForSupplier(ctx context.Context, requestID, supplierID string, round int) ([]models.RoundItemFeedback, error) {
	args := m.Called(ctx, requestID, supplierID, round)
	if r, ok := args.Get(0).([]models.RoundItemFeedback); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockFeedbackRepository) GetSuggestions(ctx context.Context, requestID string, round int) ([]models.RoundSuggestion, error) {
	args := m.Called(ctx, requestID, round)
	if r, ok := args.Get(0).([]models.RoundSuggestion); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockAwardRepository struct {
	mock.Mock
}

func (m *MockAwardRepository) UpsertSelection(ctx context.Context, sel models.AwardSelection) (*models.AwardSelection, error) {
	args := m.Called(ctx, sel)
	if r, ok := args.Get(0).(*models.AwardSelection); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAwardRepository) GetSelectionByID(ctx context.Context, selectionID string) (*models.AwardSelection, error) {
	args := m.Called(ctx, selectionID)
	if r, ok := args.Get(0).(*models.AwardSelection); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAwardRepository) GetPendingSelections(ctx context.Context, limit, offset int) ([]models.AwardSelection, error) {
	args := m.Called(ctx, limit, offset)
	if r, ok := args.Get(0).([]models.AwardSelection); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAwardRepository) ApproveSelection(ctx context.Context, selectionID, approverID string, notes string) (*models.Award, error) {
	args := m.Called(ctx, selectionID, approverID, notes)
	if r, ok := args.Get(0).(*models.Award); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAwardRepository) RejectSelection(ctx context.Context, selectionID, approverID, notes string) (*models.AwardSelection, error) {
	args := m.Called(ctx, selectionID, approverID, notes)
	if r, ok := args.Get(0).(*models.AwardSelection); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAwardRepository) GetAwardByRequest(ctx context.Context, requestID string) (*models.Award, error) {
	args := m.Called(ctx, requestID)
	if r, ok := args.Get(0).(*models.Award); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, userID, title, message, notifType string, relatedID *string) (*models.Notification, error) {
	args := m.Called(ctx, userID, title, message, notifType, relatedID)
	if r, ok := args.Get(0).(*models.Notification); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockNotificationRepository) ListForUser(ctx context.Context, userID string, limit, offset int) ([]models.Notification, error) {
	args := m.Called(ctx, userID, limit, offset)
	if r, ok := args.Get(0).([]models.Notification); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockNotificationRepository) UnreadCount(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockNotificationRepository) MarkRead(ctx context.Context, notificationID, userID string) error {
	args := m.Called(ctx, notificationID, userID)
	return args.Error(0)
}

type MockDirectoryRepository struct {
	mock.Mock
}

func (m *MockDirectoryRepository) GetProfileByUserID(ctx context.Context, userID string) (*models.UserProfile, error) {
	args := m.Called(ctx, userID)
	if r, ok := args.Get(0).(*models.UserProfile); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDirectoryRepository) GetSupplierByEmail(ctx context.Context, email string) (*models.Supplier, error) {
	args := m.Called(ctx, email)
	if r, ok := args.Get(0).(*models.Supplier); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDirectoryRepository) GetSupplierByID(ctx context.Context, supplierID string) (*models.Supplier, error) {
	args := m.Called(ctx, supplierID)
	if r, ok := args.Get(0).(*models.Supplier); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDirectoryRepository) CountActiveSuppliers(ctx context.Context, supplierIDs []string) (int, error) {
	args := m.Called(ctx, supplierIDs)
	return args.Int(0), args.Error(1)
}

type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) Upload(ctx context.Context, path string, content []byte, contentType string) error {
	args := m.Called(ctx, path, content, contentType)
	return args.Error(0)
}

type MockAnalyzer struct {
	mock.Mock
}

func (m *MockAnalyzer) Enabled() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockAnalyzer) Analyze(ctx context.Context, req ai.AnalyzeRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

// --- Test fixtures ---

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func creatorIdentity(profileID string) *auth.Identity {
	return &auth.Identity{
		Profile: &models.UserProfile{ID: profileID, UserID: "user-" + profileID, Role: models.RoleCreator, Email: profileID + "@corp.test", IsActive: true},
		State:   auth.StateConsistent,
	}
}

func approverIdentity(profileID string) *auth.Identity {
	return &auth.Identity{
		Profile: &models.UserProfile{ID: profileID, UserID: "user-" + profileID, Role: models.RoleApprover, Email: profileID + "@corp.test", IsActive: true},
		State:   auth.StateConsistent,
	}
}

func supplierIdentity(profileID, email string) *auth.Identity {
	return &auth.Identity{
		Profile: &models.UserProfile{ID: profileID, UserID: "user-" + profileID, Role: models.RoleSupplier, Email: email, IsActive: true},
		State:   auth.StateConsistent,
	}
}
