package services

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/procurehub/procurement-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func activeRequest(id, creatorID string, round int) *models.Request {
	return &models.Request{
		ID: id, CreatorID: creatorID, Status: models.ActiveRequest,
		Title: "Laptops", CurrentRound: round, MaxRounds: 3,
	}
}

func TestSubmitProposalRecomputesTotals(t *testing.T) {
	requests := new(MockRequestRepository)
	requests.On("GetRequestByID", mock.Anything, "req-1").Return(activeRequest("req-1", "p1", 1), nil)
	requests.On("HasInvitation", mock.Anything, "req-1", "sup-1").Return(true, nil)

	directory := new(MockDirectoryRepository)
	directory.On("GetSupplierByEmail", mock.Anything, "s@acme.test").Return(&models.Supplier{
		ID: "sup-1", Name: "Acme", ContractFeePercentage: 10, IsActive: true,
	}, nil)

	repo := new(MockProposalRepository)
	repo.On("GetProposalForRound", mock.Anything, "req-1", "sup-1", 1).Return(nil, nil)
	repo.On("LatestSubmittedTotal", mock.Anything, "req-1", "sup-1", 1).Return(0.0, false, nil)
	repo.On("UpsertDraft", mock.Anything, mock.MatchedBy(func(p models.Proposal) bool {
		// 2 x 500 = 1000 subtotal, 10% fee, 1100 total
		return p.Subtotal == 1000 && p.FeeAmount == 100 && p.TotalAmount == 1100
	}), mock.Anything).Return(&models.Proposal{ID: "prop-1", RequestID: "req-1", SupplierID: "sup-1", RoundNumber: 1, TotalAmount: 1100}, nil)
	repo.On("SubmitProposal", mock.Anything, "prop-1").Return(&models.Proposal{
		ID: "prop-1", RequestID: "req-1", SupplierID: "sup-1", RoundNumber: 1,
		TotalAmount: 1100, Status: models.SubmittedProposal,
	}, nil)

	notifications := new(MockNotificationRepository)
	notifications.On("Create", mock.Anything, "p1", "Proposal received", mock.Anything, models.NotifProposal, mock.Anything).Return(&models.Notification{}, nil)

	service := NewProposalService(repo, requests, directory, notifications, new(MockUploader), testLogger())

	proposal, err := service.SubmitProposal(context.Background(), supplierIdentity("p9", "s@acme.test"), "req-1",
		models.ProposalDraft{Items: []models.ProposalItemInput{{ItemName: "Laptop", Quantity: 2, UnitPrice: 500}}})

	assert.NoError(t, err)
	assert.Equal(t, models.SubmittedProposal, proposal.Status)
	repo.AssertExpectations(t)
}

func TestSubmitProposalRequiresItems(t *testing.T) {
	requests := new(MockRequestRepository)
	requests.On("HasInvitation", mock.Anything, "req-1", "sup-1").Return(true, nil)

	directory := new(MockDirectoryRepository)
	directory.On("GetSupplierByEmail", mock.Anything, "s@acme.test").Return(&models.Supplier{ID: "sup-1", IsActive: true}, nil)

	service := NewProposalService(new(MockProposalRepository), requests, directory, new(MockNotificationRepository), new(MockUploader), testLogger())

	_, err := service.SubmitProposal(context.Background(), supplierIdentity("p9", "s@acme.test"), "req-1", models.ProposalDraft{})

	var errResp *models.ErrorResponse
	assert.ErrorAs(t, err, &errResp)
	assert.Equal(t, 400, errResp.StatusCode)
}

func TestSubmitProposalRejectsNonPositivePrices(t *testing.T) {
	requests := new(MockRequestRepository)
	requests.On("HasInvitation", mock.Anything, "req-1", "sup-1").Return(true, nil)

	directory := new(MockDirectoryRepository)
	directory.On("GetSupplierByEmail", mock.Anything, "s@acme.test").Return(&models.Supplier{ID: "sup-1", IsActive: true}, nil)

	service := NewProposalService(new(MockProposalRepository), requests, directory, new(MockNotificationRepository), new(MockUploader), testLogger())

	_, err := service.SubmitProposal(context.Background(), supplierIdentity("p9", "s@acme.test"), "req-1",
		models.ProposalDraft{Items: []models.ProposalItemInput{{ItemName: "Laptop", Quantity: 1, UnitPrice: 0}}})

	var errResp *models.ErrorResponse
	assert.ErrorAs(t, err, &errResp)
	assert.Equal(t, 400, errResp.StatusCode)
}

func TestSubmitProposalEnforcesInvitation(t *testing.T) {
	requests := new(MockRequestRepository)
	requests.On("HasInvitation", mock.Anything, "req-1", "sup-1").Return(false, nil)

	directory := new(MockDirectoryRepository)
	directory.On("GetSupplierByEmail", mock.Anything, "s@acme.test").Return(&models.Supplier{ID: "sup-1", IsActive: true}, nil)

	service := NewProposalService(new(MockProposalRepository), requests, directory, new(MockNotificationRepository), new(MockUploader), testLogger())

	_, err := service.SubmitProposal(context.Background(), supplierIdentity("p9", "s@acme.test"), "req-1",
		models.ProposalDraft{Items: []models.ProposalItemInput{{ItemName: "Laptop", Quantity: 1, UnitPrice: 100}}})

	var errResp *models.ErrorResponse
	assert.ErrorAs(t, err, &errResp)
	assert.Equal(t, 403, errResp.StatusCode)
}

func TestSubmitProposalRejectsPriceIncreaseAcrossRounds(t *testing.T) {
	requests := new(MockRequestRepository)
	requests.On("GetRequestByID", mock.Anything, "req-1").Return(activeRequest("req-1", "p1", 2), nil)
	requests.On("HasInvitation", mock.Anything, "req-1", "sup-1").Return(true, nil)

	directory := new(MockDirectoryRepository)
	directory.On("GetSupplierByEmail", mock.Anything, "s@acme.test").Return(&models.Supplier{
		ID: "sup-1", ContractFeePercentage: 0, IsActive: true,
	}, nil)

	repo := new(MockProposalRepository)
	repo.On("GetProposalForRound", mock.Anything, "req-1", "sup-1", 2).Return(nil, nil)
	repo.On("LatestSubmittedTotal", mock.Anything, "req-1", "sup-1", 2).Return(1000.0, true, nil)

	service := NewProposalService(repo, requests, directory, new(MockNotificationRepository), new(MockUploader), testLogger())

	// 1 x 1200 beats last round's 1000
	_, err := service.SubmitProposal(context.Background(), supplierIdentity("p9", "s@acme.test"), "req-1",
		models.ProposalDraft{Items: []models.ProposalItemInput{{ItemName: "Laptop", Quantity: 1, UnitPrice: 1200}}})

	var errResp *models.ErrorResponse
	assert.ErrorAs(t, err, &errResp)
	assert.Equal(t, 400, errResp.StatusCode)
	repo.AssertNotCalled(t, "UpsertDraft", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmitProposalOncePerRound(t *testing.T) {
	requests := new(MockRequestRepository)
	requests.On("GetRequestByID", mock.Anything, "req-1").Return(activeRequest("req-1", "p1", 1), nil)
	requests.On("HasInvitation", mock.Anything, "req-1", "sup-1").Return(true, nil)

	directory := new(MockDirectoryRepository)
	directory.On("GetSupplierByEmail", mock.Anything, "s@acme.test").Return(&models.Supplier{ID: "sup-1", IsActive: true}, nil)

	repo := new(MockProposalRepository)
	repo.On("GetProposalForRound", mock.Anything, "req-1", "sup-1", 1).Return(&models.Proposal{
		ID: "prop-1", Status: models.SubmittedProposal,
	}, nil)

	service := NewProposalService(repo, requests, directory, new(MockNotificationRepository), new(MockUploader), testLogger())

	_, err := service.SubmitProposal(context.Background(), supplierIdentity("p9", "s@acme.test"), "req-1",
		models.ProposalDraft{Items: []models.ProposalItemInput{{ItemName: "Laptop", Quantity: 1, UnitPrice: 100}}})

	var errResp *models.ErrorResponse
	assert.ErrorAs(t, err, &errResp)
	assert.Equal(t, 400, errResp.StatusCode)
}

func TestSubmitProposalSurvivesNotificationFailure(t *testing.T) {
	requests := new(MockRequestRepository)
	requests.On("GetRequestByID", mock.Anything, "req-1").Return(activeRequest("req-1", "p1", 1), nil)
	requests.On("HasInvitation", mock.Anything, "req-1", "sup-1").Return(true, nil)

	directory := new(MockDirectoryRepository)
	directory.On("GetSupplierByEmail", mock.Anything, "s@acme.test").Return(&models.Supplier{ID: "sup-1", Name: "Acme", IsActive: true}, nil)

	repo := new(MockProposalRepository)
	repo.On("GetProposalForRound", mock.Anything, "req-1", "sup-1", 1).Return(nil, nil)
	repo.On("LatestSubmittedTotal", mock.Anything, "req-1", "sup-1", 1).Return(0.0, false, nil)
	repo.On("UpsertDraft", mock.Anything, mock.Anything, mock.Anything).Return(&models.Proposal{ID: "prop-1"}, nil)
	repo.On("SubmitProposal", mock.Anything, "prop-1").Return(&models.Proposal{ID: "prop-1", Status: models.SubmittedProposal}, nil)

	notifications := new(MockNotificationRepository)
	notifications.On("Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("unavailable"))

	service := NewProposalService(repo, requests, directory, notifications, new(MockUploader), testLogger())

	proposal, err := service.SubmitProposal(context.Background(), supplierIdentity("p9", "s@acme.test"), "req-1",
		models.ProposalDraft{Items: []models.ProposalItemInput{{ItemName: "Laptop", Quantity: 1, UnitPrice: 100}}})

	assert.NoError(t, err)
	assert.Equal(t, models.SubmittedProposal, proposal.Status)
}

func TestListForRequestBlocksSuppliers(t *testing.T) {
	requests := new(MockRequestRepository)
	requests.On("GetRequestByID", mock.Anything, "req-1").Return(activeRequest("req-1", "p1", 1), nil)

	service := NewProposalService(new(MockProposalRepository), requests, new(MockDirectoryRepository), new(MockNotificationRepository), new(MockUploader), testLogger())

	_, err := service.ListForRequest(context.Background(), supplierIdentity("p9", "s@acme.test"), "req-1")

	var errResp *models.ErrorResponse
	assert.ErrorAs(t, err, &errResp)
	assert.Equal(t, 403, errResp.StatusCode)
}

func TestAddAttachmentsSkipsFailedUploads(t *testing.T) {
	repo := new(MockProposalRepository)
	repo.On("GetProposalByID", mock.Anything, "prop-1").Return(&models.Proposal{ID: "prop-1", SupplierID: "sup-1"}, nil)
	repo.On("CreateAttachment", mock.Anything, mock.Anything).Return(&models.ProposalAttachment{}, nil)

	directory := new(MockDirectoryRepository)
	directory.On("GetSupplierByEmail", mock.Anything, "s@acme.test").Return(&models.Supplier{ID: "sup-1", IsActive: true}, nil)

	uploader := new(MockUploader)
	uploader.On("Upload", mock.Anything, "proposals/prop-1/quote.pdf", mock.Anything, mock.Anything).Return(nil)
	uploader.On("Upload", mock.Anything, "proposals/prop-1/broken.pdf", mock.Anything, mock.Anything).Return(errors.New("storage down"))

	service := NewProposalService(repo, new(MockRequestRepository), directory, new(MockNotificationRepository), uploader, testLogger())

	content := base64.StdEncoding.EncodeToString([]byte("pdf bytes"))
	results, err := service.AddAttachments(context.Background(), supplierIdentity("p9", "s@acme.test"), "prop-1",
		[]models.AttachmentUpload{
			{FileName: "quote.pdf", ContentBase64: content},
			{FileName: "broken.pdf", ContentBase64: content},
		})

	assert.NoError(t, err)
	assert.Len(t, results, 2)
	assert.True(t, results[0].Uploaded)
	assert.False(t, results[1].Uploaded)
	assert.NotEmpty(t, results[1].Reason)
	repo.AssertNumberOfCalls(t, "CreateAttachment", 1)
}

func TestAddAttachmentsRejectsForeignProposal(t *testing.T) {
	repo := new(MockProposalRepository)
	repo.On("GetProposalByID", mock.Anything, "prop-1").Return(&models.Proposal{ID: "prop-1", SupplierID: "sup-2"}, nil)

	directory := new(MockDirectoryRepository)
	directory.On("GetSupplierByEmail", mock.Anything, "s@acme.test").Return(&models.Supplier{ID: "sup-1", IsActive: true}, nil)

	service := NewProposalService(repo, new(MockRequestRepository), directory, new(MockNotificationRepository), new(MockUploader), testLogger())

	_, err := service.AddAttachments(context.Background(), supplierIdentity("p9", "s@acme.test"), "prop-1",
		[]models.AttachmentUpload{{FileName: "quote.pdf", ContentBase64: "aGk="}})

	var errResp *models.ErrorResponse
	assert.ErrorAs(t, err, &errResp)
	assert.Equal(t, 403, errResp.StatusCode)
}
