package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/procurehub/procurement-service/internal/auth"
	"github.com/procurehub/procurement-service/internal/models"
	"github.com/procurehub/procurement-service/internal/services"
	"github.com/procurehub/procurement-service/internal/utils"
)

// ProposalHandler handles the supplier proposal endpoints.
type ProposalHandler struct {
	Service  *services.ProposalService
	Resolver *auth.Resolver
	Logger   *log.Logger
	Timeout  time.Duration
}

// NewProposalHandler creates a new ProposalHandler.
func NewProposalHandler(service *services.ProposalService, resolver *auth.Resolver, logger *log.Logger, timeout time.Duration) *ProposalHandler {
	return &ProposalHandler{
		Service:  service,
		Resolver: resolver,
		Logger:   logger,
		Timeout:  timeout,
	}
}

// SaveDraft handles draft upserts for the current round.
func (h *ProposalHandler) SaveDraft(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid method, only POST is allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	identity, ok := resolveIdentity(ctx, w, r, h.Resolver, h.Logger)
	if !ok {
		return
	}

	var draft models.ProposalDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	proposal, err := h.Service.SaveDraft(ctx, identity, r.PathValue("requestId"), draft)
	if err != nil {
		writeError(w, h.Logger, err, "failed to save draft")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err = json.NewEncoder(w).Encode(proposal); err != nil {
		h.Logger.Println(err)
	}
}

// SubmitProposal handles proposal submission for the current round.
func (h *ProposalHandler) SubmitProposal(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid method, only POST is allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	identity, ok := resolveIdentity(ctx, w, r, h.Resolver, h.Logger)
	if !ok {
		return
	}

	var draft models.ProposalDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	proposal, err := h.Service.SubmitProposal(ctx, identity, r.PathValue("requestId"), draft)
	if err != nil {
		writeError(w, h.Logger, err, "failed to submit proposal")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err = json.NewEncoder(w).Encode(proposal); err != nil {
		h.Logger.Println(err)
	}
}

// ListForRequest handles the creator/approver view of a request's proposals.
func (h *ProposalHandler) ListForRequest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid method, only GET is allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	identity, ok := resolveIdentity(ctx, w, r, h.Resolver, h.Logger)
	if !ok {
		return
	}

	proposals, err := h.Service.ListForRequest(ctx, identity, r.PathValue("requestId"))
	if err != nil {
		writeError(w, h.Logger, err, "failed to fetch proposals")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err = json.NewEncoder(w).Encode(proposals); err != nil {
		h.Logger.Println(err)
	}
}

// ListMine handles the supplier's own-proposals listing.
func (h *ProposalHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid method, only GET is allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	identity, ok := resolveIdentity(ctx, w, r, h.Resolver, h.Logger)
	if !ok {
		return
	}

	proposals, err := h.Service.ListMine(ctx, identity, r.URL.Query().Get("limit"), r.URL.Query().Get("offset"))
	if err != nil {
		writeError(w, h.Logger, err, "failed to fetch proposals")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err = json.NewEncoder(w).Encode(proposals); err != nil {
		h.Logger.Println(err)
	}
}

// AddAttachments handles file uploads for one proposal.
func (h *ProposalHandler) AddAttachments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid method, only POST is allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	identity, ok := resolveIdentity(ctx, w, r, h.Resolver, h.Logger)
	if !ok {
		return
	}

	var files []models.AttachmentUpload
	if err := json.NewDecoder(r.Body).Decode(&files); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	results, err := h.Service.AddAttachments(ctx, identity, r.PathValue("proposalId"), files)
	if err != nil {
		writeError(w, h.Logger, err, "failed to upload attachments")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err = json.NewEncoder(w).Encode(results); err != nil {
		h.Logger.Println(err)
	}
}
