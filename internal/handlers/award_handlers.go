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

// AwardHandler handles winner selection and award sign-off endpoints.
type AwardHandler struct {
	Service  *services.AwardService
	Resolver *auth.Resolver
	Logger   *log.Logger
	Timeout  time.Duration
}

// NewAwardHandler creates a new AwardHandler.
func NewAwardHandler(service *services.AwardService, resolver *auth.Resolver, logger *log.Logger, timeout time.Duration) *AwardHandler {
	return &AwardHandler{
		Service:  service,
		Resolver: resolver,
		Logger:   logger,
		Timeout:  timeout,
	}
}

// SelectWinner handles the creator proposing a winning proposal.
func (h *AwardHandler) SelectWinner(w http.ResponseWriter, r *http.Request) {
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

	var sel models.AwardSelect
	if err := json.NewDecoder(r.Body).Decode(&sel); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	selection, err := h.Service.SelectWinner(ctx, identity, r.PathValue("requestId"), sel)
	if err != nil {
		writeError(w, h.Logger, err, "failed to select winner")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err = json.NewEncoder(w).Encode(selection); err != nil {
		h.Logger.Println(err)
	}
}

// GetPendingSelections handles the approver's pending-selections listing.
func (h *AwardHandler) GetPendingSelections(w http.ResponseWriter, r *http.Request) {
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

	selections, err := h.Service.GetPendingSelections(ctx, identity, r.URL.Query().Get("limit"), r.URL.Query().Get("offset"))
	if err != nil {
		writeError(w, h.Logger, err, "failed to fetch pending selections")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err = json.NewEncoder(w).Encode(selections); err != nil {
		h.Logger.Println(err)
	}
}

// ApproveSelection handles the approver finalizing an award.
func (h *AwardHandler) ApproveSelection(w http.ResponseWriter, r *http.Request) {
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

	var decision models.AwardDecision
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&decision)
	}

	award, err := h.Service.ApproveSelection(ctx, identity, r.PathValue("selectionId"), decision)
	if err != nil {
		writeError(w, h.Logger, err, "failed to approve selection")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err = json.NewEncoder(w).Encode(award); err != nil {
		h.Logger.Println(err)
	}
}

// RejectSelection handles the approver sending a selection back.
func (h *AwardHandler) RejectSelection(w http.ResponseWriter, r *http.Request) {
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

	var decision models.AwardDecision
	if err := json.NewDecoder(r.Body).Decode(&decision); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	selection, err := h.Service.RejectSelection(ctx, identity, r.PathValue("selectionId"), decision)
	if err != nil {
		writeError(w, h.Logger, err, "failed to reject selection")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err = json.NewEncoder(w).Encode(selection); err != nil {
		h.Logger.Println(err)
	}
}

// GetAward handles award lookups by request.
func (h *AwardHandler) GetAward(w http.ResponseWriter, r *http.Request) {
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

	award, err := h.Service.GetAward(ctx, identity, r.PathValue("requestId"))
	if err != nil {
		writeError(w, h.Logger, err, "failed to fetch award")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err = json.NewEncoder(w).Encode(award); err != nil {
		h.Logger.Println(err)
	}
}
