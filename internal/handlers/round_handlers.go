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

// RoundHandler handles round progression and the supplier feedback view.
type RoundHandler struct {
	Service  *services.FeedbackService
	Resolver *auth.Resolver
	Logger   *log.Logger
	Timeout  time.Duration
}

// NewRoundHandler creates a new RoundHandler.
func NewRoundHandler(service *services.FeedbackService, resolver *auth.Resolver, logger *log.Logger, timeout time.Duration) *RoundHandler {
	return &RoundHandler{
		Service:  service,
		Resolver: resolver,
		Logger:   logger,
		Timeout:  timeout,
	}
}

// AdvanceRound handles the creator closing the current round.
func (h *RoundHandler) AdvanceRound(w http.ResponseWriter, r *http.Request) {
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

	var payload models.AdvanceRound
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	request, err := h.Service.AdvanceRound(ctx, identity, r.PathValue("requestId"), payload)
	if err != nil {
		writeError(w, h.Logger, err, "failed to advance round")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err = json.NewEncoder(w).Encode(request); err != nil {
		h.Logger.Println(err)
	}
}

// GetRoundFeedback handles the supplier's feedback view for a round.
func (h *RoundHandler) GetRoundFeedback(w http.ResponseWriter, r *http.Request) {
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

	view, err := h.Service.GetRoundFeedback(ctx, identity, r.PathValue("requestId"), r.URL.Query().Get("round"))
	if err != nil {
		writeError(w, h.Logger, err, "failed to fetch round feedback")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err = json.NewEncoder(w).Encode(view); err != nil {
		h.Logger.Println(err)
	}
}
