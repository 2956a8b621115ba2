package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/procurehub/procurement-service/internal/auth"
	"github.com/procurehub/procurement-service/internal/services"
	"github.com/procurehub/procurement-service/internal/utils"
)

// AnalysisHandler handles proposal analysis requests.
type AnalysisHandler struct {
	Service  *services.AnalysisService
	Resolver *auth.Resolver
	Logger   *log.Logger
	Timeout  time.Duration
}

// NewAnalysisHandler creates a new AnalysisHandler. The timeout here is wider
// than the default because the analysis service is slow by nature.
func NewAnalysisHandler(service *services.AnalysisService, resolver *auth.Resolver, logger *log.Logger, timeout time.Duration) *AnalysisHandler {
	return &AnalysisHandler{
		Service:  service,
		Resolver: resolver,
		Logger:   logger,
		Timeout:  timeout,
	}
}

// Analyze handles the comparative analysis of a request's proposals.
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
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

	var payload struct {
		RequestID string `json:"requestId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	analysis, err := h.Service.Analyze(ctx, identity, payload.RequestID)
	if err != nil {
		writeError(w, h.Logger, err, "failed to analyze proposals")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err = json.NewEncoder(w).Encode(map[string]string{"analysis": analysis}); err != nil {
		h.Logger.Println(err)
	}
}
