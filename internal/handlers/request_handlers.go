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

// RequestHandler handles the purchase request endpoints.
type RequestHandler struct {
	Service  *services.RequestService
	Resolver *auth.Resolver
	Logger   *log.Logger
	Timeout  time.Duration
}

// NewRequestHandler creates a new RequestHandler.
func NewRequestHandler(service *services.RequestService, resolver *auth.Resolver, logger *log.Logger, timeout time.Duration) *RequestHandler {
	return &RequestHandler{
		Service:  service,
		Resolver: resolver,
		Logger:   logger,
		Timeout:  timeout,
	}
}

// CreateRequest handles draft creation.
func (h *RequestHandler) CreateRequest(w http.ResponseWriter, r *http.Request) {
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

	var req models.RequestCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	request, err := h.Service.CreateRequest(ctx, identity, req)
	if err != nil {
		writeError(w, h.Logger, err, "failed to create request")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err = json.NewEncoder(w).Encode(request); err != nil {
		h.Logger.Println(err)
	}
}

// GetUserRequests handles the creator's own-requests listing.
func (h *RequestHandler) GetUserRequests(w http.ResponseWriter, r *http.Request) {
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

	requests, err := h.Service.GetUserRequests(ctx, identity, r.URL.Query().Get("limit"), r.URL.Query().Get("offset"))
	if err != nil {
		writeError(w, h.Logger, err, "failed to fetch requests")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err = json.NewEncoder(w).Encode(requests); err != nil {
		h.Logger.Println(err)
	}
}

// ListRequests handles the approver dashboard listing with status filters.
func (h *RequestHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
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

	requests, err := h.Service.ListRequests(ctx, identity,
		r.URL.Query().Get("limit"), r.URL.Query().Get("offset"),
		r.URL.Query()["status"], r.URL.Query()["event_type"])
	if err != nil {
		writeError(w, h.Logger, err, "failed to fetch requests")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err = json.NewEncoder(w).Encode(requests); err != nil {
		h.Logger.Println(err)
	}
}

// GetRequestStatus handles status lookups.
func (h *RequestHandler) GetRequestStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	identity, ok := resolveIdentity(ctx, w, r, h.Resolver, h.Logger)
	if !ok {
		return
	}

	status, err := h.Service.GetRequestStatus(ctx, identity, r.PathValue("requestId"))
	if err != nil {
		writeError(w, h.Logger, err, "failed to fetch request status")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err = json.NewEncoder(w).Encode(status); err != nil {
		h.Logger.Println(err)
	}
}

// SubmitRequest handles the draft-to-pending transition with invitations.
func (h *RequestHandler) SubmitRequest(w http.ResponseWriter, r *http.Request) {
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

	var submit models.RequestSubmit
	if err := json.NewDecoder(r.Body).Decode(&submit); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	request, err := h.Service.SubmitRequest(ctx, identity, r.PathValue("requestId"), submit)
	if err != nil {
		writeError(w, h.Logger, err, "failed to submit request")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err = json.NewEncoder(w).Encode(request); err != nil {
		h.Logger.Println(err)
	}
}

// ApproveRequest handles approver activation of a pending request.
func (h *RequestHandler) ApproveRequest(w http.ResponseWriter, r *http.Request) {
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

	var decision models.ApprovalDecision
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&decision)
	}

	request, err := h.Service.ApproveRequest(ctx, identity, r.PathValue("requestId"), decision.Comments)
	if err != nil {
		writeError(w, h.Logger, err, "failed to approve request")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err = json.NewEncoder(w).Encode(request); err != nil {
		h.Logger.Println(err)
	}
}

// RejectRequest handles approver rejection of a pending request.
func (h *RequestHandler) RejectRequest(w http.ResponseWriter, r *http.Request) {
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

	var decision models.ApprovalDecision
	if err := json.NewDecoder(r.Body).Decode(&decision); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	request, err := h.Service.RejectRequest(ctx, identity, r.PathValue("requestId"), decision.Comments)
	if err != nil {
		writeError(w, h.Logger, err, "failed to reject request")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err = json.NewEncoder(w).Encode(request); err != nil {
		h.Logger.Println(err)
	}
}

// CancelRequest handles creator withdrawal of a request.
func (h *RequestHandler) CancelRequest(w http.ResponseWriter, r *http.Request) {
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

	request, err := h.Service.CancelRequest(ctx, identity, r.PathValue("requestId"))
	if err != nil {
		writeError(w, h.Logger, err, "failed to cancel request")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err = json.NewEncoder(w).Encode(request); err != nil {
		h.Logger.Println(err)
	}
}

// DeleteRequest handles permanent removal of a request.
func (h *RequestHandler) DeleteRequest(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	identity, ok := resolveIdentity(ctx, w, r, h.Resolver, h.Logger)
	if !ok {
		return
	}

	if err := h.Service.DeleteRequest(ctx, identity, r.PathValue("requestId")); err != nil {
		writeError(w, h.Logger, err, "failed to delete request")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetInvitations handles the invitation listing for one request.
func (h *RequestHandler) GetInvitations(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	identity, ok := resolveIdentity(ctx, w, r, h.Resolver, h.Logger)
	if !ok {
		return
	}

	invitations, err := h.Service.GetInvitations(ctx, identity, r.PathValue("requestId"))
	if err != nil {
		writeError(w, h.Logger, err, "failed to fetch invitations")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err = json.NewEncoder(w).Encode(invitations); err != nil {
		h.Logger.Println(err)
	}
}
