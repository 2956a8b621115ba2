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

// NotificationHandler handles the per-user notification feed.
type NotificationHandler struct {
	Service  *services.NotificationService
	Resolver *auth.Resolver
	Logger   *log.Logger
	Timeout  time.Duration
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(service *services.NotificationService, resolver *auth.Resolver, logger *log.Logger, timeout time.Duration) *NotificationHandler {
	return &NotificationHandler{
		Service:  service,
		Resolver: resolver,
		Logger:   logger,
		Timeout:  timeout,
	}
}

// List handles the caller's notification listing.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
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

	notifications, err := h.Service.List(ctx, identity, r.URL.Query().Get("limit"), r.URL.Query().Get("offset"))
	if err != nil {
		writeError(w, h.Logger, err, "failed to fetch notifications")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err = json.NewEncoder(w).Encode(notifications); err != nil {
		h.Logger.Println(err)
	}
}

// UnreadCount handles the unread-badge polling endpoint.
func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
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

	count, err := h.Service.UnreadCount(ctx, identity)
	if err != nil {
		writeError(w, h.Logger, err, "failed to count notifications")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err = json.NewEncoder(w).Encode(map[string]int{"unread": count}); err != nil {
		h.Logger.Println(err)
	}
}

// MarkRead handles marking one notification as read.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid method, only PUT is allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	identity, ok := resolveIdentity(ctx, w, r, h.Resolver, h.Logger)
	if !ok {
		return
	}

	if err := h.Service.MarkRead(ctx, identity, r.PathValue("notificationId")); err != nil {
		writeError(w, h.Logger, err, "failed to mark notification read")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
