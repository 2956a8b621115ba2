package handlers

import (
	"context"
	"log"
	"net/http"

	"github.com/procurehub/procurement-service/internal/auth"
	"github.com/procurehub/procurement-service/internal/models"
	"github.com/procurehub/procurement-service/internal/utils"

	"github.com/getsentry/sentry-go"
)

const (
	headerUserID      = "X-User-Id"
	headerSessionRole = "X-Session-Role"
)

// resolveIdentity reads the caller's identity headers and resolves them
// against the profile store, writing the error response itself on failure.
func resolveIdentity(ctx context.Context, w http.ResponseWriter, r *http.Request, resolver *auth.Resolver, logger *log.Logger) (*auth.Identity, bool) {
	identity, err := resolver.Resolve(ctx, r.Header.Get(headerUserID), r.Header.Get(headerSessionRole))
	if err != nil {
		writeError(w, logger, err, "failed to resolve identity")
		return nil, false
	}
	return identity, true
}

// writeError maps a service error onto the HTTP response. Known errors carry
// their own status; anything else is a 500 reported to Sentry.
func writeError(w http.ResponseWriter, logger *log.Logger, err error, fallback string) {
	if errorResponse, ok := err.(*models.ErrorResponse); ok {
		logger.Println(err)
		utils.SendErrorResponse(w, errorResponse.StatusCode, errorResponse.Message)
		return
	}
	logger.Println(err)
	sentry.CaptureException(err)
	utils.SendErrorResponse(w, http.StatusInternalServerError, fallback)
}
