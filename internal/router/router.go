package router

import (
	"net/http"

	"github.com/procurehub/procurement-service/internal/handlers"
)

func InitRoutes(
	requestHandler *handlers.RequestHandler,
	proposalHandler *handlers.ProposalHandler,
	roundHandler *handlers.RoundHandler,
	awardHandler *handlers.AwardHandler,
	notificationHandler *handlers.NotificationHandler,
	analysisHandler *handlers.AnalysisHandler,
) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/ping", handlers.PingHandler)

	mux.HandleFunc("GET /api/requests", requestHandler.ListRequests)
	mux.HandleFunc("POST /api/requests/new", requestHandler.CreateRequest)
	mux.HandleFunc("GET /api/requests/my", requestHandler.GetUserRequests)
	mux.HandleFunc("GET /api/requests/{requestId}/status", requestHandler.GetRequestStatus)
	mux.HandleFunc("POST /api/requests/{requestId}/submit", requestHandler.SubmitRequest)
	mux.HandleFunc("POST /api/requests/{requestId}/approve", requestHandler.ApproveRequest)
	mux.HandleFunc("POST /api/requests/{requestId}/reject", requestHandler.RejectRequest)
	mux.HandleFunc("POST /api/requests/{requestId}/cancel", requestHandler.CancelRequest)
	mux.HandleFunc("DELETE /api/requests/{requestId}", requestHandler.DeleteRequest)
	mux.HandleFunc("GET /api/requests/{requestId}/invitations", requestHandler.GetInvitations)

	mux.HandleFunc("POST /api/requests/{requestId}/proposals/draft", proposalHandler.SaveDraft)
	mux.HandleFunc("POST /api/requests/{requestId}/proposals/submit", proposalHandler.SubmitProposal)
	mux.HandleFunc("GET /api/requests/{requestId}/proposals", proposalHandler.ListForRequest)
	mux.HandleFunc("GET /api/proposals/my", proposalHandler.ListMine)
	mux.HandleFunc("POST /api/proposals/{proposalId}/attachments", proposalHandler.AddAttachments)

	mux.HandleFunc("POST /api/requests/{requestId}/rounds/advance", roundHandler.AdvanceRound)
	mux.HandleFunc("GET /api/requests/{requestId}/rounds/feedback", roundHandler.GetRoundFeedback)

	mux.HandleFunc("POST /api/requests/{requestId}/award/select", awardHandler.SelectWinner)
	mux.HandleFunc("GET /api/awards/selections/pending", awardHandler.GetPendingSelections)
	mux.HandleFunc("POST /api/awards/selections/{selectionId}/approve", awardHandler.ApproveSelection)
	mux.HandleFunc("POST /api/awards/selections/{selectionId}/reject", awardHandler.RejectSelection)
	mux.HandleFunc("GET /api/awards/{requestId}", awardHandler.GetAward)

	mux.HandleFunc("GET /api/notifications", notificationHandler.List)
	mux.HandleFunc("GET /api/notifications/unread_count", notificationHandler.UnreadCount)
	mux.HandleFunc("PUT /api/notifications/{notificationId}/read", notificationHandler.MarkRead)

	mux.HandleFunc("POST /api/analysis/proposals", analysisHandler.Analyze)

	return mux
}
