package handlers

import (
	"fmt"
	"net/http"

	"github.com/procurehub/procurement-service/internal/utils"
)

// PingHandler reports service liveness.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid method, only GET is allowed")
		return
	}
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "ok")
}
