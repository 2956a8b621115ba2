package utils

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/procurehub/procurement-service/internal/models"
)

// SendErrorResponse writes an error as JSON.
func SendErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	errorResponse := models.ErrorResponse{
		StatusCode: statusCode,
		Message:    message,
	}
	if err := json.NewEncoder(w).Encode(errorResponse); err != nil {
		log.Println(err)
	}
}

// ParseLimitOffset parses limit and offset query parameters.
func ParseLimitOffset(limitStr, offsetStr string) (int, int, error) {
	var limit, offset int
	var err error

	if limitStr != "" {
		limit, err = strconv.Atoi(limitStr)
		if err != nil || limit <= 0 || limit > 50 {
			return 0, 0, fmt.Errorf("invalid limit parameter, must be a positive integer [0:50]")
		}
	} else {
		limit = 20
	}

	if offsetStr != "" {
		offset, err = strconv.Atoi(offsetStr)
		if err != nil || offset < 0 {
			return 0, 0, fmt.Errorf("invalid offset parameter, must be a non-negative integer")
		}
	} else {
		offset = 0
	}

	return limit, offset, nil
}

// ItemTotal computes the price of one line item.
func ItemTotal(quantity, unitPrice float64) float64 {
	return quantity * unitPrice
}

// ComputeTotals recomputes a proposal's monetary fields from its items and the
// supplier's contract fee percentage. Client-supplied totals are never trusted.
func ComputeTotals(items []models.ProposalItemInput, feePercentage float64) (subtotal, fee, total float64) {
	for _, item := range items {
		subtotal += ItemTotal(item.Quantity, item.UnitPrice)
	}
	fee = subtotal * feePercentage / 100
	total = subtotal + fee
	return subtotal, fee, total
}

// ContainsRequestStatus checks a request status transition against the allowed set.
func ContainsRequestStatus(validTransitions []models.RequestStatus, newStatus models.RequestStatus) bool {
	for _, validStatus := range validTransitions {
		if validStatus == newStatus {
			return true
		}
	}
	return false
}

// HasRole reports whether the role is one of the allowed roles.
func HasRole(role models.UserRole, allowed ...models.UserRole) bool {
	for _, a := range allowed {
		if role == a {
			return true
		}
	}
	return false
}

// DedupIDs removes duplicate ids while preserving order.
func DedupIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	var out []string
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
