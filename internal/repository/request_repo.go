package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/procurehub/procurement-service/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

const requestColumns = `id, request_number, creator_id, event_type, title, description, internal_budget,
	status, round_status, max_rounds, current_round, round_deadline,
	approved_by, approved_at, approval_comments, created_at, updated_at`

// RequestRepository is the interface for working with purchase requests and
// their supplier invitations.
type RequestRepository interface {
	CreateRequest(ctx context.Context, creatorID string, req models.RequestCreate) (*models.Request, error)
	GetRequestByID(ctx context.Context, requestID string) (*models.Request, error)
	GetUserRequests(ctx context.Context, creatorID string, limit, offset int) ([]models.Request, error)
	ListRequests(ctx context.Context, limit, offset int, statuses, eventTypes []string) ([]models.Request, error)
	SubmitRequest(ctx context.Context, requestID string) (*models.Request, error)
	ApproveRequest(ctx context.Context, requestID, approverID, comments string) (*models.Request, error)
	RejectRequest(ctx context.Context, requestID, comments string) (*models.Request, error)
	CancelRequest(ctx context.Context, requestID string) (*models.Request, error)
	DeleteRequest(ctx context.Context, requestID string) error
	CreateInvitations(ctx context.Context, requestID string, supplierIDs []string) ([]models.Invitation, error)
	GetInvitations(ctx context.Context, requestID string) ([]models.Invitation, error)
	HasInvitation(ctx context.Context, requestID, supplierID string) (bool, error)
	StampInvitationsNotified(ctx context.Context, requestID string) error
}

// PostgresRequestRepository is the RequestRepository implementation backed by Postgres.
type PostgresRequestRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresRequestRepository creates a new PostgresRequestRepository.
func NewPostgresRequestRepository(db *pgxpool.Pool) *PostgresRequestRepository {
	return &PostgresRequestRepository{DB: db}
}

func scanRequest(row pgx.Row) (*models.Request, error) {
	var r models.Request
	err := row.Scan(
		&r.ID,
		&r.RequestNumber,
		&r.CreatorID,
		&r.EventType,
		&r.Title,
		&r.Description,
		&r.InternalBudget,
		&r.Status,
		&r.RoundStatus,
		&r.MaxRounds,
		&r.CurrentRound,
		&r.RoundDeadline,
		&r.ApprovedBy,
		&r.ApprovedAt,
		&r.ApprovalComments,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// CreateRequest inserts a new draft request. The human-readable request number
// is derived from the year and the id prefix.
func (r *PostgresRequestRepository) CreateRequest(ctx context.Context, creatorID string, req models.RequestCreate) (*models.Request, error) {
	id := uuid.New().String()
	now := time.Now().UTC()
	requestNumber := fmt.Sprintf("REQ-%d-%s", now.Year(), strings.ToUpper(id[:6]))

	maxRounds := req.MaxRounds
	if maxRounds < 1 {
		maxRounds = 1
	}

	query := `INSERT INTO requests (id, request_number, creator_id, event_type, title, description,
	              internal_budget, status, max_rounds, current_round, round_deadline, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)
	          RETURNING ` + requestColumns
	return scanRequest(r.DB.QueryRow(ctx, query,
		id,
		requestNumber,
		creatorID,
		req.EventType,
		req.Title,
		req.Description,
		req.InternalBudget,
		models.DraftRequest,
		maxRounds,
		1,
		req.RoundDeadline,
		now))
}

// GetRequestByID returns one request.
func (r *PostgresRequestRepository) GetRequestByID(ctx context.Context, requestID string) (*models.Request, error) {
	query := `SELECT ` + requestColumns + ` FROM requests WHERE id = $1`
	req, err := scanRequest(r.DB.QueryRow(ctx, query, requestID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.NewNotFoundError("request not found")
	}
	return req, err
}

// GetUserRequests returns a creator's requests, newest first.
func (r *PostgresRequestRepository) GetUserRequests(ctx context.Context, creatorID string, limit, offset int) ([]models.Request, error) {
	query := `SELECT ` + requestColumns + ` FROM requests
	          WHERE creator_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.DB.Query(ctx, query, creatorID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequests(rows)
}

// ListRequests returns requests, optionally filtered by status and event type.
func (r *PostgresRequestRepository) ListRequests(ctx context.Context, limit, offset int, statuses, eventTypes []string) ([]models.Request, error) {
	query := `SELECT ` + requestColumns + ` FROM requests`
	var args []interface{}
	var conditions []string
	argIndex := 1

	if len(statuses) > 0 {
		conditions = append(conditions, fmt.Sprintf("status = ANY($%d)", argIndex))
		args = append(args, pq.Array(statuses))
		argIndex++
	}
	if len(eventTypes) > 0 {
		conditions = append(conditions, fmt.Sprintf("event_type = ANY($%d)", argIndex))
		args = append(args, pq.Array(eventTypes))
		argIndex++
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, limit, offset)

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequests(rows)
}

func collectRequests(rows pgx.Rows) ([]models.Request, error) {
	var requests []models.Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, *req)
	}
	return requests, rows.Err()
}

// SubmitRequest moves a draft to pending approval and resets the round counter.
func (r *PostgresRequestRepository) SubmitRequest(ctx context.Context, requestID string) (*models.Request, error) {
	query := `UPDATE requests SET status = $1, current_round = 1, updated_at = now()
	          WHERE id = $2 RETURNING ` + requestColumns
	return scanRequest(r.DB.QueryRow(ctx, query, models.PendingRequest, requestID))
}

// ApproveRequest activates a pending request and stamps the approval metadata.
func (r *PostgresRequestRepository) ApproveRequest(ctx context.Context, requestID, approverID, comments string) (*models.Request, error) {
	query := `UPDATE requests SET status = $1, round_status = $2, approved_by = $3, approved_at = now(),
	              approval_comments = NULLIF($4, ''), updated_at = now()
	          WHERE id = $5 RETURNING ` + requestColumns
	return scanRequest(r.DB.QueryRow(ctx, query,
		models.ActiveRequest, models.AcceptingProposals, approverID, comments, requestID))
}

// RejectRequest sends a pending request back to draft with the approver's comments.
func (r *PostgresRequestRepository) RejectRequest(ctx context.Context, requestID, comments string) (*models.Request, error) {
	query := `UPDATE requests SET status = $1, approval_comments = $2, updated_at = now()
	          WHERE id = $3 RETURNING ` + requestColumns
	return scanRequest(r.DB.QueryRow(ctx, query, models.DraftRequest, comments, requestID))
}

// CancelRequest marks a request cancelled. Terminal.
func (r *PostgresRequestRepository) CancelRequest(ctx context.Context, requestID string) (*models.Request, error) {
	query := `UPDATE requests SET status = $1, round_status = NULL, updated_at = now()
	          WHERE id = $2 RETURNING ` + requestColumns
	return scanRequest(r.DB.QueryRow(ctx, query, models.CancelledRequest, requestID))
}

// DeleteRequest removes a request. Dependent proposals, invitations, feedback,
// suggestions, selections and awards go with it via ON DELETE CASCADE, so the
// delete works at any status, awarded included.
func (r *PostgresRequestRepository) DeleteRequest(ctx context.Context, requestID string) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM requests WHERE id = $1`, requestID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.NewNotFoundError("request not found")
	}
	return nil
}

// CreateInvitations inserts one invitation per supplier and bumps the
// suppliers' invitation counters. A supplier already holding an invitation for
// the request is left untouched, so resubmission after a rejection is safe.
func (r *PostgresRequestRepository) CreateInvitations(ctx context.Context, requestID string, supplierIDs []string) ([]models.Invitation, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()
	invitations := make([]models.Invitation, 0, len(supplierIDs))
	inserted := make([]string, 0, len(supplierIDs))
	for _, supplierID := range supplierIDs {
		inv := models.Invitation{
			ID:         uuid.New().String(),
			RequestID:  requestID,
			SupplierID: supplierID,
			InvitedAt:  now,
		}
		tag, err := tx.Exec(ctx, `INSERT INTO request_invitations (id, request_id, supplier_id, invited_at)
		                          VALUES ($1, $2, $3, $4)
		                          ON CONFLICT (request_id, supplier_id) DO NOTHING`,
			inv.ID, inv.RequestID, inv.SupplierID, inv.InvitedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to insert invitation: %w", err)
		}
		if tag.RowsAffected() == 0 {
			continue
		}
		inserted = append(inserted, supplierID)
		invitations = append(invitations, inv)
	}

	if len(inserted) > 0 {
		_, err = tx.Exec(ctx, `UPDATE suppliers SET total_invitations = total_invitations + 1, updated_at = now()
		                       WHERE id = ANY($1)`, pq.Array(inserted))
		if err != nil {
			return nil, err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	return invitations, nil
}

// GetInvitations returns a request's invitations.
func (r *PostgresRequestRepository) GetInvitations(ctx context.Context, requestID string) ([]models.Invitation, error) {
	query := `SELECT id, request_id, supplier_id, invited_at, notified_at
	          FROM request_invitations WHERE request_id = $1 ORDER BY invited_at`
	rows, err := r.DB.Query(ctx, query, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invitations []models.Invitation
	for rows.Next() {
		var inv models.Invitation
		if err := rows.Scan(&inv.ID, &inv.RequestID, &inv.SupplierID, &inv.InvitedAt, &inv.NotifiedAt); err != nil {
			return nil, err
		}
		invitations = append(invitations, inv)
	}
	return invitations, rows.Err()
}

// HasInvitation checks supplier eligibility for a request.
func (r *PostgresRequestRepository) HasInvitation(ctx context.Context, requestID, supplierID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM request_invitations WHERE request_id = $1 AND supplier_id = $2)`
	err := r.DB.QueryRow(ctx, query, requestID, supplierID).Scan(&exists)
	return exists, err
}

// StampInvitationsNotified records that the invited suppliers were notified.
func (r *PostgresRequestRepository) StampInvitationsNotified(ctx context.Context, requestID string) error {
	_, err := r.DB.Exec(ctx, `UPDATE request_invitations SET notified_at = now() WHERE request_id = $1`, requestID)
	return err
}
