package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/procurehub/procurement-service/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const selectionColumns = `id, request_id, selected_proposal_id, selected_supplier_id, selected_amount,
	is_lowest_price, creator_justification, selected_by, selected_at, status,
	approved_by, approved_at, approval_notes`

const awardColumns = `id, request_id, winning_proposal_id, winning_supplier_id, awarded_amount,
	is_lowest_price, justification, awarded_by, awarded_at`

// AwardRepository is the interface for award selections and awards.
type AwardRepository interface {
	UpsertSelection(ctx context.Context, sel models.AwardSelection) (*models.AwardSelection, error)
	GetSelectionByID(ctx context.Context, selectionID string) (*models.AwardSelection, error)
	GetPendingSelections(ctx context.Context, limit, offset int) ([]models.AwardSelection, error)
	ApproveSelection(ctx context.Context, selectionID, approverID string, notes string) (*models.Award, error)
	RejectSelection(ctx context.Context, selectionID, approverID, notes string) (*models.AwardSelection, error)
	GetAwardByRequest(ctx context.Context, requestID string) (*models.Award, error)
}

// PostgresAwardRepository is the AwardRepository implementation backed by Postgres.
type PostgresAwardRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresAwardRepository creates a new PostgresAwardRepository.
func NewPostgresAwardRepository(db *pgxpool.Pool) *PostgresAwardRepository {
	return &PostgresAwardRepository{DB: db}
}

func scanSelection(row pgx.Row) (*models.AwardSelection, error) {
	var s models.AwardSelection
	err := row.Scan(
		&s.ID,
		&s.RequestID,
		&s.SelectedProposalID,
		&s.SelectedSupplierID,
		&s.SelectedAmount,
		&s.IsLowestPrice,
		&s.CreatorJustification,
		&s.SelectedBy,
		&s.SelectedAt,
		&s.Status,
		&s.ApprovedBy,
		&s.ApprovedAt,
		&s.ApprovalNotes,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func scanAward(row pgx.Row) (*models.Award, error) {
	var a models.Award
	err := row.Scan(
		&a.ID,
		&a.RequestID,
		&a.WinningProposalID,
		&a.WinningSupplierID,
		&a.AwardedAmount,
		&a.IsLowestPrice,
		&a.Justification,
		&a.AwardedBy,
		&a.AwardedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// UpsertSelection writes the request's single selection row, resetting it to
// pending approval, and moves the request into evaluation. One transaction;
// a rejected selection is overwritten by a re-proposal.
func (r *PostgresAwardRepository) UpsertSelection(ctx context.Context, sel models.AwardSelection) (*models.AwardSelection, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	query := `INSERT INTO award_selections (id, request_id, selected_proposal_id, selected_supplier_id,
	              selected_amount, is_lowest_price, creator_justification, selected_by, selected_at, status,
	              created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $9, $9)
	          ON CONFLICT (request_id) DO UPDATE SET
	              selected_proposal_id = EXCLUDED.selected_proposal_id,
	              selected_supplier_id = EXCLUDED.selected_supplier_id,
	              selected_amount = EXCLUDED.selected_amount,
	              is_lowest_price = EXCLUDED.is_lowest_price,
	              creator_justification = EXCLUDED.creator_justification,
	              selected_by = EXCLUDED.selected_by,
	              selected_at = EXCLUDED.selected_at,
	              status = EXCLUDED.status,
	              approved_by = NULL,
	              approved_at = NULL,
	              approval_notes = NULL,
	              updated_at = now()
	          RETURNING ` + selectionColumns
	saved, err := scanSelection(tx.QueryRow(ctx, query,
		uuid.New().String(),
		sel.RequestID,
		sel.SelectedProposalID,
		sel.SelectedSupplierID,
		sel.SelectedAmount,
		sel.IsLowestPrice,
		sel.CreatorJustification,
		sel.SelectedBy,
		time.Now().UTC(),
		models.PendingSelection))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert award selection: %w", err)
	}

	_, err = tx.Exec(ctx, `UPDATE requests SET status = $1, round_status = $2, updated_at = now() WHERE id = $3`,
		models.EvaluationRequest, models.AwardPending, sel.RequestID)
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	return saved, nil
}

// GetSelectionByID returns one selection.
func (r *PostgresAwardRepository) GetSelectionByID(ctx context.Context, selectionID string) (*models.AwardSelection, error) {
	query := `SELECT ` + selectionColumns + ` FROM award_selections WHERE id = $1`
	sel, err := scanSelection(r.DB.QueryRow(ctx, query, selectionID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.NewNotFoundError("award selection not found")
	}
	return sel, err
}

// GetPendingSelections returns selections awaiting approver sign-off, newest first.
func (r *PostgresAwardRepository) GetPendingSelections(ctx context.Context, limit, offset int) ([]models.AwardSelection, error) {
	query := `SELECT ` + selectionColumns + ` FROM award_selections
	          WHERE status = $1 ORDER BY selected_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.DB.Query(ctx, query, models.PendingSelection, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var selections []models.AwardSelection
	for rows.Next() {
		sel, err := scanSelection(rows)
		if err != nil {
			return nil, err
		}
		selections = append(selections, *sel)
	}
	return selections, rows.Err()
}

// ApproveSelection approves a pending selection and materializes the award.
// The selection update, the award insert, the request transition and the
// proposal status fan-out commit as one transaction. Re-approving an
// already-approved selection returns the existing award and writes nothing,
// so the call is idempotent on the selection id.
func (r *PostgresAwardRepository) ApproveSelection(ctx context.Context, selectionID, approverID string, notes string) (*models.Award, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	sel, err := scanSelection(tx.QueryRow(ctx,
		`SELECT `+selectionColumns+` FROM award_selections WHERE id = $1 FOR UPDATE`, selectionID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.NewNotFoundError("award selection not found")
	}
	if err != nil {
		return nil, err
	}

	if sel.Status == models.ApprovedSelection {
		award, err := scanAward(tx.QueryRow(ctx,
			`SELECT `+awardColumns+` FROM awards WHERE request_id = $1`, sel.RequestID))
		if err != nil {
			return nil, err
		}
		return award, tx.Commit(ctx)
	}
	if sel.Status == models.RejectedSelection {
		return nil, models.NewValidationError("selection was rejected; the creator must propose a new winner first")
	}

	_, err = tx.Exec(ctx, `UPDATE award_selections SET status = $1, approved_by = $2, approved_at = now(),
	                           approval_notes = NULLIF($3, ''), updated_at = now()
	                       WHERE id = $4`,
		models.ApprovedSelection, approverID, notes, selectionID)
	if err != nil {
		return nil, err
	}

	justification := sel.CreatorJustification
	if justification == nil && notes != "" {
		justification = &notes
	}

	award, err := scanAward(tx.QueryRow(ctx, `INSERT INTO awards (id, request_id, winning_proposal_id,
	        winning_supplier_id, awarded_amount, is_lowest_price, justification, awarded_by, awarded_at)
	    VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
	    RETURNING `+awardColumns,
		uuid.New().String(),
		sel.RequestID,
		sel.SelectedProposalID,
		sel.SelectedSupplierID,
		sel.SelectedAmount,
		sel.IsLowestPrice,
		justification,
		approverID))
	if err != nil {
		return nil, fmt.Errorf("failed to insert award: %w", err)
	}

	_, err = tx.Exec(ctx, `UPDATE requests SET status = $1, round_status = NULL, updated_at = now() WHERE id = $2`,
		models.AwardedRequest, sel.RequestID)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `UPDATE proposals SET status = $1, updated_at = now() WHERE id = $2`,
		models.AwardedProposal, sel.SelectedProposalID)
	if err != nil {
		return nil, err
	}
	_, err = tx.Exec(ctx, `UPDATE proposals SET status = $1, updated_at = now()
	                       WHERE request_id = $2 AND id <> $3 AND status = $4`,
		models.NotSelectedProposal, sel.RequestID, sel.SelectedProposalID, models.SubmittedProposal)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `UPDATE suppliers SET total_awards = total_awards + 1, updated_at = now() WHERE id = $1`,
		sel.SelectedSupplierID)
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, models.NewPartialCompletionError(
			"award approval could not be confirmed; retry the approval with the same selection id")
	}
	return award, nil
}

// RejectSelection rejects a pending selection with the approver's notes. The
// request stays in evaluation so the creator can propose again.
func (r *PostgresAwardRepository) RejectSelection(ctx context.Context, selectionID, approverID, notes string) (*models.AwardSelection, error) {
	query := `UPDATE award_selections SET status = $1, approved_by = $2, approved_at = now(),
	              approval_notes = $3, updated_at = now()
	          WHERE id = $4 RETURNING ` + selectionColumns
	sel, err := scanSelection(r.DB.QueryRow(ctx, query, models.RejectedSelection, approverID, notes, selectionID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.NewNotFoundError("award selection not found")
	}
	return sel, err
}

// GetAwardByRequest returns the award for a request.
func (r *PostgresAwardRepository) GetAwardByRequest(ctx context.Context, requestID string) (*models.Award, error) {
	query := `SELECT ` + awardColumns + ` FROM awards WHERE request_id = $1`
	award, err := scanAward(r.DB.QueryRow(ctx, query, requestID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.NewNotFoundError("no award exists for this request")
	}
	return award, err
}
