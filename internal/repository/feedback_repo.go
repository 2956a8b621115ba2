package repository

import (
	"context"
	"fmt"

	"github.com/procurehub/procurement-service/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

// FeedbackRepository is the interface for between-round item feedback and
// new-item suggestions.
type FeedbackRepository interface {
	GetRoundItems(ctx context.Context, requestID string, round int) (map[string]string, error)
	AdvanceRound(ctx context.Context, requestID string, newRound int, feedback []models.RoundItemFeedback, suggestions []models.RoundSuggestion) error
	GetFeedbackForSupplier(ctx context.Context, requestID, supplierID string, round int) ([]models.RoundItemFeedback, error)
	GetSuggestions(ctx context.Context, requestID string, round int) ([]models.RoundSuggestion, error)
}

// PostgresFeedbackRepository is the FeedbackRepository implementation backed by Postgres.
type PostgresFeedbackRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresFeedbackRepository creates a new PostgresFeedbackRepository.
func NewPostgresFeedbackRepository(db *pgxpool.Pool) *PostgresFeedbackRepository {
	return &PostgresFeedbackRepository{DB: db}
}

// GetRoundItems maps item id to proposal id for the submitted proposals of one
// round. Feedback may only target these items.
func (r *PostgresFeedbackRepository) GetRoundItems(ctx context.Context, requestID string, round int) (map[string]string, error) {
	query := `SELECT pi.id, pi.proposal_id
	          FROM proposal_items pi
	          JOIN proposals p ON p.id = pi.proposal_id
	          WHERE p.request_id = $1 AND p.round_number = $2 AND p.status = $3`
	rows, err := r.DB.Query(ctx, query, requestID, round, models.SubmittedProposal)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make(map[string]string)
	for rows.Next() {
		var itemID, proposalID string
		if err := rows.Scan(&itemID, &proposalID); err != nil {
			return nil, err
		}
		items[itemID] = proposalID
	}
	return items, rows.Err()
}

// AdvanceRound persists the feedback and suggestion records and opens the next
// round, all in one transaction. This is the sole round-progression mechanism.
func (r *PostgresFeedbackRepository) AdvanceRound(ctx context.Context, requestID string, newRound int, feedback []models.RoundItemFeedback, suggestions []models.RoundSuggestion) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	touched := make(map[string]bool, len(feedback))
	for _, fb := range feedback {
		touched[fb.ProposalID] = true
		_, err = tx.Exec(ctx, `INSERT INTO round_item_feedback (id, proposal_id, proposal_item_id, round_number, action, feedback_text, suggested_price, created_by)
		                       VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			uuid.New().String(),
			fb.ProposalID,
			fb.ProposalItemID,
			fb.RoundNumber,
			fb.Action,
			fb.FeedbackText,
			fb.SuggestedPrice,
			fb.CreatedBy)
		if err != nil {
			return fmt.Errorf("failed to insert item feedback: %w", err)
		}

		_, err = tx.Exec(ctx, `UPDATE proposal_items SET needs_adjustment = TRUE WHERE id = $1`, fb.ProposalItemID)
		if err != nil {
			return err
		}
	}

	if len(touched) > 0 {
		ids := make([]string, 0, len(touched))
		for id := range touched {
			ids = append(ids, id)
		}
		_, err = tx.Exec(ctx, `UPDATE proposals SET status = $1, updated_at = now() WHERE id = ANY($2)`,
			models.AdjustmentProposal, pq.Array(ids))
		if err != nil {
			return err
		}
	}

	for _, s := range suggestions {
		_, err = tx.Exec(ctx, `INSERT INTO round_suggestions (id, request_id, round_number, item_name, description, suggested_quantity, notes, created_by)
		                       VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			uuid.New().String(),
			s.RequestID,
			s.RoundNumber,
			s.ItemName,
			s.Description,
			s.SuggestedQuantity,
			s.Notes,
			s.CreatedBy)
		if err != nil {
			return fmt.Errorf("failed to insert round suggestion: %w", err)
		}
	}

	_, err = tx.Exec(ctx, `UPDATE requests SET current_round = $1, round_status = $2, updated_at = now() WHERE id = $3`,
		newRound, models.AcceptingProposals, requestID)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// GetFeedbackForSupplier returns the feedback addressed to one supplier's
// proposal items for a round.
func (r *PostgresFeedbackRepository) GetFeedbackForSupplier(ctx context.Context, requestID, supplierID string, round int) ([]models.RoundItemFeedback, error) {
	query := `SELECT f.id, f.proposal_id, f.proposal_item_id, f.round_number, f.action, f.feedback_text, f.suggested_price, f.created_by, f.created_at
	          FROM round_item_feedback f
	          JOIN proposals p ON p.id = f.proposal_id
	          WHERE p.request_id = $1 AND p.supplier_id = $2 AND f.round_number = $3
	          ORDER BY f.created_at`
	rows, err := r.DB.Query(ctx, query, requestID, supplierID, round)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var feedback []models.RoundItemFeedback
	for rows.Next() {
		var fb models.RoundItemFeedback
		if err := rows.Scan(
			&fb.ID,
			&fb.ProposalID,
			&fb.ProposalItemID,
			&fb.RoundNumber,
			&fb.Action,
			&fb.FeedbackText,
			&fb.SuggestedPrice,
			&fb.CreatedBy,
			&fb.CreatedAt); err != nil {
			return nil, err
		}
		feedback = append(feedback, fb)
	}
	return feedback, rows.Err()
}

// GetSuggestions returns the new-item suggestions recorded for a round.
func (r *PostgresFeedbackRepository) GetSuggestions(ctx context.Context, requestID string, round int) ([]models.RoundSuggestion, error) {
	query := `SELECT id, request_id, round_number, item_name, description, suggested_quantity, notes, created_by, created_at
	          FROM round_suggestions WHERE request_id = $1 AND round_number = $2 ORDER BY created_at`
	rows, err := r.DB.Query(ctx, query, requestID, round)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var suggestions []models.RoundSuggestion
	for rows.Next() {
		var s models.RoundSuggestion
		if err := rows.Scan(
			&s.ID,
			&s.RequestID,
			&s.RoundNumber,
			&s.ItemName,
			&s.Description,
			&s.SuggestedQuantity,
			&s.Notes,
			&s.CreatedBy,
			&s.CreatedAt); err != nil {
			return nil, err
		}
		suggestions = append(suggestions, s)
	}
	return suggestions, rows.Err()
}
