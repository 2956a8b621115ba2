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

const proposalColumns = `id, request_id, supplier_id, round_number, subtotal, fee_amount, total_amount,
	contextual_info, status, submitted_at, created_at, updated_at`

// ProposalRepository is the interface for working with proposals, their line
// items and attachments.
type ProposalRepository interface {
	UpsertDraft(ctx context.Context, p models.Proposal, items []models.ProposalItemInput) (*models.Proposal, error)
	SubmitProposal(ctx context.Context, proposalID string) (*models.Proposal, error)
	GetProposalByID(ctx context.Context, proposalID string) (*models.Proposal, error)
	GetProposalForRound(ctx context.Context, requestID, supplierID string, round int) (*models.Proposal, error)
	GetSubmittedProposals(ctx context.Context, requestID string) ([]models.Proposal, error)
	GetSupplierProposals(ctx context.Context, supplierID string, limit, offset int) ([]models.Proposal, error)
	LatestSubmittedTotal(ctx context.Context, requestID, supplierID string, beforeRound int) (float64, bool, error)
	GetItems(ctx context.Context, proposalID string) ([]models.ProposalItem, error)
	CreateAttachment(ctx context.Context, att models.ProposalAttachment) (*models.ProposalAttachment, error)
}

// PostgresProposalRepository is the ProposalRepository implementation backed by Postgres.
type PostgresProposalRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresProposalRepository creates a new PostgresProposalRepository.
func NewPostgresProposalRepository(db *pgxpool.Pool) *PostgresProposalRepository {
	return &PostgresProposalRepository{DB: db}
}

func scanProposal(row pgx.Row) (*models.Proposal, error) {
	var p models.Proposal
	err := row.Scan(
		&p.ID,
		&p.RequestID,
		&p.SupplierID,
		&p.RoundNumber,
		&p.Subtotal,
		&p.FeeAmount,
		&p.TotalAmount,
		&p.ContextualInfo,
		&p.Status,
		&p.SubmittedAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpsertDraft writes the one proposal row for (request, supplier, round) and
// replaces its line items. Item totals come in already recomputed by the service.
func (r *PostgresProposalRepository) UpsertDraft(ctx context.Context, p models.Proposal, items []models.ProposalItemInput) (*models.Proposal, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	query := `INSERT INTO proposals (id, request_id, supplier_id, round_number, subtotal, fee_amount,
	              total_amount, contextual_info, status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
	          ON CONFLICT (request_id, supplier_id, round_number) DO UPDATE SET
	              subtotal = EXCLUDED.subtotal,
	              fee_amount = EXCLUDED.fee_amount,
	              total_amount = EXCLUDED.total_amount,
	              contextual_info = EXCLUDED.contextual_info,
	              status = EXCLUDED.status,
	              updated_at = now()
	          RETURNING ` + proposalColumns
	saved, err := scanProposal(tx.QueryRow(ctx, query,
		uuid.New().String(),
		p.RequestID,
		p.SupplierID,
		p.RoundNumber,
		p.Subtotal,
		p.FeeAmount,
		p.TotalAmount,
		p.ContextualInfo,
		models.DraftProposal,
		time.Now().UTC()))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert proposal: %w", err)
	}

	_, err = tx.Exec(ctx, `DELETE FROM proposal_items WHERE proposal_id = $1`, saved.ID)
	if err != nil {
		return nil, err
	}

	for _, item := range items {
		_, err = tx.Exec(ctx, `INSERT INTO proposal_items (id, proposal_id, item_name, description, quantity, unit_price, total_price)
		                       VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			uuid.New().String(),
			saved.ID,
			item.ItemName,
			item.Description,
			item.Quantity,
			item.UnitPrice,
			item.Quantity*item.UnitPrice)
		if err != nil {
			return nil, fmt.Errorf("failed to insert proposal item: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}

	saved.Items, err = r.GetItems(ctx, saved.ID)
	return saved, err
}

// SubmitProposal marks a draft submitted and stamps the submission time.
func (r *PostgresProposalRepository) SubmitProposal(ctx context.Context, proposalID string) (*models.Proposal, error) {
	query := `UPDATE proposals SET status = $1, submitted_at = now(), updated_at = now()
	          WHERE id = $2 RETURNING ` + proposalColumns
	return scanProposal(r.DB.QueryRow(ctx, query, models.SubmittedProposal, proposalID))
}

// GetProposalByID returns one proposal with its items.
func (r *PostgresProposalRepository) GetProposalByID(ctx context.Context, proposalID string) (*models.Proposal, error) {
	query := `SELECT ` + proposalColumns + ` FROM proposals WHERE id = $1`
	p, err := scanProposal(r.DB.QueryRow(ctx, query, proposalID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.NewNotFoundError("proposal not found")
	}
	if err != nil {
		return nil, err
	}
	p.Items, err = r.GetItems(ctx, p.ID)
	return p, err
}

// GetProposalForRound returns the supplier's proposal row for one round, or
// nil when the supplier has not started one.
func (r *PostgresProposalRepository) GetProposalForRound(ctx context.Context, requestID, supplierID string, round int) (*models.Proposal, error) {
	query := `SELECT ` + proposalColumns + ` FROM proposals
	          WHERE request_id = $1 AND supplier_id = $2 AND round_number = $3`
	p, err := scanProposal(r.DB.QueryRow(ctx, query, requestID, supplierID, round))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

// GetSubmittedProposals returns a request's submitted proposals with items,
// cheapest first. Prior-round proposals are included; history is preserved as
// one row per round.
func (r *PostgresProposalRepository) GetSubmittedProposals(ctx context.Context, requestID string) ([]models.Proposal, error) {
	query := `SELECT ` + proposalColumns + ` FROM proposals
	          WHERE request_id = $1 AND status = $2 ORDER BY total_amount ASC`
	rows, err := r.DB.Query(ctx, query, requestID, models.SubmittedProposal)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	proposals, err := collectProposals(rows)
	if err != nil {
		return nil, err
	}
	for i := range proposals {
		proposals[i].Items, err = r.GetItems(ctx, proposals[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return proposals, nil
}

// GetSupplierProposals returns a supplier's proposals across requests, newest first.
func (r *PostgresProposalRepository) GetSupplierProposals(ctx context.Context, supplierID string, limit, offset int) ([]models.Proposal, error) {
	query := `SELECT ` + proposalColumns + ` FROM proposals
	          WHERE supplier_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.DB.Query(ctx, query, supplierID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProposals(rows)
}

func collectProposals(rows pgx.Rows) ([]models.Proposal, error) {
	var proposals []models.Proposal
	for rows.Next() {
		p, err := scanProposal(rows)
		if err != nil {
			return nil, err
		}
		proposals = append(proposals, *p)
	}
	return proposals, rows.Err()
}

// LatestSubmittedTotal returns the supplier's most recent submitted total for
// the request in any round before the given one. The second return value
// reports whether such a proposal exists.
func (r *PostgresProposalRepository) LatestSubmittedTotal(ctx context.Context, requestID, supplierID string, beforeRound int) (float64, bool, error) {
	var total float64
	query := `SELECT total_amount FROM proposals
	          WHERE request_id = $1 AND supplier_id = $2 AND round_number < $3
	            AND status NOT IN ($4, $5)
	          ORDER BY round_number DESC LIMIT 1`
	err := r.DB.QueryRow(ctx, query, requestID, supplierID, beforeRound,
		models.DraftProposal, models.NotSelectedProposal).Scan(&total)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return total, true, nil
}

// GetItems returns a proposal's line items.
func (r *PostgresProposalRepository) GetItems(ctx context.Context, proposalID string) ([]models.ProposalItem, error) {
	query := `SELECT id, proposal_id, item_name, description, quantity, unit_price, total_price, needs_adjustment, created_at
	          FROM proposal_items WHERE proposal_id = $1 ORDER BY created_at, item_name`
	rows, err := r.DB.Query(ctx, query, proposalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.ProposalItem
	for rows.Next() {
		var item models.ProposalItem
		if err := rows.Scan(
			&item.ID,
			&item.ProposalID,
			&item.ItemName,
			&item.Description,
			&item.Quantity,
			&item.UnitPrice,
			&item.TotalPrice,
			&item.NeedsAdjustment,
			&item.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// CreateAttachment records an uploaded file against a proposal.
func (r *PostgresProposalRepository) CreateAttachment(ctx context.Context, att models.ProposalAttachment) (*models.ProposalAttachment, error) {
	att.ID = uuid.New().String()
	att.CreatedAt = time.Now().UTC()
	_, err := r.DB.Exec(ctx, `INSERT INTO proposal_attachments (id, proposal_id, proposal_item_id, file_name, file_path, file_size, mime_type, created_at)
	                          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		att.ID,
		att.ProposalID,
		att.ProposalItemID,
		att.FileName,
		att.FilePath,
		att.FileSize,
		att.MimeType,
		att.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert attachment: %w", err)
	}
	return &att, nil
}
