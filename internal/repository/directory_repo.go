package repository

import (
	"context"
	"errors"

	"github.com/procurehub/procurement-service/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

// DirectoryRepository is the interface for profile and supplier lookups.
type DirectoryRepository interface {
	GetProfileByUserID(ctx context.Context, userID string) (*models.UserProfile, error)
	GetSupplierByEmail(ctx context.Context, email string) (*models.Supplier, error)
	GetSupplierByID(ctx context.Context, supplierID string) (*models.Supplier, error)
	CountActiveSuppliers(ctx context.Context, supplierIDs []string) (int, error)
}

// PostgresDirectoryRepository is the DirectoryRepository implementation backed by Postgres.
type PostgresDirectoryRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresDirectoryRepository creates a new PostgresDirectoryRepository.
func NewPostgresDirectoryRepository(db *pgxpool.Pool) *PostgresDirectoryRepository {
	return &PostgresDirectoryRepository{DB: db}
}

const profileColumns = `id, user_id, role, full_name, email, phone, area, is_active`

func scanProfile(row pgx.Row) (*models.UserProfile, error) {
	var p models.UserProfile
	err := row.Scan(&p.ID, &p.UserID, &p.Role, &p.FullName, &p.Email, &p.Phone, &p.Area, &p.IsActive)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProfileByUserID returns the profile for an authenticated principal.
func (r *PostgresDirectoryRepository) GetProfileByUserID(ctx context.Context, userID string) (*models.UserProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM users_profile WHERE user_id = $1`
	p, err := scanProfile(r.DB.QueryRow(ctx, query, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.NewNotFoundError("no profile exists for this user")
	}
	return p, err
}

const supplierColumns = `id, name, contact_name, contact_email, contact_phone,
	contract_fee_percentage, is_active, total_invitations, total_awards`

func scanSupplier(row pgx.Row) (*models.Supplier, error) {
	var s models.Supplier
	err := row.Scan(&s.ID, &s.Name, &s.ContactName, &s.ContactEmail, &s.ContactPhone,
		&s.ContractFeePercentage, &s.IsActive, &s.TotalInvitations, &s.TotalAwards)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetSupplierByEmail resolves the supplier whose contact email matches the
// calling profile's email. This match is how supplier users are tied to
// supplier records.
func (r *PostgresDirectoryRepository) GetSupplierByEmail(ctx context.Context, email string) (*models.Supplier, error) {
	query := `SELECT ` + supplierColumns + ` FROM suppliers WHERE contact_email = $1 AND is_active = TRUE`
	s, err := scanSupplier(r.DB.QueryRow(ctx, query, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.NewNotFoundError("no supplier record matches your account email")
	}
	return s, err
}

// GetSupplierByID returns one supplier.
func (r *PostgresDirectoryRepository) GetSupplierByID(ctx context.Context, supplierID string) (*models.Supplier, error) {
	query := `SELECT ` + supplierColumns + ` FROM suppliers WHERE id = $1`
	s, err := scanSupplier(r.DB.QueryRow(ctx, query, supplierID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.NewNotFoundError("supplier not found")
	}
	return s, err
}

// CountActiveSuppliers counts how many of the given ids are active suppliers,
// used to validate invitation sets.
func (r *PostgresDirectoryRepository) CountActiveSuppliers(ctx context.Context, supplierIDs []string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM suppliers WHERE id = ANY($1) AND is_active = TRUE`
	err := r.DB.QueryRow(ctx, query, pq.Array(supplierIDs)).Scan(&count)
	return count, err
}
