package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/krishisakhi/backend/internal/domain"
)

// PostgresFarmerRepository implements domain.FarmerRepository using PostgreSQL
type PostgresFarmerRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresFarmerRepository creates a new farmer repository
func NewPostgresFarmerRepository(db *sql.DB, logger *slog.Logger) *PostgresFarmerRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresFarmerRepository{
		db:     db,
		logger: logger,
	}
}

const farmerColumns = `id, name, phone, email, password_hash, location, language, created_at`

// Create creates a new farmer
func (r *PostgresFarmerRepository) Create(ctx context.Context, farmer *domain.Farmer) error {
	query := `
		INSERT INTO farmers (name, phone, email, password_hash, location, language)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.db.QueryRowContext(ctx,
		query,
		farmer.Name,
		farmer.Phone,
		farmer.Email,
		farmer.PasswordHash,
		farmer.Location,
		string(farmer.Language),
	).Scan(&farmer.ID, &farmer.CreatedAt)

	if err != nil {
		if isPGCode(err, pgUniqueViolation) {
			return domain.ErrDuplicateIdentity
		}
		r.logger.Error("failed to create farmer",
			slog.String("phone", farmer.Phone),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create farmer: %w", err)
	}

	return nil
}

// GetByID retrieves a farmer by ID
func (r *PostgresFarmerRepository) GetByID(ctx context.Context, id int64) (*domain.Farmer, error) {
	query := `SELECT ` + farmerColumns + ` FROM farmers WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// GetByPhone retrieves a farmer by phone number
func (r *PostgresFarmerRepository) GetByPhone(ctx context.Context, phone string) (*domain.Farmer, error) {
	query := `SELECT ` + farmerColumns + ` FROM farmers WHERE phone = $1`
	return r.getOne(ctx, query, phone)
}

func (r *PostgresFarmerRepository) getOne(ctx context.Context, query string, arg any) (*domain.Farmer, error) {
	farmer := &domain.Farmer{}
	var lang string

	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&farmer.ID,
		&farmer.Name,
		&farmer.Phone,
		&farmer.Email,
		&farmer.PasswordHash,
		&farmer.Location,
		&lang,
		&farmer.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("farmer %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get farmer: %w", err)
	}

	farmer.Language = domain.Language(lang)
	return farmer, nil
}

// ExistsByPhoneOrEmail reports whether phone or email is already registered
func (r *PostgresFarmerRepository) ExistsByPhoneOrEmail(ctx context.Context, phone, email string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM farmers WHERE phone = $1 OR email = $2)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, phone, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check farmer identity: %w", err)
	}
	return exists, nil
}

// UpdateLanguage changes the preferred language
func (r *PostgresFarmerRepository) UpdateLanguage(ctx context.Context, id int64, lang domain.Language) error {
	return r.updateOne(ctx, `UPDATE farmers SET language = $1 WHERE id = $2`, string(lang), id)
}

// UpdatePasswordHash replaces the stored credential
func (r *PostgresFarmerRepository) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	return r.updateOne(ctx, `UPDATE farmers SET password_hash = $1 WHERE id = $2`, hash, id)
}

func (r *PostgresFarmerRepository) updateOne(ctx context.Context, query string, value any, id int64) error {
	result, err := r.db.ExecContext(ctx, query, value, id)
	if err != nil {
		return fmt.Errorf("failed to update farmer: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("farmer %w", domain.ErrNotFound)
	}

	return nil
}
