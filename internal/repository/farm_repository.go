package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lib/pq"

	"github.com/krishisakhi/backend/internal/domain"
)

// PostgresFarmRepository implements domain.FarmRepository using PostgreSQL
type PostgresFarmRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresFarmRepository creates a new farm repository
func NewPostgresFarmRepository(db *sql.DB, logger *slog.Logger) *PostgresFarmRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresFarmRepository{db: db, logger: logger}
}

// Create inserts a farm owned by farm.FarmerID
func (r *PostgresFarmRepository) Create(ctx context.Context, farm *domain.Farm) error {
	query := `
		INSERT INTO farms (farmer_id, name, location, land_size, soil_type, irrigation_type, crop_types)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`
	crops := farm.CropTypes
	if crops == nil {
		crops = []string{}
	}

	err := r.db.QueryRowContext(ctx, query,
		farm.FarmerID,
		farm.Name,
		farm.Location,
		farm.LandSize,
		farm.SoilType,
		farm.IrrigationType,
		pq.Array(crops),
	).Scan(&farm.ID, &farm.CreatedAt)
	if err != nil {
		if isPGCode(err, pgForeignKeyViolation) {
			return fmt.Errorf("farmer %w", domain.ErrNotFound)
		}
		r.logger.Error("failed to create farm",
			slog.Int64("farmer_id", farm.FarmerID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create farm: %w", err)
	}
	return nil
}

// ListByFarmer returns the farmer's farms in insertion order
func (r *PostgresFarmRepository) ListByFarmer(ctx context.Context, farmerID int64) ([]*domain.Farm, error) {
	query := `
		SELECT id, farmer_id, name, location, land_size, soil_type, irrigation_type, crop_types, created_at
		FROM farms
		WHERE farmer_id = $1
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query, farmerID)
	if err != nil {
		r.logger.Error("failed to list farms",
			slog.Int64("farmer_id", farmerID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to list farms: %w", err)
	}
	defer rows.Close()

	farms := []*domain.Farm{}
	for rows.Next() {
		f := &domain.Farm{}
		var crops pq.StringArray
		if err := rows.Scan(
			&f.ID, &f.FarmerID, &f.Name, &f.Location, &f.LandSize,
			&f.SoilType, &f.IrrigationType, &crops, &f.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan farm: %w", err)
		}
		f.CropTypes = []string(crops)
		farms = append(farms, f)
	}
	return farms, rows.Err()
}

// OwnerOf returns the farmer that owns farmID
func (r *PostgresFarmRepository) OwnerOf(ctx context.Context, farmID int64) (int64, error) {
	var owner int64
	err := r.db.QueryRowContext(ctx, `SELECT farmer_id FROM farms WHERE id = $1`, farmID).Scan(&owner)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("farm %w", domain.ErrNotFound)
		}
		return 0, fmt.Errorf("failed to get farm owner: %w", err)
	}
	return owner, nil
}

// CountByFarmer returns how many farms the farmer owns
func (r *PostgresFarmRepository) CountByFarmer(ctx context.Context, farmerID int64) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM farms WHERE farmer_id = $1`, farmerID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count farms: %w", err)
	}
	return n, nil
}
