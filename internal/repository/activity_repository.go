package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/krishisakhi/backend/internal/domain"
)

// PostgresActivityRepository implements domain.ActivityRepository and
// domain.ActivityStats using PostgreSQL
type PostgresActivityRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresActivityRepository creates a new activity repository
func NewPostgresActivityRepository(db *sql.DB, logger *slog.Logger) *PostgresActivityRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresActivityRepository{db: db, logger: logger}
}

const activitySelect = `
	SELECT a.id, a.farm_id, a.activity_type, a.description, a.date, a.crop_name,
	       a.quantity, a.cost, a.notes, a.created_at, f.name
	FROM activities a
	JOIN farms f ON a.farm_id = f.id
`

// Create inserts a single activity row
func (r *PostgresActivityRepository) Create(ctx context.Context, a *domain.Activity) error {
	query := `
		INSERT INTO activities (farm_id, activity_type, description, date, crop_name, quantity, cost, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		a.FarmID,
		a.ActivityType,
		a.Description,
		a.Date.Format(domain.DateLayout),
		nullString(a.CropName),
		nullFloat(a.Quantity),
		nullFloat(a.Cost),
		nullString(a.Notes),
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		if isPGCode(err, pgForeignKeyViolation) {
			return domain.ErrNotFoundOrForbidden
		}
		r.logger.Error("failed to create activity",
			slog.Int64("farm_id", a.FarmID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create activity: %w", err)
	}
	return nil
}

// GetByID returns one activity with its farm name
func (r *PostgresActivityRepository) GetByID(ctx context.Context, id int64) (*domain.ActivityWithFarmName, error) {
	rows, err := r.db.QueryContext(ctx, activitySelect+` WHERE a.id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}
	out, err := scanActivities(rows)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("activity %w", domain.ErrNotFound)
	}
	return out[0], nil
}

// FarmOf returns the parent farm of an activity
func (r *PostgresActivityRepository) FarmOf(ctx context.Context, activityID int64) (int64, error) {
	var farmID int64
	err := r.db.QueryRowContext(ctx, `SELECT farm_id FROM activities WHERE id = $1`, activityID).Scan(&farmID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("activity %w", domain.ErrNotFound)
		}
		return 0, fmt.Errorf("failed to get activity farm: %w", err)
	}
	return farmID, nil
}

// ListByFarm lists one farm's activities, newest date first
func (r *PostgresActivityRepository) ListByFarm(ctx context.Context, farmID int64) ([]*domain.ActivityWithFarmName, error) {
	rows, err := r.db.QueryContext(ctx, activitySelect+`
		WHERE a.farm_id = $1
		ORDER BY a.date DESC, a.id DESC
	`, farmID)
	if err != nil {
		r.logger.Error("failed to list activities by farm",
			slog.Int64("farm_id", farmID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	return scanActivities(rows)
}

// ListByFarmer lists activities across all of a farmer's farms, newest date first
func (r *PostgresActivityRepository) ListByFarmer(ctx context.Context, farmerID int64) ([]*domain.ActivityWithFarmName, error) {
	rows, err := r.db.QueryContext(ctx, activitySelect+`
		WHERE f.farmer_id = $1
		ORDER BY a.date DESC, a.id DESC
	`, farmerID)
	if err != nil {
		r.logger.Error("failed to list activities by farmer",
			slog.Int64("farmer_id", farmerID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	return scanActivities(rows)
}

// CountSince counts the farmer's activities dated on or after since
func (r *PostgresActivityRepository) CountSince(ctx context.Context, farmerID int64, since time.Time) (int, error) {
	query := `
		SELECT COUNT(*) FROM activities a
		JOIN farms f ON a.farm_id = f.id
		WHERE f.farmer_id = $1 AND a.date >= $2
	`
	var n int
	if err := r.db.QueryRowContext(ctx, query, farmerID, since.Format(domain.DateLayout)).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count activities: %w", err)
	}
	return n, nil
}

// CostSince sums activity cost dated on or after since
func (r *PostgresActivityRepository) CostSince(ctx context.Context, farmerID int64, since time.Time) (float64, error) {
	query := `
		SELECT COALESCE(SUM(a.cost), 0) FROM activities a
		JOIN farms f ON a.farm_id = f.id
		WHERE f.farmer_id = $1 AND a.date >= $2
	`
	var total float64
	if err := r.db.QueryRowContext(ctx, query, farmerID, since.Format(domain.DateLayout)).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum activity cost: %w", err)
	}
	return total, nil
}

// TypeDistributionSince counts activities per type dated on or after since
func (r *PostgresActivityRepository) TypeDistributionSince(ctx context.Context, farmerID int64, since time.Time) (map[string]int, error) {
	query := `
		SELECT a.activity_type, COUNT(*) FROM activities a
		JOIN farms f ON a.farm_id = f.id
		WHERE f.farmer_id = $1 AND a.date >= $2
		GROUP BY a.activity_type
	`
	rows, err := r.db.QueryContext(ctx, query, farmerID, since.Format(domain.DateLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to group activities: %w", err)
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("failed to scan activity group: %w", err)
		}
		out[kind] = n
	}
	return out, rows.Err()
}

// MonthlyCostsSince sums cost per calendar month, oldest month first
func (r *PostgresActivityRepository) MonthlyCostsSince(ctx context.Context, farmerID int64, since time.Time) ([]domain.MonthlyCost, error) {
	query := `
		SELECT to_char(a.date, 'YYYY-MM') AS month, COALESCE(SUM(a.cost), 0)
		FROM activities a
		JOIN farms f ON a.farm_id = f.id
		WHERE f.farmer_id = $1 AND a.date >= $2
		GROUP BY month
		ORDER BY month
	`
	rows, err := r.db.QueryContext(ctx, query, farmerID, since.Format(domain.DateLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to sum monthly cost: %w", err)
	}
	defer rows.Close()

	out := []domain.MonthlyCost{}
	for rows.Next() {
		var m domain.MonthlyCost
		if err := rows.Scan(&m.Month, &m.Cost); err != nil {
			return nil, fmt.Errorf("failed to scan monthly cost: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func scanActivities(rows *sql.Rows) ([]*domain.ActivityWithFarmName, error) {
	defer rows.Close()

	out := []*domain.ActivityWithFarmName{}
	for rows.Next() {
		a := &domain.ActivityWithFarmName{}
		var (
			cropName, notes sql.NullString
			quantity, cost  sql.NullFloat64
		)
		if err := rows.Scan(
			&a.ID, &a.FarmID, &a.ActivityType, &a.Description, &a.Date, &cropName,
			&quantity, &cost, &notes, &a.CreatedAt, &a.FarmName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		a.CropName = stringPtr(cropName)
		a.Notes = stringPtr(notes)
		a.Quantity = floatPtr(quantity)
		a.Cost = floatPtr(cost)
		out = append(out, a)
	}
	return out, rows.Err()
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func stringPtr(n sql.NullString) *string {
	if !n.Valid {
		return nil
	}
	s := n.String
	return &s
}

func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	f := n.Float64
	return &f
}
