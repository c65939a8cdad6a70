package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"

	"github.com/krishisakhi/backend/internal/domain"
)

// PostgresDetectionRepository implements domain.DetectionRepository using PostgreSQL
type PostgresDetectionRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresDetectionRepository creates a new detection repository
func NewPostgresDetectionRepository(db *sql.DB, logger *slog.Logger) *PostgresDetectionRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresDetectionRepository{db: db, logger: logger}
}

// Create stores a detection result
func (r *PostgresDetectionRepository) Create(ctx context.Context, d *domain.Detection) error {
	query := `
		INSERT INTO disease_detections (farm_id, crop_name, disease, confidence, symptoms, treatment, image_path)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		d.FarmID,
		d.CropName,
		d.Disease,
		d.Confidence,
		pq.Array(nonNil(d.Symptoms)),
		pq.Array(nonNil(d.Treatment)),
		d.ImagePath,
	).Scan(&d.ID, &d.CreatedAt)
	if err != nil {
		if isPGCode(err, pgForeignKeyViolation) {
			return domain.ErrNotFoundOrForbidden
		}
		r.logger.Error("failed to store detection",
			slog.Int64("farm_id", d.FarmID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to store detection: %w", err)
	}
	return nil
}

// ListOutbreaks groups recent detections by disease, crop and farm location
func (r *PostgresDetectionRepository) ListOutbreaks(ctx context.Context, location string, since time.Time, minOccurrences int) ([]domain.Outbreak, error) {
	query := `
		SELECT d.disease, d.crop_name, f.location, MAX(d.confidence), MAX(d.created_at), COUNT(*)
		FROM disease_detections d
		JOIN farms f ON d.farm_id = f.id
		WHERE d.created_at >= $1
		  AND ($2::text = '' OR strpos(lower(f.location), lower($2::text)) > 0)
		GROUP BY d.disease, d.crop_name, f.location
		HAVING COUNT(*) >= $3
		ORDER BY COUNT(*) DESC, MAX(d.created_at) DESC
	`
	rows, err := r.db.QueryContext(ctx, query, since, location, minOccurrences)
	if err != nil {
		return nil, fmt.Errorf("failed to list outbreaks: %w", err)
	}
	defer rows.Close()

	out := []domain.Outbreak{}
	for rows.Next() {
		var o domain.Outbreak
		if err := rows.Scan(&o.Disease, &o.Crop, &o.Location, &o.Confidence, &o.LastSeen, &o.Occurrences); err != nil {
			return nil, fmt.Errorf("failed to scan outbreak: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
