package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/krishisakhi/backend/internal/domain"
	"github.com/krishisakhi/backend/internal/observability/metrics"
	"github.com/krishisakhi/backend/internal/security"
	"github.com/krishisakhi/backend/internal/security/audit"
)

// RecordService stores farms and activities scoped to their owning farmer
type RecordService struct {
	farms      domain.FarmRepository
	activities domain.ActivityRepository
	stats      domain.ActivityStats
	guard      *security.OwnershipGuard
	auditLog   *audit.Logger
	logger     *slog.Logger
	now        func() time.Time
}

// NewRecordService creates a new record service
func NewRecordService(
	farms domain.FarmRepository,
	activities domain.ActivityRepository,
	stats domain.ActivityStats,
	guard *security.OwnershipGuard,
	auditLog *audit.Logger,
	logger *slog.Logger,
) *RecordService {
	if logger == nil {
		logger = slog.Default()
	}
	if auditLog == nil {
		auditLog = audit.NewLogger(logger)
	}
	return &RecordService{
		farms:      farms,
		activities: activities,
		stats:      stats,
		guard:      guard,
		auditLog:   auditLog,
		logger:     logger,
		now:        time.Now,
	}
}

// FarmInput carries the attributes of a new farm
type FarmInput struct {
	Name           string
	Location       string
	LandSize       float64
	SoilType       string
	IrrigationType string
	CropTypes      []string
}

// ActivityInput carries the attributes of a new activity. Date uses
// domain.DateLayout.
type ActivityInput struct {
	FarmID       int64
	ActivityType string
	Description  string
	Date         string
	CropName     *string
	Quantity     *float64
	Cost         *float64
	Notes        *string
}

// CreateFarm stores a farm owned by farmerID. Attributes are taken as given.
func (s *RecordService) CreateFarm(ctx context.Context, farmerID int64, in FarmInput) (*domain.Farm, error) {
	farm := &domain.Farm{
		FarmerID:       farmerID,
		Name:           in.Name,
		Location:       in.Location,
		LandSize:       in.LandSize,
		SoilType:       in.SoilType,
		IrrigationType: in.IrrigationType,
		CropTypes:      in.CropTypes,
	}
	if farm.CropTypes == nil {
		farm.CropTypes = []string{}
	}
	if err := s.farms.Create(ctx, farm); err != nil {
		return nil, err
	}

	metrics.ObserveRecordCreated("farm")
	s.auditLog.LogRecordCreated(ctx, farmerID, "farm", farm.ID)
	return farm, nil
}

// ListFarms returns the farmer's farms in creation order
func (s *RecordService) ListFarms(ctx context.Context, farmerID int64) ([]*domain.Farm, error) {
	return s.farms.ListByFarmer(ctx, farmerID)
}

// CreateActivity checks farm ownership and then inserts the activity
func (s *RecordService) CreateActivity(ctx context.Context, farmerID int64, in ActivityInput) (*domain.Activity, error) {
	if err := s.guard.AuthorizeFarmAccess(ctx, farmerID, in.FarmID); err != nil {
		return nil, err
	}

	if strings.TrimSpace(in.ActivityType) == "" {
		return nil, validationError("activityType is required")
	}
	date, err := time.Parse(domain.DateLayout, strings.TrimSpace(in.Date))
	if err != nil {
		return nil, validationError("date must be YYYY-MM-DD")
	}
	if in.Quantity != nil && *in.Quantity < 0 {
		return nil, validationError("quantity must not be negative")
	}
	if in.Cost != nil && *in.Cost < 0 {
		return nil, validationError("cost must not be negative")
	}

	activity := &domain.Activity{
		FarmID:       in.FarmID,
		ActivityType: in.ActivityType,
		Description:  in.Description,
		Date:         date,
		CropName:     in.CropName,
		Quantity:     in.Quantity,
		Cost:         in.Cost,
		Notes:        in.Notes,
	}
	if err := s.activities.Create(ctx, activity); err != nil {
		return nil, err
	}

	metrics.ObserveRecordCreated("activity")
	s.auditLog.LogRecordCreated(ctx, farmerID, "activity", activity.ID)
	return activity, nil
}

// ListActivities returns the farmer's activities, newest date first. A
// non-nil farmID narrows the list to that farm after an ownership check.
func (s *RecordService) ListActivities(ctx context.Context, farmerID int64, farmID *int64) ([]*domain.ActivityWithFarmName, error) {
	if farmID == nil {
		return s.activities.ListByFarmer(ctx, farmerID)
	}
	if err := s.guard.AuthorizeFarmAccess(ctx, farmerID, *farmID); err != nil {
		return nil, err
	}
	return s.activities.ListByFarm(ctx, *farmID)
}

// GetActivity returns one activity the farmer owns
func (s *RecordService) GetActivity(ctx context.Context, farmerID, activityID int64) (*domain.ActivityWithFarmName, error) {
	if err := s.guard.AuthorizeActivityAccess(ctx, farmerID, activityID); err != nil {
		return nil, err
	}
	return s.activities.GetByID(ctx, activityID)
}

// Dashboard gathers the farmer's summary numbers concurrently
func (s *RecordService) Dashboard(ctx context.Context, farmerID int64) (*domain.Dashboard, error) {
	now := s.now().UTC()
	last30 := now.AddDate(0, 0, -30)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	trendStart := monthStart.AddDate(0, -11, 0)

	d := &domain.Dashboard{}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := s.farms.CountByFarmer(ctx, farmerID)
		d.FarmCount = n
		return err
	})
	g.Go(func() error {
		n, err := s.stats.CountSince(ctx, farmerID, last30)
		d.RecentActivities = n
		return err
	})
	g.Go(func() error {
		cost, err := s.stats.CostSince(ctx, farmerID, monthStart)
		d.MonthlyCost = cost
		return err
	})
	g.Go(func() error {
		dist, err := s.stats.TypeDistributionSince(ctx, farmerID, last30)
		d.ActivityDistribution = dist
		return err
	})
	g.Go(func() error {
		trend, err := s.stats.MonthlyCostsSince(ctx, farmerID, trendStart)
		d.CostTrends = trend
		return err
	})

	if err := g.Wait(); err != nil {
		s.logger.Error("failed to build dashboard",
			slog.Int64("farmer_id", farmerID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to build dashboard: %w", err)
	}
	return d, nil
}
