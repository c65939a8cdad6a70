package security

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/krishisakhi/backend/internal/domain"
)

// ResourceType identifies the kind of resource being accessed
type ResourceType string

const (
	ResourceFarm     ResourceType = "farm"
	ResourceActivity ResourceType = "activity"
)

// FarmOwnerLookup resolves the farmer that owns a farm.
type FarmOwnerLookup interface {
	OwnerOf(ctx context.Context, farmID int64) (int64, error)
}

// ActivityFarmLookup resolves the farm an activity was logged against.
type ActivityFarmLookup interface {
	FarmOf(ctx context.Context, activityID int64) (int64, error)
}

// OwnershipGuard binds farms and activities to their owning farmer. A missing
// resource and a resource owned by someone else both fail with
// domain.ErrNotFoundOrForbidden so callers cannot probe for other farmers' ids.
type OwnershipGuard struct {
	farms      FarmOwnerLookup
	activities ActivityFarmLookup
	logger     *slog.Logger
}

// NewOwnershipGuard creates a guard over the given lookups
func NewOwnershipGuard(farms FarmOwnerLookup, activities ActivityFarmLookup, logger *slog.Logger) *OwnershipGuard {
	if logger == nil {
		logger = slog.Default()
	}
	return &OwnershipGuard{farms: farms, activities: activities, logger: logger}
}

// AuthorizeFarmAccess succeeds only when farmID exists and belongs to farmerID.
func (g *OwnershipGuard) AuthorizeFarmAccess(ctx context.Context, farmerID, farmID int64) error {
	owner, err := g.farms.OwnerOf(ctx, farmID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			g.deny(farmerID, ResourceFarm, farmID, "missing")
			return domain.ErrNotFoundOrForbidden
		}
		return fmt.Errorf("failed to resolve farm owner: %w", err)
	}

	if owner != farmerID {
		g.deny(farmerID, ResourceFarm, farmID, "foreign")
		return domain.ErrNotFoundOrForbidden
	}
	return nil
}

// AuthorizeActivityAccess resolves the activity's farm and checks that.
func (g *OwnershipGuard) AuthorizeActivityAccess(ctx context.Context, farmerID, activityID int64) error {
	farmID, err := g.activities.FarmOf(ctx, activityID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			g.deny(farmerID, ResourceActivity, activityID, "missing")
			return domain.ErrNotFoundOrForbidden
		}
		return fmt.Errorf("failed to resolve activity farm: %w", err)
	}
	return g.AuthorizeFarmAccess(ctx, farmerID, farmID)
}

func (g *OwnershipGuard) deny(farmerID int64, kind ResourceType, id int64, reason string) {
	g.logger.Warn("resource access denied",
		slog.Int64("farmer_id", farmerID),
		slog.String("resource_type", string(kind)),
		slog.Int64("resource_id", id),
		slog.String("reason", reason),
	)
}
