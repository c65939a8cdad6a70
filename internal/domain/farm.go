package domain

import (
	"context"
	"time"
)

// DateLayout is the wire and storage format of activity dates.
const DateLayout = "2006-01-02"

// Farm is a landholding owned by exactly one farmer.
type Farm struct {
	ID             int64
	FarmerID       int64
	Name           string
	Location       string
	LandSize       float64 // hectares
	SoilType       string
	IrrigationType string
	CropTypes      []string // ordered, duplicates allowed
	CreatedAt      time.Time
}

// Activity is a dated farming action logged against a farm.
type Activity struct {
	ID           int64
	FarmID       int64
	ActivityType string
	Description  string
	Date         time.Time
	CropName     *string
	Quantity     *float64
	Cost         *float64
	Notes        *string
	CreatedAt    time.Time
}

// ActivityWithFarmName is the listing shape of an activity.
type ActivityWithFarmName struct {
	Activity
	FarmName string
}

// FarmRepository defines data access for farms
type FarmRepository interface {
	Create(ctx context.Context, farm *Farm) error
	ListByFarmer(ctx context.Context, farmerID int64) ([]*Farm, error)
	// OwnerOf returns the owning farmer id, or ErrNotFound.
	OwnerOf(ctx context.Context, farmID int64) (int64, error)
	CountByFarmer(ctx context.Context, farmerID int64) (int, error)
}

// ActivityRepository defines data access for activities
type ActivityRepository interface {
	// Create inserts the activity. An unknown farm id returns
	// ErrNotFoundOrForbidden.
	Create(ctx context.Context, activity *Activity) error
	GetByID(ctx context.Context, id int64) (*ActivityWithFarmName, error)
	// FarmOf returns the parent farm id, or ErrNotFound.
	FarmOf(ctx context.Context, activityID int64) (int64, error)
	// ListByFarm and ListByFarmer return newest date first, then newest id.
	ListByFarm(ctx context.Context, farmID int64) ([]*ActivityWithFarmName, error)
	ListByFarmer(ctx context.Context, farmerID int64) ([]*ActivityWithFarmName, error)
}
