package domain

import (
	"context"
	"time"
)

// MonthlyCost is the summed activity cost for one calendar month ("2006-01").
type MonthlyCost struct {
	Month string  `json:"month"`
	Cost  float64 `json:"cost"`
}

// Dashboard summarises a farmer's records.
type Dashboard struct {
	FarmCount            int            `json:"farmCount"`
	RecentActivities     int            `json:"recentActivities"`
	MonthlyCost          float64        `json:"monthlyCost"`
	ActivityDistribution map[string]int `json:"activityDistribution"`
	CostTrends           []MonthlyCost  `json:"costTrends"`
}

// ActivityStats defines the aggregate queries behind the dashboard. All
// windows are inclusive of since and scoped to the farmer's farms.
type ActivityStats interface {
	CountSince(ctx context.Context, farmerID int64, since time.Time) (int, error)
	CostSince(ctx context.Context, farmerID int64, since time.Time) (float64, error)
	TypeDistributionSince(ctx context.Context, farmerID int64, since time.Time) (map[string]int, error)
	MonthlyCostsSince(ctx context.Context, farmerID int64, since time.Time) ([]MonthlyCost, error)
}
