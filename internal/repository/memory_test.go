package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krishisakhi/backend/internal/domain"
)

func day(s string) time.Time {
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func seedFarm(t *testing.T, store *MemoryStore, phone, email, farm string) (int64, int64) {
	t.Helper()
	ctx := context.Background()
	f := &domain.Farmer{Name: "n", Phone: phone, Email: email}
	require.NoError(t, store.Farmers().Create(ctx, f))
	fm := &domain.Farm{FarmerID: f.ID, Name: farm, Location: "Thrissur"}
	require.NoError(t, store.Farms().Create(ctx, fm))
	return f.ID, fm.ID
}

func TestMemoryFarmerUniqueness(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Farmers().Create(ctx, &domain.Farmer{Phone: "+911111111111", Email: "a@x.com"}))
	err := store.Farmers().Create(ctx, &domain.Farmer{Phone: "+911111111111", Email: "b@x.com"})
	assert.ErrorIs(t, err, domain.ErrDuplicateIdentity)
	err = store.Farmers().Create(ctx, &domain.Farmer{Phone: "+912222222222", Email: "a@x.com"})
	assert.ErrorIs(t, err, domain.ErrDuplicateIdentity)

	exists, err := store.Farmers().ExistsByPhoneOrEmail(ctx, "+913333333333", "a@x.com")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestMemoryFarmsInInsertionOrder(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	farmerID, _ := seedFarm(t, store, "+911111111111", "a@x.com", "F1")
	require.NoError(t, store.Farms().Create(ctx, &domain.Farm{FarmerID: farmerID, Name: "F2", CropTypes: []string{"rice", "rice"}}))

	farms, err := store.Farms().ListByFarmer(ctx, farmerID)
	require.NoError(t, err)
	require.Len(t, farms, 2)
	assert.Equal(t, "F1", farms[0].Name)
	assert.Equal(t, []string{"rice", "rice"}, farms[1].CropTypes)

	n, err := store.Farms().CountByFarmer(ctx, farmerID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestMemoryFarmRequiresFarmer(t *testing.T) {
	store := NewMemoryStore()
	err := store.Farms().Create(context.Background(), &domain.Farm{FarmerID: 4, Name: "F"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMemoryActivityOrdering(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	farmerID, farmID := seedFarm(t, store, "+911111111111", "a@x.com", "F1")

	for _, d := range []string{"2024-01-10", "2024-01-20", "2024-01-20"} {
		require.NoError(t, store.Activities().Create(ctx, &domain.Activity{FarmID: farmID, ActivityType: "Weeding", Date: day(d)}))
	}

	list, err := store.Activities().ListByFarmer(ctx, farmerID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, int64(3), list[0].ID)
	assert.Equal(t, int64(2), list[1].ID)
	assert.Equal(t, int64(1), list[2].ID)
	assert.Equal(t, "F1", list[0].FarmName)
}

func TestMemoryActivityUnknownFarm(t *testing.T) {
	store := NewMemoryStore()
	err := store.Activities().Create(context.Background(), &domain.Activity{FarmID: 12})
	assert.ErrorIs(t, err, domain.ErrNotFoundOrForbidden)
}

func TestMemoryActivityStats(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	farmerID, farmID := seedFarm(t, store, "+911111111111", "a@x.com", "F1")
	_, otherFarm := seedFarm(t, store, "+912222222222", "b@x.com", "G1")
	c1, c2 := 100.0, 50.0

	acts := store.Activities()
	require.NoError(t, acts.Create(ctx, &domain.Activity{FarmID: farmID, ActivityType: "Sowing", Date: day("2024-01-05"), Cost: &c1}))
	require.NoError(t, acts.Create(ctx, &domain.Activity{FarmID: farmID, ActivityType: "Sowing", Date: day("2024-02-05"), Cost: &c2}))
	require.NoError(t, acts.Create(ctx, &domain.Activity{FarmID: farmID, ActivityType: "Harvest", Date: day("2023-12-01"), Cost: &c2}))
	require.NoError(t, acts.Create(ctx, &domain.Activity{FarmID: otherFarm, ActivityType: "Sowing", Date: day("2024-01-05"), Cost: &c1}))

	since := day("2024-01-01")
	n, err := acts.CountSince(ctx, farmerID, since)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	cost, err := acts.CostSince(ctx, farmerID, since)
	require.NoError(t, err)
	assert.Equal(t, 150.0, cost)

	dist, err := acts.TypeDistributionSince(ctx, farmerID, since)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Sowing": 2}, dist)

	months, err := acts.MonthlyCostsSince(ctx, farmerID, since)
	require.NoError(t, err)
	assert.Equal(t, []domain.MonthlyCost{{Month: "2024-01", Cost: 100}, {Month: "2024-02", Cost: 50}}, months)
}

func TestMemoryOutbreaks(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	_, farmID := seedFarm(t, store, "+911111111111", "a@x.com", "F1")
	dets := store.Detections()

	require.NoError(t, dets.Create(ctx, &domain.Detection{FarmID: farmID, CropName: "rice", Disease: "Blast", Confidence: 80}))
	require.NoError(t, dets.Create(ctx, &domain.Detection{FarmID: farmID, CropName: "rice", Disease: "Blast", Confidence: 90}))
	require.NoError(t, dets.Create(ctx, &domain.Detection{FarmID: farmID, CropName: "pepper", Disease: "Quick Wilt", Confidence: 70}))

	got, err := dets.ListOutbreaks(ctx, "thrissur", time.Now().Add(-time.Hour), 2)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Blast", got[0].Disease)
	assert.Equal(t, 2, got[0].Occurrences)
	assert.Equal(t, 90.0, got[0].Confidence)

	got, err = dets.ListOutbreaks(ctx, "kannur", time.Now().Add(-time.Hour), 1)
	require.NoError(t, err)
	assert.Empty(t, got)

	for _, pattern := range []string{"%", "_", "thr%"} {
		got, err = dets.ListOutbreaks(ctx, pattern, time.Now().Add(-time.Hour), 1)
		require.NoError(t, err)
		assert.Empty(t, got, pattern)
	}
}
