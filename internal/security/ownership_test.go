package security

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krishisakhi/backend/internal/domain"
	"github.com/krishisakhi/backend/internal/repository"
)

type fixture struct {
	guard       *OwnershipGuard
	farmerA     int64
	farmerB     int64
	farmA       int64
	farmB       int64
	activityOfA int64
	activityOfB int64
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	store := repository.NewMemoryStore()

	a := &domain.Farmer{Phone: "+911111111111", Email: "a@x.com"}
	b := &domain.Farmer{Phone: "+912222222222", Email: "b@x.com"}
	require.NoError(t, store.Farmers().Create(ctx, a))
	require.NoError(t, store.Farmers().Create(ctx, b))

	fa := &domain.Farm{FarmerID: a.ID, Name: "A1"}
	fb := &domain.Farm{FarmerID: b.ID, Name: "B1"}
	require.NoError(t, store.Farms().Create(ctx, fa))
	require.NoError(t, store.Farms().Create(ctx, fb))

	aa := &domain.Activity{FarmID: fa.ID, ActivityType: "Sowing"}
	ab := &domain.Activity{FarmID: fb.ID, ActivityType: "Sowing"}
	require.NoError(t, store.Activities().Create(ctx, aa))
	require.NoError(t, store.Activities().Create(ctx, ab))

	return fixture{
		guard:       NewOwnershipGuard(store.Farms(), store.Activities(), nil),
		farmerA:     a.ID,
		farmerB:     b.ID,
		farmA:       fa.ID,
		farmB:       fb.ID,
		activityOfA: aa.ID,
		activityOfB: ab.ID,
	}
}

func TestAuthorizeFarmAccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.NoError(t, f.guard.AuthorizeFarmAccess(ctx, f.farmerA, f.farmA))
	assert.ErrorIs(t, f.guard.AuthorizeFarmAccess(ctx, f.farmerA, f.farmB), domain.ErrNotFoundOrForbidden)
	assert.ErrorIs(t, f.guard.AuthorizeFarmAccess(ctx, f.farmerB, f.farmA), domain.ErrNotFoundOrForbidden)
}

func TestMissingAndForeignFarmLookAlike(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	missing := f.guard.AuthorizeFarmAccess(ctx, f.farmerA, 999)
	foreign := f.guard.AuthorizeFarmAccess(ctx, f.farmerA, f.farmB)
	require.Error(t, missing)
	require.Error(t, foreign)
	assert.Equal(t, foreign.Error(), missing.Error())
}

func TestAuthorizeActivityAccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.NoError(t, f.guard.AuthorizeActivityAccess(ctx, f.farmerA, f.activityOfA))
	assert.ErrorIs(t, f.guard.AuthorizeActivityAccess(ctx, f.farmerA, f.activityOfB), domain.ErrNotFoundOrForbidden)
	assert.ErrorIs(t, f.guard.AuthorizeActivityAccess(ctx, f.farmerA, 404), domain.ErrNotFoundOrForbidden)
}

type brokenLookup struct{}

func (brokenLookup) OwnerOf(context.Context, int64) (int64, error) {
	return 0, errors.New("connection refused")
}

func (brokenLookup) FarmOf(context.Context, int64) (int64, error) {
	return 0, errors.New("connection refused")
}

func TestStoreFailureIsNotReportedAsForbidden(t *testing.T) {
	g := NewOwnershipGuard(brokenLookup{}, brokenLookup{}, nil)

	err := g.AuthorizeFarmAccess(context.Background(), 1, 1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotFoundOrForbidden)

	err = g.AuthorizeActivityAccess(context.Background(), 1, 1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotFoundOrForbidden)
}
