package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/krishisakhi/backend/internal/domain"
)

// MemoryStore keeps every table in process memory behind one lock. It backs
// STORE=memory and the service tests; each accessor returns a repository view
// over the same data so foreign keys can be checked.
type MemoryStore struct {
	mu         sync.RWMutex
	farmers    map[int64]domain.Farmer
	farms      map[int64]domain.Farm
	activities map[int64]domain.Activity
	detections map[int64]domain.Detection
	nextID     map[string]int64
	now        func() time.Time
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		farmers:    map[int64]domain.Farmer{},
		farms:      map[int64]domain.Farm{},
		activities: map[int64]domain.Activity{},
		detections: map[int64]domain.Detection{},
		nextID:     map[string]int64{},
		now:        time.Now,
	}
}

func (s *MemoryStore) id(table string) int64 {
	s.nextID[table]++
	return s.nextID[table]
}

// Farmers returns the farmer repository view
func (s *MemoryStore) Farmers() *MemoryFarmerRepository { return &MemoryFarmerRepository{s: s} }

// Farms returns the farm repository view
func (s *MemoryStore) Farms() *MemoryFarmRepository { return &MemoryFarmRepository{s: s} }

// Activities returns the activity repository view
func (s *MemoryStore) Activities() *MemoryActivityRepository { return &MemoryActivityRepository{s: s} }

// Detections returns the detection repository view
func (s *MemoryStore) Detections() *MemoryDetectionRepository { return &MemoryDetectionRepository{s: s} }

// MemoryFarmerRepository implements domain.FarmerRepository in memory
type MemoryFarmerRepository struct{ s *MemoryStore }

func (r *MemoryFarmerRepository) Create(_ context.Context, f *domain.Farmer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.farmers {
		if existing.Phone == f.Phone || existing.Email == f.Email {
			return domain.ErrDuplicateIdentity
		}
	}
	f.ID = r.s.id("farmers")
	f.CreatedAt = r.s.now()
	r.s.farmers[f.ID] = *f
	return nil
}

func (r *MemoryFarmerRepository) GetByID(_ context.Context, id int64) (*domain.Farmer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	f, ok := r.s.farmers[id]
	if !ok {
		return nil, fmt.Errorf("farmer %w", domain.ErrNotFound)
	}
	return &f, nil
}

func (r *MemoryFarmerRepository) GetByPhone(_ context.Context, phone string) (*domain.Farmer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, f := range r.s.farmers {
		if f.Phone == phone {
			return &f, nil
		}
	}
	return nil, fmt.Errorf("farmer %w", domain.ErrNotFound)
}

func (r *MemoryFarmerRepository) ExistsByPhoneOrEmail(_ context.Context, phone, email string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, f := range r.s.farmers {
		if f.Phone == phone || f.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryFarmerRepository) UpdateLanguage(_ context.Context, id int64, lang domain.Language) error {
	return r.update(id, func(f *domain.Farmer) { f.Language = lang })
}

func (r *MemoryFarmerRepository) UpdatePasswordHash(_ context.Context, id int64, hash string) error {
	return r.update(id, func(f *domain.Farmer) { f.PasswordHash = hash })
}

func (r *MemoryFarmerRepository) update(id int64, fn func(*domain.Farmer)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	f, ok := r.s.farmers[id]
	if !ok {
		return fmt.Errorf("farmer %w", domain.ErrNotFound)
	}
	fn(&f)
	r.s.farmers[id] = f
	return nil
}

// MemoryFarmRepository implements domain.FarmRepository in memory
type MemoryFarmRepository struct{ s *MemoryStore }

func (r *MemoryFarmRepository) Create(_ context.Context, farm *domain.Farm) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.farmers[farm.FarmerID]; !ok {
		return fmt.Errorf("farmer %w", domain.ErrNotFound)
	}
	farm.ID = r.s.id("farms")
	farm.CreatedAt = r.s.now()
	stored := *farm
	stored.CropTypes = append([]string{}, farm.CropTypes...)
	r.s.farms[farm.ID] = stored
	return nil
}

func (r *MemoryFarmRepository) ListByFarmer(_ context.Context, farmerID int64) ([]*domain.Farm, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []*domain.Farm{}
	for _, f := range r.s.farms {
		if f.FarmerID == farmerID {
			f := f
			f.CropTypes = append([]string{}, f.CropTypes...)
			out = append(out, &f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryFarmRepository) OwnerOf(_ context.Context, farmID int64) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	f, ok := r.s.farms[farmID]
	if !ok {
		return 0, fmt.Errorf("farm %w", domain.ErrNotFound)
	}
	return f.FarmerID, nil
}

func (r *MemoryFarmRepository) CountByFarmer(_ context.Context, farmerID int64) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n := 0
	for _, f := range r.s.farms {
		if f.FarmerID == farmerID {
			n++
		}
	}
	return n, nil
}

// MemoryActivityRepository implements domain.ActivityRepository and
// domain.ActivityStats in memory
type MemoryActivityRepository struct{ s *MemoryStore }

func (r *MemoryActivityRepository) Create(_ context.Context, a *domain.Activity) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.farms[a.FarmID]; !ok {
		return domain.ErrNotFoundOrForbidden
	}
	a.ID = r.s.id("activities")
	a.CreatedAt = r.s.now()
	r.s.activities[a.ID] = *a
	return nil
}

func (r *MemoryActivityRepository) GetByID(_ context.Context, id int64) (*domain.ActivityWithFarmName, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.activities[id]
	if !ok {
		return nil, fmt.Errorf("activity %w", domain.ErrNotFound)
	}
	return &domain.ActivityWithFarmName{Activity: a, FarmName: r.s.farms[a.FarmID].Name}, nil
}

func (r *MemoryActivityRepository) FarmOf(_ context.Context, activityID int64) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.activities[activityID]
	if !ok {
		return 0, fmt.Errorf("activity %w", domain.ErrNotFound)
	}
	return a.FarmID, nil
}

func (r *MemoryActivityRepository) ListByFarm(_ context.Context, farmID int64) ([]*domain.ActivityWithFarmName, error) {
	return r.list(func(a domain.Activity, _ domain.Farm) bool { return a.FarmID == farmID }), nil
}

func (r *MemoryActivityRepository) ListByFarmer(_ context.Context, farmerID int64) ([]*domain.ActivityWithFarmName, error) {
	return r.list(func(_ domain.Activity, f domain.Farm) bool { return f.FarmerID == farmerID }), nil
}

func (r *MemoryActivityRepository) list(match func(domain.Activity, domain.Farm) bool) []*domain.ActivityWithFarmName {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []*domain.ActivityWithFarmName{}
	for _, a := range r.s.activities {
		farm := r.s.farms[a.FarmID]
		if match(a, farm) {
			out = append(out, &domain.ActivityWithFarmName{Activity: a, FarmName: farm.Name})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (r *MemoryActivityRepository) since(farmerID int64, since time.Time) []domain.Activity {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	cutoff := since.Truncate(24 * time.Hour)
	var out []domain.Activity
	for _, a := range r.s.activities {
		if r.s.farms[a.FarmID].FarmerID == farmerID && !a.Date.Before(cutoff) {
			out = append(out, a)
		}
	}
	return out
}

func (r *MemoryActivityRepository) CountSince(_ context.Context, farmerID int64, since time.Time) (int, error) {
	return len(r.since(farmerID, since)), nil
}

func (r *MemoryActivityRepository) CostSince(_ context.Context, farmerID int64, since time.Time) (float64, error) {
	total := 0.0
	for _, a := range r.since(farmerID, since) {
		if a.Cost != nil {
			total += *a.Cost
		}
	}
	return total, nil
}

func (r *MemoryActivityRepository) TypeDistributionSince(_ context.Context, farmerID int64, since time.Time) (map[string]int, error) {
	out := map[string]int{}
	for _, a := range r.since(farmerID, since) {
		out[a.ActivityType]++
	}
	return out, nil
}

func (r *MemoryActivityRepository) MonthlyCostsSince(_ context.Context, farmerID int64, since time.Time) ([]domain.MonthlyCost, error) {
	byMonth := map[string]float64{}
	for _, a := range r.since(farmerID, since) {
		cost := 0.0
		if a.Cost != nil {
			cost = *a.Cost
		}
		byMonth[a.Date.Format("2006-01")] += cost
	}
	out := make([]domain.MonthlyCost, 0, len(byMonth))
	for month, cost := range byMonth {
		out = append(out, domain.MonthlyCost{Month: month, Cost: cost})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out, nil
}

// MemoryDetectionRepository implements domain.DetectionRepository in memory
type MemoryDetectionRepository struct{ s *MemoryStore }

func (r *MemoryDetectionRepository) Create(_ context.Context, d *domain.Detection) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.farms[d.FarmID]; !ok {
		return domain.ErrNotFoundOrForbidden
	}
	d.ID = r.s.id("detections")
	d.CreatedAt = r.s.now()
	r.s.detections[d.ID] = *d
	return nil
}

func (r *MemoryDetectionRepository) ListOutbreaks(_ context.Context, location string, since time.Time, minOccurrences int) ([]domain.Outbreak, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	type key struct{ disease, crop, location string }
	groups := map[key]*domain.Outbreak{}
	needle := strings.ToLower(location)

	for _, d := range r.s.detections {
		farm := r.s.farms[d.FarmID]
		if d.CreatedAt.Before(since) {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(farm.Location), needle) {
			continue
		}
		k := key{d.Disease, d.CropName, farm.Location}
		g, ok := groups[k]
		if !ok {
			g = &domain.Outbreak{Disease: d.Disease, Crop: d.CropName, Location: farm.Location}
			groups[k] = g
		}
		g.Occurrences++
		if d.Confidence > g.Confidence {
			g.Confidence = d.Confidence
		}
		if d.CreatedAt.After(g.LastSeen) {
			g.LastSeen = d.CreatedAt
		}
	}

	out := []domain.Outbreak{}
	for _, g := range groups {
		if g.Occurrences >= minOccurrences {
			out = append(out, *g)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Occurrences != out[j].Occurrences {
			return out[i].Occurrences > out[j].Occurrences
		}
		return out[i].LastSeen.After(out[j].LastSeen)
	})
	return out, nil
}
