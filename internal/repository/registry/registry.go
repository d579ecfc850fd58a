package registry

import (
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/mamadbah2/milkledger/internal/domain/models"
)

// Registry maps farm ids to their ledgers and tracks the bounds of every
// ingested date. It is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	farms  map[string]*models.FarmLedger
	bounds models.DateBounds
}

// Snapshot is a point-in-time deep copy of a registry.
type Snapshot struct {
	Farms  map[string]*models.FarmLedger
	Bounds models.DateBounds
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{farms: make(map[string]*models.FarmLedger)}
}

// Record applies one ingested record: the bounds widen to include its date and
// the farm's entry for that date is created or overwritten.
func (r *Registry) Record(rec models.MilkRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.bounds = r.bounds.Extend(rec.Date)

	ledger, ok := r.farms[rec.FarmID]
	if !ok {
		ledger = models.NewFarmLedger(rec.FarmID)
		r.farms[rec.FarmID] = ledger
	}
	ledger.AddOrReplace(rec.Date, rec.Weight)
}

// AddMilk sets the weight of an existing farm for date. Bounds are not moved.
func (r *Registry) AddMilk(farmID string, date models.MilkDate, weight int) error {
	if weight < 0 {
		return fmt.Errorf("add milk for %s on %s: %w", farmID, date, models.ErrNegativeWeight)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ledger, ok := r.farms[farmID]
	if !ok {
		return fmt.Errorf("add milk for %s: %w", farmID, models.ErrFarmNotFound)
	}
	ledger.AddOrReplace(date, weight)
	return nil
}

// RemoveMilk deletes a farm's entry for date.
func (r *Registry) RemoveMilk(farmID string, date models.MilkDate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ledger, ok := r.farms[farmID]
	if !ok {
		return fmt.Errorf("remove milk for %s: %w", farmID, models.ErrFarmNotFound)
	}
	if err := ledger.Remove(date); err != nil {
		return fmt.Errorf("remove milk for %s on %s: %w", farmID, date, err)
	}
	return nil
}

// Len returns the number of farms.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.farms)
}

// Bounds returns the min/max of all ingested dates.
func (r *Registry) Bounds() models.DateBounds {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.bounds
}

// FarmIDs returns the farm ids in lexicographic order.
func (r *Registry) FarmIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.farms))
	for id := range r.farms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Years returns every distinct year with at least one entry, in numeric order.
func (r *Registry) Years() []string {
	r.mu.RLock()
	seen := make(map[int]struct{})
	for _, ledger := range r.farms {
		ledger.Each(func(date models.MilkDate, _ int) {
			seen[date.Year] = struct{}{}
		})
	}
	r.mu.RUnlock()

	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Ints(years)

	out := make([]string, len(years))
	for i, y := range years {
		out[i] = strconv.Itoa(y)
	}
	return out
}

// Months returns the names of the calendar months with at least one entry, in
// calendar order. Entries with an out-of-range month are ignored.
func (r *Registry) Months() []string {
	var present [13]bool

	r.mu.RLock()
	for _, ledger := range r.farms {
		ledger.Each(func(date models.MilkDate, _ int) {
			if date.Month >= 1 && date.Month <= 12 {
				present[date.Month] = true
			}
		})
	}
	r.mu.RUnlock()

	var out []string
	for m := 1; m <= 12; m++ {
		if present[m] {
			out = append(out, models.MonthName(m))
		}
	}
	return out
}

// Ledger returns a copy of one farm's ledger.
func (r *Registry) Ledger(farmID string) (*models.FarmLedger, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ledger, ok := r.farms[farmID]
	if !ok {
		return nil, fmt.Errorf("ledger for %s: %w", farmID, models.ErrFarmNotFound)
	}
	return ledger.Clone(), nil
}

// Snapshot deep-copies the registry so reports can run without holding the lock.
func (r *Registry) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	farms := make(map[string]*models.FarmLedger, len(r.farms))
	for id, ledger := range r.farms {
		farms[id] = ledger.Clone()
	}
	return Snapshot{Farms: farms, Bounds: r.bounds}
}

// Replace discards the current contents and takes over next's ledgers and
// bounds. next must not be used afterwards.
func (r *Registry) Replace(next *Registry) {
	if next == r {
		return
	}

	next.mu.Lock()
	farms, bounds := next.farms, next.bounds
	next.farms = make(map[string]*models.FarmLedger)
	next.bounds = models.DateBounds{}
	next.mu.Unlock()

	r.mu.Lock()
	r.farms = farms
	r.bounds = bounds
	r.mu.Unlock()
}
