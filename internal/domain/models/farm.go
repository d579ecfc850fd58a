package models

// MilkRecord is one accepted line of a milk-weight file.
type MilkRecord struct {
	Date   MilkDate
	FarmID string
	Weight int
}

// FarmLedger holds the daily milk weights of a single farm, at most one
// weight per date. Non-negativity is enforced by the callers that mutate it.
type FarmLedger struct {
	name    string
	entries map[MilkDate]int
}

// NewFarmLedger returns an empty ledger for the named farm.
func NewFarmLedger(name string) *FarmLedger {
	return &FarmLedger{name: name, entries: make(map[MilkDate]int)}
}

// Name returns the farm's display name.
func (l *FarmLedger) Name() string {
	return l.name
}

// AddOrReplace stores the weight for date, overwriting any previous value.
func (l *FarmLedger) AddOrReplace(date MilkDate, weight int) {
	l.entries[date] = weight
}

// Remove deletes the entry for date.
func (l *FarmLedger) Remove(date MilkDate) error {
	if _, ok := l.entries[date]; !ok {
		return ErrMissingData
	}
	delete(l.entries, date)
	return nil
}

// Weight returns the stored weight for date.
func (l *FarmLedger) Weight(date MilkDate) (int, bool) {
	w, ok := l.entries[date]
	return w, ok
}

func (l *FarmLedger) Len() int {
	return len(l.entries)
}

// Entries returns a snapshot keyed by canonical date text. Iteration order is
// not defined.
func (l *FarmLedger) Entries() map[string]int {
	out := make(map[string]int, len(l.entries))
	for date, weight := range l.entries {
		out[date.String()] = weight
	}
	return out
}

// Each calls fn for every entry in unspecified order.
func (l *FarmLedger) Each(fn func(date MilkDate, weight int)) {
	for date, weight := range l.entries {
		fn(date, weight)
	}
}

// Clone returns an independent copy of the ledger.
func (l *FarmLedger) Clone() *FarmLedger {
	cp := &FarmLedger{name: l.name, entries: make(map[MilkDate]int, len(l.entries))}
	for date, weight := range l.entries {
		cp.entries[date] = weight
	}
	return cp
}
