package registry

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/milkledger/internal/domain/models"
)

func record(date, farm string, weight int) models.MilkRecord {
	return models.MilkRecord{Date: models.MustParseMilkDate(date), FarmID: farm, Weight: weight}
}

func TestRecordOverwritesSameFarmAndDate(t *testing.T) {
	r := New()
	r.Record(record("2023-1-5", "FarmA", 100))
	r.Record(record("2023-1-5", "FarmA", 50))

	ledger, err := r.Ledger("FarmA")
	require.NoError(t, err)
	require.Equal(t, map[string]int{"2023-1-5": 50}, ledger.Entries())
}

func TestRecordTracksBounds(t *testing.T) {
	r := New()
	require.False(t, r.Bounds().Set)

	r.Record(record("2023-3-1", "FarmA", 1))
	r.Record(record("2023-1-1", "FarmB", 1))
	r.Record(record("2023-12-31", "FarmA", 1))
	r.Record(record("2023-6-1", "FarmC", 1))

	b := r.Bounds()
	require.True(t, b.Set)
	require.Equal(t, "2023-1-1", b.Min.String())
	require.Equal(t, "2023-12-31", b.Max.String())
}

func TestFarmIDsSorted(t *testing.T) {
	r := New()
	r.Record(record("2023-1-1", "Farm 2", 1))
	r.Record(record("2023-1-1", "Farm 10", 1))
	r.Record(record("2023-1-2", "Farm 1", 1))
	r.Record(record("2023-1-3", "Farm 2", 1))

	require.Equal(t, []string{"Farm 1", "Farm 10", "Farm 2"}, r.FarmIDs())
	require.Equal(t, 3, r.Len())
	_, err := r.Ledger("Farm 10")
	require.NoError(t, err)
	_, err = r.Ledger("farm 10")
	require.ErrorIs(t, err, models.ErrFarmNotFound)
}

func TestYearsSortedNumerically(t *testing.T) {
	r := New()
	r.Record(record("2023-1-1", "A", 1))
	r.Record(record("999-1-1", "B", 1))
	r.Record(record("10000-1-1", "A", 1))
	r.Record(record("2023-5-1", "B", 1))

	require.Equal(t, []string{"999", "2023", "10000"}, r.Years())
}

func TestMonthsInCalendarOrder(t *testing.T) {
	r := New()
	r.Record(record("2023-11-1", "A", 1))
	r.Record(record("2022-2-1", "B", 1))
	r.Record(record("2023-2-7", "A", 1))
	r.Record(record("2023-13-1", "A", 1))

	require.Equal(t, []string{"February", "November"}, r.Months())
}

func TestAddMilk(t *testing.T) {
	r := New()
	r.Record(record("2023-1-5", "FarmA", 100))
	d := models.MustParseMilkDate("2023-1-6")

	require.NoError(t, r.AddMilk("FarmA", d, 30))
	ledger, _ := r.Ledger("FarmA")
	w, ok := ledger.Weight(d)
	require.True(t, ok)
	require.Equal(t, 30, w)

	// Single-entry mutators do not widen the ingested bounds.
	require.Equal(t, "2023-1-5", r.Bounds().Max.String())

	require.ErrorIs(t, r.AddMilk("FarmZ", d, 30), models.ErrFarmNotFound)
}

func TestAddMilkNegativeWeightLeavesLedgerUnchanged(t *testing.T) {
	r := New()
	r.Record(record("2023-1-5", "FarmA", 100))

	err := r.AddMilk("FarmA", models.MustParseMilkDate("2023-1-5"), -5)
	require.ErrorIs(t, err, models.ErrNegativeWeight)

	ledger, _ := r.Ledger("FarmA")
	require.Equal(t, map[string]int{"2023-1-5": 100}, ledger.Entries())
}

func TestRemoveMilk(t *testing.T) {
	r := New()
	r.Record(record("2023-1-5", "FarmA", 100))

	err := r.RemoveMilk("FarmA", models.MustParseMilkDate("2023-1-6"))
	require.ErrorIs(t, err, models.ErrMissingData)

	err = r.RemoveMilk("FarmB", models.MustParseMilkDate("2023-1-5"))
	require.ErrorIs(t, err, models.ErrFarmNotFound)

	require.NoError(t, r.RemoveMilk("FarmA", models.MustParseMilkDate("2023-01-05")))
	ledger, _ := r.Ledger("FarmA")
	require.Equal(t, 0, ledger.Len())
	require.Equal(t, []string{"FarmA"}, r.FarmIDs())
}

func TestSnapshotIsIsolated(t *testing.T) {
	r := New()
	r.Record(record("2023-1-5", "FarmA", 100))

	snap := r.Snapshot()
	r.Record(record("2023-1-5", "FarmA", 1))
	r.Record(record("2023-1-6", "FarmB", 1))

	require.Len(t, snap.Farms, 1)
	w, _ := snap.Farms["FarmA"].Weight(models.MustParseMilkDate("2023-1-5"))
	require.Equal(t, 100, w)
	require.Equal(t, "2023-1-5", snap.Bounds.Max.String())
}

func TestReplace(t *testing.T) {
	r := New()
	r.Record(record("2023-1-5", "Old", 100))

	next := New()
	next.Record(record("2024-2-1", "New", 7))
	r.Replace(next)

	require.Equal(t, []string{"New"}, r.FarmIDs())
	require.Equal(t, "2024-2-1", r.Bounds().Min.String())
	require.Equal(t, 0, next.Len())

	r.Replace(r)
	require.Equal(t, []string{"New"}, r.FarmIDs())
}
