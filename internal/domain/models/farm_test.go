package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFarmLedgerAddOrReplace(t *testing.T) {
	l := NewFarmLedger("FarmA")
	require.Equal(t, "FarmA", l.Name())

	d := MustParseMilkDate("2023-1-5")
	l.AddOrReplace(d, 100)
	l.AddOrReplace(d, 50)

	require.Equal(t, 1, l.Len())
	w, ok := l.Weight(d)
	require.True(t, ok)
	require.Equal(t, 50, w)
	require.Equal(t, map[string]int{"2023-1-5": 50}, l.Entries())
}

func TestFarmLedgerZeroPaddedDatesShareAnEntry(t *testing.T) {
	l := NewFarmLedger("FarmA")
	l.AddOrReplace(MustParseMilkDate("2024-1-5"), 10)
	l.AddOrReplace(MustParseMilkDate("2024-01-05"), 20)

	require.Equal(t, map[string]int{"2024-1-5": 20}, l.Entries())
}

func TestFarmLedgerRemove(t *testing.T) {
	l := NewFarmLedger("FarmA")
	d := MustParseMilkDate("2023-1-5")

	require.ErrorIs(t, l.Remove(d), ErrMissingData)

	l.AddOrReplace(d, 100)
	require.NoError(t, l.Remove(d))
	require.Equal(t, 0, l.Len())
	require.ErrorIs(t, l.Remove(d), ErrMissingData)
}

func TestFarmLedgerCloneIsIndependent(t *testing.T) {
	l := NewFarmLedger("FarmA")
	d := MustParseMilkDate("2023-1-5")
	l.AddOrReplace(d, 100)

	cp := l.Clone()
	l.AddOrReplace(d, 1)
	l.AddOrReplace(MustParseMilkDate("2023-1-6"), 2)

	w, _ := cp.Weight(d)
	require.Equal(t, 100, w)
	require.Equal(t, 1, cp.Len())
	require.Equal(t, "FarmA", cp.Name())

	sum := 0
	l.Each(func(_ MilkDate, weight int) { sum += weight })
	require.Equal(t, 3, sum)
}
