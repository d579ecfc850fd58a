package ingestion

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/milkledger/internal/domain/models"
	"github.com/mamadbah2/milkledger/internal/repository/registry"
)

func TestLoaderReloadReplacesRegistry(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "milk.csv", "2023-1-5,FarmA,100\n")

	live := registry.New()
	live.Record(models.MilkRecord{Date: models.MustParseMilkDate("2020-1-1"), FarmID: "Stale", Weight: 1})

	sheet := &fakeSheet{rows: [][]interface{}{{"2023-2-1", "FarmB", "200"}}}
	loader := NewLoader(NewService(nil), live, []string{path}).WithSheet(sheet, "Milk!A:C")

	res, err := loader.Reload(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, res.Accepted)
	require.Equal(t, []string{path, "sheet:Milk!A:C"}, res.Sources)
	require.Equal(t, []string{"FarmA", "FarmB"}, live.FarmIDs())
	require.Equal(t, "2023-1-5", live.Bounds().Min.String())
}

func TestLoaderReloadFailureKeepsRegistry(t *testing.T) {
	live := registry.New()
	live.Record(models.MilkRecord{Date: models.MustParseMilkDate("2020-1-1"), FarmID: "Kept", Weight: 1})

	_, err := NewLoader(NewService(nil), live, []string{filepath.Join(t.TempDir(), "gone.csv")}).Reload(context.Background())
	require.Error(t, err)
	require.Equal(t, []string{"Kept"}, live.FarmIDs())

	path := writeFile(t, t.TempDir(), "milk.csv", "2023-1-5,FarmA,100\n")
	loader := NewLoader(NewService(nil), live, []string{path}).WithSheet(&fakeSheet{err: errors.New("403")}, "Milk!A:C")
	_, err = loader.Reload(context.Background())
	require.Error(t, err)
	require.Equal(t, []string{"Kept"}, live.FarmIDs())
}
