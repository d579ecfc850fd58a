package commands

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/milkledger/internal/domain/models"
	"github.com/mamadbah2/milkledger/internal/repository/registry"
	"github.com/mamadbah2/milkledger/internal/service/reporting"
)

type fakeRows struct {
	rng  string
	rows [][]interface{}
	err  error
}

func (f *fakeRows) WriteRow(_ context.Context, sheetRange string, values []interface{}) error {
	if f.err != nil {
		return f.err
	}
	f.rng = sheetRange
	f.rows = append(f.rows, values)
	return nil
}

func newDispatcher(t *testing.T) (*registry.Registry, *Service) {
	t.Helper()
	reg := registry.New()
	reg.Record(models.MilkRecord{Date: models.MustParseMilkDate("2023-1-5"), FarmID: "FarmA", Weight: 100})
	reg.Record(models.MilkRecord{Date: models.MustParseMilkDate("2023-2-1"), FarmID: "FarmB", Weight: 200})
	return reg, NewService(reg, reporting.NewService(reg, 2, nil), nil)
}

func run(t *testing.T, svc *Service, text string) (string, error) {
	t.Helper()
	return svc.HandleCommand(context.Background(), models.ParseCommand(text), "tester")
}

func TestAddAndRemove(t *testing.T) {
	reg, svc := newDispatcher(t)

	reply, err := run(t, svc, "/add FarmA 2023-01-06 40")
	require.NoError(t, err)
	require.Equal(t, "Recorded 40 lbs for FarmA on 2023-1-6.", reply)

	ledger, _ := reg.Ledger("FarmA")
	w, ok := ledger.Weight(models.MustParseMilkDate("2023-1-6"))
	require.True(t, ok)
	require.Equal(t, 40, w)

	reply, err = run(t, svc, "/remove FarmA 2023-1-6")
	require.NoError(t, err)
	require.Equal(t, "Removed FarmA entry for 2023-1-6.", reply)

	_, err = run(t, svc, "/remove FarmA 2023-1-6")
	require.ErrorIs(t, err, models.ErrMissingData)
}

func TestAddErrors(t *testing.T) {
	reg, svc := newDispatcher(t)

	_, err := run(t, svc, "/add FarmA 2023-1-5 -5")
	require.ErrorIs(t, err, models.ErrNegativeWeight)
	ledger, _ := reg.Ledger("FarmA")
	require.Equal(t, map[string]int{"2023-1-5": 100}, ledger.Entries())

	_, err = run(t, svc, "/add FarmZ 2023-1-5 5")
	require.ErrorIs(t, err, models.ErrFarmNotFound)

	_, err = run(t, svc, "/add FarmA 2023-1-5 heavy")
	require.ErrorIs(t, err, ErrInvalidArguments)

	_, err = run(t, svc, "/add FarmA 5th-of-jan 5")
	require.ErrorIs(t, err, models.ErrInvalidDate)

	_, err = run(t, svc, "/add FarmA")
	require.ErrorIs(t, err, ErrInvalidArguments)
}

func TestAddMirrorsToSheet(t *testing.T) {
	_, svc := newDispatcher(t)
	rows := &fakeRows{}
	svc.WithRowWriter(rows, "Milk!A:C")

	_, err := run(t, svc, "/add FarmB 2023-2-2 75")
	require.NoError(t, err)
	require.Equal(t, "Milk!A:C", rows.rng)
	require.Equal(t, [][]interface{}{{"2023-2-2", "FarmB", 75}}, rows.rows)

	rows.err = errors.New("quota")
	reply, err := run(t, svc, "/add FarmB 2023-2-3 75")
	require.NoError(t, err)
	require.Contains(t, reply, "Sheet sync failed.")
}

func TestReportCommands(t *testing.T) {
	_, svc := newDispatcher(t)

	reply, err := run(t, svc, "/farm FarmA 2023")
	require.NoError(t, err)
	require.Contains(t, reply, "JANUARY: 100 lbs, (100.00%)")

	reply, err = run(t, svc, "/ANNUAL 2023")
	require.NoError(t, err)
	require.Contains(t, reply, "FarmB: 200 lbs, (66.67%)")

	reply, err = run(t, svc, "/monthly february 2023")
	require.NoError(t, err)
	require.Contains(t, reply, "FarmA: 0 lbs, (0.00%)")
	require.Contains(t, reply, "FarmB: 200 lbs, (100.00%)")

	reply, err = run(t, svc, "/range 2023-1-5 2023-1-31")
	require.NoError(t, err)
	require.Contains(t, reply, "TOTAL: 100 lbs")

	reply, err = run(t, svc, "/summary FarmA 2023 max")
	require.NoError(t, err)
	require.Equal(t, "FarmA - 2023 maximum: January: 100 lbs, (100.00%)", reply)
}

func TestRangeCommandChecksBounds(t *testing.T) {
	_, svc := newDispatcher(t)

	_, err := run(t, svc, "/range 2022-1-1 2023-1-31")
	require.ErrorIs(t, err, models.ErrStartDateOutOfRange)

	_, err = run(t, svc, "/range 2023-1-5 2024-1-1")
	require.ErrorIs(t, err, models.ErrEndDateOutOfRange)

	_, err = run(t, svc, "/range 2023-2-1 2023-1-5")
	require.ErrorIs(t, err, models.ErrInvalidDate)
}

func TestListingCommands(t *testing.T) {
	_, svc := newDispatcher(t)

	reply, err := run(t, svc, "/farms")
	require.NoError(t, err)
	require.Equal(t, "Farms (2): FarmA, FarmB", reply)

	reply, err = run(t, svc, "/years")
	require.NoError(t, err)
	require.Equal(t, "Years (1): 2023", reply)

	empty := NewService(registry.New(), reporting.NewService(registry.New(), 2, nil), nil)
	reply, err = run(t, empty, "/farms")
	require.NoError(t, err)
	require.Equal(t, "No farms loaded.", reply)
}

func TestUnknownCommand(t *testing.T) {
	_, svc := newDispatcher(t)

	_, err := run(t, svc, "/weather 12")
	require.ErrorIs(t, err, ErrUnsupportedCommand)
	require.Contains(t, ReplyForError(err), "/annual <year>")

	reply, err := run(t, svc, "help")
	require.NoError(t, err)
	require.Equal(t, helpText, reply)
}

func TestReplyForError(t *testing.T) {
	require.Equal(t, "Farm not found. Send /farms to list known farms.", ReplyForError(models.ErrFarmNotFound))
	require.Equal(t, "Milk weight cannot be negative.", ReplyForError(models.ErrNegativeWeight))
	require.Contains(t, ReplyForError(reporting.ErrUnknownSummary), "Invalid input")
	require.Equal(t, "Something went wrong while processing your command.", ReplyForError(errors.New("boom")))
}
