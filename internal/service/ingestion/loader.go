package ingestion

import (
	"context"

	"go.uber.org/zap"

	"github.com/mamadbah2/milkledger/internal/repository/registry"
	"github.com/mamadbah2/milkledger/internal/repository/sheets"
)

// Loader rebuilds a live registry from the configured sources. Files are read
// first, in order, then the optional sheet range.
type Loader struct {
	svc        *Service
	target     *registry.Registry
	files      []string
	sheet      sheets.Reader
	sheetRange string
}

// NewLoader returns a loader that swaps freshly loaded data into target.
func NewLoader(svc *Service, target *registry.Registry, files []string) *Loader {
	return &Loader{svc: svc, target: target, files: files}
}

// WithSheet adds a spreadsheet range read after the files.
func (l *Loader) WithSheet(reader sheets.Reader, sheetRange string) *Loader {
	l.sheet = reader
	l.sheetRange = sheetRange
	return l
}

// Reload loads every source into a new registry and replaces the target's
// contents with it. On error the target is left untouched.
func (l *Loader) Reload(ctx context.Context) (Result, error) {
	next, res, err := l.svc.LoadFiles(ctx, l.files)
	if err != nil {
		return res, err
	}

	if l.sheet != nil {
		sheetRes, err := l.svc.LoadSheet(ctx, next, l.sheet, l.sheetRange)
		res.Merge(sheetRes)
		if err != nil {
			return res, err
		}
	}

	l.target.Replace(next)
	l.svc.logger.Info("milk registry reloaded",
		zap.Int("farms", l.target.Len()),
		zap.Int("accepted", res.Accepted),
		zap.Int("skipped", len(res.Skipped)))
	return res, nil
}
