package ingestion

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/milkledger/internal/domain/models"
	"github.com/mamadbah2/milkledger/internal/repository/registry"
	"github.com/mamadbah2/milkledger/internal/repository/sheets"
)

var (
	// ErrFieldCount indicates a line that does not have exactly three fields.
	ErrFieldCount = errors.New("expected 3 comma separated fields")

	// ErrInvalidWeight indicates a weight field that is not an integer.
	ErrInvalidWeight = errors.New("weight is not an integer")

	// ErrEmptyFarmID indicates a blank farm id field.
	ErrEmptyFarmID = errors.New("empty farm id")

	// ErrLineTooLong indicates a line longer than MaxLineLength bytes.
	ErrLineTooLong = errors.New("line too long")
)

// MaxLineLength is the longest line, in bytes, IngestReader parses. Longer
// lines are skipped.
const MaxLineLength = 64 * 1024

// skippedTextLimit caps the text kept for a skipped oversized line.
const skippedTextLimit = 128

// SkippedLine describes an input line that was dropped.
type SkippedLine struct {
	Source string `json:"source"`
	Line   int    `json:"line"`
	Text   string `json:"text"`
	Reason string `json:"reason"`
}

// Result accounts for every line read from one or more sources.
type Result struct {
	Sources  []string      `json:"sources"`
	Lines    int           `json:"lines"`
	Accepted int           `json:"accepted"`
	Skipped  []SkippedLine `json:"skipped,omitempty"`
}

// Merge folds other into r.
func (r *Result) Merge(other Result) {
	r.Sources = append(r.Sources, other.Sources...)
	r.Lines += other.Lines
	r.Accepted += other.Accepted
	r.Skipped = append(r.Skipped, other.Skipped...)
}

// Service reads milk-weight lines into a registry. Bad lines never fail a
// load; they are reported in the Result.
type Service struct {
	logger *zap.Logger
}

// NewService wires a new ingestion service instance.
func NewService(logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{logger: logger}
}

// ParseLine parses "date,farmId,weight".
func ParseLine(line string) (models.MilkRecord, error) {
	fields := strings.Split(line, ",")
	if len(fields) != 3 {
		return models.MilkRecord{}, fmt.Errorf("%w: got %d", ErrFieldCount, len(fields))
	}

	date, err := models.ParseMilkDate(fields[0])
	if err != nil {
		return models.MilkRecord{}, err
	}

	farmID := strings.TrimSpace(fields[1])
	if farmID == "" {
		return models.MilkRecord{}, ErrEmptyFarmID
	}

	weight, err := strconv.Atoi(strings.TrimSpace(fields[2]))
	if err != nil {
		return models.MilkRecord{}, fmt.Errorf("%w: %q", ErrInvalidWeight, fields[2])
	}
	if weight < 0 {
		return models.MilkRecord{}, fmt.Errorf("%w: %d", models.ErrNegativeWeight, weight)
	}

	return models.MilkRecord{Date: date, FarmID: farmID, Weight: weight}, nil
}

// IngestLines feeds lines to reg in document order; a later line for the same
// farm and date overwrites an earlier one.
func (s *Service) IngestLines(reg *registry.Registry, source string, lines []string) Result {
	res := Result{Sources: []string{source}}
	for i, line := range lines {
		s.ingestLine(reg, source, i+1, line, &res)
	}
	s.logResult(res)
	return res
}

// IngestReader reads r line by line into reg. It fails only on read errors or
// context cancellation; oversized lines are skipped like malformed ones.
func (s *Service) IngestReader(ctx context.Context, reg *registry.Registry, source string, r io.Reader) (Result, error) {
	res := Result{Sources: []string{source}}

	br := bufio.NewReader(r)
	lineNo := 0
	for {
		line, tooLong, err := readLine(br, MaxLineLength)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, fmt.Errorf("read %s: %w", source, err)
		}

		lineNo++
		if lineNo%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return res, err
			}
		}

		if tooLong {
			s.skip(source, lineNo, line, fmt.Errorf("%w: more than %d bytes", ErrLineTooLong, MaxLineLength), &res)
			continue
		}
		s.ingestLine(reg, source, lineNo, line, &res)
	}

	s.logResult(res)
	return res, nil
}

// LoadFiles builds a fresh registry from paths, processed strictly in order.
func (s *Service) LoadFiles(ctx context.Context, paths []string) (*registry.Registry, Result, error) {
	reg := registry.New()
	var total Result

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, total, err
		}

		res, err := s.ingestFile(ctx, reg, path)
		total.Merge(res)
		if err != nil {
			return nil, total, err
		}
	}

	return reg, total, nil
}

// LoadSheet ingests the rows of a spreadsheet range. Each row contributes its
// first cells joined by commas, so a row with the wrong shape is skipped like
// a malformed file line.
func (s *Service) LoadSheet(ctx context.Context, reg *registry.Registry, reader sheets.Reader, sheetRange string) (Result, error) {
	rows, err := reader.ReadRange(ctx, sheetRange)
	if err != nil {
		return Result{}, fmt.Errorf("load sheet range %s: %w", sheetRange, err)
	}
	return s.IngestLines(reg, "sheet:"+sheetRange, RowsToLines(rows)), nil
}

// RowsToLines renders spreadsheet rows as comma separated lines.
func RowsToLines(rows [][]interface{}) []string {
	lines := make([]string, len(rows))
	for i, row := range rows {
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = fmt.Sprint(cell)
		}
		lines[i] = strings.Join(cells, ",")
	}
	return lines
}

func (s *Service) ingestFile(ctx context.Context, reg *registry.Registry, path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{Sources: []string{path}}, fmt.Errorf("open milk file %s: %w", path, err)
	}
	defer f.Close()

	return s.IngestReader(ctx, reg, path, f)
}

func (s *Service) ingestLine(reg *registry.Registry, source string, lineNo int, line string, res *Result) {
	rec, err := ParseLine(line)
	if err != nil {
		s.skip(source, lineNo, line, err, res)
		return
	}

	res.Lines++
	reg.Record(rec)
	res.Accepted++
}

func (s *Service) skip(source string, lineNo int, line string, reason error, res *Result) {
	res.Lines++
	s.logger.Debug("skip milk line",
		zap.String("source", source),
		zap.Int("line", lineNo),
		zap.String("text", line),
		zap.Error(reason))
	res.Skipped = append(res.Skipped, SkippedLine{Source: source, Line: lineNo, Text: line, Reason: reason.Error()})
}

// readLine returns the next line without its line ending. A line longer than
// limit is consumed to its end and reported as tooLong, with only its first
// bytes returned. io.EOF is returned once no line is left.
func readLine(br *bufio.Reader, limit int) (line string, tooLong bool, err error) {
	var buf []byte
	for {
		chunk, isPrefix, err := br.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) && (len(buf) > 0 || tooLong) {
				return string(buf), tooLong, nil
			}
			return "", false, err
		}

		if !tooLong {
			if len(buf)+len(chunk) > limit {
				tooLong = true
				buf = append(buf, chunk...)
				if len(buf) > skippedTextLimit {
					buf = buf[:skippedTextLimit]
				}
			} else {
				buf = append(buf, chunk...)
			}
		}

		if !isPrefix {
			return string(buf), tooLong, nil
		}
	}
}

func (s *Service) logResult(res Result) {
	s.logger.Info("milk source ingested",
		zap.Strings("sources", res.Sources),
		zap.Int("lines", res.Lines),
		zap.Int("accepted", res.Accepted),
		zap.Int("skipped", len(res.Skipped)))
}
