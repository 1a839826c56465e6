package ledger

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ALTERAPICKS/nba/internal/model"
)

// Header is the ledger column order. It never changes: readers of old
// files must keep working.
var Header = []string{
	"date",
	"game_id",
	"pick_type",
	"edge_points",
	"model_line",
	"market_line",
	"result_correct",
	"confidence_band",
	"variance_flag",
	"injury_flag",
	"notes",
}

// CSVStore appends records to a comma-delimited ledger file. The file
// handle is scoped to each operation; nothing stays open between calls.
type CSVStore struct {
	path   string
	logger zerolog.Logger
}

// NewCSVStore opens (creating if needed) the ledger at path. Creation is
// idempotent: an existing file is never truncated or rewritten.
func NewCSVStore(path string) (*CSVStore, error) {
	s := &CSVStore{
		path:   path,
		logger: log.With().Str("component", "ledger").Str("path", path).Logger(),
	}
	if err := s.ensureStorage(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the location of the ledger file.
func (s *CSVStore) Path() string {
	return s.path
}

// ensureStorage creates the containing directory and the header row when
// the ledger does not exist yet.
func (s *CSVStore) ensureStorage() error {
	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return &PersistenceError{Op: "stat", Err: err}
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &PersistenceError{Op: "mkdir", Err: err}
		}
	}

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil
		}
		return &PersistenceError{Op: "create", Err: err}
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(Header); err != nil {
		return &PersistenceError{Op: "write header", Err: err}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return &PersistenceError{Op: "write header", Err: err}
	}
	if err := f.Sync(); err != nil {
		return &PersistenceError{Op: "sync", Err: err}
	}

	s.logger.Info().Msg("created performance ledger")
	return nil
}

// Append writes one record as a single row. The row is buffered and lands
// in one O_APPEND write, so a crash mid-call cannot tear earlier rows.
func (s *CSVStore) Append(ctx context.Context, rec model.PerformanceRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := rec.Validate(); err != nil {
		return err
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return &PersistenceError{Op: "open", Err: err}
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(encodeRow(rec)); err != nil {
		return &PersistenceError{Op: "append", Err: err}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return &PersistenceError{Op: "append", Err: err}
	}
	if err := f.Sync(); err != nil {
		return &PersistenceError{Op: "sync", Err: err}
	}

	s.logger.Debug().
		Str("game_id", rec.GameID).
		Str("pick_type", string(rec.PickType)).
		Str("confidence_band", string(rec.ConfidenceBand)).
		Msg("appended record")
	return nil
}

// Exists reports whether the (date, game, pick type) key is already logged.
func (s *CSVStore) Exists(ctx context.Context, key model.Key) (bool, error) {
	keys, err := s.Keys(ctx)
	if err != nil {
		return false, err
	}
	return keys[key], nil
}

// Keys reads the ledger once and returns every row identity.
func (s *CSVStore) Keys(ctx context.Context) (map[model.Key]bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[model.Key]bool{}, nil
		}
		return nil, &PersistenceError{Op: "open", Err: err}
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	keys := make(map[model.Key]bool)
	first := true
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &PersistenceError{Op: "read", Err: err}
		}
		if first {
			first = false
			continue
		}
		if len(row) < 3 {
			continue
		}
		keys[model.Key{Date: row[0], GameID: row[1], PickType: model.PickType(row[2])}] = true
	}
	return keys, nil
}

// Close is a no-op; the CSV store holds no open handles between calls.
func (s *CSVStore) Close() error {
	return nil
}

// encodeRow serializes a record in Header order. Booleans are written
// TRUE/FALSE and numbers rounded the way existing ledgers were written.
func encodeRow(rec model.PerformanceRecord) []string {
	result := "FALSE"
	if rec.ResultCorrect {
		result = "TRUE"
	}
	return []string{
		rec.Date,
		rec.GameID,
		string(rec.PickType),
		formatPoints(rec.EdgePoints),
		formatPoints(rec.ModelLine),
		formatPoints(rec.MarketLine),
		result,
		string(rec.ConfidenceBand),
		string(rec.VarianceFlag),
		string(rec.InjuryFlag),
		rec.Notes,
	}
}

func formatPoints(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}
