package ledger

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ALTERAPICKS/nba/internal/model"
)

// PostgresStore mirrors the ledger into Postgres so downstream analysis can
// query it without parsing CSV. The table carries the same append-only
// discipline: a unique key per (date, game_id, pick_type) and no updates.
type PostgresStore struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewPostgresStore connects with the given DSN and creates the ledger
// table if it does not exist.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, &PersistenceError{Op: "open postgres", Err: err}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &PersistenceError{Op: "ping postgres", Err: err}
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS performance_log (
			date TEXT NOT NULL,
			game_id TEXT NOT NULL,
			pick_type TEXT NOT NULL,
			edge_points DOUBLE PRECISION NOT NULL,
			model_line DOUBLE PRECISION NOT NULL,
			market_line DOUBLE PRECISION NOT NULL,
			result_correct BOOLEAN NOT NULL,
			confidence_band TEXT NOT NULL,
			variance_flag TEXT NOT NULL,
			injury_flag TEXT NOT NULL,
			notes TEXT,
			logged_at TIMESTAMP NOT NULL DEFAULT NOW(),
			PRIMARY KEY (date, game_id, pick_type)
		)
	`); err != nil {
		db.Close()
		return nil, &PersistenceError{Op: "create table", Err: err}
	}

	return &PostgresStore{
		db:     db,
		logger: log.With().Str("component", "ledger_mirror").Logger(),
	}, nil
}

// Append inserts one record. Re-inserting an existing key is a no-op so
// replaying the CSV into the mirror stays idempotent.
func (s *PostgresStore) Append(ctx context.Context, rec model.PerformanceRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO performance_log (
			date, game_id, pick_type, edge_points, model_line, market_line,
			result_correct, confidence_band, variance_flag, injury_flag, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (date, game_id, pick_type) DO NOTHING
	`,
		rec.Date, rec.GameID, string(rec.PickType),
		rec.EdgePoints, rec.ModelLine, rec.MarketLine,
		rec.ResultCorrect, string(rec.ConfidenceBand),
		string(rec.VarianceFlag), string(rec.InjuryFlag), rec.Notes,
	)
	if err != nil {
		return &PersistenceError{Op: "insert", Err: err}
	}
	return nil
}

// Exists reports whether the key is already mirrored.
func (s *PostgresStore) Exists(ctx context.Context, key model.Key) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM performance_log
			WHERE date = $1 AND game_id = $2 AND pick_type = $3
		)
	`, key.Date, key.GameID, string(key.PickType)).Scan(&exists)
	if err != nil {
		return false, &PersistenceError{Op: "exists", Err: err}
	}
	return exists, nil
}

// Keys returns the identity of every mirrored record.
func (s *PostgresStore) Keys(ctx context.Context) (map[model.Key]bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT date, game_id, pick_type FROM performance_log`)
	if err != nil {
		return nil, &PersistenceError{Op: "select keys", Err: err}
	}
	defer rows.Close()

	keys := make(map[model.Key]bool)
	for rows.Next() {
		var key model.Key
		var pick string
		if err := rows.Scan(&key.Date, &key.GameID, &pick); err != nil {
			return nil, &PersistenceError{Op: "scan key", Err: err}
		}
		key.PickType = model.PickType(pick)
		keys[key] = true
	}
	if err := rows.Err(); err != nil {
		return nil, &PersistenceError{Op: "select keys", Err: err}
	}
	return keys, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
