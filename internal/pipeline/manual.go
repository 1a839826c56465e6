package pipeline

import (
	"context"
	"fmt"

	"github.com/ALTERAPICKS/nba/internal/classify"
	"github.com/ALTERAPICKS/nba/internal/ledger"
	"github.com/ALTERAPICKS/nba/internal/model"
)

// AppendManual validates and appends one hand-entered record, bypassing
// prediction and outcome matching. Missing confidence bands are derived
// from the edge; an existing (date, game, pick type) key is refused rather
// than silently duplicated.
func AppendManual(ctx context.Context, store ledger.Store, rec model.PerformanceRecord) error {
	if rec.ConfidenceBand == "" {
		rec.ConfidenceBand = classify.ConfidenceBand(rec.EdgePoints)
	}

	if err := rec.Validate(); err != nil {
		return err
	}

	exists, err := store.Exists(ctx, rec.Key())
	if err != nil {
		return fmt.Errorf("checking ledger: %w", err)
	}
	if exists {
		return fmt.Errorf("record already logged for %s %s %s", rec.Date, rec.GameID, rec.PickType)
	}

	return store.Append(ctx, rec)
}
