// Package pipeline drives one evaluation run: load a date's predictions,
// fetch the completed games, resolve and classify every eligible pick, and
// append exactly one ledger record per resolved pick.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ALTERAPICKS/nba/internal/classify"
	"github.com/ALTERAPICKS/nba/internal/ledger"
	"github.com/ALTERAPICKS/nba/internal/model"
	"github.com/ALTERAPICKS/nba/internal/predictions"
	"github.com/ALTERAPICKS/nba/internal/resolve"
)

// OutcomeFetcher yields the completed games for a date with closing lines.
type OutcomeFetcher interface {
	Outcomes(ctx context.Context, date string) ([]model.GameOutcome, error)
}

// PredictionSource yields the stored prediction document for a date.
type PredictionSource interface {
	Load(date string) (*predictions.Document, error)
}

// Options tune run behavior. The zero value uses the default push policy
// and variance thresholds.
type Options struct {
	PushPolicy resolve.PushPolicy
	Thresholds classify.Thresholds
}

// Pipeline evaluates stored predictions against fetched outcomes. The
// ledger store is an explicit dependency so runs never share hidden state.
type Pipeline struct {
	store      ledger.Store
	outcomes   OutcomeFetcher
	preds      PredictionSource
	resolver   resolve.Resolver
	thresholds classify.Thresholds
	logger     zerolog.Logger
}

// New wires a pipeline from its collaborators.
func New(store ledger.Store, outcomes OutcomeFetcher, preds PredictionSource, opts Options) *Pipeline {
	thresholds := opts.Thresholds
	if thresholds == (classify.Thresholds{}) {
		thresholds = classify.DefaultThresholds()
	}
	return &Pipeline{
		store:      store,
		outcomes:   outcomes,
		preds:      preds,
		resolver:   resolve.Resolver{Push: opts.PushPolicy},
		thresholds: thresholds,
		logger:     log.With().Str("component", "pipeline").Logger(),
	}
}

// Summary reports what one run wrote and what it skipped, by reason.
type Summary struct {
	RunID   string
	Date    string
	Games   int
	Written int
	Failed  int
	Skipped map[resolve.SkipReason]int
}

func (s *Summary) skip(reason resolve.SkipReason) {
	s.Skipped[reason]++
}

// SkippedTotal returns the number of picks excluded across all reasons.
func (s *Summary) SkippedTotal() int {
	total := 0
	for _, n := range s.Skipped {
		total += n
	}
	return total
}

// Run evaluates every prediction for the date. Per-pick problems are
// skipped and counted; Run fails only when predictions or outcomes cannot
// be obtained at all, or the ledger is unusable.
func (p *Pipeline) Run(ctx context.Context, date string) (*Summary, error) {
	summary := &Summary{
		RunID:   uuid.NewString(),
		Date:    date,
		Skipped: make(map[resolve.SkipReason]int),
	}
	logger := p.logger.With().Str("run_id", summary.RunID).Str("date", date).Logger()

	doc, err := p.preds.Load(date)
	if err != nil {
		return nil, fmt.Errorf("loading predictions: %w", err)
	}

	outcomes, err := p.outcomes.Outcomes(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("fetching outcomes: %w", err)
	}
	if len(outcomes) == 0 {
		return nil, fmt.Errorf("no completed games for %s", date)
	}

	existing, err := p.store.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading ledger: %w", err)
	}

	byGameID := make(map[string]model.GameOutcome, len(outcomes))
	for _, outcome := range outcomes {
		byGameID[outcome.GameID] = outcome
	}

	summary.Games = len(doc.Games)
	for _, game := range doc.Games {
		gameID := game.GameID()
		outcome, ok := byGameID[gameID]
		if !ok {
			logger.Warn().Str("game_id", gameID).Msg("No completed game for prediction")
			summary.skip(resolve.SkipUnmatchedGame)
			continue
		}

		if outcome.MarketSpread == nil && outcome.MarketTotal == nil {
			logger.Warn().Str("game_id", gameID).Msg("No closing lines, skipping game")
			summary.skip(resolve.SkipUnresolvableOutcome)
			continue
		}

		for _, pick := range derivePicks(date, game, outcome) {
			p.evaluate(ctx, logger, summary, existing, pick, outcome)
		}
	}

	logger.Info().
		Int("written", summary.Written).
		Int("skipped", summary.SkippedTotal()).
		Int("failed", summary.Failed).
		Msg("Evaluation run complete")
	return summary, nil
}

// evaluate resolves, classifies, validates and appends one pick.
func (p *Pipeline) evaluate(
	ctx context.Context,
	logger zerolog.Logger,
	summary *Summary,
	existing map[model.Key]bool,
	pick model.Prediction,
	outcome model.GameOutcome,
) {
	key := model.Key{Date: pick.Date, GameID: pick.GameID, PickType: pick.PickType}
	if existing[key] {
		logger.Debug().Str("game_id", pick.GameID).Str("pick_type", string(pick.PickType)).
			Msg("Already logged, skipping")
		summary.skip(resolve.SkipDuplicate)
		return
	}

	resolution, err := p.resolver.Resolve(pick, outcome)
	if err != nil {
		var skip *resolve.SkipError
		if errors.As(err, &skip) {
			logger.Debug().Str("game_id", pick.GameID).Str("reason", string(skip.Reason)).
				Str("detail", skip.Detail).Msg("Pick skipped")
			summary.skip(skip.Reason)
			return
		}
		logger.Error().Err(err).Str("game_id", pick.GameID).Msg("Resolution failed")
		summary.Failed++
		return
	}

	notes := resolution.Notes
	if pick.Notes != "" {
		notes = pick.Notes + "; " + notes
	}

	record := model.PerformanceRecord{
		Date:           pick.Date,
		GameID:         pick.GameID,
		PickType:       pick.PickType,
		EdgePoints:     pick.EdgePoints,
		ModelLine:      pick.ModelLine,
		MarketLine:     pick.MarketLine,
		ResultCorrect:  resolution.Correct,
		ConfidenceBand: classify.ConfidenceBand(pick.EdgePoints),
		VarianceFlag:   p.thresholds.VarianceFlag(outcome),
		InjuryFlag:     classify.InjuryFlag(pick.InjuryImpact),
		Notes:          notes,
	}

	if err := record.Validate(); err != nil {
		logger.Error().Err(err).Str("game_id", pick.GameID).Msg("Record failed validation, not persisted")
		summary.Failed++
		return
	}

	if err := p.store.Append(ctx, record); err != nil {
		var mirrorErr *ledger.MirrorError
		if errors.As(err, &mirrorErr) {
			logger.Warn().Err(mirrorErr).Str("game_id", pick.GameID).Msg("Ledger mirror lagging")
		} else {
			logger.Error().Err(err).Str("game_id", pick.GameID).Msg("Append failed")
			summary.Failed++
			return
		}
	}

	existing[key] = true
	summary.Written++
	logger.Info().
		Str("game_id", pick.GameID).
		Str("pick_type", string(pick.PickType)).
		Bool("correct", record.ResultCorrect).
		Str("confidence_band", string(record.ConfidenceBand)).
		Msg("Logged pick")
}

// derivePicks turns one game's raw projections into evaluable picks, one
// per market where both a model number and a closing line exist. Spread
// edge is market minus model; total edge is model minus market.
func derivePicks(date string, game predictions.GameProjection, outcome model.GameOutcome) []model.Prediction {
	var picks []model.Prediction

	if modelSpread, ok := game.Spread.Value(); ok && outcome.MarketSpread != nil {
		marketSpread := *outcome.MarketSpread
		edge := marketSpread - modelSpread
		picks = append(picks, model.Prediction{
			Date:         date,
			GameID:       outcome.GameID,
			PickType:     resolve.ClassifyPickType(edge, true, modelSpread, marketSpread),
			EdgePoints:   math.Abs(edge),
			ModelLine:    modelSpread,
			MarketLine:   marketSpread,
			InjuryImpact: game.InjuryImpact.Max(),
			Notes:        game.Notes,
		})
	}

	if modelTotal, ok := game.Total.Value(); ok && outcome.MarketTotal != nil {
		marketTotal := *outcome.MarketTotal
		edge := modelTotal - marketTotal
		picks = append(picks, model.Prediction{
			Date:         date,
			GameID:       outcome.GameID,
			PickType:     resolve.ClassifyPickType(edge, false, modelTotal, marketTotal),
			EdgePoints:   math.Abs(edge),
			ModelLine:    modelTotal,
			MarketLine:   marketTotal,
			InjuryImpact: game.InjuryImpact.Max(),
			Notes:        game.Notes,
		})
	}

	return picks
}
