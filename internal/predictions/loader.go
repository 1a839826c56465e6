// Package predictions loads the model's saved projection documents, one
// JSON file per date, produced by the prediction pipeline.
package predictions

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ALTERAPICKS/nba/internal/model"
)

// ErrNoDocument means no projections file exists for the requested date.
var ErrNoDocument = errors.New("no prediction document for date")

// Document is one date's saved projections.
type Document struct {
	Date      string           `json:"date"`
	Timestamp string           `json:"timestamp"`
	Games     []GameProjection `json:"games"`
}

// GameProjection is the model's raw output for one game. Lines follow the
// home-perspective convention (negative spread = home favored).
type GameProjection struct {
	HomeTeam     string         `json:"home_team"`
	AwayTeam     string         `json:"away_team"`
	Spread       LineProjection `json:"spread"`
	Total        LineProjection `json:"total"`
	InjuryImpact InjuryImpact   `json:"injury_impact"`
	Notes        string         `json:"notes,omitempty"`
}

// GameID returns the canonical AWAY@HOME identifier for the projection.
func (g GameProjection) GameID() string {
	return model.GameID(g.AwayTeam, g.HomeTeam)
}

// LineProjection carries a baseline number and an optional adjusted one.
// The adjusted value wins when present.
type LineProjection struct {
	Baseline     *float64 `json:"baseline"`
	RestAdjusted *float64 `json:"rest_adjusted,omitempty"`
	PaceAdjusted *float64 `json:"pace_adjusted,omitempty"`
}

// Value returns the adjusted projection when available, else the baseline.
// ok is false when the model produced neither.
func (p LineProjection) Value() (value float64, ok bool) {
	for _, candidate := range []*float64{p.RestAdjusted, p.PaceAdjusted, p.Baseline} {
		if candidate != nil {
			return *candidate, true
		}
	}
	return 0, false
}

// InjuryImpact is the model's injury adjustment per side, in points.
type InjuryImpact struct {
	HomeTotalAdjustment float64 `json:"home_total_adjustment"`
	AwayTotalAdjustment float64 `json:"away_total_adjustment"`
}

// Max returns the larger absolute adjustment of the two sides.
func (i InjuryImpact) Max() float64 {
	return math.Max(math.Abs(i.HomeTotalAdjustment), math.Abs(i.AwayTotalAdjustment))
}

// Loader reads prediction documents from a directory of
// <date>_projections.json files.
type Loader struct {
	dir    string
	logger zerolog.Logger
}

// NewLoader creates a loader rooted at dir.
func NewLoader(dir string) *Loader {
	return &Loader{
		dir:    dir,
		logger: log.With().Str("component", "predictions").Logger(),
	}
}

// Load reads the document for a date. Returns ErrNoDocument when the file
// does not exist.
func (l *Loader) Load(date string) (*Document, error) {
	path := filepath.Join(l.dir, date+"_projections.json")

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNoDocument, path)
		}
		return nil, fmt.Errorf("reading predictions: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing predictions %s: %w", path, err)
	}

	l.logger.Debug().Str("date", date).Int("games", len(doc.Games)).Msg("Loaded prediction document")
	return &doc, nil
}
