// Package classify derives the confidence, variance and injury buckets
// attached to every ledger record. All functions are pure and total over
// their numeric domain.
package classify

import (
	"math"

	"github.com/ALTERAPICKS/nba/internal/model"
)

// Confidence band boundaries over absolute edge points.
const (
	bandMediumMin = 2.0
	bandHighMin   = 4.0
	bandEliteMin  = 6.0
)

// Injury flag boundaries over absolute impact points.
const (
	injuryMinorMin = 0.5
	injuryMajorMin = 2.0
)

// ConfidenceBand buckets an edge magnitude into low [0,2), medium [2,4),
// high [4,6) or elite [6,inf).
func ConfidenceBand(edgePoints float64) model.ConfidenceBand {
	edge := math.Abs(edgePoints)
	switch {
	case edge < bandMediumMin:
		return model.BandLow
	case edge < bandHighMin:
		return model.BandMedium
	case edge < bandEliteMin:
		return model.BandHigh
	default:
		return model.BandElite
	}
}

// InjuryFlag buckets an injury impact magnitude into none [0,0.5),
// minor [0.5,2) or major [2,inf). An absent impact maps to none.
func InjuryFlag(impactPoints float64) model.InjuryFlag {
	impact := math.Abs(impactPoints)
	switch {
	case impact < injuryMinorMin:
		return model.InjuryNone
	case impact < injuryMajorMin:
		return model.InjuryMinor
	default:
		return model.InjuryMajor
	}
}

// Thresholds carry the game-flow cutoffs for variance classification.
type Thresholds struct {
	// CloseGameMargin flags games decided by this many points or fewer.
	CloseGameMargin int
	// HighScoringTotal flags games with at least this many combined points.
	HighScoringTotal int
}

// DefaultThresholds returns the standard variance cutoffs.
func DefaultThresholds() Thresholds {
	return Thresholds{CloseGameMargin: 3, HighScoringTotal: 260}
}

// VarianceFlag marks an outcome high_variance when the game was close,
// unusually high scoring, or went to overtime.
func (t Thresholds) VarianceFlag(outcome model.GameOutcome) model.VarianceFlag {
	margin := outcome.Margin()
	if margin < 0 {
		margin = -margin
	}
	if margin <= t.CloseGameMargin {
		return model.VarianceHigh
	}
	if outcome.CombinedScore() >= t.HighScoringTotal {
		return model.VarianceHigh
	}
	if outcome.Overtime {
		return model.VarianceHigh
	}
	return model.VarianceNormal
}

// VarianceFlag classifies an outcome with the default thresholds.
func VarianceFlag(outcome model.GameOutcome) model.VarianceFlag {
	return DefaultThresholds().VarianceFlag(outcome)
}
