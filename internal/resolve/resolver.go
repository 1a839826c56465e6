// Package resolve determines whether a recorded pick was correct given the
// final outcome of its game.
package resolve

import (
	"fmt"
	"math"

	"github.com/ALTERAPICKS/nba/internal/model"
)

// Minimum edge points required for a pick to be evaluated at all.
// Predictions below their family threshold never produce a ledger record.
const (
	MinSpreadEdge = 1.0
	MinTotalEdge  = 2.0
)

// SkipReason names why a prediction was excluded from the ledger.
type SkipReason string

const (
	SkipBelowThreshold      SkipReason = "below_threshold"
	SkipUnmatchedGame       SkipReason = "unmatched_game"
	SkipUnresolvableOutcome SkipReason = "unresolvable_outcome"
	SkipDuplicate           SkipReason = "duplicate"
	SkipFetchFailed         SkipReason = "fetch_failed"
	SkipPushVoid            SkipReason = "push_void"
)

// SkipError is a non-fatal exclusion: the pick is logged and skipped and
// the evaluation run continues.
type SkipError struct {
	Reason SkipReason
	Detail string
}

func (e *SkipError) Error() string {
	if e.Detail == "" {
		return string(e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Detail)
}

// Skip builds a SkipError with a formatted detail message.
func Skip(reason SkipReason, format string, args ...any) *SkipError {
	return &SkipError{Reason: reason, Detail: fmt.Sprintf(format, args...)}
}

// PushPolicy decides how a result landing exactly on the market line counts.
type PushPolicy string

const (
	// PushIncorrect counts a push as a miss. This is the historical
	// behavior of the ledger; changing it shifts every reported win rate.
	PushIncorrect PushPolicy = "incorrect"
	// PushVoid excludes pushes from the ledger entirely.
	PushVoid PushPolicy = "void"
)

// Valid reports whether p is a known policy.
func (p PushPolicy) Valid() bool {
	return p == PushIncorrect || p == PushVoid
}

// Resolution is the verdict for one evaluated pick.
type Resolution struct {
	Correct bool
	Push    bool
	Notes   string
}

// Resolver derives correctness verdicts. The zero value uses the
// PushIncorrect policy.
type Resolver struct {
	Push PushPolicy
}

// MinimumEdge returns the evaluation threshold for a pick type's family.
func MinimumEdge(pick model.PickType) float64 {
	if pick.IsTotal() {
		return MinTotalEdge
	}
	return MinSpreadEdge
}

// Resolve checks eligibility and determines whether the pick beat the
// closing market line. It returns a *SkipError for ineligible or
// unresolvable picks.
func (r Resolver) Resolve(pred model.Prediction, outcome model.GameOutcome) (Resolution, error) {
	if min := MinimumEdge(pred.PickType); pred.EdgePoints < min {
		return Resolution{}, Skip(SkipBelowThreshold,
			"edge %.2f below %.1f for %s", pred.EdgePoints, min, pred.PickType)
	}
	if pred.PickType.IsTotal() {
		return r.resolveTotal(pred, outcome)
	}
	return r.resolveSpread(pred, outcome)
}

// resolveSpread scores a spread pick. Lines are home-perspective: the side
// the model backs is the home team when its spread is lower than the
// market's, the away team otherwise. A flipped favorite falls out of the
// same comparison, since the model line then sits on the other side of zero
// from the market line.
func (r Resolver) resolveSpread(pred model.Prediction, outcome model.GameOutcome) (Resolution, error) {
	if outcome.MarketSpread == nil {
		return Resolution{}, Skip(SkipUnresolvableOutcome, "no closing spread for %s", outcome.GameID)
	}
	marketSpread := *outcome.MarketSpread

	margin := float64(outcome.Margin())
	atsMargin := margin + marketSpread

	pickHome := pred.ModelLine < marketSpread

	if atsMargin == 0 {
		return r.push(fmt.Sprintf("push: actual %+d landed on line %+.1f", outcome.Margin(), marketSpread))
	}

	correct := atsMargin > 0
	if !pickHome {
		correct = atsMargin < 0
	}
	notes := fmt.Sprintf("actual %+d, ats vs market %+.1f", outcome.Margin(), atsMargin)
	return Resolution{Correct: correct, Notes: notes}, nil
}

// resolveTotal scores a total pick against the closing market total. The
// side comes from the pick type itself.
func (r Resolver) resolveTotal(pred model.Prediction, outcome model.GameOutcome) (Resolution, error) {
	if outcome.MarketTotal == nil {
		return Resolution{}, Skip(SkipUnresolvableOutcome, "no closing total for %s", outcome.GameID)
	}
	marketTotal := *outcome.MarketTotal
	actual := float64(outcome.CombinedScore())

	if actual == marketTotal {
		return r.push(fmt.Sprintf("push: total %d landed on line %.1f", outcome.CombinedScore(), marketTotal))
	}

	correct := actual > marketTotal
	if !pred.PickType.IsOver() {
		correct = actual < marketTotal
	}
	notes := fmt.Sprintf("actual %d vs market %.1f (%+.1f)",
		outcome.CombinedScore(), marketTotal, actual-marketTotal)
	return Resolution{Correct: correct, Notes: notes}, nil
}

func (r Resolver) push(notes string) (Resolution, error) {
	if r.Push == PushVoid {
		return Resolution{}, Skip(SkipPushVoid, "%s", notes)
	}
	return Resolution{Correct: false, Push: true, Notes: notes}, nil
}

// ClassifyPickType labels a derived pick from its edge and line geometry.
// Spread picks where the model and market favor opposite sides are flipped
// favorites regardless of edge size.
func ClassifyPickType(edgePoints float64, isSpread bool, modelLine, marketLine float64) model.PickType {
	edge := math.Abs(edgePoints)

	if isSpread {
		modelFavHome := modelLine < 0
		marketFavHome := marketLine < 0
		if modelFavHome != marketFavHome {
			return model.PickFlippedFavorite
		}
		if edge >= 4.0 {
			return model.PickSpreadBigEdge
		}
		if edge >= 2.0 {
			if marketLine > 0 {
				return model.PickSpreadDogValue
			}
			return model.PickSpreadFavSmall
		}
		return model.PickSpreadDogValue
	}

	over := modelLine > marketLine
	if edge >= 4.0 {
		if over {
			return model.PickTotalOverBigEdge
		}
		return model.PickTotalUnderBigEdge
	}
	if over {
		return model.PickTotalOverValue
	}
	return model.PickTotalUnderValue
}
