package resolve

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ALTERAPICKS/nba/internal/model"
)

func fptr(v float64) *float64 { return &v }

func TestResolveSpread(t *testing.T) {
	tests := []struct {
		name        string
		pred        model.Prediction
		outcome     model.GameOutcome
		wantCorrect bool
		wantSkip    SkipReason
	}{
		{
			name: "big edge on home side covered",
			// Model has home favored by 7.1 against a -2.6 close; home
			// wins by 8 and covers comfortably.
			pred: model.Prediction{
				PickType:   model.PickSpreadBigEdge,
				EdgePoints: 4.5,
				ModelLine:  -7.1,
				MarketLine: -2.6,
			},
			outcome: model.GameOutcome{
				HomeScore:    110,
				AwayScore:    102,
				MarketSpread: fptr(-2.6),
			},
			wantCorrect: true,
		},
		{
			name: "home side failed to cover",
			pred: model.Prediction{
				PickType:   model.PickSpreadBigEdge,
				EdgePoints: 4.5,
				ModelLine:  -7.1,
				MarketLine: -2.6,
			},
			outcome: model.GameOutcome{
				HomeScore:    100,
				AwayScore:    102,
				MarketSpread: fptr(-2.6),
			},
			wantCorrect: false,
		},
		{
			name: "away side covered",
			// Model likes the away side (home less favored than market).
			pred: model.Prediction{
				PickType:   model.PickSpreadDogValue,
				EdgePoints: 2.5,
				ModelLine:  -1.5,
				MarketLine: -4.0,
			},
			outcome: model.GameOutcome{
				HomeScore:    105,
				AwayScore:    103,
				MarketSpread: fptr(-4.0),
			},
			wantCorrect: true,
		},
		{
			name: "edge below spread threshold",
			pred: model.Prediction{
				PickType:   model.PickSpreadDogValue,
				EdgePoints: 0.9,
				ModelLine:  -3.0,
				MarketLine: -2.1,
			},
			outcome: model.GameOutcome{
				HomeScore:    100,
				AwayScore:    90,
				MarketSpread: fptr(-2.1),
			},
			wantSkip: SkipBelowThreshold,
		},
		{
			name: "edge exactly at spread threshold",
			pred: model.Prediction{
				PickType:   model.PickSpreadDogValue,
				EdgePoints: 1.0,
				ModelLine:  -3.0,
				MarketLine: -2.0,
			},
			outcome: model.GameOutcome{
				HomeScore:    100,
				AwayScore:    90,
				MarketSpread: fptr(-2.0),
			},
			wantCorrect: true,
		},
		{
			name: "push counts as incorrect",
			pred: model.Prediction{
				PickType:   model.PickSpreadBigEdge,
				EdgePoints: 5.0,
				ModelLine:  -10.0,
				MarketLine: -5.0,
			},
			outcome: model.GameOutcome{
				HomeScore:    105,
				AwayScore:    100,
				MarketSpread: fptr(-5.0),
			},
			wantCorrect: false,
		},
		{
			name: "no closing spread",
			pred: model.Prediction{
				PickType:   model.PickSpreadBigEdge,
				EdgePoints: 5.0,
				ModelLine:  -10.0,
				MarketLine: -5.0,
			},
			outcome:  model.GameOutcome{HomeScore: 105, AwayScore: 100},
			wantSkip: SkipUnresolvableOutcome,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Resolver{}.Resolve(tt.pred, tt.outcome)
			if tt.wantSkip != "" {
				var skip *SkipError
				require.ErrorAs(t, err, &skip)
				assert.Equal(t, tt.wantSkip, skip.Reason)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCorrect, res.Correct)
		})
	}
}

func TestResolveTotal(t *testing.T) {
	tests := []struct {
		name        string
		pred        model.Prediction
		outcome     model.GameOutcome
		wantCorrect bool
		wantSkip    SkipReason
	}{
		{
			name: "over hits",
			pred: model.Prediction{
				PickType:   model.PickTotalOverValue,
				EdgePoints: 3.0,
				ModelLine:  228.0,
				MarketLine: 225.0,
			},
			outcome: model.GameOutcome{
				HomeScore:   118,
				AwayScore:   112,
				MarketTotal: fptr(225.0),
			},
			wantCorrect: true,
		},
		{
			name: "under hits",
			pred: model.Prediction{
				PickType:   model.PickTotalUnderBigEdge,
				EdgePoints: 4.5,
				ModelLine:  215.5,
				MarketLine: 220.0,
			},
			outcome: model.GameOutcome{
				HomeScore:   105,
				AwayScore:   100,
				MarketTotal: fptr(220.0),
			},
			wantCorrect: true,
		},
		{
			name: "under misses",
			pred: model.Prediction{
				PickType:   model.PickTotalUnderBigEdge,
				EdgePoints: 4.5,
				ModelLine:  215.5,
				MarketLine: 220.0,
			},
			outcome: model.GameOutcome{
				HomeScore:   118,
				AwayScore:   112,
				MarketTotal: fptr(220.0),
			},
			wantCorrect: false,
		},
		{
			name: "edge below total threshold",
			pred: model.Prediction{
				PickType:   model.PickTotalUnderValue,
				EdgePoints: 1.5,
				ModelLine:  223.5,
				MarketLine: 225.0,
			},
			outcome: model.GameOutcome{
				HomeScore:   100,
				AwayScore:   100,
				MarketTotal: fptr(225.0),
			},
			wantSkip: SkipBelowThreshold,
		},
		{
			name: "total push counts as incorrect",
			pred: model.Prediction{
				PickType:   model.PickTotalOverValue,
				EdgePoints: 3.0,
				ModelLine:  223.0,
				MarketLine: 220.0,
			},
			outcome: model.GameOutcome{
				HomeScore:   112,
				AwayScore:   108,
				MarketTotal: fptr(220.0),
			},
			wantCorrect: false,
		},
		{
			name: "no closing total",
			pred: model.Prediction{
				PickType:   model.PickTotalOverValue,
				EdgePoints: 3.0,
				ModelLine:  223.0,
				MarketLine: 220.0,
			},
			outcome:  model.GameOutcome{HomeScore: 112, AwayScore: 108},
			wantSkip: SkipUnresolvableOutcome,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Resolver{}.Resolve(tt.pred, tt.outcome)
			if tt.wantSkip != "" {
				var skip *SkipError
				require.ErrorAs(t, err, &skip)
				assert.Equal(t, tt.wantSkip, skip.Reason)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCorrect, res.Correct)
		})
	}
}

func TestResolvePushVoidPolicy(t *testing.T) {
	resolver := Resolver{Push: PushVoid}

	pred := model.Prediction{
		PickType:   model.PickSpreadBigEdge,
		EdgePoints: 5.0,
		ModelLine:  -10.0,
		MarketLine: -5.0,
	}
	outcome := model.GameOutcome{
		HomeScore:    105,
		AwayScore:    100,
		MarketSpread: fptr(-5.0),
	}

	_, err := resolver.Resolve(pred, outcome)
	var skip *SkipError
	require.ErrorAs(t, err, &skip)
	assert.Equal(t, SkipPushVoid, skip.Reason)
}

func TestResolvePushMarksResolution(t *testing.T) {
	pred := model.Prediction{
		PickType:   model.PickTotalOverValue,
		EdgePoints: 3.0,
		ModelLine:  223.0,
		MarketLine: 220.0,
	}
	outcome := model.GameOutcome{
		HomeScore:   112,
		AwayScore:   108,
		MarketTotal: fptr(220.0),
	}

	res, err := Resolver{}.Resolve(pred, outcome)
	require.NoError(t, err)
	assert.True(t, res.Push)
	assert.False(t, res.Correct)
}

func TestMinimumEdge(t *testing.T) {
	assert.Equal(t, MinSpreadEdge, MinimumEdge(model.PickSpreadBigEdge))
	assert.Equal(t, MinSpreadEdge, MinimumEdge(model.PickFlippedFavorite))
	assert.Equal(t, MinTotalEdge, MinimumEdge(model.PickTotalUnderValue))
	assert.Equal(t, MinTotalEdge, MinimumEdge(model.PickTotalOverBigEdge))
}

func TestClassifyPickType(t *testing.T) {
	tests := []struct {
		name       string
		edge       float64
		isSpread   bool
		modelLine  float64
		marketLine float64
		want       model.PickType
	}{
		{"flipped favorite", 3.0, true, 1.5, -1.5, model.PickFlippedFavorite},
		{"flipped favorite other direction", 3.0, true, -1.5, 1.5, model.PickFlippedFavorite},
		{"spread big edge", 4.5, true, -7.1, -2.6, model.PickSpreadBigEdge},
		{"fav small", 2.5, true, -6.5, -4.0, model.PickSpreadFavSmall},
		{"dog value", 2.5, true, 1.5, 4.0, model.PickSpreadDogValue},
		{"small spread edge defaults to dog value", 1.2, true, -3.2, -2.0, model.PickSpreadDogValue},
		{"total over big edge", 5.0, false, 230.0, 225.0, model.PickTotalOverBigEdge},
		{"total under big edge", 5.0, false, 220.0, 225.0, model.PickTotalUnderBigEdge},
		{"total over value", 2.5, false, 227.5, 225.0, model.PickTotalOverValue},
		{"total under value", 2.5, false, 222.5, 225.0, model.PickTotalUnderValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyPickType(tt.edge, tt.isSpread, tt.modelLine, tt.marketLine)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSkipErrorMessage(t *testing.T) {
	err := Skip(SkipBelowThreshold, "edge %.2f below %.1f", 0.9, 1.0)
	assert.Equal(t, "below_threshold: edge 0.90 below 1.0", err.Error())
	assert.True(t, errors.As(error(err), new(*SkipError)))
}
