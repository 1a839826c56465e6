package model

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// PickType is the category of bet the model recommended for a game.
type PickType string

const (
	PickSpreadDogValue    PickType = "spread_dog_value"
	PickSpreadFavSmall    PickType = "spread_fav_small"
	PickSpreadBigEdge     PickType = "spread_big_edge"
	PickFlippedFavorite   PickType = "flipped_favorite"
	PickTotalOverValue    PickType = "total_over_value"
	PickTotalUnderValue   PickType = "total_under_value"
	PickTotalOverBigEdge  PickType = "total_over_big_edge"
	PickTotalUnderBigEdge PickType = "total_under_big_edge"
)

// PickTypes lists every valid pick type in ledger column order.
var PickTypes = []PickType{
	PickSpreadDogValue,
	PickSpreadFavSmall,
	PickSpreadBigEdge,
	PickFlippedFavorite,
	PickTotalOverValue,
	PickTotalUnderValue,
	PickTotalOverBigEdge,
	PickTotalUnderBigEdge,
}

// Valid reports whether p is one of the enumerated pick types.
func (p PickType) Valid() bool {
	for _, known := range PickTypes {
		if p == known {
			return true
		}
	}
	return false
}

// IsSpread reports whether p belongs to the spread family
// (flipped_favorite is a spread pick).
func (p PickType) IsSpread() bool {
	return strings.HasPrefix(string(p), "spread_") || p == PickFlippedFavorite
}

// IsTotal reports whether p belongs to the total family.
func (p PickType) IsTotal() bool {
	return strings.HasPrefix(string(p), "total_")
}

// IsOver reports whether a total pick takes the over side.
func (p PickType) IsOver() bool {
	return p == PickTotalOverValue || p == PickTotalOverBigEdge
}

// ConfidenceBand is a coarse bucket of edge magnitude.
type ConfidenceBand string

const (
	BandLow    ConfidenceBand = "low"
	BandMedium ConfidenceBand = "medium"
	BandHigh   ConfidenceBand = "high"
	BandElite  ConfidenceBand = "elite"
)

// Valid reports whether b is one of the enumerated bands.
func (b ConfidenceBand) Valid() bool {
	switch b {
	case BandLow, BandMedium, BandHigh, BandElite:
		return true
	}
	return false
}

// VarianceFlag marks games whose outcome was close or went to overtime.
type VarianceFlag string

const (
	VarianceNormal VarianceFlag = "normal"
	VarianceHigh   VarianceFlag = "high_variance"
)

// Valid reports whether v is one of the enumerated flags.
func (v VarianceFlag) Valid() bool {
	return v == VarianceNormal || v == VarianceHigh
}

// InjuryFlag marks whether a material injury affected the teams involved.
type InjuryFlag string

const (
	InjuryNone  InjuryFlag = "none"
	InjuryMinor InjuryFlag = "minor"
	InjuryMajor InjuryFlag = "major"
)

// Valid reports whether f is one of the enumerated flags.
func (f InjuryFlag) Valid() bool {
	return f == InjuryNone || f == InjuryMinor || f == InjuryMajor
}

// DateLayout is the calendar-date format used across the ledger and
// prediction documents.
const DateLayout = "2006-01-02"

// PerformanceRecord is one row of the performance ledger. Records are
// created once per (date, game, pick type) and never mutated after append.
type PerformanceRecord struct {
	Date           string         `json:"date"`
	GameID         string         `json:"game_id"`
	PickType       PickType       `json:"pick_type"`
	EdgePoints     float64        `json:"edge_points"`
	ModelLine      float64        `json:"model_line"`
	MarketLine     float64        `json:"market_line"`
	ResultCorrect  bool           `json:"result_correct"`
	ConfidenceBand ConfidenceBand `json:"confidence_band"`
	VarianceFlag   VarianceFlag   `json:"variance_flag"`
	InjuryFlag     InjuryFlag     `json:"injury_flag"`
	Notes          string         `json:"notes,omitempty"`
}

// Key identifies a ledger row. One record exists per key.
type Key struct {
	Date     string
	GameID   string
	PickType PickType
}

// Key returns the record's ledger identity.
func (r PerformanceRecord) Key() Key {
	return Key{Date: r.Date, GameID: r.GameID, PickType: r.PickType}
}

// ValidationError reports the first field of a candidate record that
// failed validation. Records carrying a ValidationError are never persisted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid record: field %s: %s", e.Field, e.Reason)
}

// Validate checks every field of the record against the ledger rules and
// returns a *ValidationError naming the first failing field.
func (r PerformanceRecord) Validate() error {
	if r.Date == "" {
		return &ValidationError{Field: "date", Reason: "required"}
	}
	if _, err := time.Parse(DateLayout, r.Date); err != nil {
		return &ValidationError{Field: "date", Reason: "must be YYYY-MM-DD"}
	}
	if r.GameID == "" {
		return &ValidationError{Field: "game_id", Reason: "required"}
	}
	if !ValidGameID(r.GameID) {
		return &ValidationError{Field: "game_id", Reason: "must be AWAY@HOME, uppercase"}
	}
	if !r.PickType.Valid() {
		return &ValidationError{Field: "pick_type", Reason: fmt.Sprintf("unknown pick type %q", r.PickType)}
	}
	if !finite(r.EdgePoints) || r.EdgePoints < 0 {
		return &ValidationError{Field: "edge_points", Reason: "must be a finite number >= 0"}
	}
	if !finite(r.ModelLine) {
		return &ValidationError{Field: "model_line", Reason: "must be a finite number"}
	}
	if !finite(r.MarketLine) {
		return &ValidationError{Field: "market_line", Reason: "must be a finite number"}
	}
	if !r.ConfidenceBand.Valid() {
		return &ValidationError{Field: "confidence_band", Reason: fmt.Sprintf("unknown band %q", r.ConfidenceBand)}
	}
	if !r.VarianceFlag.Valid() {
		return &ValidationError{Field: "variance_flag", Reason: fmt.Sprintf("unknown flag %q", r.VarianceFlag)}
	}
	if !r.InjuryFlag.Valid() {
		return &ValidationError{Field: "injury_flag", Reason: fmt.Sprintf("unknown flag %q", r.InjuryFlag)}
	}
	return nil
}

// ValidGameID reports whether id has the form AWAY@HOME with both sides
// uppercase and non-empty.
func ValidGameID(id string) bool {
	away, home, ok := strings.Cut(id, "@")
	if !ok || away == "" || home == "" {
		return false
	}
	for _, part := range []string{away, home} {
		if part != strings.ToUpper(part) || strings.ContainsAny(part, " @") {
			return false
		}
	}
	return true
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
