package model

// Prediction is a single evaluable pick for one game and market. Picks are
// derived from the model's raw projections against the closing market line,
// or supplied directly by a stored prediction document.
type Prediction struct {
	Date         string   `json:"date"`
	GameID       string   `json:"game_id"`
	PickType     PickType `json:"pick_type"`
	EdgePoints   float64  `json:"edge_points"`
	ModelLine    float64  `json:"model_line"`
	MarketLine   float64  `json:"market_line"`
	InjuryImpact float64  `json:"injury_impact,omitempty"`
	Notes        string   `json:"notes,omitempty"`
}

// GameOutcome is the final result of one completed game together with the
// closing market lines. Fetched once per evaluation run, never persisted.
type GameOutcome struct {
	GameID    string `json:"game_id"`
	Date      string `json:"date"`
	HomeTeam  string `json:"home_team"`
	AwayTeam  string `json:"away_team"`
	HomeScore int    `json:"home_score"`
	AwayScore int    `json:"away_score"`
	Overtime  bool   `json:"overtime"`

	// Closing lines, home perspective for the spread (negative = home
	// favored). Nil when the odds feed had nothing for the game.
	MarketSpread *float64 `json:"market_spread"`
	MarketTotal  *float64 `json:"market_total"`
}

// Margin returns the final margin from the home perspective.
func (o GameOutcome) Margin() int {
	return o.HomeScore - o.AwayScore
}

// CombinedScore returns the total points scored by both sides.
func (o GameOutcome) CombinedScore() int {
	return o.HomeScore + o.AwayScore
}
