package model

import "strings"

// teamAbbrevs maps ESPN team display names to the abbreviations used in
// game IDs.
var teamAbbrevs = map[string]string{
	"Atlanta Hawks":          "ATL",
	"Boston Celtics":         "BOS",
	"Brooklyn Nets":          "BKN",
	"Charlotte Hornets":      "CHA",
	"Chicago Bulls":          "CHI",
	"Cleveland Cavaliers":    "CLE",
	"Dallas Mavericks":       "DAL",
	"Denver Nuggets":         "DEN",
	"Detroit Pistons":        "DET",
	"Golden State Warriors":  "GSW",
	"Houston Rockets":        "HOU",
	"Indiana Pacers":         "IND",
	"LA Clippers":            "LAC",
	"Los Angeles Clippers":   "LAC",
	"Los Angeles Lakers":     "LAL",
	"Memphis Grizzlies":      "MEM",
	"Miami Heat":             "MIA",
	"Milwaukee Bucks":        "MIL",
	"Minnesota Timberwolves": "MIN",
	"New Orleans Pelicans":   "NOP",
	"New York Knicks":        "NYK",
	"Oklahoma City Thunder":  "OKC",
	"Orlando Magic":          "ORL",
	"Philadelphia 76ers":     "PHI",
	"Phoenix Suns":           "PHX",
	"Portland Trail Blazers": "POR",
	"Sacramento Kings":       "SAC",
	"San Antonio Spurs":      "SAS",
	"Toronto Raptors":        "TOR",
	"Utah Jazz":              "UTA",
	"Washington Wizards":     "WAS",
}

// TeamAbbrev returns the abbreviation for an ESPN display name, falling
// back to the first three letters uppercased for unknown teams.
func TeamAbbrev(displayName string) string {
	if abbrev, ok := teamAbbrevs[displayName]; ok {
		return abbrev
	}
	name := strings.TrimSpace(displayName)
	if len(name) > 3 {
		name = name[:3]
	}
	return strings.ToUpper(name)
}

// GameID builds the canonical AWAY@HOME identifier from team display names.
func GameID(awayTeam, homeTeam string) string {
	return TeamAbbrev(awayTeam) + "@" + TeamAbbrev(homeTeam)
}
