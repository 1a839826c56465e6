// Package espn fetches completed games and closing odds from the ESPN
// public scoreboard APIs. It is the outcome source for evaluation runs.
package espn

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ALTERAPICKS/nba/internal/model"
	httpClient "github.com/ALTERAPICKS/nba/internal/platform/http"
)

const (
	defaultScoreboardURL = "https://site.api.espn.com/apis/site/v2/sports/basketball/nba/scoreboard"
	defaultOddsURL       = "https://sports.core.api.espn.com/v2/sports/basketball/leagues/nba/events/%s/competitions/%s/odds"

	statusFinal       = "STATUS_FINAL"
	regulationPeriods = 4
)

// Client is the ESPN scoreboard and odds client.
type Client struct {
	scoreboardURL string
	oddsURL       string
	httpClient    *httpClient.Client
	logger        zerolog.Logger
}

// ClientOptions holds options for creating a new ESPN client.
type ClientOptions struct {
	RequestTimeout  time.Duration
	RequestsPerSec  int
	MaxRetries      int
	MaxRetryTimeout time.Duration

	// ScoreboardURL and OddsURL override the ESPN endpoints, used in tests.
	ScoreboardURL string
	OddsURL       string
}

// NewClient creates a new ESPN API client.
func NewClient(options ClientOptions) *Client {
	if options.ScoreboardURL == "" {
		options.ScoreboardURL = defaultScoreboardURL
	}
	if options.OddsURL == "" {
		options.OddsURL = defaultOddsURL
	}

	return &Client{
		scoreboardURL: options.ScoreboardURL,
		oddsURL:       options.OddsURL,
		httpClient: httpClient.NewClient(httpClient.ClientOptions{
			Timeout:         options.RequestTimeout,
			RequestsPerSec:  options.RequestsPerSec,
			MaxRetries:      options.MaxRetries,
			MaxRetryTimeout: options.MaxRetryTimeout,
		}),
		logger: log.With().Str("component", "espn_client").Logger(),
	}
}

// scoreboardResponse is the subset of the scoreboard payload we consume.
type scoreboardResponse struct {
	Events []struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		Status struct {
			Period int `json:"period"`
			Type   struct {
				Name string `json:"name"`
			} `json:"type"`
		} `json:"status"`
		Competitions []struct {
			ID          string `json:"id"`
			Competitors []struct {
				HomeAway string `json:"homeAway"`
				Score    string `json:"score"`
				Team     struct {
					DisplayName string `json:"displayName"`
				} `json:"team"`
			} `json:"competitors"`
		} `json:"competitions"`
	} `json:"events"`
}

// oddsResponse is the subset of the odds payload we consume. Spread is
// home-perspective, negative when the home side is favored.
type oddsResponse struct {
	Items []struct {
		Spread    *float64 `json:"spread"`
		OverUnder *float64 `json:"overUnder"`
	} `json:"items"`
}

// Outcomes fetches every completed game for the date with closing lines
// attached. A game whose odds cannot be fetched is still returned, with nil
// market lines, so its picks are skipped rather than the whole run.
func (c *Client) Outcomes(ctx context.Context, date string) ([]model.GameOutcome, error) {
	day, err := time.Parse(model.DateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("parsing date %q: %w", date, err)
	}

	url := fmt.Sprintf("%s?dates=%s", c.scoreboardURL, day.Format("20060102"))
	c.logger.Debug().Str("url", url).Msg("Fetching scoreboard")

	var scoreboard scoreboardResponse
	if err := c.getJSON(ctx, url, &scoreboard); err != nil {
		return nil, fmt.Errorf("fetching scoreboard: %w", err)
	}

	var outcomes []model.GameOutcome
	for _, event := range scoreboard.Events {
		if event.Status.Type.Name != statusFinal {
			c.logger.Debug().
				Str("event", event.Name).
				Str("status", event.Status.Type.Name).
				Msg("Skipping game still in progress")
			continue
		}
		if len(event.Competitions) == 0 {
			continue
		}
		competition := event.Competitions[0]

		var home, away struct {
			name  string
			score int
		}
		found := 0
		for _, competitor := range competition.Competitors {
			score, err := strconv.Atoi(competitor.Score)
			if err != nil {
				continue
			}
			switch competitor.HomeAway {
			case "home":
				home.name, home.score = competitor.Team.DisplayName, score
				found++
			case "away":
				away.name, away.score = competitor.Team.DisplayName, score
				found++
			}
		}
		if found != 2 {
			c.logger.Warn().Str("event", event.Name).Msg("Malformed competitors, skipping game")
			continue
		}

		outcome := model.GameOutcome{
			GameID:    model.GameID(away.name, home.name),
			Date:      date,
			HomeTeam:  home.name,
			AwayTeam:  away.name,
			HomeScore: home.score,
			AwayScore: away.score,
			Overtime:  event.Status.Period > regulationPeriods,
		}

		spread, total, err := c.closingOdds(ctx, event.ID, competition.ID)
		if err != nil {
			c.logger.Warn().Err(err).
				Str("game_id", outcome.GameID).
				Msg("No closing odds available")
		} else {
			outcome.MarketSpread = spread
			outcome.MarketTotal = total
		}

		outcomes = append(outcomes, outcome)
	}

	c.logger.Info().Int("count", len(outcomes)).Str("date", date).Msg("Fetched completed games")
	return outcomes, nil
}

// closingOdds fetches the closing spread and total for one game, taking the
// first odds provider that carries both numbers.
func (c *Client) closingOdds(ctx context.Context, eventID, competitionID string) (*float64, *float64, error) {
	url := fmt.Sprintf(c.oddsURL, eventID, competitionID)

	var odds oddsResponse
	if err := c.getJSON(ctx, url, &odds); err != nil {
		return nil, nil, err
	}

	for _, item := range odds.Items {
		if item.Spread != nil && item.OverUnder != nil {
			return item.Spread, item.OverUnder, nil
		}
	}
	return nil, nil, fmt.Errorf("no provider with both spread and total")
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.DoRequest(ctx, req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parsing JSON: %w", err)
	}
	return nil
}
