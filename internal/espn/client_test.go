package espn

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scoreboardPayload = `{
  "events": [
    {
      "id": "401705001",
      "name": "Boston Celtics at Milwaukee Bucks",
      "status": {"period": 4, "type": {"name": "STATUS_FINAL"}},
      "competitions": [
        {
          "id": "401705001",
          "competitors": [
            {"homeAway": "home", "score": "112", "team": {"displayName": "Milwaukee Bucks"}},
            {"homeAway": "away", "score": "101", "team": {"displayName": "Boston Celtics"}}
          ]
        }
      ]
    },
    {
      "id": "401705002",
      "name": "Denver Nuggets at Phoenix Suns",
      "status": {"period": 5, "type": {"name": "STATUS_FINAL"}},
      "competitions": [
        {
          "id": "401705002",
          "competitors": [
            {"homeAway": "home", "score": "120", "team": {"displayName": "Phoenix Suns"}},
            {"homeAway": "away", "score": "118", "team": {"displayName": "Denver Nuggets"}}
          ]
        }
      ]
    },
    {
      "id": "401705003",
      "name": "Miami Heat at Orlando Magic",
      "status": {"period": 3, "type": {"name": "STATUS_IN_PROGRESS"}},
      "competitions": [
        {
          "id": "401705003",
          "competitors": [
            {"homeAway": "home", "score": "80", "team": {"displayName": "Orlando Magic"}},
            {"homeAway": "away", "score": "77", "team": {"displayName": "Miami Heat"}}
          ]
        }
      ]
    }
  ]
}`

func newTestClient(t *testing.T, oddsHandler http.HandlerFunc) *Client {
	t.Helper()

	scoreboard := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "20251211", r.URL.Query().Get("dates"))
		fmt.Fprint(w, scoreboardPayload)
	}))
	t.Cleanup(scoreboard.Close)

	odds := httptest.NewServer(oddsHandler)
	t.Cleanup(odds.Close)

	return NewClient(ClientOptions{
		ScoreboardURL: scoreboard.URL,
		OddsURL:       odds.URL + "/events/%s/competitions/%s/odds",
		MaxRetries:    1,
	})
}

func TestOutcomes(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"items": [{"spread": -2.6, "overUnder": 225.0}]}`)
	})

	outcomes, err := client.Outcomes(context.Background(), "2025-12-11")
	require.NoError(t, err)

	// The in-progress Magic game is excluded.
	require.Len(t, outcomes, 2)

	bucks := outcomes[0]
	assert.Equal(t, "BOS@MIL", bucks.GameID)
	assert.Equal(t, "2025-12-11", bucks.Date)
	assert.Equal(t, 112, bucks.HomeScore)
	assert.Equal(t, 101, bucks.AwayScore)
	assert.False(t, bucks.Overtime)
	require.NotNil(t, bucks.MarketSpread)
	assert.InDelta(t, -2.6, *bucks.MarketSpread, 1e-9)
	require.NotNil(t, bucks.MarketTotal)
	assert.InDelta(t, 225.0, *bucks.MarketTotal, 1e-9)

	suns := outcomes[1]
	assert.Equal(t, "DEN@PHX", suns.GameID)
	assert.True(t, suns.Overtime, "a fifth period marks overtime")
}

func TestOutcomesSkipsProvidersWithoutBothLines(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"items": [{"spread": -2.6}, {"spread": -2.5, "overUnder": 224.5}]}`)
	})

	outcomes, err := client.Outcomes(context.Background(), "2025-12-11")
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	require.NotNil(t, outcomes[0].MarketSpread)
	assert.InDelta(t, -2.5, *outcomes[0].MarketSpread, 1e-9)
	assert.InDelta(t, 224.5, *outcomes[0].MarketTotal, 1e-9)
}

func TestOutcomesKeepsGameWhenOddsUnavailable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})

	outcomes, err := client.Outcomes(context.Background(), "2025-12-11")
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	// Games stay in the result so the pipeline can report them as skipped.
	assert.Nil(t, outcomes[0].MarketSpread)
	assert.Nil(t, outcomes[0].MarketTotal)
}

func TestOutcomesRejectsBadDate(t *testing.T) {
	client := NewClient(ClientOptions{})

	_, err := client.Outcomes(context.Background(), "12/11/2025")
	require.Error(t, err)
}
