// Package footballdata wraps the football-data.org v4 API, exposing just the
// slice of it the poller needs: today's matches for a followed team.
package footballdata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/carlmjohnson/requests"
	"github.com/fiffu/matchwatch/config"
	"github.com/fiffu/matchwatch/lib/models"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type Client struct {
	log       *zap.Logger
	baseURL   string
	token     string
	timeout   time.Duration
	transport http.RoundTripper

	// The free tier allows ~10 requests per minute; one poll cycle issues
	// one request per followed team, so we pace ourselves.
	limiter *rate.Limiter
}

func NewClient(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger, transport http.RoundTripper) *Client {
	perMin := cfg.FootballData.RequestsPerMin
	if perMin < 1 {
		perMin = 1
	}
	return &Client{
		log:       log,
		baseURL:   cfg.FootballData.BaseURL,
		token:     cfg.FootballData.APIToken,
		timeout:   cfg.FootballData.Timeout,
		transport: transport,
		limiter:   rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMin)), 1),
	}
}

// Enabled reports whether live polling is possible at all. Without an API
// token the pipeline runs in demo mode on the simulator.
func (c *Client) Enabled() bool {
	return c.token != ""
}

// MatchesForTeam fetches today's fixtures and keeps the ones involving the
// given team. The v4 matches listing has no team filter on the free tier, so
// filtering happens here, by name, the same way users subscribe.
func (c *Client) MatchesForTeam(ctx context.Context, team models.TeamID) ([]models.MatchUpdate, error) {
	matches, err := c.matchesToday(ctx)
	if err != nil {
		return nil, err
	}

	var out []models.MatchUpdate
	for _, m := range matches {
		if team.Matches(models.NormalizeTeam(m.HomeTeam.Name)) || team.Matches(models.NormalizeTeam(m.AwayTeam.Name)) {
			out = append(out, m.toUpdate())
		}
	}
	return out, nil
}

func (c *Client) matchesToday(ctx context.Context) ([]apiMatch, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrSourceUnavailable, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	today := time.Now().UTC().Format("2006-01-02")
	var resp matchesResponse
	err := requests.URL(c.baseURL).
		Path("/v4/matches").
		Param("dateFrom", today).
		Param("dateTo", today).
		Header("X-Auth-Token", c.token).
		Transport(c.transport).
		ToJSON(&resp).
		Fetch(ctx)
	if err != nil {
		if errors.Is(err, requests.ErrHandler) {
			// Got a 2xx but couldn't decode it.
			return nil, fmt.Errorf("%w: %v", models.ErrMalformedResponse, err)
		}
		return nil, fmt.Errorf("%w: %v", models.ErrSourceUnavailable, err)
	}
	return resp.Matches, nil
}

type matchesResponse struct {
	Matches []apiMatch `json:"matches"`
}

type apiMatch struct {
	ID       int64     `json:"id"`
	UTCDate  time.Time `json:"utcDate"`
	Status   string    `json:"status"`
	HomeTeam apiTeam   `json:"homeTeam"`
	AwayTeam apiTeam   `json:"awayTeam"`
	Score    struct {
		FullTime struct {
			Home *int `json:"home"`
			Away *int `json:"away"`
		} `json:"fullTime"`
	} `json:"score"`
}

type apiTeam struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (m apiMatch) toUpdate() models.MatchUpdate {
	update := models.MatchUpdate{
		MatchID: fmt.Sprintf("%d", m.ID),
		Home:    models.TeamInfo{ID: fmt.Sprintf("%d", m.HomeTeam.ID), Name: m.HomeTeam.Name},
		Away:    models.TeamInfo{ID: fmt.Sprintf("%d", m.AwayTeam.ID), Name: m.AwayTeam.Name},
		Status:  statusFromAPI(m.Status),
		Kickoff: m.UTCDate,
	}
	if m.Score.FullTime.Home != nil {
		update.Score.Home = *m.Score.FullTime.Home
	}
	if m.Score.FullTime.Away != nil {
		update.Score.Away = *m.Score.FullTime.Away
	}
	return update
}

// statusFromAPI folds football-data's status vocabulary into the three
// states the pipeline cares about.
func statusFromAPI(s string) models.MatchStatus {
	switch strings.ToUpper(s) {
	case "IN_PLAY", "PAUSED", "LIVE":
		return models.StatusLive
	case "FINISHED", "AWARDED":
		return models.StatusFinished
	default:
		return models.StatusScheduled
	}
}
