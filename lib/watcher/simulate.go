package watcher

import (
	"context"
	"fmt"
	"time"

	"github.com/fiffu/matchwatch/lib/models"
	"github.com/google/uuid"
)

// simulatorRoster is the fixed set of teams synthetic matches draw from.
var simulatorRoster = []models.TeamInfo{
	{ID: "sim-arsenal", Name: "Arsenal"},
	{ID: "sim-chelsea", Name: "Chelsea"},
	{ID: "sim-liverpool", Name: "Liverpool"},
	{ID: "sim-mancity", Name: "ManCity"},
}

// simulateTick possibly starts a synthetic match. Runs only in demo mode;
// synthetic match ids are prefixed so they can never collide with live ones.
func (w *Watcher) simulateTick(ctx context.Context) {
	if w.Mode() != models.ModeDemo {
		return
	}

	home := simulatorRoster[w.randIntn(len(simulatorRoster))]
	away := simulatorRoster[w.randIntn(len(simulatorRoster))]
	if home.ID == away.ID {
		return
	}

	matchID := "sim-" + uuid.NewString()[:8]
	w.log.Sugar().Infof("Starting simulated match %s: %s vs %s", matchID, home.Name, away.Name)
	go w.runSimulatedMatch(ctx, matchID, home, away)
}

// runSimulatedMatch plays out one match lifecycle: kickoff immediately, a
// goal for a pseudo-random side every sub-tick while the simulated minute
// is within regulation, then full time. Events carry the same shape as the
// poller's so everything downstream is source-agnostic.
func (w *Watcher) runSimulatedMatch(ctx context.Context, matchID string, home, away models.TeamInfo) {
	update := models.MatchUpdate{
		MatchID: matchID,
		Home:    home,
		Away:    away,
		Status:  models.StatusLive,
		Kickoff: time.Now().UTC(),
	}
	w.states.Observe(update)
	w.states.Apply(update)

	teams := update.Teams()
	w.emitOnce(ctx, models.NewEvent(models.MatchStarted, matchID, teams,
		fmt.Sprintf("%s has started!", update.Title()), ""))

	minute := 0
	ticker := time.NewTicker(w.cfg.GoalInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			minute += 15
			if minute > 90 {
				update.Status = models.StatusFinished
				w.emitOnce(ctx, models.NewEvent(models.MatchEnded, matchID, teams,
					fmt.Sprintf("Full time: %s %s %s", home.Name, update.Score, away.Name), ""))
				w.states.Apply(update)
				return
			}

			if w.randIntn(2) == 0 {
				update.Score.Home++
			} else {
				update.Score.Away++
			}
			w.emitOnce(ctx, models.NewEvent(models.Goal, matchID, teams,
				fmt.Sprintf("Goal! %s %s %s (%d')", home.Name, update.Score, away.Name, minute),
				update.Score.String()))
			w.states.Apply(update)

		case <-ctx.Done():
			return
		}
	}
}
