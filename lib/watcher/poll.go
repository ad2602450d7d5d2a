package watcher

import (
	"context"
	"fmt"
	"time"

	"github.com/fiffu/matchwatch/lib/models"
)

// pollCycle fetches today's matches for every followed team, diffs them
// against stored match state and emits events for detected transitions.
// At most one cycle runs at a time; an overrunning cycle makes the next
// tick a no-op rather than queueing up.
func (w *Watcher) pollCycle(ctx context.Context) {
	if !w.polling.CompareAndSwap(false, true) {
		w.log.Sugar().Info("Previous poll cycle still in flight, skipping tick")
		return
	}
	defer w.polling.Store(false)

	cycleStart := time.Now().UTC()

	teams, err := w.registry.FollowedTeams(ctx)
	if err != nil {
		w.log.Sugar().Errorw("Failed to list followed teams", "err", err)
		return
	}
	if len(teams) == 0 {
		return
	}

	m := &pollMetrics{}
	seen := make(map[string]struct{})

	for _, team := range teams {
		matches, err := w.source.MatchesForTeam(ctx, team)
		if err != nil {
			// One team's failure never aborts the cycle; the next cycle
			// retries naturally since no state was recorded.
			m.errored++
			w.log.Sugar().Warnw("Failed to fetch matches", "team", team, "err", err)
			continue
		}
		m.polled++

		for _, update := range matches {
			// Both sides of a match may be followed; observe it once.
			if _, dup := seen[update.MatchID]; dup {
				continue
			}
			seen[update.MatchID] = struct{}{}
			m.matches++
			m.emitted += w.observeMatch(ctx, update)
		}
	}

	// Reachability of the source decides live vs demo mode.
	switch {
	case m.polled > 0:
		w.setMode(models.ModeLive)
	case m.errored > 0:
		w.setMode(models.ModeDemo)
	}

	if evicted := w.states.EvictFinished(w.cfg.FinishedGrace); evicted > 0 {
		w.log.Sugar().Infof("Evicted %d finished matches", evicted)
	}
	if err := w.feed.Prune(ctx, cycleStart.Add(-w.cfg.FeedRetention)); err != nil {
		w.log.Sugar().Errorw("Failed to prune feed", "err", err)
	}

	elapsed := time.Now().UTC().Sub(cycleStart)
	w.log.Sugar().Infow("Poll cycle completed",
		"teams", m.polled, "errored", m.errored, "matches", m.matches,
		"events", m.emitted, "elapsed_msecs", int(elapsed.Milliseconds()))
}

// observeMatch diffs one observed match against stored state and emits
// events for each transition seen for the first time. Events for the same
// match come out in lifecycle order because each derives from the
// monotonically-evolving stored state.
func (w *Watcher) observeMatch(ctx context.Context, update models.MatchUpdate) (emitted int) {
	prev := w.states.Observe(update)
	teams := update.Teams()

	if update.Status == models.StatusScheduled && !update.Kickoff.IsZero() {
		if until := time.Until(update.Kickoff); until > 0 && until <= w.cfg.StartingLead {
			evt := models.NewEvent(models.MatchStarting, update.MatchID, teams,
				fmt.Sprintf("%s starts soon", update.Title()), "")
			emitted += w.emitOnce(ctx, evt)
		}
	}

	if update.Status == models.StatusLive && prev.Status != models.StatusLive && prev.Status != models.StatusFinished {
		evt := models.NewEvent(models.MatchStarted, update.MatchID, teams,
			fmt.Sprintf("%s has started!", update.Title()), "")
		emitted += w.emitOnce(ctx, evt)
	}

	if update.Status == models.StatusLive && update.Score.Total() > prev.Score.Total() {
		// The feed reports only the cumulative score, so the message
		// carries the new score rather than a per-goal delta. Which side
		// scored between polls is not disambiguated.
		evt := models.NewEvent(models.Goal, update.MatchID, teams,
			fmt.Sprintf("Goal! %s %s %s", update.Home.Name, update.Score, update.Away.Name),
			update.Score.String())
		emitted += w.emitOnce(ctx, evt)
	}

	if update.Status == models.StatusFinished && prev.Status != models.StatusFinished {
		evt := models.NewEvent(models.MatchEnded, update.MatchID, teams,
			fmt.Sprintf("Full time: %s %s %s", update.Home.Name, update.Score, update.Away.Name), "")
		emitted += w.emitOnce(ctx, evt)
	}

	w.states.Apply(update)
	return emitted
}
