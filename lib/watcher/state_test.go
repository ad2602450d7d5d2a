package watcher

import (
	"testing"
	"time"

	"github.com/fiffu/matchwatch/lib/models"
	"github.com/stretchr/testify/assert"
)

func update(matchID string, status models.MatchStatus, home, away int) models.MatchUpdate {
	return models.MatchUpdate{
		MatchID: matchID,
		Home:    models.TeamInfo{ID: "1", Name: "Arsenal"},
		Away:    models.TeamInfo{ID: "2", Name: "Chelsea"},
		Status:  status,
		Score:   models.Score{Home: home, Away: away},
	}
}

func TestObserveSeedsScheduledAtCurrentScore(t *testing.T) {
	store := NewMatchStateStore()

	// First sighting of a match already in play: seeded SCHEDULED with the
	// current score, so diffing yields a start but no goals.
	view := store.Observe(update("m1", models.StatusLive, 2, 1))
	assert.True(t, view.Created)
	assert.Equal(t, models.StatusScheduled, view.Status)
	assert.Equal(t, models.Score{Home: 2, Away: 1}, view.Score)

	store.Apply(update("m1", models.StatusLive, 2, 1))
	view = store.Observe(update("m1", models.StatusLive, 2, 1))
	assert.False(t, view.Created)
	assert.Equal(t, models.StatusLive, view.Status)
}

func TestMarkProcessedOnce(t *testing.T) {
	store := NewMatchStateStore()
	store.Observe(update("m1", models.StatusLive, 0, 0))

	evtID := models.EventID("m1", models.MatchStarted, "")
	assert.True(t, store.MarkProcessed("m1", evtID))
	assert.False(t, store.MarkProcessed("m1", evtID), "second mark must report already-processed")

	assert.False(t, store.MarkProcessed("unknown", evtID), "untracked match cannot record markers")
}

func TestFinishedIsTerminal(t *testing.T) {
	store := NewMatchStateStore()
	store.Observe(update("m1", models.StatusLive, 1, 0))
	store.Apply(update("m1", models.StatusLive, 1, 0))
	store.Apply(update("m1", models.StatusFinished, 1, 0))

	// A feed flap back to LIVE must not regress the stored status.
	store.Apply(update("m1", models.StatusLive, 1, 0))
	view := store.Observe(update("m1", models.StatusLive, 1, 0))
	assert.Equal(t, models.StatusFinished, view.Status)
}

func TestScoreNeverDecreases(t *testing.T) {
	store := NewMatchStateStore()
	store.Observe(update("m1", models.StatusLive, 0, 0))
	store.Apply(update("m1", models.StatusLive, 2, 1))

	store.Apply(update("m1", models.StatusLive, 1, 1))
	view := store.Observe(update("m1", models.StatusLive, 1, 1))
	assert.Equal(t, models.Score{Home: 2, Away: 1}, view.Score)
}

func TestEvictFinished(t *testing.T) {
	store := NewMatchStateStore()
	store.Observe(update("m1", models.StatusLive, 0, 0))
	store.Apply(update("m1", models.StatusFinished, 1, 0))
	store.Observe(update("m2", models.StatusLive, 0, 0))
	store.Apply(update("m2", models.StatusLive, 0, 0))

	assert.Equal(t, 0, store.EvictFinished(time.Hour), "still within grace")
	assert.Equal(t, 2, store.Len())

	assert.Equal(t, 1, store.EvictFinished(-time.Second), "finished match past grace is evicted")
	assert.Equal(t, 1, store.Len(), "live match is retained")
}
