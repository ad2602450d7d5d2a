package watcher

import (
	"sync"
	"time"

	"github.com/fiffu/matchwatch/lib/models"
)

// MatchState is the last-observed state of one match plus the set of event
// ids already emitted for it. The processed set never shrinks; that is the
// idempotency guard against re-notifying on overlapping or retried polls.
type MatchState struct {
	MatchID    string
	Status     models.MatchStatus
	Score      models.Score
	Kickoff    time.Time
	finishedAt time.Time
	processed  map[string]struct{}
}

// StateView is a copy of a match's diffable state, safe to read outside the
// store lock.
type StateView struct {
	Status  models.MatchStatus
	Score   models.Score
	Created bool
}

type MatchStateStore struct {
	mu     sync.Mutex
	states map[string]*MatchState
}

func NewMatchStateStore() *MatchStateStore {
	return &MatchStateStore{states: make(map[string]*MatchState)}
}

// Observe returns the stored view of the match for diffing against the
// update. A match seen for the first time is seeded SCHEDULED at the
// update's current score, so a match first observed mid-game produces a
// start transition but no spurious goals.
func (s *MatchStateStore) Observe(update models.MatchUpdate) StateView {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.states[update.MatchID]
	if !ok {
		st = &MatchState{
			MatchID:   update.MatchID,
			Status:    models.StatusScheduled,
			Score:     update.Score,
			Kickoff:   update.Kickoff,
			processed: make(map[string]struct{}),
		}
		s.states[update.MatchID] = st
		return StateView{Status: st.Status, Score: st.Score, Created: true}
	}
	return StateView{Status: st.Status, Score: st.Score}
}

// MarkProcessed records an event id against the match, reporting whether it
// was newly recorded. A false return means the transition was already
// notified and must not be re-emitted.
func (s *MatchStateStore) MarkProcessed(matchID, eventID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.states[matchID]
	if !ok {
		return false
	}
	if _, done := st.processed[eventID]; done {
		return false
	}
	st.processed[eventID] = struct{}{}
	return true
}

// Apply folds an update into the stored state. Status never regresses once
// FINISHED and the score never decreases; the source feed occasionally
// flaps and stored state is what downstream ordering relies on.
func (s *MatchStateStore) Apply(update models.MatchUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.states[update.MatchID]
	if !ok {
		return
	}
	if st.Status == models.StatusFinished {
		return
	}
	if update.Score.Total() > st.Score.Total() {
		st.Score = update.Score
	}
	if update.Status != st.Status {
		st.Status = update.Status
		if update.Status == models.StatusFinished {
			st.finishedAt = time.Now().UTC()
		}
	}
}

// EvictFinished drops matches that finished longer than grace ago.
func (s *MatchStateStore) EvictFinished(grace time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().UTC().Add(-grace)
	evicted := 0
	for id, st := range s.states {
		if st.Status == models.StatusFinished && st.finishedAt.Before(cutoff) {
			delete(s.states, id)
			evicted++
		}
	}
	return evicted
}

// Len reports how many matches are currently tracked.
func (s *MatchStateStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.states)
}
