package watcher

import (
	"context"
	"sync"
	"time"

	"github.com/fiffu/matchwatch/config"
	"github.com/fiffu/matchwatch/lib/feed"
	"github.com/fiffu/matchwatch/lib/models"
	"github.com/fiffu/matchwatch/lib/registry"
	"github.com/fiffu/matchwatch/senders"
	"go.uber.org/zap"
)

// recordingSender captures every delivery attempt in order of arrival.
type recordingSender struct {
	mu    sync.Mutex
	sends []recordedSend
	fail  func(destination string) error // optional
}

type recordedSend struct {
	destination string
	payload     senders.Payload
}

func (s *recordingSender) Send(ctx context.Context, destination string, payload senders.Payload) (string, error) {
	if s.fail != nil {
		if err := s.fail(destination); err != nil {
			return "", err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sends = append(s.sends, recordedSend{destination, payload})
	return "msg-id", nil
}

func (s *recordingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sends)
}

func (s *recordingSender) destinations() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.sends))
	for i, send := range s.sends {
		out[i] = send.destination
	}
	return out
}

// fakeSource serves canned match data per team, or errors.
type fakeSource struct {
	mu      sync.Mutex
	enabled bool
	matches map[models.TeamID][]models.MatchUpdate
	errs    map[models.TeamID]error
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		enabled: true,
		matches: make(map[models.TeamID][]models.MatchUpdate),
		errs:    make(map[models.TeamID]error),
	}
}

func (s *fakeSource) Enabled() bool { return s.enabled }

func (s *fakeSource) MatchesForTeam(ctx context.Context, team models.TeamID) ([]models.MatchUpdate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.errs[team]; ok {
		return nil, err
	}
	return s.matches[team], nil
}

func (s *fakeSource) serve(team models.TeamID, matches ...models.MatchUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.errs, team)
	s.matches[team] = matches
}

func (s *fakeSource) failWith(team models.TeamID, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs[team] = err
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.PollInterval = time.Hour
	cfg.SimulateInterval = time.Hour
	cfg.GoalInterval = 2 * time.Millisecond
	cfg.StartingLead = 10 * time.Minute
	cfg.FinishedGrace = time.Hour
	cfg.FeedRetention = 24 * time.Hour
	cfg.FeedSize = 50
	cfg.SimulatorSeed = 1
	return cfg
}

type testPipeline struct {
	*Watcher
	source   *fakeSource
	registry registry.Registry
	feed     feed.Store
	sender   *recordingSender
}

func newTestPipeline(source *fakeSource) *testPipeline {
	log := zap.NewNop()
	reg := registry.NewMemoryRegistry()
	fd := feed.NewMemoryStore()
	sender := &recordingSender{}
	dispatcher := NewDispatcher(nil, log, reg, senders.Registry{"webpush": sender})
	w := newWatcher(testConfig(), log, source, reg, fd, dispatcher)
	return &testPipeline{w, source, reg, fd, sender}
}

func (p *testPipeline) feedTypes() []string {
	records, _ := p.feed.Recent(context.Background(), 100)
	// Recent is newest-first; reverse into emission order.
	out := make([]string, len(records))
	for i, r := range records {
		out[len(records)-1-i] = r.Type
	}
	return out
}
