// Package watcher runs the match-event notification pipeline: a poller that
// diffs live match data against stored state, a simulator that stands in
// when the live source is unreachable, and the matcher/dispatcher path that
// turns detected transitions into deliveries.
package watcher

import (
	"context"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fiffu/matchwatch/config"
	"github.com/fiffu/matchwatch/lib/feed"
	"github.com/fiffu/matchwatch/lib/models"
	"github.com/fiffu/matchwatch/lib/registry"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Source is where the poller gets live match data from.
type Source interface {
	// Enabled reports whether the source is usable at all (e.g. an API
	// token is configured).
	Enabled() bool
	MatchesForTeam(ctx context.Context, team models.TeamID) ([]models.MatchUpdate, error)
}

type Watcher struct {
	cfg        *config.Config
	log        *zap.Logger
	source     Source
	registry   registry.Registry
	feed       feed.Store
	dispatcher *Dispatcher
	states     *MatchStateStore

	rngMu sync.Mutex
	rng   *rand.Rand

	mode    atomic.Value // models.Mode
	polling atomic.Bool  // single in-flight poll cycle guard

	cancel context.CancelFunc
	done   chan struct{}
}

func NewWatcher(
	lc fx.Lifecycle,
	cfg *config.Config,
	log *zap.Logger,
	source Source,
	reg registry.Registry,
	fd feed.Store,
	dispatcher *Dispatcher,
) *Watcher {
	w := newWatcher(cfg, log, source, reg, fd, dispatcher)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			w.Start(context.Background())
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Sugar().Info("Trying to stop watcher")
			w.Stop()
			return nil
		},
	})

	return w
}

func newWatcher(
	cfg *config.Config,
	log *zap.Logger,
	source Source,
	reg registry.Registry,
	fd feed.Store,
	dispatcher *Dispatcher,
) *Watcher {
	seed := cfg.SimulatorSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	w := &Watcher{
		cfg:        cfg,
		log:        log,
		source:     source,
		registry:   reg,
		feed:       fd,
		dispatcher: dispatcher,
		states:     NewMatchStateStore(),
		rng:        rand.New(rand.NewSource(seed)),
		done:       make(chan struct{}),
	}
	if source.Enabled() {
		w.mode.Store(models.ModeLive)
	} else {
		w.mode.Store(models.ModeDemo)
	}
	return w
}

func (w *Watcher) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	go w.run(ctx)
}

func (w *Watcher) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	<-w.done
	w.log.Sugar().Info("Watcher stopped")
}

// Mode reports whether the pipeline is on live data or the simulator.
func (w *Watcher) Mode() models.Mode {
	return w.mode.Load().(models.Mode)
}

func (w *Watcher) setMode(m models.Mode) {
	if w.mode.Swap(m) != m {
		w.log.Sugar().Infof("Pipeline mode is now %s", m)
	}
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.done)

	pollTicker := time.NewTicker(w.cfg.PollInterval)
	defer pollTicker.Stop()
	simTicker := time.NewTicker(w.cfg.SimulateInterval)
	defer simTicker.Stop()

	w.log.Sugar().Infow("Watcher started",
		"mode", w.Mode(), "poll_interval", w.cfg.PollInterval, "simulate_interval", w.cfg.SimulateInterval)

	if w.source.Enabled() {
		go w.pollCycle(ctx)
	}

	for {
		select {
		case <-pollTicker.C:
			if w.source.Enabled() {
				go w.pollCycle(ctx)
			}
		case <-simTicker.C:
			w.simulateTick(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// emit pushes one event through the feed, the matcher and the dispatcher.
// Failures stay inside this call; the timer loop never sees them.
func (w *Watcher) emit(ctx context.Context, evt *models.NotificationEvent) {
	if err := w.feed.Append(ctx, evt, w.Mode()); err != nil {
		w.log.Sugar().Errorw("Failed to append to feed", "err", err)
	}

	subs, err := w.registry.All(ctx)
	if err != nil {
		w.log.Sugar().Errorw("Failed to list subscriptions", "err", err)
		return
	}

	recipients := ResolveRecipients(evt, subs)
	if len(recipients) == 0 {
		return
	}

	delivered, failed := w.dispatcher.Dispatch(ctx, evt, recipients)
	w.log.Sugar().Infow("Event dispatched",
		"type", evt.Type, "match_id", evt.MatchID,
		"recipients", len(recipients), "delivered", delivered, "failed", failed)
}

// emitOnce emits the event only if its id has not been processed for this
// match before. Returns 1 if emitted.
func (w *Watcher) emitOnce(ctx context.Context, evt *models.NotificationEvent) int {
	if !w.states.MarkProcessed(evt.MatchID, evt.ID) {
		return 0
	}
	w.emit(ctx, evt)
	return 1
}

func (w *Watcher) randIntn(n int) int {
	w.rngMu.Lock()
	defer w.rngMu.Unlock()
	return w.rng.Intn(n)
}
