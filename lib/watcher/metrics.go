package watcher

type pollMetrics struct {
	polled  int // teams fetched successfully
	errored int // teams whose fetch failed
	matches int // distinct matches observed
	emitted int // events emitted
}
