package registry

import (
	"context"
	"sync"

	"github.com/fiffu/matchwatch/lib/models"
)

// memoryRegistry keeps subscriptions in a mutex-guarded map. Used in tests
// and wherever a database is overkill; the gorm implementation is the
// production default.
type memoryRegistry struct {
	mu   sync.Mutex
	subs map[string]*models.Subscription
}

func NewMemoryRegistry() Registry {
	return &memoryRegistry{subs: make(map[string]*models.Subscription)}
}

func (r *memoryRegistry) Subscribe(ctx context.Context, userID, platform, endpoint string, team models.TeamID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sub, ok := r.subs[userID]
	if !ok {
		sub = &models.Subscription{
			UserID:    userID,
			Teams:     make(map[models.TeamID]struct{}),
			TypePrefs: make(map[models.NotificationType]bool),
		}
		r.subs[userID] = sub
	}
	sub.Platform = platform
	sub.Endpoint = endpoint
	sub.Teams[team] = struct{}{}
	return nil
}

func (r *memoryRegistry) Unsubscribe(ctx context.Context, userID string, team models.TeamID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if sub, ok := r.subs[userID]; ok {
		delete(sub.Teams, team)
	}
	return nil
}

func (r *memoryRegistry) SetTypePreference(ctx context.Context, userID string, t models.NotificationType, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sub, ok := r.subs[userID]
	if !ok {
		return models.ErrSubscriberNotFound
	}
	sub.TypePrefs[t] = enabled
	return nil
}

func (r *memoryRegistry) Evict(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.subs, userID)
	return nil
}

func (r *memoryRegistry) Get(ctx context.Context, userID string) (*models.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sub, ok := r.subs[userID]
	if !ok {
		return nil, models.ErrSubscriberNotFound
	}
	return copySubscription(sub), nil
}

func (r *memoryRegistry) All(ctx context.Context) ([]*models.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*models.Subscription, 0, len(r.subs))
	for _, sub := range r.subs {
		out = append(out, copySubscription(sub))
	}
	return out, nil
}

func (r *memoryRegistry) FollowedTeams(ctx context.Context) ([]models.TeamID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[models.TeamID]struct{})
	var out []models.TeamID
	for _, sub := range r.subs {
		for team := range sub.Teams {
			if _, ok := seen[team]; !ok {
				seen[team] = struct{}{}
				out = append(out, team)
			}
		}
	}
	return out, nil
}

// copySubscription snapshots a subscription so callers never share the maps
// mutated under the registry lock.
func copySubscription(sub *models.Subscription) *models.Subscription {
	cp := &models.Subscription{
		UserID:    sub.UserID,
		Platform:  sub.Platform,
		Endpoint:  sub.Endpoint,
		Teams:     make(map[models.TeamID]struct{}, len(sub.Teams)),
		TypePrefs: make(map[models.NotificationType]bool, len(sub.TypePrefs)),
	}
	for t := range sub.Teams {
		cp.Teams[t] = struct{}{}
	}
	for t, enabled := range sub.TypePrefs {
		cp.TypePrefs[t] = enabled
	}
	return cp
}
