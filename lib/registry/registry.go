// Package registry owns Subscription lifetime. Everything else in the
// pipeline only reads subscriptions; eviction on permanent delivery failure
// comes back through here too.
package registry

import (
	"context"

	"github.com/fiffu/matchwatch/lib/models"
)

type Registry interface {
	// Subscribe registers userID's interest in team, creating the
	// subscriber with the given destination on first call. Subscribing
	// twice to the same team has no additional effect.
	Subscribe(ctx context.Context, userID, platform, endpoint string, team models.TeamID) error

	// Unsubscribe removes one followed team. Unsubscribing an absent team
	// is a no-op. The last team does not remove the subscriber; Evict does.
	Unsubscribe(ctx context.Context, userID string, team models.TeamID) error

	SetTypePreference(ctx context.Context, userID string, t models.NotificationType, enabled bool) error

	// Evict removes the subscriber and everything hanging off it.
	Evict(ctx context.Context, userID string) error

	Get(ctx context.Context, userID string) (*models.Subscription, error)
	All(ctx context.Context) ([]*models.Subscription, error)

	// FollowedTeams returns the distinct teams across all subscriptions,
	// which is what the poller asks the source feed about.
	FollowedTeams(ctx context.Context) ([]models.TeamID, error)
}
