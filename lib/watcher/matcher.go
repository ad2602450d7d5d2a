package watcher

import (
	"github.com/fiffu/matchwatch/lib/models"
)

// ResolveRecipients computes the fan-out set for one event: subscriptions
// whose followed teams intersect the event's teams, and whose preference for
// the event type is not disabled (unset counts as enabled).
//
// Pure function, no I/O. Ordering of the result is unspecified; deliveries
// are independent per recipient.
func ResolveRecipients(evt *models.NotificationEvent, subs []*models.Subscription) []*models.Subscription {
	var out []*models.Subscription
	for _, sub := range subs {
		if sub.FollowsAny(evt.Teams) && sub.WantsType(evt.Type) {
			out = append(out, sub)
		}
	}
	return out
}
