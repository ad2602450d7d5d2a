package watcher

import (
	"context"
	"errors"
	"sync"

	"github.com/fiffu/matchwatch/lib/models"
	"github.com/fiffu/matchwatch/lib/registry"
	"github.com/fiffu/matchwatch/senders"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Dispatcher fans one event out to its recipients. Delivery is best-effort,
// at-most-once: transient failures are logged and dropped, and a destination
// reported gone gets its subscription evicted so we never try it again.
type Dispatcher struct {
	log      *zap.Logger
	registry registry.Registry
	senders  senders.Registry
}

func NewDispatcher(lc fx.Lifecycle, log *zap.Logger, reg registry.Registry, snd senders.Registry) *Dispatcher {
	return &Dispatcher{log, reg, snd}
}

// Dispatch delivers evt to every recipient. Each recipient is isolated: one
// failure never prevents attempts to the rest.
func (d *Dispatcher) Dispatch(ctx context.Context, evt *models.NotificationEvent, recipients []*models.Subscription) (delivered, failed int) {
	var wg sync.WaitGroup
	var mu sync.Mutex

	for _, sub := range recipients {
		wg.Add(1)
		go func(sub *models.Subscription) {
			defer wg.Done()
			err := d.Deliver(ctx, sub, evt)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
			} else {
				delivered++
			}
		}(sub)
	}

	wg.Wait()
	return delivered, failed
}

// Deliver renders and sends evt to one subscription's destination.
func (d *Dispatcher) Deliver(ctx context.Context, sub *models.Subscription, evt *models.NotificationEvent) error {
	sender, ok := d.senders[sub.Platform]
	if !ok {
		d.log.Sugar().Warnw("Unsupported sender platform", "platform", sub.Platform, "user_id", sub.UserID)
		return models.ErrTransientDelivery
	}

	payload := senders.Render(evt)
	id, err := sender.Send(ctx, sub.Endpoint, payload)
	switch {
	case err == nil:
		d.log.Sugar().Infow("Notification sent",
			"user_id", sub.UserID, "type", evt.Type, "message_id", id)
		return nil

	case errors.Is(err, models.ErrEndpointGone):
		// Destination will never succeed again; stop trying.
		if evictErr := d.registry.Evict(ctx, sub.UserID); evictErr != nil {
			d.log.Sugar().Errorw("Failed to evict dead subscription", "user_id", sub.UserID, "err", evictErr)
		} else {
			d.log.Sugar().Infow("Removed subscription with dead destination", "user_id", sub.UserID)
		}
		return err

	default:
		// Transient: drop for this cycle; the next event for the match is
		// the retry surface.
		d.log.Sugar().Infow("Failed to deliver notification",
			"user_id", sub.UserID, "type", evt.Type, "err", err)
		return err
	}
}
