package lib

import (
	"context"
	"fmt"
	"time"

	"github.com/fiffu/matchwatch/config"
	"github.com/fiffu/matchwatch/lib/feed"
	"github.com/fiffu/matchwatch/lib/models"
	"github.com/fiffu/matchwatch/lib/registry"
	"github.com/fiffu/matchwatch/lib/watcher"
	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Pipeline is the slice of the watcher the management layer needs.
type Pipeline interface {
	Mode() models.Mode
}

// Service is the management surface consumed by the HTTP layer: it
// validates requests and delegates to the registry, the feed and the
// dispatcher.
type Service struct {
	cfg        *config.Config
	log        *zap.Logger
	registry   registry.Registry
	feed       feed.Store
	dispatcher *watcher.Dispatcher
	pipeline   Pipeline
}

func NewService(
	lc fx.Lifecycle,
	cfg *config.Config,
	log *zap.Logger,
	reg registry.Registry,
	fd feed.Store,
	dispatcher *watcher.Dispatcher,
	pipeline Pipeline,
) *Service {
	return &Service{cfg, log, reg, fd, dispatcher, pipeline}
}

func (svc *Service) Subscribe(ctx context.Context, userID, team, platform, endpoint string) error {
	if userID == "" {
		return fmt.Errorf("%w: user id is required", models.ErrInvalidSubscription)
	}
	if team == "" {
		return fmt.Errorf("%w: team is required", models.ErrInvalidSubscription)
	}
	if platform == "" {
		platform = "webpush"
	}

	if err := svc.registry.Subscribe(ctx, userID, platform, endpoint, models.NormalizeTeam(team)); err != nil {
		return err
	}
	svc.log.Sugar().Infof("User %s subscribed to %s via %s", userID, team, platform)
	return nil
}

func (svc *Service) Unsubscribe(ctx context.Context, userID, team string) error {
	if userID == "" || team == "" {
		return fmt.Errorf("%w: user id and team are required", models.ErrInvalidSubscription)
	}
	return svc.registry.Unsubscribe(ctx, userID, models.NormalizeTeam(team))
}

func (svc *Service) SetTypePreference(ctx context.Context, userID, typeName string, enabled bool) error {
	if userID == "" {
		return fmt.Errorf("%w: user id is required", models.ErrInvalidSubscription)
	}
	t, ok := models.ParseNotificationType(typeName)
	if !ok {
		return fmt.Errorf("%w: unknown notification type %q", models.ErrInvalidSubscription, typeName)
	}
	return svc.registry.SetTypePreference(ctx, userID, t, enabled)
}

// SendTest delivers a canned notification to one user's destination through
// the normal dispatch path, so a working test implies working match events.
func (svc *Service) SendTest(ctx context.Context, userID string) error {
	if userID == "" {
		return fmt.Errorf("%w: user id is required", models.ErrInvalidSubscription)
	}
	sub, err := svc.registry.Get(ctx, userID)
	if err != nil {
		return err
	}

	evt := &models.NotificationEvent{
		ID:        uuid.NewString(),
		Type:      models.TestPing,
		Message:   "If you can see this, notifications are working.",
		Timestamp: time.Now().UTC(),
	}
	return svc.dispatcher.Deliver(ctx, sub, evt)
}

func (svc *Service) RecentNotifications(ctx context.Context, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > svc.cfg.FeedSize {
		limit = svc.cfg.FeedSize
	}
	return svc.feed.Recent(ctx, limit)
}

// Status reports whether the pipeline is serving live data or simulated
// demo matches.
func (svc *Service) Status() models.Mode {
	return svc.pipeline.Mode()
}
