package registry

import (
	"context"
	"errors"

	"github.com/fiffu/matchwatch/lib/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type gormRegistry struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewGormRegistry(db *gorm.DB, log *zap.Logger) Registry {
	return &gormRegistry{db, log}
}

func (r *gormRegistry) Subscribe(ctx context.Context, userID, platform, endpoint string, team models.TeamID) error {
	sub := &models.Subscriber{UserID: userID, Platform: platform, Endpoint: endpoint}
	tx := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"platform", "endpoint"}),
		}).
		Create(sub)
	if err := tx.Error; err != nil {
		return err
	}

	follow := &models.TeamFollow{UserID: userID, Team: string(team)}
	tx = r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(follow)
	return tx.Error
}

func (r *gormRegistry) Unsubscribe(ctx context.Context, userID string, team models.TeamID) error {
	// Hard delete: a soft-deleted row would still occupy the unique index
	// and block the user from following the team again.
	tx := r.db.WithContext(ctx).Unscoped().
		Where("user_id = ?", userID).
		Where("team = ?", string(team)).
		Delete(&models.TeamFollow{})
	return tx.Error
}

func (r *gormRegistry) SetTypePreference(ctx context.Context, userID string, t models.NotificationType, enabled bool) error {
	pref := &models.TypePref{UserID: userID, Type: string(t), Enabled: enabled}
	tx := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "type"}},
			DoUpdates: clause.AssignmentColumns([]string{"enabled"}),
		}).
		Create(pref)
	return tx.Error
}

func (r *gormRegistry) Evict(ctx context.Context, userID string) error {
	// Hard delete, same reasoning as Unsubscribe: the user must be able to
	// subscribe afresh after their destination expired.
	db := r.db.WithContext(ctx).Unscoped()
	if tx := db.Where("user_id = ?", userID).Delete(&models.TeamFollow{}); tx.Error != nil {
		return tx.Error
	}
	if tx := db.Where("user_id = ?", userID).Delete(&models.TypePref{}); tx.Error != nil {
		return tx.Error
	}
	tx := db.Where("user_id = ?", userID).Delete(&models.Subscriber{})
	if tx.RowsAffected > 0 {
		r.log.Sugar().Infof("Evicted subscriber %s", userID)
	}
	return tx.Error
}

func (r *gormRegistry) Get(ctx context.Context, userID string) (*models.Subscription, error) {
	subscriber := models.Subscriber{}
	tx := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&subscriber)
	if err := tx.Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrSubscriberNotFound
	} else if err != nil {
		return nil, err
	}
	return r.assemble(ctx, &subscriber)
}

func (r *gormRegistry) All(ctx context.Context) ([]*models.Subscription, error) {
	var subscribers []models.Subscriber
	if tx := r.db.WithContext(ctx).Find(&subscribers); tx.Error != nil {
		return nil, tx.Error
	}

	out := make([]*models.Subscription, 0, len(subscribers))
	for i := range subscribers {
		sub, err := r.assemble(ctx, &subscribers[i])
		if err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, nil
}

func (r *gormRegistry) FollowedTeams(ctx context.Context) ([]models.TeamID, error) {
	var teams []string
	tx := r.db.WithContext(ctx).
		Model(&models.TeamFollow{}).
		Distinct("team").
		Pluck("team", &teams)
	if tx.Error != nil {
		return nil, tx.Error
	}

	out := make([]models.TeamID, len(teams))
	for i, t := range teams {
		out[i] = models.TeamID(t)
	}
	return out, nil
}

func (r *gormRegistry) assemble(ctx context.Context, subscriber *models.Subscriber) (*models.Subscription, error) {
	var follows []models.TeamFollow
	if tx := r.db.WithContext(ctx).Where("user_id = ?", subscriber.UserID).Find(&follows); tx.Error != nil {
		return nil, tx.Error
	}
	var prefs []models.TypePref
	if tx := r.db.WithContext(ctx).Where("user_id = ?", subscriber.UserID).Find(&prefs); tx.Error != nil {
		return nil, tx.Error
	}

	sub := &models.Subscription{
		UserID:    subscriber.UserID,
		Platform:  subscriber.Platform,
		Endpoint:  subscriber.Endpoint,
		Teams:     make(map[models.TeamID]struct{}, len(follows)),
		TypePrefs: make(map[models.NotificationType]bool, len(prefs)),
	}
	for _, f := range follows {
		sub.Teams[models.TeamID(f.Team)] = struct{}{}
	}
	for _, p := range prefs {
		sub.TypePrefs[models.NotificationType(p.Type)] = p.Enabled
	}
	return sub, nil
}
