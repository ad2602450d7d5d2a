// Package feed keeps a short history of emitted notifications so clients
// without a working push destination can poll for them instead.
package feed

import (
	"context"
	"strings"
	"time"

	"github.com/fiffu/matchwatch/lib/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Store interface {
	Append(ctx context.Context, evt *models.NotificationEvent, source models.Mode) error
	Recent(ctx context.Context, limit int) ([]models.Notification, error)

	// Prune drops records older than the cutoff.
	Prune(ctx context.Context, olderThan time.Time) error
}

type gormStore struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewGormStore(db *gorm.DB, log *zap.Logger) Store {
	return &gormStore{db, log}
}

func (s *gormStore) Append(ctx context.Context, evt *models.NotificationEvent, source models.Mode) error {
	record := recordFromEvent(evt, source)
	tx := s.db.WithContext(ctx).Create(record)
	return tx.Error
}

func (s *gormStore) Recent(ctx context.Context, limit int) ([]models.Notification, error) {
	var records []models.Notification
	tx := s.db.WithContext(ctx).
		Order("created_at desc").
		Limit(limit).
		Find(&records)
	return records, tx.Error
}

func (s *gormStore) Prune(ctx context.Context, olderThan time.Time) error {
	tx := s.db.WithContext(ctx).Delete(&models.Notification{}, "created_at < ?", olderThan)
	if tx.RowsAffected > 0 {
		s.log.Sugar().Infof("Pruned %d old notifications", tx.RowsAffected)
	}
	return tx.Error
}

func recordFromEvent(evt *models.NotificationEvent, source models.Mode) *models.Notification {
	teams := make([]string, len(evt.Teams))
	for i, t := range evt.Teams {
		teams[i] = string(t)
	}
	return &models.Notification{
		ID:        uuid.NewString(),
		EventID:   evt.ID,
		Type:      string(evt.Type),
		MatchID:   evt.MatchID,
		Message:   evt.Message,
		Teams:     strings.Join(teams, ","),
		Source:    string(source),
		CreatedAt: evt.Timestamp,
	}
}
