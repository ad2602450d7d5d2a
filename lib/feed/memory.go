package feed

import (
	"context"
	"sync"
	"time"

	"github.com/fiffu/matchwatch/lib/models"
)

type memoryStore struct {
	mu      sync.Mutex
	records []models.Notification
}

func NewMemoryStore() Store {
	return &memoryStore{}
}

func (s *memoryStore) Append(ctx context.Context, evt *models.NotificationEvent, source models.Mode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, *recordFromEvent(evt, source))
	return nil
}

func (s *memoryStore) Recent(ctx context.Context, limit int) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Notification, 0, limit)
	for i := len(s.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.records[i])
	}
	return out, nil
}

func (s *memoryStore) Prune(ctx context.Context, olderThan time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.records[:0]
	for _, r := range s.records {
		if !r.CreatedAt.Before(olderThan) {
			kept = append(kept, r)
		}
	}
	s.records = kept
	return nil
}
