package app

import (
	"strings"
	"time"

	"github.com/fiffu/matchwatch/lib/models"
)

type NotificationView struct {
	ID        string   `json:"id"`
	Type      string   `json:"type"`
	MatchID   string   `json:"match_id,omitempty"`
	Message   string   `json:"message"`
	Teams     []string `json:"teams"`
	Source    string   `json:"source"`
	Timestamp string   `json:"timestamp"`
}

func (view NotificationView) From(entity models.Notification) NotificationView {
	var teams []string
	if entity.Teams != "" {
		teams = strings.Split(entity.Teams, ",")
	}
	return NotificationView{
		ID:        entity.ID,
		Type:      entity.Type,
		MatchID:   entity.MatchID,
		Message:   entity.Message,
		Teams:     teams,
		Source:    entity.Source,
		Timestamp: entity.CreatedAt.UTC().Format(time.RFC3339),
	}
}

type Fromable[Entity any, Repr any] interface {
	From(Entity) Repr
}

func FromMany[T any, U Fromable[T, U]](elems []T) []U {
	out := make([]U, len(elems))
	for i, t := range elems {
		var u U
		out[i] = u.From(t)
	}
	return out
}
