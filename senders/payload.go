package senders

import (
	"fmt"

	"github.com/fiffu/matchwatch/lib/models"
)

// Payload is the transport-agnostic rendering of one notification. The Data
// block rides along so the client can deep-link into the match view.
type Payload struct {
	Title string      `json:"title"`
	Body  string      `json:"body"`
	Icon  string      `json:"icon,omitempty"`
	Badge string      `json:"badge,omitempty"`
	Data  PayloadData `json:"data"`
}

type PayloadData struct {
	Type    string `json:"type"`
	MatchID string `json:"matchId,omitempty"`
	URL     string `json:"url,omitempty"`
}

func Render(evt *models.NotificationEvent) Payload {
	p := Payload{
		Body:  evt.Message,
		Icon:  "/icons/icon-192x192.png",
		Badge: "/icons/badge-72x72.png",
		Data: PayloadData{
			Type:    string(evt.Type),
			MatchID: evt.MatchID,
		},
	}
	if evt.MatchID != "" {
		p.Data.URL = fmt.Sprintf("/matches/%s", evt.MatchID)
	}

	switch evt.Type {
	case models.MatchStarting:
		p.Title = "⚽ Match starting soon!"
	case models.MatchStarted:
		p.Title = "🚀 Match started!"
	case models.Goal:
		p.Title = "⚽ GOAL!"
	case models.MatchEnded:
		p.Title = "🏁 Full time"
	case models.TestPing:
		p.Title = "🧪 Test notification"
	default:
		p.Title = "Matchwatch"
	}
	return p
}
