package models

import (
	"crypto/sha1"
	"fmt"
	"time"
)

type NotificationType string

const (
	MatchStarting NotificationType = "match_starting"
	MatchStarted  NotificationType = "match_started"
	Goal          NotificationType = "goal"
	MatchEnded    NotificationType = "match_ended"

	// TestPing never comes out of a source feed; it exists for the
	// send-test management operation.
	TestPing NotificationType = "test"
)

// ParseNotificationType validates a client-supplied preference key.
func ParseNotificationType(s string) (NotificationType, bool) {
	switch t := NotificationType(s); t {
	case MatchStarting, MatchStarted, Goal, MatchEnded:
		return t, true
	default:
		return "", false
	}
}

// NotificationEvent is ephemeral: produced by a source (poller or simulator),
// consumed once by the matcher and dispatcher, never persisted beyond its
// processed-marker and the feed record.
type NotificationEvent struct {
	ID        string
	Type      NotificationType
	MatchID   string
	Teams     []TeamID
	Message   string
	Timestamp time.Time
}

// EventID derives a deterministic event identity from the match, the
// transition type and a discriminator (the new score for goals, empty for
// one-shot transitions). Observing the same state twice yields the same ID,
// which is what makes re-polls idempotent.
func EventID(matchID string, eventType NotificationType, discriminator string) string {
	return fmt.Sprintf("%x", sha1.Sum([]byte(matchID+"|"+string(eventType)+"|"+discriminator)))
}

func NewEvent(eventType NotificationType, matchID string, teams []TeamID, message, discriminator string) *NotificationEvent {
	return &NotificationEvent{
		ID:        EventID(matchID, eventType, discriminator),
		Type:      eventType,
		MatchID:   matchID,
		Teams:     teams,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
}
