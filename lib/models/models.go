package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Error taxonomy. I/O failures are contained within the component that
// issued the call; these sentinels are what crosses component boundaries.
var (
	ErrSourceUnavailable   = errors.New("match source unavailable")
	ErrMalformedResponse   = errors.New("malformed source response")
	ErrTransientDelivery   = errors.New("transient delivery failure")
	ErrEndpointGone        = errors.New("destination expired or gone")
	ErrInvalidSubscription = errors.New("invalid subscription request")
	ErrSubscriberNotFound  = errors.New("subscriber not found")
)

type Mode string

const (
	ModeLive Mode = "live"
	ModeDemo Mode = "demo"
)

// TeamID is a normalized team name. The source feed keys teams by numeric ID
// but users follow teams by name, so names are the join key throughout.
type TeamID string

func NormalizeTeam(name string) TeamID {
	return TeamID(strings.ToLower(strings.TrimSpace(name)))
}

// Matches reports whether a followed team refers to an observed team.
// "arsenal" should match "arsenal fc" the way the source feed spells it.
func (t TeamID) Matches(observed TeamID) bool {
	return t == observed || strings.Contains(string(observed), string(t))
}

type MatchStatus string

const (
	StatusScheduled MatchStatus = "SCHEDULED"
	StatusLive      MatchStatus = "LIVE"
	StatusFinished  MatchStatus = "FINISHED"
)

type Score struct {
	Home int
	Away int
}

func (s Score) Total() int { return s.Home + s.Away }

func (s Score) String() string {
	return fmt.Sprintf("%d-%d", s.Home, s.Away)
}

type TeamInfo struct {
	ID   string
	Name string
}

// MatchUpdate is one match as observed from a source feed on a single poll.
type MatchUpdate struct {
	MatchID string
	Home    TeamInfo
	Away    TeamInfo
	Status  MatchStatus
	Score   Score
	Kickoff time.Time
}

func (m MatchUpdate) Teams() []TeamID {
	return []TeamID{NormalizeTeam(m.Home.Name), NormalizeTeam(m.Away.Name)}
}

func (m MatchUpdate) Title() string {
	return m.Home.Name + " vs " + m.Away.Name
}

// Subscription is a user's standing interest in team events, bound to a
// delivery destination. Assembled by a Registry; consumers only read it.
type Subscription struct {
	UserID    string
	Platform  string
	Endpoint  string
	Teams     map[TeamID]struct{}
	TypePrefs map[NotificationType]bool
}

// WantsType treats an unset preference as enabled.
func (s *Subscription) WantsType(t NotificationType) bool {
	enabled, ok := s.TypePrefs[t]
	return !ok || enabled
}

func (s *Subscription) FollowsAny(teams []TeamID) bool {
	for followed := range s.Teams {
		for _, observed := range teams {
			if followed.Matches(observed) {
				return true
			}
		}
	}
	return false
}

// --- persisted entities ---

type Subscriber struct {
	gorm.Model
	UserID   string `gorm:"uniqueIndex"`
	Platform string
	Endpoint string
}

type TeamFollow struct {
	gorm.Model
	UserID string `gorm:"index:idx_follow_user_team,unique"`
	Team   string `gorm:"index:idx_follow_user_team,unique"`
}

type TypePref struct {
	gorm.Model
	UserID  string `gorm:"index:idx_pref_user_type,unique"`
	Type    string `gorm:"index:idx_pref_user_type,unique"`
	Enabled bool
}

// Notification is a feed record of an emitted event, served to clients that
// poll instead of receiving push.
type Notification struct {
	ID        string `gorm:"primaryKey"`
	EventID   string
	Type      string
	MatchID   string
	Message   string
	Teams     string
	Source    string
	CreatedAt time.Time `gorm:"index"`
}
