package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventID(t *testing.T) {
	a := EventID("123", Goal, "1-0")
	b := EventID("123", Goal, "1-0")
	assert.Equal(t, a, b, "same transition must derive the same id")

	assert.NotEqual(t, a, EventID("123", Goal, "2-0"), "new score is a new event")
	assert.NotEqual(t, a, EventID("456", Goal, "1-0"), "different match is a different event")
	assert.NotEqual(t, a, EventID("123", MatchEnded, "1-0"), "different type is a different event")
}

func TestParseNotificationType(t *testing.T) {
	for _, valid := range []string{"match_starting", "match_started", "goal", "match_ended"} {
		parsed, ok := ParseNotificationType(valid)
		assert.True(t, ok)
		assert.Equal(t, NotificationType(valid), parsed)
	}

	_, ok := ParseNotificationType("red_card")
	assert.False(t, ok)
	_, ok = ParseNotificationType("")
	assert.False(t, ok)
}

func TestWantsType(t *testing.T) {
	sub := &Subscription{TypePrefs: map[NotificationType]bool{
		Goal: false,
	}}

	assert.False(t, sub.WantsType(Goal), "explicitly disabled")
	assert.True(t, sub.WantsType(MatchStarted), "unset defaults to enabled")

	sub.TypePrefs[Goal] = true
	assert.True(t, sub.WantsType(Goal))
}

func TestFollowsAny(t *testing.T) {
	sub := &Subscription{Teams: map[TeamID]struct{}{
		"arsenal": {},
	}}

	assert.True(t, sub.FollowsAny([]TeamID{"arsenal", "chelsea"}))
	assert.True(t, sub.FollowsAny([]TeamID{"arsenal fc"}), "followed name should match the feed's fuller spelling")
	assert.False(t, sub.FollowsAny([]TeamID{"chelsea", "liverpool"}))
	assert.False(t, sub.FollowsAny(nil))
}

func TestScoreString(t *testing.T) {
	assert.Equal(t, "0-0", Score{}.String())
	assert.Equal(t, "2-1", Score{Home: 2, Away: 1}.String())
	assert.Equal(t, 3, Score{Home: 2, Away: 1}.Total())
}

func TestNormalizeTeam(t *testing.T) {
	assert.Equal(t, TeamID("arsenal"), NormalizeTeam(" Arsenal "))
	assert.Equal(t, TeamID("manchester city fc"), NormalizeTeam("Manchester City FC"))
}
