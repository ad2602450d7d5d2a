package registry

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/fiffu/matchwatch/lib/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Both implementations must satisfy the same contract.
func eachRegistry(t *testing.T, run func(t *testing.T, reg Registry)) {
	t.Run("memory", func(t *testing.T) {
		run(t, NewMemoryRegistry())
	})
	t.Run("gorm", func(t *testing.T) {
		db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.sqlite")), &gorm.Config{})
		require.NoError(t, err)
		require.NoError(t, db.AutoMigrate(&models.Subscriber{}, &models.TeamFollow{}, &models.TypePref{}))
		run(t, NewGormRegistry(db, zap.NewNop()))
	})
}

func TestSubscribeIsIdempotent(t *testing.T) {
	eachRegistry(t, func(t *testing.T, reg Registry) {
		ctx := context.Background()

		require.NoError(t, reg.Subscribe(ctx, "u1", "webpush", "https://push/u1", "arsenal"))
		require.NoError(t, reg.Subscribe(ctx, "u1", "webpush", "https://push/u1", "arsenal"))
		require.NoError(t, reg.Subscribe(ctx, "u1", "webpush", "https://push/u1", "chelsea"))

		sub, err := reg.Get(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, "webpush", sub.Platform)
		assert.Equal(t, "https://push/u1", sub.Endpoint)
		assert.Len(t, sub.Teams, 2)
		assert.Contains(t, sub.Teams, models.TeamID("arsenal"))
		assert.Contains(t, sub.Teams, models.TeamID("chelsea"))
	})
}

func TestUnsubscribe(t *testing.T) {
	eachRegistry(t, func(t *testing.T, reg Registry) {
		ctx := context.Background()

		require.NoError(t, reg.Subscribe(ctx, "u1", "webpush", "https://push/u1", "arsenal"))

		require.NoError(t, reg.Unsubscribe(ctx, "u1", "arsenal"))
		sub, err := reg.Get(ctx, "u1")
		require.NoError(t, err)
		assert.Empty(t, sub.Teams)

		// Absent team and absent user are both no-ops.
		assert.NoError(t, reg.Unsubscribe(ctx, "u1", "liverpool"))
		assert.NoError(t, reg.Unsubscribe(ctx, "nobody", "arsenal"))
	})
}

func TestEvict(t *testing.T) {
	eachRegistry(t, func(t *testing.T, reg Registry) {
		ctx := context.Background()

		require.NoError(t, reg.Subscribe(ctx, "u1", "webpush", "https://push/u1", "arsenal"))
		require.NoError(t, reg.SetTypePreference(ctx, "u1", models.Goal, false))

		require.NoError(t, reg.Evict(ctx, "u1"))

		_, err := reg.Get(ctx, "u1")
		assert.ErrorIs(t, err, models.ErrSubscriberNotFound)

		all, err := reg.All(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)

		// Evicting again is a no-op.
		assert.NoError(t, reg.Evict(ctx, "u1"))
	})
}

func TestSetTypePreference(t *testing.T) {
	eachRegistry(t, func(t *testing.T, reg Registry) {
		ctx := context.Background()

		require.NoError(t, reg.Subscribe(ctx, "u1", "webpush", "https://push/u1", "arsenal"))

		require.NoError(t, reg.SetTypePreference(ctx, "u1", models.Goal, false))
		sub, err := reg.Get(ctx, "u1")
		require.NoError(t, err)
		assert.False(t, sub.WantsType(models.Goal))
		assert.True(t, sub.WantsType(models.MatchEnded))

		// Toggling back overwrites, not duplicates.
		require.NoError(t, reg.SetTypePreference(ctx, "u1", models.Goal, true))
		sub, err = reg.Get(ctx, "u1")
		require.NoError(t, err)
		assert.True(t, sub.WantsType(models.Goal))
	})
}

func TestResubscribeAfterRemoval(t *testing.T) {
	eachRegistry(t, func(t *testing.T, reg Registry) {
		ctx := context.Background()

		require.NoError(t, reg.Subscribe(ctx, "u1", "webpush", "https://push/u1", "arsenal"))
		require.NoError(t, reg.Unsubscribe(ctx, "u1", "arsenal"))
		require.NoError(t, reg.Subscribe(ctx, "u1", "webpush", "https://push/u1", "arsenal"))

		sub, err := reg.Get(ctx, "u1")
		require.NoError(t, err)
		assert.Contains(t, sub.Teams, models.TeamID("arsenal"), "re-following a dropped team must stick")

		// Same after a full eviction (dead push endpoint, then a fresh one).
		require.NoError(t, reg.Evict(ctx, "u1"))
		require.NoError(t, reg.Subscribe(ctx, "u1", "webpush", "https://push/u1-new", "chelsea"))

		sub, err = reg.Get(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, "https://push/u1-new", sub.Endpoint)
		assert.Contains(t, sub.Teams, models.TeamID("chelsea"))
	})
}

func TestFollowedTeams(t *testing.T) {
	eachRegistry(t, func(t *testing.T, reg Registry) {
		ctx := context.Background()

		require.NoError(t, reg.Subscribe(ctx, "u1", "webpush", "https://push/u1", "arsenal"))
		require.NoError(t, reg.Subscribe(ctx, "u2", "webpush", "https://push/u2", "arsenal"))
		require.NoError(t, reg.Subscribe(ctx, "u2", "webpush", "https://push/u2", "chelsea"))

		teams, err := reg.FollowedTeams(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, []models.TeamID{"arsenal", "chelsea"}, teams)
	})
}
