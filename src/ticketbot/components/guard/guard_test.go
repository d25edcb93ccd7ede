package guard

import (
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/codexdev/ticketbot/src/ticketbot/data"
	"github.com/codexdev/ticketbot/src/ticketbot/types"
)

func testGuard(t *testing.T, cooldown time.Duration) (*Guard, *data.Store) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, data.Migrate(db))

	store := data.NewStore(db)
	return New(store, cooldown), store
}

func TestRateLimitWindow(t *testing.T) {
	g, _ := testGuard(t, time.Minute)

	limited, err := g.IsRateLimited("alice")
	require.NoError(t, err)
	assert.False(t, limited, "fresh user is never limited")

	require.NoError(t, g.RecordTicketCreated("alice"))

	limited, err = g.IsRateLimited("alice")
	require.NoError(t, err)
	assert.True(t, limited)

	wait, err := g.TimeUntilNext("alice")
	require.NoError(t, err)
	assert.Greater(t, wait, 50*time.Second)
	assert.LessOrEqual(t, wait, time.Minute)

	// Other users are unaffected.
	limited, err = g.IsRateLimited("bob")
	require.NoError(t, err)
	assert.False(t, limited)
}

func TestRateLimitExpires(t *testing.T) {
	g, store := testGuard(t, time.Minute)

	require.NoError(t, store.TouchRateLimit("alice", time.Now().UTC().Add(-2*time.Minute)))

	limited, err := g.IsRateLimited("alice")
	require.NoError(t, err)
	assert.False(t, limited)

	wait, err := g.TimeUntilNext("alice")
	require.NoError(t, err)
	assert.Zero(t, wait)
}

func TestQuotaUsesGuildLimit(t *testing.T) {
	g, store := testGuard(t, time.Minute)
	require.NoError(t, store.SaveGuildConfig(&types.GuildConfig{GuildID: "g1", TicketLimit: 2}))

	for n := 1; n <= 2; n++ {
		allowed, count, limit, err := g.CheckQuota("g1", "alice")
		require.NoError(t, err)
		assert.True(t, allowed)
		assert.Equal(t, n-1, count)
		assert.Equal(t, 2, limit)

		require.NoError(t, store.CreateTicket(&types.Ticket{
			GuildID:   "g1",
			ChannelID: fmt.Sprintf("chan-%d", n),
			CreatorID: "alice",
			Category:  "General",
			CreatedAt: time.Now().UTC(),
		}))
	}

	allowed, count, limit, err := g.CheckQuota("g1", "alice")
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, 2, count)
	assert.Equal(t, 2, limit)

	// Closing a ticket frees quota again.
	require.NoError(t, store.CloseTicket("chan-1", time.Now().UTC()))
	allowed, _, _, err = g.CheckQuota("g1", "alice")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestQuotaDefaultsWithoutConfig(t *testing.T) {
	g, _ := testGuard(t, time.Minute)

	allowed, _, limit, err := g.CheckQuota("g1", "alice")
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, types.DefaultTicketLimit, limit)
}

func TestQuotaIgnoresOutOfRangeConfig(t *testing.T) {
	g, store := testGuard(t, time.Minute)
	require.NoError(t, store.SaveGuildConfig(&types.GuildConfig{GuildID: "g1", TicketLimit: 99}))

	_, _, limit, err := g.CheckQuota("g1", "alice")
	require.NoError(t, err)
	assert.Equal(t, types.DefaultTicketLimit, limit)
}
