// Package guard gates ticket creation with a per-user cooldown and a
// per-guild open-ticket quota. Both checks are advisory reads followed by
// a write elsewhere; a user firing two near-simultaneous creation requests
// can exceed the quota by one. That drift is bounded and accepted.
package guard

import (
	"time"

	"github.com/codexdev/ticketbot/src/ticketbot/data"
	"github.com/codexdev/ticketbot/src/ticketbot/types"
)

const DefaultCooldown = 60 * time.Second

type Guard struct {
	store    *data.Store
	cooldown time.Duration
}

func New(store *data.Store, cooldown time.Duration) *Guard {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Guard{store: store, cooldown: cooldown}
}

// IsRateLimited reports whether the user created a ticket within the
// cooldown window. Errors fail open: creation is not blocked by a broken
// rate-limit read.
func (g *Guard) IsRateLimited(userID string) (bool, error) {
	last, ok, err := g.store.LastTicketAt(userID)
	if err != nil || !ok {
		return false, err
	}
	return time.Since(last) < g.cooldown, nil
}

// TimeUntilNext returns how long the user must wait before creating
// another ticket, zero when not limited.
func (g *Guard) TimeUntilNext(userID string) (time.Duration, error) {
	last, ok, err := g.store.LastTicketAt(userID)
	if err != nil || !ok {
		return 0, err
	}
	elapsed := time.Since(last)
	if elapsed >= g.cooldown {
		return 0, nil
	}
	return g.cooldown - elapsed, nil
}

func (g *Guard) RecordTicketCreated(userID string) error {
	return g.store.TouchRateLimit(userID, time.Now().UTC())
}

// CheckQuota compares the user's open-ticket count against the guild's
// configured limit (default 3 when the guild has no config row).
func (g *Guard) CheckQuota(guildID, userID string) (allowed bool, count int, limit int, err error) {
	limit = types.DefaultTicketLimit
	cfg, err := g.store.GuildConfig(guildID)
	if err != nil {
		return false, 0, limit, err
	}
	if cfg != nil && cfg.TicketLimit >= types.MinTicketLimit && cfg.TicketLimit <= types.MaxTicketLimit {
		limit = cfg.TicketLimit
	}
	open, err := g.store.OpenTicketCount(guildID, userID)
	if err != nil {
		return false, 0, limit, err
	}
	return int(open) < limit, int(open), limit, nil
}
