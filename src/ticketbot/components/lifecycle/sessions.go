package lifecycle

import (
	"context"
	"sync"
	"time"

	"github.com/codexdev/ticketbot/src/ticketbot/types"
)

// SetupStep tracks progress through the guided configuration wizard.
type SetupStep int

const (
	StepPanelChannel SetupStep = iota
	StepSupportRole
	StepTicketCategory
	StepLogChannel
	StepPingRole
	StepDone
)

const DefaultSessionTTL = 10 * time.Minute

// SetupSession holds the partially collected configuration for one
// guild's in-flight setup wizard. One session per guild; a new wizard
// replaces any stale one.
type SetupSession struct {
	GuildID   string
	UserID    string
	ChannelID string
	Step      SetupStep
	Config    types.GuildConfig
	UpdatedAt time.Time
}

// SessionStore keeps wizard sessions in memory with a TTL so abandoned
// wizards do not accumulate or resume weeks later with stale channel
// references.
type SessionStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]*SetupSession
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionStore{
		ttl:      ttl,
		sessions: make(map[string]*SetupSession),
	}
}

// Begin starts (or restarts) a wizard session for the guild.
func (s *SessionStore) Begin(guildID, userID, channelID string) *SetupSession {
	session := &SetupSession{
		GuildID:   guildID,
		UserID:    userID,
		ChannelID: channelID,
		Step:      StepPanelChannel,
		Config:    types.GuildConfig{GuildID: guildID, TicketLimit: types.DefaultTicketLimit},
		UpdatedAt: time.Now(),
	}
	s.mu.Lock()
	s.sessions[guildID] = session
	s.mu.Unlock()
	return session
}

// Get returns the live session for the guild, or nil if none exists or
// the session has expired. Only the user who started the wizard may
// continue it; a mismatched user gets nil as well.
func (s *SessionStore) Get(guildID, userID string) *SetupSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[guildID]
	if !ok {
		return nil
	}
	if time.Since(session.UpdatedAt) > s.ttl {
		delete(s.sessions, guildID)
		return nil
	}
	if session.UserID != userID {
		return nil
	}
	return session
}

// Touch refreshes the session's expiry after a wizard step completes.
func (s *SessionStore) Touch(guildID string) {
	s.mu.Lock()
	if session, ok := s.sessions[guildID]; ok {
		session.UpdatedAt = time.Now()
	}
	s.mu.Unlock()
}

// End removes the session, typically after the final step persisted the
// configuration.
func (s *SessionStore) End(guildID string) {
	s.mu.Lock()
	delete(s.sessions, guildID)
	s.mu.Unlock()
}

// Len reports the number of live (possibly expired, not yet swept)
// sessions. Used by the stats endpoint.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// RunJanitor sweeps expired sessions until the context is cancelled.
func (s *SessionStore) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *SessionStore) sweep() {
	cutoff := time.Now().Add(-s.ttl)
	s.mu.Lock()
	for guildID, session := range s.sessions {
		if session.UpdatedAt.Before(cutoff) {
			delete(s.sessions, guildID)
		}
	}
	s.mu.Unlock()
}
