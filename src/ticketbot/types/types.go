package types

import "time"

// Guild configuration, one row per guild. Rows are never hard-deleted;
// the maintenance flag disables ticket creation instead.
type GuildConfig struct {
	GuildID          string `gorm:"primaryKey;size:32"`
	PanelChannelID   string `gorm:"size:32"`
	SupportRoleID    string `gorm:"size:32"`
	TicketCategoryID string `gorm:"size:32"`
	LogChannelID     string `gorm:"size:32"`
	PingRoleID       string `gorm:"size:32"`
	TicketLimit      int    `gorm:"default:3"`
	PanelType        string `gorm:"size:16;default:dropdown"`
	EmbedTitle       string `gorm:"size:256"`
	EmbedDescription string `gorm:"type:text"`
	EmbedColor       int    `gorm:"default:54527"`
	EmbedFooter      string `gorm:"size:256"`
	EmbedImageURL    string `gorm:"size:512"`
	Maintenance      bool   `gorm:"default:false"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Ticket categories offered on the panel
type TicketCategory struct {
	ID      uint   `gorm:"primaryKey"`
	GuildID string `gorm:"size:32;uniqueIndex:idx_guild_category;not null"`
	Name    string `gorm:"size:100;uniqueIndex:idx_guild_category;not null"`
	Emoji   string `gorm:"size:64"`
}

// Ticket instances. The channel ID is unique and immutable after creation;
// the per-guild number is never reused. Category is a string snapshot so
// removing a category leaves existing tickets untouched.
type Ticket struct {
	ID             uint64 `gorm:"primaryKey"`
	GuildID        string `gorm:"size:32;index;not null"`
	ChannelID      string `gorm:"size:32;uniqueIndex;not null"`
	CreatorID      string `gorm:"size:32;index;not null"`
	Number         int    `gorm:"not null"`
	Category       string `gorm:"size:100"`
	Subject        string `gorm:"size:256"`
	Description    string `gorm:"type:text"`
	Priority       string `gorm:"size:16;default:Medium"`
	Status         string `gorm:"size:16;default:open;index"`
	ClaimedBy      string `gorm:"size:32"` // empty = unclaimed
	PanelMessageID string `gorm:"size:32"` // control panel message in the ticket channel
	CreatedAt      time.Time
	ClosedAt       *time.Time
}

// Per-user creation cooldown markers
type RateLimit struct {
	UserID       string `gorm:"primaryKey;size:32"`
	LastTicketAt time.Time
}

// Satisfaction ratings, at most one per (guild, ticket, rater)
type TicketRating struct {
	ID           uint64 `gorm:"primaryKey"`
	GuildID      string `gorm:"size:32;uniqueIndex:idx_rating_once;not null"`
	TicketNumber int    `gorm:"uniqueIndex:idx_rating_once;not null"`
	UserID       string `gorm:"size:32;uniqueIndex:idx_rating_once;not null"`
	Rating       int    `gorm:"not null"`
	Feedback     string `gorm:"type:text"`
	StaffName    string `gorm:"size:100"`
	CreatedAt    time.Time
}

// Users barred from creating tickets. Existing tickets are unaffected.
type BlacklistEntry struct {
	ID      uint   `gorm:"primaryKey"`
	GuildID string `gorm:"size:32;uniqueIndex:idx_guild_blacklist;not null"`
	UserID  string `gorm:"size:32;uniqueIndex:idx_guild_blacklist;not null"`
}

// Additional support roles beyond the primary one in GuildConfig
type SupportRole struct {
	ID      uint   `gorm:"primaryKey"`
	GuildID string `gorm:"size:32;uniqueIndex:idx_guild_support_role;not null"`
	RoleID  string `gorm:"size:32;uniqueIndex:idx_guild_support_role;not null"`
}

const (
	StatusOpen   = "open"
	StatusClosed = "closed"
)

const (
	PriorityLow      = "Low"
	PriorityMedium   = "Medium"
	PriorityHigh     = "High"
	PriorityCritical = "Critical"
)

const (
	PanelDropdown = "dropdown"
	PanelButton   = "button"
)

// MaxCategoriesPerGuild matches the 25-option cap on a Discord select menu.
const MaxCategoriesPerGuild = 25

const (
	MinTicketLimit     = 1
	MaxTicketLimit     = 10
	DefaultTicketLimit = 3
)

var priorityEmojis = map[string]string{
	PriorityLow:      "🟢",
	PriorityMedium:   "🟡",
	PriorityHigh:     "🟠",
	PriorityCritical: "🔴",
}

var priorityColors = map[string]int{
	PriorityLow:      0x00FF00,
	PriorityMedium:   0xFFFF00,
	PriorityHigh:     0xFF8C00,
	PriorityCritical: 0xFF0000,
}

// ValidPriority reports whether p is one of the four priority levels.
func ValidPriority(p string) bool {
	_, ok := priorityEmojis[p]
	return ok
}

// PriorityEmoji returns the marker for a priority, defaulting to Medium's.
func PriorityEmoji(p string) string {
	if e, ok := priorityEmojis[p]; ok {
		return e
	}
	return priorityEmojis[PriorityMedium]
}

// PriorityColor returns the embed color for a priority.
func PriorityColor(p string) int {
	if c, ok := priorityColors[p]; ok {
		return c
	}
	return priorityColors[PriorityMedium]
}

// AllPriorityEmojis lists every marker, used when stripping an old marker
// off a channel name before prepending the new one.
func AllPriorityEmojis() []string {
	return []string{
		priorityEmojis[PriorityLow],
		priorityEmojis[PriorityMedium],
		priorityEmojis[PriorityHigh],
		priorityEmojis[PriorityCritical],
	}
}
