package data

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/codexdev/ticketbot/src/ticketbot/types"
)

var (
	ErrDuplicateCategory = errors.New("category already exists")
	ErrCategoryLimit     = errors.New("category limit reached")
	ErrDuplicateRating   = errors.New("rating already submitted")
)

// Store exposes typed accessors over the relational schema. Absence is
// reported as a nil result, never as an error.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB returns the underlying handle for callers that need raw access,
// such as the stats webserver.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// --- guild configuration ---

func (s *Store) GuildConfig(guildID string) (*types.GuildConfig, error) {
	var cfg types.GuildConfig
	err := s.db.First(&cfg, "guild_id = ?", guildID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (s *Store) SaveGuildConfig(cfg *types.GuildConfig) error {
	return s.db.Save(cfg).Error
}

func (s *Store) SetTicketLimit(guildID string, limit int) error {
	return s.db.Model(&types.GuildConfig{}).
		Where("guild_id = ?", guildID).
		Update("ticket_limit", limit).Error
}

func (s *Store) SetPanelType(guildID, panelType string) error {
	return s.db.Model(&types.GuildConfig{}).
		Where("guild_id = ?", guildID).
		Update("panel_type", panelType).Error
}

// ToggleMaintenance flips the maintenance flag and returns the new value.
func (s *Store) ToggleMaintenance(guildID string) (bool, error) {
	cfg, err := s.GuildConfig(guildID)
	if err != nil {
		return false, err
	}
	if cfg == nil {
		return false, gorm.ErrRecordNotFound
	}
	cfg.Maintenance = !cfg.Maintenance
	if err := s.db.Save(cfg).Error; err != nil {
		return false, err
	}
	return cfg.Maintenance, nil
}

// --- categories ---

func (s *Store) Categories(guildID string) ([]types.TicketCategory, error) {
	var cats []types.TicketCategory
	err := s.db.Where("guild_id = ?", guildID).Order("name").Find(&cats).Error
	return cats, err
}

func (s *Store) Category(guildID, name string) (*types.TicketCategory, error) {
	var cat types.TicketCategory
	err := s.db.First(&cat, "guild_id = ? AND name = ?", guildID, name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cat, nil
}

func (s *Store) AddCategory(guildID, name, emoji string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&types.TicketCategory{}).
			Where("guild_id = ? AND name = ?", guildID, name).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicateCategory
		}
		if err := tx.Model(&types.TicketCategory{}).
			Where("guild_id = ?", guildID).
			Count(&count).Error; err != nil {
			return err
		}
		if count >= types.MaxCategoriesPerGuild {
			return ErrCategoryLimit
		}
		return tx.Create(&types.TicketCategory{
			GuildID: guildID,
			Name:    name,
			Emoji:   emoji,
		}).Error
	})
}

// RemoveCategory deletes a category and reports whether it existed.
// Existing tickets keep their category label as a string snapshot.
func (s *Store) RemoveCategory(guildID, name string) (bool, error) {
	res := s.db.Where("guild_id = ? AND name = ?", guildID, name).
		Delete(&types.TicketCategory{})
	return res.RowsAffected > 0, res.Error
}

func (s *Store) ResetCategories(guildID string) (int64, error) {
	res := s.db.Where("guild_id = ?", guildID).Delete(&types.TicketCategory{})
	return res.RowsAffected, res.Error
}

// --- tickets ---

// CreateTicket allocates the next per-guild ticket number and inserts the
// row in one transaction. The unique channel_id constraint is the hard
// backstop against double insertion.
func (s *Store) CreateTicket(t *types.Ticket) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var next int
		if err := tx.Model(&types.Ticket{}).
			Where("guild_id = ?", t.GuildID).
			Select("COALESCE(MAX(number), 0) + 1").
			Scan(&next).Error; err != nil {
			return err
		}
		t.Number = next
		if t.Priority == "" {
			t.Priority = types.PriorityMedium
		}
		t.Status = types.StatusOpen
		return tx.Create(t).Error
	})
}

// NextTicketNumber is a read-only peek at the number the next ticket
// would receive. CreateTicket allocates the authoritative number inside
// its transaction; under concurrency the peek may be stale.
func (s *Store) NextTicketNumber(guildID string) (int, error) {
	var next int
	err := s.db.Model(&types.Ticket{}).
		Where("guild_id = ?", guildID).
		Select("COALESCE(MAX(number), 0) + 1").
		Scan(&next).Error
	return next, err
}

func (s *Store) TicketByChannel(channelID string) (*types.Ticket, error) {
	var t types.Ticket
	err := s.db.First(&t, "channel_id = ?", channelID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Store) TicketByNumber(guildID string, number int) (*types.Ticket, error) {
	var t types.Ticket
	err := s.db.First(&t, "guild_id = ? AND number = ?", guildID, number).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Store) OpenTicketCount(guildID, userID string) (int64, error) {
	var count int64
	err := s.db.Model(&types.Ticket{}).
		Where("guild_id = ? AND creator_id = ? AND status = ?", guildID, userID, types.StatusOpen).
		Count(&count).Error
	return count, err
}

func (s *Store) OpenTickets(guildID string) ([]types.Ticket, error) {
	var tickets []types.Ticket
	err := s.db.Where("guild_id = ? AND status = ?", guildID, types.StatusOpen).
		Order("number").Find(&tickets).Error
	return tickets, err
}

func (s *Store) UserTickets(guildID, userID string) ([]types.Ticket, error) {
	var tickets []types.Ticket
	err := s.db.Where("guild_id = ? AND creator_id = ?", guildID, userID).
		Order("created_at DESC").Find(&tickets).Error
	return tickets, err
}

type ClaimOutcome int

const (
	// ClaimWon: the conditional update matched and the actor is now the claimant.
	ClaimWon ClaimOutcome = iota
	// ClaimAlreadyYours: the actor re-claimed their own ticket (idempotent).
	ClaimAlreadyYours
	// ClaimLost: another actor holds the claim; holder is returned alongside.
	ClaimLost
)

// ClaimTicket arbitrates concurrent claims with a single conditional
// update: only the caller whose update matches an unclaimed row wins.
// The affected-row count is the sole arbitration mechanism.
func (s *Store) ClaimTicket(channelID, actorID string) (ClaimOutcome, string, error) {
	res := s.db.Model(&types.Ticket{}).
		Where("channel_id = ? AND claimed_by = '' AND status = ?", channelID, types.StatusOpen).
		Update("claimed_by", actorID)
	if res.Error != nil {
		return ClaimLost, "", res.Error
	}
	if res.RowsAffected == 1 {
		return ClaimWon, actorID, nil
	}
	t, err := s.TicketByChannel(channelID)
	if err != nil || t == nil {
		return ClaimLost, "", err
	}
	if t.ClaimedBy == actorID {
		return ClaimAlreadyYours, actorID, nil
	}
	return ClaimLost, t.ClaimedBy, nil
}

// SetClaimant reassigns the claim unconditionally; used by transfer.
func (s *Store) SetClaimant(channelID, actorID string) error {
	return s.db.Model(&types.Ticket{}).
		Where("channel_id = ?", channelID).
		Update("claimed_by", actorID).Error
}

func (s *Store) SetPriority(channelID, priority string) error {
	return s.db.Model(&types.Ticket{}).
		Where("channel_id = ?", channelID).
		Update("priority", priority).Error
}

func (s *Store) SetPanelMessageID(channelID, messageID string) error {
	return s.db.Model(&types.Ticket{}).
		Where("channel_id = ?", channelID).
		Update("panel_message_id", messageID).Error
}

// CloseTicket marks the ticket closed. Status only ever moves open->closed.
func (s *Store) CloseTicket(channelID string, at time.Time) error {
	return s.db.Model(&types.Ticket{}).
		Where("channel_id = ? AND status = ?", channelID, types.StatusOpen).
		Updates(map[string]interface{}{
			"status":    types.StatusClosed,
			"closed_at": at,
		}).Error
}

type GuildTicketStats struct {
	Total      int64
	Open       int64
	Closed     int64
	Categories int64
}

func (s *Store) TicketStats(guildID string) (GuildTicketStats, error) {
	var stats GuildTicketStats
	if err := s.db.Model(&types.Ticket{}).
		Where("guild_id = ?", guildID).Count(&stats.Total).Error; err != nil {
		return stats, err
	}
	if err := s.db.Model(&types.Ticket{}).
		Where("guild_id = ? AND status = ?", guildID, types.StatusOpen).
		Count(&stats.Open).Error; err != nil {
		return stats, err
	}
	stats.Closed = stats.Total - stats.Open
	err := s.db.Model(&types.TicketCategory{}).
		Where("guild_id = ?", guildID).Count(&stats.Categories).Error
	return stats, err
}

// --- rate limits ---

func (s *Store) LastTicketAt(userID string) (time.Time, bool, error) {
	var rl types.RateLimit
	err := s.db.First(&rl, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return rl.LastTicketAt, true, nil
}

func (s *Store) TouchRateLimit(userID string, at time.Time) error {
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_ticket_at"}),
	}).Create(&types.RateLimit{UserID: userID, LastTicketAt: at}).Error
}

// --- ratings ---

func (s *Store) Rating(guildID string, ticketNumber int, userID string) (*types.TicketRating, error) {
	var r types.TicketRating
	err := s.db.First(&r, "guild_id = ? AND ticket_number = ? AND user_id = ?",
		guildID, ticketNumber, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// InsertRating stores a rating, refusing a second row for the same
// (guild, ticket, rater). The unique index backs this up at the schema level.
func (s *Store) InsertRating(r *types.TicketRating) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&types.TicketRating{}).
			Where("guild_id = ? AND ticket_number = ? AND user_id = ?",
				r.GuildID, r.TicketNumber, r.UserID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicateRating
		}
		return tx.Create(r).Error
	})
}

type RatingStats struct {
	Average float64
	Count   int64
}

// RatingStatsSince aggregates ratings submitted at or after the cutoff.
func (s *Store) RatingStatsSince(guildID string, since time.Time) (RatingStats, error) {
	var stats RatingStats
	row := struct {
		Avg   float64
		Total int64
	}{}
	err := s.db.Model(&types.TicketRating{}).
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS total").
		Where("guild_id = ? AND created_at >= ?", guildID, since).
		Scan(&row).Error
	if err != nil {
		return stats, err
	}
	stats.Average = row.Avg
	stats.Count = row.Total
	return stats, nil
}

// --- blacklist ---

func (s *Store) IsBlacklisted(guildID, userID string) (bool, error) {
	var count int64
	err := s.db.Model(&types.BlacklistEntry{}).
		Where("guild_id = ? AND user_id = ?", guildID, userID).
		Count(&count).Error
	return count > 0, err
}

func (s *Store) AddBlacklist(guildID, userID string) (bool, error) {
	blacklisted, err := s.IsBlacklisted(guildID, userID)
	if err != nil || blacklisted {
		return false, err
	}
	err = s.db.Create(&types.BlacklistEntry{GuildID: guildID, UserID: userID}).Error
	return err == nil, err
}

func (s *Store) RemoveBlacklist(guildID, userID string) (bool, error) {
	res := s.db.Where("guild_id = ? AND user_id = ?", guildID, userID).
		Delete(&types.BlacklistEntry{})
	return res.RowsAffected > 0, res.Error
}

func (s *Store) Blacklist(guildID string) ([]types.BlacklistEntry, error) {
	var entries []types.BlacklistEntry
	err := s.db.Where("guild_id = ?", guildID).Find(&entries).Error
	return entries, err
}

// --- additional support roles ---

func (s *Store) SupportRoles(guildID string) ([]string, error) {
	var roles []types.SupportRole
	if err := s.db.Where("guild_id = ?", guildID).Find(&roles).Error; err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(roles))
	for _, r := range roles {
		ids = append(ids, r.RoleID)
	}
	return ids, nil
}

func (s *Store) AddSupportRole(guildID, roleID string) (bool, error) {
	var count int64
	if err := s.db.Model(&types.SupportRole{}).
		Where("guild_id = ? AND role_id = ?", guildID, roleID).
		Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	err := s.db.Create(&types.SupportRole{GuildID: guildID, RoleID: roleID}).Error
	return err == nil, err
}

func (s *Store) RemoveSupportRole(guildID, roleID string) (bool, error) {
	res := s.db.Where("guild_id = ? AND role_id = ?", guildID, roleID).
		Delete(&types.SupportRole{})
	return res.RowsAffected > 0, res.Error
}
