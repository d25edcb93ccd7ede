// Package rating captures one-shot satisfaction ratings after closure.
// The storage layer enforces uniqueness per (guild, ticket, rater); this
// service additionally blocks a second interactive submission so the
// prompt behaves idempotently from the user's point of view.
package rating

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/codexdev/ticketbot/src/ticketbot/components/events"
	"github.com/codexdev/ticketbot/src/ticketbot/data"
	ticketdiscord "github.com/codexdev/ticketbot/src/ticketbot/discord"
	"github.com/codexdev/ticketbot/src/ticketbot/types"
)

var (
	ErrNotCreator    = errors.New("only the ticket creator can rate")
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
)

// Sender is the slice of the session API needed for prompt delivery.
type Sender interface {
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Poster is the slice of the session API needed for log-channel posts.
type Poster interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

type Service struct {
	store  *data.Store
	events *events.Publisher
}

func New(store *data.Store, publisher *events.Publisher) *Service {
	return &Service{store: store, events: publisher}
}

func (s *Service) AlreadyRated(guildID string, ticketNumber int, userID string) (bool, error) {
	r, err := s.store.Rating(guildID, ticketNumber, userID)
	return r != nil, err
}

// Request delivers the interactive rating prompt by DM. It is skipped
// when a rating already exists. The ticket channel is gone by the time
// this runs, so the prompt lives entirely in the DM.
func (s *Service) Request(ctx context.Context, sender Sender, guildID, userID string, ticketNumber int, closerName string) (bool, error) {
	rated, err := s.AlreadyRated(guildID, ticketNumber, userID)
	if err != nil {
		return false, err
	}
	if rated {
		return false, nil
	}

	dm, err := sender.UserChannelCreate(userID)
	if err != nil {
		return false, fmt.Errorf("open dm channel: %w", err)
	}
	msg := &discordgo.MessageSend{
		Embed:      buildPromptEmbed(ticketNumber, closerName),
		Components: PromptComponents(guildID, ticketNumber),
	}
	if _, err := sender.ChannelMessageSendComplex(dm.ID, msg); err != nil {
		return false, err
	}

	s.events.Publish(ctx, events.RatingRequested, map[string]interface{}{
		"guild_id": guildID,
		"user_id":  userID,
		"number":   ticketNumber,
	})
	return true, nil
}

type SubmitRequest struct {
	GuildID      string
	TicketNumber int
	RaterID      string
	Rating       int
	Feedback     string
	StaffName    string
}

// Submit validates and stores a rating. The rater must be the ticket
// creator and must not have rated before; the unique index is the
// storage-level backstop for the latter.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*types.TicketRating, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, ErrInvalidRating
	}
	ticket, err := s.store.TicketByNumber(req.GuildID, req.TicketNumber)
	if err != nil {
		return nil, err
	}
	if ticket == nil || ticket.CreatorID != req.RaterID {
		return nil, ErrNotCreator
	}

	row := &types.TicketRating{
		GuildID:      req.GuildID,
		TicketNumber: req.TicketNumber,
		UserID:       req.RaterID,
		Rating:       req.Rating,
		Feedback:     req.Feedback,
		StaffName:    req.StaffName,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.InsertRating(row); err != nil {
		return nil, err
	}

	s.events.Publish(ctx, events.RatingSubmitted, map[string]interface{}{
		"guild_id": req.GuildID,
		"number":   req.TicketNumber,
		"rating":   req.Rating,
	})
	return row, nil
}

// LogSubmission posts the rating with a rolling 30-day aggregate to the
// guild's log channel. Best-effort.
func (s *Service) LogSubmission(poster Poster, cfg *types.GuildConfig, r *types.TicketRating, raterName string) error {
	if cfg == nil || cfg.LogChannelID == "" {
		return nil
	}
	stats, err := s.store.RatingStatsSince(r.GuildID, time.Now().UTC().AddDate(0, 0, -30))
	if err != nil {
		return err
	}

	stars := strings.Repeat("⭐", r.Rating)
	description := fmt.Sprintf(
		"**A customer has rated their support experience**\n\n"+
			"**Rating:** %s (%d/5 stars)\n**Ticket:** #%04d\n**Customer:** %s (%s)",
		stars, r.Rating, r.TicketNumber, raterName, r.UserID)

	embed := ticketdiscord.BuildLogEmbed("⭐ Support Rating Received", description, ratingColor(r.Rating))
	if r.StaffName != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "👤 Staff Recognition",
			Value:  r.StaffName,
			Inline: true,
		})
	}
	if r.Feedback != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "💬 Customer Feedback",
			Value: fmt.Sprintf("*%q*", r.Feedback),
		})
	}
	if stats.Count > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "📊 Rating Statistics (Last 30 Days)",
			Value: fmt.Sprintf("**Average Rating:** %.1f/5.0\n**Total Ratings:** %d", stats.Average, stats.Count),
		})
	}

	_, err = poster.ChannelMessageSendEmbed(cfg.LogChannelID, embed)
	return err
}

func ratingColor(rating int) int {
	colors := map[int]int{1: 0xFF4444, 2: 0xFF8800, 3: 0xFFDD00, 4: 0x88DD00, 5: 0x00DD00}
	if c, ok := colors[rating]; ok {
		return c
	}
	return ticketdiscord.ColorDefault
}

func buildPromptEmbed(ticketNumber int, closerName string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: "⭐ Rate Your Support Experience",
		Description: fmt.Sprintf(
			"**Your ticket #%04d has been closed.**\n\n"+
				"We'd love to hear about your experience with our support team.\n\n"+
				"**Closed by:** %s\n\n**Please select your rating below:**",
			ticketNumber, closerName),
		Color:  ticketdiscord.ColorDefault,
		Footer: &discordgo.MessageEmbedFooter{Text: "Support System • Your Opinion Matters"},
	}
}

// PromptComponents builds the 1-5 select for the rating DM. The custom
// ID carries guild and ticket number since the DM has no guild context.
func PromptComponents(guildID string, ticketNumber int) []discordgo.MessageComponent {
	labels := []string{"Poor", "Fair", "Good", "Very Good", "Excellent"}
	options := make([]discordgo.SelectMenuOption, 0, 5)
	for n := 1; n <= 5; n++ {
		options = append(options, discordgo.SelectMenuOption{
			Label:       fmt.Sprintf("%d Star%s - %s", n, plural(n), labels[n-1]),
			Value:       fmt.Sprintf("%d", n),
			Emoji:       &discordgo.ComponentEmoji{Name: "⭐"},
			Description: fmt.Sprintf("Rate your experience %d out of 5", n),
		})
	}
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.SelectMenu{
					MenuType:    discordgo.StringSelectMenu,
					CustomID:    fmt.Sprintf("%s%s:%d", ticketdiscord.RatingSelectPrefix, guildID, ticketNumber),
					Placeholder: "⭐ Rate your support experience...",
					Options:     options,
				},
			},
		},
	}
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
