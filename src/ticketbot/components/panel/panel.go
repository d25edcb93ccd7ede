// Package panel manages the per-guild category registry and renders the
// public ticket panel in its dropdown and button variants.
package panel

import (
	"fmt"
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/codexdev/ticketbot/src/ticketbot/data"
	ticketdiscord "github.com/codexdev/ticketbot/src/ticketbot/discord"
	"github.com/codexdev/ticketbot/src/ticketbot/types"
)

const (
	defaultEmoji       = "🎫"
	defaultEmbedTitle  = "🎫 Support Tickets"
	defaultEmbedFooter = "Support System"
)

var defaultEmbedDescription = strings.Join([]string{
	"**Need help? Open a support ticket!**",
	"",
	"Select a category below and our team will assist you as soon as possible.",
}, "\n")

// Publisher is the slice of the session API needed to post panels.
type Publisher interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

type Service struct {
	store *data.Store
}

func New(store *data.Store) *Service {
	return &Service{store: store}
}

// --- category registry ---

// AddCategory registers a category for the guild. The name is trimmed;
// an empty emoji falls back to the house default.
func (s *Service) AddCategory(guildID, name, emoji string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("category name must not be empty")
	}
	if emoji == "" {
		emoji = defaultEmoji
	}
	return s.store.AddCategory(guildID, name, emoji)
}

func (s *Service) RemoveCategory(guildID, name string) (bool, error) {
	return s.store.RemoveCategory(guildID, strings.TrimSpace(name))
}

func (s *Service) Categories(guildID string) ([]types.TicketCategory, error) {
	return s.store.Categories(guildID)
}

// ResetCategories removes every category and returns how many were
// dropped.
func (s *Service) ResetCategories(guildID string) (int64, error) {
	return s.store.ResetCategories(guildID)
}

// --- panel rendering ---

// Publish posts the ticket panel to the guild's configured panel
// channel. The panel uses the configured embed styling with house
// defaults for unset fields, and renders either a category dropdown or
// one button per category depending on the configured panel type.
func (s *Service) Publish(p Publisher, cfg *types.GuildConfig) (*discordgo.Message, error) {
	if cfg == nil || cfg.PanelChannelID == "" {
		return nil, fmt.Errorf("panel channel not configured")
	}
	categories, err := s.store.Categories(cfg.GuildID)
	if err != nil {
		return nil, err
	}
	if len(categories) == 0 {
		return nil, fmt.Errorf("no ticket categories configured")
	}

	msg := &discordgo.MessageSend{
		Embed:      buildPanelEmbed(cfg),
		Components: PanelComponents(cfg.PanelType, categories),
	}
	sent, err := p.ChannelMessageSendComplex(cfg.PanelChannelID, msg)
	if err != nil {
		return nil, fmt.Errorf("post panel: %w", err)
	}
	log.Printf("published %s panel with %d categories to %s", panelType(cfg.PanelType), len(categories), cfg.PanelChannelID)
	return sent, nil
}

func buildPanelEmbed(cfg *types.GuildConfig) *discordgo.MessageEmbed {
	title := cfg.EmbedTitle
	if title == "" {
		title = defaultEmbedTitle
	}
	description := cfg.EmbedDescription
	if description == "" {
		description = defaultEmbedDescription
	}
	footer := cfg.EmbedFooter
	if footer == "" {
		footer = defaultEmbedFooter
	}
	color := cfg.EmbedColor
	if color == 0 {
		color = ticketdiscord.ColorDefault
	}

	embed := &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       color,
		Footer:      &discordgo.MessageEmbedFooter{Text: footer},
	}
	if cfg.EmbedImageURL != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: cfg.EmbedImageURL}
	}
	return embed
}

// PanelComponents renders the category pickers. Dropdown mode uses a
// single select; button mode lays out one button per category, five per
// row. The registry's 25-category cap keeps both within platform limits.
func PanelComponents(mode string, categories []types.TicketCategory) []discordgo.MessageComponent {
	if panelType(mode) == types.PanelButton {
		return buttonComponents(categories)
	}
	return dropdownComponents(categories)
}

func panelType(mode string) string {
	if mode == types.PanelButton {
		return types.PanelButton
	}
	return types.PanelDropdown
}

func dropdownComponents(categories []types.TicketCategory) []discordgo.MessageComponent {
	options := make([]discordgo.SelectMenuOption, 0, len(categories))
	for _, c := range categories {
		options = append(options, discordgo.SelectMenuOption{
			Label:       c.Name,
			Value:       c.Name,
			Emoji:       &discordgo.ComponentEmoji{Name: c.Emoji},
			Description: fmt.Sprintf("Open a %s ticket", strings.ToLower(c.Name)),
		})
	}
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.SelectMenu{
					MenuType:    discordgo.StringSelectMenu,
					CustomID:    ticketdiscord.PanelSelectID,
					Placeholder: "🎫 Select a category to open a ticket...",
					Options:     options,
				},
			},
		},
	}
}

func buttonComponents(categories []types.TicketCategory) []discordgo.MessageComponent {
	var rows []discordgo.MessageComponent
	var current []discordgo.MessageComponent
	for _, c := range categories {
		current = append(current, discordgo.Button{
			Label:    c.Name,
			Style:    discordgo.PrimaryButton,
			CustomID: ticketdiscord.PanelButtonPrefix + c.Name,
			Emoji:    &discordgo.ComponentEmoji{Name: c.Emoji},
		})
		if len(current) == 5 {
			rows = append(rows, discordgo.ActionsRow{Components: current})
			current = nil
		}
	}
	if len(current) > 0 {
		rows = append(rows, discordgo.ActionsRow{Components: current})
	}
	return rows
}
