package discord

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/codexdev/ticketbot/src/ticketbot/types"
)

const (
	ColorDefault = 0x00D4FF
	ColorSuccess = 0x00FF88
	ColorError   = 0xFF6B6B
	ColorWarning = 0xFF8C00
)

func ErrorEmbed(title, description string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "❌ " + title,
		Description: description,
		Color:       ColorError,
	}
}

func SuccessEmbed(title, description string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "✅ " + title,
		Description: description,
		Color:       ColorDefault,
	}
}

// Component custom IDs shared between message builders and the
// interaction router.
const (
	PanelSelectID      = "ticket_panel_select"
	PanelButtonPrefix  = "ticket_panel_button:"
	CreateModalPrefix  = "ticket_create_modal:"
	ControlClaimID     = "ticket_claim"
	ControlCloseID     = "ticket_close"
	ControlPriorityID  = "ticket_priority_select"
	CloseConfirmID     = "ticket_close_confirm"
	CloseCancelID      = "ticket_close_cancel"
	RatingSelectPrefix = "rating_select:"
	RatingModalPrefix  = "rating_modal:"
	AuthorLookupPrefix = "author_lookup:"
)

// BuildControlMessage renders the in-channel control panel for a ticket:
// the metadata embed plus claim/close buttons and the priority selector.
func BuildControlMessage(t *types.Ticket, creatorMention string) *discordgo.MessageSend {
	description := fmt.Sprintf(
		"**Welcome to your support ticket, %s!**\n\n"+
			"Our support team has been notified and will assist you shortly.\n"+
			"Please provide any additional details about your issue below.",
		creatorMention)

	desc := t.Description
	if len(desc) > 1000 {
		desc = desc[:1000] + "..."
	}

	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🎫 Ticket #%04d", t.Number),
		Description: description,
		Color:       types.PriorityColor(t.Priority),
		Fields: []*discordgo.MessageEmbedField{
			{
				Name: "📋 Ticket Information",
				Value: fmt.Sprintf("**Category:** %s\n**Subject:** %s\n**Priority:** %s %s",
					t.Category, t.Subject, types.PriorityEmoji(t.Priority), t.Priority),
				Inline: true,
			},
			{
				Name:   "💡 Description",
				Value:  desc,
				Inline: false,
			},
		},
		Footer:    &discordgo.MessageEmbedFooter{Text: "Support System • Ticket Management"},
		Timestamp: t.CreatedAt.UTC().Format(time.RFC3339),
	}

	return &discordgo.MessageSend{
		Embed:      embed,
		Components: ControlComponents(),
	}
}

// ControlComponents builds the interactive controls under the ticket
// control embed.
func ControlComponents() []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Claim",
					Style:    discordgo.PrimaryButton,
					CustomID: ControlClaimID,
					Emoji:    &discordgo.ComponentEmoji{Name: "🎫"},
				},
				discordgo.Button{
					Label:    "Close",
					Style:    discordgo.DangerButton,
					CustomID: ControlCloseID,
					Emoji:    &discordgo.ComponentEmoji{Name: "🔒"},
				},
			},
		},
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.SelectMenu{
					MenuType:    discordgo.StringSelectMenu,
					CustomID:    ControlPriorityID,
					Placeholder: "Change priority level...",
					Options: []discordgo.SelectMenuOption{
						{Label: "Low Priority", Value: types.PriorityLow, Emoji: &discordgo.ComponentEmoji{Name: "🟢"}, Description: "Minor issue"},
						{Label: "Medium Priority", Value: types.PriorityMedium, Emoji: &discordgo.ComponentEmoji{Name: "🟡"}, Description: "Standard priority"},
						{Label: "High Priority", Value: types.PriorityHigh, Emoji: &discordgo.ComponentEmoji{Name: "🟠"}, Description: "Urgent issue"},
						{Label: "Critical Priority", Value: types.PriorityCritical, Emoji: &discordgo.ComponentEmoji{Name: "🔴"}, Description: "Blocking issue"},
					},
				},
			},
		},
	}
}

// BuildLogEmbed renders a log-channel entry in the house style.
func BuildLogEmbed(title, description string, color int) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       color,
		Footer:      &discordgo.MessageEmbedFooter{Text: "Support System"},
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}
}

func RoleMention(roleID string) string {
	return fmt.Sprintf("<@&%s>", roleID)
}

func ChannelMention(channelID string) string {
	return fmt.Sprintf("<#%s>", channelID)
}

func UserMention(userID string) string {
	return fmt.Sprintf("<@%s>", userID)
}
