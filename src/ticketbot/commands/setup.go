package commands

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/codexdev/ticketbot/src/ticketbot/components/lifecycle"
	ticketdiscord "github.com/codexdev/ticketbot/src/ticketbot/discord"
)

// Setup wizard component IDs. The wizard walks an admin through the
// required channels and roles with select menus, one step per message
// edit, backed by an expiring session.
const (
	setupPrefix           = "setup_"
	setupPanelChannelID   = "setup_panel_channel"
	setupSupportRoleID    = "setup_support_role"
	setupTicketCategoryID = "setup_ticket_category"
	setupLogChannelID     = "setup_log_channel"
	setupPingRoleID       = "setup_ping_role"
	setupSkipPingID       = "setup_skip_ping"
)

func (h *Handler) cmdSetupTickets(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	if i.GuildID == "" {
		return ticketdiscord.RespondEphemeral(s, i.Interaction, "This command only works in a server.")
	}
	user := interactionUser(i)
	h.sessions.Begin(i.GuildID, user.ID, i.ChannelID)

	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{setupStepEmbed(1, "Panel Channel", "Select the channel where the ticket panel will be posted.")},
			Components: channelSelectRow(setupPanelChannelID, "Select the panel channel...", discordgo.ChannelTypeGuildText),
			Flags:      discordgo.MessageFlagsEphemeral,
		},
	})
}

// componentSetupStep advances the wizard one step per select interaction.
func (h *Handler) componentSetupStep(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	user := interactionUser(i)
	session := h.sessions.Get(i.GuildID, user.ID)
	if session == nil {
		return respondUpdate(s, i,
			ticketdiscord.ErrorEmbed("Setup Expired", "This setup session has expired. Run `/setup-tickets` to start over."),
			nil)
	}

	data := i.MessageComponentData()
	value := ""
	if len(data.Values) > 0 {
		value = data.Values[0]
	}

	switch data.CustomID {
	case setupPanelChannelID:
		session.Config.PanelChannelID = value
		session.Step = lifecycle.StepSupportRole
		h.sessions.Touch(i.GuildID)
		return respondUpdate(s, i,
			setupStepEmbed(2, "Support Role", "Select the role whose members handle tickets."),
			roleSelectRow(setupSupportRoleID, "Select the support role..."))

	case setupSupportRoleID:
		session.Config.SupportRoleID = value
		session.Step = lifecycle.StepTicketCategory
		h.sessions.Touch(i.GuildID)
		return respondUpdate(s, i,
			setupStepEmbed(3, "Ticket Category", "Select the category under which ticket channels will be created."),
			channelSelectRow(setupTicketCategoryID, "Select the ticket category...", discordgo.ChannelTypeGuildCategory))

	case setupTicketCategoryID:
		session.Config.TicketCategoryID = value
		session.Step = lifecycle.StepLogChannel
		h.sessions.Touch(i.GuildID)
		return respondUpdate(s, i,
			setupStepEmbed(4, "Log Channel", "Select the channel for ticket logs and transcripts."),
			channelSelectRow(setupLogChannelID, "Select the log channel...", discordgo.ChannelTypeGuildText))

	case setupLogChannelID:
		session.Config.LogChannelID = value
		session.Step = lifecycle.StepPingRole
		h.sessions.Touch(i.GuildID)
		components := roleSelectRow(setupPingRoleID, "Select the ping role...")
		components = append(components, discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{Label: "Skip", Style: discordgo.SecondaryButton, CustomID: setupSkipPingID},
			},
		})
		return respondUpdate(s, i,
			setupStepEmbed(5, "Ping Role (optional)", "Select a role to ping when a new ticket opens, or skip."),
			components)

	case setupPingRoleID, setupSkipPingID:
		if data.CustomID == setupPingRoleID {
			session.Config.PingRoleID = value
		}
		return h.finishSetup(s, i, session)
	}
	return nil
}

func (h *Handler) finishSetup(s *discordgo.Session, i *discordgo.InteractionCreate, session *lifecycle.SetupSession) error {
	cfg := session.Config
	if err := h.store.SaveGuildConfig(&cfg); err != nil {
		return fmt.Errorf("save guild config: %w", err)
	}
	h.sessions.End(i.GuildID)

	summary := fmt.Sprintf(
		"**Panel channel:** %s\n**Support role:** %s\n**Ticket category:** <#%s>\n**Log channel:** %s\n",
		ticketdiscord.ChannelMention(cfg.PanelChannelID),
		ticketdiscord.RoleMention(cfg.SupportRoleID),
		cfg.TicketCategoryID,
		ticketdiscord.ChannelMention(cfg.LogChannelID))
	if cfg.PingRoleID != "" {
		summary += fmt.Sprintf("**Ping role:** %s\n", ticketdiscord.RoleMention(cfg.PingRoleID))
	}
	summary += "\nAdd categories with `/add-category`, then post the panel with `/send-panel`."

	return respondUpdate(s, i, ticketdiscord.SuccessEmbed("Setup Complete", summary), nil)
}

func setupStepEmbed(step int, title, description string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🛠️ Ticket Setup - Step %d of 5", step),
		Description: fmt.Sprintf("**%s**\n\n%s", title, description),
		Color:       ticketdiscord.ColorDefault,
		Footer:      &discordgo.MessageEmbedFooter{Text: "Setup expires after 10 minutes of inactivity"},
	}
}

func channelSelectRow(customID, placeholder string, channelType discordgo.ChannelType) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.SelectMenu{
					MenuType:     discordgo.ChannelSelectMenu,
					CustomID:     customID,
					Placeholder:  placeholder,
					ChannelTypes: []discordgo.ChannelType{channelType},
				},
			},
		},
	}
}

func roleSelectRow(customID, placeholder string) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.SelectMenu{
					MenuType:    discordgo.RoleSelectMenu,
					CustomID:    customID,
					Placeholder: placeholder,
				},
			},
		},
	}
}

func respondUpdate(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed, components []discordgo.MessageComponent) error {
	if components == nil {
		components = []discordgo.MessageComponent{}
	}
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{embed},
			Components: components,
		},
	})
}
