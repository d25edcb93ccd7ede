package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/codexdev/ticketbot/src/ticketbot/data"
	ticketdiscord "github.com/codexdev/ticketbot/src/ticketbot/discord"
	"github.com/codexdev/ticketbot/src/ticketbot/types"
)

func (h *Handler) cmdAddCategory(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	opts := optionMap(i)
	name := opts["name"].StringValue()
	emoji := ""
	if opt, ok := opts["emoji"]; ok {
		emoji = opt.StringValue()
	}

	err := h.panels.AddCategory(i.GuildID, name, emoji)
	switch {
	case errors.Is(err, data.ErrDuplicateCategory):
		return ticketdiscord.RespondEphemeral(s, i.Interaction,
			fmt.Sprintf("A category named **%s** already exists.", name))
	case errors.Is(err, data.ErrCategoryLimit):
		return ticketdiscord.RespondEphemeral(s, i.Interaction,
			fmt.Sprintf("This server already has the maximum of %d categories.", types.MaxCategoriesPerGuild))
	case err != nil:
		return err
	}
	return ticketdiscord.RespondEphemeralEmbed(s, i.Interaction,
		ticketdiscord.SuccessEmbed("Category Added",
			fmt.Sprintf("**%s** is now available on the panel. Re-run `/send-panel` to refresh it.", name)))
}

func (h *Handler) cmdRemoveCategory(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	opts := optionMap(i)
	name := opts["name"].StringValue()
	removed, err := h.panels.RemoveCategory(i.GuildID, name)
	if err != nil {
		return err
	}
	if !removed {
		return ticketdiscord.RespondEphemeral(s, i.Interaction,
			fmt.Sprintf("No category named **%s** exists.", name))
	}
	return ticketdiscord.RespondEphemeralEmbed(s, i.Interaction,
		ticketdiscord.SuccessEmbed("Category Removed",
			fmt.Sprintf("**%s** was removed. Re-run `/send-panel` to refresh the panel.", name)))
}

func (h *Handler) cmdListCategories(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	categories, err := h.panels.Categories(i.GuildID)
	if err != nil {
		return err
	}
	if len(categories) == 0 {
		return ticketdiscord.RespondEphemeral(s, i.Interaction,
			"No categories configured. Add one with `/add-category`.")
	}
	var b strings.Builder
	for _, c := range categories {
		fmt.Fprintf(&b, "%s **%s**\n", c.Emoji, c.Name)
	}
	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🎫 Ticket Categories (%d/%d)", len(categories), types.MaxCategoriesPerGuild),
		Description: b.String(),
		Color:       ticketdiscord.ColorDefault,
	}
	return ticketdiscord.RespondEphemeralEmbed(s, i.Interaction, embed)
}

func (h *Handler) cmdResetCategories(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	dropped, err := h.panels.ResetCategories(i.GuildID)
	if err != nil {
		return err
	}
	return ticketdiscord.RespondEphemeralEmbed(s, i.Interaction,
		ticketdiscord.SuccessEmbed("Categories Reset",
			fmt.Sprintf("Removed %d categories.", dropped)))
}

func (h *Handler) cmdSendPanel(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	cfg, err := h.store.GuildConfig(i.GuildID)
	if err != nil {
		return err
	}
	if cfg == nil {
		return ticketdiscord.RespondEphemeral(s, i.Interaction,
			"The ticket system is not configured yet. Run `/setup-tickets` first.")
	}
	if _, err := h.panels.Publish(s, cfg); err != nil {
		return ticketdiscord.RespondEphemeral(s, i.Interaction,
			fmt.Sprintf("Could not post the panel: %v", err))
	}
	return ticketdiscord.RespondEphemeralEmbed(s, i.Interaction,
		ticketdiscord.SuccessEmbed("Panel Posted",
			fmt.Sprintf("The ticket panel is live in %s.", ticketdiscord.ChannelMention(cfg.PanelChannelID))))
}

func (h *Handler) cmdPanelType(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	opts := optionMap(i)
	panelType := opts["type"].StringValue()
	if err := h.store.SetPanelType(i.GuildID, panelType); err != nil {
		return err
	}
	return ticketdiscord.RespondEphemeralEmbed(s, i.Interaction,
		ticketdiscord.SuccessEmbed("Panel Type Updated",
			fmt.Sprintf("The panel now uses **%s** style. Re-run `/send-panel` to apply it.", panelType)))
}

func (h *Handler) cmdSetLimit(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	opts := optionMap(i)
	limit := int(opts["limit"].IntValue())
	if limit < types.MinTicketLimit || limit > types.MaxTicketLimit {
		return ticketdiscord.RespondEphemeral(s, i.Interaction,
			fmt.Sprintf("The limit must be between %d and %d.", types.MinTicketLimit, types.MaxTicketLimit))
	}
	if err := h.store.SetTicketLimit(i.GuildID, limit); err != nil {
		return err
	}
	return ticketdiscord.RespondEphemeralEmbed(s, i.Interaction,
		ticketdiscord.SuccessEmbed("Limit Updated",
			fmt.Sprintf("Users may now have up to **%d** open tickets.", limit)))
}

func (h *Handler) cmdMaintenanceMode(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	enabled, err := h.store.ToggleMaintenance(i.GuildID)
	if err != nil {
		return err
	}
	if enabled {
		return ticketdiscord.RespondEphemeralEmbed(s, i.Interaction,
			ticketdiscord.SuccessEmbed("Maintenance Enabled",
				"Ticket creation is paused. Existing tickets are unaffected."))
	}
	return ticketdiscord.RespondEphemeralEmbed(s, i.Interaction,
		ticketdiscord.SuccessEmbed("Maintenance Disabled", "Ticket creation is open again."))
}

func (h *Handler) cmdBlacklistUser(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	opts := optionMap(i)
	target := opts["user"].UserValue(s)
	if target == nil {
		return ticketdiscord.RespondEphemeral(s, i.Interaction, "Could not resolve that user.")
	}
	added, err := h.store.AddBlacklist(i.GuildID, target.ID)
	if err != nil {
		return err
	}
	if !added {
		return ticketdiscord.RespondEphemeral(s, i.Interaction,
			fmt.Sprintf("%s is already blacklisted.", ticketdiscord.UserMention(target.ID)))
	}
	return ticketdiscord.RespondEphemeralEmbed(s, i.Interaction,
		ticketdiscord.SuccessEmbed("User Blacklisted",
			fmt.Sprintf("%s can no longer create tickets.", ticketdiscord.UserMention(target.ID))))
}

func (h *Handler) cmdBlacklistRemoveUser(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	opts := optionMap(i)
	target := opts["user"].UserValue(s)
	if target == nil {
		return ticketdiscord.RespondEphemeral(s, i.Interaction, "Could not resolve that user.")
	}
	removed, err := h.store.RemoveBlacklist(i.GuildID, target.ID)
	if err != nil {
		return err
	}
	if !removed {
		return ticketdiscord.RespondEphemeral(s, i.Interaction,
			fmt.Sprintf("%s is not blacklisted.", ticketdiscord.UserMention(target.ID)))
	}
	return ticketdiscord.RespondEphemeralEmbed(s, i.Interaction,
		ticketdiscord.SuccessEmbed("User Unblacklisted",
			fmt.Sprintf("%s can create tickets again.", ticketdiscord.UserMention(target.ID))))
}

func (h *Handler) cmdBlacklistList(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	entries, err := h.store.Blacklist(i.GuildID)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return ticketdiscord.RespondEphemeral(s, i.Interaction, "The blacklist is empty.")
	}
	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "%s\n", ticketdiscord.UserMention(e.UserID))
	}
	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🚫 Blacklisted Users (%d)", len(entries)),
		Description: b.String(),
		Color:       ticketdiscord.ColorError,
	}
	return ticketdiscord.RespondEphemeralEmbed(s, i.Interaction, embed)
}

func (h *Handler) cmdSupportRoleAdd(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	opts := optionMap(i)
	role := opts["role"].RoleValue(s, i.GuildID)
	if role == nil {
		return ticketdiscord.RespondEphemeral(s, i.Interaction, "Could not resolve that role.")
	}
	added, err := h.store.AddSupportRole(i.GuildID, role.ID)
	if err != nil {
		return err
	}
	if !added {
		return ticketdiscord.RespondEphemeral(s, i.Interaction,
			fmt.Sprintf("%s already has support access.", ticketdiscord.RoleMention(role.ID)))
	}
	return ticketdiscord.RespondEphemeralEmbed(s, i.Interaction,
		ticketdiscord.SuccessEmbed("Support Role Added",
			fmt.Sprintf("%s now has support access to tickets.", ticketdiscord.RoleMention(role.ID))))
}

func (h *Handler) cmdSupportRoleRemove(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	opts := optionMap(i)
	role := opts["role"].RoleValue(s, i.GuildID)
	if role == nil {
		return ticketdiscord.RespondEphemeral(s, i.Interaction, "Could not resolve that role.")
	}
	removed, err := h.store.RemoveSupportRole(i.GuildID, role.ID)
	if err != nil {
		return err
	}
	if !removed {
		return ticketdiscord.RespondEphemeral(s, i.Interaction,
			fmt.Sprintf("%s does not have support access.", ticketdiscord.RoleMention(role.ID)))
	}
	return ticketdiscord.RespondEphemeralEmbed(s, i.Interaction,
		ticketdiscord.SuccessEmbed("Support Role Removed",
			fmt.Sprintf("%s no longer has support access.", ticketdiscord.RoleMention(role.ID))))
}

func (h *Handler) cmdSupportRoleList(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	cfg, err := h.store.GuildConfig(i.GuildID)
	if err != nil {
		return err
	}
	extra, err := h.store.SupportRoles(i.GuildID)
	if err != nil {
		return err
	}

	var b strings.Builder
	if cfg != nil && cfg.SupportRoleID != "" {
		fmt.Fprintf(&b, "%s (primary)\n", ticketdiscord.RoleMention(cfg.SupportRoleID))
	}
	for _, roleID := range extra {
		fmt.Fprintf(&b, "%s\n", ticketdiscord.RoleMention(roleID))
	}
	if b.Len() == 0 {
		return ticketdiscord.RespondEphemeral(s, i.Interaction,
			"No support roles configured. Run `/setup-tickets` or `/support-role-add`.")
	}
	embed := &discordgo.MessageEmbed{
		Title:       "🛡️ Support Roles",
		Description: b.String(),
		Color:       ticketdiscord.ColorDefault,
	}
	return ticketdiscord.RespondEphemeralEmbed(s, i.Interaction, embed)
}

func (h *Handler) cmdAnnounce(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	opts := optionMap(i)
	channel := opts["channel"].ChannelValue(s)
	if channel == nil {
		return ticketdiscord.RespondEphemeral(s, i.Interaction, "Could not resolve that channel.")
	}
	title := opts["title"].StringValue()
	message := opts["message"].StringValue()

	embed := &discordgo.MessageEmbed{
		Title:       "📢 " + title,
		Description: message,
		Color:       ticketdiscord.ColorDefault,
		Footer:      &discordgo.MessageEmbedFooter{Text: "Announcement"},
	}
	if _, err := s.ChannelMessageSendEmbed(channel.ID, embed); err != nil {
		return fmt.Errorf("send announcement: %w", err)
	}
	return ticketdiscord.RespondEphemeralEmbed(s, i.Interaction,
		ticketdiscord.SuccessEmbed("Announcement Sent",
			fmt.Sprintf("Posted to %s.", ticketdiscord.ChannelMention(channel.ID))))
}
