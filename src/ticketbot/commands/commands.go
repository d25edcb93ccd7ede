// Package commands defines the slash-command surface and routes
// interactions to the ticket components.
package commands

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/codexdev/ticketbot/src/ticketbot/types"
)

var (
	adminPerms   int64 = discordgo.PermissionManageServer
	supportPerms int64 = discordgo.PermissionSendMessages
)

func priorityChoices() []*discordgo.ApplicationCommandOptionChoice {
	return []*discordgo.ApplicationCommandOptionChoice{
		{Name: "🟢 Low", Value: types.PriorityLow},
		{Name: "🟡 Medium", Value: types.PriorityMedium},
		{Name: "🟠 High", Value: types.PriorityHigh},
		{Name: "🔴 Critical", Value: types.PriorityCritical},
	}
}

// Definitions returns every application command the bot registers.
func Definitions() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:                     "setup-tickets",
			Description:              "Start the guided ticket system setup",
			DefaultMemberPermissions: &adminPerms,
		},
		{
			Name:                     "add-category",
			Description:              "Add a ticket category to the panel",
			DefaultMemberPermissions: &adminPerms,
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "name", Description: "Category name", Required: true},
				{Type: discordgo.ApplicationCommandOptionString, Name: "emoji", Description: "Category emoji (defaults to 🎫)"},
			},
		},
		{
			Name:                     "remove-category",
			Description:              "Remove a ticket category",
			DefaultMemberPermissions: &adminPerms,
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "name", Description: "Category name", Required: true},
			},
		},
		{
			Name:        "list-categories",
			Description: "List the configured ticket categories",
		},
		{
			Name:                     "reset-categories",
			Description:              "Remove every ticket category",
			DefaultMemberPermissions: &adminPerms,
		},
		{
			Name:                     "send-panel",
			Description:              "Post the ticket panel to the configured channel",
			DefaultMemberPermissions: &adminPerms,
		},
		{
			Name:                     "panel-type",
			Description:              "Switch the panel between dropdown and buttons",
			DefaultMemberPermissions: &adminPerms,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type: discordgo.ApplicationCommandOptionString, Name: "type", Description: "Panel style", Required: true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "Dropdown", Value: types.PanelDropdown},
						{Name: "Buttons", Value: types.PanelButton},
					},
				},
			},
		},
		{
			Name:                     "claim",
			Description:              "Claim the current ticket",
			DefaultMemberPermissions: &supportPerms,
		},
		{
			Name:        "close",
			Description: "Close the current ticket",
		},
		{
			Name:                     "transfer-ticket",
			Description:              "Transfer this ticket to another staff member",
			DefaultMemberPermissions: &supportPerms,
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionUser, Name: "staff", Description: "Staff member to transfer to", Required: true},
			},
		},
		{
			Name:                     "priority",
			Description:              "Change this ticket's priority",
			DefaultMemberPermissions: &supportPerms,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type: discordgo.ApplicationCommandOptionString, Name: "level", Description: "New priority", Required: true,
					Choices: priorityChoices(),
				},
			},
		},
		{
			Name:                     "rename",
			Description:              "Rename this ticket channel",
			DefaultMemberPermissions: &supportPerms,
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "name", Description: "New channel name", Required: true},
			},
		},
		{
			Name:                     "add-user",
			Description:              "Add a user to this ticket",
			DefaultMemberPermissions: &supportPerms,
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "User to add", Required: true},
			},
		},
		{
			Name:                     "remove-user",
			Description:              "Remove a user from this ticket",
			DefaultMemberPermissions: &supportPerms,
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "User to remove", Required: true},
			},
		},
		{
			Name:        "ticket-info",
			Description: "Show details about the current ticket",
		},
		{
			Name:        "ticket-stats",
			Description: "Show ticket statistics for this server",
		},
		{
			Name:                     "set-limit",
			Description:              "Set how many open tickets a user may have",
			DefaultMemberPermissions: &adminPerms,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type: discordgo.ApplicationCommandOptionInteger, Name: "limit",
					Description: fmt.Sprintf("Open tickets per user (%d-%d)", types.MinTicketLimit, types.MaxTicketLimit),
					Required:    true,
				},
			},
		},
		{
			Name:                     "maintenance-mode",
			Description:              "Toggle ticket creation on or off",
			DefaultMemberPermissions: &adminPerms,
		},
		{
			Name:                     "blacklist-user",
			Description:              "Block a user from creating tickets",
			DefaultMemberPermissions: &adminPerms,
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "User to blacklist", Required: true},
			},
		},
		{
			Name:                     "blacklist-remove-user",
			Description:              "Allow a blacklisted user to create tickets again",
			DefaultMemberPermissions: &adminPerms,
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "User to remove from the blacklist", Required: true},
			},
		},
		{
			Name:                     "blacklist-list",
			Description:              "List blacklisted users",
			DefaultMemberPermissions: &adminPerms,
		},
		{
			Name:                     "support-role-add",
			Description:              "Grant a role support access",
			DefaultMemberPermissions: &adminPerms,
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionRole, Name: "role", Description: "Role to grant support access", Required: true},
			},
		},
		{
			Name:                     "support-role-remove",
			Description:              "Revoke a role's support access",
			DefaultMemberPermissions: &adminPerms,
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionRole, Name: "role", Description: "Role to revoke", Required: true},
			},
		},
		{
			Name:                     "support-role-list",
			Description:              "List roles with support access",
			DefaultMemberPermissions: &adminPerms,
		},
		{
			Name:                     "announce",
			Description:              "Post an announcement embed to a channel",
			DefaultMemberPermissions: &adminPerms,
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionChannel, Name: "channel", Description: "Target channel", Required: true},
				{Type: discordgo.ApplicationCommandOptionString, Name: "title", Description: "Announcement title", Required: true},
				{Type: discordgo.ApplicationCommandOptionString, Name: "message", Description: "Announcement body", Required: true},
			},
		},
	}
}

// Register overwrites the guild's (or global, when guildID is empty)
// application commands with the current definitions.
func Register(s *discordgo.Session, appID, guildID string) error {
	_, err := s.ApplicationCommandBulkOverwrite(appID, guildID, Definitions())
	if err != nil {
		return fmt.Errorf("register application commands: %w", err)
	}
	return nil
}
