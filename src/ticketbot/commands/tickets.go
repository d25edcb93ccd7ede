package commands

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/codexdev/ticketbot/src/ticketbot/components/lifecycle"
	"github.com/codexdev/ticketbot/src/ticketbot/data"
	ticketdiscord "github.com/codexdev/ticketbot/src/ticketbot/discord"
	"github.com/codexdev/ticketbot/src/ticketbot/types"
)

func (h *Handler) cmdClaim(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	return h.doClaim(s, i)
}

// doClaim backs both the /claim command and the control-panel button.
func (h *Handler) doClaim(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	result, err := h.manager.Claim(h.ctx, s, i.GuildID, i.ChannelID, i.Member)
	if err != nil {
		return err
	}
	if result.Rejection != nil {
		// Losers of a claim race get the holder named in the message.
		return ticketdiscord.RespondEphemeral(s, i.Interaction, result.Rejection.Message())
	}
	if result.Outcome == data.ClaimWon {
		return ticketdiscord.RespondEphemeral(s, i.Interaction,
			fmt.Sprintf("You claimed ticket #%04d.", result.Ticket.Number))
	}
	return ticketdiscord.RespondEphemeral(s, i.Interaction, "You already claimed this ticket.")
}

func (h *Handler) cmdClose(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	return h.doCloseRequest(s, i)
}

// doCloseRequest shows the confirmation round-trip; nothing is touched
// until the actor confirms.
func (h *Handler) doCloseRequest(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	ticket, err := h.store.TicketByChannel(i.ChannelID)
	if err != nil {
		return err
	}
	if ticket == nil || ticket.Status != types.StatusOpen {
		reject := &lifecycle.Rejection{Reason: lifecycle.RejectNotTicketChannel}
		return ticketdiscord.RespondEphemeral(s, i.Interaction, reject.Message())
	}

	embed := &discordgo.MessageEmbed{
		Title: "🔒 Close Ticket?",
		Description: fmt.Sprintf(
			"Are you sure you want to close ticket `#%04d`?\n\nThe channel will be deleted and a transcript sent to the creator.",
			ticket.Number),
		Color: ticketdiscord.ColorWarning,
	}
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.Button{Label: "Close Ticket", Style: discordgo.DangerButton, CustomID: ticketdiscord.CloseConfirmID, Emoji: &discordgo.ComponentEmoji{Name: "🔒"}},
						discordgo.Button{Label: "Cancel", Style: discordgo.SecondaryButton, CustomID: ticketdiscord.CloseCancelID},
					},
				},
			},
			Flags: discordgo.MessageFlagsEphemeral,
		},
	})
}

func (h *Handler) componentCloseConfirm(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	}); err != nil {
		return err
	}

	user := interactionUser(i)
	result, err := h.manager.Close(h.ctx, s, lifecycle.CloseRequest{
		GuildID:   i.GuildID,
		ChannelID: i.ChannelID,
		ActorID:   user.ID,
		ActorName: displayName(user),
	})
	if err != nil {
		return err
	}
	if result.Rejection != nil {
		return followupEphemeral(s, i, result.Rejection.Message())
	}
	// The channel is usually gone by now; the followup only matters when
	// deletion failed.
	if result.DeleteFailed {
		return followupEphemeral(s, i,
			fmt.Sprintf("Ticket #%04d is closed, but the channel could not be deleted.", result.Ticket.Number))
	}
	return nil
}

func (h *Handler) componentCloseCancel(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	h.manager.CancelClose(h.ctx, i.GuildID, i.ChannelID)
	return respondUpdate(s, i,
		ticketdiscord.SuccessEmbed("Closure Cancelled", "This ticket stays open."), nil)
}

func (h *Handler) cmdTransfer(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	opts := optionMap(i)
	target := opts["staff"].UserValue(s)
	if target == nil {
		return ticketdiscord.RespondEphemeral(s, i.Interaction, "Could not resolve that user.")
	}

	result, err := h.manager.Transfer(h.ctx, s, i.GuildID, i.ChannelID, i.Member, target.ID)
	if err != nil {
		return err
	}
	if result.Rejection != nil {
		return ticketdiscord.RespondEphemeral(s, i.Interaction, result.Rejection.Message())
	}
	return ticketdiscord.RespondEphemeral(s, i.Interaction,
		fmt.Sprintf("Ticket #%04d transferred to %s.", result.Ticket.Number, ticketdiscord.UserMention(target.ID)))
}

func (h *Handler) cmdPriority(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	opts := optionMap(i)
	return h.doPriority(s, i, opts["level"].StringValue())
}

// doPriority backs both the /priority command and the control-panel select.
func (h *Handler) doPriority(s *discordgo.Session, i *discordgo.InteractionCreate, level string) error {
	result, err := h.manager.SetPriority(h.ctx, s, i.GuildID, i.ChannelID, i.Member, level)
	if err != nil {
		return err
	}
	if result.Rejection != nil {
		return ticketdiscord.RespondEphemeral(s, i.Interaction, result.Rejection.Message())
	}
	return ticketdiscord.RespondEphemeral(s, i.Interaction,
		fmt.Sprintf("Priority set to %s %s.", types.PriorityEmoji(level), level))
}

func (h *Handler) cmdRename(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	opts := optionMap(i)
	result, finalName, err := h.manager.Rename(h.ctx, s, i.GuildID, i.ChannelID, i.Member, opts["name"].StringValue())
	if err != nil {
		return err
	}
	if result.Rejection != nil {
		return ticketdiscord.RespondEphemeral(s, i.Interaction, result.Rejection.Message())
	}
	return ticketdiscord.RespondEphemeral(s, i.Interaction,
		fmt.Sprintf("Channel renamed to `%s`.", finalName))
}

func (h *Handler) cmdAddUser(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	opts := optionMap(i)
	target := opts["user"].UserValue(s)
	if target == nil {
		return ticketdiscord.RespondEphemeral(s, i.Interaction, "Could not resolve that user.")
	}
	result, err := h.manager.AddUser(h.ctx, s, i.GuildID, i.ChannelID, i.Member, target.ID)
	if err != nil {
		return err
	}
	if result.Rejection != nil {
		return ticketdiscord.RespondEphemeral(s, i.Interaction, result.Rejection.Message())
	}
	return ticketdiscord.RespondEphemeral(s, i.Interaction,
		fmt.Sprintf("%s was added to this ticket.", ticketdiscord.UserMention(target.ID)))
}

func (h *Handler) cmdRemoveUser(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	opts := optionMap(i)
	target := opts["user"].UserValue(s)
	if target == nil {
		return ticketdiscord.RespondEphemeral(s, i.Interaction, "Could not resolve that user.")
	}
	result, err := h.manager.RemoveUser(h.ctx, s, i.GuildID, i.ChannelID, i.Member, target.ID)
	if err != nil {
		return err
	}
	if result.Rejection != nil {
		return ticketdiscord.RespondEphemeral(s, i.Interaction, result.Rejection.Message())
	}
	return ticketdiscord.RespondEphemeral(s, i.Interaction,
		fmt.Sprintf("%s was removed from this ticket.", ticketdiscord.UserMention(target.ID)))
}

func (h *Handler) cmdTicketInfo(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	ticket, err := h.store.TicketByChannel(i.ChannelID)
	if err != nil {
		return err
	}
	if ticket == nil {
		reject := &lifecycle.Rejection{Reason: lifecycle.RejectNotTicketChannel}
		return ticketdiscord.RespondEphemeral(s, i.Interaction, reject.Message())
	}

	claimed := "Unclaimed"
	if ticket.ClaimedBy != "" {
		claimed = ticketdiscord.UserMention(ticket.ClaimedBy)
	}
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("🎫 Ticket #%04d", ticket.Number),
		Color: types.PriorityColor(ticket.Priority),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Creator", Value: ticketdiscord.UserMention(ticket.CreatorID), Inline: true},
			{Name: "Category", Value: ticket.Category, Inline: true},
			{Name: "Priority", Value: fmt.Sprintf("%s %s", types.PriorityEmoji(ticket.Priority), ticket.Priority), Inline: true},
			{Name: "Status", Value: ticket.Status, Inline: true},
			{Name: "Claimed By", Value: claimed, Inline: true},
			{Name: "Created", Value: fmt.Sprintf("<t:%d:R>", ticket.CreatedAt.Unix()), Inline: true},
			{Name: "Subject", Value: ticket.Subject},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "Support System"},
	}
	return ticketdiscord.RespondEphemeralEmbed(s, i.Interaction, embed)
}

func (h *Handler) cmdTicketStats(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	stats, err := h.store.TicketStats(i.GuildID)
	if err != nil {
		return err
	}
	embed := &discordgo.MessageEmbed{
		Title: "📊 Ticket Statistics",
		Color: ticketdiscord.ColorDefault,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Total", Value: fmt.Sprintf("%d", stats.Total), Inline: true},
			{Name: "Open", Value: fmt.Sprintf("%d", stats.Open), Inline: true},
			{Name: "Closed", Value: fmt.Sprintf("%d", stats.Closed), Inline: true},
			{Name: "Categories", Value: fmt.Sprintf("%d", stats.Categories), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "Support System"},
	}
	return ticketdiscord.RespondEphemeralEmbed(s, i.Interaction, embed)
}
