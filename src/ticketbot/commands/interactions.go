package commands

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/codexdev/ticketbot/src/ticketbot/components/lifecycle"
	"github.com/codexdev/ticketbot/src/ticketbot/components/rating"
	"github.com/codexdev/ticketbot/src/ticketbot/data"
	ticketdiscord "github.com/codexdev/ticketbot/src/ticketbot/discord"
	"github.com/codexdev/ticketbot/src/ticketbot/types"
)

const (
	subjectInputID     = "ticket_subject"
	descriptionInputID = "ticket_description"
	feedbackInputID    = "rating_feedback"
)

// --- ticket creation ---

func (h *Handler) componentPanelSelect(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	pick := i.MessageComponentData()
	if len(pick.Values) == 0 {
		return nil
	}
	return h.openCreateModal(s, i, pick.Values[0])
}

func (h *Handler) componentPanelButton(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	category := strings.TrimPrefix(i.MessageComponentData().CustomID, ticketdiscord.PanelButtonPrefix)
	return h.openCreateModal(s, i, category)
}

// openCreateModal collects subject and description before any guard
// checks run; the modal submit is where creation actually starts.
func (h *Handler) openCreateModal(s *discordgo.Session, i *discordgo.InteractionCreate, category string) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: ticketdiscord.CreateModalPrefix + category,
			Title:    fmt.Sprintf("New %s Ticket", category),
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.TextInput{
							CustomID:    subjectInputID,
							Label:       "Subject",
							Style:       discordgo.TextInputShort,
							Placeholder: "Brief summary of your issue",
							Required:    true,
							MaxLength:   200,
						},
					},
				},
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.TextInput{
							CustomID:    descriptionInputID,
							Label:       "Description",
							Style:       discordgo.TextInputParagraph,
							Placeholder: "Describe your issue in detail",
							Required:    true,
							MaxLength:   2000,
						},
					},
				},
			},
		},
	})
}

func (h *Handler) modalCreateTicket(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	if err := deferEphemeral(s, i); err != nil {
		return err
	}

	submit := i.ModalSubmitData()
	category := strings.TrimPrefix(submit.CustomID, ticketdiscord.CreateModalPrefix)
	user := interactionUser(i)

	result, err := h.manager.Create(h.ctx, s, lifecycle.CreateRequest{
		GuildID:       i.GuildID,
		RequesterID:   user.ID,
		RequesterName: displayName(user),
		Category:      category,
		Subject:       modalInputValue(submit, subjectInputID),
		Description:   modalInputValue(submit, descriptionInputID),
		Priority:      types.PriorityMedium,
	})
	if err != nil {
		return err
	}
	if result.Rejection != nil {
		return followupEphemeral(s, i, result.Rejection.Message())
	}
	return followupEphemeralEmbed(s, i,
		ticketdiscord.SuccessEmbed("Ticket Created",
			fmt.Sprintf("Your ticket is ready: %s", ticketdiscord.ChannelMention(result.ChannelID))))
}

// --- control panel ---

func (h *Handler) componentClaim(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	return h.doClaim(s, i)
}

func (h *Handler) componentCloseRequest(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	return h.doCloseRequest(s, i)
}

func (h *Handler) componentPrioritySelect(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	pick := i.MessageComponentData()
	if len(pick.Values) == 0 {
		return nil
	}
	return h.doPriority(s, i, pick.Values[0])
}

// --- rating ---

func (h *Handler) componentRatingSelect(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	pick := i.MessageComponentData()
	if len(pick.Values) == 0 {
		return nil
	}
	guildID, number, ok := parseRatingID(pick.CustomID, ticketdiscord.RatingSelectPrefix)
	if !ok {
		return fmt.Errorf("malformed rating select id %q", pick.CustomID)
	}
	stars, err := strconv.Atoi(pick.Values[0])
	if err != nil {
		return fmt.Errorf("malformed rating value %q", pick.Values[0])
	}

	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: fmt.Sprintf("%s%s:%d:%d", ticketdiscord.RatingModalPrefix, guildID, number, stars),
			Title:    "Feedback (optional)",
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.TextInput{
							CustomID:    feedbackInputID,
							Label:       "Tell us more about your experience",
							Style:       discordgo.TextInputParagraph,
							Placeholder: "What went well? What could we improve?",
							Required:    false,
							MaxLength:   1000,
						},
					},
				},
			},
		},
	})
}

func (h *Handler) modalRatingFeedback(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	submit := i.ModalSubmitData()
	parts := strings.Split(strings.TrimPrefix(submit.CustomID, ticketdiscord.RatingModalPrefix), ":")
	if len(parts) != 3 {
		return fmt.Errorf("malformed rating modal id %q", submit.CustomID)
	}
	guildID := parts[0]
	number, err := strconv.Atoi(parts[1])
	if err != nil {
		return fmt.Errorf("malformed ticket number %q", parts[1])
	}
	stars, err := strconv.Atoi(parts[2])
	if err != nil {
		return fmt.Errorf("malformed rating %q", parts[2])
	}

	user := interactionUser(i)
	row, err := h.ratings.Submit(h.ctx, rating.SubmitRequest{
		GuildID:      guildID,
		TicketNumber: number,
		RaterID:      user.ID,
		Rating:       stars,
		Feedback:     modalInputValue(submit, feedbackInputID),
	})
	switch {
	case errors.Is(err, rating.ErrNotCreator):
		return ticketdiscord.RespondEphemeral(s, i.Interaction, "Only the ticket creator can rate this ticket.")
	case errors.Is(err, rating.ErrInvalidRating):
		return ticketdiscord.RespondEphemeral(s, i.Interaction, "Ratings must be between 1 and 5 stars.")
	case errors.Is(err, data.ErrDuplicateRating):
		return ticketdiscord.RespondEphemeral(s, i.Interaction, "You already rated this ticket. Thank you!")
	case err != nil:
		return err
	}

	if cfg, cfgErr := h.store.GuildConfig(guildID); cfgErr == nil {
		// Already recorded; the log post is decoration.
		if logErr := h.ratings.LogSubmission(s, cfg, row, displayName(user)); logErr != nil {
			log.Printf("post rating log for ticket #%04d: %v", number, logErr)
		}
	}

	// The modal came from the prompt message's select, so an update
	// response lands on the prompt itself. Clearing the components
	// keeps the creator from rating twice.
	return respondUpdate(s, i,
		ticketdiscord.SuccessEmbed("Thank You!",
			fmt.Sprintf("Your %d star rating for ticket #%04d was recorded.", stars, number)), nil)
}

func parseRatingID(customID, prefix string) (guildID string, number int, ok bool) {
	parts := strings.Split(strings.TrimPrefix(customID, prefix), ":")
	if len(parts) != 2 {
		return "", 0, false
	}
	number, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", 0, false
	}
	return parts[0], number, true
}

// --- log channel extras ---

func (h *Handler) componentAuthorLookup(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	userID := strings.TrimPrefix(i.MessageComponentData().CustomID, ticketdiscord.AuthorLookupPrefix)

	// The creator may have left the guild, or deleted the account
	// entirely; show the richest variant still resolvable.
	actor := ticketdiscord.ResolveActor(s, i.GuildID, userID)

	status := "In server"
	switch actor.Kind {
	case ticketdiscord.ActorUser:
		status = "Left the server"
	case ticketdiscord.ActorUnknown:
		status = "Account not found"
	}

	created, _ := discordgo.SnowflakeTimestamp(actor.ID)
	embed := &discordgo.MessageEmbed{
		Title: "👤 Ticket Creator",
		Color: ticketdiscord.ColorDefault,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "User", Value: fmt.Sprintf("%s (%s)", actor.Name(), actor.ID), Inline: true},
			{Name: "Status", Value: status, Inline: true},
			{Name: "Account Created", Value: fmt.Sprintf("<t:%d:R>", created.Unix()), Inline: true},
		},
	}
	if actor.AvatarURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: actor.AvatarURL}
	}
	return ticketdiscord.RespondEphemeralEmbed(s, i.Interaction, embed)
}
