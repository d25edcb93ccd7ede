package discord

import (
	"fmt"
	"log"
	"runtime/debug"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
)

// RespondEphemeral answers an interaction with a message only the actor sees.
func RespondEphemeral(s *discordgo.Session, i *discordgo.Interaction, content string) error {
	return s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}

func RespondEphemeralEmbed(s *discordgo.Session, i *discordgo.Interaction, embed *discordgo.MessageEmbed) error {
	return s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
}

func RespondEmbed(s *discordgo.Session, i *discordgo.Interaction, embed *discordgo.MessageEmbed) error {
	return s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
		},
	})
}

func RespondMessage(s *discordgo.Session, i *discordgo.Interaction, content string) error {
	return s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: content},
	})
}

// HandlerFunc is an interaction handler that may fail.
type HandlerFunc func(s *discordgo.Session, i *discordgo.InteractionCreate) error

// Guarded wraps a handler with the fault boundary: panics and errors are
// caught, logged under a correlation id, and the actor gets a generic
// message carrying that id. A single action's failure never crashes the
// process.
func Guarded(name string, h HandlerFunc) func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	return func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		defer func() {
			if r := recover(); r != nil {
				id := uuid.NewString()
				log.Printf("[%s] panic in handler %s: %v\n%s", id, name, r, debug.Stack())
				replyFault(s, i, id)
			}
		}()
		if err := h(s, i); err != nil {
			id := uuid.NewString()
			log.Printf("[%s] handler %s: %v", id, name, err)
			replyFault(s, i, id)
		}
	}
}

func replyFault(s *discordgo.Session, i *discordgo.InteractionCreate, correlationID string) {
	content := fmt.Sprintf("An unexpected error occurred. Please try again or contact an administrator (error id `%s`).", correlationID)
	if err := RespondEphemeral(s, i.Interaction, content); err != nil {
		// The response may already be committed; fall back to a followup.
		_, _ = s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		})
	}
}
