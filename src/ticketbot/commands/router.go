package commands

import (
	"context"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/codexdev/ticketbot/src/ticketbot/components/lifecycle"
	"github.com/codexdev/ticketbot/src/ticketbot/components/panel"
	"github.com/codexdev/ticketbot/src/ticketbot/components/rating"
	"github.com/codexdev/ticketbot/src/ticketbot/data"
	ticketdiscord "github.com/codexdev/ticketbot/src/ticketbot/discord"
)

type Config struct {
	Store    *data.Store
	Manager  *lifecycle.Manager
	Panels   *panel.Service
	Ratings  *rating.Service
	Sessions *lifecycle.SessionStore
}

// Handler routes interaction events to the right component. One Handler
// serves every guild the bot is in.
type Handler struct {
	store    *data.Store
	manager  *lifecycle.Manager
	panels   *panel.Service
	ratings  *rating.Service
	sessions *lifecycle.SessionStore
	ctx      context.Context
}

func NewHandler(ctx context.Context, cfg Config) *Handler {
	return &Handler{
		store:    cfg.Store,
		manager:  cfg.Manager,
		panels:   cfg.Panels,
		ratings:  cfg.Ratings,
		sessions: cfg.Sessions,
		ctx:      ctx,
	}
}

// HandleInteraction is the single entry point registered on the session.
func (h *Handler) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		h.dispatchCommand(s, i)
	case discordgo.InteractionMessageComponent:
		h.dispatchComponent(s, i)
	case discordgo.InteractionModalSubmit:
		h.dispatchModal(s, i)
	}
}

func (h *Handler) dispatchCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	name := i.ApplicationCommandData().Name
	handlers := map[string]ticketdiscord.HandlerFunc{
		"setup-tickets":         h.cmdSetupTickets,
		"add-category":          h.cmdAddCategory,
		"remove-category":       h.cmdRemoveCategory,
		"list-categories":       h.cmdListCategories,
		"reset-categories":      h.cmdResetCategories,
		"send-panel":            h.cmdSendPanel,
		"panel-type":            h.cmdPanelType,
		"claim":                 h.cmdClaim,
		"close":                 h.cmdClose,
		"transfer-ticket":       h.cmdTransfer,
		"priority":              h.cmdPriority,
		"rename":                h.cmdRename,
		"add-user":              h.cmdAddUser,
		"remove-user":           h.cmdRemoveUser,
		"ticket-info":           h.cmdTicketInfo,
		"ticket-stats":          h.cmdTicketStats,
		"set-limit":             h.cmdSetLimit,
		"maintenance-mode":      h.cmdMaintenanceMode,
		"blacklist-user":        h.cmdBlacklistUser,
		"blacklist-remove-user": h.cmdBlacklistRemoveUser,
		"blacklist-list":        h.cmdBlacklistList,
		"support-role-add":      h.cmdSupportRoleAdd,
		"support-role-remove":   h.cmdSupportRoleRemove,
		"support-role-list":     h.cmdSupportRoleList,
		"announce":              h.cmdAnnounce,
	}
	if fn, ok := handlers[name]; ok {
		ticketdiscord.Guarded(name, fn)(s, i)
	}
}

func (h *Handler) dispatchComponent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	customID := i.MessageComponentData().CustomID
	var fn ticketdiscord.HandlerFunc
	switch {
	case customID == ticketdiscord.PanelSelectID:
		fn = h.componentPanelSelect
	case strings.HasPrefix(customID, ticketdiscord.PanelButtonPrefix):
		fn = h.componentPanelButton
	case customID == ticketdiscord.ControlClaimID:
		fn = h.componentClaim
	case customID == ticketdiscord.ControlCloseID:
		fn = h.componentCloseRequest
	case customID == ticketdiscord.ControlPriorityID:
		fn = h.componentPrioritySelect
	case customID == ticketdiscord.CloseConfirmID:
		fn = h.componentCloseConfirm
	case customID == ticketdiscord.CloseCancelID:
		fn = h.componentCloseCancel
	case strings.HasPrefix(customID, ticketdiscord.RatingSelectPrefix):
		fn = h.componentRatingSelect
	case strings.HasPrefix(customID, ticketdiscord.AuthorLookupPrefix):
		fn = h.componentAuthorLookup
	case strings.HasPrefix(customID, setupPrefix):
		fn = h.componentSetupStep
	default:
		return
	}
	ticketdiscord.Guarded("component:"+customID, fn)(s, i)
}

func (h *Handler) dispatchModal(s *discordgo.Session, i *discordgo.InteractionCreate) {
	customID := i.ModalSubmitData().CustomID
	var fn ticketdiscord.HandlerFunc
	switch {
	case strings.HasPrefix(customID, ticketdiscord.CreateModalPrefix):
		fn = h.modalCreateTicket
	case strings.HasPrefix(customID, ticketdiscord.RatingModalPrefix):
		fn = h.modalRatingFeedback
	default:
		return
	}
	ticketdiscord.Guarded("modal:"+customID, fn)(s, i)
}

// --- shared helpers ---

// interactionUser resolves the acting user for guild and DM interactions.
func interactionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

func displayName(u *discordgo.User) string {
	if u == nil {
		return "unknown"
	}
	if u.GlobalName != "" {
		return u.GlobalName
	}
	return u.Username
}

func optionMap(i *discordgo.InteractionCreate) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	options := i.ApplicationCommandData().Options
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		m[opt.Name] = opt
	}
	return m
}

func modalInputValue(data discordgo.ModalSubmitInteractionData, customID string) string {
	for _, row := range data.Components {
		actionsRow, ok := row.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, c := range actionsRow.Components {
			input, ok := c.(*discordgo.TextInput)
			if ok && input.CustomID == customID {
				return input.Value
			}
		}
	}
	return ""
}

// deferEphemeral acknowledges the interaction so slow flows (channel
// creation, transcript generation) can finish past the 3 second window.
func deferEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	})
}

func followupEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) error {
	_, err := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Content: content,
		Flags:   discordgo.MessageFlagsEphemeral,
	})
	return err
}

func followupEphemeralEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) error {
	_, err := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{embed},
		Flags:  discordgo.MessageFlagsEphemeral,
	})
	return err
}
