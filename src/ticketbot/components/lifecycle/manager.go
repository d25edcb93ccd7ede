// Package lifecycle implements the ticket state machine: creation behind
// the guard checks, race-arbitrated claims, transfers, priority changes
// and the multi-phase closure flow. Claim status never gates other
// actions; any support-role holder may act on a ticket regardless of who
// claimed it.
package lifecycle

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/codexdev/ticketbot/src/ticketbot/components/events"
	"github.com/codexdev/ticketbot/src/ticketbot/components/guard"
	"github.com/codexdev/ticketbot/src/ticketbot/components/rating"
	"github.com/codexdev/ticketbot/src/ticketbot/components/transcript"
	"github.com/codexdev/ticketbot/src/ticketbot/data"
	ticketdiscord "github.com/codexdev/ticketbot/src/ticketbot/discord"
	"github.com/codexdev/ticketbot/src/ticketbot/types"
)

const panelScanWindow = 50

type Manager struct {
	store   *data.Store
	guard   *guard.Guard
	ratings *rating.Service
	events  *events.Publisher

	mu        sync.RWMutex
	botUserID string
}

func NewManager(store *data.Store, g *guard.Guard, ratings *rating.Service, publisher *events.Publisher) *Manager {
	return &Manager{
		store:   store,
		guard:   g,
		ratings: ratings,
		events:  publisher,
	}
}

// SetBotUser records the bot's own user ID, needed to recognize its
// control-panel messages when scanning.
func (m *Manager) SetBotUser(id string) {
	m.mu.Lock()
	m.botUserID = id
	m.mu.Unlock()
}

func (m *Manager) botUser() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.botUserID
}

// HasSupportAccess derives the support privilege: primary support role,
// any additional support role, or administrator permission.
func (m *Manager) HasSupportAccess(guildID string, member *discordgo.Member) (bool, error) {
	if member == nil {
		return false, nil
	}
	if member.Permissions&discordgo.PermissionAdministrator != 0 {
		return true, nil
	}
	cfg, err := m.store.GuildConfig(guildID)
	if err != nil {
		return false, err
	}
	if cfg != nil && cfg.SupportRoleID != "" && hasRole(member.Roles, cfg.SupportRoleID) {
		return true, nil
	}
	extra, err := m.store.SupportRoles(guildID)
	if err != nil {
		return false, err
	}
	for _, roleID := range extra {
		if hasRole(member.Roles, roleID) {
			return true, nil
		}
	}
	return false, nil
}

func hasRole(roles []string, roleID string) bool {
	for _, r := range roles {
		if r == roleID {
			return true
		}
	}
	return false
}

// --- create ---

type CreateRequest struct {
	GuildID       string
	RequesterID   string
	RequesterName string
	Category      string
	Subject       string
	Description   string
	Priority      string
}

type CreateResult struct {
	Rejection *Rejection
	Ticket    *types.Ticket
	ChannelID string
}

// Create runs the full creation flow. Precondition failures return a
// typed rejection and perform no writes; if channel creation fails, no
// ticket row is inserted either.
func (m *Manager) Create(ctx context.Context, p Platform, req CreateRequest) (*CreateResult, error) {
	cfg, err := m.store.GuildConfig(req.GuildID)
	if err != nil {
		return nil, err
	}
	if cfg == nil || cfg.SupportRoleID == "" {
		return &CreateResult{Rejection: &Rejection{Reason: RejectNotConfigured}}, nil
	}
	if cfg.Maintenance {
		return &CreateResult{Rejection: &Rejection{Reason: RejectMaintenance}}, nil
	}

	blacklisted, err := m.store.IsBlacklisted(req.GuildID, req.RequesterID)
	if err != nil {
		return nil, err
	}
	if blacklisted {
		return &CreateResult{Rejection: &Rejection{Reason: RejectBlacklisted}}, nil
	}

	limited, err := m.guard.IsRateLimited(req.RequesterID)
	if err != nil {
		return nil, err
	}
	if limited {
		wait, _ := m.guard.TimeUntilNext(req.RequesterID)
		return &CreateResult{Rejection: &Rejection{Reason: RejectRateLimited, RetryAfter: wait}}, nil
	}

	allowed, count, limit, err := m.guard.CheckQuota(req.GuildID, req.RequesterID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return &CreateResult{Rejection: &Rejection{Reason: RejectQuotaExceeded, Count: count, Limit: limit}}, nil
	}

	category, err := m.store.Category(req.GuildID, req.Category)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return &CreateResult{Rejection: &Rejection{Reason: RejectCategoryMissing}}, nil
	}

	if !types.ValidPriority(req.Priority) {
		req.Priority = types.PriorityMedium
	}

	// The number used for the channel name is a read-only peek; the
	// authoritative number is allocated transactionally at insert time.
	peek, err := m.store.NextTicketNumber(req.GuildID)
	if err != nil {
		return nil, err
	}

	channel, err := p.GuildChannelCreateComplex(req.GuildID, discordgo.GuildChannelCreateData{
		Name:                 ticketdiscord.TicketChannelName(req.Priority, peek),
		Type:                 discordgo.ChannelTypeGuildText,
		Topic:                fmt.Sprintf("Ticket #%04d - %s | Created by %s", peek, req.Category, req.RequesterName),
		ParentID:             cfg.TicketCategoryID,
		PermissionOverwrites: m.channelOverwrites(req.GuildID, req.RequesterID, cfg),
	})
	if err != nil {
		if isForbidden(err) {
			return &CreateResult{Rejection: &Rejection{Reason: RejectChannelForbidden}}, nil
		}
		return nil, fmt.Errorf("create ticket channel: %w", err)
	}

	ticket := &types.Ticket{
		GuildID:     req.GuildID,
		ChannelID:   channel.ID,
		CreatorID:   req.RequesterID,
		Category:    req.Category,
		Subject:     req.Subject,
		Description: req.Description,
		Priority:    req.Priority,
		CreatedAt:   time.Now().UTC(),
	}
	if err := m.store.CreateTicket(ticket); err != nil {
		// Channel without a record is worse than neither; undo it.
		if _, delErr := p.ChannelDelete(channel.ID); delErr != nil {
			log.Printf("remove orphaned ticket channel %s: %v", channel.ID, delErr)
		}
		return nil, fmt.Errorf("persist ticket: %w", err)
	}

	if ticket.Number != peek {
		// Concurrent creation raced past the peek; fix the name to match.
		if _, err := p.ChannelEditComplex(channel.ID, &discordgo.ChannelEdit{
			Name: ticketdiscord.TicketChannelName(req.Priority, ticket.Number),
		}); err != nil {
			log.Printf("rename ticket channel %s after number race: %v", channel.ID, err)
		}
	}

	if err := m.guard.RecordTicketCreated(req.RequesterID); err != nil {
		log.Printf("record rate limit for %s: %v", req.RequesterID, err)
	}

	controlMsg, err := p.ChannelMessageSendComplex(channel.ID,
		ticketdiscord.BuildControlMessage(ticket, ticketdiscord.UserMention(req.RequesterID)))
	if err != nil {
		log.Printf("send control message for ticket #%04d: %v", ticket.Number, err)
	} else if controlMsg != nil {
		if err := m.store.SetPanelMessageID(channel.ID, controlMsg.ID); err != nil {
			log.Printf("store control message id for ticket #%04d: %v", ticket.Number, err)
		}
	}

	if cfg.PingRoleID != "" {
		content := fmt.Sprintf("%s - New %s priority ticket!",
			ticketdiscord.RoleMention(cfg.PingRoleID), strings.ToLower(ticket.Priority))
		if _, err := p.ChannelMessageSend(channel.ID, content); err != nil {
			log.Printf("ping role for ticket #%04d: %v", ticket.Number, err)
		}
	}

	m.logToGuild(p, cfg, "Logs - New Ticket Created!", fmt.Sprintf(
		"> Ticket `#%04d` created\n\n**Channel**\n```%s (%s)```**Ticket Creator**\n```%s (%s)```**Category**\n```%s```**Priority**\n```%s```**Subject**\n```%s```",
		ticket.Number, ticketdiscord.ChannelMention(channel.ID), channel.ID,
		req.RequesterName, req.RequesterID, ticket.Category, ticket.Priority, ticket.Subject),
		ticketdiscord.ColorDefault)

	m.events.Publish(ctx, events.TicketCreated, map[string]interface{}{
		"guild_id":   req.GuildID,
		"channel_id": channel.ID,
		"creator_id": req.RequesterID,
		"number":     ticket.Number,
		"category":   ticket.Category,
		"priority":   ticket.Priority,
	})

	return &CreateResult{Ticket: ticket, ChannelID: channel.ID}, nil
}

func (m *Manager) channelOverwrites(guildID, creatorID string, cfg *types.GuildConfig) []*discordgo.PermissionOverwrite {
	const memberAllow = discordgo.PermissionViewChannel |
		discordgo.PermissionSendMessages |
		discordgo.PermissionReadMessageHistory
	const staffAllow = memberAllow | discordgo.PermissionManageMessages

	overwrites := []*discordgo.PermissionOverwrite{
		{
			// @everyone shares the guild's ID.
			ID:   guildID,
			Type: discordgo.PermissionOverwriteTypeRole,
			Deny: discordgo.PermissionViewChannel,
		},
		{
			ID:    creatorID,
			Type:  discordgo.PermissionOverwriteTypeMember,
			Allow: memberAllow,
		},
	}
	if cfg.SupportRoleID != "" {
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID:    cfg.SupportRoleID,
			Type:  discordgo.PermissionOverwriteTypeRole,
			Allow: staffAllow,
		})
	}
	extra, err := m.store.SupportRoles(guildID)
	if err != nil {
		log.Printf("load additional support roles for %s: %v", guildID, err)
	}
	for _, roleID := range extra {
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID:    roleID,
			Type:  discordgo.PermissionOverwriteTypeRole,
			Allow: staffAllow,
		})
	}
	return overwrites
}

// --- claim ---

type ClaimResult struct {
	Rejection *Rejection
	Outcome   data.ClaimOutcome
	HolderID  string
	Ticket    *types.Ticket
}

// Claim attempts the race-arbitrated assignment. Exactly one actor wins
// a concurrent claim; losers learn the winner's identity.
func (m *Manager) Claim(ctx context.Context, p Platform, guildID, channelID string, actor *discordgo.Member) (*ClaimResult, error) {
	ticket, err := m.store.TicketByChannel(channelID)
	if err != nil {
		return nil, err
	}
	if ticket == nil || ticket.Status != types.StatusOpen {
		return &ClaimResult{Rejection: &Rejection{Reason: RejectNotTicketChannel}}, nil
	}

	ok, err := m.HasSupportAccess(guildID, actor)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &ClaimResult{Rejection: &Rejection{Reason: RejectNotSupportStaff}}, nil
	}

	actorID := memberID(actor)
	outcome, holder, err := m.store.ClaimTicket(channelID, actorID)
	if err != nil {
		return nil, err
	}
	result := &ClaimResult{Outcome: outcome, HolderID: holder, Ticket: ticket}

	switch outcome {
	case data.ClaimWon:
		announcement := fmt.Sprintf("%s your ticket has been claimed by %s",
			ticketdiscord.UserMention(ticket.CreatorID), ticketdiscord.UserMention(actorID))
		if _, err := p.ChannelMessageSend(channelID, announcement); err != nil {
			log.Printf("announce claim on %s: %v", channelID, err)
		}

		cfg, err := m.store.GuildConfig(guildID)
		if err == nil {
			m.logToGuild(p, cfg, "Logs - Ticket Claimed!", fmt.Sprintf(
				"> Ticket `#%04d` has been claimed\n\n**Channel**\n```%s (%s)```**Claimed By**\n```%s```**Category**\n```%s```**Priority**\n```%s```",
				ticket.Number, ticketdiscord.ChannelMention(channelID), channelID,
				actorID, ticket.Category, ticket.Priority),
				ticketdiscord.ColorDefault)
		}

		m.events.Publish(ctx, events.TicketClaimed, map[string]interface{}{
			"guild_id":   guildID,
			"channel_id": channelID,
			"actor_id":   actorID,
			"number":     ticket.Number,
		})
	case data.ClaimLost:
		result.Rejection = &Rejection{Reason: RejectAlreadyClaimed, HolderID: holder}
		m.events.Publish(ctx, events.ClaimRejected, map[string]interface{}{
			"guild_id":   guildID,
			"channel_id": channelID,
			"actor_id":   actorID,
			"holder_id":  holder,
		})
	}
	return result, nil
}

// --- transfer ---

type TransferResult struct {
	Rejection *Rejection
	Ticket    *types.Ticket
}

// Transfer reassigns the claim to another staff member and announces it
// in the channel. Reassignment mutates claimed_by so the record matches
// the announcement.
func (m *Manager) Transfer(ctx context.Context, p Platform, guildID, channelID string, from *discordgo.Member, toUserID string) (*TransferResult, error) {
	ticket, err := m.store.TicketByChannel(channelID)
	if err != nil {
		return nil, err
	}
	if ticket == nil || ticket.Status != types.StatusOpen {
		return &TransferResult{Rejection: &Rejection{Reason: RejectNotTicketChannel}}, nil
	}

	ok, err := m.HasSupportAccess(guildID, from)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &TransferResult{Rejection: &Rejection{Reason: RejectNotSupportStaff}}, nil
	}

	toMember, err := p.GuildMember(guildID, toUserID)
	if err != nil {
		return &TransferResult{Rejection: &Rejection{Reason: RejectNotSupportStaff}}, nil
	}
	ok, err = m.HasSupportAccess(guildID, toMember)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &TransferResult{Rejection: &Rejection{Reason: RejectNotSupportStaff}}, nil
	}

	if err := m.store.SetClaimant(channelID, toUserID); err != nil {
		return nil, err
	}

	announcement := fmt.Sprintf("🔄 This ticket has been transferred from %s to %s.",
		ticketdiscord.UserMention(memberID(from)), ticketdiscord.UserMention(toUserID))
	if _, err := p.ChannelMessageSend(channelID, announcement); err != nil {
		log.Printf("announce transfer on %s: %v", channelID, err)
	}

	cfg, cfgErr := m.store.GuildConfig(guildID)
	if cfgErr == nil {
		m.logToGuild(p, cfg, "Logs - Ticket Transferred!", fmt.Sprintf(
			"> Ticket `#%04d` reassigned\n\n**Channel**\n```%s (%s)```**From**\n```%s```**To**\n```%s```",
			ticket.Number, ticketdiscord.ChannelMention(channelID), channelID,
			memberID(from), toUserID),
			ticketdiscord.ColorDefault)
	}

	m.events.Publish(ctx, events.TicketTransferred, map[string]interface{}{
		"guild_id":   guildID,
		"channel_id": channelID,
		"from_id":    memberID(from),
		"to_id":      toUserID,
	})
	return &TransferResult{Ticket: ticket}, nil
}

// --- priority ---

type PriorityResult struct {
	Rejection *Rejection
	Ticket    *types.Ticket
}

// SetPriority persists the new level, renames the channel to carry the
// new marker, and rewrites the control panel in place. Rename and panel
// refresh are best-effort; persistence alone decides success.
func (m *Manager) SetPriority(ctx context.Context, p Platform, guildID, channelID string, actor *discordgo.Member, priority string) (*PriorityResult, error) {
	if !types.ValidPriority(priority) {
		return nil, fmt.Errorf("invalid priority %q", priority)
	}

	ticket, err := m.store.TicketByChannel(channelID)
	if err != nil {
		return nil, err
	}
	if ticket == nil || ticket.Status != types.StatusOpen {
		return &PriorityResult{Rejection: &Rejection{Reason: RejectNotTicketChannel}}, nil
	}

	ok, err := m.HasSupportAccess(guildID, actor)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &PriorityResult{Rejection: &Rejection{Reason: RejectNotSupportStaff}}, nil
	}

	if err := m.store.SetPriority(channelID, priority); err != nil {
		return nil, err
	}
	ticket.Priority = priority

	if ch, err := p.Channel(channelID); err == nil {
		newName := ticketdiscord.WithPriorityMarker(priority, ch.Name)
		if _, err := p.ChannelEditComplex(channelID, &discordgo.ChannelEdit{Name: newName}); err != nil {
			log.Printf("rename channel %s for priority change: %v", channelID, err)
		}
	}

	m.refreshControlPanel(p, ticket)

	m.events.Publish(ctx, events.PriorityChanged, map[string]interface{}{
		"guild_id":   guildID,
		"channel_id": channelID,
		"priority":   priority,
		"number":     ticket.Number,
	})
	return &PriorityResult{Ticket: ticket}, nil
}

// refreshControlPanel rewrites the stored control message with the
// ticket's current state. The stored message ID is preferred; a bounded
// scan of recent history is the fallback for tickets created before the
// ID was recorded.
func (m *Manager) refreshControlPanel(p Platform, t *types.Ticket) {
	messageID := t.PanelMessageID
	if messageID == "" {
		messageID = m.findControlMessage(p, t.ChannelID)
		if messageID == "" {
			log.Printf("control panel not found in %s, skipping refresh", t.ChannelID)
			return
		}
		if err := m.store.SetPanelMessageID(t.ChannelID, messageID); err != nil {
			log.Printf("store located control message id: %v", err)
		}
	}

	fresh := ticketdiscord.BuildControlMessage(t, ticketdiscord.UserMention(t.CreatorID))
	embeds := []*discordgo.MessageEmbed{fresh.Embed}
	components := fresh.Components
	if _, err := p.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:    t.ChannelID,
		ID:         messageID,
		Embeds:     &embeds,
		Components: &components,
	}); err != nil {
		log.Printf("refresh control panel %s/%s: %v", t.ChannelID, messageID, err)
	}
}

func (m *Manager) findControlMessage(p Platform, channelID string) string {
	botID := m.botUser()
	if botID == "" {
		return ""
	}
	messages, err := p.ChannelMessages(channelID, panelScanWindow, "", "", "")
	if err != nil {
		log.Printf("scan for control panel in %s: %v", channelID, err)
		return ""
	}
	// Newest first; the most recent bot message with controls wins.
	for _, msg := range messages {
		if msg.Author != nil && msg.Author.ID == botID &&
			len(msg.Embeds) > 0 && len(msg.Components) > 0 {
			return msg.ID
		}
	}
	return ""
}

// --- close ---

type CloseRequest struct {
	GuildID   string
	ChannelID string
	ActorID   string
	ActorName string
}

type CloseResult struct {
	Rejection     *Rejection
	Ticket        *types.Ticket
	DMFailed      bool
	DeleteFailed  bool
	RatingSkipped bool
}

// Close runs the multi-phase closure flow. Phases 3-6 (transcript, DM,
// rating request, log post) are each best-effort: a failure is logged
// and the flow continues, because channel deletion is the point of no
// return and must not be blocked by, say, a user with DMs disabled.
// Persistence (phase 7) commits before the channel is deleted (phase 8)
// so the record survives channel loss.
func (m *Manager) Close(ctx context.Context, p Platform, req CloseRequest) (*CloseResult, error) {
	ticket, err := m.store.TicketByChannel(req.ChannelID)
	if err != nil {
		return nil, err
	}
	if ticket == nil || ticket.Status != types.StatusOpen {
		return &CloseResult{Rejection: &Rejection{Reason: RejectNotTicketChannel}}, nil
	}

	if ticket.CreatorID != req.ActorID {
		member, err := p.GuildMember(req.GuildID, req.ActorID)
		if err != nil {
			return &CloseResult{Rejection: &Rejection{Reason: RejectNotPermitted}}, nil
		}
		ok, err := m.HasSupportAccess(req.GuildID, member)
		if err != nil {
			return nil, err
		}
		if !ok {
			return &CloseResult{Rejection: &Rejection{Reason: RejectNotPermitted}}, nil
		}
	}

	result := &CloseResult{Ticket: ticket}

	channelName := fmt.Sprintf("ticket-%04d", ticket.Number)
	if ch, err := p.Channel(req.ChannelID); err == nil {
		channelName = ch.Name
	}

	transcriptText, err := transcript.Export(p, req.ChannelID, channelName)
	if err != nil {
		log.Printf("generate transcript for #%04d: %v", ticket.Number, err)
		transcriptText = ""
	}

	m.sendClosureDM(p, ticket, req, channelName, transcriptText, result)

	cfg, err := m.store.GuildConfig(req.GuildID)
	if err != nil {
		log.Printf("load guild config during close of #%04d: %v", ticket.Number, err)
		cfg = nil
	}

	rated, err := m.ratings.AlreadyRated(req.GuildID, ticket.Number, ticket.CreatorID)
	if err != nil {
		log.Printf("check existing rating for #%04d: %v", ticket.Number, err)
	}
	if rated {
		result.RatingSkipped = true
	} else {
		if _, err := m.ratings.Request(ctx, p, req.GuildID, ticket.CreatorID, ticket.Number, req.ActorName); err != nil {
			if transcript.IsDMDisabled(err) {
				log.Printf("rating request to %s skipped, DMs disabled", ticket.CreatorID)
			} else {
				log.Printf("rating request to %s: %v", ticket.CreatorID, err)
			}
		}
	}

	m.postClosureLog(p, cfg, ticket, req, channelName, transcriptText)

	if err := m.store.CloseTicket(req.ChannelID, time.Now().UTC()); err != nil {
		// Without the persisted closure the channel must survive.
		return nil, fmt.Errorf("persist ticket closure: %w", err)
	}

	if _, err := p.ChannelDelete(req.ChannelID); err != nil {
		log.Printf("delete channel %s for closed ticket #%04d: %v", req.ChannelID, ticket.Number, err)
		result.DeleteFailed = true
	}

	m.events.Publish(ctx, events.TicketClosed, map[string]interface{}{
		"guild_id":   req.GuildID,
		"channel_id": req.ChannelID,
		"number":     ticket.Number,
		"closed_by":  req.ActorID,
	})
	return result, nil
}

// CancelClose records that a pending closure was abandoned. No state is
// touched; the confirmation round-trip lives in the presentation layer.
func (m *Manager) CancelClose(ctx context.Context, guildID, channelID string) {
	m.events.Publish(ctx, events.CloseCancelled, map[string]interface{}{
		"guild_id":   guildID,
		"channel_id": channelID,
	})
}

func (m *Manager) sendClosureDM(p Platform, ticket *types.Ticket, req CloseRequest, channelName, transcriptText string, result *CloseResult) {
	embed := &discordgo.MessageEmbed{
		Title: "🔒 Ticket Closed",
		Description: fmt.Sprintf(
			"**Your support ticket #%04d has been closed.**\n\n**Closed by:** %s\n**Channel:** %s\n\nA transcript of the conversation is attached for your records.",
			ticket.Number, req.ActorName, channelName),
		Color:  ticketdiscord.ColorDefault,
		Footer: &discordgo.MessageEmbedFooter{Text: "Support System • Conversation Archive"},
	}
	var err error
	if transcriptText != "" {
		err = transcript.SendDM(p, ticket.CreatorID, channelName, transcriptText, embed)
	} else {
		var dm *discordgo.Channel
		dm, err = p.UserChannelCreate(ticket.CreatorID)
		if err == nil {
			_, err = p.ChannelMessageSendComplex(dm.ID, &discordgo.MessageSend{Embed: embed})
		}
	}
	if err != nil {
		result.DMFailed = true
		if transcript.IsDMDisabled(err) {
			log.Printf("closure DM to %s skipped, DMs disabled", ticket.CreatorID)
		} else {
			log.Printf("closure DM to %s: %v", ticket.CreatorID, err)
		}
	}
}

func (m *Manager) postClosureLog(p Platform, cfg *types.GuildConfig, ticket *types.Ticket, req CloseRequest, channelName, transcriptText string) {
	if cfg == nil || cfg.LogChannelID == "" {
		return
	}
	embed := ticketdiscord.BuildLogEmbed("Logs - Ticket Closed!", fmt.Sprintf(
		"> Ticket `#%04d` closed\n\n**Channel**\n```#%s (%s)```**Closed By**\n```%s (%s)```**Ticket Creator**\n```%s```**Category**\n```%s```",
		ticket.Number, channelName, req.ChannelID, req.ActorName, req.ActorID,
		ticket.CreatorID, ticket.Category),
		ticketdiscord.ColorWarning)

	msg := &discordgo.MessageSend{
		Embed: embed,
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						Label:    "Creator Info",
						Style:    discordgo.SecondaryButton,
						CustomID: ticketdiscord.AuthorLookupPrefix + ticket.CreatorID,
						Emoji:    &discordgo.ComponentEmoji{Name: "👤"},
					},
				},
			},
		},
	}
	if transcriptText != "" {
		msg.Files = []*discordgo.File{{
			Name:        fmt.Sprintf("%s-transcript.txt", channelName),
			ContentType: "text/plain",
			Reader:      strings.NewReader(transcriptText),
		}}
	}
	if _, err := p.ChannelMessageSendComplex(cfg.LogChannelID, msg); err != nil {
		log.Printf("post closure log for #%04d: %v", ticket.Number, err)
	}
}

// --- rename / membership ---

type ActionResult struct {
	Rejection *Rejection
	Ticket    *types.Ticket
}

// Rename changes the ticket channel's name, preserving the priority
// marker and sanitizing the requested name.
func (m *Manager) Rename(ctx context.Context, p Platform, guildID, channelID string, actor *discordgo.Member, newName string) (*ActionResult, string, error) {
	ticket, err := m.store.TicketByChannel(channelID)
	if err != nil {
		return nil, "", err
	}
	if ticket == nil || ticket.Status != types.StatusOpen {
		return &ActionResult{Rejection: &Rejection{Reason: RejectNotTicketChannel}}, "", nil
	}

	ok, err := m.HasSupportAccess(guildID, actor)
	if err != nil {
		return nil, "", err
	}
	if !ok {
		return &ActionResult{Rejection: &Rejection{Reason: RejectNotSupportStaff}}, "", nil
	}

	sanitized := ticketdiscord.SanitizeChannelName(newName)
	finalName := ticketdiscord.ClampChannelName(types.PriorityEmoji(ticket.Priority) + "-" + sanitized)
	if _, err := p.ChannelEditComplex(channelID, &discordgo.ChannelEdit{Name: finalName}); err != nil {
		if isForbidden(err) {
			return &ActionResult{Rejection: &Rejection{Reason: RejectChannelForbidden}}, "", nil
		}
		return nil, "", fmt.Errorf("rename channel: %w", err)
	}
	return &ActionResult{Ticket: ticket}, finalName, nil
}

// AddUser grants a user visibility into the ticket channel.
func (m *Manager) AddUser(ctx context.Context, p Platform, guildID, channelID string, actor *discordgo.Member, targetID string) (*ActionResult, error) {
	return m.editMembership(p, guildID, channelID, actor, targetID, true)
}

// RemoveUser revokes a user's access to the ticket channel.
func (m *Manager) RemoveUser(ctx context.Context, p Platform, guildID, channelID string, actor *discordgo.Member, targetID string) (*ActionResult, error) {
	return m.editMembership(p, guildID, channelID, actor, targetID, false)
}

func (m *Manager) editMembership(p Platform, guildID, channelID string, actor *discordgo.Member, targetID string, add bool) (*ActionResult, error) {
	ticket, err := m.store.TicketByChannel(channelID)
	if err != nil {
		return nil, err
	}
	if ticket == nil || ticket.Status != types.StatusOpen {
		return &ActionResult{Rejection: &Rejection{Reason: RejectNotTicketChannel}}, nil
	}

	ok, err := m.HasSupportAccess(guildID, actor)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &ActionResult{Rejection: &Rejection{Reason: RejectNotSupportStaff}}, nil
	}

	if add {
		const allow = discordgo.PermissionViewChannel |
			discordgo.PermissionSendMessages |
			discordgo.PermissionReadMessageHistory
		err = p.ChannelPermissionSet(channelID, targetID, discordgo.PermissionOverwriteTypeMember, allow, 0)
	} else {
		err = p.ChannelPermissionDelete(channelID, targetID)
	}
	if err != nil {
		if isForbidden(err) {
			return &ActionResult{Rejection: &Rejection{Reason: RejectChannelForbidden}}, nil
		}
		return nil, fmt.Errorf("edit channel membership: %w", err)
	}
	return &ActionResult{Ticket: ticket}, nil
}

// logToGuild posts a log-channel embed when one is configured. Best-effort.
func (m *Manager) logToGuild(p Platform, cfg *types.GuildConfig, title, description string, color int) {
	if cfg == nil || cfg.LogChannelID == "" {
		return
	}
	embed := ticketdiscord.BuildLogEmbed(title, description, color)
	if _, err := p.ChannelMessageSendEmbed(cfg.LogChannelID, embed); err != nil {
		log.Printf("post guild log %q: %v", title, err)
	}
}

func memberID(member *discordgo.Member) string {
	if member != nil && member.User != nil {
		return member.User.ID
	}
	return ""
}
