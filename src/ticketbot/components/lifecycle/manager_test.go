package lifecycle

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/codexdev/ticketbot/src/ticketbot/components/events"
	"github.com/codexdev/ticketbot/src/ticketbot/components/guard"
	"github.com/codexdev/ticketbot/src/ticketbot/components/rating"
	"github.com/codexdev/ticketbot/src/ticketbot/data"
	"github.com/codexdev/ticketbot/src/ticketbot/types"
)

// fakePlatform records every platform call and lets tests inject
// failures at specific points.
type fakePlatform struct {
	nextChannelID string
	channels      map[string]*discordgo.Channel
	messages      map[string][]*discordgo.Message
	edits         []*discordgo.MessageEdit
	deleted       []string
	permSets      map[string]int64
	permDeletes   []string
	members       map[string]*discordgo.Member
	msgSeq        int

	createErr error
	dmErr     error
	deleteErr error
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		nextChannelID: "chan-new",
		channels:      make(map[string]*discordgo.Channel),
		messages:      make(map[string][]*discordgo.Message),
		permSets:      make(map[string]int64),
		members:       make(map[string]*discordgo.Member),
	}
}

func (f *fakePlatform) GuildChannelCreateComplex(guildID string, chData discordgo.GuildChannelCreateData, options ...discordgo.RequestOption) (*discordgo.Channel, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	ch := &discordgo.Channel{ID: f.nextChannelID, Name: chData.Name, GuildID: guildID}
	f.channels[ch.ID] = ch
	return ch, nil
}

func (f *fakePlatform) Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error) {
	ch, ok := f.channels[channelID]
	if !ok {
		return nil, fmt.Errorf("unknown channel %s", channelID)
	}
	return ch, nil
}

func (f *fakePlatform) ChannelDelete(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error) {
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	f.deleted = append(f.deleted, channelID)
	delete(f.channels, channelID)
	return &discordgo.Channel{ID: channelID}, nil
}

func (f *fakePlatform) ChannelEditComplex(channelID string, edit *discordgo.ChannelEdit, options ...discordgo.RequestOption) (*discordgo.Channel, error) {
	ch, ok := f.channels[channelID]
	if !ok {
		return nil, fmt.Errorf("unknown channel %s", channelID)
	}
	if edit.Name != "" {
		ch.Name = edit.Name
	}
	return ch, nil
}

func (f *fakePlatform) appendMessage(channelID string, msg *discordgo.Message) *discordgo.Message {
	f.msgSeq++
	msg.ID = fmt.Sprintf("msg-%d", f.msgSeq)
	msg.ChannelID = channelID
	f.messages[channelID] = append(f.messages[channelID], msg)
	return msg
}

func (f *fakePlatform) ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	return f.appendMessage(channelID, &discordgo.Message{Content: content}), nil
}

func (f *fakePlatform) ChannelMessageSendComplex(channelID string, msgData *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	msg := &discordgo.Message{Content: msgData.Content}
	if msgData.Embed != nil {
		msg.Embeds = []*discordgo.MessageEmbed{msgData.Embed}
	}
	return f.appendMessage(channelID, msg), nil
}

func (f *fakePlatform) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	return f.appendMessage(channelID, &discordgo.Message{Embeds: []*discordgo.MessageEmbed{embed}}), nil
}

func (f *fakePlatform) ChannelMessageEditComplex(edit *discordgo.MessageEdit, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.edits = append(f.edits, edit)
	return &discordgo.Message{ID: edit.ID}, nil
}

func (f *fakePlatform) ChannelMessage(channelID, messageID string, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	for _, m := range f.messages[channelID] {
		if m.ID == messageID {
			return m, nil
		}
	}
	return nil, fmt.Errorf("unknown message %s", messageID)
}

func (f *fakePlatform) ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, options ...discordgo.RequestOption) ([]*discordgo.Message, error) {
	msgs := f.messages[channelID]
	// Newest first, like the API.
	out := make([]*discordgo.Message, 0, len(msgs))
	for n := len(msgs) - 1; n >= 0 && len(out) < limit; n-- {
		out = append(out, msgs[n])
	}
	return out, nil
}

func (f *fakePlatform) ChannelPermissionSet(channelID, targetID string, targetType discordgo.PermissionOverwriteType, allow, deny int64, options ...discordgo.RequestOption) error {
	f.permSets[channelID+"/"+targetID] = allow
	return nil
}

func (f *fakePlatform) ChannelPermissionDelete(channelID, targetID string, options ...discordgo.RequestOption) error {
	f.permDeletes = append(f.permDeletes, channelID+"/"+targetID)
	return nil
}

func (f *fakePlatform) UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error) {
	if f.dmErr != nil {
		return nil, f.dmErr
	}
	dmID := "dm-" + recipientID
	if _, ok := f.channels[dmID]; !ok {
		f.channels[dmID] = &discordgo.Channel{ID: dmID, Type: discordgo.ChannelTypeDM}
	}
	return f.channels[dmID], nil
}

func (f *fakePlatform) GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error) {
	m, ok := f.members[userID]
	if !ok {
		return nil, fmt.Errorf("unknown member %s", userID)
	}
	return m, nil
}

func (f *fakePlatform) User(userID string, options ...discordgo.RequestOption) (*discordgo.User, error) {
	return &discordgo.User{ID: userID, Username: "user-" + userID}, nil
}

// --- fixtures ---

func testManager(t *testing.T) (*Manager, *data.Store, *fakePlatform) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, data.Migrate(db))

	store := data.NewStore(db)
	publisher := events.NewPublisher(nil)
	ratings := rating.New(store, publisher)
	mgr := NewManager(store, guard.New(store, guard.DefaultCooldown), ratings, publisher)
	mgr.SetBotUser("bot-1")
	return mgr, store, newFakePlatform()
}

func configureGuild(t *testing.T, store *data.Store) {
	t.Helper()
	require.NoError(t, store.SaveGuildConfig(&types.GuildConfig{
		GuildID:       "g1",
		SupportRoleID: "support-role",
		LogChannelID:  "log-chan",
		TicketLimit:   3,
	}))
	require.NoError(t, store.AddCategory("g1", "General", "🎫"))
}

func staffMember(id string) *discordgo.Member {
	return &discordgo.Member{
		User:  &discordgo.User{ID: id, Username: id},
		Roles: []string{"support-role"},
	}
}

func plainMember(id string) *discordgo.Member {
	return &discordgo.Member{User: &discordgo.User{ID: id, Username: id}}
}

func createRequest(userID string) CreateRequest {
	return CreateRequest{
		GuildID:       "g1",
		RequesterID:   userID,
		RequesterName: userID,
		Category:      "General",
		Subject:       "help me",
		Description:   "something broke",
	}
}

// --- create ---

func TestCreateHappyPath(t *testing.T) {
	mgr, store, p := testManager(t)
	configureGuild(t, store)
	p.channels["log-chan"] = &discordgo.Channel{ID: "log-chan"}

	result, err := mgr.Create(context.Background(), p, createRequest("alice"))
	require.NoError(t, err)
	require.Nil(t, result.Rejection)
	require.NotNil(t, result.Ticket)

	assert.Equal(t, 1, result.Ticket.Number)
	assert.Equal(t, types.PriorityMedium, result.Ticket.Priority)

	// The channel name carries the priority marker and padded number.
	ch := p.channels[result.ChannelID]
	require.NotNil(t, ch)
	assert.Equal(t, "🟡-ticket-0001", ch.Name)

	// Ticket row persisted and linked to the channel.
	stored, err := store.TicketByChannel(result.ChannelID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "alice", stored.CreatorID)
	assert.NotEmpty(t, stored.PanelMessageID, "control message id must be recorded")

	// Cooldown starts at creation.
	last, ok, err := store.LastTicketAt("alice")
	require.NoError(t, err)
	require.True(t, ok)
	assert.WithinDuration(t, time.Now(), last, 5*time.Second)
}

func TestCreateRejectsWhenUnconfigured(t *testing.T) {
	mgr, _, p := testManager(t)

	result, err := mgr.Create(context.Background(), p, createRequest("alice"))
	require.NoError(t, err)
	require.NotNil(t, result.Rejection)
	assert.Equal(t, RejectNotConfigured, result.Rejection.Reason)
	assert.Empty(t, p.channels, "no channel is created on rejection")
}

func TestCreateRejectionOrder(t *testing.T) {
	mgr, store, p := testManager(t)
	configureGuild(t, store)

	// Blacklist outranks rate limit and quota.
	_, err := store.AddBlacklist("g1", "mallory")
	require.NoError(t, err)
	require.NoError(t, store.TouchRateLimit("mallory", time.Now().UTC()))

	result, err := mgr.Create(context.Background(), p, createRequest("mallory"))
	require.NoError(t, err)
	require.NotNil(t, result.Rejection)
	assert.Equal(t, RejectBlacklisted, result.Rejection.Reason)
}

func TestCreateRejectsMaintenance(t *testing.T) {
	mgr, store, p := testManager(t)
	configureGuild(t, store)
	_, err := store.ToggleMaintenance("g1")
	require.NoError(t, err)

	result, err := mgr.Create(context.Background(), p, createRequest("alice"))
	require.NoError(t, err)
	require.NotNil(t, result.Rejection)
	assert.Equal(t, RejectMaintenance, result.Rejection.Reason)
}

func TestCreateRejectsDuringCooldown(t *testing.T) {
	mgr, store, p := testManager(t)
	configureGuild(t, store)
	require.NoError(t, store.TouchRateLimit("alice", time.Now().UTC()))

	result, err := mgr.Create(context.Background(), p, createRequest("alice"))
	require.NoError(t, err)
	require.NotNil(t, result.Rejection)
	assert.Equal(t, RejectRateLimited, result.Rejection.Reason)
	assert.Greater(t, result.Rejection.RetryAfter, time.Duration(0))
}

func TestCreateRejectsOverQuota(t *testing.T) {
	mgr, store, p := testManager(t)
	configureGuild(t, store)
	require.NoError(t, store.SetTicketLimit("g1", 1))

	p.nextChannelID = "chan-1"
	first, err := mgr.Create(context.Background(), p, createRequest("alice"))
	require.NoError(t, err)
	require.Nil(t, first.Rejection)

	// Clear cooldown so quota is the check that fires.
	require.NoError(t, store.TouchRateLimit("alice", time.Now().UTC().Add(-2*time.Minute)))

	p.nextChannelID = "chan-2"
	second, err := mgr.Create(context.Background(), p, createRequest("alice"))
	require.NoError(t, err)
	require.NotNil(t, second.Rejection)
	assert.Equal(t, RejectQuotaExceeded, second.Rejection.Reason)
	assert.Equal(t, 1, second.Rejection.Count)
	assert.Equal(t, 1, second.Rejection.Limit)

	// Close the open ticket, clear cooldown, and creation works again.
	require.NoError(t, store.CloseTicket("chan-1", time.Now().UTC()))
	require.NoError(t, store.TouchRateLimit("alice", time.Now().UTC().Add(-2*time.Minute)))
	third, err := mgr.Create(context.Background(), p, createRequest("alice"))
	require.NoError(t, err)
	assert.Nil(t, third.Rejection)
}

func TestCreateRejectsUnknownCategory(t *testing.T) {
	mgr, store, p := testManager(t)
	configureGuild(t, store)

	req := createRequest("alice")
	req.Category = "Ghost"
	result, err := mgr.Create(context.Background(), p, req)
	require.NoError(t, err)
	require.NotNil(t, result.Rejection)
	assert.Equal(t, RejectCategoryMissing, result.Rejection.Reason)
}

func TestCreateChannelForbiddenLeavesNoRow(t *testing.T) {
	mgr, store, p := testManager(t)
	configureGuild(t, store)
	p.createErr = &discordgo.RESTError{
		Message:  &discordgo.APIErrorMessage{Code: discordgo.ErrCodeMissingPermissions},
		Response: &http.Response{StatusCode: http.StatusForbidden},
	}

	result, err := mgr.Create(context.Background(), p, createRequest("alice"))
	require.NoError(t, err)
	require.NotNil(t, result.Rejection)
	assert.Equal(t, RejectChannelForbidden, result.Rejection.Reason)

	count, err := store.OpenTicketCount("g1", "alice")
	require.NoError(t, err)
	assert.Zero(t, count, "no partial writes when channel creation fails")

	_, ok, err := store.LastTicketAt("alice")
	require.NoError(t, err)
	assert.False(t, ok, "cooldown is not consumed by a failed creation")
}

func TestCreateCompensatesWhenInsertFails(t *testing.T) {
	mgr, store, p := testManager(t)
	configureGuild(t, store)

	// Occupy the channel id the fake will hand out so the insert trips
	// the unique channel constraint.
	require.NoError(t, store.CreateTicket(&types.Ticket{
		GuildID:   "g1",
		ChannelID: "chan-new",
		CreatorID: "bob",
		Category:  "General",
		CreatedAt: time.Now().UTC(),
	}))

	_, err := mgr.Create(context.Background(), p, createRequest("alice"))
	require.Error(t, err)
	assert.Contains(t, p.deleted, "chan-new", "orphaned channel must be removed")
}

// --- claim ---

func openTicket(t *testing.T, mgr *Manager, store *data.Store, p *fakePlatform, channelID, creator string) *types.Ticket {
	t.Helper()
	p.nextChannelID = channelID
	result, err := mgr.Create(context.Background(), p, createRequest(creator))
	require.NoError(t, err)
	require.Nil(t, result.Rejection)
	require.NoError(t, store.TouchRateLimit(creator, time.Now().UTC().Add(-2*time.Minute)))
	return result.Ticket
}

func TestClaimFlow(t *testing.T) {
	mgr, store, p := testManager(t)
	configureGuild(t, store)
	openTicket(t, mgr, store, p, "chan-1", "alice")

	// Non-staff cannot claim.
	result, err := mgr.Claim(context.Background(), p, "g1", "chan-1", plainMember("rando"))
	require.NoError(t, err)
	require.NotNil(t, result.Rejection)
	assert.Equal(t, RejectNotSupportStaff, result.Rejection.Reason)

	result, err = mgr.Claim(context.Background(), p, "g1", "chan-1", staffMember("staff-a"))
	require.NoError(t, err)
	require.Nil(t, result.Rejection)
	assert.Equal(t, data.ClaimWon, result.Outcome)

	// The second claim loses and names the holder.
	result, err = mgr.Claim(context.Background(), p, "g1", "chan-1", staffMember("staff-b"))
	require.NoError(t, err)
	require.NotNil(t, result.Rejection)
	assert.Equal(t, RejectAlreadyClaimed, result.Rejection.Reason)
	assert.Equal(t, "staff-a", result.Rejection.HolderID)
	assert.Contains(t, result.Rejection.Message(), "staff-a",
		"the loser's message names the holder")
}

func TestClaimAllowedByAdminWithoutSupportRole(t *testing.T) {
	mgr, store, p := testManager(t)
	configureGuild(t, store)
	openTicket(t, mgr, store, p, "chan-1", "alice")

	admin := plainMember("admin")
	admin.Permissions = discordgo.PermissionAdministrator

	result, err := mgr.Claim(context.Background(), p, "g1", "chan-1", admin)
	require.NoError(t, err)
	require.Nil(t, result.Rejection)
	assert.Equal(t, data.ClaimWon, result.Outcome)
}

func TestClaimOutsideTicketChannel(t *testing.T) {
	mgr, store, p := testManager(t)
	configureGuild(t, store)

	result, err := mgr.Claim(context.Background(), p, "g1", "random-chan", staffMember("staff-a"))
	require.NoError(t, err)
	require.NotNil(t, result.Rejection)
	assert.Equal(t, RejectNotTicketChannel, result.Rejection.Reason)
}

// --- transfer ---

func TestTransferReassignsClaim(t *testing.T) {
	mgr, store, p := testManager(t)
	configureGuild(t, store)
	openTicket(t, mgr, store, p, "chan-1", "alice")
	p.members["staff-b"] = staffMember("staff-b")

	_, err := mgr.Claim(context.Background(), p, "g1", "chan-1", staffMember("staff-a"))
	require.NoError(t, err)

	result, err := mgr.Transfer(context.Background(), p, "g1", "chan-1", staffMember("staff-a"), "staff-b")
	require.NoError(t, err)
	require.Nil(t, result.Rejection)

	// The claim record follows the transfer so claimant and announcement
	// never disagree.
	ticket, err := store.TicketByChannel("chan-1")
	require.NoError(t, err)
	assert.Equal(t, "staff-b", ticket.ClaimedBy)

	var announced bool
	for _, m := range p.messages["chan-1"] {
		if strings.Contains(m.Content, "transferred") {
			announced = true
		}
	}
	assert.True(t, announced, "transfer is announced in the ticket channel")
}

func TestTransferRequiresStaffTarget(t *testing.T) {
	mgr, store, p := testManager(t)
	configureGuild(t, store)
	openTicket(t, mgr, store, p, "chan-1", "alice")
	p.members["rando"] = plainMember("rando")

	result, err := mgr.Transfer(context.Background(), p, "g1", "chan-1", staffMember("staff-a"), "rando")
	require.NoError(t, err)
	require.NotNil(t, result.Rejection)
	assert.Equal(t, RejectNotSupportStaff, result.Rejection.Reason)
}

// --- priority ---

func TestSetPriorityPersistsRenamesAndRefreshesPanel(t *testing.T) {
	mgr, store, p := testManager(t)
	configureGuild(t, store)
	openTicket(t, mgr, store, p, "chan-1", "alice")

	result, err := mgr.SetPriority(context.Background(), p, "g1", "chan-1", staffMember("staff-a"), types.PriorityCritical)
	require.NoError(t, err)
	require.Nil(t, result.Rejection)

	ticket, err := store.TicketByChannel("chan-1")
	require.NoError(t, err)
	assert.Equal(t, types.PriorityCritical, ticket.Priority)

	assert.Equal(t, "🔴-ticket-0001", p.channels["chan-1"].Name)

	require.Len(t, p.edits, 1, "control panel is edited in place")
	assert.Equal(t, ticket.PanelMessageID, p.edits[0].ID)
}

func TestSetPriorityRejectsInvalidLevel(t *testing.T) {
	mgr, store, p := testManager(t)
	configureGuild(t, store)
	openTicket(t, mgr, store, p, "chan-1", "alice")

	_, err := mgr.SetPriority(context.Background(), p, "g1", "chan-1", staffMember("staff-a"), "Apocalyptic")
	assert.Error(t, err)
}

// --- close ---

func TestCloseFullFlow(t *testing.T) {
	mgr, store, p := testManager(t)
	configureGuild(t, store)
	openTicket(t, mgr, store, p, "chan-1", "alice")
	p.members["staff-a"] = staffMember("staff-a")

	result, err := mgr.Close(context.Background(), p, CloseRequest{
		GuildID:   "g1",
		ChannelID: "chan-1",
		ActorID:   "staff-a",
		ActorName: "staff-a",
	})
	require.NoError(t, err)
	require.Nil(t, result.Rejection)

	ticket, err := store.TicketByChannel("chan-1")
	require.NoError(t, err)
	assert.Equal(t, types.StatusClosed, ticket.Status)
	require.NotNil(t, ticket.ClosedAt)

	assert.Contains(t, p.deleted, "chan-1")
	assert.NotEmpty(t, p.messages["dm-alice"], "creator gets transcript and rating prompt by DM")
	assert.NotEmpty(t, p.messages["log-chan"], "closure is logged")
	assert.False(t, result.DMFailed)
}

func TestCloseSucceedsWhenDMsDisabled(t *testing.T) {
	mgr, store, p := testManager(t)
	configureGuild(t, store)
	openTicket(t, mgr, store, p, "chan-1", "alice")
	p.members["staff-a"] = staffMember("staff-a")
	p.dmErr = &discordgo.RESTError{
		Message: &discordgo.APIErrorMessage{Code: discordgo.ErrCodeCannotSendMessagesToThisUser},
	}

	result, err := mgr.Close(context.Background(), p, CloseRequest{
		GuildID:   "g1",
		ChannelID: "chan-1",
		ActorID:   "staff-a",
		ActorName: "staff-a",
	})
	require.NoError(t, err)
	require.Nil(t, result.Rejection)
	assert.True(t, result.DMFailed)

	// A closed DM door never blocks closure.
	ticket, err := store.TicketByChannel("chan-1")
	require.NoError(t, err)
	assert.Equal(t, types.StatusClosed, ticket.Status)
	assert.Contains(t, p.deleted, "chan-1")
	assert.NotEmpty(t, p.messages["log-chan"])
}

func TestCloseByCreator(t *testing.T) {
	mgr, store, p := testManager(t)
	configureGuild(t, store)
	openTicket(t, mgr, store, p, "chan-1", "alice")

	result, err := mgr.Close(context.Background(), p, CloseRequest{
		GuildID:   "g1",
		ChannelID: "chan-1",
		ActorID:   "alice",
		ActorName: "alice",
	})
	require.NoError(t, err)
	assert.Nil(t, result.Rejection)
}

func TestCloseRejectsOutsiders(t *testing.T) {
	mgr, store, p := testManager(t)
	configureGuild(t, store)
	openTicket(t, mgr, store, p, "chan-1", "alice")
	p.members["rando"] = plainMember("rando")

	result, err := mgr.Close(context.Background(), p, CloseRequest{
		GuildID:   "g1",
		ChannelID: "chan-1",
		ActorID:   "rando",
		ActorName: "rando",
	})
	require.NoError(t, err)
	require.NotNil(t, result.Rejection)
	assert.Equal(t, RejectNotPermitted, result.Rejection.Reason)

	ticket, err := store.TicketByChannel("chan-1")
	require.NoError(t, err)
	assert.Equal(t, types.StatusOpen, ticket.Status)
}

func TestCloseSkipsRatingWhenAlreadyRated(t *testing.T) {
	mgr, store, p := testManager(t)
	configureGuild(t, store)
	ticket := openTicket(t, mgr, store, p, "chan-1", "alice")

	require.NoError(t, store.InsertRating(&types.TicketRating{
		GuildID:      "g1",
		TicketNumber: ticket.Number,
		UserID:       "alice",
		Rating:       4,
		CreatedAt:    time.Now().UTC(),
	}))

	result, err := mgr.Close(context.Background(), p, CloseRequest{
		GuildID:   "g1",
		ChannelID: "chan-1",
		ActorID:   "alice",
		ActorName: "alice",
	})
	require.NoError(t, err)
	require.Nil(t, result.Rejection)
	assert.True(t, result.RatingSkipped)
}

// --- membership ---

func TestAddAndRemoveUser(t *testing.T) {
	mgr, store, p := testManager(t)
	configureGuild(t, store)
	openTicket(t, mgr, store, p, "chan-1", "alice")

	result, err := mgr.AddUser(context.Background(), p, "g1", "chan-1", staffMember("staff-a"), "carol")
	require.NoError(t, err)
	require.Nil(t, result.Rejection)
	assert.Contains(t, p.permSets, "chan-1/carol")

	result, err = mgr.RemoveUser(context.Background(), p, "g1", "chan-1", staffMember("staff-a"), "carol")
	require.NoError(t, err)
	require.Nil(t, result.Rejection)
	assert.Contains(t, p.permDeletes, "chan-1/carol")
}

func TestRenameKeepsPriorityMarker(t *testing.T) {
	mgr, store, p := testManager(t)
	configureGuild(t, store)
	openTicket(t, mgr, store, p, "chan-1", "alice")

	result, finalName, err := mgr.Rename(context.Background(), p, "g1", "chan-1", staffMember("staff-a"), "Billing Problem!!")
	require.NoError(t, err)
	require.Nil(t, result.Rejection)
	assert.Equal(t, "🟡-billing-problem", finalName)
	assert.Equal(t, finalName, p.channels["chan-1"].Name)
}

func TestRenameClampsMarkedName(t *testing.T) {
	mgr, store, p := testManager(t)
	configureGuild(t, store)
	openTicket(t, mgr, store, p, "chan-1", "alice")

	long := strings.Repeat("a", 150)
	result, finalName, err := mgr.Rename(context.Background(), p, "g1", "chan-1", staffMember("staff-a"), long)
	require.NoError(t, err)
	require.Nil(t, result.Rejection)
	assert.Equal(t, 100, len([]rune(finalName)), "marker plus name stays within the channel-name limit")
	assert.True(t, strings.HasPrefix(finalName, "🟡-"))
}

// --- support access ---

func TestHasSupportAccessAdditionalRoles(t *testing.T) {
	mgr, store, _ := testManager(t)
	configureGuild(t, store)
	_, err := store.AddSupportRole("g1", "extra-role")
	require.NoError(t, err)

	member := &discordgo.Member{
		User:  &discordgo.User{ID: "helper"},
		Roles: []string{"extra-role"},
	}
	ok, err := mgr.HasSupportAccess("g1", member)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = mgr.HasSupportAccess("g1", plainMember("rando"))
	require.NoError(t, err)
	assert.False(t, ok)
}
