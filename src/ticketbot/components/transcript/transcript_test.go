package transcript

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeHistory serves a fixed message log newest-first with before-style
// paging, mimicking the REST API.
type fakeHistory struct {
	messages []*discordgo.Message // newest first
	calls    int
}

func (f *fakeHistory) ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, options ...discordgo.RequestOption) ([]*discordgo.Message, error) {
	f.calls++
	start := 0
	if beforeID != "" {
		for n, m := range f.messages {
			if m.ID == beforeID {
				start = n + 1
				break
			}
		}
	}
	end := start + limit
	if end > len(f.messages) {
		end = len(f.messages)
	}
	if start >= len(f.messages) {
		return nil, nil
	}
	return f.messages[start:end], nil
}

func makeMessages(count int) []*discordgo.Message {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	msgs := make([]*discordgo.Message, 0, count)
	// Newest first, like the API.
	for n := count; n >= 1; n-- {
		msgs = append(msgs, &discordgo.Message{
			ID:        strconv.Itoa(n),
			Content:   fmt.Sprintf("message %d", n),
			Timestamp: base.Add(time.Duration(n) * time.Minute),
			Author:    &discordgo.User{ID: "u1", Username: "alice"},
		})
	}
	return msgs
}

func TestFetchHistoryReturnsOldestFirst(t *testing.T) {
	fake := &fakeHistory{messages: makeMessages(250)}

	history, err := FetchHistory(fake, "chan-1")
	require.NoError(t, err)
	require.Len(t, history, 250)

	assert.Equal(t, "1", history[0].ID)
	assert.Equal(t, "250", history[249].ID)
	assert.GreaterOrEqual(t, fake.calls, 3, "250 messages need multiple pages")

	for n := 1; n < len(history); n++ {
		assert.True(t, history[n].Timestamp.After(history[n-1].Timestamp),
			"history must be chronological")
	}
}

func TestFetchHistoryEmptyChannel(t *testing.T) {
	fake := &fakeHistory{}
	history, err := FetchHistory(fake, "chan-1")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestGenerateFormat(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
	messages := []*discordgo.Message{
		{
			Content:   "hello",
			Timestamp: ts,
			Author:    &discordgo.User{ID: "u1", Username: "alice"},
		},
		{
			Timestamp: ts.Add(time.Minute),
			Author:    &discordgo.User{ID: "u2", Username: "bob"},
			Attachments: []*discordgo.MessageAttachment{
				{URL: "https://cdn.example/a.png"},
				{URL: "https://cdn.example/b.png"},
			},
			Embeds: []*discordgo.MessageEmbed{{Title: "x"}},
		},
	}

	out := Generate("ticket-0001", messages)

	lines := strings.Split(out, "\n")
	assert.Equal(t, "Transcript for #ticket-0001", lines[0])
	assert.Equal(t, strings.Repeat("=", 50), lines[1])
	assert.Contains(t, out, "[2025-06-01 12:30:00] alice (u1): hello")
	assert.Contains(t, out, "bob (u2): [No content]")
	assert.Contains(t, out, "Attachments: https://cdn.example/a.png, https://cdn.example/b.png")
	assert.Contains(t, out, "[1 embed(s)]")
}

func TestGenerateIsDeterministic(t *testing.T) {
	messages := makeMessages(20)

	first := Generate("ticket-0002", messages)
	second := Generate("ticket-0002", messages)
	assert.Equal(t, first, second, "same history must render byte-identical")
}

func TestIsDMDisabled(t *testing.T) {
	dmClosed := &discordgo.RESTError{
		Message: &discordgo.APIErrorMessage{Code: discordgo.ErrCodeCannotSendMessagesToThisUser},
	}
	assert.True(t, IsDMDisabled(dmClosed))

	other := &discordgo.RESTError{
		Message:  &discordgo.APIErrorMessage{Code: discordgo.ErrCodeMissingPermissions},
		Response: &http.Response{StatusCode: http.StatusForbidden},
	}
	assert.False(t, IsDMDisabled(other))
	assert.False(t, IsDMDisabled(fmt.Errorf("plain error")))
	assert.False(t, IsDMDisabled(nil))
}

type fakeSender struct {
	dmUser  string
	sent    []*discordgo.MessageSend
	sendErr error
}

func (f *fakeSender) UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error) {
	f.dmUser = recipientID
	return &discordgo.Channel{ID: "dm-1"}, nil
}

func (f *fakeSender) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.sent = append(f.sent, data)
	return &discordgo.Message{ID: "m-1"}, nil
}

func TestSendDMAttachesTranscript(t *testing.T) {
	fake := &fakeSender{}
	embed := &discordgo.MessageEmbed{Title: "closed"}

	err := SendDM(fake, "u1", "ticket-0003", "transcript body", embed)
	require.NoError(t, err)

	assert.Equal(t, "u1", fake.dmUser)
	require.Len(t, fake.sent, 1)
	require.Len(t, fake.sent[0].Files, 1)
	assert.Equal(t, "ticket-0003-transcript.txt", fake.sent[0].Files[0].Name)
	assert.Equal(t, embed, fake.sent[0].Embed)
}
