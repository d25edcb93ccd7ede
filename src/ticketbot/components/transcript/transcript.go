// Package transcript renders a ticket channel's history as a
// deterministic plain-text export and delivers it to users by DM.
package transcript

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

const fetchPageSize = 100

// HistoryFetcher is the slice of the session API needed to page through
// a channel's full message history.
type HistoryFetcher interface {
	ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, options ...discordgo.RequestOption) ([]*discordgo.Message, error)
}

// Sender is the slice of the session API needed for DM delivery.
type Sender interface {
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// FetchHistory retrieves the complete message history of a channel,
// oldest first. The gateway returns pages newest-first; they are reversed
// after the final page.
func FetchHistory(f HistoryFetcher, channelID string) ([]*discordgo.Message, error) {
	var all []*discordgo.Message
	beforeID := ""
	for {
		page, err := f.ChannelMessages(channelID, fetchPageSize, beforeID, "", "")
		if err != nil {
			return nil, fmt.Errorf("fetch history page: %w", err)
		}
		if len(page) == 0 {
			break
		}
		all = append(all, page...)
		beforeID = page[len(page)-1].ID
		if len(page) < fetchPageSize {
			break
		}
	}
	// newest-first -> oldest-first
	for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
		all[i], all[j] = all[j], all[i]
	}
	return all, nil
}

// Generate renders messages (oldest first) into the transcript format:
// one line per message as "[timestamp] author (id): content", with
// attachment URLs and an embed count appended when present. Output is a
// pure function of its input, so repeated invocations over the same
// history are byte-identical.
func Generate(channelName string, messages []*discordgo.Message) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Transcript for #%s\n", channelName)
	buf.WriteString(strings.Repeat("=", 50) + "\n\n")

	for _, m := range messages {
		ts := m.Timestamp.UTC().Format("2006-01-02 15:04:05")
		author := "Unknown"
		authorID := "?"
		if m.Author != nil {
			author = m.Author.Username
			authorID = m.Author.ID
		}
		content := m.Content
		if content == "" {
			content = "[No content]"
		}
		fmt.Fprintf(&buf, "[%s] %s (%s): %s", ts, author, authorID, content)
		if len(m.Attachments) > 0 {
			urls := make([]string, 0, len(m.Attachments))
			for _, a := range m.Attachments {
				urls = append(urls, a.URL)
			}
			fmt.Fprintf(&buf, "\nAttachments: %s", strings.Join(urls, ", "))
		}
		if len(m.Embeds) > 0 {
			fmt.Fprintf(&buf, "\n[%d embed(s)]", len(m.Embeds))
		}
		buf.WriteString("\n")
	}
	return buf.String()
}

// Export fetches the full history and renders it.
func Export(f HistoryFetcher, channelID, channelName string) (string, error) {
	history, err := FetchHistory(f, channelID)
	if err != nil {
		return "", err
	}
	return Generate(channelName, history), nil
}

// IsDMDisabled reports whether a delivery failure means the recipient has
// DMs disabled. That case is expected and benign; anything else is a real
// delivery error.
func IsDMDisabled(err error) bool {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Message != nil {
		return restErr.Message.Code == discordgo.ErrCodeCannotSendMessagesToThisUser
	}
	return false
}

// SendDM delivers a transcript to a user as a file attachment with a
// short cover embed.
func SendDM(s Sender, userID, channelName, transcriptText string, embed *discordgo.MessageEmbed) error {
	dm, err := s.UserChannelCreate(userID)
	if err != nil {
		return fmt.Errorf("open dm channel: %w", err)
	}
	msg := &discordgo.MessageSend{
		Files: []*discordgo.File{{
			Name:        fmt.Sprintf("%s-transcript.txt", channelName),
			ContentType: "text/plain",
			Reader:      strings.NewReader(transcriptText),
		}},
	}
	if embed != nil {
		msg.Embed = embed
	}
	if _, err := s.ChannelMessageSendComplex(dm.ID, msg); err != nil {
		return err
	}
	return nil
}
