package discord

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/codexdev/ticketbot/src/ticketbot/types"
)

const maxChannelNameLen = 100

var (
	invalidNameChars = regexp.MustCompile(`[^a-z0-9\-_]`)
	dashRuns         = regexp.MustCompile(`-+`)
)

// SanitizeChannelName lowercases, converts spaces to dashes, removes
// everything outside [a-z0-9-_], collapses dash runs, trims dashes and
// underscores from the ends and caps the length. An empty result falls
// back to "ticket-channel".
func SanitizeChannelName(name string) string {
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, " ", "-")
	name = invalidNameChars.ReplaceAllString(name, "")
	name = dashRuns.ReplaceAllString(name, "-")
	name = strings.Trim(name, "-_")
	if len(name) > maxChannelNameLen {
		name = name[:maxChannelNameLen]
	}
	if name == "" {
		name = "ticket-channel"
	}
	return name
}

// ClampChannelName trims a channel name to Discord's length limit
// without splitting a rune. Sanitized names are already short enough;
// this guards names that grow a priority marker afterwards.
func ClampChannelName(name string) string {
	runes := []rune(name)
	if len(runes) > maxChannelNameLen {
		return string(runes[:maxChannelNameLen])
	}
	return name
}

// TicketChannelName builds the canonical channel name for a ticket:
// priority marker plus a zero-padded number.
func TicketChannelName(priority string, number int) string {
	return fmt.Sprintf("%s-ticket-%04d", types.PriorityEmoji(priority), number)
}

// StripPriorityMarker removes a leading priority marker (and its
// separator) from a channel name, returning the bare name.
func StripPriorityMarker(name string) string {
	for _, emoji := range types.AllPriorityEmojis() {
		if strings.HasPrefix(name, emoji) {
			return strings.TrimLeft(strings.TrimPrefix(name, emoji), "- ")
		}
	}
	return name
}

// WithPriorityMarker swaps any existing priority marker on a channel name
// for the given priority's marker.
func WithPriorityMarker(priority, name string) string {
	return types.PriorityEmoji(priority) + "-" + StripPriorityMarker(name)
}
