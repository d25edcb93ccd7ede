package discord

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/codexdev/ticketbot/src/ticketbot/types"
)

func TestSanitizeChannelName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Billing Problem", "billing-problem"},
		{"HELP!!! now", "help-now"},
		{"a!b", "ab"},
		{"--weird---name--", "weird-name"},
		{"_edge_case_", "edge_case"},
		{"émojis and ünicode", "mojis-and-nicode"},
		{"already-fine_123", "already-fine_123"},
		{"***", "ticket-channel"},
		{"", "ticket-channel"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, SanitizeChannelName(c.in), "input %q", c.in)
	}
}

func TestSanitizeChannelNameCapsLength(t *testing.T) {
	long := strings.Repeat("a", 300)
	assert.Len(t, SanitizeChannelName(long), 100)
}

func TestClampChannelNameCountsRunes(t *testing.T) {
	long := "🟡-" + strings.Repeat("a", 150)
	clamped := ClampChannelName(long)
	assert.Equal(t, 100, len([]rune(clamped)))
	assert.True(t, strings.HasPrefix(clamped, "🟡-"), "marker survives clamping")

	assert.Equal(t, "🟡-short", ClampChannelName("🟡-short"))
}

func TestTicketChannelName(t *testing.T) {
	assert.Equal(t, "🟡-ticket-0007", TicketChannelName(types.PriorityMedium, 7))
	assert.Equal(t, "🔴-ticket-1234", TicketChannelName(types.PriorityCritical, 1234))
}

func TestPriorityMarkerRoundTrip(t *testing.T) {
	name := TicketChannelName(types.PriorityLow, 3)
	assert.Equal(t, "ticket-0003", StripPriorityMarker(name))

	// Swapping markers never stacks them.
	renamed := WithPriorityMarker(types.PriorityHigh, name)
	assert.Equal(t, "🟠-ticket-0003", renamed)
	renamed = WithPriorityMarker(types.PriorityCritical, renamed)
	assert.Equal(t, "🔴-ticket-0003", renamed)
}

func TestStripPriorityMarkerLeavesPlainNames(t *testing.T) {
	assert.Equal(t, "general-chat", StripPriorityMarker("general-chat"))
}
