package discord

import (
	"fmt"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

type fakeResolver struct {
	members map[string]*discordgo.Member
	users   map[string]*discordgo.User
}

func (f *fakeResolver) GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error) {
	if m, ok := f.members[userID]; ok {
		return m, nil
	}
	return nil, fmt.Errorf("unknown member")
}

func (f *fakeResolver) User(userID string, options ...discordgo.RequestOption) (*discordgo.User, error) {
	if u, ok := f.users[userID]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("unknown user")
}

func TestResolveActorPrefersRichestVariant(t *testing.T) {
	r := &fakeResolver{
		members: map[string]*discordgo.Member{
			"u1": {Nick: "Nicky", User: &discordgo.User{ID: "u1", Username: "alice"}},
		},
		users: map[string]*discordgo.User{
			"u1": {ID: "u1", Username: "alice"},
			"u2": {ID: "u2", Username: "bob", GlobalName: "Bobby"},
		},
	}

	member := ResolveActor(r, "g1", "u1")
	assert.Equal(t, ActorMember, member.Kind)
	assert.Equal(t, "Nicky", member.Name())

	left := ResolveActor(r, "g1", "u2")
	assert.Equal(t, ActorUser, left.Kind)
	assert.Equal(t, "Bobby", left.Name())

	gone := ResolveActor(r, "g1", "u3")
	assert.Equal(t, ActorUnknown, gone.Kind)
	assert.Equal(t, "Unknown User", gone.Name())
	assert.Equal(t, "<@u3>", gone.Mention())
}
