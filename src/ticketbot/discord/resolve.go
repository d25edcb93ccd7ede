package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

type ActorKind int

const (
	// ActorMember is a user still present in the guild.
	ActorMember ActorKind = iota
	// ActorUser left the guild but the account still exists.
	ActorUser
	// ActorUnknown could not be resolved at all; only the ID is usable.
	ActorUnknown
)

// ResolvedActor is a tagged view of a user reference. ID and mention are
// always available; display name and avatar only for resolvable kinds.
type ResolvedActor struct {
	Kind        ActorKind
	ID          string
	DisplayName string
	AvatarURL   string
}

func (a ResolvedActor) Mention() string {
	return fmt.Sprintf("<@%s>", a.ID)
}

// Name returns the display name, or a placeholder for unknown actors.
func (a ResolvedActor) Name() string {
	if a.DisplayName != "" {
		return a.DisplayName
	}
	return "Unknown User"
}

// UserResolver is the slice of the session API needed to resolve users.
type UserResolver interface {
	GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error)
	User(userID string, options ...discordgo.RequestOption) (*discordgo.User, error)
}

// ResolveActor resolves a user ID to the richest variant available:
// guild member, then bare user, then unknown.
func ResolveActor(r UserResolver, guildID, userID string) ResolvedActor {
	if guildID != "" {
		if member, err := r.GuildMember(guildID, userID); err == nil && member != nil {
			name := member.Nick
			if name == "" && member.User != nil {
				name = displayName(member.User)
			}
			return ResolvedActor{
				Kind:        ActorMember,
				ID:          userID,
				DisplayName: name,
				AvatarURL:   member.AvatarURL(""),
			}
		}
	}
	if user, err := r.User(userID); err == nil && user != nil {
		return ResolvedActor{
			Kind:        ActorUser,
			ID:          userID,
			DisplayName: displayName(user),
			AvatarURL:   user.AvatarURL(""),
		}
	}
	return ResolvedActor{Kind: ActorUnknown, ID: userID}
}

func displayName(u *discordgo.User) string {
	if u.GlobalName != "" {
		return u.GlobalName
	}
	return u.Username
}
