package roles

import (
	"errors"
	"sync"

	"github.com/bwmarrin/discordgo"
)

// fakeDiscord stands in for *discordgo.Session and keeps member roles in memory.
type fakeDiscord struct {
	mu          sync.Mutex
	memberRoles map[string][]string // userID -> role IDs
	guildRoles  []*discordgo.Role

	addCalls       int
	removeCalls    int
	sends          []*discordgo.MessageSend
	reactions      []string
	guildRoleCalls int

	addErr      error
	memberErr   error
	sendErr     error
	reactionErr error
}

func newFakeDiscord() *fakeDiscord {
	return &fakeDiscord{memberRoles: make(map[string][]string)}
}

func (f *fakeDiscord) GuildMemberRoleAdd(guildID, userID, roleID string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addCalls++
	if f.addErr != nil {
		return f.addErr
	}
	f.memberRoles[userID] = append(f.memberRoles[userID], roleID)
	return nil
}

func (f *fakeDiscord) GuildMemberRoleRemove(guildID, userID, roleID string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removeCalls++
	kept := f.memberRoles[userID][:0]
	for _, id := range f.memberRoles[userID] {
		if id != roleID {
			kept = append(kept, id)
		}
	}
	f.memberRoles[userID] = kept
	return nil
}

func (f *fakeDiscord) GuildMember(guildID, userID string, _ ...discordgo.RequestOption) (*discordgo.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.memberErr != nil {
		return nil, f.memberErr
	}
	return f.member(userID), nil
}

// member returns a snapshot; callers hold mu.
func (f *fakeDiscord) member(userID string) *discordgo.Member {
	roleIDs := append([]string(nil), f.memberRoles[userID]...)
	return &discordgo.Member{User: &discordgo.User{ID: userID}, Roles: roleIDs}
}

func (f *fakeDiscord) snapshot(userID string) *discordgo.Member {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.member(userID)
}

func (f *fakeDiscord) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends = append(f.sends, data)
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	return &discordgo.Message{ID: "msg-1", ChannelID: channelID}, nil
}

func (f *fakeDiscord) MessageReactionAdd(channelID, messageID, emojiID string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.reactionErr != nil {
		return f.reactionErr
	}
	f.reactions = append(f.reactions, emojiID)
	return nil
}

func (f *fakeDiscord) GuildRoles(guildID string, _ ...discordgo.RequestOption) ([]*discordgo.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.guildRoleCalls++
	if f.guildRoles == nil {
		return nil, errors.New("unknown guild")
	}
	return f.guildRoles, nil
}
