package handlers

import (
	"context"
	"errors"
	"sync"
	"testing"

	"looseroles/roles"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGuild struct {
	mu          sync.Mutex
	memberRoles map[string][]string
	removed     []string
	dms         map[string][]string
	addErr      error
}

func newFakeGuild() *fakeGuild {
	return &fakeGuild{memberRoles: map[string][]string{}, dms: map[string][]string{}}
}

func (f *fakeGuild) GuildMemberRoleAdd(guildID, userID, roleID string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addErr != nil {
		return f.addErr
	}
	f.memberRoles[userID] = append(f.memberRoles[userID], roleID)
	return nil
}

func (f *fakeGuild) GuildMemberRoleRemove(guildID, userID, roleID string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	var kept []string
	for _, id := range f.memberRoles[userID] {
		if id != roleID {
			kept = append(kept, id)
		}
	}
	f.memberRoles[userID] = kept
	return nil
}

func (f *fakeGuild) GuildMember(guildID, userID string, _ ...discordgo.RequestOption) (*discordgo.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &discordgo.Member{
		User:  &discordgo.User{ID: userID},
		Roles: append([]string(nil), f.memberRoles[userID]...),
	}, nil
}

func (f *fakeGuild) MessageReactionRemove(channelID, messageID, emojiID, userID string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, emojiID+"/"+userID)
	return nil
}

func (f *fakeGuild) UserChannelCreate(recipientID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	return &discordgo.Channel{ID: "dm-" + recipientID}, nil
}

func (f *fakeGuild) ChannelMessageSend(channelID, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dms[channelID] = append(f.dms[channelID], content)
	return &discordgo.Message{ChannelID: channelID, Content: content}, nil
}

func (f *fakeGuild) heldRoles(userID string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.memberRoles[userID]...)
}

type staticNames map[uint64]string

func (n staticNames) RoleName(_ context.Context, _ string, roleID uint64) string {
	return n[roleID]
}

func newTestReactionHandler(t *testing.T, guild *fakeGuild, dms bool) *reactionHandler {
	t.Helper()
	reg, err := roles.LoadEmotes([]roles.EmoteBinding{
		{Emoji: "🔥", RoleID: "300"},
		{Emoji: "<:parrot:55>", RoleID: "400"},
	})
	require.NoError(t, err)

	return &reactionHandler{
		registry: func() (*roles.Registry, error) { return reg, nil },
		tracked: func(messageID string) (bool, error) {
			return messageID == "tracked", nil
		},
		toggler:   roles.NewToggler(guild, guild),
		names:     staticNames{300: "Fire", 400: "Parrot"},
		remover:   guild,
		messenger: guild,
		sendDMs:   func() bool { return dms },
	}
}

func reaction(messageID, emoji string) *discordgo.MessageReaction {
	return &discordgo.MessageReaction{
		UserID:    "u1",
		MessageID: messageID,
		ChannelID: "c1",
		GuildID:   "g1",
		Emoji:     discordgo.Emoji{Name: emoji},
	}
}

func TestReactionAddGrantsAndRemoveRevokes(t *testing.T) {
	guild := newFakeGuild()
	h := newTestReactionHandler(t, guild, true)

	res, err := h.handle("bot", reaction("tracked", "🔥"), nil, true)
	require.NoError(t, err)
	assert.Equal(t, roles.Granted, res.Action)
	assert.Equal(t, []string{"300"}, guild.heldRoles("u1"))

	res, err = h.handle("bot", reaction("tracked", "🔥"), nil, false)
	require.NoError(t, err)
	assert.Equal(t, roles.Revoked, res.Action)
	assert.Empty(t, guild.heldRoles("u1"))

	assert.Equal(t, []string{"Role **Fire** added.", "Role **Fire** removed."}, guild.dms["dm-u1"])
}

func TestReactionAddIsIdempotent(t *testing.T) {
	guild := newFakeGuild()
	guild.memberRoles["u1"] = []string{"300"}
	h := newTestReactionHandler(t, guild, true)

	res, err := h.handle("bot", reaction("tracked", "🔥"), nil, true)
	require.NoError(t, err)
	assert.Equal(t, roles.Unchanged, res.Action)
	assert.Equal(t, []string{"300"}, guild.heldRoles("u1"))
	assert.Empty(t, guild.dms)
}

func TestCustomEmoteMatchesByName(t *testing.T) {
	guild := newFakeGuild()
	h := newTestReactionHandler(t, guild, false)

	r := reaction("tracked", "parrot")
	r.Emoji.ID = "55"
	res, err := h.handle("bot", r, nil, true)
	require.NoError(t, err)
	assert.Equal(t, uint64(400), res.Entry.RoleID)
	assert.Equal(t, []string{"400"}, guild.heldRoles("u1"))
}

func TestUnknownEmoteIsRemovedWithAdvisory(t *testing.T) {
	guild := newFakeGuild()
	h := newTestReactionHandler(t, guild, false)

	_, err := h.handle("bot", reaction("tracked", "💧"), nil, true)
	assert.ErrorIs(t, err, roles.ErrTokenNotFound)
	assert.Equal(t, []string{"💧/u1"}, guild.removed)
	require.Len(t, guild.dms["dm-u1"], 1)
	assert.Contains(t, guild.dms["dm-u1"][0], "Role not found")
	assert.Empty(t, guild.heldRoles("u1"))
}

func TestUnknownEmoteRemovalIsNotCleanedUp(t *testing.T) {
	guild := newFakeGuild()
	h := newTestReactionHandler(t, guild, false)

	_, err := h.handle("bot", reaction("tracked", "💧"), nil, false)
	assert.ErrorIs(t, err, roles.ErrTokenNotFound)
	assert.Empty(t, guild.removed)
	assert.Empty(t, guild.dms)
}

func TestIgnoredReactions(t *testing.T) {
	guild := newFakeGuild()
	h := newTestReactionHandler(t, guild, true)

	own := reaction("tracked", "🔥")
	own.UserID = "bot"
	_, err := h.handle("bot", own, nil, true)
	require.NoError(t, err)

	_, err = h.handle("bot", reaction("elsewhere", "💧"), nil, true)
	require.NoError(t, err)

	assert.Empty(t, guild.heldRoles("u1"))
	assert.Empty(t, guild.removed)
	assert.Empty(t, guild.dms)
}

func TestReactionRemoteFailure(t *testing.T) {
	guild := newFakeGuild()
	guild.addErr = errors.New("missing permissions")
	h := newTestReactionHandler(t, guild, true)

	_, err := h.handle("bot", reaction("tracked", "🔥"), nil, true)
	var remoteErr *roles.RemoteError
	assert.ErrorAs(t, err, &remoteErr)
	assert.Empty(t, guild.dms)
}

func TestReactionWithoutLoadedRoles(t *testing.T) {
	guild := newFakeGuild()
	h := newTestReactionHandler(t, guild, true)
	h.registry = func() (*roles.Registry, error) { return nil, roles.ErrEmptyRegistry }

	_, err := h.handle("bot", reaction("tracked", "🔥"), nil, true)
	assert.ErrorIs(t, err, roles.ErrEmptyRegistry)
	assert.Empty(t, guild.removed)
}
