package bot

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"testing"

	"looseroles/model"
	"looseroles/roles"
	"looseroles/utils/database"

	"github.com/bwmarrin/discordgo"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := database.Init(filepath.Join(t.TempDir(), "bot.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func testConfig() *model.Config {
	return &model.Config{
		BotToken: "token",
		GuildID:  "g",
		RoleIDs:  []string{"111", "abc", "222"},
		EmoteRoles: []model.EmoteRoleConfig{
			{Emote: "🔥", RoleID: "300"},
			{Emote: "💧", RoleID: "400"},
		},
	}
}

func TestEmoteBindingsStoredBindingsWin(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, database.UpsertEmoteRole(db, "🔥", 999))
	require.NoError(t, database.UpsertEmoteRole(db, "parrot:5", 500))

	bindings, err := EmoteBindings(testConfig(), db)
	require.NoError(t, err)

	reg, err := roles.LoadEmotes(bindings)
	require.NoError(t, err)
	assert.Equal(t, []string{"🔥", "💧", "parrot"}, reg.Tokens())
	id, err := reg.Resolve("🔥")
	require.NoError(t, err)
	assert.Equal(t, uint64(999), id)
}

func TestLoadRegistries(t *testing.T) {
	buttons, reactions, report := LoadRegistries(testConfig(), nil)
	require.NoError(t, report.ButtonErr)
	require.NoError(t, report.ReactionErr)
	assert.Equal(t, []string{"111", "222"}, buttons.Tokens())
	assert.Equal(t, 2, reactions.Len())
	assert.Equal(t, 2, report.Buttons)

	cfg := testConfig()
	cfg.RoleIDs = []string{"nope"}
	cfg.EmoteRoles = nil
	_, _, report = LoadRegistries(cfg, nil)
	assert.ErrorIs(t, report.ButtonErr, roles.ErrEmptyRegistry)
	assert.ErrorIs(t, report.ReactionErr, roles.ErrEmptyRegistry)
	assert.Contains(t, report.String(), "Button roles:")
}

func TestReloadReplacesRegistries(t *testing.T) {
	db := openTestDB(t)
	b, err := New(testConfig(), db)
	require.NoError(t, err)

	// Nothing is loaded until first use.
	assert.False(t, b.ButtonRoles.Loaded())
	reg, err := b.ButtonRegistry()
	require.NoError(t, err)
	assert.Equal(t, 2, reg.Len())

	fixed := testConfig()
	fixed.RoleIDs = []string{"333"}
	b.SetConfig(fixed)
	reg, err = b.ButtonRegistry()
	require.NoError(t, err)
	assert.Equal(t, []string{"333"}, reg.Tokens())
	assert.Same(t, fixed, b.GetConfig())
}

func TestReloadToEmptyConfigFailsClosed(t *testing.T) {
	b, err := New(testConfig(), openTestDB(t))
	require.NoError(t, err)
	b.ReloadRoles()

	cleared := testConfig()
	cleared.RoleIDs = nil
	b.SetConfig(cleared)
	_, err = b.ButtonRegistry()
	assert.ErrorIs(t, err, roles.ErrEmptyRegistry)

	unparsable := testConfig()
	unparsable.RoleIDs = []string{"abc"}
	b.SetConfig(unparsable)
	_, err = b.ButtonRegistry()
	assert.ErrorIs(t, err, roles.ErrEmptyRegistry)
}

func TestUnbindingLastEmoteClearsReactionRoles(t *testing.T) {
	cfg := testConfig()
	cfg.EmoteRoles = nil
	b, err := New(cfg, openTestDB(t))
	require.NoError(t, err)

	require.NoError(t, database.UpsertEmoteRole(b.DB, "🔥", 300))
	report := b.ReloadRoles()
	assert.Equal(t, 1, report.Reactions)

	require.NoError(t, database.DeleteEmoteRole(b.DB, "🔥"))
	report = b.ReloadRoles()
	assert.Zero(t, report.Reactions)
	assert.ErrorIs(t, report.ReactionErr, roles.ErrEmptyRegistry)
	assert.False(t, report.ReactionsKept)

	_, err = b.ReactionRegistry()
	assert.ErrorIs(t, err, roles.ErrEmptyRegistry)
}

func TestReloadKeepsReactionsWhenStoreUnreadable(t *testing.T) {
	db := openTestDB(t)
	b, err := New(testConfig(), db)
	require.NoError(t, err)
	require.NoError(t, database.UpsertEmoteRole(db, "parrot:5", 500))
	require.Equal(t, 3, b.ReloadRoles().Reactions)

	require.NoError(t, db.Close())
	report := b.ReloadRoles()
	assert.True(t, report.ReactionsKept)
	assert.Error(t, report.ReactionErr)
	assert.Equal(t, 3, report.Reactions)
	assert.Contains(t, report.String(), "Previous reaction roles were kept.")

	reg, err := b.ReactionRegistry()
	require.NoError(t, err)
	id, ok := reg.Lookup("parrot")
	assert.True(t, ok)
	assert.Equal(t, uint64(500), id)

	// Buttons come from the configuration alone and are still replaced.
	assert.Equal(t, 2, report.Buttons)
}

func TestEnsureRolesLoadsOnce(t *testing.T) {
	cfg := testConfig()
	cfg.EmoteRoles = nil
	b, err := New(cfg, openTestDB(t))
	require.NoError(t, err)

	_, err = b.ButtonRegistry()
	require.NoError(t, err)
	assert.True(t, b.ReactionRoles.Loaded())

	// An empty reaction registry counts as loaded, so this binding stays
	// invisible until an explicit reload.
	require.NoError(t, database.UpsertEmoteRole(b.DB, "🔥", 1))
	b.EnsureRoles()
	_, err = b.ReactionRegistry()
	assert.ErrorIs(t, err, roles.ErrEmptyRegistry)

	b.ReloadRoles()
	reg, err := b.ReactionRegistry()
	require.NoError(t, err)
	assert.Equal(t, 1, reg.Len())
}

func TestRegistryFailsClosedWhenNothingLoads(t *testing.T) {
	cfg := testConfig()
	cfg.RoleIDs = nil
	cfg.EmoteRoles = nil
	b, err := New(cfg, openTestDB(t))
	require.NoError(t, err)

	_, err = b.ButtonRegistry()
	assert.ErrorIs(t, err, roles.ErrEmptyRegistry)
	_, err = b.ReactionRegistry()
	assert.ErrorIs(t, err, roles.ErrEmptyRegistry)
}

type fakeFetcher struct {
	missing map[string]bool
	broken  map[string]bool
}

func (f fakeFetcher) ChannelMessage(channelID, messageID string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	if f.missing[messageID] {
		return nil, &discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusNotFound}}
	}
	if f.broken[messageID] {
		return nil, errors.New("connection reset")
	}
	return &discordgo.Message{ID: messageID, ChannelID: channelID}, nil
}

func TestPruneSelfAssignMessages(t *testing.T) {
	db := openTestDB(t)
	for _, id := range []string{"live", "gone", "flaky"} {
		require.NoError(t, database.AddSelfAssignMessage(db, model.SelfAssignMessage{
			MessageID: id, ChannelID: "c", GuildID: "g", Kind: model.KindReactions,
		}))
	}

	pruned, err := PruneSelfAssignMessages(context.Background(), db, fakeFetcher{
		missing: map[string]bool{"gone": true},
		broken:  map[string]bool{"flaky": true},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, pruned)

	left, err := database.GetSelfAssignMessages(db)
	require.NoError(t, err)
	ids := make([]string, 0, len(left))
	for _, m := range left {
		ids = append(ids, m.MessageID)
	}
	assert.ElementsMatch(t, []string{"live", "flaky"}, ids)
}

func TestPruneStopsOnCancel(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, database.AddSelfAssignMessage(db, model.SelfAssignMessage{MessageID: "m", ChannelID: "c", GuildID: "g", Kind: model.KindButtons}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := PruneSelfAssignMessages(ctx, db, fakeFetcher{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSchedulerStopWithoutStart(t *testing.T) {
	b, err := New(testConfig(), openTestDB(t))
	require.NoError(t, err)
	b.scheduler.Stop()
	b.scheduler.Stop()
}

func TestNewRequestsNoPrivilegedIntents(t *testing.T) {
	b, err := New(testConfig(), openTestDB(t))
	require.NoError(t, err)

	intents := b.Session.Identify.Intents
	assert.NotZero(t, intents&discordgo.IntentsGuildMessageReactions)
	assert.Zero(t, intents&discordgo.IntentsGuildMembers)
	assert.Zero(t, intents&discordgo.IntentsGuildPresences)
	assert.Zero(t, intents&discordgo.IntentsMessageContent)
}
