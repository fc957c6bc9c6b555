package roles

import (
	"context"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNameCacheFetchesOncePerGuild(t *testing.T) {
	fd := newFakeDiscord()
	fd.guildRoles = []*discordgo.Role{{ID: "1", Name: "Alpha"}, {ID: "2", Name: "Bravo"}}
	nc, err := NewNameCache(fd, 64)
	require.NoError(t, err)
	ctx := context.Background()

	assert.Equal(t, "Alpha", nc.RoleName(ctx, "g", 1))
	assert.Equal(t, "Bravo", nc.RoleName(ctx, "g", 2))
	assert.Equal(t, 1, fd.guildRoleCalls)

	// Unknown roles fall back to the ID.
	assert.Equal(t, "3", nc.RoleName(ctx, "g", 3))
	assert.Equal(t, 2, fd.guildRoleCalls)

	nc.Purge()
	assert.Zero(t, nc.Len())
	assert.Equal(t, "Alpha", nc.RoleName(ctx, "g", 1))
	assert.Equal(t, 3, fd.guildRoleCalls)
}

func TestNameCacheFetchError(t *testing.T) {
	fd := newFakeDiscord()
	nc, err := NewNameCache(fd, 8)
	require.NoError(t, err)

	assert.Equal(t, "42", nc.RoleName(context.Background(), "g", 42))
}

func TestNewNameCacheRejectsBadSize(t *testing.T) {
	_, err := NewNameCache(newFakeDiscord(), 0)
	assert.Error(t, err)
}
