package roles

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/bwmarrin/discordgo"
	lru "github.com/hashicorp/golang-lru/v2"
)

// RoleLister lists a guild's roles. *discordgo.Session implements it.
type RoleLister interface {
	GuildRoles(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Role, error)
}

// NameCache resolves role IDs to display names, fetching the guild's role
// list on a miss.
type NameCache struct {
	lister RoleLister
	cache  *lru.Cache[string, string]
}

func NewNameCache(lister RoleLister, size int) (*NameCache, error) {
	cache, err := lru.New[string, string](size)
	if err != nil {
		return nil, err
	}
	return &NameCache{lister: lister, cache: cache}, nil
}

func cacheKey(guildID, roleID string) string {
	return guildID + ":" + roleID
}

// RoleName returns the display name of a role, or its ID when the role
// cannot be found.
func (c *NameCache) RoleName(ctx context.Context, guildID string, roleID uint64) string {
	id := strconv.FormatUint(roleID, 10)
	key := cacheKey(guildID, id)
	if name, ok := c.cache.Get(key); ok {
		return name
	}

	guildRoles, err := c.lister.GuildRoles(guildID, discordgo.WithContext(ctx))
	if err != nil {
		slog.Warn("could not fetch guild roles", "guild_id", guildID, "error", err)
		return id
	}
	for _, r := range guildRoles {
		c.cache.Add(cacheKey(guildID, r.ID), r.Name)
	}
	if name, ok := c.cache.Get(key); ok {
		return name
	}
	return id
}

// Purge drops every cached name.
func (c *NameCache) Purge() {
	c.cache.Purge()
}

// Len reports how many names are cached.
func (c *NameCache) Len() int {
	return c.cache.Len()
}
