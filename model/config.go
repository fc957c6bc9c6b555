package model

import "time"

// EmoteRoleConfig is one emote -> role pair from the settings file.
type EmoteRoleConfig struct {
	Emote  string `mapstructure:"emote" json:"emote"`
	RoleID string `mapstructure:"roleId" json:"roleId"`
}

// Config holds the bot configuration.
type Config struct {
	BotToken      string
	GuildID       string
	RoleIDs       []string
	EmoteRoles    []EmoteRoleConfig
	AdminRoleIDs  []string
	LogChannelID  string
	Status        string
	ReactionDMs   bool
	DatabasePath  string
	PruneInterval time.Duration
	LogLevel      string
}
