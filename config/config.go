package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"looseroles/model"
	"looseroles/utils"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultPath is the settings file read when no path is given.
const DefaultPath = "appsettings.json"

var (
	ErrMissingToken = errors.New("discord token is not set (discord.token, DISCORD_TOKEN or BOT_TOKEN)")
	ErrMissingGuild = errors.New("discord guild id is not set (discord.guildId or DISCORD_GUILDID)")
)

// Loader reads the configuration from a JSON settings file, a .env file and
// the environment. Environment variables override the file, with "_" in
// place of the "." key separator (DISCORD_GUILDID for discord.guildId).
type Loader struct {
	v    *viper.Viper
	path string
}

// NewLoader prepares a loader for the settings file at path.
func NewLoader(path string) *Loader {
	if path == "" {
		path = DefaultPath
	}
	if err := godotenv.Load(); err != nil {
		slog.Info(".env file not found, relying on environment variables")
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("discord.token", "DISCORD_TOKEN", "BOT_TOKEN")

	v.SetDefault("discord.status", "over roles 👀")
	v.SetDefault("discord.reactionDMs", true)
	v.SetDefault("database.path", "data/looseroles.db")
	v.SetDefault("scheduler.pruneInterval", "6h")
	v.SetDefault("log.level", "info")

	return &Loader{v: v, path: path}
}

// Path returns the settings file path.
func (l *Loader) Path() string { return l.path }

// Load reads the settings file and returns the resulting configuration.
// A missing settings file is not an error as long as the environment
// supplies the required keys.
func (l *Loader) Load() (*model.Config, error) {
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error reading %s: %w", l.path, err)
		}
		slog.Warn("config file not found, relying on environment variables", "path", l.path)
	}
	return l.build()
}

// Watch calls onChange with the new configuration every time the settings
// file changes. Invalid configurations are logged and ignored.
func (l *Loader) Watch(onChange func(*model.Config)) {
	l.v.OnConfigChange(func(e fsnotify.Event) {
		slog.Info("config file changed", "path", e.Name, "op", e.Op.String())
		cfg, err := l.build()
		if err != nil {
			slog.Error("ignoring invalid configuration", "error", err)
			return
		}
		onChange(cfg)
	})
	l.v.WatchConfig()
}

func (l *Loader) build() (*model.Config, error) {
	cfg := &model.Config{
		BotToken:     strings.TrimSpace(l.v.GetString("discord.token")),
		GuildID:      strings.TrimSpace(l.v.GetString("discord.guildId")),
		RoleIDs:      stringList(l.v.Get("discord.roleIds")),
		AdminRoleIDs: stringList(l.v.Get("discord.adminRoleIds")),
		LogChannelID: l.v.GetString("discord.logChannelId"),
		Status:       l.v.GetString("discord.status"),
		ReactionDMs:  l.v.GetBool("discord.reactionDMs"),
		DatabasePath: l.v.GetString("database.path"),
		LogLevel:     l.v.GetString("log.level"),
	}
	interval, err := utils.ParseDuration(l.v.GetString("scheduler.pruneInterval"))
	if err != nil {
		return nil, fmt.Errorf("error decoding scheduler.pruneInterval: %w", err)
	}
	cfg.PruneInterval = interval
	if err := l.v.UnmarshalKey("discord.emoteRoles", &cfg.EmoteRoles); err != nil {
		return nil, fmt.Errorf("error decoding discord.emoteRoles: %w", err)
	}

	if cfg.BotToken == "" {
		return nil, ErrMissingToken
	}
	if cfg.GuildID == "" {
		return nil, ErrMissingGuild
	}
	if cfg.LogChannelID == "" {
		slog.Warn("discord.logChannelId not set, channel logging will be disabled")
	}
	return cfg, nil
}

// stringList accepts a JSON array or a comma separated string (as supplied
// through the environment) and returns the non-empty items.
func stringList(raw interface{}) []string {
	var items []string
	switch v := raw.(type) {
	case nil:
		return nil
	case string:
		items = strings.Split(v, ",")
	case []string:
		items = v
	case []interface{}:
		for _, item := range v {
			items = append(items, fmt.Sprint(item))
		}
	default:
		items = []string{fmt.Sprint(v)}
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := strings.TrimSpace(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// LevelFromString maps a log.level value onto a slog level.
func LevelFromString(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
