package bot

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"looseroles/commands"
	"looseroles/model"
	"looseroles/roles"
	"looseroles/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/jmoiron/sqlx"
)

const roleNameCacheSize = 512

type Bot struct {
	Session            *discordgo.Session
	DB                 *sqlx.DB
	RegisteredCommands []*discordgo.ApplicationCommand
	CommandHandlers    map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate)

	ButtonRoles   roles.Holder
	ReactionRoles roles.Holder
	Names         *roles.NameCache
	Publisher     *roles.Publisher
	Toggler       *roles.Toggler

	StartedAt time.Time

	config    atomic.Pointer[model.Config]
	reloadMu  sync.Mutex
	scheduler *Scheduler
}

func (b *Bot) GetConfig() *model.Config {
	return b.config.Load()
}

func (b *Bot) GetDB() *sqlx.DB {
	return b.DB
}

func (b *Bot) GetSession() *discordgo.Session {
	return b.Session
}

func New(cfg *model.Config, db *sqlx.DB) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, err
	}
	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMessageReactions

	names, err := roles.NewNameCache(dg, roleNameCacheSize)
	if err != nil {
		return nil, err
	}

	b := &Bot{
		Session:   dg,
		DB:        db,
		Names:     names,
		Publisher: roles.NewPublisher(dg, names),
		Toggler:   roles.NewToggler(dg, dg),
	}
	b.config.Store(cfg)
	b.scheduler = NewScheduler(b)
	return b, nil
}

// SetConfig swaps in a new configuration and reloads the role registries from it.
func (b *Bot) SetConfig(cfg *model.Config) {
	b.config.Store(cfg)
	report := b.ReloadRoles()
	slog.Info("configuration reloaded", "buttons", report.Buttons, "reactions", report.Reactions)
}

// ReloadReport summarizes a registry reload.
type ReloadReport struct {
	Buttons       int
	Reactions     int
	ButtonErr     error
	ReactionErr   error
	ReactionsKept bool // stored bindings were unreadable, previous reaction roles stay live
}

func (r ReloadReport) String() string {
	s := fmt.Sprintf("%d button roles, %d reaction roles", r.Buttons, r.Reactions)
	if r.ButtonErr != nil {
		s += fmt.Sprintf("\nButton roles: %v", r.ButtonErr)
	}
	if r.ReactionErr != nil {
		s += fmt.Sprintf("\nReaction roles: %v", r.ReactionErr)
	}
	if r.ReactionsKept {
		s += "\nPrevious reaction roles were kept."
	}
	return s
}

// ReloadRoles rebuilds both registries from the current configuration and the
// emote store and replaces them wholesale, empty ones included. The reaction
// registry is only kept when the emote store could not be read.
func (b *Bot) ReloadRoles() ReloadReport {
	b.reloadMu.Lock()
	defer b.reloadMu.Unlock()
	return b.reloadLocked()
}

func (b *Bot) reloadLocked() ReloadReport {
	buttons, reactions, report := LoadRegistries(b.GetConfig(), b.DB)
	b.ButtonRoles.Store(buttons)
	if reactions != nil {
		b.ReactionRoles.Store(reactions)
	}
	b.Names.Purge()

	report.Buttons = b.ButtonRoles.Len()
	report.Reactions = b.ReactionRoles.Len()
	return report
}

// ButtonRegistry returns the button registry, loading it first if it has
// never been loaded.
func (b *Bot) ButtonRegistry() (*roles.Registry, error) {
	return b.ensure(&b.ButtonRoles)
}

// ReactionRegistry returns the reaction registry, loading it first if it
// has never been loaded.
func (b *Bot) ReactionRegistry() (*roles.Registry, error) {
	return b.ensure(&b.ReactionRoles)
}

// EnsureRoles loads the registries unless both have been loaded before.
// An empty registry counts as loaded.
func (b *Bot) EnsureRoles() {
	if b.ButtonRoles.Loaded() && b.ReactionRoles.Loaded() {
		return
	}
	b.reloadMu.Lock()
	defer b.reloadMu.Unlock()
	if !b.ButtonRoles.Loaded() || !b.ReactionRoles.Loaded() {
		b.reloadLocked()
	}
}

func (b *Bot) ensure(h *roles.Holder) (*roles.Registry, error) {
	b.EnsureRoles()
	return h.Get()
}

// RefreshCommands registers the bot's slash commands in the configured guild.
func (b *Bot) RefreshCommands() error {
	guildID := b.GetConfig().GuildID
	cmds := commands.GenerateCommands()
	slog.Info("registering commands", "guild_id", guildID, "count", len(cmds))
	registered, err := b.Session.ApplicationCommandBulkOverwrite(b.Session.State.User.ID, guildID, cmds)
	if err != nil {
		return fmt.Errorf("cannot update commands for guild %s: %w", guildID, err)
	}
	b.RegisteredCommands = registered
	return nil
}

// LogToChannel mirrors an operational event to the configured log channel.
func (b *Bot) LogToChannel(level utils.LogLevel, module, operation, extraInfo string) {
	channelID := b.GetConfig().LogChannelID
	var err error
	switch level {
	case utils.Error:
		err = utils.LogError(b.Session, channelID, module, operation, extraInfo)
	case utils.Warn:
		err = utils.LogWarn(b.Session, channelID, module, operation, extraInfo)
	default:
		err = utils.LogInfo(b.Session, channelID, module, operation, extraInfo)
	}
	if err != nil {
		slog.Warn("failed to write to log channel", "channel_id", channelID, "error", err)
	}
}

// Run opens the gateway connection and blocks until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	if err := b.Session.Open(); err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}
	b.StartedAt = time.Now()

	report := b.ReloadRoles()
	slog.Info("roles loaded", "buttons", report.Buttons, "reactions", report.Reactions)

	b.scheduler.Start()

	slog.Info("bot is now running, press CTRL-C to exit")
	<-ctx.Done()
	return nil
}

func (b *Bot) Close() {
	slog.Info("gracefully shutting down")
	b.scheduler.Stop()
	if err := b.Session.Close(); err != nil {
		slog.Warn("error closing session", "error", err)
	}
}
