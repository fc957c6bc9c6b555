package handlers

import (
	"log/slog"
	"runtime/debug"

	"looseroles/bot"
	"looseroles/utils"

	"github.com/bwmarrin/discordgo"
)

const genericFailure = "Something went wrong while handling your request. Please try again later."

func Register(b *bot.Bot) {
	b.CommandHandlers = commandHandlers(b)
	addHandlers(b)
}

func addHandlers(b *bot.Bot) {
	reactions := newReactionHandler(b)

	b.Session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		defer recoverEvent("ready")
		slog.Info("logged in", "user", s.State.User.String(), "guilds", len(r.Guilds))

		cfg := b.GetConfig()
		if err := s.UpdateWatchStatus(0, cfg.Status); err != nil {
			slog.Warn("failed to set status", "error", err)
		}
		if err := b.RefreshCommands(); err != nil {
			slog.Error("failed to register commands", "error", err)
			b.LogToChannel(utils.Error, "System", "Startup", err.Error())
			return
		}
		b.LogToChannel(utils.Info, "System", "Startup", "Bot has started successfully.")
	})
	b.Session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		defer recoverInteraction(s, i)
		handleInteractionCreate(s, i, b)
	})
	b.Session.AddHandler(func(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
		defer recoverEvent("reaction add")
		reactions.handle(s.State.User.ID, r.MessageReaction, r.Member, true)
	})
	b.Session.AddHandler(func(s *discordgo.Session, r *discordgo.MessageReactionRemove) {
		defer recoverEvent("reaction remove")
		reactions.handle(s.State.User.ID, r.MessageReaction, nil, false)
	})
}

func recoverInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if r := recover(); r != nil {
		slog.Error("panic while handling interaction",
			"interaction_id", i.ID, "panic", r, "stack", string(debug.Stack()))
		utils.SendErrorResponse(s, i, genericFailure)
	}
}

func recoverEvent(event string) {
	if r := recover(); r != nil {
		slog.Error("panic while handling event", "event", event, "panic", r, "stack", string(debug.Stack()))
	}
}
