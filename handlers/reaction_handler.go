package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"looseroles/bot"
	"looseroles/model"
	"looseroles/roles"
	"looseroles/utils"
	"looseroles/utils/database"

	"github.com/bwmarrin/discordgo"
)

// ReactionRemover removes a single user's reaction. *discordgo.Session implements it.
type ReactionRemover interface {
	MessageReactionRemove(channelID, messageID, emojiID, userID string, options ...discordgo.RequestOption) error
}

// reactionHandler turns reactions on tracked self-assign messages into role changes.
type reactionHandler struct {
	registry  func() (*roles.Registry, error)
	tracked   func(messageID string) (bool, error)
	toggler   *roles.Toggler
	names     roles.RoleNamer
	remover   ReactionRemover
	messenger utils.DirectMessenger
	sendDMs   func() bool
}

func newReactionHandler(b *bot.Bot) *reactionHandler {
	return &reactionHandler{
		registry: b.ReactionRegistry,
		tracked: func(messageID string) (bool, error) {
			msg, err := database.GetSelfAssignMessage(b.DB, messageID)
			if err != nil {
				return false, err
			}
			return msg != nil && msg.Kind == model.KindReactions, nil
		},
		toggler:   b.Toggler,
		names:     b.Names,
		remover:   b.Session,
		messenger: b.Session,
		sendDMs:   func() bool { return b.GetConfig().ReactionDMs },
	}
}

// handle grants the reaction's role on add and revokes it on remove. The
// bot's own reactions and reactions on untracked messages are ignored.
func (h *reactionHandler) handle(selfID string, r *discordgo.MessageReaction, member *discordgo.Member, added bool) (roles.Result, error) {
	if r == nil || r.UserID == selfID {
		return roles.Result{}, nil
	}
	logger := slog.With("guild_id", r.GuildID, "user_id", r.UserID, "emoji", r.Emoji.Name, "message_id", r.MessageID)

	tracked, err := h.tracked(r.MessageID)
	if err != nil {
		logger.Error("failed to look up self-assign message", "error", err)
		return roles.Result{}, err
	}
	if !tracked {
		return roles.Result{}, nil
	}

	reg, err := h.registry()
	if err != nil {
		logger.Warn("reaction roles are not loaded", "error", err)
		return roles.Result{}, err
	}

	ctx := context.Background()
	res, err := h.toggler.Set(ctx, reg, roles.Request{
		GuildID: r.GuildID,
		UserID:  r.UserID,
		Member:  member,
		Token:   r.Emoji.Name,
	}, added)
	switch {
	case errors.Is(err, roles.ErrTokenNotFound):
		logger.Info("no role bound to emote")
		if added {
			h.cleanup(ctx, logger, r)
		}
		return res, err
	case err != nil:
		logger.Error("reaction role change failed", "added", added, "error", err)
		return res, err
	}

	logger.Info("reaction role changed", "action", res.Action, "role_id", res.Entry.RoleID)
	if res.Action != roles.Unchanged && h.sendDMs() {
		h.notify(logger, r.UserID, h.confirmation(ctx, r.GuildID, res))
	}
	return res, nil
}

// cleanup removes a reaction that maps to no role and tells the user why.
func (h *reactionHandler) cleanup(ctx context.Context, logger *slog.Logger, r *discordgo.MessageReaction) {
	if err := h.remover.MessageReactionRemove(r.ChannelID, r.MessageID, r.Emoji.APIName(), r.UserID, discordgo.WithContext(ctx)); err != nil {
		logger.Warn("failed to remove unconfigured reaction", "error", err)
	}
	h.notify(logger, r.UserID, fmt.Sprintf("Role not found for %s. Your reaction was removed.", r.Emoji.MessageFormat()))
}

func (h *reactionHandler) confirmation(ctx context.Context, guildID string, res roles.Result) string {
	name := h.names.RoleName(ctx, guildID, res.Entry.RoleID)
	if res.Action == roles.Granted {
		return fmt.Sprintf("Role **%s** added.", name)
	}
	return fmt.Sprintf("Role **%s** removed.", name)
}

func (h *reactionHandler) notify(logger *slog.Logger, userID, message string) {
	if err := utils.SendPrivateMessage(h.messenger, userID, message); err != nil {
		logger.Warn("failed to send direct message", "error", err)
	}
}
