package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"looseroles/bot"
	"looseroles/commands/defs"
	"looseroles/model"
	"looseroles/roles"
	"looseroles/utils"
	"looseroles/utils/database"

	"github.com/bwmarrin/discordgo"
)

const (
	rolesNotLoaded = "Configured roles could not be loaded! Aborting command."
	embedColorBlue = 0x3498DB
)

// HandleShowConfiguredRoles lists both registries to the caller.
func HandleShowConfiguredRoles(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	b.EnsureRoles()
	buttons, buttonErr := b.ButtonRoles.Get()
	reactions, reactionErr := b.ReactionRoles.Get()
	if buttonErr != nil && reactionErr != nil {
		utils.SendErrorResponse(s, i, rolesNotLoaded)
		return
	}
	utils.SendEmbedResponse(s, i, configuredRolesEmbed(buttons, reactions))
}

func configuredRolesEmbed(buttons, reactions *roles.Registry) *discordgo.MessageEmbed {
	var sb strings.Builder
	sb.WriteString("**Button roles**\n")
	if buttons.Len() == 0 {
		sb.WriteString("None\n")
	}
	for _, e := range buttons.Entries() {
		fmt.Fprintf(&sb, "%s (ID: %d)\n", e.Mention(), e.RoleID)
	}
	sb.WriteString("\n**Reaction roles**\n")
	if reactions.Len() == 0 {
		sb.WriteString("None\n")
	}
	for _, e := range reactions.Entries() {
		fmt.Fprintf(&sb, "%s %s (ID: %d)\n", e.EmojiMarkup(), e.Mention(), e.RoleID)
	}
	return &discordgo.MessageEmbed{
		Title:       "Configured roles",
		Description: sb.String(),
		Color:       embedColorBlue,
	}
}

// HandleSendSelfAssignMessage publishes a self-assign message into the
// invoking channel and starts tracking it.
func HandleSendSelfAssignMessage(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	mode := defs.SelfAssignModeButtons
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "mode" {
			mode = opt.StringValue()
		}
	}

	if err := utils.DeferResponse(s, i, true); err != nil {
		slog.Error("failed to defer response", "interaction_id", i.ID, "error", err)
		return
	}

	ctx := context.Background()
	var author *discordgo.User
	if i.Member != nil {
		author = i.Member.User
	}

	var (
		msg  *discordgo.Message
		err  error
		kind string
	)
	switch mode {
	case defs.SelfAssignModeReactions:
		kind = model.KindReactions
		var reg *roles.Registry
		if reg, err = b.ReactionRegistry(); err == nil {
			msg, err = b.Publisher.PublishReactions(ctx, reg, i.GuildID, i.ChannelID, author)
		}
	default:
		kind = model.KindButtons
		var reg *roles.Registry
		if reg, err = b.ButtonRegistry(); err == nil {
			msg, err = b.Publisher.PublishButtons(ctx, reg, i.GuildID, i.ChannelID, author)
		}
	}

	if msg != nil {
		record := model.SelfAssignMessage{
			MessageID: msg.ID,
			ChannelID: i.ChannelID,
			GuildID:   i.GuildID,
			Kind:      kind,
			CreatedAt: time.Now().Unix(),
		}
		if dbErr := database.AddSelfAssignMessage(b.DB, record); dbErr != nil {
			slog.Error("failed to track self-assign message", "message_id", msg.ID, "error", dbErr)
		}
	}

	if err != nil {
		slog.Error("failed to publish self-assign message", "mode", mode, "channel_id", i.ChannelID, "error", err)
		utils.SendFollowUpError(s, i.Interaction, publishErrorMessage(err))
		return
	}

	utils.SendFollowUp(s, i.Interaction, "Self-assign message sent.")
	b.LogToChannel(utils.Info, "Roles", "Self-assign message",
		fmt.Sprintf("<@%s> sent a %s self-assign message in <#%s>.", authorID(i), kind, i.ChannelID))
}

func publishErrorMessage(err error) string {
	var remoteErr *roles.RemoteError
	switch {
	case errors.Is(err, roles.ErrEmptyRegistry):
		return rolesNotLoaded
	case errors.Is(err, roles.ErrTooManyRoles):
		return "Too many roles for one message: " + err.Error()
	case errors.As(err, &remoteErr):
		return "Discord rejected the self-assign message. Check the bot's permissions in this channel."
	default:
		return genericFailure
	}
}

// HandleRoleButton toggles the role behind a pressed role button.
func HandleRoleButton(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	handleRoleButton(s, i, b.ButtonRegistry, b.Toggler)
}

func handleRoleButton(s utils.InteractionResponder, i *discordgo.InteractionCreate, registry func() (*roles.Registry, error), toggler *roles.Toggler) {
	token, ok := roles.ButtonToken(i.MessageComponentData().CustomID)
	if !ok {
		utils.SendErrorResponse(s, i, "This button is not linked to a role.")
		return
	}

	reg, err := registry()
	if err != nil {
		utils.SendErrorResponse(s, i, toggleErrorMessage(err))
		return
	}

	userID := authorID(i)
	logger := slog.With("guild_id", i.GuildID, "user_id", userID, "token", token)

	res, err := toggler.Toggle(context.Background(), reg, roles.Request{
		GuildID: i.GuildID,
		UserID:  userID,
		Member:  i.Member,
		Token:   token,
	})
	if err != nil {
		logger.Warn("role button failed", "error", err)
		utils.SendErrorResponse(s, i, toggleErrorMessage(err))
		return
	}

	logger.Info("role button pressed", "action", res.Action, "role_id", res.Entry.RoleID)
	utils.SendSimpleResponse(s, i, toggleResponse(res, userID))
}

func toggleResponse(res roles.Result, userID string) string {
	switch res.Action {
	case roles.Granted:
		return fmt.Sprintf("Role %s added to <@%s>", res.Entry.Mention(), userID)
	case roles.Revoked:
		return fmt.Sprintf("Role %s removed from <@%s>", res.Entry.Mention(), userID)
	default:
		return fmt.Sprintf("Nothing changed for role %s", res.Entry.Mention())
	}
}

func toggleErrorMessage(err error) string {
	switch {
	case errors.Is(err, roles.ErrUnresolvedMember):
		return "Could not resolve you as a member of this server. Please use the button inside the server."
	case errors.Is(err, roles.ErrEmptyRegistry):
		return rolesNotLoaded
	case errors.Is(err, roles.ErrTokenNotFound):
		return "This role is no longer available for self-assignment."
	default:
		return genericFailure
	}
}

func authorID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}
