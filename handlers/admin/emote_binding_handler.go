package admin

import (
	"fmt"
	"log/slog"
	"strconv"

	"looseroles/bot"
	"looseroles/roles"
	"looseroles/utils"
	"looseroles/utils/database"

	"github.com/bwmarrin/discordgo"
)

// HandleBindEmoteRole stores an emote -> role binding and reloads the reaction roles.
func HandleBindEmoteRole(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	var emote, roleID string
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case "emote":
			emote = roles.EmojiAPIName(opt.StringValue())
		case "role":
			// Role options carry the role ID as a string.
			roleID, _ = opt.Value.(string)
		}
	}
	if emote == "" {
		utils.SendErrorResponse(s, i, "Please provide an emote.")
		return
	}
	if roleID == i.GuildID {
		utils.SendErrorResponse(s, i, "The @everyone role cannot be self-assigned.")
		return
	}
	id, err := strconv.ParseUint(roleID, 10, 64)
	if err != nil {
		utils.SendErrorResponse(s, i, "Invalid role.")
		return
	}

	if err := database.UpsertEmoteRole(b.DB, emote, id); err != nil {
		slog.Error("failed to bind emote", "emote", emote, "role_id", roleID, "error", err)
		utils.SendErrorResponse(s, i, "Failed to save the binding.")
		return
	}
	report := b.ReloadRoles()

	entry := roles.Entry{RoleID: id, Emoji: emote}
	utils.SendSimpleResponse(s, i, fmt.Sprintf("✅ %s now grants %s. %d reaction roles loaded.", entry.EmojiMarkup(), entry.Mention(), report.Reactions))
	b.LogToChannel(utils.Info, "Roles", "Bind emote",
		fmt.Sprintf("<@%s> bound %s to %s.", i.Member.User.ID, entry.EmojiMarkup(), entry.Mention()))
}

// HandleUnbindEmoteRole deletes a stored emote binding and reloads the reaction roles.
func HandleUnbindEmoteRole(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	var emote string
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "emote" {
			emote = roles.EmojiAPIName(opt.StringValue())
		}
	}
	if emote == "" {
		utils.SendErrorResponse(s, i, "Please provide an emote.")
		return
	}

	if err := database.DeleteEmoteRole(b.DB, emote); err != nil {
		slog.Warn("failed to unbind emote", "emote", emote, "error", err)
		utils.SendErrorResponse(s, i, fmt.Sprintf("No stored binding for %s. Bindings from the settings file can only be changed there.", emote))
		return
	}
	report := b.ReloadRoles()

	utils.SendSimpleResponse(s, i, fmt.Sprintf("✅ Binding for %s removed. %d reaction roles loaded.", emote, report.Reactions))
	b.LogToChannel(utils.Info, "Roles", "Unbind emote", fmt.Sprintf("<@%s> removed the binding for %s.", i.Member.User.ID, emote))
}
