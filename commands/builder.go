package commands

import (
	"looseroles/commands/defs"

	"github.com/bwmarrin/discordgo"
)

// GenerateCommands returns every slash command the bot registers in its guild.
func GenerateCommands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		defs.ShowConfiguredRoles,
		defs.SendSelfAssignMessage,
		defs.ReloadRoles,
		defs.BindEmoteRole,
		defs.UnbindEmoteRole,
		defs.BotStatus,
	}
}
