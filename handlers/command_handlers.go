package handlers

import (
	"looseroles/bot"
	"looseroles/commands/defs"
	"looseroles/handlers/admin"
	"looseroles/utils"

	"github.com/bwmarrin/discordgo"
)

func commandHandlers(b *bot.Bot) map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	return map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate){
		defs.ShowConfiguredRolesName: func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			HandleShowConfiguredRoles(s, i, b)
		},
		defs.SendSelfAssignMessageName: requireAdmin(b, func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			HandleSendSelfAssignMessage(s, i, b)
		}),
		defs.ReloadRolesName: requireAdmin(b, func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			admin.HandleReloadRoles(s, i, b)
		}),
		defs.BindEmoteRoleName: requireAdmin(b, func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			admin.HandleBindEmoteRole(s, i, b)
		}),
		defs.UnbindEmoteRoleName: requireAdmin(b, func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			admin.HandleUnbindEmoteRole(s, i, b)
		}),
		defs.BotStatusName: requireAdmin(b, func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			SystemInfoHandler(s, i, b)
		}),
	}
}

// requireAdmin rejects members that can neither manage roles nor hold a configured admin role.
func requireAdmin(b *bot.Bot, next func(s *discordgo.Session, i *discordgo.InteractionCreate)) func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	return func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if utils.CheckPermission(i.Member, b.GetConfig().AdminRoleIDs) != utils.AdminPermission {
			utils.SendErrorResponse(s, i, "You do not have permission to use this command.")
			return
		}
		next(s, i)
	}
}
