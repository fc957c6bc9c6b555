package admin

import (
	"fmt"

	"looseroles/bot"
	"looseroles/utils"

	"github.com/bwmarrin/discordgo"
)

func HandleReloadRoles(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	report := b.ReloadRoles()
	content := "✅ Roles reloaded: " + report.String()
	if report.ButtonErr != nil || report.ReactionErr != nil {
		content = "⚠️ Roles reloaded with problems: " + report.String()
	}
	utils.SendSimpleResponse(s, i, content)
	b.LogToChannel(utils.Info, "Roles", "Reload", fmt.Sprintf("Requested by <@%s>. %s", i.Member.User.ID, report.String()))
}
