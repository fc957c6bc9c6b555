package defs

import "github.com/bwmarrin/discordgo"

// Command names.
const (
	ShowConfiguredRolesName   = "show-configured-roles"
	SendSelfAssignMessageName = "send-self-assign-message"
	ReloadRolesName           = "reload-roles"
	BindEmoteRoleName         = "bind-emote-role"
	UnbindEmoteRoleName       = "unbind-emote-role"
	BotStatusName             = "bot-status"
)

// Values of the send-self-assign-message mode option.
const (
	SelfAssignModeButtons   = "buttons"
	SelfAssignModeReactions = "reactions"
)

var manageRoles int64 = discordgo.PermissionManageRoles

var ShowConfiguredRoles = &discordgo.ApplicationCommand{
	Name:        ShowConfiguredRolesName,
	Description: "List the roles members can assign to themselves",
}

var SendSelfAssignMessage = &discordgo.ApplicationCommand{
	Name:                     SendSelfAssignMessageName,
	Description:              "Sends a message to this channel with controls to self assign configured roles",
	DefaultMemberPermissions: &manageRoles,
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "mode",
			Description: "Buttons (default) or emote reactions",
			Required:    false,
			Choices: []*discordgo.ApplicationCommandOptionChoice{
				{Name: "Buttons", Value: SelfAssignModeButtons},
				{Name: "Reactions", Value: SelfAssignModeReactions},
			},
		},
	},
}

var ReloadRoles = &discordgo.ApplicationCommand{
	Name:                     ReloadRolesName,
	Description:              "Reload the self-assignable roles from configuration",
	DefaultMemberPermissions: &manageRoles,
}

var BindEmoteRole = &discordgo.ApplicationCommand{
	Name:                     BindEmoteRoleName,
	Description:              "Bind an emote to a role for reaction self-assign messages",
	DefaultMemberPermissions: &manageRoles,
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "emote",
			Description: "Unicode emoji or custom emote",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionRole,
			Name:        "role",
			Description: "Role granted by reacting with the emote",
			Required:    true,
		},
	},
}

var UnbindEmoteRole = &discordgo.ApplicationCommand{
	Name:                     UnbindEmoteRoleName,
	Description:              "Remove an emote binding",
	DefaultMemberPermissions: &manageRoles,
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "emote",
			Description: "Emote to unbind",
			Required:    true,
		},
	},
}

var BotStatus = &discordgo.ApplicationCommand{
	Name:                     BotStatusName,
	Description:              "Display bot and system status information",
	DefaultMemberPermissions: &manageRoles,
}
