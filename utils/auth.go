package utils

import "github.com/bwmarrin/discordgo"

// Permission levels
const (
	AdminPermission = "admin"
	GuestPermission = "guest"
)

// contains checks if a slice of strings contains an element.
func contains(slice []string, item string) bool {
	for _, a := range slice {
		if a == item {
			return true
		}
	}
	return false
}

// CheckPermission returns AdminPermission for members holding one of the
// configured admin roles or the Manage Roles / Administrator permission.
func CheckPermission(member *discordgo.Member, adminRoleIDs []string) string {
	if member == nil {
		return GuestPermission
	}
	if member.Permissions&(discordgo.PermissionManageRoles|discordgo.PermissionAdministrator) != 0 {
		return AdminPermission
	}
	for _, roleID := range member.Roles {
		if contains(adminRoleIDs, roleID) {
			return AdminPermission
		}
	}
	return GuestPermission
}
