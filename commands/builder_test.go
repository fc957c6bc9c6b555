package commands

import (
	"testing"

	"looseroles/commands/defs"

	"github.com/stretchr/testify/assert"
)

func TestGenerateCommands(t *testing.T) {
	cmds := GenerateCommands()

	seen := make(map[string]bool)
	for _, c := range cmds {
		assert.False(t, seen[c.Name], "duplicate command %s", c.Name)
		seen[c.Name] = true
		assert.NotEmpty(t, c.Description, c.Name)
		assert.LessOrEqual(t, len(c.Description), 100, c.Name)
	}
	for _, name := range []string{
		defs.ShowConfiguredRolesName,
		defs.SendSelfAssignMessageName,
		defs.ReloadRolesName,
		defs.BindEmoteRoleName,
		defs.UnbindEmoteRoleName,
		defs.BotStatusName,
	} {
		assert.True(t, seen[name], name)
	}

	// Everyone may list roles; changing them needs Manage Roles.
	assert.Nil(t, defs.ShowConfiguredRoles.DefaultMemberPermissions)
	if assert.NotNil(t, defs.SendSelfAssignMessage.DefaultMemberPermissions) {
		assert.NotZero(t, *defs.SendSelfAssignMessage.DefaultMemberPermissions)
	}
}
