package handlers

import (
	"path/filepath"
	"testing"

	"looseroles/bot"
	"looseroles/commands"
	"looseroles/model"
	"looseroles/utils/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEveryCommandHasAHandler(t *testing.T) {
	db, err := database.Init(filepath.Join(t.TempDir(), "handlers.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	b, err := bot.New(&model.Config{BotToken: "token", GuildID: "g"}, db)
	require.NoError(t, err)

	handlers := commandHandlers(b)
	cmds := commands.GenerateCommands()
	assert.Len(t, handlers, len(cmds))
	for _, c := range cmds {
		assert.NotNil(t, handlers[c.Name], c.Name)
	}
}
