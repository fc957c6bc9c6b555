package model

// Kinds of self-assign message.
const (
	KindButtons   = "buttons"
	KindReactions = "reactions"
)

// SelfAssignMessage records a message the bot published so that reaction
// events can be matched against it.
type SelfAssignMessage struct {
	MessageID string `db:"message_id"`
	ChannelID string `db:"channel_id"`
	GuildID   string `db:"guild_id"`
	Kind      string `db:"kind"`
	CreatedAt int64  `db:"created_at"`
}
