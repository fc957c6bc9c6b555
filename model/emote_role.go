package model

// EmoteRole is a persisted emote -> role binding.
type EmoteRole struct {
	EmoteName string `db:"emote_name"`
	RoleID    uint64 `db:"role_id"`
	CreatedAt int64  `db:"created_at"`
}
