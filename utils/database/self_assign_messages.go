package database

import (
	"database/sql"
	"errors"
	"fmt"

	"looseroles/model"

	"github.com/jmoiron/sqlx"
)

// AddSelfAssignMessage records a published self-assign message.
func AddSelfAssignMessage(db *sqlx.DB, msg model.SelfAssignMessage) error {
	query := `INSERT OR REPLACE INTO self_assign_messages (message_id, channel_id, guild_id, kind, created_at)
			  VALUES (:message_id, :channel_id, :guild_id, :kind, :created_at)`
	if _, err := db.NamedExec(query, msg); err != nil {
		return fmt.Errorf("failed to insert self-assign message %s: %w", msg.MessageID, err)
	}
	return nil
}

// GetSelfAssignMessage returns the tracked message with the given ID, or nil if it is not tracked.
func GetSelfAssignMessage(db *sqlx.DB, messageID string) (*model.SelfAssignMessage, error) {
	var msg model.SelfAssignMessage
	err := db.Get(&msg, "SELECT * FROM self_assign_messages WHERE message_id = ?", messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get self-assign message %s: %w", messageID, err)
	}
	return &msg, nil
}

// GetSelfAssignMessages returns all tracked messages, oldest first.
func GetSelfAssignMessages(db *sqlx.DB) ([]model.SelfAssignMessage, error) {
	var msgs []model.SelfAssignMessage
	if err := db.Select(&msgs, "SELECT * FROM self_assign_messages ORDER BY created_at"); err != nil {
		return nil, fmt.Errorf("failed to get self-assign messages: %w", err)
	}
	return msgs, nil
}

// DeleteSelfAssignMessage stops tracking a message.
func DeleteSelfAssignMessage(db *sqlx.DB, messageID string) error {
	if _, err := db.Exec("DELETE FROM self_assign_messages WHERE message_id = ?", messageID); err != nil {
		return fmt.Errorf("failed to delete self-assign message %s: %w", messageID, err)
	}
	return nil
}
