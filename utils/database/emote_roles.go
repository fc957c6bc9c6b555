package database

import (
	"fmt"
	"strconv"
	"time"

	"looseroles/model"

	"github.com/jmoiron/sqlx"
)

// UpsertEmoteRole binds an emote to a role, replacing any existing binding for the emote.
func UpsertEmoteRole(db *sqlx.DB, emoteName string, roleID uint64) error {
	query := `INSERT INTO emote_roles (emote_name, role_id, created_at) VALUES (?, ?, ?)
			  ON CONFLICT(emote_name) DO UPDATE SET role_id = excluded.role_id`
	_, err := db.Exec(query, emoteName, strconv.FormatUint(roleID, 10), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to save emote role %s: %w", emoteName, err)
	}
	return nil
}

// DeleteEmoteRole removes the binding for an emote.
func DeleteEmoteRole(db *sqlx.DB, emoteName string) error {
	result, err := db.Exec("DELETE FROM emote_roles WHERE emote_name = ?", emoteName)
	if err != nil {
		return fmt.Errorf("failed to delete emote role %s: %w", emoteName, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected for emote %s: %w", emoteName, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("no emote role found for %s", emoteName)
	}
	return nil
}

// GetEmoteRoles returns every binding in the order they were created.
func GetEmoteRoles(db *sqlx.DB) ([]model.EmoteRole, error) {
	var bindings []model.EmoteRole
	err := db.Select(&bindings, "SELECT emote_name, role_id, created_at FROM emote_roles ORDER BY created_at, rowid")
	if err != nil {
		return nil, fmt.Errorf("failed to get emote roles: %w", err)
	}
	return bindings, nil
}
