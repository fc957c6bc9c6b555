package bot

import (
	"log/slog"
	"strconv"

	"looseroles/model"
	"looseroles/roles"
	"looseroles/utils/database"

	"github.com/jmoiron/sqlx"
)

// EmoteBindings returns the configured emote bindings followed by the ones
// stored in the database, so stored bindings win on conflict.
func EmoteBindings(cfg *model.Config, db *sqlx.DB) ([]roles.EmoteBinding, error) {
	bindings := make([]roles.EmoteBinding, 0, len(cfg.EmoteRoles))
	for _, er := range cfg.EmoteRoles {
		bindings = append(bindings, roles.EmoteBinding{Emoji: er.Emote, RoleID: er.RoleID})
	}
	if db == nil {
		return bindings, nil
	}

	stored, err := database.GetEmoteRoles(db)
	if err != nil {
		return bindings, err
	}
	for _, er := range stored {
		bindings = append(bindings, roles.EmoteBinding{Emoji: er.EmoteName, RoleID: strconv.FormatUint(er.RoleID, 10)})
	}
	return bindings, nil
}

// LoadRegistries builds the button and reaction registries. Errors are
// reported per registry; a registry that loaded nothing is returned empty.
// reactions is nil when the stored bindings could not be read, in which case
// the caller should keep whatever it had.
func LoadRegistries(cfg *model.Config, db *sqlx.DB) (buttons, reactions *roles.Registry, report ReloadReport) {
	buttons, report.ButtonErr = roles.Load(cfg.RoleIDs)
	if report.ButtonErr != nil {
		slog.Warn("no button roles loaded", "error", report.ButtonErr)
	}

	bindings, err := EmoteBindings(cfg, db)
	if err != nil {
		slog.Error("stored emote bindings could not be read", "error", err)
		report.ReactionErr = err
		report.ReactionsKept = true
		report.Buttons = buttons.Len()
		return buttons, nil, report
	}
	reactions, report.ReactionErr = roles.LoadEmotes(bindings)
	if report.ReactionErr != nil {
		slog.Warn("no reaction roles loaded", "error", report.ReactionErr)
	}

	report.Buttons = buttons.Len()
	report.Reactions = reactions.Len()
	return buttons, reactions, report
}
