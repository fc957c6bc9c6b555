// Package roles holds the self-assignable role registry, the message
// publisher and the toggle logic shared by the button and reaction flows.
package roles

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync/atomic"
)

// Entry maps a user-facing token to a role.
type Entry struct {
	Token  string // role ID text for buttons, emote name for reactions
	RoleID uint64
	Emoji  string // reaction API form, empty for button entries
}

// Mention returns the Discord mention markup for the entry's role.
func (e Entry) Mention() string {
	return "<@&" + e.RoleIDString() + ">"
}

// RoleIDString returns the role ID formatted as a snowflake string.
func (e Entry) RoleIDString() string {
	return strconv.FormatUint(e.RoleID, 10)
}

// EmoteBinding is a configured emote -> role pair before parsing.
type EmoteBinding struct {
	Emoji  string
	RoleID string
}

// Registry is an ordered, read-only set of entries indexed by token.
type Registry struct {
	entries []Entry
	index   map[string]int
}

// NewRegistry builds a registry from entries. A repeated token keeps the
// position of its first occurrence and takes the role of the last one.
func NewRegistry(entries []Entry) *Registry {
	r := &Registry{
		entries: make([]Entry, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		if i, ok := r.index[e.Token]; ok {
			slog.Warn("duplicate role token, last entry wins",
				"token", e.Token, "previous_role_id", r.entries[i].RoleID, "role_id", e.RoleID)
			r.entries[i] = e
			continue
		}
		r.index[e.Token] = len(r.entries)
		r.entries = append(r.entries, e)
	}
	return r
}

// Load parses role ID tokens into a registry. Tokens that are not valid
// unsigned 64-bit integers are skipped with a warning. An error is only
// returned when nothing usable remains.
func Load(tokens []string) (*Registry, error) {
	entries := make([]Entry, 0, len(tokens))
	var skipped []error
	for _, raw := range tokens {
		token := strings.TrimSpace(raw)
		id, err := parseRoleID(token)
		if err != nil {
			slog.Warn("skipping configured role", "token", raw, "error", err)
			skipped = append(skipped, err)
			continue
		}
		entries = append(entries, Entry{Token: token, RoleID: id})
	}
	return finish(entries, skipped)
}

// LoadEmotes parses emote bindings into a registry keyed by emote name.
// Custom emotes use the "name:id" API form; their token is the name.
func LoadEmotes(bindings []EmoteBinding) (*Registry, error) {
	entries := make([]Entry, 0, len(bindings))
	var skipped []error
	for _, b := range bindings {
		emoji := EmojiAPIName(b.Emoji)
		if emoji == "" {
			slog.Warn("skipping emote binding without emote", "role_id", b.RoleID)
			skipped = append(skipped, &ParseError{Token: b.RoleID, Err: errors.New("empty emote")})
			continue
		}
		id, err := parseRoleID(strings.TrimSpace(b.RoleID))
		if err != nil {
			slog.Warn("skipping emote binding", "emote", emoji, "error", err)
			skipped = append(skipped, err)
			continue
		}
		entries = append(entries, Entry{Token: EmoteName(emoji), RoleID: id, Emoji: emoji})
	}
	return finish(entries, skipped)
}

func finish(entries []Entry, skipped []error) (*Registry, error) {
	reg := NewRegistry(entries)
	if reg.Len() == 0 {
		if len(skipped) > 0 {
			return reg, fmt.Errorf("%w: %w", ErrEmptyRegistry, errors.Join(skipped...))
		}
		return reg, ErrEmptyRegistry
	}
	return reg, nil
}

func parseRoleID(token string) (uint64, error) {
	id, err := strconv.ParseUint(token, 10, 64)
	if err != nil {
		return 0, &ParseError{Token: token, Err: err}
	}
	return id, nil
}

// EmojiAPIName normalizes an emoji to the form the reaction endpoints
// accept: the unicode character, or "name:id" for custom emotes written
// as "<:name:id>" or "<a:name:id>".
func EmojiAPIName(emoji string) string {
	emoji = strings.TrimSpace(emoji)
	if strings.HasPrefix(emoji, "<") && strings.HasSuffix(emoji, ">") {
		emoji = emoji[1 : len(emoji)-1]
		emoji = strings.TrimPrefix(emoji, "a:")
		emoji = strings.TrimPrefix(emoji, ":")
	}
	return emoji
}

// EmoteName returns the name part of an emoji, which is what reaction
// events carry in Emoji.Name.
func EmoteName(emoji string) string {
	emoji = EmojiAPIName(emoji)
	if i := strings.Index(emoji, ":"); i >= 0 {
		return emoji[:i]
	}
	return emoji
}

// Lookup returns the role for token and whether it exists.
func (r *Registry) Lookup(token string) (uint64, bool) {
	if r == nil {
		return 0, false
	}
	i, ok := r.index[token]
	if !ok {
		return 0, false
	}
	return r.entries[i].RoleID, true
}

// Resolve returns the role for token or an error wrapping ErrTokenNotFound.
func (r *Registry) Resolve(token string) (uint64, error) {
	id, ok := r.Lookup(token)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrTokenNotFound, token)
	}
	return id, nil
}

// Entry returns the full entry for token or an error wrapping ErrTokenNotFound.
func (r *Registry) Entry(token string) (Entry, error) {
	if r != nil {
		if i, ok := r.index[token]; ok {
			return r.entries[i], nil
		}
	}
	return Entry{}, fmt.Errorf("%w: %q", ErrTokenNotFound, token)
}

// Entries returns a copy of the entries in load order.
func (r *Registry) Entries() []Entry {
	if r == nil {
		return nil
	}
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Tokens returns the tokens in load order.
func (r *Registry) Tokens() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.Token
	}
	return out
}

func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.entries)
}

// Holder owns the current registry and swaps it atomically on reload.
type Holder struct {
	current atomic.Pointer[Registry]
}

// Get returns the current registry, or ErrEmptyRegistry if none is usable.
func (h *Holder) Get() (*Registry, error) {
	reg := h.current.Load()
	if reg.Len() == 0 {
		return nil, ErrEmptyRegistry
	}
	return reg, nil
}

// Store replaces the current registry.
func (h *Holder) Store(reg *Registry) {
	h.current.Store(reg)
}

// Loaded reports whether a registry has been stored, even an empty one.
func (h *Holder) Loaded() bool {
	return h.current.Load() != nil
}

// Len reports the size of the current registry.
func (h *Holder) Len() int {
	return h.current.Load().Len()
}
