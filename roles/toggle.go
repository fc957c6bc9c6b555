package roles

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"
)

// ButtonIDPrefix prefixes the custom ID of every role button; the rest is the role ID.
const ButtonIDPrefix = "role_button_id_"

// ButtonID returns the custom ID for an entry's button.
func ButtonID(e Entry) string {
	return ButtonIDPrefix + e.Token
}

// ButtonToken extracts the registry token from a button custom ID.
func ButtonToken(customID string) (string, bool) {
	if !strings.HasPrefix(customID, ButtonIDPrefix) {
		return "", false
	}
	token := strings.TrimPrefix(customID, ButtonIDPrefix)
	return token, token != ""
}

// MemberRoleEditor grants and revokes member roles. *discordgo.Session implements it.
type MemberRoleEditor interface {
	GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	GuildMemberRoleRemove(guildID, userID, roleID string, options ...discordgo.RequestOption) error
}

// MemberSource fetches the current state of a guild member. *discordgo.Session implements it.
type MemberSource interface {
	GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error)
}

// Action is what a toggle did to the member.
type Action int

const (
	Unchanged Action = iota
	Granted
	Revoked
)

func (a Action) String() string {
	switch a {
	case Granted:
		return "granted"
	case Revoked:
		return "revoked"
	default:
		return "unchanged"
	}
}

// Request is a single toggle attempt built from a button press or reaction.
type Request struct {
	GuildID string
	UserID  string
	Member  *discordgo.Member // snapshot carried by the event, may be nil
	Token   string
}

// Result describes the outcome of a successful toggle.
type Result struct {
	Entry  Entry
	Action Action
}

// Toggler applies role changes. Requests for the same user are serialized so
// that the membership check and the change happen as one step.
type Toggler struct {
	editor  MemberRoleEditor
	members MemberSource
	locks   *userLocks
}

// NewToggler returns a toggler that edits roles through editor. When members
// is non-nil the member is re-fetched under the user's lock instead of
// trusting the event snapshot.
func NewToggler(editor MemberRoleEditor, members MemberSource) *Toggler {
	return &Toggler{editor: editor, members: members, locks: newUserLocks()}
}

// Toggle grants the role behind req.Token if the member lacks it and revokes it otherwise.
func (t *Toggler) Toggle(ctx context.Context, reg *Registry, req Request) (Result, error) {
	return t.apply(ctx, reg, req, func(has bool) bool { return !has })
}

// Set makes the member's membership of the role behind req.Token equal to want.
// No call is made when the member is already in that state.
func (t *Toggler) Set(ctx context.Context, reg *Registry, req Request, want bool) (Result, error) {
	return t.apply(ctx, reg, req, func(bool) bool { return want })
}

func (t *Toggler) apply(ctx context.Context, reg *Registry, req Request, desired func(has bool) bool) (Result, error) {
	if reg.Len() == 0 {
		return Result{}, ErrEmptyRegistry
	}
	entry, err := reg.Entry(req.Token)
	if err != nil {
		return Result{}, err
	}
	res := Result{Entry: entry}

	if req.GuildID == "" || req.UserID == "" {
		return res, ErrUnresolvedMember
	}

	unlock := t.locks.lock(req.GuildID + ":" + req.UserID)
	defer unlock()

	member, err := t.member(ctx, req)
	if err != nil {
		return res, err
	}

	roleIDStr := entry.RoleIDString()
	has := hasRole(member, roleIDStr)
	want := desired(has)
	switch {
	case want == has:
		res.Action = Unchanged
	case want:
		if err := t.editor.GuildMemberRoleAdd(req.GuildID, req.UserID, roleIDStr, discordgo.WithContext(ctx)); err != nil {
			return res, remote("grant role", err)
		}
		res.Action = Granted
	default:
		if err := t.editor.GuildMemberRoleRemove(req.GuildID, req.UserID, roleIDStr, discordgo.WithContext(ctx)); err != nil {
			return res, remote("revoke role", err)
		}
		res.Action = Revoked
	}
	return res, nil
}

func (t *Toggler) member(ctx context.Context, req Request) (*discordgo.Member, error) {
	if t.members == nil {
		if req.Member == nil {
			return nil, ErrUnresolvedMember
		}
		return req.Member, nil
	}
	m, err := t.members.GuildMember(req.GuildID, req.UserID, discordgo.WithContext(ctx))
	if err != nil {
		// Only an unknown member means the user is not in the guild; anything
		// else is a failure on Discord's side.
		var restErr *discordgo.RESTError
		if errors.As(err, &restErr) && restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %w", ErrUnresolvedMember, remote("fetch member", err))
		}
		return nil, remote("fetch member", err)
	}
	if m == nil {
		return nil, ErrUnresolvedMember
	}
	return m, nil
}

func hasRole(m *discordgo.Member, roleID string) bool {
	for _, id := range m.Roles {
		if id == roleID {
			return true
		}
	}
	return false
}

// userLocks hands out one mutex per key and drops it once nobody holds or waits for it.
type userLocks struct {
	mu    sync.Mutex
	locks map[string]*userLock
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[string]*userLock)}
}

func (l *userLocks) lock(key string) func() {
	l.mu.Lock()
	ul, ok := l.locks[key]
	if !ok {
		ul = &userLock{}
		l.locks[key] = ul
	}
	ul.refs++
	l.mu.Unlock()

	ul.mu.Lock()
	return func() {
		ul.mu.Unlock()
		l.mu.Lock()
		ul.refs--
		if ul.refs == 0 {
			delete(l.locks, key)
		}
		l.mu.Unlock()
	}
}
