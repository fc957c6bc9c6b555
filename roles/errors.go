package roles

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyRegistry is returned when no role entries are available. Publishing
	// and toggling are refused until a reload succeeds.
	ErrEmptyRegistry = errors.New("no self-assignable roles are configured")

	// ErrTokenNotFound is returned when a button or emote token is not in the registry.
	ErrTokenNotFound = errors.New("role not found")

	// ErrUnresolvedMember is returned when the acting user cannot be resolved to a guild member.
	ErrUnresolvedMember = errors.New("user could not be resolved to a guild member")

	// ErrTooManyRoles is returned when a registry does not fit into a single message.
	ErrTooManyRoles = errors.New("too many roles for a single self-assign message")
)

// ParseError reports a configured token that could not be turned into a role ID.
type ParseError struct {
	Token string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid role id %q: %v", e.Token, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// RemoteError wraps a failed call to Discord.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("discord %s: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

func remote(op string, err error) error {
	if err == nil {
		return nil
	}
	return &RemoteError{Op: op, Err: err}
}
