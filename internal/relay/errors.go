package relay

import (
	"errors"
	"fmt"

	irc "gopkg.in/irc.v3"
)

// protoError is a protocol-level failure that already carries its own
// ready-to-send numeric reply. Handlers return it and the session's
// dispatch loop sends Message and continues, instead of tearing the
// connection down.
type protoError struct {
	Message *irc.Message
}

func (e protoError) Error() string {
	if len(e.Message.Params) > 0 {
		return e.Message.Params[len(e.Message.Params)-1]
	}
	return e.Message.Command
}

// Server-fatal error kinds.
var (
	ErrListenerClosed   = errors.New("relay: listener closed")
	ErrRepositoryPoison = errors.New("relay: core repository poisoned")
)

// Channel-level error kinds.
var (
	ErrChannelFull    = errors.New("relay: channel is full")
	ErrNotInChannel   = errors.New("relay: not in channel")
	ErrAlreadyInChan  = errors.New("relay: already in channel")
	ErrNoPrivileges   = errors.New("relay: channel operator privileges required")
	ErrBannedFromChan = errors.New("relay: banned from channel")
	ErrBadChannelKey  = errors.New("relay: bad channel key")
	ErrInviteOnly     = errors.New("relay: channel is invite-only")
)

// ErrUnknownMode reports an unrecognized mode letter encountered while
// applying a MODE command (ERR_UNKNOWNMODE).
func ErrUnknownMode(letter byte) error {
	return fmt.Errorf("relay: unknown mode letter %q", letter)
}
