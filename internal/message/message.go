// Package message implements the IRC dialect of the wire grammar:
// ":prefix COMMAND param1 param2 :trailing". Raw tokenizing is delegated to
// gopkg.in/irc.v3; this package layers the arity/shape validation the
// relay's command taxonomy requires on top.
package message

import (
	"errors"
	"fmt"
	"strings"

	irc "gopkg.in/irc.v3"
)

// ErrEmptyMessage is returned for a line that parses to nothing at all.
var ErrEmptyMessage = errors.New("message: empty line")

// ErrUnknownCommand reports a command outside the relay's taxonomy. Parse
// does not return it: Parse only tokenizes and does not look commands up.
type ErrUnknownCommand struct {
	Command string
}

func (e *ErrUnknownCommand) Error() string {
	return fmt.Sprintf("message: unknown command %q", e.Command)
}

// MissingParametersError reports a recognized command with fewer
// parameters than its arity requires.
type MissingParametersError struct {
	Command string
	Want    int
	Got     int
}

func (e *MissingParametersError) Error() string {
	return fmt.Sprintf("message: %s needs %d parameters, got %d", e.Command, e.Want, e.Got)
}

// Message wraps irc.Message with the accessors the relay's handlers use.
type Message struct {
	raw *irc.Message
}

// Parse tokenizes line into a Message. It never validates arity itself;
// ParseParams reports a short parameter list as MissingParametersError.
func Parse(line string) (*Message, error) {
	line = strings.TrimRight(line, "\r\n")
	if strings.TrimSpace(line) == "" {
		return nil, ErrEmptyMessage
	}
	m, err := irc.ParseMessage(line)
	if err != nil {
		return nil, fmt.Errorf("message: %w", err)
	}
	return &Message{raw: m}, nil
}

// New builds a Message for outbound use (replies, relayed PRIVMSGs).
func New(prefix *irc.Prefix, command string, params ...string) *Message {
	return &Message{raw: &irc.Message{
		Prefix:  prefix,
		Command: strings.ToUpper(command),
		Params:  params,
	}}
}

// Raw exposes the underlying irc.Message for code that needs to hand it
// straight to an irc.Conn (e.g. reply.Format's output, or the session's
// outgoing channel).
func (m *Message) Raw() *irc.Message { return m.raw }

// Command returns the upper-cased command or three-digit numeric.
func (m *Message) Command() string { return strings.ToUpper(m.raw.Command) }

// Params returns the positional parameters, trailing included as the last
// element when present.
func (m *Message) Params() []string { return m.raw.Params }

// Param returns the i'th parameter, or "" if absent.
func (m *Message) Param(i int) string {
	if i < 0 || i >= len(m.raw.Params) {
		return ""
	}
	return m.raw.Params[i]
}

// Trailing returns the last parameter (conventionally the ":"-prefixed
// free-text parameter), or "" if there are no parameters at all.
func (m *Message) Trailing() string {
	if len(m.raw.Params) == 0 {
		return ""
	}
	return m.raw.Params[len(m.raw.Params)-1]
}

// Prefix returns the sender prefix, or nil for client-originated messages.
func (m *Message) Prefix() *irc.Prefix { return m.raw.Prefix }

// TargetUser returns the first positional parameter, the destination nick
// or channel for PRIVMSG-like commands.
func (m *Message) TargetUser() string {
	return m.Param(0)
}

// String renders the message back to wire form.
func (m *Message) String() string { return m.raw.String() }

// ParseParams copies the first len(out) parameters into out. Returns
// MissingParametersError if there aren't enough.
func ParseParams(m *Message, out ...*string) error {
	if len(m.raw.Params) < len(out) {
		return &MissingParametersError{Command: m.Command(), Want: len(out), Got: len(m.raw.Params)}
	}
	for i, o := range out {
		if o != nil {
			*o = m.raw.Params[i]
		}
	}
	return nil
}
