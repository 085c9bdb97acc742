package relay

import (
	"github.com/LucasMontenegro1/relay/internal/reply"
	irc "gopkg.in/irc.v3"
)

// handleOper implements a minimal OPER: checked against a single fixed
// operator credential pair configured at server start.
func (s *Session) handleOper(msg *irc.Message) error {
	name, pass := msg.Params[0], msg.Params[1]
	if s.srv.operName == "" || name != s.srv.operName || pass != s.srv.operPass {
		return protoError{&irc.Message{
			Command: reply.ERR_NOOPERHOST,
			Params:  []string{s.Nick, "No O-lines for your host"},
		}}
	}
	s.mu.Lock()
	s.Operator = true
	s.mu.Unlock()
	s.Send(reply.Format(reply.RPL_YOUREOPER, s.srv.Name, s.Nick, "You are now an IRC operator"))
	return nil
}

// handleSquit implements SQUIT. Server-to-server linking is out of scope
// for a single-server topology, so this never actually unlinks anything —
// it stays a recognized, operator-gated command rather than falling
// through to ERR_UNKNOWNCOMMAND, and reports honestly that there is
// nothing to squit.
func (s *Session) handleSquit(msg *irc.Message) error {
	if !s.Operator {
		return protoError{&irc.Message{
			Command: reply.ERR_NOPRIVILEGES,
			Params:  []string{s.Nick, "Permission Denied- You're not an IRC operator"},
		}}
	}
	return protoError{&irc.Message{
		Command: reply.ERR_NOSUCHSERVER,
		Params:  []string{s.Nick, msg.Params[0], "No such server"},
	}}
}
