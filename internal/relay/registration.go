package relay

import (
	"strings"

	"github.com/LucasMontenegro1/relay/internal/command"
	"github.com/LucasMontenegro1/relay/internal/reply"
	"golang.org/x/crypto/bcrypt"
	irc "gopkg.in/irc.v3"
)

// handlePass implements the AwaitingPass -> AwaitingNick transition,
// checking the password against a bcrypt hash.
func (s *Session) handlePass(msg *irc.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Password = msg.Params[0]
	if s.srv.passwordHash != nil {
		if err := bcrypt.CompareHashAndPassword(s.srv.passwordHash, []byte(s.Password)); err != nil {
			s.Password = ""
			return protoError{&irc.Message{
				Command: reply.ERR_PASSWDMISMATCH,
				Params:  []string{"*", "Password incorrect"},
			}}
		}
	}
	s.Password = ""
	s.State = command.AwaitingNick
	return nil
}

// handleNick implements NICK both pre-registration (AwaitingNick ->
// AwaitingUser) and post-registration (a live nick change).
func (s *Session) handleNick(msg *irc.Message) error {
	nick := msg.Params[0]
	if nick == "" {
		return protoError{&irc.Message{
			Command: reply.ERR_NONICKNAMEGIVEN,
			Params:  []string{s.displayNick(), "No nickname given"},
		}}
	}

	if existing, ok := s.srv.sessionForNick(nick); ok && existing != s {
		return protoError{&irc.Message{
			Command: reply.ERR_NICKNAMEINUSE,
			Params:  []string{s.displayNick(), nick, "Nickname is already in use"},
		}}
	}

	s.mu.Lock()
	state := s.State
	oldNick := s.Nick
	s.mu.Unlock()

	if err := s.srv.reserveNick(s, nick); err != nil {
		return protoError{&irc.Message{
			Command: reply.ERR_NICKNAMEINUSE,
			Params:  []string{s.displayNick(), nick, "Nickname is already in use"},
		}}
	}

	s.mu.Lock()
	s.Nick = nick
	if state == command.AwaitingNick {
		s.State = command.AwaitingUser
	}
	s.mu.Unlock()

	if state == command.Registered {
		// Live nick change: echo it to the user and every channel they're in.
		prefix := &irc.Prefix{Name: oldNick, User: s.User, Host: s.Host}
		s.Send(&irc.Message{Prefix: prefix, Command: "NICK", Params: []string{nick}})
		s.srv.broadcastToPeers(s, &irc.Message{Prefix: prefix, Command: "NICK", Params: []string{nick}})
		if strings.ToLower(oldNick) != strings.ToLower(nick) {
			s.srv.whowas.record(oldNick, s.User, s.Host)
			s.srv.nicks.Delete(strings.ToLower(oldNick)) //nolint:errcheck
		}
	}
	return nil
}

// handleUser implements AwaitingUser -> Registered, sending the welcome
// numeric burst.
func (s *Session) handleUser(msg *irc.Message) error {
	s.mu.Lock()
	s.User = msg.Params[0]
	s.Real = msg.Params[len(msg.Params)-1]
	s.State = command.Registered
	nick := s.Nick
	s.mu.Unlock()

	// nick is already reserved in srv.nicks from the NICK that got the
	// session into AwaitingUser; USER just flips the session's own state.

	s.Send(reply.Format(reply.RPL_WELCOME, s.srv.Name, nick,
		"Welcome to the relay network "+nick+"!"+s.User+"@"+s.Host))
	s.Send(reply.Format(reply.RPL_YOURHOST, s.srv.Name, nick,
		"Your host is "+s.srv.Name))
	s.Send(reply.Format(reply.RPL_CREATED, s.srv.Name, nick, "This server was just started"))
	s.Send(reply.Format(reply.RPL_MYINFO, s.srv.Name, nick, s.srv.Name, "relay-0", "io", "ovtikmnlbs"))
	return nil
}

// handleQuit broadcasts a quit notice to every channel the session was in,
// tears down membership, closes the connection, and removes the nick index
// entry.
func (s *Session) handleQuit(msg *irc.Message) error {
	reason := "Client quit"
	if len(msg.Params) > 0 {
		reason = msg.Params[len(msg.Params)-1]
	}
	s.srv.teardownSession(s, reason)
	s.mu.Lock()
	s.State = command.Closed
	s.mu.Unlock()
	return s.Close()
}
