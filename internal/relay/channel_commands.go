package relay

import (
	"strings"

	"github.com/LucasMontenegro1/relay/internal/reply"
	irc "gopkg.in/irc.v3"
)

func isChannelName(s string) bool {
	return strings.HasPrefix(s, "#") || strings.HasPrefix(s, "&")
}

// handleJoin implements JOIN, including implicit channel creation and the
// RPL_TOPIC/RPL_NAMREPLY/RPL_ENDOFNAMES reply sequence.
func (s *Session) handleJoin(msg *irc.Message) error {
	names := splitCSV(msg.Params[0])
	var keys []string
	if len(msg.Params) > 1 {
		keys = splitCSV(msg.Params[1])
	}

	for i, name := range names {
		if !isChannelName(name) {
			s.Send(&irc.Message{
				Prefix:  s.srv.prefix(),
				Command: reply.ERR_NOSUCHCHANNEL,
				Params:  []string{s.Nick, name, "No such channel"},
			})
			continue
		}
		key := ""
		if i < len(keys) {
			key = keys[i]
		}
		ch := s.srv.channel(name)
		if err := ch.Join(s, key); err != nil {
			if err == ErrAlreadyInChan {
				continue
			}
			code, text := channelErrorReply(err)
			s.Send(&irc.Message{
				Prefix:  s.srv.prefix(),
				Command: code,
				Params:  []string{s.Nick, name, text},
			})
			continue
		}

		s.mu.Lock()
		s.channels[strings.ToLower(name)] = true
		s.mu.Unlock()

		joinMsg := &irc.Message{Prefix: s.Prefix(), Command: "JOIN", Params: []string{name}}
		for _, peer := range ch.Sessions() {
			peer.Send(joinMsg)
		}

		if ch.Topic != "" {
			s.Send(reply.Format(reply.RPL_TOPIC, s.srv.Name, s.Nick, name, ch.Topic))
		} else {
			s.Send(reply.Format(reply.RPL_NOTOPIC, s.srv.Name, s.Nick, name, "No topic is set"))
		}
		for _, m := range reply.Namreply(s.srv.Name, s.Nick, name, ch.MemberList()) {
			s.Send(m)
		}
	}
	return nil
}

// handlePart implements PART.
func (s *Session) handlePart(msg *irc.Message) error {
	reason := s.Nick
	if len(msg.Params) > 1 {
		reason = msg.Params[len(msg.Params)-1]
	}
	for _, name := range splitCSV(msg.Params[0]) {
		ch, ok := s.srv.lookupChannel(name)
		if !ok {
			s.Send(&irc.Message{
				Prefix:  s.srv.prefix(),
				Command: reply.ERR_NOSUCHCHANNEL,
				Params:  []string{s.Nick, name, "No such channel"},
			})
			continue
		}
		partMsg := &irc.Message{Prefix: s.Prefix(), Command: "PART", Params: []string{name, reason}}
		peers := ch.Sessions()
		if err := ch.Part(s); err != nil {
			s.Send(&irc.Message{
				Prefix:  s.srv.prefix(),
				Command: reply.ERR_NOTONCHANNEL,
				Params:  []string{s.Nick, name, "You're not on that channel"},
			})
			continue
		}
		s.mu.Lock()
		delete(s.channels, strings.ToLower(name))
		s.mu.Unlock()
		for _, peer := range peers {
			peer.Send(partMsg)
		}
	}
	return nil
}

func channelErrorReply(err error) (code, text string) {
	switch err {
	case ErrChannelFull:
		return reply.ERR_CHANNELISFULL, "Cannot join channel (+l)"
	case ErrInviteOnly:
		return reply.ERR_INVITEONLYCHAN, "Cannot join channel (+i)"
	case ErrBannedFromChan:
		return reply.ERR_BANNEDFROMCHAN, "Cannot join channel (+b)"
	case ErrBadChannelKey:
		return reply.ERR_BADCHANNELKEY, "Cannot join channel (+k)"
	case ErrAlreadyInChan:
		return reply.RPL_NAMREPLY, "" // no-op rejoin, swallowed by caller in practice
	default:
		return reply.ERR_NOSUCHCHANNEL, "No such channel"
	}
}
