package relay

import (
	"github.com/LucasMontenegro1/relay/internal/reply"
	irc "gopkg.in/irc.v3"
)

// handleList implements LIST: one RPL_LIST line per non-secret channel
// (or per named channel if params are given), bracketed by
// RPL_LISTSTART/RPL_LISTEND.
func (s *Session) handleList(msg *irc.Message) error {
	s.Send(reply.Format(reply.RPL_LISTSTART, s.srv.Name, s.Nick, "Channel", "Users Name"))
	var names []string
	if len(msg.Params) > 0 {
		names = splitCSV(msg.Params[0])
	} else {
		all, _ := s.srv.channels.FindAll()
		for _, ch := range all {
			names = append(names, ch.Name)
		}
	}
	for _, name := range names {
		ch, ok := s.srv.lookupChannel(name)
		if !ok || (ch.Secret && !ch.IsMember(s.Nick)) {
			continue
		}
		s.Send(reply.Format(reply.RPL_LIST, s.srv.Name, s.Nick, ch.Name, itoa(len(ch.MemberList())), ch.Topic))
	}
	s.Send(reply.Format(reply.RPL_LISTEND, s.srv.Name, s.Nick, "End of /LIST"))
	return nil
}

// handleNames implements NAMES, reusing the same Namreply sequence JOIN
// sends.
func (s *Session) handleNames(msg *irc.Message) error {
	var names []string
	if len(msg.Params) > 0 {
		names = splitCSV(msg.Params[0])
	}
	for _, name := range names {
		ch, ok := s.srv.lookupChannel(name)
		if !ok {
			continue
		}
		for _, m := range reply.Namreply(s.srv.Name, s.Nick, name, ch.MemberList()) {
			s.Send(m)
		}
	}
	return nil
}

// handleWho implements WHO for a channel target.
func (s *Session) handleWho(msg *irc.Message) error {
	if len(msg.Params) == 0 {
		s.Send(reply.Format(reply.RPL_ENDOFWHO, s.srv.Name, s.Nick, "*", "End of /WHO list"))
		return nil
	}
	name := msg.Params[0]
	ch, ok := s.srv.lookupChannel(name)
	if ok {
		for _, peer := range ch.Sessions() {
			s.Send(reply.Format(reply.RPL_WHOREPLY, s.srv.Name, s.Nick,
				name, peer.User, peer.Host, s.srv.Name, peer.Nick, "H", "0 "+peer.Real))
		}
	}
	s.Send(reply.Format(reply.RPL_ENDOFWHO, s.srv.Name, s.Nick, name, "End of /WHO list"))
	return nil
}

// handleWhois implements WHOIS for a single nick.
func (s *Session) handleWhois(msg *irc.Message) error {
	nick := msg.Params[len(msg.Params)-1]
	peer, ok := s.srv.sessionForNick(nick)
	if !ok {
		return protoError{&irc.Message{
			Command: reply.ERR_NOSUCHNICK,
			Params:  []string{s.Nick, nick, "No such nick/channel"},
		}}
	}
	s.Send(reply.Format(reply.RPL_WHOISUSER, s.srv.Name, s.Nick, peer.Nick, peer.User, peer.Host, "*", peer.Real))
	peer.mu.Lock()
	away := peer.Away
	peer.mu.Unlock()
	if away != "" {
		s.Send(reply.Format(reply.RPL_AWAY, s.srv.Name, s.Nick, peer.Nick, away))
	}
	s.Send(reply.Format(reply.RPL_WHOISSERVER, s.srv.Name, s.Nick, peer.Nick, s.srv.Name, "relay server"))
	s.Send(reply.Format(reply.RPL_ENDOFWHOIS, s.srv.Name, s.Nick, peer.Nick, "End of /WHOIS list"))
	return nil
}

// handleAway implements AWAY: a present parameter sets the away message, an
// absent or empty one clears it.
func (s *Session) handleAway(msg *irc.Message) error {
	s.mu.Lock()
	if len(msg.Params) == 0 || msg.Params[0] == "" {
		s.Away = ""
		s.mu.Unlock()
		s.Send(reply.Format(reply.RPL_UNAWAY, s.srv.Name, s.Nick, "You are no longer marked as being away"))
		return nil
	}
	s.Away = msg.Params[0]
	s.mu.Unlock()
	s.Send(reply.Format(reply.RPL_NOWAWAY, s.srv.Name, s.Nick, "You have been marked as being away"))
	return nil
}

// handleWhowas implements WHOWAS against the bounded history ring.
func (s *Session) handleWhowas(msg *irc.Message) error {
	nick := msg.Params[0]
	entries := s.srv.whowas.lookup(nick)
	if len(entries) == 0 {
		return protoError{&irc.Message{
			Command: reply.ERR_NOSUCHNICK,
			Params:  []string{s.Nick, nick, "There was no such nickname"},
		}}
	}
	for _, e := range entries {
		s.Send(reply.Format(reply.RPL_WHOWASUSER, s.srv.Name, s.Nick, e.Nick, e.User, e.Host, "*", "n/a"))
	}
	s.Send(reply.Format(reply.RPL_ENDOFWHOWAS, s.srv.Name, s.Nick, nick, "End of WHOWAS"))
	return nil
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
