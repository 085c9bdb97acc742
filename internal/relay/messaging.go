package relay

import (
	"github.com/LucasMontenegro1/relay/internal/reply"
	irc "gopkg.in/irc.v3"
)

// handlePrivmsg routes PRIVMSG/NOTICE to a nick or a channel: single-nick
// delivery via the nick index, channel delivery by iterating members
// excluding the sender — no echo. Delivery is best-effort per recipient:
// one member's full outgoing buffer disconnects only that member
// (Session.Send), never aborts the fan-out.
func (s *Session) handlePrivmsg(msg *irc.Message, verb string) error {
	target := msg.Params[0]
	text := msg.Params[len(msg.Params)-1]
	out := &irc.Message{Prefix: s.Prefix(), Command: verb, Params: []string{target, text}}

	if isChannelName(target) {
		ch, ok := s.srv.lookupChannel(target)
		if !ok {
			if verb == "NOTICE" {
				return nil
			}
			return protoError{&irc.Message{
				Command: reply.ERR_NOSUCHCHANNEL,
				Params:  []string{s.Nick, target, "No such channel"},
			}}
		}
		if !ch.IsMember(s.Nick) && ch.Secret {
			if verb == "NOTICE" {
				return nil
			}
			return protoError{&irc.Message{
				Command: reply.ERR_CANNOTSENDTOCHAN,
				Params:  []string{s.Nick, target, "Cannot send to channel"},
			}}
		}
		for _, peer := range ch.Sessions() {
			if peer == s {
				continue
			}
			peer.Send(out)
		}
		return nil
	}

	peer, ok := s.srv.sessionForNick(target)
	if !ok {
		if verb == "NOTICE" {
			return nil
		}
		return protoError{&irc.Message{
			Command: reply.ERR_NOSUCHNICK,
			Params:  []string{s.Nick, target, "No such nick/channel"},
		}}
	}
	peer.Send(out)

	peer.mu.Lock()
	away := peer.Away
	peer.mu.Unlock()
	if away != "" && verb == "PRIVMSG" {
		s.Send(reply.Format(reply.RPL_AWAY, s.srv.Name, s.Nick, peer.Nick, away))
	}
	return nil
}
