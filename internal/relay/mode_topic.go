package relay

import (
	"github.com/LucasMontenegro1/relay/internal/reply"
	irc "gopkg.in/irc.v3"
)

// handleMode implements MODE for channels (user modes are out of scope —
// only channel-relevant letters are recognized). Applies left-to-right via
// Channel.ApplyModes and echoes back whichever letters actually took
// effect (non-atomic, no rollback).
func (s *Session) handleMode(msg *irc.Message) error {
	target := msg.Params[0]
	if !isChannelName(target) {
		// User MODE query/set: nothing to toggle in this relay, ack is a no-op.
		return nil
	}
	ch, ok := s.srv.lookupChannel(target)
	if !ok {
		return protoError{&irc.Message{
			Command: reply.ERR_NOSUCHCHANNEL,
			Params:  []string{s.Nick, target, "No such channel"},
		}}
	}
	if len(msg.Params) == 1 {
		s.Send(&irc.Message{
			Prefix:  s.srv.prefix(),
			Command: reply.RPL_CHANNELMODEIS,
			Params:  []string{s.Nick, target, currentModeString(ch)},
		})
		return nil
	}
	if !ch.IsOperator(s.Nick) && !s.Operator {
		return protoError{&irc.Message{
			Command: reply.ERR_CHANOPRIVSNEEDED,
			Params:  []string{s.Nick, target, "You're not channel operator"},
		}}
	}

	applied, applyErr := ch.ApplyModes(s, msg.Params[1], msg.Params[2:])
	if applied != "" {
		out := &irc.Message{Prefix: s.Prefix(), Command: "MODE", Params: append([]string{target, applied}, msg.Params[2:]...)}
		for _, peer := range ch.Sessions() {
			peer.Send(out)
		}
	}
	if applyErr != nil {
		return protoError{&irc.Message{
			Command: reply.ERR_UNKNOWNMODE,
			Params:  []string{s.Nick, msg.Params[1], applyErr.Error()},
		}}
	}
	return nil
}

func currentModeString(ch *Channel) string {
	out := "+"
	if ch.InviteOnly {
		out += "i"
	}
	if ch.Private {
		out += "p"
	}
	if ch.Secret {
		out += "s"
	}
	if ch.Moderated {
		out += "m"
	}
	if ch.TopicProtected {
		out += "t"
	}
	if ch.Key != "" {
		out += "k"
	}
	if ch.Limit != nil {
		out += "l"
	}
	return out
}

// handleTopic implements TOPIC get/set, honoring topic-protected mode
// (operators only may change it when +t is set).
func (s *Session) handleTopic(msg *irc.Message) error {
	name := msg.Params[0]
	ch, ok := s.srv.lookupChannel(name)
	if !ok {
		return protoError{&irc.Message{
			Command: reply.ERR_NOSUCHCHANNEL,
			Params:  []string{s.Nick, name, "No such channel"},
		}}
	}
	if len(msg.Params) == 1 {
		if ch.Topic == "" {
			s.Send(reply.Format(reply.RPL_NOTOPIC, s.srv.Name, s.Nick, name, "No topic is set"))
		} else {
			s.Send(reply.Format(reply.RPL_TOPIC, s.srv.Name, s.Nick, name, ch.Topic))
		}
		return nil
	}
	if ch.TopicProtected && !ch.IsOperator(s.Nick) && !s.Operator {
		return protoError{&irc.Message{
			Command: reply.ERR_CHANOPRIVSNEEDED,
			Params:  []string{s.Nick, name, "You're not channel operator"},
		}}
	}
	ch.mu.Lock()
	ch.Topic = msg.Params[len(msg.Params)-1]
	ch.mu.Unlock()
	out := &irc.Message{Prefix: s.Prefix(), Command: "TOPIC", Params: []string{name, ch.Topic}}
	for _, peer := range ch.Sessions() {
		peer.Send(out)
	}
	return nil
}
