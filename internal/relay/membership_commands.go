package relay

import (
	"strings"

	"github.com/LucasMontenegro1/relay/internal/reply"
	irc "gopkg.in/irc.v3"
)

// handleKick implements KICK: channel operator removes a member.
func (s *Session) handleKick(msg *irc.Message) error {
	name := msg.Params[0]
	targetNick := msg.Params[1]
	reason := s.Nick
	if len(msg.Params) > 2 {
		reason = msg.Params[len(msg.Params)-1]
	}
	ch, ok := s.srv.lookupChannel(name)
	if !ok {
		return protoError{&irc.Message{
			Command: reply.ERR_NOSUCHCHANNEL,
			Params:  []string{s.Nick, name, "No such channel"},
		}}
	}
	if !ch.IsOperator(s.Nick) && !s.Operator {
		return protoError{&irc.Message{
			Command: reply.ERR_CHANOPRIVSNEEDED,
			Params:  []string{s.Nick, name, "You're not channel operator"},
		}}
	}
	target, ok := s.srv.sessionForNick(targetNick)
	if !ok || !ch.IsMember(targetNick) {
		return protoError{&irc.Message{
			Command: reply.ERR_USERNOTINCHANNEL,
			Params:  []string{s.Nick, targetNick, name, "They aren't on that channel"},
		}}
	}
	kickMsg := &irc.Message{Prefix: s.Prefix(), Command: "KICK", Params: []string{name, targetNick, reason}}
	peers := ch.Sessions()
	ch.Part(target)
	target.mu.Lock()
	delete(target.channels, strings.ToLower(name))
	target.mu.Unlock()
	for _, peer := range peers {
		peer.Send(kickMsg)
	}
	return nil
}

// handleInvite implements INVITE: adds targetNick to the channel's invite
// list so a subsequent JOIN on an invite-only channel succeeds.
func (s *Session) handleInvite(msg *irc.Message) error {
	targetNick := msg.Params[0]
	name := msg.Params[1]
	ch, ok := s.srv.lookupChannel(name)
	if !ok {
		return protoError{&irc.Message{
			Command: reply.ERR_NOSUCHCHANNEL,
			Params:  []string{s.Nick, name, "No such channel"},
		}}
	}
	if ch.InviteOnly && !ch.IsOperator(s.Nick) && !s.Operator {
		return protoError{&irc.Message{
			Command: reply.ERR_CHANOPRIVSNEEDED,
			Params:  []string{s.Nick, name, "You're not channel operator"},
		}}
	}
	target, ok := s.srv.sessionForNick(targetNick)
	if !ok {
		return protoError{&irc.Message{
			Command: reply.ERR_NOSUCHNICK,
			Params:  []string{s.Nick, targetNick, "No such nick/channel"},
		}}
	}
	ch.mu.Lock()
	ch.Invited[strings.ToLower(targetNick)] = true
	ch.mu.Unlock()
	target.Send(&irc.Message{Prefix: s.Prefix(), Command: "INVITE", Params: []string{targetNick, name}})
	return nil
}
